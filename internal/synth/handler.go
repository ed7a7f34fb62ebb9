package synth

import (
	"errors"
	"slices"

	"github.com/asyncgen/asyncgen/internal/schema"
)

// SynthesizeHandlers builds the handler module for a batch of channels.
//
// Every channel is expected to come from the same exchange source. When
// they do not, the first source seen is used and an
// *schema.InconsistentSourceWarning is added to the module's warnings.
// A channel without an operation id or payload type is skipped and its
// error joined into the returned error. An empty batch fails with
// *schema.EmptyInputError and a nil module.
func SynthesizeHandlers(channels []schema.Channel) (*HandlerModule, error) {
	if len(channels) == 0 {
		return nil, &schema.EmptyInputError{What: "subscribed channels"}
	}

	names := make([]string, len(channels))
	for i, ch := range channels {
		names[i] = ch.Name
	}
	prefix, err := LongestCommonPrefix(names)
	if err != nil {
		return nil, err
	}

	var sources []string
	for _, ch := range channels {
		if !slices.Contains(sources, ch.ExchangeSource) {
			sources = append(sources, ch.ExchangeSource)
		}
	}

	module := &HandlerModule{Source: sources[0], Prefix: prefix}
	if len(sources) > 1 {
		module.Warnings = append(module.Warnings, &schema.InconsistentSourceWarning{
			Sources: sources,
			Chosen:  sources[0],
		})
	}

	var errs []error
	for _, ch := range channels {
		if err := checkChannel(ch); err != nil {
			errs = append(errs, err)
			continue
		}
		module.Handlers = append(module.Handlers, Handler{
			RoutingKey:  ShortName(ch.Name, prefix),
			OperationID: ch.OperationID,
			PayloadType: ch.PayloadType,
		})
	}
	return module, errors.Join(errs...)
}

func checkChannel(ch schema.Channel) error {
	switch {
	case ch.OperationID == "":
		return &schema.MappingError{Name: ch.Name, Reason: "subscribe operation has no operationId"}
	case ch.PayloadType == "":
		return &schema.MappingError{Name: ch.Name, Reason: "message payload has no title or reference"}
	}
	return nil
}
