package asyncapi

import (
	"slices"
	"strings"

	"github.com/asyncgen/asyncgen/internal/schema"
)

const anonymousPrefix = "anonymous-schema"

// Skip reasons reported by Filter.
const (
	SkipAnonymous = "anonymous"
	SkipEnvelope  = "envelope"
	SkipAlias     = "alias"
)

// FilterOptions controls which entities are excluded from model generation.
type FilterOptions struct {
	// EnvelopeFields marks envelope/metadata schemas: an entity whose
	// required list contains every one of these fields is skipped.
	// Empty disables the check.
	EnvelopeFields []string
}

// Skipped is an entity excluded by Filter.
type Skipped struct {
	Name   string
	Reason string
}

// Filter splits entities into those that become declarations and those that
// do not. Anonymous schemas, envelope schemas and aliases (bare references
// to another entity) are skipped. Order is preserved.
func Filter(entities []schema.NamedEntity, opts FilterOptions) ([]schema.NamedEntity, []Skipped) {
	var kept []schema.NamedEntity
	var skipped []Skipped
	for _, e := range entities {
		if reason := skipReason(e, opts); reason != "" {
			skipped = append(skipped, Skipped{Name: e.Name, Reason: reason})
			continue
		}
		kept = append(kept, e)
	}
	return kept, skipped
}

func skipReason(e schema.NamedEntity, opts FilterOptions) string {
	switch {
	case strings.HasPrefix(e.Name, anonymousPrefix):
		return SkipAnonymous
	case e.Schema != nil && isEnvelope(e.Schema, opts.EnvelopeFields):
		return SkipEnvelope
	case e.Schema != nil && e.Schema.IsAlias():
		return SkipAlias
	}
	return ""
}

func isEnvelope(n *schema.SchemaNode, fields []string) bool {
	if len(fields) == 0 {
		return false
	}
	for _, f := range fields {
		if !slices.Contains(n.Required, f) {
			return false
		}
	}
	return true
}
