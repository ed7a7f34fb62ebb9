package schema

import (
	"fmt"
	"strings"
)

// MappingError reports a schema node whose shape has no resolution rule,
// or a rule that needed a reference the node does not carry.
type MappingError struct {
	Name    string // entity, member or channel that triggered the error
	Pointer string // location of the offending node, if known
	Reason  string
}

func (e *MappingError) Error() string {
	var sb strings.Builder
	sb.WriteString("schema mapping")
	if e.Name != "" {
		fmt.Fprintf(&sb, " %q", e.Name)
	}
	if e.Pointer != "" {
		fmt.Fprintf(&sb, " at %s", e.Pointer)
	}
	sb.WriteString(": ")
	sb.WriteString(e.Reason)
	return sb.String()
}

// CyclicError reports a reference chain that returns to an entity already
// on the chain.
type CyclicError struct {
	Path []string // entity names in visiting order; the last repeats an earlier one
}

func (e *CyclicError) Error() string {
	return "cyclic schema reference: " + strings.Join(e.Path, " -> ")
}

// InconsistentSourceWarning reports channels in one handler batch that name
// more than one exchange source. Generation continues with Chosen.
type InconsistentSourceWarning struct {
	Sources []string // distinct sources in first-seen order
	Chosen  string
}

func (w *InconsistentSourceWarning) Error() string {
	return fmt.Sprintf("channels reference %d event sources (%s); assuming %q for all handlers",
		len(w.Sources), strings.Join(w.Sources, ", "), w.Chosen)
}

// EmptyInputError reports a batch that has nothing to work on.
type EmptyInputError struct {
	What string
}

func (e *EmptyInputError) Error() string {
	return fmt.Sprintf("empty input: no %s", e.What)
}
