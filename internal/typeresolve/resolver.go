// Package typeresolve maps schema nodes to target-language type names.
package typeresolve

import (
	"slices"

	"github.com/asyncgen/asyncgen/internal/schema"
)

// Class tells how a resolved type name was produced.
type Class int

const (
	ClassBuiltin Class = iota
	ClassNullable
	ClassReference
)

// TypeName is a resolved target type. Two names are equal when their text is.
type TypeName struct {
	Text  string
	Class Class
}

func (t TypeName) String() string { return t.Text }

// Vocabulary holds the target language's spelling of each built-in type.
type Vocabulary struct {
	Int32          string
	Int64          string
	Boolean        string
	String         string
	DateTime       string
	UUID           string
	Object         string
	NullableSuffix string
}

// CSharp is the C# vocabulary.
var CSharp = Vocabulary{
	Int32:          "int",
	Int64:          "long",
	Boolean:        "bool",
	String:         "string",
	DateTime:       "DateTime",
	UUID:           "Guid",
	Object:         "object",
	NullableSuffix: "?",
}

// PassthroughFunc is told about every node that resolved to the generic
// object type because no rule models it.
type PassthroughFunc func(node *schema.SchemaNode, reason string)

// Resolver resolves schema nodes against a vocabulary. A Resolver holds no
// mutable state and may be shared.
type Resolver struct {
	vocab       Vocabulary
	entities    map[string]*schema.SchemaNode
	passthrough PassthroughFunc
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithEntities lets the resolver check references against the known
// entities and follow alias entities to their target.
func WithEntities(entities map[string]*schema.SchemaNode) Option {
	return func(r *Resolver) { r.entities = entities }
}

// WithPassthrough installs a hook for the generic-object fallback.
func WithPassthrough(fn PassthroughFunc) Option {
	return func(r *Resolver) { r.passthrough = fn }
}

// New creates a Resolver.
func New(vocab Vocabulary, opts ...Option) *Resolver {
	r := &Resolver{vocab: vocab}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the type name for node. It fails with *schema.MappingError
// when a rule needs a reference the node lacks, and with *schema.CyclicError
// when alias entities reference each other in a loop.
func (r *Resolver) Resolve(node *schema.SchemaNode) (TypeName, error) {
	if node == nil {
		return TypeName{}, &schema.MappingError{Reason: "missing schema"}
	}

	switch node.Kind() {
	case schema.KindNullable:
		return r.nullable(node)
	case schema.KindPrimitive:
		return r.primitive(node)
	case schema.KindUnion:
		return r.union(node)
	case schema.KindEnum, schema.KindObject, schema.KindReference:
		return r.reference(node)
	default:
		return r.fallback(node, "unclassified schema kind")
	}
}

func (r *Resolver) nullable(node *schema.SchemaNode) (TypeName, error) {
	var real string
	for _, t := range node.Types {
		if t != schema.NullType {
			real = t
			break
		}
	}

	// Strings are reference types in the target model; no wrapping needed.
	if real == "string" && node.Format == "" {
		return r.builtin(r.vocab.String), nil
	}

	candidate := *node
	candidate.Types = nil
	candidate.Type = real
	inner, err := r.Resolve(&candidate)
	if err != nil {
		return TypeName{}, err
	}
	return TypeName{Text: inner.Text + r.vocab.NullableSuffix, Class: ClassNullable}, nil
}

func (r *Resolver) primitive(node *schema.SchemaNode) (TypeName, error) {
	switch node.Type {
	case "integer":
		switch node.Format {
		case "int32":
			return r.builtin(r.vocab.Int32), nil
		case "int64":
			return r.builtin(r.vocab.Int64), nil
		case "":
			// Integer without a width is an enum exposed under its own name.
			return r.reference(node)
		}
	case "boolean":
		return r.builtin(r.vocab.Boolean), nil
	case "string":
		switch node.Format {
		case "":
			return r.builtin(r.vocab.String), nil
		case "date-time":
			return r.builtin(r.vocab.DateTime), nil
		case "guid":
			return r.builtin(r.vocab.UUID), nil
		}
	}
	return r.fallback(node, "type "+quote(node.Type)+" with format "+quote(node.Format))
}

func (r *Resolver) union(node *schema.SchemaNode) (TypeName, error) {
	for _, variant := range node.OneOf {
		if variant != nil && variant.Type != schema.NullType {
			return r.reference(variant)
		}
	}
	return TypeName{}, &schema.MappingError{Pointer: node.Pointer, Reason: "oneOf has no non-null variant"}
}

func (r *Resolver) reference(node *schema.SchemaNode) (TypeName, error) {
	if node.Ref == "" {
		return TypeName{}, &schema.MappingError{Pointer: node.Pointer, Reason: "schema has no type and no reference"}
	}
	if r.entities == nil {
		return TypeName{Text: node.Ref, Class: ClassReference}, nil
	}

	name := node.Ref
	var visited []string
	for {
		if slices.Contains(visited, name) {
			return TypeName{}, &schema.CyclicError{Path: append(visited, name)}
		}
		visited = append(visited, name)

		target, ok := r.entities[name]
		if !ok {
			return TypeName{}, &schema.MappingError{Name: name, Pointer: node.Pointer, Reason: "reference to unknown schema"}
		}
		if target == nil || !target.IsAlias() {
			return TypeName{Text: name, Class: ClassReference}, nil
		}
		name = target.Ref
	}
}

func (r *Resolver) fallback(node *schema.SchemaNode, reason string) (TypeName, error) {
	if r.passthrough != nil {
		r.passthrough(node, reason)
	}
	return r.builtin(r.vocab.Object), nil
}

func (r *Resolver) builtin(text string) TypeName {
	return TypeName{Text: text, Class: ClassBuiltin}
}

func quote(s string) string {
	if s == "" {
		return "<none>"
	}
	return `"` + s + `"`
}
