// Package schema holds the read-only model the synthesizers consume:
// schema nodes, named entities and event channels.
package schema

// SchemaKind classifies the shape of a SchemaNode.
type SchemaKind int

const (
	KindPrimitive SchemaKind = iota // declared primitive type ("string", "integer", ...)
	KindNullable                    // type array, e.g. ["null", "integer"]
	KindObject                      // inline object with properties and no declared type
	KindEnum                        // enum values with parallel display names
	KindUnion                       // oneOf variants
	KindReference                   // reference to a named entity
)

func (k SchemaKind) String() string {
	switch k {
	case KindPrimitive:
		return "primitive"
	case KindNullable:
		return "nullable"
	case KindObject:
		return "object"
	case KindEnum:
		return "enum"
	case KindUnion:
		return "union"
	case KindReference:
		return "reference"
	default:
		return "unknown"
	}
}

// NullType is the type keyword marking a nullable alternative.
const NullType = "null"

// SchemaNode is a simplified, immutable view of a schema object.
type SchemaNode struct {
	// Basic type info
	Type   string   // declared type keyword: "string", "integer", "boolean", "null", ...
	Types  []string // type array used to express nullability
	Format string   // "int32", "int64", "date-time", "guid", ...
	Title  string

	// Object properties, in declaration order
	Properties []Property
	Required   []string

	// Enum literal values and their display names (x-enumNames), index aligned
	EnumValues []string
	EnumNames  []string

	// Composition
	OneOf []*SchemaNode

	// Ref is the name of the entity this node points at (from $ref or
	// x-parser-schema-id), empty for anonymous inline shapes.
	Ref string

	// Pointer locates the node in the source document, e.g.
	// "#/components/schemas/Order/properties/total".
	Pointer string
}

// Property is one ordered member of an object schema.
type Property struct {
	Name   string
	Schema *SchemaNode
}

// Kind derives the node's kind. The order of checks mirrors the order in
// which type resolution rules apply.
func (n *SchemaNode) Kind() SchemaKind {
	switch {
	case len(n.Types) > 0:
		return KindNullable
	case n.Type != "":
		return KindPrimitive
	case len(n.OneOf) > 0:
		return KindUnion
	case n.IsEnum():
		return KindEnum
	case len(n.Properties) > 0:
		return KindObject
	default:
		return KindReference
	}
}

// IsEnum reports whether the node carries both enum values and enum names.
func (n *SchemaNode) IsEnum() bool {
	return len(n.EnumValues) > 0 && len(n.EnumNames) > 0
}

// IsAlias reports whether the node is nothing but a reference to another
// named entity.
func (n *SchemaNode) IsAlias() bool {
	return n.Kind() == KindReference && n.Ref != ""
}

// NamedEntity is a top-level schema that becomes one output declaration.
type NamedEntity struct {
	Name   string
	Schema *SchemaNode
}

// Channel is a subscribed event route mapped to one handler stub.
type Channel struct {
	Name           string // path-like channel name, e.g. "/orders/created"
	OperationID    string
	PayloadType    string // name of the message payload type
	ExchangeSource string // originating exchange (amqp binding)
}

// Document is the loaded input: ordered entities and subscribed channels.
type Document struct {
	Title    string
	Version  string // asyncapi version
	Entities []NamedEntity
	Channels []Channel
}

// Lookup indexes the document's entities by name.
func (d *Document) Lookup() map[string]*SchemaNode {
	m := make(map[string]*SchemaNode, len(d.Entities))
	for _, e := range d.Entities {
		m[e.Name] = e.Schema
	}
	return m
}
