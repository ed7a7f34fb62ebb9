// Package asyncapi loads AsyncAPI 2.x documents into the schema model.
package asyncapi

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/asyncgen/asyncgen/internal/schema"
)

// Format is the serialization of an input document.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

const (
	schemaIDExt     = "x-parser-schema-id"
	enumNamesExt    = "x-enumNames"
	schemasRefBase  = "#/components/schemas/"
	messagesRefBase = "#/components/messages/"
)

// DetectFormat picks the format from a file extension. Anything that is not
// .yaml or .yml is treated as JSON.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Load reads and parses an AsyncAPI document from disk.
func Load(path string) (*schema.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading AsyncAPI document: %w", err)
	}
	doc, err := Parse(data, DetectFormat(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Parse parses document bytes. Entities are components.schemas in
// declaration order followed by inline schemas that carry a parser schema
// id, in the order they are first seen. Channels are the subscribed
// channels in declaration order.
func Parse(data []byte, format Format) (*schema.Document, error) {
	if format == FormatYAML {
		converted, err := yamlToJSON(data)
		if err != nil {
			return nil, fmt.Errorf("parsing YAML: %w", err)
		}
		data = converted
	}

	if err := checkStructure(data); err != nil {
		return nil, err
	}
	root, err := decodeDocument(data)
	if err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}

	version := root.get("asyncapi").str()
	if err := checkVersion(version); err != nil {
		return nil, err
	}

	p := &parser{root: root, seen: make(map[string]bool)}
	doc := &schema.Document{
		Title:   root.get("info").get("title").str(),
		Version: version,
	}

	components := root.get("components")
	schemas := components.get("schemas").membersOrNil()
	for _, m := range schemas {
		p.seen[NormalizeSchemaName(m.key)] = true
	}
	var named []schema.NamedEntity
	for _, m := range schemas {
		node := p.node(m.val, schemasRefBase+escapePointer(m.key), true)
		named = append(named, schema.NamedEntity{Name: NormalizeSchemaName(m.key), Schema: node})
	}

	channels := root.get("channels")
	for _, m := range channels.membersOrNil() {
		ch, ok := p.channel(m.key, m.val, components.get("messages"))
		if ok {
			doc.Channels = append(doc.Channels, ch)
		}
	}

	doc.Entities = append(named, p.inline...)
	return doc, nil
}

func (v *value) membersOrNil() []member {
	if v == nil || v.kind != kindObject {
		return nil
	}
	return v.members
}

// NormalizeSchemaName turns parser ids like "<anonymous-schema-3>" into
// plain identifiers.
func NormalizeSchemaName(name string) string {
	return strings.NewReplacer("<", "", ">", "").Replace(name)
}

type parser struct {
	root   *value
	seen   map[string]bool
	inline []schema.NamedEntity
}

func (p *parser) channel(name string, v *value, messages *value) (schema.Channel, bool) {
	sub := v.get("subscribe")
	if sub == nil {
		return schema.Channel{}, false
	}
	pointer := "#/channels/" + escapePointer(name) + "/subscribe"

	msg := sub.get("message")
	if oneOf := msg.get("oneOf"); oneOf != nil && len(oneOf.items) > 0 {
		msg = oneOf.items[0]
	}
	if ref := msg.get("$ref").str(); strings.HasPrefix(ref, messagesRefBase) {
		msg = messages.get(unescapePointer(strings.TrimPrefix(ref, messagesRefBase)))
	}

	payload := msg.get("payload")
	payloadType := payload.get("title").str()
	if node := p.node(payload, pointer+"/message/payload", false); node != nil && payloadType == "" {
		payloadType = node.Ref
	}

	return schema.Channel{
		Name:           name,
		OperationID:    sub.get("operationId").str(),
		PayloadType:    payloadType,
		ExchangeSource: v.get("bindings").get("amqp").get("exchange").get("name").str(),
	}, true
}

// node converts a schema object. top marks a components.schemas entry,
// whose own parser id names the entity itself rather than a reference.
func (p *parser) node(v *value, pointer string, top bool) *schema.SchemaNode {
	if v == nil || v.kind != kindObject {
		return nil
	}

	n := &schema.SchemaNode{
		Format:    v.get("format").str(),
		Title:     v.get("title").str(),
		Required:  v.get("required").strings(),
		EnumNames: v.get(enumNamesExt).strings(),
		Pointer:   pointer,
	}

	switch t := v.get("type"); {
	case t == nil:
	case t.kind == kindString:
		n.Type = t.text
	case t.kind == kindArray:
		n.Types = t.strings()
	}

	for _, m := range v.get("properties").membersOrNil() {
		n.Properties = append(n.Properties, schema.Property{
			Name:   m.key,
			Schema: p.node(m.val, pointer+"/properties/"+escapePointer(m.key), false),
		})
	}

	if enum := v.get("enum"); enum != nil && enum.kind == kindArray {
		for _, item := range enum.items {
			n.EnumValues = append(n.EnumValues, item.literal())
		}
	}

	if oneOf := v.get("oneOf"); oneOf != nil && oneOf.kind == kindArray {
		for i, item := range oneOf.items {
			n.OneOf = append(n.OneOf, p.node(item, pointer+"/oneOf/"+strconv.Itoa(i), false))
		}
	}

	if items := v.get("items"); items != nil {
		p.node(items, pointer+"/items", false)
	}

	ref := v.get("$ref").str()
	id := NormalizeSchemaName(v.get(schemaIDExt).str())
	switch {
	case ref != "":
		n.Ref = refName(ref)
	case !top && id != "":
		n.Ref = id
		p.register(id, n)
	}
	return n
}

// register records an inline schema that carries its own parser id as an
// entity, the first time the id is seen.
func (p *parser) register(id string, n *schema.SchemaNode) {
	if p.seen[id] || !hasShape(n) {
		return
	}
	p.seen[id] = true
	body := *n
	body.Ref = ""
	p.inline = append(p.inline, schema.NamedEntity{Name: id, Schema: &body})
}

func hasShape(n *schema.SchemaNode) bool {
	return n.Type != "" || len(n.Types) > 0 || len(n.Properties) > 0 || len(n.EnumValues) > 0 || len(n.OneOf) > 0
}

// refName extracts the entity name from a local reference.
func refName(ref string) string {
	if rest, ok := strings.CutPrefix(ref, schemasRefBase); ok {
		return NormalizeSchemaName(unescapePointer(rest))
	}
	if i := strings.LastIndex(ref, "/"); i >= 0 {
		return NormalizeSchemaName(unescapePointer(ref[i+1:]))
	}
	return NormalizeSchemaName(ref)
}

func escapePointer(s string) string {
	return strings.NewReplacer("~", "~0", "/", "~1").Replace(s)
}

func unescapePointer(s string) string {
	return strings.NewReplacer("~1", "/", "~0", "~").Replace(s)
}
