package asyncapi

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asyncgen/asyncgen/internal/schema"
)

func entityNames(entities []schema.NamedEntity) []string {
	names := make([]string, len(entities))
	for i, e := range entities {
		names[i] = e.Name
	}
	return names
}

func propertyNames(n *schema.SchemaNode) []string {
	names := make([]string, len(n.Properties))
	for i, p := range n.Properties {
		names[i] = p.Name
	}
	return names
}

func property(n *schema.SchemaNode, name string) *schema.SchemaNode {
	for _, p := range n.Properties {
		if p.Name == name {
			return p.Schema
		}
	}
	return nil
}

func TestLoad_JSON(t *testing.T) {
	doc, err := Load(filepath.Join("testdata", "orders.json"))
	require.NoError(t, err)

	assert.Equal(t, "order service", doc.Title)
	assert.Equal(t, "2.6.0", doc.Version)
	assert.Equal(t,
		[]string{"Order", "Priority", "Address", "OrderAlias", "Envelope", "anonymous-schema-1", "OrderCancelled"},
		entityNames(doc.Entities))

	order := doc.Entities[0].Schema
	assert.Equal(t, []string{"id", "total", "createdAt", "priority", "shipTo", "note"}, propertyNames(order))
	assert.Equal(t, "Priority", property(order, "priority").Ref)
	assert.Equal(t, schema.KindUnion, property(order, "shipTo").Kind())
	assert.Equal(t, "anonymous-schema-1", property(order, "note").Ref)
	assert.Equal(t, "#/components/schemas/Order/properties/total", property(order, "total").Pointer)

	priority := doc.Entities[1].Schema
	assert.Equal(t, []string{"0", "1", "2"}, priority.EnumValues)
	assert.Equal(t, []string{"Low", "Medium", "High"}, priority.EnumNames)

	alias := doc.Entities[3].Schema
	assert.True(t, alias.IsAlias())
	assert.Equal(t, "Order", alias.Ref)

	cancelled := doc.Entities[6].Schema
	assert.Empty(t, cancelled.Ref, "inline entity body must not reference itself")
	assert.Equal(t, []string{"null", "string"}, property(cancelled, "reason").Types)

	assert.Equal(t, []schema.Channel{
		{Name: "/orders/created", OperationID: "OnOrderCreated", PayloadType: "Order", ExchangeSource: "orders"},
		{Name: "/orders/cancelled", OperationID: "OnOrderCancelled", PayloadType: "OrderCancelled", ExchangeSource: "orders"},
	}, doc.Channels)
}

func TestLoad_YAMLMatchesJSON(t *testing.T) {
	fromJSON, err := Load(filepath.Join("testdata", "orders.json"))
	require.NoError(t, err)
	fromYAML, err := Load(filepath.Join("testdata", "orders.yaml"))
	require.NoError(t, err)

	assert.Equal(t, entityNames(fromJSON.Entities), entityNames(fromYAML.Entities))
	for i := range fromJSON.Entities {
		assert.Equal(t, fromJSON.Entities[i].Schema, fromYAML.Entities[i].Schema, fromJSON.Entities[i].Name)
	}
	assert.Equal(t, fromJSON.Channels, fromYAML.Channels)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}

func TestParse_RejectsUnsupportedVersion(t *testing.T) {
	_, err := Parse([]byte(`{"asyncapi": "3.0.0"}`), FormatJSON)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not supported")

	_, err = Parse([]byte(`{"asyncapi": "latest"}`), FormatJSON)
	require.Error(t, err)
}

func TestParse_RejectsBadStructure(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"missing asyncapi", `{"channels": {}}`},
		{"channels not an object", `{"asyncapi": "2.0.0", "channels": []}`},
		{"schemas not an object", `{"asyncapi": "2.0.0", "components": {"schemas": "x"}}`},
		{"schema key with path separator", `{"asyncapi": "2.0.0", "components": {"schemas": {"../Escape": {"type": "object"}}}}`},
		{"schema key with space", `{"asyncapi": "2.0.0", "components": {"schemas": {"Order Item": {"type": "object"}}}}`},
		{"not JSON", `asyncapi`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc), FormatJSON)
			require.Error(t, err)
		})
	}
}

func TestParse_EmptyYAML(t *testing.T) {
	_, err := Parse([]byte(""), FormatYAML)
	require.Error(t, err)
}

func TestParse_StringEnumLiterals(t *testing.T) {
	doc := `{
		"asyncapi": "2.0.0",
		"components": {"schemas": {"Color": {"type": "string", "enum": ["red", "green"], "x-enumNames": ["Red", "Green"]}}}
	}`
	parsed, err := Parse([]byte(doc), FormatJSON)
	require.NoError(t, err)
	require.Len(t, parsed.Entities, 1)
	assert.Equal(t, []string{"red", "green"}, parsed.Entities[0].Schema.EnumValues)
}

func TestParse_MessageOneOfUsesFirst(t *testing.T) {
	doc := `{
		"asyncapi": "2.0.0",
		"channels": {
			"/a": {"subscribe": {"operationId": "OnA", "message": {"oneOf": [
				{"payload": {"$ref": "#/components/schemas/First"}},
				{"payload": {"$ref": "#/components/schemas/Second"}}
			]}}}
		}
	}`
	parsed, err := Parse([]byte(doc), FormatJSON)
	require.NoError(t, err)
	require.Len(t, parsed.Channels, 1)
	assert.Equal(t, "First", parsed.Channels[0].PayloadType)
	assert.Empty(t, parsed.Channels[0].ExchangeSource)
}

func TestDetectFormat(t *testing.T) {
	assert.Equal(t, FormatYAML, DetectFormat("api.yaml"))
	assert.Equal(t, FormatYAML, DetectFormat("api.YML"))
	assert.Equal(t, FormatJSON, DetectFormat("api.json"))
	assert.Equal(t, FormatJSON, DetectFormat("api"))
}

func TestNormalizeSchemaName(t *testing.T) {
	assert.Equal(t, "anonymous-schema-3", NormalizeSchemaName("<anonymous-schema-3>"))
	assert.Equal(t, "Order", NormalizeSchemaName("Order"))
}

func TestRefName(t *testing.T) {
	assert.Equal(t, "Order", refName("#/components/schemas/Order"))
	assert.Equal(t, "a/b", refName("#/components/schemas/a~1b"))
	assert.Equal(t, "Thing", refName("other.json#/definitions/Thing"))
}

func TestFilter(t *testing.T) {
	doc, err := Load(filepath.Join("testdata", "orders.json"))
	require.NoError(t, err)

	kept, skipped := Filter(doc.Entities, FilterOptions{EnvelopeFields: []string{"metadata", "data"}})
	assert.Equal(t, []string{"Order", "Priority", "Address", "OrderCancelled"}, entityNames(kept))
	assert.Equal(t, []Skipped{
		{Name: "OrderAlias", Reason: SkipAlias},
		{Name: "Envelope", Reason: SkipEnvelope},
		{Name: "anonymous-schema-1", Reason: SkipAnonymous},
	}, skipped)
}

func TestFilter_NoEnvelopeFields(t *testing.T) {
	entities := []schema.NamedEntity{
		{Name: "Envelope", Schema: &schema.SchemaNode{Type: "object", Required: []string{"metadata"}}},
	}
	kept, skipped := Filter(entities, FilterOptions{})
	assert.Len(t, kept, 1)
	assert.Empty(t, skipped)
}

func TestYAMLToJSON_KeepsOrder(t *testing.T) {
	data := []byte("b: 1\na: true\nc: [x, 2.5, null]\n")
	out, err := yamlToJSON(data)
	require.NoError(t, err)
	assert.JSONEq(t, `{"b":1,"a":true,"c":["x",2.5,null]}`, string(out))

	root, err := decodeDocument(out)
	require.NoError(t, err)
	require.Len(t, root.members, 3)
	assert.Equal(t, "b", root.members[0].key)
	assert.Equal(t, "a", root.members[1].key)
}

func TestDecodeDocument_TrailingData(t *testing.T) {
	_, err := decodeDocument([]byte(`{} {}`))
	require.Error(t, err)
}

func TestLoad_WritesNothing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"asyncapi": "2.4.0"}`), 0o644))

	doc, err := Load(path)
	require.NoError(t, err)
	assert.Empty(t, doc.Entities)
	assert.Empty(t, doc.Channels)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
