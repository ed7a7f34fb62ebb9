package asyncapi

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/go-json-experiment/json/jsontext"
	"gopkg.in/yaml.v3"
)

// yamlToJSON re-encodes a YAML document as JSON, keeping mapping order so
// schema properties come out in declaration order.
func yamlToJSON(data []byte) ([]byte, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, errors.New("empty YAML document")
	}

	var buf bytes.Buffer
	enc := jsontext.NewEncoder(&buf)
	if err := writeYAMLNode(enc, &doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeYAMLNode(enc *jsontext.Encoder, n *yaml.Node) error {
	switch n.Kind {
	case yaml.DocumentNode:
		return writeYAMLNode(enc, n.Content[0])
	case yaml.AliasNode:
		return writeYAMLNode(enc, n.Alias)
	case yaml.MappingNode:
		if err := enc.WriteToken(jsontext.BeginObject); err != nil {
			return err
		}
		for i := 0; i+1 < len(n.Content); i += 2 {
			if err := enc.WriteToken(jsontext.String(n.Content[i].Value)); err != nil {
				return err
			}
			if err := writeYAMLNode(enc, n.Content[i+1]); err != nil {
				return err
			}
		}
		return enc.WriteToken(jsontext.EndObject)
	case yaml.SequenceNode:
		if err := enc.WriteToken(jsontext.BeginArray); err != nil {
			return err
		}
		for _, item := range n.Content {
			if err := writeYAMLNode(enc, item); err != nil {
				return err
			}
		}
		return enc.WriteToken(jsontext.EndArray)
	case yaml.ScalarNode:
		tok, err := scalarToken(n)
		if err != nil {
			return err
		}
		return enc.WriteToken(tok)
	default:
		return fmt.Errorf("line %d: unsupported YAML node kind %d", n.Line, n.Kind)
	}
}

func scalarToken(n *yaml.Node) (jsontext.Token, error) {
	switch n.ShortTag() {
	case "!!null":
		return jsontext.Null, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return jsontext.Token{}, err
		}
		return jsontext.Bool(b), nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err != nil {
			return jsontext.Token{}, err
		}
		return jsontext.Int(i), nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return jsontext.Token{}, err
		}
		return jsontext.Float(f), nil
	default:
		return jsontext.String(n.Value), nil
	}
}
