package asyncapi

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/go-json-experiment/json/jsontext"
)

type valueKind int

const (
	kindNull valueKind = iota
	kindBool
	kindNumber
	kindString
	kindArray
	kindObject
)

// value is a decoded JSON value that keeps object members in document order.
type value struct {
	kind    valueKind
	text    string // string contents, or number/bool literal
	members []member
	items   []*value
}

type member struct {
	key string
	val *value
}

// get returns the member named key, or nil. Safe on nil and non-objects.
func (v *value) get(key string) *value {
	if v == nil || v.kind != kindObject {
		return nil
	}
	for _, m := range v.members {
		if m.key == key {
			return m.val
		}
	}
	return nil
}

// str returns the string contents, or "" for any other kind.
func (v *value) str() string {
	if v == nil || v.kind != kindString {
		return ""
	}
	return v.text
}

// strings returns the string items of an array value.
func (v *value) strings() []string {
	if v == nil || v.kind != kindArray {
		return nil
	}
	out := make([]string, 0, len(v.items))
	for _, item := range v.items {
		if item.kind == kindString {
			out = append(out, item.text)
		}
	}
	return out
}

// literal renders a scalar the way it should appear in generated source:
// strings unquoted, numbers and booleans verbatim.
func (v *value) literal() string {
	if v == nil || v.kind == kindNull {
		return "null"
	}
	return v.text
}

func decodeDocument(data []byte) (*value, error) {
	dec := jsontext.NewDecoder(bytes.NewReader(data))
	root, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.ReadToken(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("unexpected data after top-level value")
	}
	return root, nil
}

func decodeValue(dec *jsontext.Decoder) (*value, error) {
	tok, err := dec.ReadToken()
	if err != nil {
		return nil, err
	}

	switch tok.Kind() {
	case 'n':
		return &value{kind: kindNull}, nil
	case 't':
		return &value{kind: kindBool, text: "true"}, nil
	case 'f':
		return &value{kind: kindBool, text: "false"}, nil
	case '0':
		return &value{kind: kindNumber, text: tok.String()}, nil
	case '"':
		return &value{kind: kindString, text: tok.String()}, nil
	case '[':
		v := &value{kind: kindArray}
		for dec.PeekKind() != ']' {
			item, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			v.items = append(v.items, item)
		}
		if _, err := dec.ReadToken(); err != nil {
			return nil, err
		}
		return v, nil
	case '{':
		v := &value{kind: kindObject}
		for dec.PeekKind() != '}' {
			keyTok, err := dec.ReadToken()
			if err != nil {
				return nil, err
			}
			val, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			v.members = append(v.members, member{key: keyTok.String(), val: val})
		}
		if _, err := dec.ReadToken(); err != nil {
			return nil, err
		}
		return v, nil
	default:
		return nil, fmt.Errorf("unexpected JSON token %v", tok.Kind())
	}
}
