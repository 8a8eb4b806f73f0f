package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"

	apperrors "github.com/Adithya-Monish-Kumar-K/vectorspace-search/pkg/errors"
)

// Decode parses a JSON or YAML array of documents. Strings become text
// documents and mappings become records with their field order preserved.
func Decode(data []byte) ([]Document, error) {
	var docs []Document
	if err := unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("decoding documents: %w", err)
	}
	return docs, nil
}

// DecodeOne parses a single JSON or YAML document.
func DecodeOne(data []byte) (Document, error) {
	var doc Document
	if err := unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("decoding document: %w", err)
	}
	if doc.kind == KindInvalid {
		return Document{}, apperrors.InvalidDocument("empty document")
	}
	return doc, nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Document) UnmarshalYAML(node *yaml.Node) error {
	node = resolveAlias(node)
	switch node.Kind {
	case yaml.ScalarNode:
		if node.ShortTag() != "!!str" {
			return apperrors.InvalidDocument("line %d: scalar document must be a string, got %s", node.Line, node.ShortTag())
		}
		*d = NewText(node.Value)
		return nil
	case yaml.MappingNode:
		fields := make([]Field, 0, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			key := resolveAlias(node.Content[i])
			if key.Kind != yaml.ScalarNode {
				return apperrors.InvalidDocument("line %d: field name must be a scalar", key.Line)
			}
			value, err := decodeValue(node.Content[i+1], true)
			if err != nil {
				return err
			}
			fields = append(fields, F(key.Value, value))
		}
		doc := NewRecord(fields...)
		if err := doc.Validate(); err != nil {
			return err
		}
		*d = doc
		return nil
	default:
		return apperrors.InvalidDocument("line %d: document must be a string or a mapping", node.Line)
	}
}

// UnmarshalJSON implements json.Unmarshaler. Objects keep their field
// order.
func (d *Document) UnmarshalJSON(data []byte) error {
	node, err := jsonNode(data)
	if err != nil {
		return err
	}
	return d.UnmarshalYAML(node)
}

// unmarshal decodes valid JSON through its token stream, which accepts every
// JSON string escape, and anything else as YAML.
func unmarshal(data []byte, out any) error {
	if !json.Valid(data) {
		return yaml.Unmarshal(data, out)
	}
	node, err := jsonNode(data)
	if err != nil {
		return err
	}
	return node.Decode(out)
}

// jsonNode converts a JSON value into the YAML node tree the document
// decoder walks. Numbers are tagged !!float, which yaml.v3 decodes into
// float64 whatever their spelling.
func jsonNode(data []byte) (*yaml.Node, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	lines := lineStarts(data)
	node, err := readJSONValue(dec, lines)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("unexpected data after JSON value")
	}
	return node, nil
}

func readJSONValue(dec *json.Decoder, lines []int) (*yaml.Node, error) {
	line := lineAt(lines, dec.InputOffset())
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch v := tok.(type) {
	case json.Delim:
		kind := yaml.SequenceNode
		if v == '{' {
			kind = yaml.MappingNode
		}
		node := &yaml.Node{Kind: kind, Line: line}
		for dec.More() {
			if kind == yaml.MappingNode {
				keyLine := lineAt(lines, dec.InputOffset())
				key, err := dec.Token()
				if err != nil {
					return nil, err
				}
				node.Content = append(node.Content, scalar("!!str", key.(string), keyLine))
			}
			child, err := readJSONValue(dec, lines)
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content, child)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return node, nil
	case string:
		return scalar("!!str", v, line), nil
	case json.Number:
		return scalar("!!float", v.String(), line), nil
	case bool:
		return scalar("!!bool", strconv.FormatBool(v), line), nil
	default:
		return scalar("!!null", "null", line), nil
	}
}

func scalar(tag, value string, line int) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value, Line: line}
}

func lineStarts(data []byte) []int {
	starts := []int{0}
	for i, b := range data {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

// lineAt returns the 1-based line of offset. The decoder reports the offset
// before any whitespace preceding the next token, so it may point at the
// end of the previous line.
func lineAt(starts []int, offset int64) int {
	return sort.Search(len(starts), func(i int) bool { return int64(starts[i]) > offset })
}

func decodeValue(node *yaml.Node, allowSequence bool) (Value, error) {
	node = resolveAlias(node)
	switch node.Kind {
	case yaml.ScalarNode:
		switch node.ShortTag() {
		case "!!null":
			return UnsupportedValue(), nil
		case "!!bool":
			var b bool
			if err := node.Decode(&b); err != nil {
				return Value{}, fmt.Errorf("line %d: %w", node.Line, err)
			}
			return BoolValue(b), nil
		case "!!int", "!!float":
			var f float64
			if err := node.Decode(&f); err != nil {
				return Value{}, fmt.Errorf("line %d: %w", node.Line, err)
			}
			return NumberValue(f), nil
		default:
			return TextValue(node.Value), nil
		}
	case yaml.SequenceNode:
		if !allowSequence {
			return UnsupportedValue(), nil
		}
		items := make([]Value, 0, len(node.Content))
		for _, child := range node.Content {
			item, err := decodeValue(child, false)
			if err != nil {
				return Value{}, err
			}
			items = append(items, item)
		}
		return SequenceValue(items...), nil
	default:
		return UnsupportedValue(), nil
	}
}

func resolveAlias(node *yaml.Node) *yaml.Node {
	for node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	if node.Kind == yaml.DocumentNode && len(node.Content) == 1 {
		return resolveAlias(node.Content[0])
	}
	return node
}

// MarshalJSON renders a text document as a JSON string and a record as a
// JSON object in field order.
func (d Document) MarshalJSON() ([]byte, error) {
	switch d.kind {
	case KindText:
		return json.Marshal(d.text)
	case KindRecord:
		var buf bytes.Buffer
		buf.WriteByte('{')
		for i, f := range d.fields {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(f.Name)
			if err != nil {
				return nil, err
			}
			buf.Write(key)
			buf.WriteByte(':')
			val, err := json.Marshal(f.Value)
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", f.Name, err)
			}
			buf.Write(val)
		}
		buf.WriteByte('}')
		return buf.Bytes(), nil
	default:
		return []byte("null"), nil
	}
}

// MarshalJSON implements json.Marshaler. Non-finite numbers and unsupported
// values render as null.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case ValueText:
		return json.Marshal(v.text)
	case ValueNumber:
		if math.IsNaN(v.num) || math.IsInf(v.num, 0) {
			return []byte("null"), nil
		}
		return json.Marshal(v.num)
	case ValueBool:
		return json.Marshal(v.flag)
	case ValueSequence:
		if v.items == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.items)
	default:
		return []byte("null"), nil
	}
}
