// Package document defines the values the search engine indexes: either a
// plain text value or a record of named fields. Field values are themselves
// a closed set of kinds (text, number, bool, sequence of scalars) with an
// explicit Unsupported kind for anything else.
package document

import (
	"math"
	"strconv"
	"strings"

	apperrors "github.com/Adithya-Monish-Kumar-K/vectorspace-search/pkg/errors"
)

// Kind tags the Document variant.
type Kind int

const (
	KindInvalid Kind = iota
	KindText
	KindRecord
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindRecord:
		return "record"
	default:
		return "invalid"
	}
}

// ValueKind tags the Value variant.
type ValueKind int

const (
	ValueUnsupported ValueKind = iota
	ValueText
	ValueNumber
	ValueBool
	ValueSequence
)

func (k ValueKind) String() string {
	switch k {
	case ValueText:
		return "text"
	case ValueNumber:
		return "number"
	case ValueBool:
		return "bool"
	case ValueSequence:
		return "sequence"
	default:
		return "unsupported"
	}
}

// Value is a record field value.
type Value struct {
	kind  ValueKind
	text  string
	num   float64
	flag  bool
	items []Value
}

func TextValue(s string) Value      { return Value{kind: ValueText, text: s} }
func NumberValue(f float64) Value   { return Value{kind: ValueNumber, num: f} }
func BoolValue(b bool) Value        { return Value{kind: ValueBool, flag: b} }
func UnsupportedValue() Value       { return Value{kind: ValueUnsupported} }
func (v Value) Kind() ValueKind     { return v.kind }
func (v Value) Text() string        { return v.text }
func (v Value) Number() float64     { return v.num }
func (v Value) Bool() bool          { return v.flag }
func (v Value) Items() []Value      { return append([]Value(nil), v.items...) }
func (v Value) IsUnsupported() bool { return v.kind == ValueUnsupported }

// SequenceValue builds an ordered sequence. Elements are expected to be
// scalars; a nested sequence is kept but canonicalizes to empty text.
func SequenceValue(items ...Value) Value {
	return Value{kind: ValueSequence, items: append([]Value(nil), items...)}
}

// Canonical returns the text the indexer tokenizes for v. The second result
// is false when v, or any element of a sequence, had no text form and was
// replaced by the empty string.
func (v Value) Canonical() (string, bool) {
	switch v.kind {
	case ValueSequence:
		parts := make([]string, len(v.items))
		ok := true
		for i, item := range v.items {
			if item.kind == ValueSequence || item.kind == ValueUnsupported {
				ok = false
				continue
			}
			parts[i], _ = item.Canonical()
		}
		return strings.Join(parts, "\n"), ok
	case ValueText:
		return v.text, true
	case ValueNumber:
		return formatNumber(v.num), true
	case ValueBool:
		return strconv.FormatBool(v.flag), true
	default:
		return "", false
	}
}

// formatNumber renders f as the shortest decimal that round-trips, switching
// to exponent form outside [1e-6, 1e21).
func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}
	abs := math.Abs(f)
	if abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(f, 'e', -1, 64)
		mantissa, exp, _ := strings.Cut(s, "e")
		sign := exp[:1]
		digits := strings.TrimLeft(exp[1:], "0")
		return mantissa + "e" + sign + digits
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Field is one named value of a record.
type Field struct {
	Name  string
	Value Value
}

// F is shorthand for a Field literal.
func F(name string, value Value) Field {
	return Field{Name: name, Value: value}
}

// Document is either a text value or a record. Documents are immutable once
// constructed; accessors return copies.
type Document struct {
	kind   Kind
	text   string
	fields []Field
}

func NewText(s string) Document {
	return Document{kind: KindText, text: s}
}

func NewRecord(fields ...Field) Document {
	return Document{kind: KindRecord, fields: append([]Field(nil), fields...)}
}

func (d Document) Kind() Kind      { return d.kind }
func (d Document) Text() string    { return d.text }
func (d Document) Fields() []Field { return append([]Field(nil), d.fields...) }
func (d Document) NumFields() int  { return len(d.fields) }

// Field looks up a record field by name.
func (d Document) Field(name string) (Value, bool) {
	for _, f := range d.fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return Value{}, false
}

// Validate reports whether d can be indexed.
func (d Document) Validate() error {
	switch d.kind {
	case KindText:
		return nil
	case KindRecord:
		seen := make(map[string]struct{}, len(d.fields))
		for _, f := range d.fields {
			if _, dup := seen[f.Name]; dup {
				return apperrors.InvalidDocument("record has duplicate field %q", f.Name)
			}
			seen[f.Name] = struct{}{}
		}
		return nil
	default:
		return apperrors.InvalidDocument("document is neither text nor record")
	}
}
