// Package jsonval models decoded JSON as a tagged variant.
//
// Webhook responses have no schema, so callers inspect a Value by Kind instead of
// type-asserting interface{} trees. Object members keep their document order,
// which matters for metric tiles and table columns.
package jsonval

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Kind identifies the variant held by a Value.
type Kind int

const (
	Null Kind = iota
	Bool
	Number
	String
	Array
	Object
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Number:
		return "number"
	case String:
		return "string"
	case Array:
		return "array"
	case Object:
		return "object"
	}
	return "unknown"
}

// Member is a single key/value pair of an object.
type Member struct {
	Key   string
	Value Value
}

// Value is one JSON value. The zero Value is null.
type Value struct {
	kind    Kind
	boolean bool
	text    string // string content, or the literal of a number
	items   []Value
	members []Member
}

// NullValue returns the JSON null.
func NullValue() Value { return Value{} }

// BoolValue wraps a boolean.
func BoolValue(b bool) Value { return Value{kind: Bool, boolean: b} }

// NumberValue wraps a number literal as it appeared on the wire.
func NumberValue(literal string) Value { return Value{kind: Number, text: literal} }

// StringValue wraps a string.
func StringValue(s string) Value { return Value{kind: String, text: s} }

// ArrayValue builds an array from items.
func ArrayValue(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: Array, items: items}
}

// ObjectValue builds an object; member order is preserved.
func ObjectValue(members ...Member) Value {
	if members == nil {
		members = []Member{}
	}
	return Value{kind: Object, members: members}
}

func (v Value) Kind() Kind     { return v.kind }
func (v Value) IsNull() bool   { return v.kind == Null }
func (v Value) IsString() bool { return v.kind == String }
func (v Value) IsArray() bool  { return v.kind == Array }
func (v Value) IsObject() bool { return v.kind == Object }
func (v Value) IsNumber() bool { return v.kind == Number }

// Bool returns the boolean and whether v is a bool.
func (v Value) Bool() (bool, bool) {
	return v.boolean, v.kind == Bool
}

// Str returns the string content and whether v is a string.
func (v Value) Str() (string, bool) {
	if v.kind != String {
		return "", false
	}
	return v.text, true
}

// Float returns the numeric value of a number.
func (v Value) Float() (float64, bool) {
	if v.kind != Number {
		return 0, false
	}
	f, err := strconv.ParseFloat(v.text, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Items returns the elements of an array, or nil.
func (v Value) Items() []Value {
	if v.kind != Array {
		return nil
	}
	return v.items
}

// Members returns the members of an object in document order, or nil.
func (v Value) Members() []Member {
	if v.kind != Object {
		return nil
	}
	return v.members
}

// Keys returns object keys in document order.
func (v Value) Keys() []string {
	if v.kind != Object {
		return nil
	}
	keys := make([]string, 0, len(v.members))
	for _, m := range v.members {
		keys = append(keys, m.Key)
	}
	return keys
}

// Get returns the first member named key.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != Object {
		return Value{}, false
	}
	for _, m := range v.members {
		if m.Key == key {
			return m.Value, true
		}
	}
	return Value{}, false
}

// Has reports whether an object carries key.
func (v Value) Has(key string) bool {
	_, ok := v.Get(key)
	return ok
}

// GetString returns the member named key when it is a string.
func (v Value) GetString(key string) (string, bool) {
	m, ok := v.Get(key)
	if !ok {
		return "", false
	}
	return m.Str()
}

// Len is the number of array items or object members.
func (v Value) Len() int {
	switch v.kind {
	case Array:
		return len(v.items)
	case Object:
		return len(v.members)
	}
	return 0
}

// Display renders v for a UI cell: strings verbatim, numbers as their literal,
// null as empty, nested values as compact JSON.
func (v Value) Display() string {
	switch v.kind {
	case Null:
		return ""
	case Bool:
		return strconv.FormatBool(v.boolean)
	case Number, String:
		return v.text
	}
	return v.JSON()
}

// JSON returns the compact encoding of v.
func (v Value) JSON() string {
	var buf bytes.Buffer
	v.writeTo(&buf)
	return buf.String()
}

// Indent returns v encoded with two-space indentation.
func (v Value) Indent() string {
	var out bytes.Buffer
	if err := json.Indent(&out, []byte(v.JSON()), "", "  "); err != nil {
		return v.JSON()
	}
	return out.String()
}

// MarshalJSON implements json.Marshaler with member order preserved.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	v.writeTo(&buf)
	return buf.Bytes(), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	parsed, err := Parse(data)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

func (v Value) writeTo(buf *bytes.Buffer) {
	switch v.kind {
	case Null:
		buf.WriteString("null")
	case Bool:
		buf.WriteString(strconv.FormatBool(v.boolean))
	case Number:
		buf.WriteString(v.text)
	case String:
		buf.WriteString(quote(v.text))
	case Array:
		buf.WriteByte('[')
		for i, item := range v.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			item.writeTo(buf)
		}
		buf.WriteByte(']')
	case Object:
		buf.WriteByte('{')
		for i, m := range v.members {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.WriteString(quote(m.Key))
			buf.WriteByte(':')
			m.Value.writeTo(buf)
		}
		buf.WriteByte('}')
	}
}

// quote encodes s as a JSON string without HTML escaping.
func quote(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return strconv.Quote(s)
	}
	return strings.TrimSuffix(buf.String(), "\n")
}
