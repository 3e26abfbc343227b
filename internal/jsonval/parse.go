package jsonval

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/buger/jsonparser"
)

// ErrInvalid is returned for input that is not syntactically valid JSON.
var ErrInvalid = errors.New("invalid JSON")

// Parse decodes a complete JSON document.
func Parse(data []byte) (Value, error) {
	// jsonparser is lenient about trailing garbage, so validate strictly first.
	if !json.Valid(data) {
		return Value{}, ErrInvalid
	}
	raw, typ, _, err := jsonparser.Get(data)
	if err != nil {
		return Value{}, fmt.Errorf("failed to read JSON value: %w", err)
	}
	return decode(raw, typ)
}

// ParseString decodes s as a JSON document.
func ParseString(s string) (Value, error) {
	return Parse([]byte(s))
}

// MustParse is ParseString for literals known to be valid; it panics otherwise.
func MustParse(s string) Value {
	v, err := ParseString(s)
	if err != nil {
		panic(fmt.Sprintf("jsonval: %v: %s", err, s))
	}
	return v
}

func decode(raw []byte, typ jsonparser.ValueType) (Value, error) {
	switch typ {
	case jsonparser.Null:
		return NullValue(), nil
	case jsonparser.Boolean:
		b, err := jsonparser.ParseBoolean(raw)
		if err != nil {
			return Value{}, fmt.Errorf("failed to parse boolean: %w", err)
		}
		return BoolValue(b), nil
	case jsonparser.Number:
		return NumberValue(string(raw)), nil
	case jsonparser.String:
		s, err := jsonparser.ParseString(raw)
		if err != nil {
			return Value{}, fmt.Errorf("failed to parse string: %w", err)
		}
		return StringValue(s), nil
	case jsonparser.Array:
		return decodeArray(raw)
	case jsonparser.Object:
		return decodeObject(raw)
	}
	return Value{}, fmt.Errorf("unsupported JSON value type %s", typ)
}

func decodeArray(raw []byte) (Value, error) {
	items := []Value{}
	var inner error
	_, err := jsonparser.ArrayEach(raw, func(value []byte, typ jsonparser.ValueType, _ int, cbErr error) {
		if inner != nil {
			return
		}
		if cbErr != nil {
			inner = cbErr
			return
		}
		item, err := decode(value, typ)
		if err != nil {
			inner = err
			return
		}
		items = append(items, item)
	})
	if err != nil {
		return Value{}, fmt.Errorf("failed to read array: %w", err)
	}
	if inner != nil {
		return Value{}, fmt.Errorf("failed to read array item: %w", inner)
	}
	return ArrayValue(items...), nil
}

func decodeObject(raw []byte) (Value, error) {
	members := []Member{}
	err := jsonparser.ObjectEach(raw, func(key []byte, value []byte, typ jsonparser.ValueType, _ int) error {
		item, err := decode(value, typ)
		if err != nil {
			return err
		}
		members = append(members, Member{Key: string(key), Value: item})
		return nil
	})
	if err != nil {
		return Value{}, fmt.Errorf("failed to read object: %w", err)
	}
	return ObjectValue(members...), nil
}
