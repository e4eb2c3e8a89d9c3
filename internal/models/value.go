package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ValueType is the declared type of a configuration option.
type ValueType string

const (
	TypeString  ValueType = "string"
	TypeNumber  ValueType = "number"
	TypeBoolean ValueType = "boolean"
)

// Valid reports whether t is one of the supported option types.
func (t ValueType) Valid() bool {
	switch t {
	case TypeString, TypeNumber, TypeBoolean:
		return true
	}
	return false
}

// Value is a configuration value: a string, a number or a boolean.
// The zero Value is undefined and stands for a key that has no value.
type Value struct {
	kind ValueType
	str  string
	num  float64
	b    bool
}

func StringValue(s string) Value  { return Value{kind: TypeString, str: s} }
func NumberValue(n float64) Value { return Value{kind: TypeNumber, num: n} }
func BoolValue(b bool) Value      { return Value{kind: TypeBoolean, b: b} }

// Kind returns the value's type, or "" when undefined.
func (v Value) Kind() ValueType { return v.kind }

func (v Value) IsDefined() bool { return v.kind != "" }

func (v Value) AsString() (string, bool) { return v.str, v.kind == TypeString }

func (v Value) AsNumber() (float64, bool) { return v.num, v.kind == TypeNumber }

func (v Value) AsBool() (bool, bool) { return v.b, v.kind == TypeBoolean }

// Equal is strict equality: both kind and payload must match.
// Two undefined values are equal.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case TypeString:
		return v.str == o.str
	case TypeNumber:
		return v.num == o.num
	case TypeBoolean:
		return v.b == o.b
	}
	return true
}

// Any returns the plain Go value: string, float64, bool, or nil when undefined.
func (v Value) Any() any {
	switch v.kind {
	case TypeString:
		return v.str
	case TypeNumber:
		return v.num
	case TypeBoolean:
		return v.b
	}
	return nil
}

func (v Value) String() string {
	switch v.kind {
	case TypeString:
		return strconv.Quote(v.str)
	case TypeNumber:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case TypeBoolean:
		return strconv.FormatBool(v.b)
	}
	return "undefined"
}

// ValueOf converts a decoded scalar (JSON, YAML or Firestore) into a Value.
// nil becomes undefined.
func ValueOf(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Value{}, nil
	case Value:
		return t, nil
	case string:
		return StringValue(t), nil
	case bool:
		return BoolValue(t), nil
	case float64:
		return NumberValue(t), nil
	case float32:
		return NumberValue(float64(t)), nil
	case int:
		return NumberValue(float64(t)), nil
	case int32:
		return NumberValue(float64(t)), nil
	case int64:
		return NumberValue(float64(t)), nil
	case uint64:
		return NumberValue(float64(t)), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("invalid number %q: %w", t.String(), err)
		}
		return NumberValue(f), nil
	}
	return Value{}, fmt.Errorf("unsupported value type %T", x)
}

func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Any())
}

func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	parsed, err := ValueOf(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// Values maps option keys to their current values.
type Values map[string]Value

// Get returns the value for key, undefined when absent. Safe on a nil map.
func (vs Values) Get(key string) Value {
	return vs[key]
}

// Clone returns a shallow copy; Value itself is immutable.
func (vs Values) Clone() Values {
	out := make(Values, len(vs)+1)
	for k, v := range vs {
		out[k] = v
	}
	return out
}

// Plain converts to a map of plain Go scalars for storage encoders.
func (vs Values) Plain() map[string]any {
	out := make(map[string]any, len(vs))
	for k, v := range vs {
		out[k] = v.Any()
	}
	return out
}

// ValuesOf is the inverse of Plain.
func ValuesOf(m map[string]any) (Values, error) {
	out := make(Values, len(m))
	for k, raw := range m {
		v, err := ValueOf(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
		out[k] = v
	}
	return out, nil
}
