package ir

import (
	"fmt"
	"slices"
	"unicode/utf16"

	"github.com/goccy/go-json"
)

// Kind names a Value variant. The string forms appear in the tagged JSON
// encoding and in validator diagnostics.
type Kind string

const (
	KindNull     Kind = "null"
	KindString   Kind = "string"
	KindInteger  Kind = "integer"
	KindNumber   Kind = "number"
	KindBoolean  Kind = "boolean"
	KindUUID     Kind = "uuid"
	KindDateTime Kind = "date-time"
	KindArray    Kind = "array"
	KindObject   Kind = "object"
	KindUnion    Kind = "union"
)

// Value is a sealed interface over the typed attribute variants. Only Null,
// String, Int, Float, Bool, UUID, DateTime, Array, Object, and Union
// implement it, so a switch over all ten is exhaustive.
type Value interface {
	value() // sealed
	Kind() Kind
	// Interface returns the underlying Go value, suitable for loose JSON
	// encoding and for constraint checks.
	Interface() any
}

// Null is an explicit null attribute value.
type Null struct{}

func (Null) value()         {}
func (Null) Kind() Kind     { return KindNull }
func (Null) Interface() any { return nil }

// String is a plain string attribute (no recognized semantic pattern).
type String string

func (String) value()           {}
func (String) Kind() Kind       { return KindString }
func (v String) Interface() any { return string(v) }

// Int is a whole-number attribute, always int64.
type Int int64

func (Int) value()           {}
func (Int) Kind() Kind       { return KindInteger }
func (v Int) Interface() any { return int64(v) }

// Float is a fractional numeric attribute.
type Float float64

func (Float) value()           {}
func (Float) Kind() Kind       { return KindNumber }
func (v Float) Interface() any { return float64(v) }

// Bool is a boolean attribute.
type Bool bool

func (Bool) value()           {}
func (Bool) Kind() Kind       { return KindBoolean }
func (v Bool) Interface() any { return bool(v) }

// UUID is a string attribute matching the UUID v4 pattern. The underlying
// text is kept exactly as written.
type UUID string

func (UUID) value()           {}
func (UUID) Kind() Kind       { return KindUUID }
func (v UUID) Interface() any { return string(v) }

// DateTime is a string attribute matching the ISO-8601 date-time pattern,
// kept verbatim rather than reparsed into a wall-clock type.
type DateTime string

func (DateTime) value()           {}
func (DateTime) Kind() Kind       { return KindDateTime }
func (v DateTime) Interface() any { return string(v) }

// Array is an ordered list of typed values.
type Array []Value

func (Array) value()     {}
func (Array) Kind() Kind { return KindArray }
func (v Array) Interface() any {
	out := make([]any, len(v))
	for i, elem := range v {
		out[i] = elem.Interface()
	}
	return out
}

// Object is a string-keyed map of typed values. Use SortedKeys for
// deterministic iteration.
type Object map[string]Value

func (Object) value()     {}
func (Object) Kind() Kind { return KindObject }
func (v Object) Interface() any {
	out := make(map[string]any, len(v))
	for k, elem := range v {
		out[k] = elem.Interface()
	}
	return out
}

// Union carries every candidate of an unresolved anyOf verbatim. Candidates
// are the raw author-written values, deliberately left untyped.
type Union []any

func (Union) value()           {}
func (Union) Kind() Kind       { return KindUnion }
func (v Union) Interface() any { return []any(v) }

// SortedKeys returns keys in RFC 8785 canonical order (UTF-16 code units).
// Go's sort.Strings compares UTF-8 bytes, which produces a different order
// for strings containing surrogate-pair characters.
func (v Object) SortedKeys() []string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeysRFC8785)
	return keys
}

func compareKeysRFC8785(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))
	n := min(len(a16), len(b16))
	for i := 0; i < n; i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a16) < len(b16):
		return -1
	case len(a16) > len(b16):
		return 1
	default:
		return 0
	}
}

// tagged is the wire form of a Value: {"type": <kind>, "value": <payload>}.
type tagged struct {
	Type  Kind `json:"type"`
	Value any  `json:"value"`
}

// MarshalJSON encodes a Value in tagged form. Array and Object payloads stay
// tagged recursively; Union payloads are the raw candidates.
func marshalTagged(v Value) ([]byte, error) {
	switch val := v.(type) {
	case Array:
		return json.Marshal(tagged{Type: KindArray, Value: []Value(val)})
	case Object:
		return json.Marshal(tagged{Type: KindObject, Value: map[string]Value(val)})
	default:
		return json.Marshal(tagged{Type: v.Kind(), Value: v.Interface()})
	}
}

func (v Null) MarshalJSON() ([]byte, error)     { return marshalTagged(v) }
func (v String) MarshalJSON() ([]byte, error)   { return marshalTagged(v) }
func (v Int) MarshalJSON() ([]byte, error)      { return marshalTagged(v) }
func (v Float) MarshalJSON() ([]byte, error)    { return marshalTagged(v) }
func (v Bool) MarshalJSON() ([]byte, error)     { return marshalTagged(v) }
func (v UUID) MarshalJSON() ([]byte, error)     { return marshalTagged(v) }
func (v DateTime) MarshalJSON() ([]byte, error) { return marshalTagged(v) }
func (v Array) MarshalJSON() ([]byte, error)    { return marshalTagged(v) }
func (v Object) MarshalJSON() ([]byte, error)   { return marshalTagged(v) }
func (v Union) MarshalJSON() ([]byte, error)    { return marshalTagged(v) }

// FromAny converts a loosely decoded Go value (JSON/YAML shapes) into a
// Value without semantic inference: strings stay strings, integral floats
// become Int, everything else maps by Go type. The canonicalizer layers
// uuid/date-time inference on top of this.
func FromAny(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return val, nil
	case string:
		return String(val), nil
	case bool:
		return Bool(val), nil
	case int:
		return Int(val), nil
	case int64:
		return Int(val), nil
	case float64:
		if val == float64(int64(val)) {
			return Int(int64(val)), nil
		}
		return Float(val), nil
	case []any:
		arr := make(Array, len(val))
		for i, elem := range val {
			converted, err := FromAny(elem)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			arr[i] = converted
		}
		return arr, nil
	case map[string]any:
		obj := make(Object, len(val))
		for k, elem := range val {
			converted, err := FromAny(elem)
			if err != nil {
				return nil, fmt.Errorf("[%q]: %w", k, err)
			}
			obj[k] = converted
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("unsupported value type: %T", v)
	}
}
