package amf

import (
	"fmt"
	"sort"
)

// Kind identifies which variant a Value holds.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindDouble
	KindString
	KindArray
	KindObject
)

// String returns a human-readable kind name (used in logs and errors).
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindDouble:
		return "double"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Value is the schema-less payload tree of the wire protocol: a tagged union
// over null, bool, 29-bit integer, IEEE-754 double, UTF-8 string, dense array
// and dynamic object. Values have value semantics and no identity; decode
// produces them, encode consumes them.
type Value struct {
	kind Kind
	b    bool
	i    int32
	d    float64
	s    string
	arr  []Value
	obj  map[string]Value
}

// IntMin and IntMax bound the wire integer range (signed 29-bit).
// Integers outside the range are encoded as doubles.
const (
	IntMin = -(1 << 28)
	IntMax = 1<<28 - 1
)

// Null returns the null value.
func Null() Value { return Value{kind: KindNull} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Int returns an integer value.
func Int(n int32) Value { return Value{kind: KindInt, i: n} }

// Double returns a double value.
func Double(f float64) Value { return Value{kind: KindDouble, d: f} }

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Array returns a dense array value holding the given elements.
func Array(elems ...Value) Value {
	return Value{kind: KindArray, arr: elems}
}

// Object returns a dynamic object value holding the given properties.
// The map is used directly; callers must not mutate it afterwards.
func Object(props map[string]Value) Value {
	if props == nil {
		props = map[string]Value{}
	}
	return Value{kind: KindObject, obj: props}
}

// Kind reports which variant the value holds.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is the null variant.
func (v Value) IsNull() bool { return v.kind == KindNull }

// BoolValue returns the boolean payload (false for non-bool variants).
func (v Value) BoolValue() bool { return v.kind == KindBool && v.b }

// IntValue returns the numeric payload as int64, coercing doubles.
// The second return reports whether the value was numeric at all.
// Servers are inconsistent about int vs double for counters, so state
// reducers always read numbers through this accessor.
func (v Value) IntValue() (int64, bool) {
	switch v.kind {
	case KindInt:
		return int64(v.i), true
	case KindDouble:
		return int64(v.d), true
	default:
		return 0, false
	}
}

// FloatValue returns the numeric payload as float64, coercing integers.
func (v Value) FloatValue() (float64, bool) {
	switch v.kind {
	case KindInt:
		return float64(v.i), true
	case KindDouble:
		return v.d, true
	default:
		return 0, false
	}
}

// StringValue returns the string payload ("" for non-string variants).
func (v Value) StringValue() string {
	if v.kind == KindString {
		return v.s
	}
	return ""
}

// Elems returns the array elements (nil for non-array variants).
// The returned slice must not be mutated.
func (v Value) Elems() []Value {
	if v.kind == KindArray {
		return v.arr
	}
	return nil
}

// Len returns the number of array elements or object properties.
func (v Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.arr)
	case KindObject:
		return len(v.obj)
	default:
		return 0
	}
}

// Get looks up an object property by name.
func (v Value) Get(name string) (Value, bool) {
	if v.kind != KindObject {
		return Value{}, false
	}
	p, ok := v.obj[name]
	return p, ok
}

// Keys returns the object property names in sorted order.
func (v Value) Keys() []string {
	if v.kind != KindObject {
		return nil
	}
	keys := make([]string, 0, len(v.obj))
	for k := range v.obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Equal reports deep structural equality between two values.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == other.b
	case KindInt:
		return v.i == other.i
	case KindDouble:
		return v.d == other.d
	case KindString:
		return v.s == other.s
	case KindArray:
		if len(v.arr) != len(other.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(other.arr[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(v.obj) != len(other.obj) {
			return false
		}
		for k, p := range v.obj {
			q, ok := other.obj[k]
			if !ok || !p.Equal(q) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Clone returns a deep copy sharing no mutable state with the receiver.
func (v Value) Clone() Value {
	switch v.kind {
	case KindArray:
		elems := make([]Value, len(v.arr))
		for i := range v.arr {
			elems[i] = v.arr[i].Clone()
		}
		return Value{kind: KindArray, arr: elems}
	case KindObject:
		props := make(map[string]Value, len(v.obj))
		for k, p := range v.obj {
			props[k] = p.Clone()
		}
		return Value{kind: KindObject, obj: props}
	default:
		return v
	}
}

// Interface converts the value into plain Go types (nil, bool, int64,
// float64, string, []any, map[string]any) for JSON export.
func (v Value) Interface() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindInt:
		return int64(v.i)
	case KindDouble:
		return v.d
	case KindString:
		return v.s
	case KindArray:
		out := make([]any, len(v.arr))
		for i := range v.arr {
			out[i] = v.arr[i].Interface()
		}
		return out
	case KindObject:
		out := make(map[string]any, len(v.obj))
		for k, p := range v.obj {
			out[k] = p.Interface()
		}
		return out
	default:
		return nil
	}
}
