package event

import "strconv"

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	KindNil Kind = iota
	KindBool
	KindNumber
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	default:
		return "nil"
	}
}

// Value is a guest value carried by events and filters.
// The zero Value is nil, the absent case. Values compare with ==.
type Value struct {
	kind Kind
	b    bool
	n    float64
	s    string
}

func Nil() Value {
	return Value{}
}

func Bool(b bool) Value {
	return Value{kind: KindBool, b: b}
}

func Number(n float64) Value {
	return Value{kind: KindNumber, n: n}
}

func Int(i int) Value {
	return Number(float64(i))
}

func String(s string) Value {
	return Value{kind: KindString, s: s}
}

// ValueOf converts a Go value into a Value. Unsupported types become nil.
func ValueOf(v any) Value {
	switch t := v.(type) {
	case Value:
		return t
	case nil:
		return Nil()
	case bool:
		return Bool(t)
	case int:
		return Int(t)
	case int64:
		return Number(float64(t))
	case uint8:
		return Number(float64(t))
	case float64:
		return Number(t)
	case string:
		return String(t)
	case []byte:
		return String(string(t))
	default:
		return Nil()
	}
}

func (v Value) Kind() Kind {
	return v.kind
}

func (v Value) IsNil() bool {
	return v.kind == KindNil
}

func (v Value) AsBool() (bool, bool) {
	return v.b, v.kind == KindBool
}

func (v Value) AsNumber() (float64, bool) {
	return v.n, v.kind == KindNumber
}

func (v Value) AsInt() (int, bool) {
	return int(v.n), v.kind == KindNumber
}

func (v Value) AsString() (string, bool) {
	return v.s, v.kind == KindString
}

// Truthy follows guest semantics: only nil and false are false.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindNil:
		return false
	case KindBool:
		return v.b
	default:
		return true
	}
}

func (v Value) String() string {
	switch v.kind {
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindNumber:
		return strconv.FormatFloat(v.n, 'g', -1, 64)
	case KindString:
		return v.s
	default:
		return "nil"
	}
}

// GoString quotes strings so event dumps stay unambiguous.
func (v Value) GoString() string {
	if v.kind == KindString {
		return strconv.Quote(v.s)
	}
	return v.String()
}
