package codec

import (
	"math"
	"strconv"

	"github.com/goccy/go-json"
)

// ValueType tags the variant held by a Value.
type ValueType uint8

const (
	IntValue ValueType = iota + 1
	UintValue
	FloatValue
	StringValue
)

func (t ValueType) String() string {
	switch t {
	case IntValue:
		return "int"
	case UintValue:
		return "uint64"
	case FloatValue:
		return "float"
	case StringValue:
		return "string"
	default:
		return "invalid"
	}
}

// Value is one decoded scalar. Signed, unsigned 32-bit and byte cells decode
// to IntValue, 64-bit cells to UintValue, floats to FloatValue and string
// references to StringValue.
type Value struct {
	typ ValueType
	i   int64
	u   uint64
	f   float64
	s   string
}

func NewInt(v int64) Value     { return Value{typ: IntValue, i: v} }
func NewUint(v uint64) Value   { return Value{typ: UintValue, u: v} }
func NewFloat(v float64) Value { return Value{typ: FloatValue, f: v} }
func NewString(v string) Value { return Value{typ: StringValue, s: v} }

// Type returns the variant tag; the zero Value has no type.
func (v Value) Type() ValueType { return v.typ }

// Int returns the value as a signed integer. Floats are truncated and strings
// yield 0.
func (v Value) Int() int64 {
	switch v.typ {
	case IntValue:
		return v.i
	case UintValue:
		return int64(v.u)
	case FloatValue:
		return int64(v.f)
	}
	return 0
}

// Uint returns the value as an unsigned integer.
func (v Value) Uint() uint64 {
	switch v.typ {
	case IntValue:
		return uint64(v.i)
	case UintValue:
		return v.u
	case FloatValue:
		return uint64(v.f)
	}
	return 0
}

// Float returns the value as a float.
func (v Value) Float() float64 {
	switch v.typ {
	case IntValue:
		return float64(v.i)
	case UintValue:
		return float64(v.u)
	case FloatValue:
		return v.f
	}
	return 0
}

// Str returns the string held by a StringValue, or "".
func (v Value) Str() string {
	if v.typ == StringValue {
		return v.s
	}
	return ""
}

// Interface returns the value as int64, uint64, float64 or string.
func (v Value) Interface() any {
	switch v.typ {
	case IntValue:
		return v.i
	case UintValue:
		return v.u
	case FloatValue:
		return v.f
	case StringValue:
		return v.s
	}
	return nil
}

func (v Value) String() string {
	switch v.typ {
	case IntValue:
		return strconv.FormatInt(v.i, 10)
	case UintValue:
		return strconv.FormatUint(v.u, 10)
	case FloatValue:
		return strconv.FormatFloat(v.f, 'g', -1, 32)
	case StringValue:
		return v.s
	}
	return "<nil>"
}

// MarshalJSON encodes the natural JSON scalar. Floats are written at float32
// precision because that is what the file stores; NaN and infinities become
// null.
func (v Value) MarshalJSON() ([]byte, error) {
	return v.appendJSON(nil)
}

func (v Value) appendJSON(b []byte) ([]byte, error) {
	switch v.typ {
	case IntValue:
		return strconv.AppendInt(b, v.i, 10), nil
	case UintValue:
		return strconv.AppendUint(b, v.u, 10), nil
	case FloatValue:
		if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
			return append(b, "null"...), nil
		}
		return strconv.AppendFloat(b, v.f, 'g', -1, 32), nil
	case StringValue:
		s, err := json.Marshal(v.s)
		if err != nil {
			return nil, err
		}
		return append(b, s...), nil
	}
	return append(b, "null"...), nil
}
