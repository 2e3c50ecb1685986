package frame

import (
	"strconv"
)

type Kind uint8

const (
	NullKind Kind = iota
	StringKind
	FloatKind
)

// Value is a single cell: null, a categorical string or a numeric measure.
type Value struct {
	kind Kind
	str  string
	num  float64
}

func Null() Value {
	return Value{kind: NullKind}
}

func Str(s string) Value {
	return Value{kind: StringKind, str: s}
}

func Float(f float64) Value {
	return Value{kind: FloatKind, num: f}
}

func (v Value) Kind() Kind {
	return v.kind
}

func (v Value) IsNull() bool {
	return v.kind == NullKind
}

// Str returns the string payload; numeric values are formatted.
func (v Value) Str() string {
	switch v.kind {
	case StringKind:
		return v.str
	case FloatKind:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	}
	return ""
}

// Float returns the numeric payload and whether v holds one.
func (v Value) Float() (float64, bool) {
	if v.kind != FloatKind {
		return 0, false
	}
	return v.num, true
}

func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case StringKind:
		return v.str == other.str
	case FloatKind:
		return v.num == other.num
	}
	return true
}

func (v Value) String() string {
	if v.kind == NullKind {
		return "<null>"
	}
	return v.Str()
}

// Interface converts v for encoders: nil, string or float64.
func (v Value) Interface() interface{} {
	switch v.kind {
	case StringKind:
		return v.str
	case FloatKind:
		return v.num
	}
	return nil
}
