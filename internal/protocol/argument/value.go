package argument

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strconv"
)

// Value is the closed set of argument values. Every implementation lives in
// this package; switch on the concrete type to handle each kind.
type Value interface {
	// Info returns the type info this value encodes with, without the
	// variable flag.
	Info() TypeInfo
	String() string
	sealed()
}

type Bool bool

// SignedInt is a signed integer of width 8 to 64.
type SignedInt struct {
	Width Width
	Value int64
}

// UnsignedInt is an unsigned integer of width 8 to 64.
type UnsignedInt struct {
	Width Width
	Value uint64
}

// Int128 is a signed 128-bit integer split into two's complement halves.
type Int128 struct {
	Hi int64
	Lo uint64
}

type Uint128 struct {
	Hi uint64
	Lo uint64
}

type Float32 float32

type Float64 float64

// FixedPoint is a scaled integer: Quantization * raw + Offset. Raw holds the
// width-bit pattern zero-extended to 64 bits.
type FixedPoint struct {
	Signed       bool
	Width        Width
	Quantization float32
	Offset       int64
	Raw          uint64
}

type String struct {
	Text     string
	Encoding Encoding
}

type Raw []byte

func (Bool) sealed()        {}
func (SignedInt) sealed()   {}
func (UnsignedInt) sealed() {}
func (Int128) sealed()      {}
func (Uint128) sealed()     {}
func (Float32) sealed()     {}
func (Float64) sealed()     {}
func (FixedPoint) sealed()  {}
func (String) sealed()      {}
func (Raw) sealed()         {}

func (Bool) Info() TypeInfo { return TypeInfo{Kind: KindBool, Width: Width8} }
func (v SignedInt) Info() TypeInfo {
	return TypeInfo{Kind: KindSigned, Width: v.Width}
}
func (v UnsignedInt) Info() TypeInfo {
	return TypeInfo{Kind: KindUnsigned, Width: v.Width}
}
func (Int128) Info() TypeInfo   { return TypeInfo{Kind: KindSigned, Width: Width128} }
func (Uint128) Info() TypeInfo  { return TypeInfo{Kind: KindUnsigned, Width: Width128} }
func (Float32) Info() TypeInfo  { return TypeInfo{Kind: KindFloat, Width: Width32} }
func (Float64) Info() TypeInfo  { return TypeInfo{Kind: KindFloat, Width: Width64} }
func (v FixedPoint) Info() TypeInfo {
	kind := KindUnsigned
	if v.Signed {
		kind = KindSigned
	}
	return TypeInfo{Kind: kind, Width: v.Width, FixedPoint: true}
}
func (v String) Info() TypeInfo { return TypeInfo{Kind: KindString, Encoding: v.Encoding} }
func (Raw) Info() TypeInfo      { return TypeInfo{Kind: KindRaw} }

func (v Bool) String() string        { return strconv.FormatBool(bool(v)) }
func (v SignedInt) String() string   { return strconv.FormatInt(v.Value, 10) }
func (v UnsignedInt) String() string { return strconv.FormatUint(v.Value, 10) }
func (v Int128) String() string      { return v.Big().String() }
func (v Uint128) String() string     { return v.Big().String() }
func (v Float32) String() string     { return strconv.FormatFloat(float64(v), 'g', -1, 32) }
func (v Float64) String() string     { return strconv.FormatFloat(float64(v), 'g', -1, 64) }
func (v FixedPoint) String() string  { return strconv.FormatFloat(v.Float64(), 'g', -1, 64) }
func (v String) String() string      { return v.Text }
func (v Raw) String() string         { return hex.EncodeToString(v) }

// Big returns v as an arbitrary precision integer.
func (v Int128) Big() *big.Int {
	n := new(big.Int).SetInt64(v.Hi)
	n.Lsh(n, 64)
	return n.Or(n, new(big.Int).SetUint64(v.Lo))
}

func (v Uint128) Big() *big.Int {
	n := new(big.Int).SetUint64(v.Hi)
	n.Lsh(n, 64)
	return n.Or(n, new(big.Int).SetUint64(v.Lo))
}

// Int returns the raw pattern sign-extended from the declared width.
func (v FixedPoint) Int() int64 {
	shift := 64 - uint(v.Width)
	return int64(v.Raw<<shift) >> shift
}

// Float64 applies quantization and offset to the raw value.
func (v FixedPoint) Float64() float64 {
	raw := float64(v.Raw)
	if v.Signed {
		raw = float64(v.Int())
	}
	return float64(v.Quantization)*raw + float64(v.Offset)
}

// Argument is one verbose payload argument. Name and Unit are present only
// when Variable is set; Unit only for numeric kinds.
//
// NameTerminated and UnitTerminated mark an empty Name or Unit that is
// carried as a lone NUL (length 1) instead of length 0. Decode sets them so
// both spellings re-encode to the bytes they came from.
type Argument struct {
	Variable       bool
	Name           string
	Unit           string
	NameTerminated bool
	UnitTerminated bool
	Value          Value
}

// Info returns the full type info of a, including the variable flag.
func (a Argument) Info() TypeInfo {
	if a.Value == nil {
		return TypeInfo{}
	}
	info := a.Value.Info()
	info.Variable = a.Variable
	return info
}

func (a Argument) String() string {
	if a.Value == nil {
		return "<nil>"
	}
	s := a.Value.String()
	if !a.Variable {
		return s
	}
	if a.Unit != "" {
		s = fmt.Sprintf("%s %s", s, a.Unit)
	}
	if a.Name != "" {
		s = a.Name + "=" + s
	}
	return s
}

// New wraps v in a non-variable argument.
func New(v Value) Argument {
	return Argument{Value: v}
}

// Named wraps v in a variable argument.
func Named(name, unit string, v Value) Argument {
	return Argument{Variable: true, Name: name, Unit: unit, Value: v}
}

func Int8(v int8) SignedInt    { return SignedInt{Width: Width8, Value: int64(v)} }
func Int16(v int16) SignedInt  { return SignedInt{Width: Width16, Value: int64(v)} }
func Int32(v int32) SignedInt  { return SignedInt{Width: Width32, Value: int64(v)} }
func Int64(v int64) SignedInt  { return SignedInt{Width: Width64, Value: v} }
func Uint8(v uint8) UnsignedInt   { return UnsignedInt{Width: Width8, Value: uint64(v)} }
func Uint16(v uint16) UnsignedInt { return UnsignedInt{Width: Width16, Value: uint64(v)} }
func Uint32(v uint32) UnsignedInt { return UnsignedInt{Width: Width32, Value: uint64(v)} }
func Uint64(v uint64) UnsignedInt { return UnsignedInt{Width: Width64, Value: v} }

// Text builds a UTF-8 string value.
func Text(s string) String { return String{Text: s, Encoding: EncodingUTF8} }

// ASCII builds an ASCII string value.
func ASCII(s string) String { return String{Text: s, Encoding: EncodingASCII} }
