package argument

import (
	"bytes"
	"errors"
	"fmt"
	"math"

	"github.com/danmuck/dltcore/internal/protocol/wire"
)

const maxLengthPrefixed = math.MaxUint16

// ErrInvalidValue is returned when an argument cannot be encoded as given.
var ErrInvalidValue = errors.New("argument: invalid value")

// Decode reads one type-info word and the value it describes.
func Decode(b []byte, order wire.Order) (Argument, int, error) {
	if len(b) < TypeInfoLen {
		return Argument{}, 0, wire.ErrIncomplete
	}
	info, err := DecodeTypeInfo(order.Uint32(b))
	if err != nil {
		return Argument{}, 0, err
	}
	arg, n, err := DecodeValue(info, b[TypeInfoLen:], order)
	if err != nil {
		return Argument{}, 0, err
	}
	return arg, TypeInfoLen + n, nil
}

// DecodeValue reads the value described by info from the start of b.
// Fixed-size shortfalls report wire.ErrIncomplete; a length prefix that
// overruns b or a string without its NUL terminator is wire.ErrMalformed.
func DecodeValue(info TypeInfo, b []byte, order wire.Order) (Argument, int, error) {
	if err := info.Validate(); err != nil {
		return Argument{}, 0, err
	}
	c := &cursor{b: b, order: order}
	arg := Argument{Variable: info.Variable}
	var err error
	switch info.Kind {
	case KindBool:
		arg.Value, err = c.boolean(&arg)
	case KindSigned, KindUnsigned, KindFloat:
		arg.Value, err = c.numeric(info, &arg)
	case KindString, KindRaw:
		arg.Value, err = c.sized(info, &arg)
	}
	if err != nil {
		return Argument{}, 0, err
	}
	return arg, c.off, nil
}

type cursor struct {
	b     []byte
	off   int
	order wire.Order
}

func (c *cursor) take(n int) ([]byte, error) {
	if len(c.b)-c.off < n {
		return nil, wire.ErrIncomplete
	}
	p := c.b[c.off : c.off+n]
	c.off += n
	return p, nil
}

// takeDeclared reads n bytes announced by a length prefix.
func (c *cursor) takeDeclared(n int, what string) ([]byte, error) {
	if len(c.b)-c.off < n {
		return nil, fmt.Errorf("%w: argument: %s length %d overruns %d remaining bytes", wire.ErrMalformed, what, n, len(c.b)-c.off)
	}
	return c.take(n)
}

func (c *cursor) u16() (int, error) {
	p, err := c.take(2)
	if err != nil {
		return 0, err
	}
	return int(c.order.Uint16(p)), nil
}

// unsigned reads an unsigned value of width w (at most 64 bits).
func (c *cursor) unsigned(w Width) (uint64, error) {
	p, err := c.take(w.Bytes())
	if err != nil {
		return 0, err
	}
	switch w {
	case Width8:
		return uint64(p[0]), nil
	case Width16:
		return uint64(c.order.Uint16(p)), nil
	case Width32:
		return uint64(c.order.Uint32(p)), nil
	default:
		return c.order.Uint64(p), nil
	}
}

func (c *cursor) wide() (hi, lo uint64, err error) {
	p, err := c.take(16)
	if err != nil {
		return 0, 0, err
	}
	if wire.IsBigEndian(c.order) {
		return c.order.Uint64(p[0:8]), c.order.Uint64(p[8:16]), nil
	}
	return c.order.Uint64(p[8:16]), c.order.Uint64(p[0:8]), nil
}

func (c *cursor) cstring(n int, what string) (string, error) {
	p, err := c.takeDeclared(n, what)
	if err != nil {
		return "", err
	}
	return trimTerminator(p, what)
}

func trimTerminator(p []byte, what string) (string, error) {
	if len(p) == 0 {
		return "", nil
	}
	if p[len(p)-1] != 0 {
		return "", fmt.Errorf("%w: argument: %s not NUL terminated", wire.ErrMalformed, what)
	}
	return string(p[:len(p)-1]), nil
}

func (c *cursor) boolean(arg *Argument) (Value, error) {
	if arg.Variable {
		n, err := c.u16()
		if err != nil {
			return nil, err
		}
		if arg.Name, err = c.cstring(n, "name"); err != nil {
			return nil, err
		}
		arg.NameTerminated = n == 1
	}
	p, err := c.take(1)
	if err != nil {
		return nil, err
	}
	switch p[0] {
	case 0:
		return Bool(false), nil
	case 1:
		return Bool(true), nil
	default:
		return nil, fmt.Errorf("%w: argument: bool byte 0x%02x", wire.ErrMalformed, p[0])
	}
}

func (c *cursor) numeric(info TypeInfo, arg *Argument) (Value, error) {
	if arg.Variable {
		nameLen, err := c.u16()
		if err != nil {
			return nil, err
		}
		unitLen, err := c.u16()
		if err != nil {
			return nil, err
		}
		if arg.Name, err = c.cstring(nameLen, "name"); err != nil {
			return nil, err
		}
		if arg.Unit, err = c.cstring(unitLen, "unit"); err != nil {
			return nil, err
		}
		arg.NameTerminated = nameLen == 1
		arg.UnitTerminated = unitLen == 1
	}
	if info.FixedPoint {
		return c.fixedPoint(info)
	}
	if info.Width == Width128 {
		hi, lo, err := c.wide()
		if err != nil {
			return nil, err
		}
		if info.Kind == KindSigned {
			return Int128{Hi: int64(hi), Lo: lo}, nil
		}
		return Uint128{Hi: hi, Lo: lo}, nil
	}
	raw, err := c.unsigned(info.Width)
	if err != nil {
		return nil, err
	}
	switch info.Kind {
	case KindSigned:
		return SignedInt{Width: info.Width, Value: signExtend(raw, info.Width)}, nil
	case KindUnsigned:
		return UnsignedInt{Width: info.Width, Value: raw}, nil
	default:
		if info.Width == Width32 {
			return Float32(math.Float32frombits(uint32(raw))), nil
		}
		return Float64(math.Float64frombits(raw)), nil
	}
}

func (c *cursor) fixedPoint(info TypeInfo) (Value, error) {
	q, err := c.unsigned(Width32)
	if err != nil {
		return nil, err
	}
	v := FixedPoint{
		Signed:       info.Kind == KindSigned,
		Width:        info.Width,
		Quantization: math.Float32frombits(uint32(q)),
	}
	if info.Width == Width64 {
		off, err := c.unsigned(Width64)
		if err != nil {
			return nil, err
		}
		v.Offset = int64(off)
	} else {
		off, err := c.unsigned(Width32)
		if err != nil {
			return nil, err
		}
		v.Offset = int64(int32(uint32(off)))
	}
	if v.Raw, err = c.unsigned(info.Width); err != nil {
		return nil, err
	}
	return v, nil
}

func (c *cursor) sized(info TypeInfo, arg *Argument) (Value, error) {
	n, err := c.u16()
	if err != nil {
		return nil, err
	}
	if arg.Variable {
		nameLen, err := c.u16()
		if err != nil {
			return nil, err
		}
		if arg.Name, err = c.cstring(nameLen, "name"); err != nil {
			return nil, err
		}
		arg.NameTerminated = nameLen == 1
	}
	if info.Kind == KindRaw {
		p, err := c.takeDeclared(n, "raw")
		if err != nil {
			return nil, err
		}
		return Raw(bytes.Clone(p)), nil
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: argument: zero-length string has no terminator", wire.ErrMalformed)
	}
	text, err := c.cstring(n, "string")
	if err != nil {
		return nil, err
	}
	return String{Text: text, Encoding: info.Encoding}, nil
}

func signExtend(raw uint64, w Width) int64 {
	shift := 64 - uint(w)
	return int64(raw<<shift) >> shift
}

// Append writes the type-info word and value of a to dst.
func Append(dst []byte, a Argument, order wire.Order) ([]byte, error) {
	if err := check(a); err != nil {
		return dst, err
	}
	info := a.Info()
	dst = order.AppendUint32(dst, info.Encode())
	switch v := a.Value.(type) {
	case Bool:
		if a.Variable {
			dst = appendLabelLen(dst, a.Name, a.NameTerminated, order)
			dst = appendLabel(dst, a.Name, a.NameTerminated)
		}
		if v {
			return append(dst, 1), nil
		}
		return append(dst, 0), nil
	case String:
		dst = order.AppendUint16(dst, uint16(len(v.Text)+1))
		dst = appendSizedName(dst, a, order)
		dst = append(dst, v.Text...)
		return append(dst, 0), nil
	case Raw:
		dst = order.AppendUint16(dst, uint16(len(v)))
		dst = appendSizedName(dst, a, order)
		return append(dst, v...), nil
	}

	if a.Variable {
		dst = appendLabelLen(dst, a.Name, a.NameTerminated, order)
		dst = appendLabelLen(dst, a.Unit, a.UnitTerminated, order)
		dst = appendLabel(dst, a.Name, a.NameTerminated)
		dst = appendLabel(dst, a.Unit, a.UnitTerminated)
	}
	switch v := a.Value.(type) {
	case SignedInt:
		return appendUint(dst, uint64(v.Value), v.Width, order), nil
	case UnsignedInt:
		return appendUint(dst, v.Value, v.Width, order), nil
	case Int128:
		return appendWide(dst, uint64(v.Hi), v.Lo, order), nil
	case Uint128:
		return appendWide(dst, v.Hi, v.Lo, order), nil
	case Float32:
		return order.AppendUint32(dst, math.Float32bits(float32(v))), nil
	case Float64:
		return order.AppendUint64(dst, math.Float64bits(float64(v))), nil
	case FixedPoint:
		dst = order.AppendUint32(dst, math.Float32bits(v.Quantization))
		if v.Width == Width64 {
			dst = order.AppendUint64(dst, uint64(v.Offset))
		} else {
			dst = order.AppendUint32(dst, uint32(int32(v.Offset)))
		}
		return appendUint(dst, v.Raw, v.Width, order), nil
	}
	return dst, fmt.Errorf("%w: unhandled value %T", ErrInvalidValue, a.Value)
}

// Size is the encoded size of a, type-info word included.
func Size(a Argument) int {
	n := TypeInfoLen
	if a.Variable {
		n += 2 + labelLen(a.Name, a.NameTerminated)
		if a.Info().hasUnit() {
			n += 2 + labelLen(a.Unit, a.UnitTerminated)
		}
	}
	switch v := a.Value.(type) {
	case Bool:
		n++
	case String:
		n += 2 + len(v.Text) + 1
	case Raw:
		n += 2 + len(v)
	case Int128, Uint128:
		n += 16
	case FixedPoint:
		n += 4 + 4 + v.Width.Bytes()
		if v.Width == Width64 {
			n += 4
		}
	case Value:
		n += v.Info().Width.Bytes()
	}
	return n
}

func check(a Argument) error {
	if a.Value == nil {
		return fmt.Errorf("%w: nil value", ErrInvalidValue)
	}
	info := a.Info()
	if err := info.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidValue, err)
	}
	if !a.Variable && (a.Name != "" || a.Unit != "" || a.NameTerminated || a.UnitTerminated) {
		return fmt.Errorf("%w: name or unit without variable flag", ErrInvalidValue)
	}
	if (a.Unit != "" || a.UnitTerminated) && !info.hasUnit() {
		return fmt.Errorf("%w: unit on %s", ErrInvalidValue, info.Kind)
	}
	if labelLen(a.Name, true) > maxLengthPrefixed || labelLen(a.Unit, true) > maxLengthPrefixed {
		return fmt.Errorf("%w: name or unit too long", ErrInvalidValue)
	}
	switch v := a.Value.(type) {
	case SignedInt:
		if info.Width == Width128 {
			return fmt.Errorf("%w: use Int128 for 128-bit values", ErrInvalidValue)
		}
		if signExtend(uint64(v.Value), v.Width) != v.Value {
			return fmt.Errorf("%w: %d overflows %d bits", ErrInvalidValue, v.Value, v.Width)
		}
	case UnsignedInt:
		if info.Width == Width128 {
			return fmt.Errorf("%w: use Uint128 for 128-bit values", ErrInvalidValue)
		}
		if v.Width < Width64 && v.Value>>uint(v.Width) != 0 {
			return fmt.Errorf("%w: %d overflows %d bits", ErrInvalidValue, v.Value, v.Width)
		}
	case FixedPoint:
		if v.Width < Width64 && v.Raw>>uint(v.Width) != 0 {
			return fmt.Errorf("%w: fixed point raw 0x%x overflows %d bits", ErrInvalidValue, v.Raw, v.Width)
		}
		if v.Width != Width64 && int64(int32(v.Offset)) != v.Offset {
			return fmt.Errorf("%w: fixed point offset %d needs 64-bit width", ErrInvalidValue, v.Offset)
		}
	case String:
		if len(v.Text)+1 > maxLengthPrefixed {
			return fmt.Errorf("%w: string of %d bytes", ErrInvalidValue, len(v.Text))
		}
	case Raw:
		if len(v) > maxLengthPrefixed {
			return fmt.Errorf("%w: raw of %d bytes", ErrInvalidValue, len(v))
		}
	}
	return nil
}

// labelLen is the encoded length of a name or unit. An empty label takes
// zero bytes unless terminated asks for a lone NUL.
func labelLen(s string, terminated bool) int {
	if s == "" && !terminated {
		return 0
	}
	return len(s) + 1
}

func appendLabelLen(dst []byte, s string, terminated bool, order wire.Order) []byte {
	return order.AppendUint16(dst, uint16(labelLen(s, terminated)))
}

func appendLabel(dst []byte, s string, terminated bool) []byte {
	if s == "" && !terminated {
		return dst
	}
	dst = append(dst, s...)
	return append(dst, 0)
}

func appendSizedName(dst []byte, a Argument, order wire.Order) []byte {
	if !a.Variable {
		return dst
	}
	dst = appendLabelLen(dst, a.Name, a.NameTerminated, order)
	return appendLabel(dst, a.Name, a.NameTerminated)
}

func appendUint(dst []byte, v uint64, w Width, order wire.Order) []byte {
	switch w {
	case Width8:
		return append(dst, uint8(v))
	case Width16:
		return order.AppendUint16(dst, uint16(v))
	case Width32:
		return order.AppendUint32(dst, uint32(v))
	default:
		return order.AppendUint64(dst, v)
	}
}

func appendWide(dst []byte, hi, lo uint64, order wire.Order) []byte {
	if wire.IsBigEndian(order) {
		dst = order.AppendUint64(dst, hi)
		return order.AppendUint64(dst, lo)
	}
	dst = order.AppendUint64(dst, lo)
	return order.AppendUint64(dst, hi)
}
