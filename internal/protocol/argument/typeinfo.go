// Package argument implements the self-describing values of verbose DLT
// payloads: the 32-bit type-info word and the value encodings it selects.
package argument

import (
	"fmt"

	"github.com/danmuck/dltcore/internal/protocol/wire"
)

// TypeInfoLen is the size of the type-info word preceding every value.
const TypeInfoLen = 4

// Type-info bits.
const (
	bitsLength     uint32 = 0x0000000F
	bitBool        uint32 = 0x00000010
	bitSigned      uint32 = 0x00000020
	bitUnsigned    uint32 = 0x00000040
	bitFloat       uint32 = 0x00000080
	bitArray       uint32 = 0x00000100
	bitString      uint32 = 0x00000200
	bitRaw         uint32 = 0x00000400
	bitVariable    uint32 = 0x00000800
	bitFixedPoint  uint32 = 0x00001000
	bitTraceInfo   uint32 = 0x00002000
	bitStruct      uint32 = 0x00004000
	scodShift             = 15
	bitsCoding     uint32 = 0x7 << scodShift
	bitsKnown             = bitsLength | bitBool | bitSigned | bitUnsigned | bitFloat | bitArray | bitString | bitRaw | bitVariable | bitFixedPoint | bitTraceInfo | bitStruct | bitsCoding
	bitsKindFamily        = bitBool | bitSigned | bitUnsigned | bitFloat | bitString | bitRaw
)

// Kind is the value family selected by a type-info word.
type Kind uint8

const (
	KindBool Kind = iota + 1
	KindSigned
	KindUnsigned
	KindFloat
	KindString
	KindRaw
)

var kindNames = map[Kind]string{
	KindBool:     "bool",
	KindSigned:   "sint",
	KindUnsigned: "uint",
	KindFloat:    "float",
	KindString:   "string",
	KindRaw:      "raw",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Width is a value width in bits.
type Width uint8

const (
	Width8   Width = 8
	Width16  Width = 16
	Width32  Width = 32
	Width64  Width = 64
	Width128 Width = 128
)

// Bytes is the encoded size of a value of width w.
func (w Width) Bytes() int {
	return int(w) / 8
}

func widthFromTYLE(tyle uint32) (Width, bool) {
	switch tyle {
	case 1:
		return Width8, true
	case 2:
		return Width16, true
	case 3:
		return Width32, true
	case 4:
		return Width64, true
	case 5:
		return Width128, true
	default:
		return 0, false
	}
}

func (w Width) tyle() uint32 {
	switch w {
	case Width8:
		return 1
	case Width16:
		return 2
	case Width32:
		return 3
	case Width64:
		return 4
	case Width128:
		return 5
	default:
		return 0
	}
}

// Encoding is the SCOD string coding.
type Encoding uint8

const (
	EncodingASCII Encoding = 0
	EncodingUTF8  Encoding = 1
)

func (e Encoding) String() string {
	switch e {
	case EncodingASCII:
		return "ascii"
	case EncodingUTF8:
		return "utf8"
	default:
		return fmt.Sprintf("coding(%d)", uint8(e))
	}
}

// TypeInfo is a decoded type-info word. Width is zero for strings and raw
// data; Encoding is meaningful for strings only.
type TypeInfo struct {
	Kind       Kind
	Width      Width
	Variable   bool
	FixedPoint bool
	Encoding   Encoding
}

// DecodeTypeInfo resolves a type-info word into one of the supported kinds.
// Arrays, structs, trace info, half and quad precision floats and 128-bit
// fixed point values are reported as wire.ErrUnsupportedType.
func DecodeTypeInfo(v uint32) (TypeInfo, error) {
	if v&^bitsKnown != 0 {
		return TypeInfo{}, unsupported(v, "reserved bits set")
	}
	if v&(bitArray|bitTraceInfo|bitStruct) != 0 {
		return TypeInfo{}, unsupported(v, "arrays, structs and trace info")
	}
	info := TypeInfo{
		Variable:   v&bitVariable != 0,
		FixedPoint: v&bitFixedPoint != 0,
	}
	switch v & bitsKindFamily {
	case bitBool:
		info.Kind = KindBool
	case bitSigned:
		info.Kind = KindSigned
	case bitUnsigned:
		info.Kind = KindUnsigned
	case bitFloat:
		info.Kind = KindFloat
	case bitString:
		info.Kind = KindString
	case bitRaw:
		info.Kind = KindRaw
	default:
		return TypeInfo{}, unsupported(v, "no single kind bit")
	}

	tyle := v & bitsLength
	coding := (v & bitsCoding) >> scodShift
	switch info.Kind {
	case KindString, KindRaw:
		if tyle != 0 {
			return TypeInfo{}, unsupported(v, "length code on variable-size kind")
		}
	default:
		w, ok := widthFromTYLE(tyle)
		if !ok {
			return TypeInfo{}, unsupported(v, "invalid length code")
		}
		info.Width = w
	}
	if info.Kind == KindString {
		if coding > uint32(EncodingUTF8) {
			return TypeInfo{}, unsupported(v, "unknown string coding")
		}
		info.Encoding = Encoding(coding)
	} else if coding != 0 {
		return TypeInfo{}, unsupported(v, "string coding on non-string kind")
	}
	if err := info.Validate(); err != nil {
		return TypeInfo{}, err
	}
	return info, nil
}

// Validate checks that info names a supported, encodable combination.
func (info TypeInfo) Validate() error {
	switch info.Kind {
	case KindBool:
		if info.Width != Width8 {
			return fmt.Errorf("%w: bool of width %d", wire.ErrUnsupportedType, info.Width)
		}
	case KindSigned, KindUnsigned:
		if info.Width.tyle() == 0 {
			return fmt.Errorf("%w: integer of width %d", wire.ErrUnsupportedType, info.Width)
		}
		if info.FixedPoint && info.Width == Width128 {
			return fmt.Errorf("%w: 128-bit fixed point", wire.ErrUnsupportedType)
		}
	case KindFloat:
		if info.Width != Width32 && info.Width != Width64 {
			return fmt.Errorf("%w: float of width %d", wire.ErrUnsupportedType, info.Width)
		}
	case KindString:
		if info.Encoding > EncodingUTF8 {
			return fmt.Errorf("%w: string coding %d", wire.ErrUnsupportedType, info.Encoding)
		}
	case KindRaw:
	default:
		return fmt.Errorf("%w: kind %d", wire.ErrUnsupportedType, info.Kind)
	}
	if info.FixedPoint && info.Kind != KindSigned && info.Kind != KindUnsigned {
		return fmt.Errorf("%w: fixed point %s", wire.ErrUnsupportedType, info.Kind)
	}
	if (info.Kind == KindString || info.Kind == KindRaw) && info.Width != 0 {
		return fmt.Errorf("%w: width on %s", wire.ErrUnsupportedType, info.Kind)
	}
	return nil
}

// Encode packs info into a type-info word.
func (info TypeInfo) Encode() uint32 {
	var v uint32
	switch info.Kind {
	case KindBool:
		v = bitBool
	case KindSigned:
		v = bitSigned
	case KindUnsigned:
		v = bitUnsigned
	case KindFloat:
		v = bitFloat
	case KindString:
		v = bitString | uint32(info.Encoding)<<scodShift
	case KindRaw:
		v = bitRaw
	}
	v |= info.Width.tyle()
	if info.Variable {
		v |= bitVariable
	}
	if info.FixedPoint {
		v |= bitFixedPoint
	}
	return v
}

// hasUnit reports whether variable info carries a unit next to the name.
func (info TypeInfo) hasUnit() bool {
	switch info.Kind {
	case KindSigned, KindUnsigned, KindFloat:
		return true
	default:
		return false
	}
}

func unsupported(v uint32, reason string) error {
	return fmt.Errorf("%w: type info 0x%08x: %s", wire.ErrUnsupportedType, v, reason)
}
