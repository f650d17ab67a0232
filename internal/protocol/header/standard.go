package header

import (
	"encoding/binary"
	"time"

	"github.com/danmuck/dltcore/internal/protocol/wire"
)

// DecodeFlags unpacks an HTYP byte.
func DecodeFlags(b uint8) Flags {
	return Flags{
		Extended:      b&flagExtended != 0,
		BigEndian:     b&flagBigEndian != 0,
		WithEcuID:     b&flagWithEcuID != 0,
		WithSessionID: b&flagWithSessionID != 0,
		WithTimestamp: b&flagWithTimestamp != 0,
		Version:       (b >> versionShift) & versionMask,
	}
}

// Byte packs f into an HTYP byte.
func (f Flags) Byte() uint8 {
	var b uint8
	if f.Extended {
		b |= flagExtended
	}
	if f.BigEndian {
		b |= flagBigEndian
	}
	if f.WithEcuID {
		b |= flagWithEcuID
	}
	if f.WithSessionID {
		b |= flagWithSessionID
	}
	if f.WithTimestamp {
		b |= flagWithTimestamp
	}
	return b | (f.Version&versionMask)<<versionShift
}

// Size is the encoded size of the standard header including optional fields.
func (f Flags) Size() int {
	n := StandardHeaderMinLen
	if f.WithEcuID {
		n += 4
	}
	if f.WithSessionID {
		n += 4
	}
	if f.WithTimestamp {
		n += 4
	}
	return n
}

// MinLength is the smallest Length value consistent with f.
func (f Flags) MinLength() int {
	n := f.Size()
	if f.Extended {
		n += ExtendedHeaderLen
	}
	return n
}

// DecodeStandardHeader parses a standard header from the start of b. All
// multi-byte fields are big-endian regardless of the MSBF flag.
func DecodeStandardHeader(b []byte) (StandardHeader, int, error) {
	if len(b) < 1 {
		return StandardHeader{}, 0, wire.ErrIncomplete
	}
	flags := DecodeFlags(b[0])
	if flags.Version != Version {
		return StandardHeader{}, 0, malformed("unsupported version %d", flags.Version)
	}
	if len(b) < StandardHeaderMinLen {
		return StandardHeader{}, 0, wire.ErrIncomplete
	}
	h := StandardHeader{
		Flags:   flags,
		Counter: b[1],
		Length:  binary.BigEndian.Uint16(b[2:4]),
	}
	if int(h.Length) < flags.MinLength() {
		return StandardHeader{}, 0, malformed("length %d below minimum %d", h.Length, flags.MinLength())
	}
	size := flags.Size()
	if len(b) < size {
		return StandardHeader{}, 0, wire.ErrIncomplete
	}
	off := StandardHeaderMinLen
	if flags.WithEcuID {
		h.EcuID = wire.IDFromBytes(b[off : off+4])
		off += 4
	}
	if flags.WithSessionID {
		h.SessionID = binary.BigEndian.Uint32(b[off : off+4])
		off += 4
	}
	if flags.WithTimestamp {
		h.Timestamp = binary.BigEndian.Uint32(b[off : off+4])
	}
	return h, size, nil
}

// AppendStandardHeader appends the wire form of h to dst. Optional fields are
// written only when their presence flag is set.
func AppendStandardHeader(dst []byte, h StandardHeader) []byte {
	dst = append(dst, h.Flags.Byte(), h.Counter)
	dst = binary.BigEndian.AppendUint16(dst, h.Length)
	if h.Flags.WithEcuID {
		dst = append(dst, h.EcuID[:]...)
	}
	if h.Flags.WithSessionID {
		dst = binary.BigEndian.AppendUint32(dst, h.SessionID)
	}
	if h.Flags.WithTimestamp {
		dst = binary.BigEndian.AppendUint32(dst, h.Timestamp)
	}
	return dst
}

func EncodeStandardHeader(h StandardHeader) []byte {
	return AppendStandardHeader(make([]byte, 0, h.Flags.Size()), h)
}

// Uptime converts the 0.1 ms timestamp to a duration. The second result is
// false when the header carries no timestamp.
func (h StandardHeader) Uptime() (time.Duration, bool) {
	if !h.Flags.WithTimestamp {
		return 0, false
	}
	return time.Duration(h.Timestamp) * 100 * time.Microsecond, true
}
