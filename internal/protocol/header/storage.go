package header

import (
	"bytes"
	"encoding/binary"
	"time"

	"github.com/danmuck/dltcore/internal/protocol/wire"
)

// DecodeStorageHeader parses a storage header from the start of b. Storage
// header fields are always little-endian.
func DecodeStorageHeader(b []byte) (StorageHeader, int, error) {
	n := min(len(b), len(StorageMagic))
	if !bytes.Equal(b[:n], StorageMagic[:n]) {
		return StorageHeader{}, 0, ErrNotStorageHeader
	}
	if len(b) < StorageHeaderLen {
		return StorageHeader{}, 0, wire.ErrIncomplete
	}
	return StorageHeader{
		Seconds:      binary.LittleEndian.Uint32(b[4:8]),
		Microseconds: binary.LittleEndian.Uint32(b[8:12]),
		EcuID:        wire.IDFromBytes(b[12:16]),
	}, StorageHeaderLen, nil
}

// AppendStorageHeader appends the wire form of h to dst.
func AppendStorageHeader(dst []byte, h StorageHeader) []byte {
	dst = append(dst, StorageMagic[:]...)
	dst = binary.LittleEndian.AppendUint32(dst, h.Seconds)
	dst = binary.LittleEndian.AppendUint32(dst, h.Microseconds)
	return append(dst, h.EcuID[:]...)
}

func EncodeStorageHeader(h StorageHeader) []byte {
	return AppendStorageHeader(make([]byte, 0, StorageHeaderLen), h)
}

// IndexStorageMagic returns the offset of the next storage magic in b, or -1.
func IndexStorageMagic(b []byte) int {
	return bytes.Index(b, StorageMagic[:])
}

// Time returns the capture time in UTC.
func (h StorageHeader) Time() time.Time {
	return time.Unix(int64(h.Seconds), int64(h.Microseconds)*int64(time.Microsecond)).UTC()
}
