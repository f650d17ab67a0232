package wire

import "encoding/binary"

// Order reads and appends multi-byte values in one byte order.
// binary.BigEndian and binary.LittleEndian both satisfy it.
type Order interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// Endian returns the payload byte order selected by the MSBF flag.
func Endian(bigEndian bool) Order {
	if bigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// IsBigEndian reports whether o is network byte order.
func IsBigEndian(o Order) bool {
	return o == Order(binary.BigEndian)
}
