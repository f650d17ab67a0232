package wire

import "strings"

// IDLen is the size of every ECU, application and context identifier.
const IDLen = 4

// ID is a 4-byte ASCII identifier. The raw bytes are kept verbatim so that
// padding survives a decode/encode cycle.
type ID [IDLen]byte

// NewID builds an ID from s, truncated to 4 bytes and NUL padded.
func NewID(s string) ID {
	var id ID
	copy(id[:], s)
	return id
}

// IDFromBytes copies the first 4 bytes of b.
func IDFromBytes(b []byte) ID {
	var id ID
	copy(id[:], b[:IDLen])
	return id
}

func (id ID) String() string {
	return strings.TrimRight(string(id[:]), "\x00 ")
}

// IsZero reports whether every byte is NUL.
func (id ID) IsZero() bool {
	return id == ID{}
}
