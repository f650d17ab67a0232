package protocol

import (
	"github.com/danmuck/dltcore/internal/protocol/header"
	"github.com/danmuck/dltcore/internal/protocol/payload"
)

// Encode returns the wire form of m. Derived header fields are recomputed as
// in Normalize.
func Encode(m Message) ([]byte, error) {
	return Append(make([]byte, 0, m.Size()), m)
}

// Append writes the wire form of m to dst.
func Append(dst []byte, m Message) ([]byte, error) {
	m, err := m.Normalize()
	if err != nil {
		return dst, err
	}
	if m.Storage != nil {
		dst = header.AppendStorageHeader(dst, *m.Storage)
	}
	dst = header.AppendStandardHeader(dst, m.Header)
	if m.Extended != nil {
		dst = header.AppendExtendedHeader(dst, *m.Extended)
	}
	return payload.Append(dst, m.Payload, m.Order())
}
