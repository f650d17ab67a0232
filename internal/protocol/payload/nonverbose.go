package payload

import (
	"bytes"

	"github.com/danmuck/dltcore/internal/protocol/wire"
)

// MessageIDLen is the size of the non-verbose message id.
const MessageIDLen = 4

// NonVerbose is an opaque body identified by a message id. Interpreting Raw
// needs an external description of the id.
type NonVerbose struct {
	MessageID uint32
	Raw       []byte
}

// DecodeNonVerbose reads the message id and keeps the remainder of b as Raw.
func DecodeNonVerbose(b []byte, order wire.Order) (NonVerbose, error) {
	if len(b) < MessageIDLen {
		return NonVerbose{}, wire.ErrIncomplete
	}
	return NonVerbose{
		MessageID: order.Uint32(b[:MessageIDLen]),
		Raw:       bytes.Clone(b[MessageIDLen:]),
	}, nil
}

func AppendNonVerbose(dst []byte, v NonVerbose, order wire.Order) []byte {
	dst = order.AppendUint32(dst, v.MessageID)
	return append(dst, v.Raw...)
}
