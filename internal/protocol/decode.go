package protocol

import (
	"errors"
	"fmt"

	"github.com/danmuck/dltcore/internal/protocol/header"
	"github.com/danmuck/dltcore/internal/protocol/payload"
	"github.com/danmuck/dltcore/internal/protocol/wire"
)

// Decode reads one message from the start of b. It returns the message and
// the number of bytes consumed, wire.ErrIncomplete when b ends before the
// declared length, or a *CorruptError when the candidate cannot be a valid
// message. Nothing in the result aliases b.
func Decode(b []byte, framing Framing) (Message, int, error) {
	var m Message
	f, err := decodeFrame(b, framing)
	if err != nil {
		return Message{}, 0, err
	}
	if len(b) < f.total {
		return Message{}, 0, wire.ErrIncomplete
	}
	m.Storage = f.storage
	m.Header = f.std
	body := b[f.body:f.total]

	if f.std.Flags.Extended {
		ext, n, err := header.DecodeExtendedHeader(body)
		if err != nil {
			return Message{}, 0, corrupt("extended header", err)
		}
		m.Extended = &ext
		body = body[n:]
	}

	p, err := payload.Decode(body, m.Extended, m.Order())
	if err != nil {
		if errors.Is(err, wire.ErrIncomplete) {
			err = fmt.Errorf("%w: payload shorter than declared arguments", wire.ErrMalformed)
		}
		return Message{}, 0, corrupt("payload", err)
	}
	m.Payload = p
	return m, f.total, nil
}

// Peek decodes only the storage and standard headers at the start of b and
// returns the total number of bytes the message declares, storage header
// included. It fails the same way Decode does for those headers.
func Peek(b []byte, framing Framing) (int, error) {
	f, err := decodeFrame(b, framing)
	if err != nil {
		return 0, err
	}
	return f.total, nil
}

type frame struct {
	storage *header.StorageHeader
	std     header.StandardHeader
	body    int
	total   int
}

func decodeFrame(b []byte, framing Framing) (frame, error) {
	var f frame
	off := 0
	if framing == FramingStorage {
		sh, n, err := header.DecodeStorageHeader(b)
		if err != nil {
			if errors.Is(err, wire.ErrIncomplete) {
				return frame{}, err
			}
			return frame{}, corrupt("storage header", err)
		}
		f.storage = &sh
		off = n
	}

	std, n, err := header.DecodeStandardHeader(b[off:])
	if err != nil {
		if errors.Is(err, wire.ErrIncomplete) {
			return frame{}, err
		}
		return frame{}, corrupt("standard header", err)
	}
	f.std = std
	f.body = off + n
	f.total = off + int(std.Length)
	return f, nil
}
