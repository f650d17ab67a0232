// Package payload decodes and encodes message bodies: verbose argument lists,
// non-verbose id + raw bytes, and control service messages.
package payload

import (
	"errors"
	"fmt"

	"github.com/danmuck/dltcore/internal/protocol/header"
	"github.com/danmuck/dltcore/internal/protocol/wire"
)

var (
	ErrTrailingBytes   = fmt.Errorf("%w: payload: trailing bytes after declared arguments", wire.ErrMalformed)
	ErrArgumentCount   = errors.New("payload: argument count mismatch")
	ErrPayloadTooLarge = errors.New("payload: too large")
)

// Payload is one of Verbose, NonVerbose or Control.
type Payload interface {
	payload()
}

func (Verbose) payload()    {}
func (NonVerbose) payload() {}
func (Control) payload()    {}

// Decode interprets b as the body of a message with extended header ext
// (nil when absent). Verbose bodies require ext; control bodies are selected
// by a non-verbose control message type.
func Decode(b []byte, ext *header.ExtendedHeader, order wire.Order) (Payload, error) {
	switch {
	case ext == nil:
		return DecodeNonVerbose(b, order)
	case ext.Verbose:
		return DecodeVerbose(b, int(ext.ArgumentCount), order)
	case ext.Type == header.TypeControl:
		return DecodeControl(b, header.ControlType(ext.Subtype), order)
	default:
		return DecodeNonVerbose(b, order)
	}
}

// Append writes the encoded body of p to dst.
func Append(dst []byte, p Payload, order wire.Order) ([]byte, error) {
	switch v := p.(type) {
	case Verbose:
		return AppendVerbose(dst, v, order)
	case NonVerbose:
		return AppendNonVerbose(dst, v, order), nil
	case Control:
		return AppendControl(dst, v, order), nil
	default:
		return dst, fmt.Errorf("payload: unknown payload %T", p)
	}
}

// Size is the encoded size of p.
func Size(p Payload) int {
	switch v := p.(type) {
	case Verbose:
		return v.Size()
	case NonVerbose:
		return MessageIDLen + len(v.Raw)
	case Control:
		return v.Size()
	default:
		return 0
	}
}
