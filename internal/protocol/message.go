package protocol

import (
	"fmt"
	"strings"

	"github.com/danmuck/dltcore/internal/protocol/header"
	"github.com/danmuck/dltcore/internal/protocol/payload"
	"github.com/danmuck/dltcore/internal/protocol/wire"
)

// Framing selects whether each message is preceded by a storage header.
type Framing uint8

const (
	// FramingStorage is the layout of capture files: storage header, then
	// the message.
	FramingStorage Framing = iota
	// FramingWire is the layout of live transport: messages back to back
	// with no storage header.
	FramingWire
)

func (f Framing) String() string {
	switch f {
	case FramingStorage:
		return "storage"
	case FramingWire:
		return "wire"
	default:
		return fmt.Sprintf("framing(%d)", uint8(f))
	}
}

// ParseFraming accepts the names printed by Framing.String.
func ParseFraming(s string) (Framing, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "storage", "file":
		return FramingStorage, nil
	case "wire", "stream":
		return FramingWire, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownFraming, s)
	}
}

// Message is one decoded DLT message. Storage is nil on the wire framing and
// Extended is nil when the standard header does not flag one.
type Message struct {
	Storage  *header.StorageHeader
	Header   header.StandardHeader
	Extended *header.ExtendedHeader
	Payload  payload.Payload
}

// Order is the byte order of the payload.
func (m Message) Order() wire.Order {
	return wire.Endian(m.Header.Flags.BigEndian)
}

// EcuIDs returns the ECU ids carried by the storage and standard headers, in
// that order. Both are returned when both are present; choosing between them
// is left to the caller.
func (m Message) EcuIDs() []wire.ID {
	ids := make([]wire.ID, 0, 2)
	if m.Storage != nil {
		ids = append(ids, m.Storage.EcuID)
	}
	if m.Header.Flags.WithEcuID {
		ids = append(ids, m.Header.EcuID)
	}
	return ids
}

// Verbose reports whether the payload is a self-describing argument list.
func (m Message) Verbose() bool {
	_, ok := m.Payload.(payload.Verbose)
	return ok
}

// Size is the number of bytes Encode produces, storage header included.
func (m Message) Size() int {
	n := m.Header.Flags.Size() + payload.Size(m.Payload)
	if m.Extended != nil {
		n += header.ExtendedHeaderLen
	}
	if m.Storage != nil {
		n += header.StorageHeaderLen
	}
	return n
}

// Normalize returns a copy of m with the derived header fields recomputed:
// the protocol version, the extended header flag and the declared length.
func (m Message) Normalize() (Message, error) {
	if m.Payload == nil {
		return Message{}, ErrMissingPayload
	}
	if err := m.checkPayload(); err != nil {
		return Message{}, err
	}
	out := m
	out.Header.Flags.Version = header.Version
	out.Header.Flags.Extended = m.Extended != nil
	n := out.Header.Flags.Size() + payload.Size(m.Payload)
	if m.Extended != nil {
		n += header.ExtendedHeaderLen
	}
	if n > 0xFFFF {
		return Message{}, fmt.Errorf("%w: %d", ErrMessageTooLarge, n)
	}
	out.Header.Length = uint16(n)
	return out, nil
}

// checkPayload enforces that decoding the encoded message selects the same
// payload variant.
func (m Message) checkPayload() error {
	ext := m.Extended
	if ext != nil {
		if err := ext.Validate(); err != nil {
			return err
		}
	}
	switch p := m.Payload.(type) {
	case payload.Verbose:
		if ext == nil || !ext.Verbose {
			return fmt.Errorf("%w: verbose payload without verbose extended header", ErrPayloadMismatch)
		}
		if int(ext.ArgumentCount) != len(p.Arguments) {
			return fmt.Errorf("%w: header=%d payload=%d", ErrArgumentCount, ext.ArgumentCount, len(p.Arguments))
		}
	case payload.NonVerbose:
		if ext != nil && ext.Verbose {
			return fmt.Errorf("%w: non-verbose payload with verbose flag", ErrPayloadMismatch)
		}
		if ext != nil && ext.Type == header.TypeControl {
			return fmt.Errorf("%w: control message carries non-verbose payload", ErrPayloadMismatch)
		}
	case payload.Control:
		if ext == nil || ext.Verbose || ext.Type != header.TypeControl {
			return fmt.Errorf("%w: control payload needs a non-verbose control header", ErrPayloadMismatch)
		}
		if header.ControlType(ext.Subtype) != p.Kind {
			return fmt.Errorf("%w: control kind %d, header subtype %d", ErrPayloadMismatch, p.Kind, ext.Subtype)
		}
	default:
		return fmt.Errorf("%w: %T", ErrPayloadMismatch, m.Payload)
	}
	return nil
}
