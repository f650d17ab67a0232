package protocol

import (
	"errors"
	"fmt"
)

var (
	ErrMessageTooLarge = errors.New("protocol: message exceeds 65535 bytes")
	ErrPayloadMismatch = errors.New("protocol: payload does not match extended header")
	ErrArgumentCount   = errors.New("protocol: argument count does not match extended header")
	ErrMissingPayload  = errors.New("protocol: message has no payload")
	ErrUnknownFraming  = errors.New("protocol: unknown framing")
)

// CorruptError reports a candidate message that cannot be decoded. Resync is
// the number of bytes to skip past the candidate start before searching for
// the next message.
type CorruptError struct {
	Reason string
	Resync int
	Err    error
}

func (e *CorruptError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("protocol: corrupt message: %s", e.Reason)
	}
	return fmt.Sprintf("protocol: corrupt message: %s: %v", e.Reason, e.Err)
}

func (e *CorruptError) Unwrap() error { return e.Err }

func corrupt(reason string, err error) *CorruptError {
	return &CorruptError{Reason: reason, Resync: 1, Err: err}
}
