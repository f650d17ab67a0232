package wire

import "errors"

// Error taxonomy shared by every codec layer.
var (
	// ErrIncomplete means the buffer ended before the structure did. Retry
	// once more bytes arrive.
	ErrIncomplete = errors.New("dlt: incomplete input")
	// ErrMalformed means a field violates a structural invariant.
	ErrMalformed = errors.New("dlt: malformed")
	// ErrUnsupportedType means a type-info value names a kind outside the
	// supported argument set.
	ErrUnsupportedType = errors.New("dlt: unsupported argument type")
)

// IsRecoverable reports whether err only asks for more input.
func IsRecoverable(err error) bool {
	return errors.Is(err, ErrIncomplete)
}
