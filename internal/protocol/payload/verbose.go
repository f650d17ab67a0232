package payload

import (
	"fmt"
	"math"

	"github.com/danmuck/dltcore/internal/protocol/argument"
	"github.com/danmuck/dltcore/internal/protocol/wire"
)

// Verbose is a self-describing argument list.
type Verbose struct {
	Arguments []argument.Argument
}

// DecodeVerbose reads exactly count arguments. Running out of bytes is
// wire.ErrIncomplete; bytes left over after count arguments are
// ErrTrailingBytes.
func DecodeVerbose(b []byte, count int, order wire.Order) (Verbose, error) {
	v := Verbose{Arguments: make([]argument.Argument, 0, count)}
	off := 0
	for i := 0; i < count; i++ {
		arg, n, err := argument.Decode(b[off:], order)
		if err != nil {
			return Verbose{}, fmt.Errorf("payload: argument %d: %w", i, err)
		}
		v.Arguments = append(v.Arguments, arg)
		off += n
	}
	if off != len(b) {
		return Verbose{}, fmt.Errorf("%w: %d bytes", ErrTrailingBytes, len(b)-off)
	}
	return v, nil
}

// AppendVerbose writes type-info and value pairs in argument order.
func AppendVerbose(dst []byte, v Verbose, order wire.Order) ([]byte, error) {
	if len(v.Arguments) > math.MaxUint8 {
		return dst, fmt.Errorf("%w: %d arguments", ErrArgumentCount, len(v.Arguments))
	}
	var err error
	for i, arg := range v.Arguments {
		if dst, err = argument.Append(dst, arg, order); err != nil {
			return dst, fmt.Errorf("payload: argument %d: %w", i, err)
		}
	}
	return dst, nil
}

func (v Verbose) Size() int {
	n := 0
	for _, arg := range v.Arguments {
		n += argument.Size(arg)
	}
	return n
}
