// Package header encodes and decodes the three DLT header layers: the storage
// header written by capture tools, the standard header every message starts
// with, and the optional extended header carrying log metadata.
package header

import (
	"errors"
	"fmt"

	"github.com/danmuck/dltcore/internal/protocol/wire"
)

const (
	StorageHeaderLen     = 16
	StandardHeaderMinLen = 4
	ExtendedHeaderLen    = 10

	// Version is the only protocol version accepted in the HTYP field.
	Version uint8 = 1
)

// StorageMagic opens every storage header.
var StorageMagic = [4]byte{'D', 'L', 'T', 0x01}

// HTYP bits.
const (
	flagExtended      uint8 = 0x01
	flagBigEndian     uint8 = 0x02
	flagWithEcuID     uint8 = 0x04
	flagWithSessionID uint8 = 0x08
	flagWithTimestamp uint8 = 0x10
	versionShift            = 5
	versionMask       uint8 = 0x07
)

// MSIN bits.
const (
	infoVerbose      uint8 = 0x01
	infoTypeShift          = 1
	infoTypeMask     uint8 = 0x07
	infoSubtypeShift       = 4
)

var ErrNotStorageHeader = errors.New("header: storage header magic mismatch")

// StorageHeader is the capture-time prefix found in stored streams.
type StorageHeader struct {
	Seconds      uint32
	Microseconds uint32
	EcuID        wire.ID
}

// Flags is the decoded HTYP byte.
type Flags struct {
	Extended      bool
	BigEndian     bool
	WithEcuID     bool
	WithSessionID bool
	WithTimestamp bool
	Version       uint8
}

// StandardHeader is the mandatory header of every message. Length counts the
// standard header, the extended header and the payload.
type StandardHeader struct {
	Flags     Flags
	Counter   uint8
	Length    uint16
	EcuID     wire.ID
	SessionID uint32
	Timestamp uint32
}

// ExtendedHeader carries message classification and routing ids.
type ExtendedHeader struct {
	Verbose       bool
	Type          MessageType
	Subtype       uint8
	ArgumentCount uint8
	AppID         wire.ID
	ContextID     wire.ID
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: header: %s", wire.ErrMalformed, fmt.Sprintf(format, args...))
}
