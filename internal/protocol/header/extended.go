package header

import "github.com/danmuck/dltcore/internal/protocol/wire"

// DecodeExtendedHeader parses an extended header from the start of b.
func DecodeExtendedHeader(b []byte) (ExtendedHeader, int, error) {
	if len(b) < ExtendedHeaderLen {
		return ExtendedHeader{}, 0, wire.ErrIncomplete
	}
	info := b[0]
	h := ExtendedHeader{
		Verbose:       info&infoVerbose != 0,
		Type:          MessageType((info >> infoTypeShift) & infoTypeMask),
		Subtype:       info >> infoSubtypeShift,
		ArgumentCount: b[1],
		AppID:         wire.IDFromBytes(b[2:6]),
		ContextID:     wire.IDFromBytes(b[6:10]),
	}
	if err := h.validate(); err != nil {
		return ExtendedHeader{}, 0, err
	}
	return h, ExtendedHeaderLen, nil
}

// AppendExtendedHeader appends the wire form of h to dst.
func AppendExtendedHeader(dst []byte, h ExtendedHeader) []byte {
	dst = append(dst, h.infoByte(), h.ArgumentCount)
	dst = append(dst, h.AppID[:]...)
	return append(dst, h.ContextID[:]...)
}

func EncodeExtendedHeader(h ExtendedHeader) []byte {
	return AppendExtendedHeader(make([]byte, 0, ExtendedHeaderLen), h)
}

func (h ExtendedHeader) infoByte() uint8 {
	b := (uint8(h.Type)&infoTypeMask)<<infoTypeShift | h.Subtype<<infoSubtypeShift
	if h.Verbose {
		b |= infoVerbose
	}
	return b
}

func (h ExtendedHeader) validate() error {
	if !h.Type.valid() {
		return malformed("reserved message type %d", uint8(h.Type))
	}
	if !h.Type.validSubtype(h.Subtype) {
		return malformed("invalid subtype %d for %s", h.Subtype, h.Type)
	}
	return nil
}

// Validate reports whether h can be encoded.
func (h ExtendedHeader) Validate() error {
	if h.Subtype > 0x0F {
		return malformed("subtype %d exceeds 4 bits", h.Subtype)
	}
	return h.validate()
}

// LogLevel returns the level of a log message.
func (h ExtendedHeader) LogLevel() (LogLevel, bool) {
	if h.Type != TypeLog {
		return 0, false
	}
	return LogLevel(h.Subtype), true
}

// ControlType returns the direction of a control message.
func (h ExtendedHeader) ControlType() (ControlType, bool) {
	if h.Type != TypeControl {
		return 0, false
	}
	return ControlType(h.Subtype), true
}

// AppTraceType returns the subtype of an application trace message.
func (h ExtendedHeader) AppTraceType() (AppTraceType, bool) {
	if h.Type != TypeAppTrace {
		return 0, false
	}
	return AppTraceType(h.Subtype), true
}

// NetworkTraceType returns the bus of a network trace message.
func (h ExtendedHeader) NetworkTraceType() (NetworkTraceType, bool) {
	if h.Type != TypeNetworkTrace {
		return 0, false
	}
	return NetworkTraceType(h.Subtype), true
}
