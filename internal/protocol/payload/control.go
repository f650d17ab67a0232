package payload

import (
	"bytes"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/danmuck/dltcore/internal/protocol/header"
	"github.com/danmuck/dltcore/internal/protocol/wire"
)

// ServiceID selects a control service.
type ServiceID uint32

const (
	ServiceSetLogLevel                ServiceID = 0x01
	ServiceSetTraceStatus             ServiceID = 0x02
	ServiceGetLogInfo                 ServiceID = 0x03
	ServiceGetDefaultLogLevel         ServiceID = 0x04
	ServiceStoreConfiguration         ServiceID = 0x05
	ServiceResetToFactoryDefault      ServiceID = 0x06
	ServiceSetMessageFiltering        ServiceID = 0x0A
	ServiceSetDefaultLogLevel         ServiceID = 0x11
	ServiceSetDefaultTraceStatus      ServiceID = 0x12
	ServiceGetSoftwareVersion         ServiceID = 0x13
	ServiceGetDefaultTraceStatus      ServiceID = 0x15
	ServiceGetLogChannelNames         ServiceID = 0x17
	ServiceGetTraceStatus             ServiceID = 0x1F
	ServiceSetLogChannelAssignment    ServiceID = 0x20
	ServiceSetLogChannelThreshold     ServiceID = 0x21
	ServiceGetLogChannelThreshold     ServiceID = 0x22
	ServiceBufferOverflowNotification ServiceID = 0x23
)

var serviceNames = map[ServiceID]string{
	ServiceSetLogLevel:                "set_log_level",
	ServiceSetTraceStatus:             "set_trace_status",
	ServiceGetLogInfo:                 "get_log_info",
	ServiceGetDefaultLogLevel:         "get_default_log_level",
	ServiceStoreConfiguration:         "store_configuration",
	ServiceResetToFactoryDefault:      "reset_to_factory_default",
	ServiceSetMessageFiltering:        "set_message_filtering",
	ServiceSetDefaultLogLevel:         "set_default_log_level",
	ServiceSetDefaultTraceStatus:      "set_default_trace_status",
	ServiceGetSoftwareVersion:         "get_software_version",
	ServiceGetDefaultTraceStatus:      "get_default_trace_status",
	ServiceGetLogChannelNames:         "get_log_channel_names",
	ServiceGetTraceStatus:             "get_trace_status",
	ServiceSetLogChannelAssignment:    "set_log_channel_assignment",
	ServiceSetLogChannelThreshold:     "set_log_channel_threshold",
	ServiceGetLogChannelThreshold:     "get_log_channel_threshold",
	ServiceBufferOverflowNotification: "buffer_overflow_notification",
}

func (s ServiceID) String() string {
	if name, ok := serviceNames[s]; ok {
		return name
	}
	return fmt.Sprintf("service(0x%x)", uint32(s))
}

// Status is the result code carried by control responses.
type Status uint8

const (
	StatusOK           Status = 0
	StatusNotSupported Status = 1
	StatusError        Status = 2
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusNotSupported:
		return "not_supported"
	case StatusError:
		return "error"
	default:
		return fmt.Sprintf("status(%d)", uint8(s))
	}
}

// Control is the body of a non-verbose control message. Requests carry a
// service id and data, responses add a status byte. Time messages carry no
// service id; their whole body is kept in Data.
type Control struct {
	Kind      header.ControlType
	ServiceID ServiceID
	Status    Status
	Data      []byte
}

func (c Control) hasService() bool { return c.Kind != header.ControlTime }
func (c Control) hasStatus() bool  { return c.Kind == header.ControlResponse }

func (c Control) Size() int {
	n := len(c.Data)
	if c.hasService() {
		n += 4
	}
	if c.hasStatus() {
		n++
	}
	return n
}

// DecodeControl reads a control body of the given kind.
func DecodeControl(b []byte, kind header.ControlType, order wire.Order) (Control, error) {
	c := Control{Kind: kind}
	if c.hasService() {
		if len(b) < 4 {
			return Control{}, wire.ErrIncomplete
		}
		c.ServiceID = ServiceID(order.Uint32(b))
		b = b[4:]
	}
	if c.hasStatus() {
		if len(b) < 1 {
			return Control{}, wire.ErrIncomplete
		}
		c.Status = Status(b[0])
		b = b[1:]
	}
	c.Data = bytes.Clone(b)
	return c, nil
}

func AppendControl(dst []byte, c Control, order wire.Order) []byte {
	if c.hasService() {
		dst = order.AppendUint32(dst, uint32(c.ServiceID))
	}
	if c.hasStatus() {
		dst = append(dst, byte(c.Status))
	}
	return append(dst, c.Data...)
}

// ValidationError reports a control body whose data does not fit its
// service.
type ValidationError struct {
	ServiceID ServiceID
	Kind      header.ControlType
	Reason    string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("control: service=%s kind=%d: %s", e.ServiceID, e.Kind, e.Reason)
}

// Minimum data sizes per service, after the service id and status byte.
var (
	requestSizes = map[ServiceID]int{
		ServiceSetLogLevel:        setLogLevelLen,
		ServiceSetTraceStatus:     setLogLevelLen,
		ServiceGetLogInfo:         getLogInfoLen,
		ServiceGetDefaultLogLevel: 0,
		ServiceSetDefaultLogLevel: setDefaultLogLevelLen,
		ServiceGetSoftwareVersion: 0,
	}
	responseSizes = map[ServiceID]int{
		ServiceSetLogLevel:        0,
		ServiceSetDefaultLogLevel: 0,
		ServiceGetDefaultLogLevel: 1,
		ServiceGetSoftwareVersion: 4,
	}
)

// Validate checks that Data is large enough for the known services. Unknown
// services and time messages pass.
func (c Control) Validate() error {
	var (
		need int
		ok   bool
	)
	switch c.Kind {
	case header.ControlRequest:
		need, ok = requestSizes[c.ServiceID]
	case header.ControlResponse:
		need, ok = responseSizes[c.ServiceID]
		if ok && c.Status != StatusOK {
			need = 0
		}
	}
	if !ok {
		return nil
	}
	if len(c.Data) < need {
		log.Debug().Stringer("service", c.ServiceID).Int("need", need).Int("have", len(c.Data)).Msg("control.Validate short data")
		return ValidationError{ServiceID: c.ServiceID, Kind: c.Kind, Reason: fmt.Sprintf("need %d data bytes, have %d", need, len(c.Data))}
	}
	return nil
}

const (
	setLogLevelLen        = 4 + 4 + 1 + 4
	getLogInfoLen         = 1 + 4 + 4 + 4
	setDefaultLogLevelLen = 1 + 4
)

// SetLogLevel is the request body of the set_log_level service. Level is
// signed; -1 restores the default and -2 (trace status) is passed through.
type SetLogLevel struct {
	AppID     wire.ID
	ContextID wire.ID
	Level     int8
	Interface wire.ID
}

func ParseSetLogLevel(c Control) (SetLogLevel, error) {
	if err := expect(c, header.ControlRequest, ServiceSetLogLevel); err != nil {
		return SetLogLevel{}, err
	}
	d := c.Data
	return SetLogLevel{
		AppID:     wire.IDFromBytes(d[0:4]),
		ContextID: wire.IDFromBytes(d[4:8]),
		Level:     int8(d[8]),
		Interface: wire.IDFromBytes(d[9:13]),
	}, nil
}

func (r SetLogLevel) Control() Control {
	d := make([]byte, 0, setLogLevelLen)
	d = append(d, r.AppID[:]...)
	d = append(d, r.ContextID[:]...)
	d = append(d, byte(r.Level))
	d = append(d, r.Interface[:]...)
	return Control{Kind: header.ControlRequest, ServiceID: ServiceSetLogLevel, Data: d}
}

// SetDefaultLogLevel is the request body of the set_default_log_level service.
type SetDefaultLogLevel struct {
	Level     int8
	Interface wire.ID
}

func ParseSetDefaultLogLevel(c Control) (SetDefaultLogLevel, error) {
	if err := expect(c, header.ControlRequest, ServiceSetDefaultLogLevel); err != nil {
		return SetDefaultLogLevel{}, err
	}
	return SetDefaultLogLevel{Level: int8(c.Data[0]), Interface: wire.IDFromBytes(c.Data[1:5])}, nil
}

func (r SetDefaultLogLevel) Control() Control {
	d := append([]byte{byte(r.Level)}, r.Interface[:]...)
	return Control{Kind: header.ControlRequest, ServiceID: ServiceSetDefaultLogLevel, Data: d}
}

// GetLogInfo is the request body of the get_log_info service.
type GetLogInfo struct {
	Options   uint8
	AppID     wire.ID
	ContextID wire.ID
	Interface wire.ID
}

func ParseGetLogInfo(c Control) (GetLogInfo, error) {
	if err := expect(c, header.ControlRequest, ServiceGetLogInfo); err != nil {
		return GetLogInfo{}, err
	}
	d := c.Data
	return GetLogInfo{
		Options:   d[0],
		AppID:     wire.IDFromBytes(d[1:5]),
		ContextID: wire.IDFromBytes(d[5:9]),
		Interface: wire.IDFromBytes(d[9:13]),
	}, nil
}

func (r GetLogInfo) Control() Control {
	d := make([]byte, 0, getLogInfoLen)
	d = append(d, r.Options)
	d = append(d, r.AppID[:]...)
	d = append(d, r.ContextID[:]...)
	d = append(d, r.Interface[:]...)
	return Control{Kind: header.ControlRequest, ServiceID: ServiceGetLogInfo, Data: d}
}

// DefaultLogLevel is the response body of the get_default_log_level service.
type DefaultLogLevel struct {
	Status Status
	Level  header.LogLevel
}

func ParseDefaultLogLevel(c Control) (DefaultLogLevel, error) {
	if err := expect(c, header.ControlResponse, ServiceGetDefaultLogLevel); err != nil {
		return DefaultLogLevel{}, err
	}
	r := DefaultLogLevel{Status: c.Status}
	if len(c.Data) > 0 {
		r.Level = header.LogLevel(c.Data[0])
	}
	return r, nil
}

func (r DefaultLogLevel) Control() Control {
	c := Control{Kind: header.ControlResponse, ServiceID: ServiceGetDefaultLogLevel, Status: r.Status}
	if r.Status == StatusOK {
		c.Data = []byte{byte(r.Level)}
	}
	return c
}

// SoftwareVersion is the response body of the get_software_version service.
// The length prefix uses the payload byte order.
type SoftwareVersion struct {
	Status  Status
	Version string
}

func ParseSoftwareVersion(c Control, order wire.Order) (SoftwareVersion, error) {
	if err := expect(c, header.ControlResponse, ServiceGetSoftwareVersion); err != nil {
		return SoftwareVersion{}, err
	}
	r := SoftwareVersion{Status: c.Status}
	if r.Status != StatusOK {
		return r, nil
	}
	n := order.Uint32(c.Data)
	if uint64(n) > uint64(len(c.Data)-4) {
		return SoftwareVersion{}, ValidationError{ServiceID: c.ServiceID, Kind: c.Kind, Reason: fmt.Sprintf("version length %d overruns %d data bytes", n, len(c.Data)-4)}
	}
	r.Version = string(bytes.TrimRight(c.Data[4:4+n], "\x00"))
	return r, nil
}

func (r SoftwareVersion) Control(order wire.Order) Control {
	c := Control{Kind: header.ControlResponse, ServiceID: ServiceGetSoftwareVersion, Status: r.Status}
	if r.Status == StatusOK {
		d := order.AppendUint32(make([]byte, 0, 4+len(r.Version)), uint32(len(r.Version)))
		c.Data = append(d, r.Version...)
	}
	return c
}

func expect(c Control, kind header.ControlType, id ServiceID) error {
	if c.Kind != kind || c.ServiceID != id {
		return ValidationError{ServiceID: c.ServiceID, Kind: c.Kind, Reason: fmt.Sprintf("not a %s message of kind %d", id, kind)}
	}
	return c.Validate()
}
