package payload

import (
	"bytes"
	"encoding/binary"
	"errors"
	"reflect"
	"testing"

	"github.com/danmuck/dltcore/internal/protocol/argument"
	"github.com/danmuck/dltcore/internal/protocol/header"
	"github.com/danmuck/dltcore/internal/protocol/wire"
)

func verboseExt(n uint8) *header.ExtendedHeader {
	return &header.ExtendedHeader{Verbose: true, Type: header.TypeLog, Subtype: uint8(header.LogInfo), ArgumentCount: n}
}

func TestVerboseRoundTrip(t *testing.T) {
	in := Verbose{Arguments: []argument.Argument{
		argument.New(argument.Text("temp")),
		argument.Named("t", "C", argument.Int16(-4)),
		argument.New(argument.Raw{1, 2, 3}),
	}}
	for _, order := range []wire.Order{wire.Endian(false), wire.Endian(true)} {
		b, err := Append(nil, in, order)
		if err != nil {
			t.Fatalf("append: %v", err)
		}
		if len(b) != Size(in) {
			t.Fatalf("size mismatch: encoded=%d Size=%d", len(b), Size(in))
		}
		got, err := Decode(b, verboseExt(3), order)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if !reflect.DeepEqual(got, in) {
			t.Fatalf("round trip mismatch\n got=%#v\nwant=%#v", got, in)
		}
	}
}

func TestDecodeVerboseCountMismatch(t *testing.T) {
	order := wire.Endian(false)
	b, err := AppendVerbose(nil, Verbose{Arguments: []argument.Argument{
		argument.New(argument.Uint8(1)),
		argument.New(argument.Uint8(2)),
	}}, order)
	if err != nil {
		t.Fatalf("append: %v", err)
	}

	if _, err := DecodeVerbose(b, 3, order); !errors.Is(err, wire.ErrIncomplete) {
		t.Fatalf("expected incomplete for missing argument, got %v", err)
	}
	_, err = DecodeVerbose(b, 1, order)
	if !errors.Is(err, ErrTrailingBytes) || !errors.Is(err, wire.ErrMalformed) {
		t.Fatalf("expected trailing bytes, got %v", err)
	}
	if got, err := DecodeVerbose(nil, 0, order); err != nil || len(got.Arguments) != 0 {
		t.Fatalf("empty verbose: %#v %v", got, err)
	}
}

func TestDecodeVerboseUnsupportedArgument(t *testing.T) {
	b := []byte{0x23, 0x01, 0x00, 0x00, 0, 0, 0, 0}
	if _, err := DecodeVerbose(b, 1, wire.Endian(false)); !errors.Is(err, wire.ErrUnsupportedType) {
		t.Fatalf("expected unsupported type, got %v", err)
	}
}

func TestAppendVerboseRejectsTooManyArguments(t *testing.T) {
	args := make([]argument.Argument, 256)
	for i := range args {
		args[i] = argument.New(argument.Bool(true))
	}
	if _, err := AppendVerbose(nil, Verbose{Arguments: args}, wire.Endian(false)); !errors.Is(err, ErrArgumentCount) {
		t.Fatalf("expected argument count error, got %v", err)
	}
}

func TestNonVerbose(t *testing.T) {
	in := NonVerbose{MessageID: 0x01020304, Raw: []byte{0xaa, 0xbb}}

	le := AppendNonVerbose(nil, in, wire.Endian(false))
	if want := []byte{0x04, 0x03, 0x02, 0x01, 0xaa, 0xbb}; !bytes.Equal(le, want) {
		t.Fatalf("little endian encoding: got % x want % x", le, want)
	}
	be := AppendNonVerbose(nil, in, wire.Endian(true))
	if want := []byte{0x01, 0x02, 0x03, 0x04, 0xaa, 0xbb}; !bytes.Equal(be, want) {
		t.Fatalf("big endian encoding: got % x want % x", be, want)
	}

	got, err := Decode(be, nil, wire.Endian(true))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(got, in) {
		t.Fatalf("decoded %#v want %#v", got, in)
	}

	be[4] = 0
	if got.(NonVerbose).Raw[0] != 0xaa {
		t.Fatalf("decoded raw aliases input buffer")
	}

	if _, err := DecodeNonVerbose([]byte{1, 2, 3}, wire.Endian(false)); !errors.Is(err, wire.ErrIncomplete) {
		t.Fatalf("expected incomplete for short id, got %v", err)
	}
}

func TestNonVerboseLogMessageDispatch(t *testing.T) {
	ext := &header.ExtendedHeader{Type: header.TypeLog, Subtype: uint8(header.LogWarn)}
	got, err := Decode([]byte{9, 0, 0, 0}, ext, wire.Endian(false))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	nv, ok := got.(NonVerbose)
	if !ok || nv.MessageID != 9 || len(nv.Raw) != 0 {
		t.Fatalf("unexpected payload %#v", got)
	}
}

func TestControlRoundTrip(t *testing.T) {
	cases := []Control{
		{Kind: header.ControlRequest, ServiceID: ServiceGetSoftwareVersion, Data: []byte{}},
		{Kind: header.ControlResponse, ServiceID: ServiceGetDefaultLogLevel, Status: StatusOK, Data: []byte{4}},
		{Kind: header.ControlResponse, ServiceID: ServiceSetLogLevel, Status: StatusError, Data: []byte{}},
		{Kind: header.ControlTime, Data: []byte{}},
		{Kind: header.ControlRequest, ServiceID: 0xF04, Data: []byte{1, 2}},
	}
	for _, in := range cases {
		for _, order := range []wire.Order{wire.Endian(false), wire.Endian(true)} {
			b, err := Append(nil, in, order)
			if err != nil {
				t.Fatalf("append: %v", err)
			}
			if len(b) != Size(in) {
				t.Fatalf("size mismatch for %v: encoded=%d Size=%d", in.ServiceID, len(b), Size(in))
			}
			ext := &header.ExtendedHeader{Type: header.TypeControl, Subtype: uint8(in.Kind)}
			got, err := Decode(b, ext, order)
			if err != nil {
				t.Fatalf("decode %v: %v", in.ServiceID, err)
			}
			if !reflect.DeepEqual(got, in) {
				t.Fatalf("round trip mismatch\n got=%#v\nwant=%#v", got, in)
			}
		}
	}
}

func TestDecodeControlShort(t *testing.T) {
	if _, err := DecodeControl([]byte{1, 0}, header.ControlRequest, wire.Endian(false)); !errors.Is(err, wire.ErrIncomplete) {
		t.Fatalf("expected incomplete for short service id, got %v", err)
	}
	if _, err := DecodeControl([]byte{1, 0, 0, 0}, header.ControlResponse, wire.Endian(false)); !errors.Is(err, wire.ErrIncomplete) {
		t.Fatalf("expected incomplete for missing status, got %v", err)
	}
}

func TestControlServices(t *testing.T) {
	set := SetLogLevel{AppID: wire.NewID("APP"), ContextID: wire.NewID("CTX"), Level: -1, Interface: wire.NewID("remo")}
	if got, err := ParseSetLogLevel(set.Control()); err != nil || got != set {
		t.Fatalf("set_log_level: got %#v err %v", got, err)
	}

	def := SetDefaultLogLevel{Level: int8(header.LogDebug), Interface: wire.NewID("remo")}
	if got, err := ParseSetDefaultLogLevel(def.Control()); err != nil || got != def {
		t.Fatalf("set_default_log_level: got %#v err %v", got, err)
	}

	info := GetLogInfo{Options: 7, AppID: wire.NewID("APP")}
	if got, err := ParseGetLogInfo(info.Control()); err != nil || got != info {
		t.Fatalf("get_log_info: got %#v err %v", got, err)
	}

	lvl := DefaultLogLevel{Status: StatusOK, Level: header.LogWarn}
	if got, err := ParseDefaultLogLevel(lvl.Control()); err != nil || got != lvl {
		t.Fatalf("get_default_log_level: got %#v err %v", got, err)
	}

	order := wire.Endian(true)
	ver := SoftwareVersion{Status: StatusOK, Version: "dltcore 1.0"}
	c := ver.Control(order)
	if n := binary.BigEndian.Uint32(c.Data); n != uint32(len(ver.Version)) {
		t.Fatalf("version length prefix: %d", n)
	}
	if got, err := ParseSoftwareVersion(c, order); err != nil || got != ver {
		t.Fatalf("get_software_version: got %#v err %v", got, err)
	}
	failed := SoftwareVersion{Status: StatusNotSupported}
	if got, err := ParseSoftwareVersion(failed.Control(order), order); err != nil || got != failed {
		t.Fatalf("failed get_software_version: got %#v err %v", got, err)
	}
}

func TestControlValidation(t *testing.T) {
	short := Control{Kind: header.ControlRequest, ServiceID: ServiceSetLogLevel, Data: []byte{1, 2, 3}}
	var verr ValidationError
	if err := short.Validate(); !errors.As(err, &verr) || verr.ServiceID != ServiceSetLogLevel {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := ParseSetLogLevel(short); !errors.As(err, &verr) {
		t.Fatalf("parse should fail validation, got %v", err)
	}

	wrong := Control{Kind: header.ControlResponse, ServiceID: ServiceSetLogLevel}
	if _, err := ParseSetLogLevel(wrong); !errors.As(err, &verr) {
		t.Fatalf("expected kind mismatch, got %v", err)
	}

	overrun := Control{Kind: header.ControlResponse, ServiceID: ServiceGetSoftwareVersion, Data: []byte{9, 0, 0, 0, 'x'}}
	if _, err := ParseSoftwareVersion(overrun, wire.Endian(false)); !errors.As(err, &verr) {
		t.Fatalf("expected overrun error, got %v", err)
	}

	unknown := Control{Kind: header.ControlRequest, ServiceID: 0xF04}
	if err := unknown.Validate(); err != nil {
		t.Fatalf("unknown services should pass, got %v", err)
	}
}

func TestServiceNames(t *testing.T) {
	if got := ServiceGetLogInfo.String(); got != "get_log_info" {
		t.Fatalf("service name: %q", got)
	}
	if got := ServiceID(0x99).String(); got != "service(0x99)" {
		t.Fatalf("unknown service name: %q", got)
	}
}
