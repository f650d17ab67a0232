package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danmuck/dltcore/internal/protocol"
	"github.com/danmuck/dltcore/internal/protocol/argument"
	"github.com/danmuck/dltcore/internal/protocol/header"
	"github.com/danmuck/dltcore/internal/protocol/payload"
	"github.com/danmuck/dltcore/internal/protocol/wire"
)

func capture(t *testing.T) []byte {
	t.Helper()
	storage := &header.StorageHeader{Seconds: 1700000000, EcuID: wire.NewID("ECU1")}
	msgs := []protocol.Message{
		{
			Storage: storage,
			Header:  header.StandardHeader{Flags: header.Flags{WithEcuID: true}, EcuID: wire.NewID("ECU1")},
			Extended: &header.ExtendedHeader{
				Verbose: true, Type: header.TypeLog, Subtype: uint8(header.LogWarn), ArgumentCount: 2,
				AppID: wire.NewID("APP"), ContextID: wire.NewID("CTX"),
			},
			Payload: payload.Verbose{Arguments: []argument.Argument{
				argument.New(argument.Text("speed")),
				argument.Named("v", "km/h", argument.Uint16(88)),
			}},
		},
		{
			Storage: storage,
			Header:  header.StandardHeader{Counter: 1},
			Payload: payload.NonVerbose{MessageID: 7, Raw: []byte("Hello World")},
		},
		{
			Storage: storage,
			Header:  header.StandardHeader{Counter: 2},
			Extended: &header.ExtendedHeader{
				Type: header.TypeControl, Subtype: uint8(header.ControlResponse),
				AppID: wire.NewID("DA1"), ContextID: wire.NewID("DC1"),
			},
			Payload: payload.SoftwareVersion{Status: payload.StatusOK, Version: "v1"}.Control(wire.Endian(false)),
		},
	}
	var buf bytes.Buffer
	for i, m := range msgs {
		b, err := protocol.Encode(m)
		if err != nil {
			t.Fatalf("encode %d: %v", i, err)
		}
		buf.Write(b)
		if i == 0 {
			buf.WriteString("junk!")
		}
	}
	return buf.Bytes()
}

func writeCapture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "capture.dlt")
	if err := os.WriteFile(path, capture(t), 0o600); err != nil {
		t.Fatalf("write capture: %v", err)
	}
	return path
}

func lines(s string) []string {
	var out []string
	sc := bufio.NewScanner(strings.NewReader(s))
	for sc.Scan() {
		out = append(out, sc.Text())
	}
	return out
}

func TestRunStreamText(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"-config", writeConfig(t, "log_level = \"error\"\n")}, bytes.NewReader(capture(t)), &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit code %d, stderr=%s", code, stderr.String())
	}

	got := lines(stdout.String())
	if len(got) != 4 {
		t.Fatalf("expected 4 lines, got %d:\n%s", len(got), stdout.String())
	}
	checks := []string{
		"message len=",
		"corrupt len=5",
		"id=7 raw=48656c6c6f20576f726c64",
		"service=get_software_version status=ok",
	}
	for i, want := range checks {
		if !strings.Contains(got[i], want) {
			t.Fatalf("line %d = %q, want substring %q", i, got[i], want)
		}
	}
	if !strings.Contains(got[0], "ecu=ECU1/ECU1 app=APP ctx=CTX log/warn speed v=88 km/h") {
		t.Fatalf("verbose line = %q", got[0])
	}
}

func TestRunIndexMatchesStream(t *testing.T) {
	path := writeCapture(t)

	var stream, indexed, stderr bytes.Buffer
	if code := run([]string{path}, nil, &stream, &stderr); code != 0 {
		t.Fatalf("stream exit %d: %s", code, stderr.String())
	}
	if code := run([]string{"-index", "-workers", "3", path}, nil, &indexed, &stderr); code != 0 {
		t.Fatalf("index exit %d: %s", code, stderr.String())
	}
	if stream.String() != indexed.String() {
		t.Fatalf("index output differs\nstream:\n%s\nindex:\n%s", stream.String(), indexed.String())
	}
}

func TestRunJSON(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run([]string{"-json", writeCapture(t)}, nil, &stdout, &stderr); code != 0 {
		t.Fatalf("exit %d: %s", code, stderr.String())
	}
	var recs []record
	for _, line := range lines(stdout.String()) {
		var rec record
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			t.Fatalf("unmarshal %q: %v", line, err)
		}
		recs = append(recs, rec)
	}
	if len(recs) != 4 {
		t.Fatalf("expected 4 records, got %d", len(recs))
	}
	if recs[1].Kind != "corrupt" || recs[1].Length != 5 {
		t.Fatalf("corrupt record = %+v", recs[1])
	}
	if recs[2].MessageID == nil || *recs[2].MessageID != 7 {
		t.Fatalf("non-verbose record = %+v", recs[2])
	}
	if recs[0].Time == "" || len(recs[0].Args) != 2 {
		t.Fatalf("verbose record = %+v", recs[0])
	}
}

func TestRunUsageErrors(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run([]string{"-index"}, nil, &stdout, &stderr); code != 2 {
		t.Fatalf("index without file: exit %d", code)
	}
	if code := run([]string{"-framing", "serial"}, nil, &stdout, &stderr); code != 2 {
		t.Fatalf("bad framing: exit %d", code)
	}
	if code := run([]string{"a", "b"}, nil, &stdout, &stderr); code != 2 {
		t.Fatalf("two inputs: exit %d", code)
	}
	if code := run([]string{filepath.Join(t.TempDir(), "missing.dlt")}, nil, &stdout, &stderr); code != 1 {
		t.Fatalf("missing file: exit %d", code)
	}
}
