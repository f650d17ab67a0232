package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want zerolog.Level
		ok   bool
	}{
		{"", zerolog.InfoLevel, false},
		{"trace", zerolog.TraceLevel, true},
		{" DEBUG ", zerolog.DebugLevel, true},
		{"warning", zerolog.WarnLevel, true},
		{"error", zerolog.ErrorLevel, true},
		{"off", zerolog.Disabled, true},
		{"loud", zerolog.InfoLevel, false},
	}
	for _, tc := range cases {
		got, ok := ParseLevel(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("ParseLevel(%q) = %v, %v; want %v, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(EnvLogLevel, "error")
	t.Setenv(EnvLogTimestamp, "false")
	t.Setenv(EnvLogNoColor, "1")
	t.Setenv(EnvLogBypass, "not-a-bool")

	cfg := defaultConfig(ProfileRuntime)
	applyEnvOverrides(&cfg)
	if cfg.Level != zerolog.ErrorLevel || cfg.Timestamp || !cfg.NoColor || cfg.Bypass {
		t.Fatalf("unexpected config after overrides: %+v", cfg)
	}
}

func TestDefaultProfiles(t *testing.T) {
	if cfg := defaultConfig(ProfileTest); cfg.Level != zerolog.DebugLevel || cfg.Timestamp {
		t.Fatalf("test profile: %+v", cfg)
	}
	if cfg := defaultConfig(ProfileRuntime); cfg.Level != zerolog.InfoLevel || !cfg.Timestamp {
		t.Fatalf("runtime profile: %+v", cfg)
	}
}

func TestNewBypassWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: zerolog.DebugLevel, Bypass: true, Out: &buf})
	logger.Debug().Int("offset", 16).Msg("scan: corrupt span")
	logger.Trace().Msg("filtered")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one line, got %q", buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if rec["message"] != "scan: corrupt span" || rec["offset"] != float64(16) {
		t.Fatalf("unexpected record: %v", rec)
	}
	if _, ok := rec["time"]; ok {
		t.Fatalf("timestamp written while disabled: %v", rec)
	}
}

func TestNewConsoleWithoutTerminal(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: zerolog.InfoLevel, Out: &buf})
	logger.Info().Str("ecu", "ECU1").Msg("ready")
	out := buf.String()
	if !strings.Contains(out, "ready") || !strings.Contains(out, "ecu=ECU1") {
		t.Fatalf("console output: %q", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("color codes written to a non-terminal: %q", out)
	}
}

func TestApplyLevel(t *testing.T) {
	prevLevel, prevLogger := zerolog.GlobalLevel(), log.Logger
	t.Cleanup(func() {
		zerolog.SetGlobalLevel(prevLevel)
		log.Logger = prevLogger
	})

	var buf bytes.Buffer
	log.Logger = zerolog.New(&buf).Level(zerolog.InfoLevel)
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	t.Setenv(EnvLogLevel, "")
	if !ApplyLevel("debug") {
		t.Fatalf("config level not applied")
	}
	if zerolog.GlobalLevel() != zerolog.DebugLevel {
		t.Fatalf("global level = %v", zerolog.GlobalLevel())
	}
	log.Debug().Msg("visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Fatalf("debug event dropped: %q", buf.String())
	}
	if ApplyLevel("loud") {
		t.Fatalf("unknown level applied")
	}

	t.Setenv(EnvLogLevel, "error")
	if ApplyLevel("trace") {
		t.Fatalf("config level applied over env override")
	}
	if zerolog.GlobalLevel() != zerolog.DebugLevel {
		t.Fatalf("global level changed to %v", zerolog.GlobalLevel())
	}
}
