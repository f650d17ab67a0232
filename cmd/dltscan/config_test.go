package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danmuck/dltcore/internal/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dltscan.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadScanConfigDefaultsAndOverrides(t *testing.T) {
	cfg, err := loadScanConfig("")
	if err != nil {
		t.Fatalf("defaults: %v", err)
	}
	if cfg != config.DefaultScannerConfig() {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}

	path := writeConfig(t, `
framing = " wire "
workers = 2
log_level = "debug"
metrics_addr = "127.0.0.1:9464"
`)
	cfg, err = loadScanConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Framing != "wire" || cfg.Workers != 2 || cfg.LogLevel != "debug" {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.MetricsAddr != "127.0.0.1:9464" {
		t.Fatalf("unexpected metrics addr: %q", cfg.MetricsAddr)
	}
	if cfg.MaxBuffer != config.DefaultScannerConfig().MaxBuffer {
		t.Fatalf("max_buffer default lost: %d", cfg.MaxBuffer)
	}
}

func TestLoadScanConfigErrors(t *testing.T) {
	cases := map[string]struct {
		body string
		want string
	}{
		"unknown key": {body: "retention_days = 3\n", want: "unknown keys"},
		"invalid":     {body: "workers = \"two\"\n", want: "load scanner config"},
		"bad framing": {body: "framing = \"serial\"\n", want: "framing"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := loadScanConfig(writeConfig(t, tc.body))
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}
