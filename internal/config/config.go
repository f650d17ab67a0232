package config

import (
	"bytes"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/danmuck/dltcore/internal/logging"
	"github.com/danmuck/dltcore/internal/protocol"
	"github.com/danmuck/dltcore/internal/protocol/scan"
)

// ScannerConfig drives how a host process scans a capture.
type ScannerConfig struct {
	Framing          string `toml:"framing"`
	MaxBuffer        int    `toml:"max_buffer"`
	Workers          int    `toml:"workers"`
	LogLevel         string `toml:"log_level"`
	MetricsNamespace string `toml:"metrics_namespace"`
	MetricsAddr      string `toml:"metrics_addr"`
}

func DefaultScannerConfig() ScannerConfig {
	return ScannerConfig{
		Framing:          protocol.FramingStorage.String(),
		MaxBuffer:        scan.DefaultBuffer,
		Workers:          runtime.GOMAXPROCS(0),
		LogLevel:         "info",
		MetricsNamespace: "dltcore",
	}
}

// LoadScannerConfig reads path over the defaults and validates the result.
func LoadScannerConfig(path string) (ScannerConfig, error) {
	cfg := DefaultScannerConfig()
	if err := loadToml(path, &cfg); err != nil {
		return ScannerConfig{}, err
	}
	if err := ValidateScannerConfig(cfg); err != nil {
		return ScannerConfig{}, err
	}
	return cfg, nil
}

func loadToml(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return nil
}

func ValidateScannerConfig(cfg ScannerConfig) error {
	if _, err := protocol.ParseFraming(cfg.Framing); err != nil {
		return fmt.Errorf("scanner config framing: %w", err)
	}
	if cfg.MaxBuffer < scan.MinBuffer {
		return fmt.Errorf("scanner config max_buffer %d below minimum %d", cfg.MaxBuffer, scan.MinBuffer)
	}
	if cfg.Workers < 1 {
		return fmt.Errorf("scanner config workers must be positive, got %d", cfg.Workers)
	}
	if strings.TrimSpace(cfg.LogLevel) != "" {
		if _, ok := logging.ParseLevel(cfg.LogLevel); !ok {
			return fmt.Errorf("scanner config unknown log_level %q", cfg.LogLevel)
		}
	}
	if strings.TrimSpace(cfg.MetricsNamespace) == "" {
		return fmt.Errorf("scanner config missing metrics_namespace")
	}
	if addr := strings.TrimSpace(cfg.MetricsAddr); addr != "" && !strings.Contains(addr, ":") {
		return fmt.Errorf("scanner config metrics_addr %q needs a port", addr)
	}
	return nil
}
