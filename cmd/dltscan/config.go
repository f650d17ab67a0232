package main

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/danmuck/dltcore/internal/config"
)

type fileConfig struct {
	Framing          string `toml:"framing"`
	MaxBuffer        int    `toml:"max_buffer"`
	Workers          int    `toml:"workers"`
	LogLevel         string `toml:"log_level"`
	MetricsNamespace string `toml:"metrics_namespace"`
	MetricsAddr      string `toml:"metrics_addr"`
}

// loadScanConfig overlays the keys present in path on the defaults. An empty
// path yields the defaults.
func loadScanConfig(path string) (config.ScannerConfig, error) {
	cfg := config.DefaultScannerConfig()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return config.ScannerConfig{}, fmt.Errorf("load scanner config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return config.ScannerConfig{}, fmt.Errorf("load scanner config: unknown keys %v", undecoded)
	}

	if meta.IsDefined("framing") {
		cfg.Framing = strings.TrimSpace(raw.Framing)
	}
	if meta.IsDefined("max_buffer") {
		cfg.MaxBuffer = raw.MaxBuffer
	}
	if meta.IsDefined("workers") {
		cfg.Workers = raw.Workers
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}
	if meta.IsDefined("metrics_namespace") {
		cfg.MetricsNamespace = strings.TrimSpace(raw.MetricsNamespace)
	}
	if meta.IsDefined("metrics_addr") {
		cfg.MetricsAddr = strings.TrimSpace(raw.MetricsAddr)
	}

	if err := config.ValidateScannerConfig(cfg); err != nil {
		return config.ScannerConfig{}, err
	}
	return cfg, nil
}
