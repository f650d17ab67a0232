package config

import (
	"github.com/danmuck/dltcore/internal/protocol"
	"github.com/danmuck/dltcore/internal/protocol/scan"
)

// ScanOptions converts cfg into scanner options. extra is appended last so
// callers can add a logger or metrics recorder.
func ScanOptions(cfg ScannerConfig, extra ...scan.Option) ([]scan.Option, error) {
	framing, err := protocol.ParseFraming(cfg.Framing)
	if err != nil {
		return nil, err
	}
	opts := []scan.Option{
		scan.WithFraming(framing),
		scan.WithMaxBuffer(cfg.MaxBuffer),
	}
	return append(opts, extra...), nil
}
