package scan

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/danmuck/dltcore/internal/protocol"
	"github.com/danmuck/dltcore/internal/protocol/header"
)

const (
	// MinBuffer is the largest possible message, storage header included.
	MinBuffer     = header.StorageHeaderLen + 0xFFFF
	DefaultBuffer = 4 * MinBuffer
)

// Metrics receives scanner events. observability.ScanMetrics implements it.
type Metrics interface {
	MessageDecoded(bytes int, elapsed time.Duration)
	CorruptSpan(bytes int)
}

type nopMetrics struct{}

func (nopMetrics) MessageDecoded(int, time.Duration) {}
func (nopMetrics) CorruptSpan(int)                   {}

type Option func(*Scanner)

func WithFraming(f protocol.Framing) Option {
	return func(s *Scanner) {
		s.framing = f
	}
}

// WithMaxBuffer caps the bytes held between Feed and Next. Values below
// MinBuffer are raised to MinBuffer so any single message fits.
func WithMaxBuffer(n int) Option {
	return func(s *Scanner) {
		if n > 0 {
			s.maxBuffer = max(n, MinBuffer)
		}
	}
}

func WithMetrics(m Metrics) Option {
	return func(s *Scanner) {
		if m != nil {
			s.metrics = m
		}
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *Scanner) {
		s.log = l
	}
}
