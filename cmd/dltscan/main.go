package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/danmuck/dltcore/internal/config"
	"github.com/danmuck/dltcore/internal/logging"
	"github.com/danmuck/dltcore/internal/observability"
	"github.com/danmuck/dltcore/internal/protocol"
	"github.com/danmuck/dltcore/internal/protocol/scan"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("dltscan", flag.ContinueOnError)
	fs.SetOutput(stderr)

	configPath := fs.String("config", "", "scanner config (TOML)")
	framing := fs.String("framing", "", "storage|wire (overrides config)")
	workers := fs.Int("workers", 0, "parallel decoders in -index mode (overrides config)")
	index := fs.Bool("index", false, "map the file and decode located messages in parallel")
	jsonOut := fs.Bool("json", false, "write JSON lines instead of text")
	metricsAddr := fs.String("metrics-addr", "", "serve /metrics on this address while scanning")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: dltscan [flags] [capture.dlt|-]")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() > 1 {
		fs.Usage()
		return 2
	}
	path := fs.Arg(0)

	cfg, err := loadScanConfig(*configPath)
	if err != nil {
		fmt.Fprintln(stderr, "dltscan:", err)
		return 2
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "framing":
			cfg.Framing = *framing
		case "workers":
			cfg.Workers = *workers
		case "metrics-addr":
			cfg.MetricsAddr = *metricsAddr
		}
	})
	if err := config.ValidateScannerConfig(cfg); err != nil {
		fmt.Fprintln(stderr, "dltscan:", err)
		return 2
	}

	logging.ConfigureRuntime()
	logging.ApplyLevel(cfg.LogLevel)
	logger := observability.InitLogger("dltscan")

	reg := prometheus.NewRegistry()
	source := path
	if source == "" || source == "-" {
		source = "stdin"
	}
	metrics, err := observability.NewScanMetrics(reg, cfg.MetricsNamespace, source)
	if err != nil {
		fmt.Fprintln(stderr, "dltscan:", err)
		return 1
	}
	if cfg.MetricsAddr != "" {
		srv := &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           observability.NewMetricsRouter("dltscan", logger, reg),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error().Err(err).Str("addr", cfg.MetricsAddr).Msg("metrics server stopped")
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	out := newPrinter(stdout, *jsonOut)
	var stats summary
	if *index {
		if path == "" || path == "-" {
			fmt.Fprintln(stderr, "dltscan: -index needs a file")
			return 2
		}
		stats, err = scanIndexed(ctx, path, cfg, metrics, logger, out)
	} else {
		var in io.Reader = stdin
		if path != "" && path != "-" {
			f, err := os.Open(path)
			if err != nil {
				fmt.Fprintln(stderr, "dltscan:", err)
				return 1
			}
			defer f.Close()
			in = f
		}
		stats, err = scanStream(ctx, in, cfg, metrics, logger, out)
	}
	if err != nil {
		fmt.Fprintln(stderr, "dltscan:", err)
		return 1
	}
	logger.Info().
		Int("messages", stats.messages).
		Int("corrupt_spans", stats.spans).
		Int("corrupt_bytes", stats.corruptBytes).
		Msg("scan complete")
	return 0
}

type summary struct {
	messages     int
	spans        int
	corruptBytes int
}

func (s *summary) add(o scan.Outcome) {
	if o.Kind == scan.KindMessage {
		s.messages++
		return
	}
	s.spans++
	s.corruptBytes += o.Span.Length
}

// scanStream feeds r through a Scanner and prints outcomes as they appear.
func scanStream(ctx context.Context, r io.Reader, cfg config.ScannerConfig, metrics scan.Metrics, logger zerolog.Logger, out *printer) (summary, error) {
	var stats summary
	opts, err := config.ScanOptions(cfg, scan.WithMetrics(metrics), scan.WithLogger(logger))
	if err != nil {
		return stats, err
	}
	s := scan.New(opts...)
	chunk := make([]byte, 64<<10)

	drain := func() error {
		for {
			o, err := s.Next()
			if err != nil {
				return err
			}
			stats.add(o)
			if err := out.print(o); err != nil {
				return err
			}
		}
	}

	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		n, rerr := r.Read(chunk[:min(len(chunk), cfg.MaxBuffer-s.Buffered())])
		if n > 0 {
			if err := s.Feed(chunk[:n]); err != nil {
				return stats, err
			}
			if err := drain(); !errors.Is(err, scan.ErrNeedMoreInput) {
				return stats, err
			}
		}
		if errors.Is(rerr, io.EOF) {
			break
		}
		if rerr != nil {
			return stats, rerr
		}
	}

	s.Finish()
	if err := drain(); !errors.Is(err, io.EOF) {
		return stats, err
	}
	return stats, nil
}

// scanIndexed maps path read-only, locates messages sequentially and decodes
// them on cfg.Workers goroutines.
func scanIndexed(ctx context.Context, path string, cfg config.ScannerConfig, metrics scan.Metrics, logger zerolog.Logger, out *printer) (summary, error) {
	var stats summary
	framing, err := protocol.ParseFraming(cfg.Framing)
	if err != nil {
		return stats, err
	}
	data, release, err := mapFile(path)
	if err != nil {
		return stats, err
	}
	defer release()

	start := time.Now()
	locs, spans := scan.Index(data, framing)
	logger.Debug().Int("located", len(locs)).Int("corrupt_spans", len(spans)).Dur("elapsed", time.Since(start)).Msg("index built")

	decoded, err := scan.DecodeAll(ctx, data, locs, framing, cfg.Workers)
	if err != nil {
		return stats, err
	}
	outcomes := make([]scan.Outcome, 0, len(decoded)+len(spans))
	outcomes = append(outcomes, decoded...)
	for _, sp := range spans {
		outcomes = append(outcomes, scan.Outcome{Kind: scan.KindCorrupt, Offset: sp.Offset, Length: sp.Length, Span: sp})
	}
	for _, o := range scan.MergeCorrupt(outcomes) {
		if o.Kind == scan.KindMessage {
			metrics.MessageDecoded(o.Length, 0)
		} else {
			metrics.CorruptSpan(o.Length)
		}
		stats.add(o)
		if err := out.print(o); err != nil {
			return stats, err
		}
	}
	return stats, nil
}
