package observability

import (
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const DefaultNamespace = "dltcore"

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: DefaultNamespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests to the metrics endpoint.",
		},
		[]string{"app", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: DefaultNamespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"app", "method", "path", "status"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration)
	})
}

func RecordHTTPRequest(app, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(app, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(app, method, path, statusLabel).Observe(duration.Seconds())
}

// ScanMetrics records scanner events for one input source. It satisfies
// scan.Metrics.
type ScanMetrics struct {
	messages     prometheus.Counter
	messageBytes prometheus.Counter
	spans        prometheus.Counter
	corruptBytes prometheus.Counter
	decode       prometheus.Observer
}

type scanVecs struct {
	messages     *prometheus.CounterVec
	messageBytes *prometheus.CounterVec
	spans        *prometheus.CounterVec
	corruptBytes *prometheus.CounterVec
	decode       *prometheus.HistogramVec
}

func newScanVecs(namespace string) scanVecs {
	counter := func(name, help string) *prometheus.CounterVec {
		return prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      name,
			Help:      help,
		}, []string{"source"})
	}
	return scanVecs{
		messages:     counter("messages_total", "Messages decoded."),
		messageBytes: counter("message_bytes_total", "Bytes consumed by decoded messages."),
		spans:        counter("corrupt_spans_total", "Corrupt spans reported."),
		corruptBytes: counter("corrupt_bytes_total", "Bytes skipped inside corrupt spans."),
		decode: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "decode_duration_seconds",
			Help:      "Time to decode one located message.",
			Buckets:   prometheus.ExponentialBuckets(1e-7, 4, 10),
		}, []string{"source"}),
	}
}

// NewScanMetrics registers the scan collectors under namespace on reg and
// returns a recorder bound to source. Registering the same namespace twice
// reuses the existing collectors.
func NewScanMetrics(reg prometheus.Registerer, namespace, source string) (*ScanMetrics, error) {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	v := newScanVecs(namespace)
	var err error
	if v.messages, err = register(reg, v.messages); err != nil {
		return nil, err
	}
	if v.messageBytes, err = register(reg, v.messageBytes); err != nil {
		return nil, err
	}
	if v.spans, err = register(reg, v.spans); err != nil {
		return nil, err
	}
	if v.corruptBytes, err = register(reg, v.corruptBytes); err != nil {
		return nil, err
	}
	if v.decode, err = register(reg, v.decode); err != nil {
		return nil, err
	}
	return &ScanMetrics{
		messages:     v.messages.WithLabelValues(source),
		messageBytes: v.messageBytes.WithLabelValues(source),
		spans:        v.spans.WithLabelValues(source),
		corruptBytes: v.corruptBytes.WithLabelValues(source),
		decode:       v.decode.WithLabelValues(source),
	}, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func (m *ScanMetrics) MessageDecoded(n int, elapsed time.Duration) {
	m.messages.Inc()
	m.messageBytes.Add(float64(n))
	m.decode.Observe(elapsed.Seconds())
}

func (m *ScanMetrics) CorruptSpan(n int) {
	m.spans.Inc()
	m.corruptBytes.Add(float64(n))
}
