// Package prometheus collects per-run metrics on a private registry and
// exports them in the text exposition format for the node-exporter textfile
// collector.  A batch run has no scrape endpoint, so the registry is written
// to disk once the run finishes.
package prometheus

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/turtacn/SubstanceWatch/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/SubstanceWatch/pkg/errors"
)

// MetricsCollector registers run metrics and exports them.
type MetricsCollector interface {
	RegisterCounter(name, help string, labels ...string) CounterVec
	RegisterGauge(name, help string, labels ...string) GaugeVec
	RegisterHistogram(name, help string, buckets []float64, labels ...string) HistogramVec
	// Gatherer exposes the underlying registry for export and tests.
	Gatherer() prometheus.Gatherer
	// WriteToTextfile writes every registered metric to path atomically.
	WriteToTextfile(path string) error
}

// Counter is the subset of prometheus.Counter used by the pipeline.
type Counter interface {
	Inc()
	Add(delta float64)
}

// Gauge is the subset of prometheus.Gauge used by the pipeline.
type Gauge interface {
	Set(value float64)
	Add(delta float64)
}

// Histogram is the subset of prometheus.Observer used by the pipeline.
type Histogram interface {
	Observe(value float64)
}

// CounterVec hands out labelled counters.
type CounterVec interface {
	WithLabelValues(lvs ...string) Counter
}

// GaugeVec hands out labelled gauges.
type GaugeVec interface {
	WithLabelValues(lvs ...string) Gauge
}

// HistogramVec hands out labelled histograms.
type HistogramVec interface {
	WithLabelValues(lvs ...string) Histogram
}

// CollectorConfig names the metric family prefix.
type CollectorConfig struct {
	Namespace string
	Subsystem string
	// DefaultHistogramBuckets apply when RegisterHistogram gets nil buckets.
	DefaultHistogramBuckets []float64
}

type prometheusCollector struct {
	registry *prometheus.Registry
	config   CollectorConfig
	logger   logging.Logger

	mu         sync.Mutex
	registered map[string]prometheus.Collector
}

// NewMetricsCollector returns a collector backed by a fresh registry.
func NewMetricsCollector(cfg CollectorConfig, logger logging.Logger) (MetricsCollector, error) {
	if cfg.Namespace == "" {
		return nil, errors.InvalidConfig("metrics namespace is required")
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if cfg.DefaultHistogramBuckets == nil {
		cfg.DefaultHistogramBuckets = DefaultStageBuckets
	}
	return &prometheusCollector{
		registry:   prometheus.NewRegistry(),
		config:     cfg,
		logger:     logger,
		registered: make(map[string]prometheus.Collector),
	}, nil
}

func (c *prometheusCollector) Gatherer() prometheus.Gatherer {
	return c.registry
}

func (c *prometheusCollector) WriteToTextfile(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return errors.Wrap(err, errors.ErrCodeOutputWriteFailure, "failed to create metrics directory").WithDetail(dir)
		}
	}
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return errors.Wrap(err, errors.ErrCodeOutputWriteFailure, "failed to write metrics textfile").WithDetail(path)
	}
	return nil
}

// register adds vec under name, or returns the collector already registered
// under that name when it has the same type.  ok is false on a registry
// error or a type clash.
func register[T prometheus.Collector](c *prometheusCollector, name string, vec T) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fq := prometheus.BuildFQName(c.config.Namespace, c.config.Subsystem, name)
	if existing, ok := c.registered[fq]; ok {
		typed, same := existing.(T)
		if !same {
			c.logger.Warn("metric type mismatch", logging.String("name", fq))
		}
		return typed, same
	}
	if err := c.registry.Register(vec); err != nil {
		c.logger.Error("failed to register metric", logging.String("name", fq), logging.Err(err))
		var zero T
		return zero, false
	}
	c.registered[fq] = vec
	return vec, true
}

func (c *prometheusCollector) RegisterCounter(name, help string, labels ...string) CounterVec {
	vec, ok := register(c, name, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: c.config.Namespace,
		Subsystem: c.config.Subsystem,
		Name:      name,
		Help:      help,
	}, labels))
	if !ok {
		return noopCounterVec{}
	}
	return counterVec{vec}
}

func (c *prometheusCollector) RegisterGauge(name, help string, labels ...string) GaugeVec {
	vec, ok := register(c, name, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: c.config.Namespace,
		Subsystem: c.config.Subsystem,
		Name:      name,
		Help:      help,
	}, labels))
	if !ok {
		return noopGaugeVec{}
	}
	return gaugeVec{vec}
}

func (c *prometheusCollector) RegisterHistogram(name, help string, buckets []float64, labels ...string) HistogramVec {
	if buckets == nil {
		buckets = c.config.DefaultHistogramBuckets
	}
	vec, ok := register(c, name, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: c.config.Namespace,
		Subsystem: c.config.Subsystem,
		Name:      name,
		Help:      help,
		Buckets:   buckets,
	}, labels))
	if !ok {
		return noopHistogramVec{}
	}
	return histogramVec{vec}
}

type counterVec struct{ *prometheus.CounterVec }

func (v counterVec) WithLabelValues(lvs ...string) Counter { return v.CounterVec.WithLabelValues(lvs...) }

type gaugeVec struct{ *prometheus.GaugeVec }

func (v gaugeVec) WithLabelValues(lvs ...string) Gauge { return v.GaugeVec.WithLabelValues(lvs...) }

type histogramVec struct{ *prometheus.HistogramVec }

func (v histogramVec) WithLabelValues(lvs ...string) Histogram {
	return v.HistogramVec.WithLabelValues(lvs...)
}

type noopMetric struct{}

func (noopMetric) Inc()            {}
func (noopMetric) Add(float64)     {}
func (noopMetric) Set(float64)     {}
func (noopMetric) Observe(float64) {}

type noopCounterVec struct{}

func (noopCounterVec) WithLabelValues(...string) Counter { return noopMetric{} }

type noopGaugeVec struct{}

func (noopGaugeVec) WithLabelValues(...string) Gauge { return noopMetric{} }

type noopHistogramVec struct{}

func (noopHistogramVec) WithLabelValues(...string) Histogram { return noopMetric{} }

// Timer observes the wall time of one stage.
type Timer struct {
	histogram Histogram
	start     time.Time
}

// NewTimer starts a Timer.  A nil histogram only measures.
func NewTimer(histogram Histogram) *Timer {
	return &Timer{histogram: histogram, start: time.Now()}
}

// ObserveDuration records the time elapsed since NewTimer and returns it.
func (t *Timer) ObserveDuration() time.Duration {
	d := time.Since(t.start)
	if t.histogram != nil {
		t.histogram.Observe(d.Seconds())
	}
	return d
}

//Personal.AI order the ending
