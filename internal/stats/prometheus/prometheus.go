// Package prometheus provides a Prometheus-based stats collector.
package prometheus

import (
	"fmt"
	"io"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/dosewise/pillcache/internal/stats"
)

// latencyBuckets spans 100µs to ~1.6s, covering local disk through remote stores.
var latencyBuckets = prometheus.ExponentialBuckets(0.0001, 4, 8)

// Collector implements stats.Collector using Prometheus metrics.
type Collector struct {
	registry prometheus.Registerer

	mu         sync.RWMutex
	counters   map[string]prometheus.Counter
	gauges     map[string]prometheus.Gauge
	histograms map[string]prometheus.Histogram
}

// Compile-time check that Collector implements stats.Collector.
var _ stats.Collector = (*Collector)(nil)

// New creates a new Prometheus collector.
// If registry is nil, prometheus.DefaultRegisterer is used.
func New(registry prometheus.Registerer) *Collector {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	return &Collector{
		registry:   registry,
		counters:   make(map[string]prometheus.Counter),
		gauges:     make(map[string]prometheus.Gauge),
		histograms: make(map[string]prometheus.Histogram),
	}
}

// IncCounter increments a counter metric.
func (c *Collector) IncCounter(name string, delta int64) {
	counter := getOrCreate(c, c.counters, name, func() prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{Name: name, Help: stats.Help(name)})
	})
	counter.Add(float64(delta))
}

// SetGauge sets a gauge metric.
func (c *Collector) SetGauge(name string, value int64) {
	gauge := getOrCreate(c, c.gauges, name, func() prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{Name: name, Help: stats.Help(name)})
	})
	gauge.Set(float64(value))
}

// ObserveHistogram records a value in a histogram.
func (c *Collector) ObserveHistogram(name string, value float64) {
	histogram := getOrCreate(c, c.histograms, name, func() prometheus.Histogram {
		buckets := prometheus.DefBuckets
		if name == stats.MetricReadTime {
			buckets = latencyBuckets
		}
		return prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    name,
			Help:    stats.Help(name),
			Buckets: buckets,
		})
	})
	histogram.Observe(value)
}

// getOrCreate returns the metric cached under name, registering a new one on
// first use. A metric already registered elsewhere under the same name is
// adopted instead.
func getOrCreate[M prometheus.Collector](c *Collector, cache map[string]M, name string, create func() M) M {
	c.mu.RLock()
	m, ok := cache[name]
	c.mu.RUnlock()
	if ok {
		return m
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Double-check after acquiring write lock.
	if m, ok = cache[name]; ok {
		return m
	}

	m = create()
	if err := c.registry.Register(m); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(M); ok {
				m = existing
			}
		}
		// Any other failure leaves an unregistered metric that still records.
	}
	cache[name] = m
	return m
}

// Dump writes every metric family from g to w in the Prometheus text format.
func Dump(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("gathering metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("writing metric %s: %w", mf.GetName(), err)
		}
	}
	return nil
}
