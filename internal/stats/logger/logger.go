// Package logger provides a zap-based stats collector that logs metrics.
package logger

import (
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/dosewise/pillcache/internal/stats"
)

// Collector implements stats.Collector by logging metrics via zap.
// Every update is logged at debug level. Counter totals and last gauge values
// are kept so Flush can log a single summary line.
type Collector struct {
	logger *zap.Logger

	mu       sync.Mutex
	counters map[string]int64
	gauges   map[string]int64
}

// Compile-time check that Collector implements stats.Collector.
var _ stats.Collector = (*Collector)(nil)

// New creates a new logger-based collector.
// If logger is nil, a no-op logger is used.
func New(logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collector{
		logger:   logger,
		counters: make(map[string]int64),
		gauges:   make(map[string]int64),
	}
}

// IncCounter logs a counter increment.
func (c *Collector) IncCounter(name string, delta int64) {
	c.mu.Lock()
	c.counters[name] += delta
	c.mu.Unlock()

	c.logger.Debug("counter",
		zap.String("metric", name),
		zap.Int64("delta", delta),
	)
}

// SetGauge logs a gauge value.
func (c *Collector) SetGauge(name string, value int64) {
	c.mu.Lock()
	c.gauges[name] = value
	c.mu.Unlock()

	c.logger.Debug("gauge",
		zap.String("metric", name),
		zap.Int64("value", value),
	)
}

// ObserveHistogram logs a histogram observation.
func (c *Collector) ObserveHistogram(name string, value float64) {
	c.logger.Debug("histogram",
		zap.String("metric", name),
		zap.Float64("value", value),
	)
}

// Counter returns the running total for a counter.
func (c *Collector) Counter(name string) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counters[name]
}

// Flush logs all counter totals and gauge values at info level.
func (c *Collector) Flush() {
	c.mu.Lock()
	fields := make([]zap.Field, 0, len(c.counters)+len(c.gauges))
	for _, name := range sortedKeys(c.counters) {
		fields = append(fields, zap.Int64(name, c.counters[name]))
	}
	for _, name := range sortedKeys(c.gauges) {
		fields = append(fields, zap.Int64(name, c.gauges[name]))
	}
	c.mu.Unlock()

	c.logger.Info("metrics summary", fields...)
}

func sortedKeys(m map[string]int64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
