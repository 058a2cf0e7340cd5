// Package stats provides a unified interface for collecting metrics.
package stats

// Metric names used throughout the library.
const (
	// Client metrics.
	MetricGets       = "pillcache_gets_total"
	MetricPuts       = "pillcache_puts_total"
	MetricDeletes    = "pillcache_deletes_total"
	MetricNotFound   = "pillcache_not_found_total"
	MetricSignOuts   = "pillcache_sign_outs_total"
	MetricStoreReads = "pillcache_store_reads_total"
	MetricReadTime   = "pillcache_store_read_seconds"

	// Cache metrics.
	MetricCacheHits      = "pillcache_cache_hits_total"
	MetricCacheMisses    = "pillcache_cache_misses_total"
	MetricCacheInserts   = "pillcache_cache_inserts_total"
	MetricCacheEvictions = "pillcache_cache_evictions_total"
	MetricCacheSize      = "pillcache_cache_size"
	MetricCacheCapacity  = "pillcache_cache_capacity"
)

// Collector defines the interface for collecting metrics.
type Collector interface {
	// IncCounter increments a counter metric by delta.
	IncCounter(name string, delta int64)

	// SetGauge sets a gauge metric to value.
	SetGauge(name string, value int64)

	// ObserveHistogram records a value in a histogram metric.
	ObserveHistogram(name string, value float64)
}

var help = map[string]string{
	MetricGets:           "Record lookups served by the client.",
	MetricPuts:           "Records written through the client.",
	MetricDeletes:        "Records deleted through the client.",
	MetricNotFound:       "Lookups that found no record in the cache or the store.",
	MetricSignOuts:       "Tenant sign-outs that evicted cached records.",
	MetricStoreReads:     "Reads that fell through to the backing store.",
	MetricReadTime:       "Latency of backing store reads in seconds.",
	MetricCacheHits:      "Cache lookups that found the record.",
	MetricCacheMisses:    "Cache lookups that missed.",
	MetricCacheInserts:   "Records inserted into the cache.",
	MetricCacheEvictions: "Records evicted to make room for new ones.",
	MetricCacheSize:      "Records currently cached.",
	MetricCacheCapacity:  "Maximum records the cache holds.",
}

// Help returns the description for a metric name, or the name itself when
// the metric is not one of ours.
func Help(name string) string {
	if h, ok := help[name]; ok {
		return h
	}
	return name
}
