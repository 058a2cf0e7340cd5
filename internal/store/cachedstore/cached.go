// Package cachedstore provides a read-through record cache in front of a
// store.Store.
package cachedstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dosewise/pillcache/internal/lrucache"
	"github.com/dosewise/pillcache/internal/record"
	"github.com/dosewise/pillcache/internal/stats"
	"github.com/dosewise/pillcache/internal/store"
)

// ErrMismatch is returned when a stored document does not belong to the
// tenant and record it was read for.
var ErrMismatch = errors.New("cachedstore: record identity mismatch")

// Store wraps another Store with a bounded LRU cache of decoded records.
//
// The cache itself is single-writer; Store guards it with one mutex and never
// holds that mutex across store I/O. A Store is safe for concurrent use.
//
// A miss that is reading the underlying store only fills the cache if no Put,
// Delete, Evict or Purge touched the same record in the meantime.
type Store struct {
	underlying store.Store
	collector  stats.Collector
	logger     *zap.Logger

	mu    sync.Mutex
	cache *lrucache.Cache[record.Record]
	fills map[lrucache.Key]*pendingFill
}

// pendingFill tracks the store reads in flight for one record.
// gen is bumped whenever the record changes under them.
type pendingFill struct {
	tenantID string
	readers  int
	gen      uint64
}

// New creates a new cached store holding up to capacity records.
// The collector and logger are optional.
func New(underlying store.Store, capacity int, collector stats.Collector, logger *zap.Logger) (*Store, error) {
	cache, err := lrucache.New[record.Record](capacity)
	if err != nil {
		return nil, err
	}
	if collector == nil {
		collector = stats.NewNoop()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	collector.SetGauge(stats.MetricCacheCapacity, int64(capacity))
	return &Store{
		underlying: underlying,
		collector:  collector,
		logger:     logger,
		cache:      cache,
		fills:      make(map[lrucache.Key]*pendingFill),
	}, nil
}

// Get returns a record, checking the cache first and falling back to the
// underlying store on a miss. Records read from the store are cached.
func (s *Store) Get(ctx context.Context, tenantID, recordID string) (record.Record, error) {
	key := lrucache.NewKey(tenantID, recordID)

	s.mu.Lock()
	rec, ok := s.cache.Get(tenantID, recordID)
	var fill *pendingFill
	var gen uint64
	if !ok {
		fill = s.beginFillLocked(key, tenantID)
		gen = fill.gen
	}
	s.mu.Unlock()

	if ok {
		s.collector.IncCounter(stats.MetricCacheHits, 1)
		return rec.Clone(), nil
	}
	s.collector.IncCounter(stats.MetricCacheMisses, 1)

	// Cache miss - read from underlying store.
	start := time.Now()
	rec, err := s.read(ctx, tenantID, recordID)
	s.collector.IncCounter(stats.MetricStoreReads, 1)
	s.collector.ObserveHistogram(stats.MetricReadTime, time.Since(start).Seconds())

	s.mu.Lock()
	s.endFillLocked(key, fill)
	stale := fill.gen != gen
	var evicted bool
	if err == nil && !stale {
		evicted = s.insertLocked(rec.Clone())
	}
	s.mu.Unlock()

	if err != nil {
		return record.Record{}, err
	}
	if stale {
		s.logger.Debug("cache fill skipped",
			zap.String("tenant", tenantID),
			zap.String("record", recordID),
		)
		return rec, nil
	}

	s.countInsert(evicted)
	s.logger.Debug("cache fill",
		zap.String("tenant", tenantID),
		zap.String("record", recordID),
		zap.Duration("elapsed", time.Since(start)),
	)
	return rec, nil
}

// read fetches and decodes a record from the underlying store.
func (s *Store) read(ctx context.Context, tenantID, recordID string) (record.Record, error) {
	data, err := s.underlying.ReadRecord(ctx, tenantID, recordID)
	if err != nil {
		return record.Record{}, err
	}

	rec, err := record.Unmarshal(data)
	if err != nil {
		return record.Record{}, fmt.Errorf("record %s/%s: %w", tenantID, recordID, err)
	}
	if rec.TenantID != tenantID || rec.ID != recordID {
		return record.Record{}, fmt.Errorf("%w: read %s/%s, got %s/%s",
			ErrMismatch, tenantID, recordID, rec.TenantID, rec.ID)
	}
	return rec, nil
}

// Put writes a record through to the underlying store and caches it.
func (s *Store) Put(ctx context.Context, rec record.Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	data, err := record.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding record: %w", err)
	}
	if err := s.underlying.WriteRecord(ctx, rec.TenantID, rec.ID, data); err != nil {
		return err
	}

	s.mu.Lock()
	evicted := s.insertLocked(rec.Clone())
	s.mu.Unlock()

	s.countInsert(evicted)
	return nil
}

// Delete removes a record from the underlying store and the cache.
// The cached copy is dropped even when the store reports ErrNotFound.
func (s *Store) Delete(ctx context.Context, tenantID, recordID string) error {
	err := s.underlying.DeleteRecord(ctx, tenantID, recordID)

	s.mu.Lock()
	s.invalidateLocked(lrucache.NewKey(tenantID, recordID))
	s.cache.Remove(tenantID, recordID)
	s.publishSizeLocked()
	s.mu.Unlock()

	return err
}

// Cached returns copies of the records currently cached for a tenant, in no
// particular order. It does not count as a use of those records.
func (s *Store) Cached(tenantID string) []record.Record {
	s.mu.Lock()
	recs := s.cache.EntriesForTenant(tenantID)
	s.mu.Unlock()

	for i := range recs {
		recs[i] = recs[i].Clone()
	}
	return recs
}

// Evict drops every cached record for a tenant and returns how many there were.
// Called on sign-out and tenant switch.
func (s *Store) Evict(tenantID string) int {
	s.mu.Lock()
	for _, fill := range s.fills {
		if fill.tenantID == tenantID {
			fill.gen++
		}
	}
	n := s.cache.ClearTenant(tenantID)
	s.publishSizeLocked()
	s.mu.Unlock()

	s.logger.Debug("tenant evicted", zap.String("tenant", tenantID), zap.Int("records", n))
	return n
}

// Purge empties the cache and returns how many records it held.
func (s *Store) Purge() int {
	s.mu.Lock()
	for _, fill := range s.fills {
		fill.gen++
	}
	n := s.cache.ClearAll()
	s.publishSizeLocked()
	s.mu.Unlock()

	return n
}

// Stats returns cache statistics.
func (s *Store) Stats() lrucache.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Stats()
}

// Close closes the underlying store.
func (s *Store) Close() error {
	return s.underlying.Close()
}

// insertLocked caches rec and invalidates any fill in flight for it.
// It reports whether an eviction happened.
func (s *Store) insertLocked(rec record.Record) bool {
	s.invalidateLocked(lrucache.NewKey(rec.TenantID, rec.ID))
	evicted := s.cache.Put(rec.TenantID, rec)
	s.publishSizeLocked()
	return evicted
}

func (s *Store) countInsert(evicted bool) {
	s.collector.IncCounter(stats.MetricCacheInserts, 1)
	if evicted {
		s.collector.IncCounter(stats.MetricCacheEvictions, 1)
	}
}

// publishSizeLocked sets the size gauge while s.mu is held, so the last
// published value is always the current size.
func (s *Store) publishSizeLocked() {
	s.collector.SetGauge(stats.MetricCacheSize, int64(s.cache.Len()))
}

func (s *Store) beginFillLocked(key lrucache.Key, tenantID string) *pendingFill {
	fill, ok := s.fills[key]
	if !ok {
		fill = &pendingFill{tenantID: tenantID}
		s.fills[key] = fill
	}
	fill.readers++
	return fill
}

func (s *Store) endFillLocked(key lrucache.Key, fill *pendingFill) {
	fill.readers--
	if fill.readers == 0 {
		delete(s.fills, key)
	}
}

func (s *Store) invalidateLocked(key lrucache.Key) {
	if fill, ok := s.fills[key]; ok {
		fill.gen++
	}
}
