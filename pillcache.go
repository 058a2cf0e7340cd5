// Package pillcache keeps a medication-reminder app's hot records in memory
// in front of slower document stores.
//
// Example usage:
//
//	opt, err := pillcache.WithDataDir("/var/lib/pillcache", "zstd")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client, err := pillcache.New(opt, pillcache.WithCapacity(256))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	rec, err := client.Get(ctx, userID, "rem-morning")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// On sign-out:
//	client.SignOut(userID)
package pillcache

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/dosewise/pillcache/internal/lrucache"
	"github.com/dosewise/pillcache/internal/record"
	"github.com/dosewise/pillcache/internal/reminder"
	"github.com/dosewise/pillcache/internal/stats"
	"github.com/dosewise/pillcache/internal/store"
	"github.com/dosewise/pillcache/internal/store/cachedstore"
)

// Sentinel errors for well-defined error conditions.
var (
	// ErrNotFound indicates the record exists neither in the cache nor the store.
	ErrNotFound = errors.New("pillcache: record not found")

	// ErrClosed indicates the client has been closed.
	ErrClosed = errors.New("pillcache: client closed")

	// ErrNoStore indicates no store was provided.
	ErrNoStore = errors.New("pillcache: no store provided")

	// ErrInvalidCapacity indicates a non-positive cache capacity.
	ErrInvalidCapacity = lrucache.ErrInvalidCapacity
)

type (
	// Record is a tenant-scoped document.
	Record = record.Record
	// CacheStats reports cache size and counters.
	CacheStats = lrucache.Stats
)

// Client provides cached access to tenant records.
// A Client is safe for concurrent use by multiple goroutines.
type Client struct {
	store  store.Store
	cache  *cachedstore.Store
	stats  stats.Collector
	logger *zap.Logger
	closed atomic.Bool
}

// New creates a new Client with the given options.
// A store is required; everything else has defaults.
func New(opts ...Option) (*Client, error) {
	cfg := defaultOptions()
	for _, opt := range opts {
		opt.apply(&cfg)
	}

	if cfg.store == nil {
		return nil, ErrNoStore
	}
	if cfg.stats == nil {
		cfg.stats = stats.NewNoop()
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}

	cache, err := cachedstore.New(cfg.store, cfg.capacity, cfg.stats, cfg.logger.Named("cache"))
	if err != nil {
		return nil, fmt.Errorf("creating cache: %w", err)
	}

	c := &Client{
		store:  cfg.store,
		cache:  cache,
		stats:  cfg.stats,
		logger: cfg.logger,
	}

	c.logger.Debug("client initialized", zap.Int("capacity", cfg.capacity))
	return c, nil
}

// Get returns a record, from the cache when possible.
// Returns ErrNotFound if the record is not in the store.
func (c *Client) Get(ctx context.Context, tenantID, recordID string) (Record, error) {
	if c.closed.Load() {
		return Record{}, ErrClosed
	}
	if err := (Record{TenantID: tenantID, ID: recordID}).Validate(); err != nil {
		return Record{}, err
	}

	c.stats.IncCounter(stats.MetricGets, 1)

	rec, err := c.cache.Get(ctx, tenantID, recordID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.stats.IncCounter(stats.MetricNotFound, 1)
			return Record{}, ErrNotFound
		}
		return Record{}, fmt.Errorf("getting %s/%s: %w", tenantID, recordID, err)
	}
	return rec, nil
}

// Put stores a record and caches it.
func (c *Client) Put(ctx context.Context, rec Record) error {
	if c.closed.Load() {
		return ErrClosed
	}

	c.stats.IncCounter(stats.MetricPuts, 1)

	if err := c.cache.Put(ctx, rec); err != nil {
		return fmt.Errorf("putting %s/%s: %w", rec.TenantID, rec.ID, err)
	}
	return nil
}

// Delete removes a record from the store and the cache.
func (c *Client) Delete(ctx context.Context, tenantID, recordID string) error {
	if c.closed.Load() {
		return ErrClosed
	}

	c.stats.IncCounter(stats.MetricDeletes, 1)

	if err := c.cache.Delete(ctx, tenantID, recordID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("deleting %s/%s: %w", tenantID, recordID, err)
	}
	return nil
}

// SignOut drops every cached record for a tenant and returns how many were
// dropped. The store is not touched.
func (c *Client) SignOut(tenantID string) int {
	n := c.cache.Evict(tenantID)
	c.stats.IncCounter(stats.MetricSignOuts, 1)
	c.logger.Debug("tenant signed out", zap.String("tenant", tenantID), zap.Int("evicted", n))
	return n
}

// Cached returns the records currently cached for a tenant without
// refreshing their recency.
func (c *Client) Cached(tenantID string) []Record {
	return c.cache.Cached(tenantID)
}

// Purge empties the cache.
func (c *Client) Purge() int {
	return c.cache.Purge()
}

// Stats returns cache statistics.
func (c *Client) Stats() CacheStats {
	return c.cache.Stats()
}

// Reminders loads the given reminder records into a reminder set.
func (c *Client) Reminders(ctx context.Context, tenantID string, ids ...string) (*reminder.Set, error) {
	set := reminder.NewSet()
	for _, id := range ids {
		rec, err := c.Get(ctx, tenantID, id)
		if err != nil {
			return nil, err
		}
		r, err := reminder.DecodeReminder(rec)
		if err != nil {
			return nil, err
		}
		set.Add(r)
	}
	return set, nil
}

// Adherence loads the given adherence event records into an index.
func (c *Client) Adherence(ctx context.Context, tenantID string, eventIDs ...string) (*reminder.Adherence, error) {
	a := reminder.NewAdherence()
	for _, id := range eventIDs {
		rec, err := c.Get(ctx, tenantID, id)
		if err != nil {
			return nil, err
		}
		e, err := reminder.DecodeEvent(rec)
		if err != nil {
			return nil, err
		}
		a.Record(e)
	}
	return a, nil
}

// Store returns the storage backend used by this client.
func (c *Client) Store() store.Store {
	return c.store
}

// Close releases all resources associated with the client.
// After Close, the client should not be used.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}

	if err := c.cache.Close(); err != nil {
		return fmt.Errorf("closing store: %w", err)
	}
	return nil
}
