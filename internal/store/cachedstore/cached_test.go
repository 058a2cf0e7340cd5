package cachedstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/dosewise/pillcache/internal/lrucache"
	"github.com/dosewise/pillcache/internal/record"
	"github.com/dosewise/pillcache/internal/stats"
	"github.com/dosewise/pillcache/internal/store"
)

// fakeStore is a simple store for testing.
type fakeStore struct {
	mu     sync.Mutex
	data   map[[2]string][]byte
	reads  int
	closed bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: make(map[[2]string][]byte)}
}

func (s *fakeStore) ReadRecord(ctx context.Context, tenantID, recordID string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	if data, ok := s.data[[2]string{tenantID, recordID}]; ok {
		return data, nil
	}
	return nil, store.ErrNotFound
}

func (s *fakeStore) WriteRecord(ctx context.Context, tenantID, recordID string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[[2]string{tenantID, recordID}] = data
	return nil
}

func (s *fakeStore) DeleteRecord(ctx context.Context, tenantID, recordID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := [2]string{tenantID, recordID}
	if _, ok := s.data[key]; !ok {
		return store.ErrNotFound
	}
	delete(s.data, key)
	return nil
}

func (s *fakeStore) Close() error {
	s.closed = true
	return nil
}

func (s *fakeStore) seed(t *testing.T, rec record.Record) {
	t.Helper()
	data, err := record.Marshal(rec)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	s.data[[2]string{rec.TenantID, rec.ID}] = data
}

// gatedStore blocks the first ReadRecord after it has read the data, until
// release is closed.
type gatedStore struct {
	*fakeStore
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func newGatedStore() *gatedStore {
	return &gatedStore{
		fakeStore: newFakeStore(),
		started:   make(chan struct{}),
		release:   make(chan struct{}),
	}
}

func (g *gatedStore) ReadRecord(ctx context.Context, tenantID, recordID string) ([]byte, error) {
	data, err := g.fakeStore.ReadRecord(ctx, tenantID, recordID)
	g.once.Do(func() {
		close(g.started)
		<-g.release
	})
	return data, err
}

// startBlockedGet starts a Get for u1/r1 and waits until it is blocked
// inside the store read. The returned channel yields the Get error.
func startBlockedGet(s *Store, g *gatedStore) <-chan error {
	done := make(chan error, 1)
	go func() {
		_, err := s.Get(context.Background(), "u1", "r1")
		done <- err
	}()
	<-g.started
	return done
}

// countingCollector records counter totals and gauge values.
type countingCollector struct {
	mu       sync.Mutex
	counters map[string]int64
	gauges   map[string]int64
}

func newCountingCollector() *countingCollector {
	return &countingCollector{counters: map[string]int64{}, gauges: map[string]int64{}}
}

func (c *countingCollector) IncCounter(name string, delta int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counters[name] += delta
}

func (c *countingCollector) SetGauge(name string, value int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gauges[name] = value
}

func (c *countingCollector) ObserveHistogram(string, float64) {}

func newTestStore(t *testing.T, capacity int) (*Store, *fakeStore, *countingCollector) {
	t.Helper()
	underlying := newFakeStore()
	collector := newCountingCollector()
	s, err := New(underlying, capacity, collector, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return s, underlying, collector
}

func TestNew_InvalidCapacity(t *testing.T) {
	_, err := New(newFakeStore(), 0, nil, nil)
	if !errors.Is(err, lrucache.ErrInvalidCapacity) {
		t.Errorf("New() error = %v, want ErrInvalidCapacity", err)
	}
}

func TestStore_CacheMissThenHit(t *testing.T) {
	s, underlying, collector := newTestStore(t, 4)
	underlying.seed(t, record.Record{TenantID: "u1", ID: "r1", Kind: record.KindReminder})
	ctx := context.Background()

	rec, err := s.Get(ctx, "u1", "r1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if rec.Kind != record.KindReminder {
		t.Errorf("Get().Kind = %q, want %q", rec.Kind, record.KindReminder)
	}

	// Second read is served from the cache.
	if _, err := s.Get(ctx, "u1", "r1"); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if underlying.reads != 1 {
		t.Errorf("underlying reads = %d, want 1", underlying.reads)
	}

	st := s.Stats()
	if st.Hits != 1 || st.Misses != 1 {
		t.Errorf("Stats() hits=%d misses=%d, want 1/1", st.Hits, st.Misses)
	}
	if collector.counters[stats.MetricCacheHits] != 1 || collector.counters[stats.MetricCacheMisses] != 1 {
		t.Errorf("collector counters = %v", collector.counters)
	}
	if collector.gauges[stats.MetricCacheSize] != 1 {
		t.Errorf("size gauge = %d, want 1", collector.gauges[stats.MetricCacheSize])
	}
	if collector.gauges[stats.MetricCacheCapacity] != 4 {
		t.Errorf("capacity gauge = %d, want 4", collector.gauges[stats.MetricCacheCapacity])
	}
}

func TestStore_NotFound(t *testing.T) {
	s, _, _ := newTestStore(t, 2)

	_, err := s.Get(context.Background(), "u1", "missing")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
	if s.Stats().Size != 0 {
		t.Error("a miss in the store must not populate the cache")
	}
}

func TestStore_IdentityMismatch(t *testing.T) {
	s, underlying, _ := newTestStore(t, 2)
	data, _ := record.Marshal(record.Record{TenantID: "u2", ID: "r1"})
	underlying.data[[2]string{"u1", "r1"}] = data

	_, err := s.Get(context.Background(), "u1", "r1")
	if !errors.Is(err, ErrMismatch) {
		t.Errorf("Get() error = %v, want ErrMismatch", err)
	}
}

func TestStore_CorruptDocument(t *testing.T) {
	s, underlying, _ := newTestStore(t, 2)
	underlying.data[[2]string{"u1", "r1"}] = []byte("{")

	if _, err := s.Get(context.Background(), "u1", "r1"); err == nil {
		t.Error("Get() should fail on a corrupt document")
	}
}

func TestStore_PutWritesThrough(t *testing.T) {
	s, underlying, _ := newTestStore(t, 2)
	ctx := context.Background()

	rec := record.Record{TenantID: "u1", ID: "r1", Body: []byte(`{"dose":"5mg"}`)}
	if err := s.Put(ctx, rec); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if _, ok := underlying.data[[2]string{"u1", "r1"}]; !ok {
		t.Error("Put() should write to the underlying store")
	}

	got, err := s.Get(ctx, "u1", "r1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if underlying.reads != 0 {
		t.Errorf("Get() after Put() read the store %d times, want 0", underlying.reads)
	}
	if string(got.Body) != `{"dose":"5mg"}` {
		t.Errorf("Get().Body = %s", got.Body)
	}
}

func TestStore_PutInvalid(t *testing.T) {
	s, _, _ := newTestStore(t, 2)
	err := s.Put(context.Background(), record.Record{ID: "r1"})
	if !errors.Is(err, record.ErrInvalid) {
		t.Errorf("Put() error = %v, want ErrInvalid", err)
	}
}

func TestStore_ReturnedRecordsAreCopies(t *testing.T) {
	s, _, _ := newTestStore(t, 2)
	ctx := context.Background()
	body := []byte(`{"a":1}`)
	if err := s.Put(ctx, record.Record{TenantID: "u1", ID: "r1", Body: body}); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	body[2] = 'z'

	got, _ := s.Get(ctx, "u1", "r1")
	got.Body[2] = 'y'

	again, _ := s.Get(ctx, "u1", "r1")
	if string(again.Body) != `{"a":1}` {
		t.Errorf("cached body was mutated: %s", again.Body)
	}
}

func TestStore_EvictionCounted(t *testing.T) {
	s, _, collector := newTestStore(t, 2)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if err := s.Put(ctx, record.Record{TenantID: "u1", ID: fmt.Sprintf("r%d", i)}); err != nil {
			t.Fatalf("Put() error = %v", err)
		}
	}

	if got := s.Stats().Evictions; got != 1 {
		t.Errorf("Stats().Evictions = %d, want 1", got)
	}
	if got := collector.counters[stats.MetricCacheEvictions]; got != 1 {
		t.Errorf("eviction counter = %d, want 1", got)
	}
	if got := collector.counters[stats.MetricCacheInserts]; got != 3 {
		t.Errorf("insert counter = %d, want 3", got)
	}
}

func TestStore_Delete(t *testing.T) {
	s, underlying, _ := newTestStore(t, 2)
	ctx := context.Background()
	_ = s.Put(ctx, record.Record{TenantID: "u1", ID: "r1"})

	if err := s.Delete(ctx, "u1", "r1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if len(underlying.data) != 0 {
		t.Error("Delete() should remove from the underlying store")
	}
	if _, err := s.Get(ctx, "u1", "r1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Get() after Delete() error = %v, want ErrNotFound", err)
	}
}

func TestStore_EvictTenant(t *testing.T) {
	s, _, _ := newTestStore(t, 10)
	ctx := context.Background()
	for _, p := range [][2]string{{"u1", "r1"}, {"u1", "r2"}, {"u2", "r1"}} {
		_ = s.Put(ctx, record.Record{TenantID: p[0], ID: p[1]})
	}

	if n := s.Evict("u1"); n != 2 {
		t.Errorf("Evict() = %d, want 2", n)
	}
	if got := s.Cached("u1"); len(got) != 0 {
		t.Errorf("Cached(u1) = %v, want empty", got)
	}
	got := s.Cached("u2")
	if len(got) != 1 || got[0].ID != "r1" {
		t.Errorf("Cached(u2) = %v, want [r1]", got)
	}
}

func TestStore_CachedDoesNotCountAsLookup(t *testing.T) {
	s, _, _ := newTestStore(t, 10)
	ctx := context.Background()
	_ = s.Put(ctx, record.Record{TenantID: "u1", ID: "b"})
	_ = s.Put(ctx, record.Record{TenantID: "u1", ID: "a"})

	got := s.Cached("u1")
	ids := []string{got[0].ID, got[1].ID}
	sort.Strings(ids)
	if ids[0] != "a" || ids[1] != "b" {
		t.Errorf("Cached() ids = %v, want [a b]", ids)
	}
	if s.Stats().Lookups() != 0 {
		t.Errorf("Cached() counted %d lookups", s.Stats().Lookups())
	}
}

func TestStore_Purge(t *testing.T) {
	s, _, _ := newTestStore(t, 10)
	ctx := context.Background()
	_ = s.Put(ctx, record.Record{TenantID: "u1", ID: "r1"})

	if n := s.Purge(); n != 1 {
		t.Errorf("Purge() = %d, want 1", n)
	}
	if n := s.Purge(); n != 0 {
		t.Errorf("second Purge() = %d, want 0", n)
	}
}

func TestStore_ConcurrentGets(t *testing.T) {
	s, underlying, _ := newTestStore(t, 8)
	for i := 0; i < 16; i++ {
		underlying.seed(t, record.Record{TenantID: "u1", ID: fmt.Sprintf("r%d", i)})
	}

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				if _, err := s.Get(context.Background(), "u1", fmt.Sprintf("r%d", (g+i)%16)); err != nil {
					t.Errorf("Get() error = %v", err)
					return
				}
			}
		}(g)
	}
	wg.Wait()

	if st := s.Stats(); st.Size > st.Capacity || st.Lookups() != 800 {
		t.Errorf("Stats() = %+v", st)
	}
}

func TestStore_Close(t *testing.T) {
	s, underlying, _ := newTestStore(t, 1)
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !underlying.closed {
		t.Error("Close() should close the underlying store")
	}
}

func TestStore_DeleteDuringMissIsNotCached(t *testing.T) {
	gated := newGatedStore()
	gated.seed(t, record.Record{TenantID: "u1", ID: "r1", Body: []byte(`{"v":1}`)})
	s, err := New(gated, 4, nil, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ctx := context.Background()

	done := startBlockedGet(s, gated)
	if err := s.Delete(ctx, "u1", "r1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	close(gated.release)
	if err := <-done; err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	if got := s.Cached("u1"); len(got) != 0 {
		t.Errorf("Cached(u1) = %d records after Delete(), want 0", len(got))
	}
	if _, err := s.Get(ctx, "u1", "r1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Get() after Delete() error = %v, want ErrNotFound", err)
	}
}

func TestStore_PutDuringMissWins(t *testing.T) {
	gated := newGatedStore()
	gated.seed(t, record.Record{TenantID: "u1", ID: "r1", Body: []byte(`{"v":1}`)})
	s, err := New(gated, 4, nil, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ctx := context.Background()

	done := startBlockedGet(s, gated)
	if err := s.Put(ctx, record.Record{TenantID: "u1", ID: "r1", Body: []byte(`{"v":2}`)}); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	close(gated.release)
	if err := <-done; err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	got, err := s.Get(ctx, "u1", "r1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(got.Body) != `{"v":2}` {
		t.Errorf("Get().Body = %s, want the record from Put()", got.Body)
	}
}

func TestStore_EvictDuringMissIsNotCached(t *testing.T) {
	gated := newGatedStore()
	gated.seed(t, record.Record{TenantID: "u1", ID: "r1"})
	s, err := New(gated, 4, nil, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	done := startBlockedGet(s, gated)
	s.Evict("u1")
	close(gated.release)
	if err := <-done; err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	if got := s.Cached("u1"); len(got) != 0 {
		t.Errorf("Cached(u1) = %d records after Evict(), want 0", len(got))
	}
}

func TestStore_MissAfterDeleteStillFills(t *testing.T) {
	s, underlying, _ := newTestStore(t, 4)
	ctx := context.Background()
	underlying.seed(t, record.Record{TenantID: "u1", ID: "r1"})

	if err := s.Delete(ctx, "u1", "r1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	underlying.seed(t, record.Record{TenantID: "u1", ID: "r1"})

	if _, err := s.Get(ctx, "u1", "r1"); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(s.fills) != 0 {
		t.Errorf("pending fills = %d after Get(), want 0", len(s.fills))
	}
	if got := s.Cached("u1"); len(got) != 1 {
		t.Errorf("Cached(u1) = %d records, want 1", len(got))
	}
}

func TestStore_SizeGaugeTracksCache(t *testing.T) {
	s, _, collector := newTestStore(t, 8)
	ctx := context.Background()

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				id := fmt.Sprintf("r%d", (g*50+i)%12)
				if i%3 == 0 {
					_ = s.Delete(ctx, "u1", id)
					continue
				}
				_ = s.Put(ctx, record.Record{TenantID: "u1", ID: id})
			}
		}(g)
	}
	wg.Wait()

	if got, want := collector.gauges[stats.MetricCacheSize], int64(s.Stats().Size); got != want {
		t.Errorf("size gauge = %d, want %d", got, want)
	}
}
