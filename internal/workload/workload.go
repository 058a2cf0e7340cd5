// Package workload replays synthetic multi-tenant access patterns against a
// record cache to measure hit rates and latency.
package workload

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/dosewise/pillcache/internal/record"
	"github.com/dosewise/pillcache/internal/store"
)

// Target is the cache under test.
type Target interface {
	Get(ctx context.Context, tenantID, recordID string) (record.Record, error)
	Put(ctx context.Context, rec record.Record) error
	SignOut(tenantID string) int
}

// Config describes a workload.
type Config struct {
	Tenants          int
	RecordsPerTenant int
	Ops              int

	// WriteRatio is the fraction of operations that are puts.
	WriteRatio float64

	// Skew is the Zipf exponent for record popularity within a tenant.
	// Must be > 1; larger values concentrate reads on fewer records.
	Skew float64

	// SignOutEvery signs a random tenant out every N operations. 0 disables.
	SignOutEvery int

	Seed int64
}

// DefaultConfig returns a small workload resembling a handful of active users.
func DefaultConfig() Config {
	return Config{
		Tenants:          20,
		RecordsPerTenant: 30,
		Ops:              10000,
		WriteRatio:       0.05,
		Skew:             1.2,
		SignOutEvery:     500,
		Seed:             1,
	}
}

func (c Config) validate() error {
	switch {
	case c.Tenants <= 0:
		return errors.New("workload: tenants must be positive")
	case c.RecordsPerTenant <= 0:
		return errors.New("workload: records per tenant must be positive")
	case c.Ops < 0:
		return errors.New("workload: ops must not be negative")
	case c.WriteRatio < 0 || c.WriteRatio > 1:
		return errors.New("workload: write ratio must be within [0, 1]")
	case c.Skew <= 1:
		return errors.New("workload: skew must be greater than 1")
	}
	return nil
}

// TenantID returns the synthetic id of tenant i.
func TenantID(i int) string {
	return fmt.Sprintf("user-%03d", i)
}

// RecordID returns the synthetic id of record i.
func RecordID(i int) string {
	return fmt.Sprintf("rec-%03d", i)
}

// Populate writes every record of the workload straight into st, bypassing
// any cache in front of it.
func Populate(ctx context.Context, st store.Store, cfg Config) error {
	if err := cfg.validate(); err != nil {
		return err
	}
	now := time.Unix(0, 0).UTC()
	for t := 0; t < cfg.Tenants; t++ {
		for r := 0; r < cfg.RecordsPerTenant; r++ {
			data, err := record.Marshal(newRecord(t, r, now))
			if err != nil {
				return err
			}
			if err := st.WriteRecord(ctx, TenantID(t), RecordID(r), data); err != nil {
				return fmt.Errorf("populating %s/%s: %w", TenantID(t), RecordID(r), err)
			}
		}
	}
	return nil
}

func newRecord(tenant, rec int, at time.Time) record.Record {
	return record.Record{
		TenantID:  TenantID(tenant),
		ID:        RecordID(rec),
		Kind:      record.KindReminder,
		UpdatedAt: at,
		Body:      []byte(fmt.Sprintf(`{"seq":%d}`, rec)),
	}
}

// Result summarizes a run.
type Result struct {
	Ops      int
	Gets     int
	Puts     int
	SignOuts int
	Errors   int

	// Latency is per-operation latency in microseconds.
	Latency Summary
}

// Simulator drives a Target with a deterministic pseudo-random workload.
type Simulator struct {
	cfg Config
}

// NewSimulator validates cfg and returns a Simulator.
func NewSimulator(cfg Config) (*Simulator, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Simulator{cfg: cfg}, nil
}

// Run executes the workload. It stops early if ctx is done.
func (s *Simulator) Run(ctx context.Context, target Target) (*Result, error) {
	rng := rand.New(rand.NewSource(s.cfg.Seed))
	zipf := rand.NewZipf(rng, s.cfg.Skew, 1, uint64(s.cfg.RecordsPerTenant-1))

	res := &Result{}
	latencies := make([]float64, 0, s.cfg.Ops)

	for i := 0; i < s.cfg.Ops; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if s.cfg.SignOutEvery > 0 && i > 0 && i%s.cfg.SignOutEvery == 0 {
			target.SignOut(TenantID(rng.Intn(s.cfg.Tenants)))
			res.SignOuts++
		}

		tenant := rng.Intn(s.cfg.Tenants)
		rec := int(zipf.Uint64())

		start := time.Now()
		var err error
		if rng.Float64() < s.cfg.WriteRatio {
			err = target.Put(ctx, newRecord(tenant, rec, start.UTC()))
			res.Puts++
		} else {
			_, err = target.Get(ctx, TenantID(tenant), RecordID(rec))
			res.Gets++
		}
		latencies = append(latencies, float64(time.Since(start).Microseconds()))

		if err != nil {
			res.Errors++
		}
		res.Ops++
	}

	res.Latency = Summarize(latencies)
	return res, nil
}
