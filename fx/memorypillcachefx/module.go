// Package memorypillcachefx provides an fx module for an in-memory pillcache client.
// Useful for testing.
package memorypillcachefx

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/dosewise/pillcache"
	"github.com/dosewise/pillcache/internal/stats"
	"github.com/dosewise/pillcache/internal/stats/logger"
	"github.com/dosewise/pillcache/internal/store/memstore"
)

// Module provides an in-memory pillcache client for testing.
// Requires a *zap.Logger to be provided.
var Module = fx.Module("memorypillcache",
	fx.Provide(
		newStatsCollector,
		newMemStore,
		newClient,
	),
)

func newStatsCollector(log *zap.Logger) stats.Collector {
	return logger.New(log.Named("pillcache.stats"))
}

func newMemStore() *memstore.Store {
	return memstore.New()
}

// Params holds dependencies for creating the client.
type Params struct {
	fx.In

	Logger    *zap.Logger
	Collector stats.Collector
	Store     *memstore.Store
	Lifecycle fx.Lifecycle
}

// Result holds the provided client. The *memstore.Store is provided
// separately so tests can seed it.
type Result struct {
	fx.Out

	Client *pillcache.Client
}

func newClient(p Params) (Result, error) {
	client, err := pillcache.New(
		pillcache.WithStore(p.Store),
		pillcache.WithStats(p.Collector),
		pillcache.WithLogger(p.Logger.Named("pillcache")),
	)
	if err != nil {
		return Result{}, err
	}

	p.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})

	return Result{Client: client}, nil
}
