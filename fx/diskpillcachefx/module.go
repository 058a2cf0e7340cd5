// Package diskpillcachefx provides an fx module for a disk-backed pillcache client.
package diskpillcachefx

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/dosewise/pillcache"
	"github.com/dosewise/pillcache/internal/stats"
	"github.com/dosewise/pillcache/internal/stats/logger"
)

// Config holds configuration for the disk-backed pillcache client.
type Config struct {
	// DataDir is the directory holding tenant record documents.
	DataDir string

	// Capacity is the number of records to cache in memory.
	// Default is pillcache.DefaultCapacity.
	Capacity int

	// Codec names the compression used on disk: "zstd" (default), "gzip" or "none".
	Codec string
}

// Module provides a disk-backed pillcache client.
// Requires a Config and a *zap.Logger to be provided.
var Module = fx.Module("diskpillcache",
	fx.Provide(
		newStatsCollector,
		newClient,
	),
)

func newStatsCollector(log *zap.Logger) stats.Collector {
	return logger.New(log.Named("pillcache.stats"))
}

// Params holds dependencies for creating the client.
type Params struct {
	fx.In

	Config    Config
	Logger    *zap.Logger
	Collector stats.Collector
	Lifecycle fx.Lifecycle
}

// Result holds the provided client.
type Result struct {
	fx.Out

	Client *pillcache.Client
}

func newClient(p Params) (Result, error) {
	capacity := p.Config.Capacity
	if capacity <= 0 {
		capacity = pillcache.DefaultCapacity
	}
	codecName := p.Config.Codec
	if codecName == "" {
		codecName = "zstd"
	}

	dataDir, err := pillcache.WithDataDir(p.Config.DataDir, codecName)
	if err != nil {
		return Result{}, err
	}

	client, err := pillcache.New(
		dataDir,
		pillcache.WithCapacity(capacity),
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
