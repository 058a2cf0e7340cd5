package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dosewise/pillcache"
	"github.com/dosewise/pillcache/internal/store"
	"github.com/dosewise/pillcache/internal/store/diskstore"
	"github.com/dosewise/pillcache/internal/store/gcsstore"
	"github.com/dosewise/pillcache/internal/store/s3store"
)

var (
	// Global flags.
	dataDir   string
	backend   string
	bucket    string
	prefix    string
	region    string
	codecName string
	capacity  int
	verbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "pillcache",
	Short: "Tenant record cache for medication reminders",
	Long: `Pillcache keeps each user's hot reminder, adherence and medication
records in a bounded in-memory LRU cache in front of a local disk store
or a remote document store (S3 or GCS).

Examples:
  # Store a reminder for a user
  pillcache put user-1 rem-morning --kind reminder --file reminder.json

  # Read it back
  pillcache get user-1 rem-morning

  # Replay a synthetic workload and report cache hit rate
  pillcache simulate --capacity 64 --ops 50000`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&dataDir, "data-dir", "d", "./data", "directory holding record documents (disk backend)")
	rootCmd.PersistentFlags().StringVar(&backend, "backend", "disk", "record store: disk, s3 or gcs")
	rootCmd.PersistentFlags().StringVar(&bucket, "bucket", "", "bucket name (s3 and gcs backends)")
	rootCmd.PersistentFlags().StringVar(&prefix, "prefix", "", "object key prefix (s3 and gcs backends)")
	rootCmd.PersistentFlags().StringVar(&region, "region", "", "AWS region (s3 backend)")
	rootCmd.PersistentFlags().StringVar(&codecName, "codec", "zstd", "record compression: zstd, gzip or none, with an optional level (zstd:best, gzip:9)")
	rootCmd.PersistentFlags().IntVar(&capacity, "capacity", pillcache.DefaultCapacity, "number of records to cache in memory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
}

// newLogger returns a development logger when --verbose is set.
func newLogger() (*zap.Logger, error) {
	if !verbose {
		return zap.NewNop(), nil
	}
	return zap.NewDevelopment()
}

// openStore opens the record store selected by the global flags.
func openStore(ctx context.Context) (store.Store, error) {
	c, err := pillcache.CodecByName(codecName)
	if err != nil {
		return nil, err
	}

	switch backend {
	case "disk":
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		st, err := diskstore.New(dataDir, c)
		if err != nil {
			return nil, fmt.Errorf("opening data directory: %w", err)
		}
		return st, nil
	case "s3":
		if bucket == "" {
			return nil, errors.New("--bucket is required for the s3 backend")
		}
		opts := []s3store.Option{s3store.WithPrefix(prefix)}
		if region != "" {
			opts = append(opts, s3store.WithRegion(region))
		}
		st, err := s3store.New(ctx, bucket, c, opts...)
		if err != nil {
			return nil, err
		}
		return st, nil
	case "gcs":
		if bucket == "" {
			return nil, errors.New("--bucket is required for the gcs backend")
		}
		st, err := gcsstore.New(ctx, bucket, c, gcsstore.WithPrefix(prefix))
		if err != nil {
			return nil, err
		}
		return st, nil
	default:
		return nil, fmt.Errorf("unknown backend: %s", backend)
	}
}

// openClient builds a client over the selected store.
func openClient(ctx context.Context) (*pillcache.Client, error) {
	logger, err := newLogger()
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	st, err := openStore(ctx)
	if err != nil {
		return nil, err
	}

	client, err := pillcache.New(
		pillcache.WithStore(st),
		pillcache.WithCapacity(capacity),
		pillcache.WithLogger(logger),
	)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("creating client: %w", err)
	}
	return client, nil
}
