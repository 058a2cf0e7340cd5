package pillcache

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
	"go.uber.org/zap"

	"github.com/dosewise/pillcache/internal/codec"
	"github.com/dosewise/pillcache/internal/codec/gzipcodec"
	"github.com/dosewise/pillcache/internal/codec/noopcodec"
	"github.com/dosewise/pillcache/internal/codec/zstdcodec"
	"github.com/dosewise/pillcache/internal/stats"
	"github.com/dosewise/pillcache/internal/store"
	"github.com/dosewise/pillcache/internal/store/diskstore"
)

// DefaultCapacity is the number of records cached when WithCapacity is not used.
const DefaultCapacity = 128

// Option configures a Client.
type Option interface {
	apply(*options)
}

// options holds the client configuration.
type options struct {
	store    store.Store
	capacity int
	stats    stats.Collector
	logger   *zap.Logger
}

// defaultOptions returns the default configuration.
func defaultOptions() options {
	return options{
		capacity: DefaultCapacity,
		stats:    stats.NewNoop(),
		logger:   zap.NewNop(),
	}
}

// optionFunc wraps a function to implement Option.
type optionFunc func(*options)

// Compile-time check that optionFunc implements Option.
var _ Option = optionFunc(nil)

func (f optionFunc) apply(o *options) { f(o) }

// WithStore sets the storage backend to use.
func WithStore(s store.Store) Option {
	return optionFunc(func(o *options) {
		o.store = s
	})
}

// WithCapacity sets how many records the cache holds.
// New fails with ErrInvalidCapacity if n is not positive.
func WithCapacity(n int) Option {
	return optionFunc(func(o *options) {
		o.capacity = n
	})
}

// WithStats sets the stats collector.
// If not set, a no-op collector is used.
func WithStats(c stats.Collector) Option {
	return optionFunc(func(o *options) {
		o.stats = c
	})
}

// WithLogger sets the logger.
// If not set, a no-op logger is used.
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(o *options) {
		o.logger = l
	})
}

// WithDataDir uses the local disk store rooted at dir, compressing records
// with the named codec ("zstd", "gzip" or "none").
func WithDataDir(dir, codecName string) (Option, error) {
	c, err := CodecByName(codecName)
	if err != nil {
		return nil, err
	}

	st, err := diskstore.New(dir, c)
	if err != nil {
		return nil, fmt.Errorf("creating store: %w", err)
	}

	return WithStore(st), nil
}

// CodecByName returns the codec registered under name. A compression level
// may follow a colon: "zstd:fastest|default|better|best" or "gzip:1".."gzip:9".
func CodecByName(name string) (codec.Codec, error) {
	name, level, hasLevel := strings.Cut(name, ":")

	switch name {
	case "zstd", "zst":
		if !hasLevel {
			return zstdcodec.New(), nil
		}
		ok, l := zstd.EncoderLevelFromString(level)
		if !ok {
			return nil, fmt.Errorf("unknown zstd level: %s", level)
		}
		return zstdcodec.NewWithLevel(l), nil
	case "gzip", "gz":
		if !hasLevel {
			return gzipcodec.New(), nil
		}
		n, err := strconv.Atoi(level)
		if err != nil {
			return nil, fmt.Errorf("parsing gzip level: %w", err)
		}
		c, err := gzipcodec.NewWithLevel(n)
		if err != nil {
			return nil, err
		}
		return c, nil
	case "none", "":
		if hasLevel {
			return nil, fmt.Errorf("codec %q takes no level", name)
		}
		return noopcodec.New(), nil
	default:
		return nil, fmt.Errorf("unknown codec: %s", name)
	}
}
