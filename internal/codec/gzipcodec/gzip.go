// Package gzipcodec provides a gzip compression codec.
package gzipcodec

import (
	"compress/gzip"
	"fmt"
	"io"

	"github.com/dosewise/pillcache/internal/codec"
)

// Compile-time check that Codec implements codec.Codec.
var _ codec.Codec = (*Codec)(nil)

// Codec implements gzip compression.
type Codec struct {
	level int
}

// New returns a gzip codec using the default compression level.
func New() *Codec {
	return &Codec{level: gzip.DefaultCompression}
}

// NewWithLevel returns a gzip codec using the given compression level,
// from gzip.HuffmanOnly to gzip.BestCompression.
func NewWithLevel(level int) (*Codec, error) {
	if level < gzip.HuffmanOnly || level > gzip.BestCompression {
		return nil, fmt.Errorf("gzipcodec: invalid compression level %d", level)
	}
	return &Codec{level: level}, nil
}

// Level returns the compression level used by Writer.
func (c *Codec) Level() int {
	return c.level
}

// Reader wraps r to decompress gzip data.
func (c *Codec) Reader(r io.Reader) (io.ReadCloser, error) {
	return gzip.NewReader(r)
}

// Writer wraps w to compress data with gzip.
func (c *Codec) Writer(w io.Writer) (io.WriteCloser, error) {
	return gzip.NewWriterLevel(w, c.level)
}

// Extension returns "gz".
func (c *Codec) Extension() string {
	return "gz"
}
