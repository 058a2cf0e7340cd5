// Package zstdcodec provides a zstd compression codec.
package zstdcodec

import (
	"io"

	"github.com/klauspost/compress/zstd"

	"github.com/dosewise/pillcache/internal/codec"
)

// Compile-time check that Codec implements codec.Codec.
var _ codec.Codec = (*Codec)(nil)

// Codec implements zstd compression.
type Codec struct {
	level zstd.EncoderLevel
}

// New returns a zstd codec using the default encoder level.
func New() *Codec {
	return &Codec{level: zstd.SpeedDefault}
}

// NewWithLevel returns a zstd codec using the given encoder level.
func NewWithLevel(level zstd.EncoderLevel) *Codec {
	return &Codec{level: level}
}

// Level returns the encoder level used by Writer.
func (c *Codec) Level() zstd.EncoderLevel {
	return c.level
}

// Reader wraps r to decompress zstd data.
// Record documents are small, so decoding stays on the calling goroutine.
func (c *Codec) Reader(r io.Reader) (io.ReadCloser, error) {
	decoder, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, err
	}
	return decoder.IOReadCloser(), nil
}

// Writer wraps w to compress data with zstd.
func (c *Codec) Writer(w io.Writer) (io.WriteCloser, error) {
	return zstd.NewWriter(w,
		zstd.WithEncoderLevel(c.level),
		zstd.WithEncoderConcurrency(1),
	)
}

// Extension returns "zst".
func (c *Codec) Extension() string {
	return "zst"
}
