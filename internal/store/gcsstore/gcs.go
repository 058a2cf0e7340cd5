// Package gcsstore implements the remote document store on Google Cloud Storage.
package gcsstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"

	"github.com/dosewise/pillcache/internal/codec"
	"github.com/dosewise/pillcache/internal/store"
)

// Compile-time check that Store implements store.Store.
var _ store.Store = (*Store)(nil)

// bucket is the subset of bucket operations the store uses.
type bucket interface {
	NewReader(ctx context.Context, name string) (io.ReadCloser, error)
	NewWriter(ctx context.Context, name string) io.WriteCloser
	Delete(ctx context.Context, name string) error
}

// gcsBucket adapts a *storage.BucketHandle to bucket.
type gcsBucket struct {
	handle *storage.BucketHandle
}

func (b gcsBucket) NewReader(ctx context.Context, name string) (io.ReadCloser, error) {
	return b.handle.Object(name).NewReader(ctx)
}

func (b gcsBucket) NewWriter(ctx context.Context, name string) io.WriteCloser {
	w := b.handle.Object(name).NewWriter(ctx)
	w.ContentType = "application/json"
	return w
}

func (b gcsBucket) Delete(ctx context.Context, name string) error {
	return b.handle.Object(name).Delete(ctx)
}

// Store is a Google Cloud Storage backend.
type Store struct {
	client *storage.Client
	bucket bucket
	prefix string
	codec  codec.Codec
}

// New creates a new GCS store.
// The bucket must already exist.
// The codec handles compression/decompression.
func New(ctx context.Context, bucketName string, c codec.Codec, opts ...Option) (*Store, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating GCS client: %w", err)
	}

	s := &Store{
		client: client,
		bucket: gcsBucket{handle: client.Bucket(bucketName)},
		codec:  c,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Option configures a Store.
type Option func(*Store)

// WithPrefix sets a key prefix for all operations.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = strings.TrimSuffix(prefix, "/")
		if s.prefix != "" {
			s.prefix += "/"
		}
	}
}

// ReadRecord fetches and decompresses a record document.
func (s *Store) ReadRecord(ctx context.Context, tenantID, recordID string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reader, err := s.bucket.NewReader(ctx, s.objectName(tenantID, recordID))
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("creating reader: %w", err)
	}
	defer reader.Close()

	return codec.Decode(s.codec, reader)
}

// WriteRecord compresses and uploads a record document.
func (s *Store) WriteRecord(ctx context.Context, tenantID, recordID string, data []byte) error {
	encoded, err := codec.Encode(s.codec, data)
	if err != nil {
		return err
	}

	w := s.bucket.NewWriter(ctx, s.objectName(tenantID, recordID))
	if _, err := w.Write(encoded); err != nil {
		w.Close()
		return fmt.Errorf("writing record: %w", err)
	}
	// The upload is committed on Close.
	if err := w.Close(); err != nil {
		return fmt.Errorf("committing record: %w", err)
	}
	return nil
}

// DeleteRecord removes a record document.
func (s *Store) DeleteRecord(ctx context.Context, tenantID, recordID string) error {
	if err := s.bucket.Delete(ctx, s.objectName(tenantID, recordID)); err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return store.ErrNotFound
		}
		return fmt.Errorf("deleting record: %w", err)
	}
	return nil
}

// Close releases resources.
func (s *Store) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}

// objectName returns the full object name for a record.
func (s *Store) objectName(tenantID, recordID string) string {
	return s.prefix + store.ObjectPath(tenantID, recordID, s.codec.Extension())
}
