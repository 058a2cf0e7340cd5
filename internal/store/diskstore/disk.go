// Package diskstore implements the local disk-backed record store.
package diskstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dosewise/pillcache/internal/codec"
	"github.com/dosewise/pillcache/internal/store"
)

// Compile-time check that Store implements store.Store.
var _ store.Store = (*Store)(nil)

// Store is a disk-based filesystem storage backend.
type Store struct {
	root  string
	codec codec.Codec
}

// New creates a new disk store rooted at the given directory.
// The directory must exist. The codec handles compression/decompression.
func New(root string, c codec.Codec) (*Store, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat root directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", root)
	}

	return &Store{
		root:  root,
		codec: c,
	}, nil
}

// ReadRecord reads and decompresses a record document.
func (s *Store) ReadRecord(ctx context.Context, tenantID, recordID string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	compressed, err := os.ReadFile(s.recordPath(tenantID, recordID))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("reading record: %w", err)
	}

	return codec.Decode(s.codec, bytes.NewReader(compressed))
}

// WriteRecord compresses data and writes it atomically.
func (s *Store) WriteRecord(ctx context.Context, tenantID, recordID string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	encoded, err := codec.Encode(s.codec, data)
	if err != nil {
		return err
	}

	path := s.recordPath(tenantID, recordID)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating tenant directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".record-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(encoded); err != nil {
		tmp.Close()
		return fmt.Errorf("writing record: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("renaming record: %w", err)
	}
	return nil
}

// DeleteRecord removes a record document.
func (s *Store) DeleteRecord(ctx context.Context, tenantID, recordID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.Remove(s.recordPath(tenantID, recordID)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return store.ErrNotFound
		}
		return fmt.Errorf("deleting record: %w", err)
	}
	return nil
}

// Usage summarizes what is stored on disk.
type Usage struct {
	Tenants int
	Records int
	Bytes   int64
}

// Usage walks the store and counts tenants, records and bytes on disk.
func (s *Store) Usage() (Usage, error) {
	var u Usage
	tenantsDir := filepath.Join(s.root, "tenants")

	tenants, err := os.ReadDir(tenantsDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return u, nil
		}
		return u, fmt.Errorf("reading tenants directory: %w", err)
	}

	suffix := s.suffix()
	for _, tenant := range tenants {
		if !tenant.IsDir() {
			continue
		}
		entries, err := os.ReadDir(filepath.Join(tenantsDir, tenant.Name()))
		if err != nil {
			return u, fmt.Errorf("reading tenant %s: %w", tenant.Name(), err)
		}
		var counted bool
		for _, entry := range entries {
			if entry.IsDir() || !hasSuffix(entry.Name(), suffix) {
				continue
			}
			info, err := entry.Info()
			if err != nil {
				continue
			}
			u.Records++
			u.Bytes += info.Size()
			counted = true
		}
		if counted {
			u.Tenants++
		}
	}
	return u, nil
}

// Close releases any resources held by the store.
func (s *Store) Close() error {
	return nil
}

// recordPath returns the filesystem path for a record.
func (s *Store) recordPath(tenantID, recordID string) string {
	return filepath.Join(s.root, filepath.FromSlash(store.ObjectPath(tenantID, recordID, s.codec.Extension())))
}

func (s *Store) suffix() string {
	if ext := s.codec.Extension(); ext != "" {
		return ".json." + ext
	}
	return ".json"
}

func hasSuffix(name, suffix string) bool {
	return len(name) > len(suffix) && name[len(name)-len(suffix):] == suffix
}
