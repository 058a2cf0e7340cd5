// Package store defines the document store interface the record cache sits in
// front of.
package store

import (
	"context"
	"errors"
	"net/url"
	"strings"
)

// ErrNotFound is returned when a record does not exist in the store.
var ErrNotFound = errors.New("store: record not found")

// Store defines the interface for storage backends.
// Implementations handle path formats and storage details internally.
type Store interface {
	// ReadRecord returns the encoded record document.
	ReadRecord(ctx context.Context, tenantID, recordID string) ([]byte, error)

	// WriteRecord creates or replaces the record document.
	WriteRecord(ctx context.Context, tenantID, recordID string, data []byte) error

	// DeleteRecord removes the record. Deleting a missing record returns ErrNotFound.
	DeleteRecord(ctx context.Context, tenantID, recordID string) error

	// Close releases any resources held by the store.
	Close() error
}

// ObjectPath returns the slash-separated object path for a record, relative to
// a store root. Both ids are path-escaped, so they may contain '/', and a
// tenant id of "." or ".." still gets its own directory under tenants/.
// ext is the codec extension without dot and may be empty.
func ObjectPath(tenantID, recordID, ext string) string {
	name := url.PathEscape(recordID) + ".json"
	if ext != "" {
		name += "." + ext
	}
	return "tenants/" + escapeSegment(tenantID) + "/" + name
}

// escapeSegment path-escapes id for use as a single directory name.
func escapeSegment(id string) string {
	s := url.PathEscape(id)
	if s == "." || s == ".." {
		return strings.ReplaceAll(s, ".", "%2E")
	}
	return s
}
