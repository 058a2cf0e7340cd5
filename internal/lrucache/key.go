package lrucache

import (
	"errors"
	"strconv"
	"strings"
)

// ErrMalformedKey is returned by ParseKey for strings not produced by NewKey.
var ErrMalformedKey = errors.New("lrucache: malformed key")

// Key is the composite identity of a cached record.
//
// The tenant id is length-prefixed, so ids may contain any byte (including
// the ':' separator) without two distinct pairs ever producing the same key.
type Key string

// NewKey builds the composite key for a tenant and record id.
func NewKey(tenantID, recordID string) Key {
	var b strings.Builder
	b.Grow(len(tenantID) + len(recordID) + 4)
	b.WriteString(strconv.Itoa(len(tenantID)))
	b.WriteByte(':')
	b.WriteString(tenantID)
	b.WriteString(recordID)
	return Key(b.String())
}

// ParseKey splits a key back into its tenant and record ids.
func ParseKey(k Key) (tenantID, recordID string, err error) {
	s := string(k)
	i := strings.IndexByte(s, ':')
	if i <= 0 {
		return "", "", ErrMalformedKey
	}
	n, err := strconv.Atoi(s[:i])
	if err != nil || n < 0 || i+1+n > len(s) {
		return "", "", ErrMalformedKey
	}
	rest := s[i+1:]
	return rest[:n], rest[n:], nil
}
