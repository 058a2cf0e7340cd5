// Package record defines the tenant-scoped record cached in front of the
// document stores.
package record

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrInvalid is returned when a record is missing its tenant or id.
var ErrInvalid = errors.New("record: invalid record")

// Kind classifies what a record holds.
type Kind string

const (
	KindReminder   Kind = "reminder"
	KindAdherence  Kind = "adherence"
	KindMedication Kind = "medication"
	KindProfile    Kind = "profile"
)

// ParseKind validates a kind name.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindReminder, KindAdherence, KindMedication, KindProfile:
		return k, nil
	}
	return "", fmt.Errorf("unknown record kind %q", s)
}

// Record is a single document owned by a tenant.
type Record struct {
	TenantID  string          `json:"tenant_id"`
	ID        string          `json:"id"`
	Kind      Kind            `json:"kind"`
	UpdatedAt time.Time       `json:"updated_at"`
	Body      json.RawMessage `json:"body,omitempty"`
}

// RecordID returns the record's id within its tenant.
func (r Record) RecordID() string {
	return r.ID
}

// Validate checks that the record can be stored and cached.
func (r Record) Validate() error {
	if r.TenantID == "" {
		return fmt.Errorf("%w: empty tenant id", ErrInvalid)
	}
	if r.ID == "" {
		return fmt.Errorf("%w: empty record id", ErrInvalid)
	}
	return nil
}

// Clone returns a copy whose Body does not alias r's.
func (r Record) Clone() Record {
	if r.Body != nil {
		r.Body = bytes.Clone(r.Body)
	}
	return r
}

// Marshal encodes r as JSON.
func Marshal(r Record) ([]byte, error) {
	return json.Marshal(r)
}

// Unmarshal decodes a JSON record.
func Unmarshal(data []byte) (Record, error) {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return Record{}, fmt.Errorf("decoding record: %w", err)
	}
	return r, nil
}
