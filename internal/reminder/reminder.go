// Package reminder models a tenant's reminders and adherence history and
// indexes them with compact per-tenant maps.
package reminder

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dosewise/pillcache/internal/record"
)

// TimeOfDay is minutes after local midnight.
type TimeOfDay int

// At builds a TimeOfDay from hours and minutes.
func At(hour, minute int) TimeOfDay {
	return TimeOfDay(hour*60 + minute)
}

// Of returns the TimeOfDay of t in t's location.
func Of(t time.Time) TimeOfDay {
	return At(t.Hour(), t.Minute())
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// Reminder is a recurring prompt to take a medication.
type Reminder struct {
	ID         string      `json:"id"`
	Medication string      `json:"medication"`
	Dose       string      `json:"dose,omitempty"`
	Times      []TimeOfDay `json:"times"`
	Active     bool        `json:"active"`
}

// Status is the outcome of a scheduled dose.
type Status string

const (
	StatusTaken   Status = "taken"
	StatusSkipped Status = "skipped"
	StatusMissed  Status = "missed"
)

// Event records what happened to one scheduled dose.
type Event struct {
	ID          string    `json:"id"`
	ReminderID  string    `json:"reminder_id"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Status      Status    `json:"status"`
}

// DecodeReminder extracts a Reminder from a reminder record.
func DecodeReminder(rec record.Record) (Reminder, error) {
	if rec.Kind != record.KindReminder {
		return Reminder{}, fmt.Errorf("record %s is %q, not a reminder", rec.ID, rec.Kind)
	}
	var r Reminder
	if err := json.Unmarshal(rec.Body, &r); err != nil {
		return Reminder{}, fmt.Errorf("decoding reminder %s: %w", rec.ID, err)
	}
	if r.ID == "" {
		r.ID = rec.ID
	}
	return r, nil
}

// DecodeEvent extracts an Event from an adherence record.
func DecodeEvent(rec record.Record) (Event, error) {
	if rec.Kind != record.KindAdherence {
		return Event{}, fmt.Errorf("record %s is %q, not an adherence event", rec.ID, rec.Kind)
	}
	var e Event
	if err := json.Unmarshal(rec.Body, &e); err != nil {
		return Event{}, fmt.Errorf("decoding event %s: %w", rec.ID, err)
	}
	if e.ID == "" {
		e.ID = rec.ID
	}
	return e, nil
}

// EncodeReminder wraps a reminder into a record for tenantID.
func EncodeReminder(tenantID string, r Reminder, updatedAt time.Time) (record.Record, error) {
	body, err := json.Marshal(r)
	if err != nil {
		return record.Record{}, fmt.Errorf("encoding reminder %s: %w", r.ID, err)
	}
	return record.Record{
		TenantID:  tenantID,
		ID:        r.ID,
		Kind:      record.KindReminder,
		UpdatedAt: updatedAt,
		Body:      body,
	}, nil
}

// EncodeEvent wraps an adherence event into a record for tenantID.
func EncodeEvent(tenantID string, e Event, updatedAt time.Time) (record.Record, error) {
	body, err := json.Marshal(e)
	if err != nil {
		return record.Record{}, fmt.Errorf("encoding event %s: %w", e.ID, err)
	}
	return record.Record{
		TenantID:  tenantID,
		ID:        e.ID,
		Kind:      record.KindAdherence,
		UpdatedAt: updatedAt,
		Body:      body,
	}, nil
}
