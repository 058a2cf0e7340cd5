package reminder

import (
	"slices"

	"github.com/dosewise/pillcache/internal/compactmap"
)

// Adherence groups a tenant's dose events by reminder.
type Adherence struct {
	byReminder compactmap.Map[string, []Event]
}

// NewAdherence returns an index over events.
func NewAdherence(events ...Event) *Adherence {
	a := &Adherence{}
	for _, e := range events {
		a.Record(e)
	}
	return a
}

// Record adds an event. An event whose id is already recorded for the same
// reminder replaces the earlier one.
func (a *Adherence) Record(e Event) {
	events, _ := a.byReminder.Lookup(e.ReminderID)
	for i := range events {
		if events[i].ID == e.ID {
			events[i] = e
			return
		}
	}
	a.byReminder.Upsert(e.ReminderID, append(events, e))
}

// For returns a copy of the events recorded for a reminder.
func (a *Adherence) For(reminderID string) []Event {
	events, _ := a.byReminder.Lookup(reminderID)
	return slices.Clone(events)
}

// Forget drops all events for a reminder and returns how many there were.
func (a *Adherence) Forget(reminderID string) int {
	events, _ := a.byReminder.Remove(reminderID)
	return len(events)
}

// Rate returns the fraction of a reminder's events that were taken, or 0
// when it has none.
func (a *Adherence) Rate(reminderID string) float64 {
	events, _ := a.byReminder.Lookup(reminderID)
	return rate(events)
}

// Summary returns the taken rate for every reminder with events.
func (a *Adherence) Summary() map[string]float64 {
	out := make(map[string]float64, a.byReminder.Len())
	for id, events := range a.byReminder.Snapshot() {
		out[id] = rate(events)
	}
	return out
}

// Reminders returns the reminder ids with events, in first-seen order.
func (a *Adherence) Reminders() []string {
	return a.byReminder.Keys()
}

func rate(events []Event) float64 {
	if len(events) == 0 {
		return 0
	}
	taken := 0
	for _, e := range events {
		if e.Status == StatusTaken {
			taken++
		}
	}
	return float64(taken) / float64(len(events))
}
