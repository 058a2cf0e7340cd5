package reminder

import (
	"slices"

	"github.com/dosewise/pillcache/internal/compactmap"
)

// Set is one tenant's reminders keyed by id, in the order they were added.
type Set struct {
	byID compactmap.Map[string, Reminder]
}

// NewSet returns a set holding rs. Later duplicates replace earlier ones.
func NewSet(rs ...Reminder) *Set {
	s := &Set{}
	for _, r := range rs {
		s.Add(r)
	}
	return s
}

// Add inserts or replaces a reminder.
func (s *Set) Add(r Reminder) {
	s.byID.Upsert(r.ID, r)
}

// Get returns the reminder with the given id.
func (s *Set) Get(id string) (Reminder, bool) {
	return s.byID.Lookup(id)
}

// Remove deletes a reminder and reports whether it existed.
func (s *Set) Remove(id string) bool {
	_, ok := s.byID.Remove(id)
	return ok
}

// Len returns the number of reminders.
func (s *Set) Len() int {
	return s.byID.Len()
}

// All returns every reminder in insertion order.
func (s *Set) All() []Reminder {
	return s.byID.Values()
}

// Active returns a set with only the active reminders.
func (s *Set) Active() *Set {
	return &Set{byID: *s.byID.Filter(func(_ string, r Reminder) bool { return r.Active })}
}

// DueAt returns the active reminders scheduled at t.
func (s *Set) DueAt(t TimeOfDay) []Reminder {
	var due []Reminder
	s.byID.ForEach(func(_ string, r Reminder) {
		if r.Active && slices.Contains(r.Times, t) {
			due = append(due, r)
		}
	})
	return due
}

// WithIDs returns the reminders whose id is in ids, in insertion order.
func (s *Set) WithIDs(ids ...string) []Reminder {
	return s.byID.ValuesMatching(func(id string) bool { return slices.Contains(ids, id) })
}
