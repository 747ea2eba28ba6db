// Package research tracks which research projects the settlement has completed.
package research

import "sort"

// Tracker is the source of truth for completed research ids.
type Tracker struct {
	done map[string]bool
}

// NewTracker creates a tracker with the given research already completed.
func NewTracker(completed ...string) *Tracker {
	t := &Tracker{done: make(map[string]bool, len(completed))}
	for _, id := range completed {
		t.Complete(id)
	}
	return t
}

// Complete marks a research id as finished. Empty ids are ignored.
func (t *Tracker) Complete(id string) {
	if id == "" {
		return
	}
	t.done[id] = true
}

// Has reports whether id is completed. The empty id means "no research
// required" and is always satisfied.
func (t *Tracker) Has(id string) bool {
	if id == "" {
		return true
	}
	return t.done[id]
}

// Completed returns all completed ids in sorted order.
func (t *Tracker) Completed() []string {
	ids := make([]string, 0, len(t.done))
	for id := range t.done {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
