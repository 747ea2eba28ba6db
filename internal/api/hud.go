package api

import (
	"sync"

	"github.com/talgya/hive-economy/internal/engine"
)

const (
	recentChanges = 200
	subBuffer     = 64
)

// Event is one message on the SSE stream.
type Event struct {
	Type   string         `json:"type"` // "change" or "cycle"
	Change *engine.Change `json:"change,omitempty"`
	Report *engine.Report `json:"report,omitempty"`
}

// HUD is an engine.Observer that keeps recent building changes and fans
// every notification out to stream subscribers. Slow subscribers drop
// events rather than stall the engine.
type HUD struct {
	mu     sync.Mutex
	subs   map[int]chan Event
	nextID int
	recent []engine.Change
}

// NewHUD creates an empty HUD.
func NewHUD() *HUD {
	return &HUD{subs: make(map[int]chan Event)}
}

// CycleCompleted broadcasts a cycle report.
func (h *HUD) CycleCompleted(r engine.Report) {
	h.broadcast(Event{Type: "cycle", Report: &r})
}

// BuildingChanged records and broadcasts a building change.
func (h *HUD) BuildingChanged(c engine.Change) {
	h.mu.Lock()
	h.recent = append(h.recent, c)
	if len(h.recent) > recentChanges {
		h.recent = h.recent[len(h.recent)-recentChanges:]
	}
	h.mu.Unlock()
	h.broadcast(Event{Type: "change", Change: &c})
}

func (h *HUD) broadcast(e Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

// Subscribe registers a stream subscriber.
func (h *HUD) Subscribe() (int, <-chan Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	ch := make(chan Event, subBuffer)
	h.subs[h.nextID] = ch
	return h.nextID, ch
}

// Unsubscribe removes and closes a subscriber.
func (h *HUD) Unsubscribe(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.subs[id]; ok {
		delete(h.subs, id)
		close(ch)
	}
}

// Subscribers returns the number of active subscribers.
func (h *HUD) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Recent returns up to limit building changes, newest first.
func (h *HUD) Recent(limit int) []engine.Change {
	h.mu.Lock()
	defer h.mu.Unlock()
	if limit <= 0 || limit > len(h.recent) {
		limit = len(h.recent)
	}
	out := make([]engine.Change, 0, limit)
	for i := len(h.recent) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, h.recent[i])
	}
	return out
}
