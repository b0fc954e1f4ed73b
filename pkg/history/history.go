// Package history records the navigable address trail the pager produces.
//
// Every successful load pushes one entry, mirroring a browser's
// pushState: the trail only grows, and restoring state on back/forward
// navigation stays the host's responsibility.
package history

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrEmpty indicates the history contains no entries yet.
var ErrEmpty = errors.New("history is empty")

// Entry is one navigable history step.
type Entry struct {
	// Page is the page filter value at the time of the push.
	Page int `json:"page"`

	// Title is the document title recorded with the entry.
	Title string `json:"title"`

	// URL is the full address, including the encoded filter state.
	URL string `json:"url"`

	// PushedAt is when the entry was recorded.
	PushedAt time.Time `json:"pushed_at"`
}

// History is the navigation-trail port. Implementations must be safe for
// concurrent use.
type History interface {
	// Push appends a new entry.
	Push(ctx context.Context, entry Entry) error

	// Current returns the most recent entry. Returns ErrEmpty when no
	// entry was pushed yet.
	Current(ctx context.Context) (*Entry, error)

	// Len returns the number of recorded entries.
	Len(ctx context.Context) (int, error)

	// Entries returns all recorded entries in push order.
	Entries(ctx context.Context) ([]Entry, error)
}

// MemoryHistory is a mutex-guarded in-process History.
type MemoryHistory struct {
	mu      sync.RWMutex
	entries []Entry
}

// NewMemoryHistory creates an empty in-process history.
func NewMemoryHistory() *MemoryHistory {
	return &MemoryHistory{}
}

// Push appends a new entry.
func (h *MemoryHistory) Push(ctx context.Context, entry Entry) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, entry)
	return nil
}

// Current returns the most recent entry.
func (h *MemoryHistory) Current(ctx context.Context) (*Entry, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.entries) == 0 {
		return nil, ErrEmpty
	}
	entry := h.entries[len(h.entries)-1]
	return &entry, nil
}

// Len returns the number of recorded entries.
func (h *MemoryHistory) Len(ctx context.Context) (int, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.entries), nil
}

// Entries returns a copy of all recorded entries in push order.
func (h *MemoryHistory) Entries(ctx context.Context) ([]Entry, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]Entry, len(h.entries))
	copy(out, h.entries)
	return out, nil
}
