package view

import "sync"

// Document is the page-manipulation port the pager drives. Implementations
// own two regions: the rows region receiving result HTML and the loading
// class, and a pagination region that is replaced, inserted, or removed
// as responses arrive. Content is spliced verbatim - it is server-trusted
// and not sanitized here.
type Document interface {
	// ReplaceRows replaces the rows region's content wholesale.
	ReplaceRows(html string)

	// Rows returns the current rows region content.
	Rows() string

	// SetPagination replaces the existing pagination region with the
	// fragment, or inserts it immediately after the rows region when no
	// region exists yet.
	SetPagination(html string)

	// Pagination returns the current pagination fragment and whether a
	// pagination region exists.
	Pagination() (string, bool)

	// RemovePagination removes the pagination region if present.
	RemovePagination()

	// SetLoading toggles the loading indicator.
	SetLoading(active bool)

	// Loading reports whether the loading indicator is active.
	Loading() bool

	// ScrollTo scrolls the viewport to the managed container, adjusted
	// by offset pixels.
	ScrollTo(offset int)
}

// MemoryDocument is a thread-safe in-memory Document. It records every
// mutation so headless hosts and tests can observe what a browser-backed
// implementation would have rendered.
type MemoryDocument struct {
	mu            sync.RWMutex
	rows          string
	pagination    string
	hasPagination bool
	loading       bool
	scrollOffset  int
	scrolled      bool
}

// NewMemoryDocument creates an empty in-memory document.
func NewMemoryDocument() *MemoryDocument {
	return &MemoryDocument{}
}

// ReplaceRows replaces the rows region's content.
func (d *MemoryDocument) ReplaceRows(html string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.rows = html
	RegionUpdates.WithLabelValues("rows").Inc()
}

// Rows returns the current rows region content.
func (d *MemoryDocument) Rows() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.rows
}

// SetPagination replaces or inserts the pagination region.
func (d *MemoryDocument) SetPagination(html string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.hasPagination {
		RegionUpdates.WithLabelValues("pagination_replace").Inc()
	} else {
		RegionUpdates.WithLabelValues("pagination_insert").Inc()
	}
	d.pagination = html
	d.hasPagination = true
}

// Pagination returns the pagination fragment and whether a region exists.
func (d *MemoryDocument) Pagination() (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.pagination, d.hasPagination
}

// RemovePagination removes the pagination region.
func (d *MemoryDocument) RemovePagination() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.hasPagination {
		return
	}
	d.pagination = ""
	d.hasPagination = false
	RegionUpdates.WithLabelValues("pagination_remove").Inc()
}

// SetLoading toggles the loading indicator.
func (d *MemoryDocument) SetLoading(active bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.loading = active
}

// Loading reports whether the loading indicator is active.
func (d *MemoryDocument) Loading() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.loading
}

// ScrollTo records a scroll to the container adjusted by offset pixels.
func (d *MemoryDocument) ScrollTo(offset int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.scrollOffset = offset
	d.scrolled = true
}

// ScrollOffset returns the offset of the last scroll and whether any
// scroll happened yet.
func (d *MemoryDocument) ScrollOffset() (int, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.scrollOffset, d.scrolled
}
