// Package view models the page the pager mutates as an injected port.
//
// A browser-backed host would implement Document on top of real DOM
// nodes; MemoryDocument is the reference implementation used by tests,
// examples, and headless hosts. The package also extracts pagination
// anchors from server-rendered HTML fragments so link clicks can be
// turned back into load calls instead of navigations.
//
// Example usage:
//
//	doc := view.NewMemoryDocument()
//	doc.ReplaceRows("<tr><td>Widget</td></tr>")
//	doc.SetPagination(`<nav class="pagination"><a href="?page=2">2</a></nav>`)
//
//	links, err := view.Links(fragment, ".pagination")
//	for _, link := range links {
//		// link.Page carries the target page from the anchor's href
//	}
//
// The document operations export Prometheus metrics:
//
//   - pager_region_updates_total{op} - region mutations by operation
//     (rows, pagination_replace, pagination_insert, pagination_remove)
package view
