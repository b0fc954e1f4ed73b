package integration

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jatinsureliya/dynamic-pagination-with-filters/internal/testutil"
	"github.com/jatinsureliya/dynamic-pagination-with-filters/pkg/filter"
	"github.com/jatinsureliya/dynamic-pagination-with-filters/pkg/history"
	"github.com/jatinsureliya/dynamic-pagination-with-filters/pkg/pager"
	"github.com/jatinsureliya/dynamic-pagination-with-filters/pkg/view"
)

// setupRedis creates a Redis container for integration testing.
func setupRedis(t *testing.T) (*redis.Client, func()) {
	t.Helper()

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := container.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr: host + ":" + port.Port(),
	})

	cleanup := func() {
		redisClient.Close()
		container.Terminate(ctx)
	}

	return redisClient, cleanup
}

// TestFullLoadFlow drives the complete cycle against a mock fragment
// backend with a Redis-backed history: load, follow a pagination link,
// apply a filter, and verify the trail.
func TestFullLoadFlow(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	backend := testutil.NewMockBackend()
	defer backend.Close()

	doc := view.NewMemoryDocument()
	hist := history.NewRedisHistory(redisClient, "test:integration:history")

	cfg := pager.DefaultConfig(backend.URL()+"/products", doc)
	cfg.History = hist
	cfg.Title = "Integration Catalog"
	p, err := pager.New(cfg)
	if err != nil {
		t.Fatalf("Failed to create pager: %v", err)
	}

	ctx := context.Background()

	// Initial load: default filters, page 1.
	if err := p.Load(ctx, nil); err != nil {
		t.Fatalf("Initial load failed: %v", err)
	}

	if backend.GetAjaxCount() != 1 {
		t.Errorf("AJAX-identified requests = %d, want 1", backend.GetAjaxCount())
	}
	if backend.GetLastQuery() != "page=1" {
		t.Errorf("query = %q, want %q", backend.GetLastQuery(), "page=1")
	}
	if doc.Rows() == "" {
		t.Error("Rows region should be populated after the load")
	}

	// Follow a pagination link from the applied fragment.
	links, err := p.PaginationLinks()
	if err != nil {
		t.Fatalf("PaginationLinks failed: %v", err)
	}
	if len(links) == 0 {
		t.Fatal("Expected pagination links after the initial load")
	}

	if err := p.FollowLink(ctx, "?page=2"); err != nil {
		t.Fatalf("FollowLink failed: %v", err)
	}
	if backend.GetLastQuery() != "page=2" {
		t.Errorf("query = %q, want %q", backend.GetLastQuery(), "page=2")
	}

	// Apply a filter; the filter travels with subsequent requests.
	if err := p.Load(ctx, filter.Values{"category": "books", "page": 1}); err != nil {
		t.Fatalf("Filtered load failed: %v", err)
	}
	if backend.GetLastQuery() != "category=books&page=1" {
		t.Errorf("query = %q, want %q", backend.GetLastQuery(), "category=books&page=1")
	}

	// Every load became a history entry in Redis, in push order.
	entries, err := hist.Entries(ctx)
	if err != nil {
		t.Fatalf("Entries failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("history length = %d, want 3", len(entries))
	}
	wantPages := []int{1, 2, 1}
	for i, entry := range entries {
		if entry.Page != wantPages[i] {
			t.Errorf("entries[%d].Page = %d, want %d", i, entry.Page, wantPages[i])
		}
		if entry.Title != "Integration Catalog" {
			t.Errorf("entries[%d].Title = %q, want configured title", i, entry.Title)
		}
	}
}

// TestFailureLeavesHistoryUntouched verifies that a failed load pushes
// nothing and leaves the document as it was.
func TestFailureLeavesHistoryUntouched(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	backend := testutil.NewMockBackend()
	defer backend.Close()
	backend.SetResponse("/broken", testutil.NewServerErrorResponse())

	doc := view.NewMemoryDocument()
	hist := history.NewRedisHistory(redisClient, "test:integration:failures")

	cfg := pager.DefaultConfig(backend.URL()+"/broken", doc)
	cfg.History = hist
	p, err := pager.New(cfg)
	if err != nil {
		t.Fatalf("Failed to create pager: %v", err)
	}

	ctx := context.Background()

	var reqErr *pager.RequestError
	if err := p.Load(ctx, nil); !errors.As(err, &reqErr) {
		t.Fatalf("Load error = %v, want *pager.RequestError", err)
	}

	n, err := hist.Len(ctx)
	if err != nil {
		t.Fatalf("Len failed: %v", err)
	}
	if n != 0 {
		t.Errorf("history length = %d, want 0 after a failed load", n)
	}
	if doc.Rows() != "" {
		t.Errorf("Rows = %q, want untouched after a failed load", doc.Rows())
	}
	if doc.Loading() {
		t.Error("loading indicator should be cleared after a failed load")
	}
}

// TestResponseVariants walks the pager through the canned backend
// responses: a plain fragment, a data-carrying fragment, a 404, and a
// malformed body.
func TestResponseVariants(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	backend := testutil.NewMockBackend()
	defer backend.Close()

	doc := view.NewMemoryDocument()
	hist := history.NewRedisHistory(redisClient, "test:integration:variants")

	var callbackData json.RawMessage
	cfg := pager.DefaultConfig(backend.URL()+"/variants", doc)
	cfg.History = hist
	cfg.ResultCallback = func(data json.RawMessage) {
		callbackData = data
	}
	p, err := pager.New(cfg)
	if err != nil {
		t.Fatalf("Failed to create pager: %v", err)
	}

	ctx := context.Background()

	backend.SetResponse("/variants", testutil.NewFragmentResponse(
		"<tr><td>plain</td></tr>",
		`<nav class="pagination"><a href="?page=2">2</a></nav>`,
	))
	if err := p.Load(ctx, nil); err != nil {
		t.Fatalf("Plain fragment load failed: %v", err)
	}
	if doc.Rows() != "<tr><td>plain</td></tr>" {
		t.Errorf("Rows = %q after plain fragment", doc.Rows())
	}
	if callbackData != nil {
		t.Error("Callback should not fire without a data payload")
	}

	backend.SetResponse("/variants", testutil.NewFragmentResponseWithData(
		"<tr><td>with data</td></tr>", "", map[string]int{"total": 7},
	))
	if err := p.Load(ctx, nil); err != nil {
		t.Fatalf("Data fragment load failed: %v", err)
	}
	if string(callbackData) != `{"total":7}` {
		t.Errorf("Callback data = %q, want total payload", callbackData)
	}
	if _, ok := doc.Pagination(); ok {
		t.Error("Empty pagination fragment should remove the region")
	}

	backend.SetResponse("/variants", testutil.NewNotFoundResponse())
	var reqErr *pager.RequestError
	if err := p.Load(ctx, nil); !errors.As(err, &reqErr) {
		t.Fatalf("404 load error = %v, want *pager.RequestError", err)
	} else if reqErr.StatusCode != 404 {
		t.Errorf("StatusCode = %d, want 404", reqErr.StatusCode)
	}

	backend.SetResponse("/variants", testutil.NewMalformedResponse())
	var parseErr *pager.ParseError
	if err := p.Load(ctx, nil); !errors.As(err, &parseErr) {
		t.Fatalf("Malformed load error = %v, want *pager.ParseError", err)
	}

	// Only the two applied loads made it into the trail.
	n, err := hist.Len(ctx)
	if err != nil {
		t.Fatalf("Len failed: %v", err)
	}
	if n != 2 {
		t.Errorf("history length = %d, want 2", n)
	}
}

// TestDelayedResponseSuperseded verifies end to end that a slow response
// is discarded once a newer load has completed.
func TestDelayedResponseSuperseded(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	backend := testutil.NewMockBackend()
	defer backend.Close()
	backend.SetResponse("/slow", testutil.MockResponse{
		StatusCode: 200,
		Body:       `{"rows": "<p>stale</p>"}`,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Delay:      500 * time.Millisecond,
	})

	doc := view.NewMemoryDocument()
	hist := history.NewRedisHistory(redisClient, "test:integration:supersede")

	cfg := pager.DefaultConfig(backend.URL()+"/slow", doc)
	cfg.History = hist
	p, err := pager.New(cfg)
	if err != nil {
		t.Fatalf("Failed to create pager: %v", err)
	}

	ctx := context.Background()

	slowDone := make(chan error, 1)
	go func() {
		slowDone <- p.Load(ctx, nil)
	}()

	// Give the slow request time to leave, then overtake it. The second
	// load hits the same slow endpoint but finishes after the first one
	// because of the serialized delays, so wait for both.
	time.Sleep(100 * time.Millisecond)
	if err := p.Load(ctx, filter.Values{"page": 2}); err != nil {
		t.Fatalf("Overtaking load failed: %v", err)
	}

	if err := <-slowDone; !errors.Is(err, pager.ErrSuperseded) {
		t.Fatalf("Slow load error = %v, want ErrSuperseded", err)
	}

	n, err := hist.Len(ctx)
	if err != nil {
		t.Fatalf("Len failed: %v", err)
	}
	if n != 1 {
		t.Errorf("history length = %d, want 1 (stale load pushes nothing)", n)
	}
}
