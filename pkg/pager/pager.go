// Package pager implements the filtered-pagination load cycle: merge a
// filter delta, build the URL, fetch the fragment payload, splice it into
// the document, and keep the navigation history in sync.
package pager

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jatinsureliya/dynamic-pagination-with-filters/pkg/filter"
	"github.com/jatinsureliya/dynamic-pagination-with-filters/pkg/history"
	"github.com/jatinsureliya/dynamic-pagination-with-filters/pkg/view"
)

// Prometheus metrics for pager load cycles.
var (
	pagerRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pager_requests_total",
		Help: "Total pager requests by endpoint and status",
	}, []string{"endpoint", "status"})

	pagerRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pager_request_duration_seconds",
		Help:    "Pager load-cycle duration in seconds by endpoint",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	pagerErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pager_errors_total",
		Help: "Total pager errors by class",
	}, []string{"class"})

	pagerLoadsSupersededTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pager_loads_superseded_total",
		Help: "Total loads discarded because a newer load started",
	})
)

// DefaultPaginationSelector locates the pagination region when no
// selector is configured.
const DefaultPaginationSelector = ".pagination"

// genericFailureNotice is the single user-facing message for all load
// failures. Error classes stay internal to logs and metrics.
const genericFailureNotice = "Could not load results. Please try again."

// Response is the fragment payload the endpoint returns.
type Response struct {
	// Rows is the HTML fragment replacing the rows region, verbatim.
	Rows string `json:"rows"`

	// Pagination is the HTML fragment for the pagination region. Empty
	// means no pagination, and an existing region is removed.
	Pagination string `json:"pagination"`

	// Data is an arbitrary auxiliary payload handed to the configured
	// result callback.
	Data json.RawMessage `json:"data"`
}

// Pager drives the request/response/update cycle for one endpoint.
type Pager struct {
	endpoint      string
	endpointLabel string
	doc           view.Document
	hist          history.History
	httpClient    *http.Client
	config        Config
	logger        zerolog.Logger

	mu      sync.Mutex
	filters filter.Values

	// generation increments per Load; a load whose generation is stale
	// after the fetch discards its results.
	generation atomic.Uint64
}

// Config holds the pager configuration.
type Config struct {
	// Endpoint is the base URL all requests go to (REQUIRED).
	Endpoint string

	// Document is the page-manipulation port (REQUIRED).
	Document view.Document

	// History receives one entry per successful load. Nil disables
	// history synchronization.
	History history.History

	// PaginationSelector locates the pagination region inside rendered
	// fragments (default: ".pagination").
	PaginationSelector string

	// ScrollOffset is the pixel adjustment applied when scrolling to the
	// container after a load.
	ScrollOffset int

	// Filters seeds the filter state before the first load.
	Filters filter.Values

	// ResultCallback, when set, receives the auxiliary data payload of
	// each applied response.
	ResultCallback func(data json.RawMessage)

	// Notifier, when set, receives the user-visible notice for each
	// surfaced failure.
	Notifier func(message string)

	// HTTPClient overrides the default transport (30s timeout).
	HTTPClient *http.Client

	// UserAgent, when set, is sent with every request.
	UserAgent string

	// Title is the document title recorded in history entries.
	Title string
}

// DefaultConfig returns a safe default configuration for an endpoint and
// document.
func DefaultConfig(endpoint string, doc view.Document) Config {
	return Config{
		Endpoint:           endpoint,
		Document:           doc,
		PaginationSelector: DefaultPaginationSelector,
	}
}

// New creates a new pager.
func New(cfg Config) (*Pager, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}

	if cfg.Document == nil {
		return nil, fmt.Errorf("document is required")
	}

	if cfg.PaginationSelector == "" {
		cfg.PaginationSelector = DefaultPaginationSelector
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: 30 * time.Second,
		}
	}

	logger := log.With().Str("component", "pager").Logger()

	return &Pager{
		endpoint:      cfg.Endpoint,
		endpointLabel: endpointLabel(cfg.Endpoint),
		doc:           cfg.Document,
		hist:          cfg.History,
		httpClient:    httpClient,
		config:        cfg,
		logger:        logger,
		filters:       filter.New(cfg.Filters),
	}, nil
}

// Load merges delta into the filter state and runs the full cycle:
// loading indicator on, GET, apply response, push history, scroll,
// loading indicator off (always, including on failure).
//
// Failures are classified, logged, reported once through the Notifier,
// and returned. A load that is overtaken by a newer one before applying
// its results returns ErrSuperseded and leaves document and history
// untouched; the in-flight HTTP request itself is not cancelled.
func (p *Pager) Load(ctx context.Context, delta filter.Values) error {
	gen := p.generation.Add(1)

	p.mu.Lock()
	p.filters.Merge(delta)
	loadURL := p.filters.BuildURL(p.endpoint)
	page := p.filters.Page()
	p.mu.Unlock()

	startTime := time.Now()
	defer func() {
		pagerRequestDuration.WithLabelValues(p.endpointLabel).Observe(time.Since(startTime).Seconds())
	}()

	p.logger.Debug().
		Str("url", loadURL).
		Int("page", page).
		Msg("Starting load cycle")

	p.doc.SetLoading(true)
	defer p.doc.SetLoading(false)

	resp, err := p.fetch(ctx, loadURL)
	if err != nil {
		p.fail(loadURL, err)
		return err
	}

	if gen != p.generation.Load() {
		pagerLoadsSupersededTotal.Inc()
		p.logger.Debug().
			Str("url", loadURL).
			Msg("Discarding superseded load")
		return ErrSuperseded
	}

	p.apply(resp)

	if p.hist != nil {
		entry := history.Entry{
			Page:     page,
			Title:    p.config.Title,
			URL:      loadURL,
			PushedAt: time.Now(),
		}
		if err := p.hist.Push(ctx, entry); err != nil {
			p.logger.Warn().Err(err).Msg("Failed to push history entry")
		}
	}

	p.doc.ScrollTo(p.config.ScrollOffset)

	p.logger.Debug().
		Str("url", loadURL).
		Int("page", page).
		Msg("Load cycle complete")

	return nil
}

// FollowLink intercepts a click on a pagination link: it extracts the
// page parameter from the link's own href and triggers a new load with
// only that page as the delta, leaving all other filters untouched.
// Links without a page parameter address the first page.
func (p *Pager) FollowLink(ctx context.Context, href string) error {
	page, ok := view.PageFromHref(href)
	if !ok {
		page = filter.DefaultPage
	}
	return p.Load(ctx, filter.Values{filter.PageKey: page})
}

// Filters returns a snapshot of the current filter state.
func (p *Pager) Filters() filter.Values {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.filters.Clone()
}

// URL returns the address the current filter state encodes to.
func (p *Pager) URL() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.filters.BuildURL(p.endpoint)
}

// PaginationLinks returns the anchors inside the document's current
// pagination region, resolved against the configured selector.
func (p *Pager) PaginationLinks() ([]view.Link, error) {
	fragment, ok := p.doc.Pagination()
	if !ok {
		return nil, nil
	}
	return view.Links(fragment, p.config.PaginationSelector)
}

// fetch issues the GET request and decodes the fragment payload.
func (p *Pager) fetch(ctx context.Context, loadURL string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, loadURL, nil)
	if err != nil {
		return nil, &RequestError{Class: ErrorClassNetwork, Message: "create request", Err: err}
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	if p.config.UserAgent != "" {
		req.Header.Set("User-Agent", p.config.UserAgent)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		pagerRequestsTotal.WithLabelValues(p.endpointLabel, "network_error").Inc()
		return nil, &RequestError{Class: ErrorClassNetwork, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	pagerRequestsTotal.WithLabelValues(p.endpointLabel, fmt.Sprintf("%d", resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Error bodies are never parsed; drain so the connection can be
		// reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &RequestError{
			StatusCode: resp.StatusCode,
			Class:      classifyStatus(resp.StatusCode),
			Message:    resp.Status,
		}
	}

	var payload Response
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, &ParseError{Err: err}
	}

	return &payload, nil
}

// apply splices the response into the document and feeds the auxiliary
// payload to the result callback. Callback failures are not caught here;
// they propagate per the host's semantics.
func (p *Pager) apply(resp *Response) {
	p.doc.ReplaceRows(resp.Rows)

	if resp.Pagination != "" {
		p.doc.SetPagination(resp.Pagination)
	} else if _, ok := p.doc.Pagination(); ok {
		p.doc.RemovePagination()
	}

	if p.config.ResultCallback != nil && hasData(resp.Data) {
		p.config.ResultCallback(resp.Data)
	}
}

// fail records a load-cycle failure: classified for logs and metrics,
// surfaced to the user as one generic notice.
func (p *Pager) fail(loadURL string, err error) {
	class := classOf(err)
	pagerErrorsTotal.WithLabelValues(string(class)).Inc()

	p.logger.Error().
		Err(err).
		Str("url", loadURL).
		Str("error_class", string(class)).
		Msg("Load cycle failed")

	if p.config.Notifier != nil {
		p.config.Notifier(genericFailureNotice)
	}
}

// hasData reports whether the auxiliary payload is present.
func hasData(data json.RawMessage) bool {
	return len(data) > 0 && string(data) != "null"
}

// endpointLabel normalizes the endpoint to its path for metric labels.
func endpointLabel(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil || u.Path == "" {
		return endpoint
	}
	return u.Path
}
