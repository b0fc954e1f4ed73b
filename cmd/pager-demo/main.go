// Command pager-demo serves a filterable, paginated product catalog as
// fragment JSON, exercising the full wire contract the pager consumes:
// GET with bracket-notation filters in, {rows, pagination, data} out.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/jatinsureliya/dynamic-pagination-with-filters/pkg/logging"
)

// Product is one demo catalog entry.
type Product struct {
	Name     string
	Category string
	Price    float64
}

// catalog is the demo dataset served by /demo/products.
var catalog = []Product{
	{"Walnut Desk", "furniture", 329.00},
	{"Oak Bookshelf", "furniture", 189.50},
	{"Ergonomic Chair", "furniture", 449.99},
	{"Standing Desk Mat", "furniture", 59.00},
	{"Mechanical Keyboard", "electronics", 129.99},
	{"4K Monitor", "electronics", 379.00},
	{"USB Microphone", "electronics", 89.90},
	{"Noise-Cancelling Headphones", "electronics", 249.00},
	{"Webcam Stand", "electronics", 24.95},
	{"Desk Lamp", "lighting", 45.50},
	{"Monitor Light Bar", "lighting", 99.00},
	{"Smart Bulb", "lighting", 19.99},
	{"Cable Organizer", "accessories", 12.50},
	{"Laptop Stand", "accessories", 39.00},
	{"Mouse Pad XL", "accessories", 18.75},
	{"Monitor Arm", "accessories", 115.00},
	{"Footrest", "accessories", 34.99},
}

// fragmentPayload is the response body of the demo endpoint.
type fragmentPayload struct {
	Rows       string          `json:"rows"`
	Pagination string          `json:"pagination,omitempty"`
	Data       json.RawMessage `json:"data,omitempty"`
}

func main() {
	port := getEnv("PORT", "8080")
	logLevel := getEnv("LOG_LEVEL", "info")
	pageSize, err := strconv.Atoi(getEnv("PAGE_SIZE", "5"))
	if err != nil || pageSize < 1 {
		pageSize = 5
	}

	logging.Setup(logging.Config{
		Level:  logging.LogLevel(logLevel),
		Pretty: getEnv("LOG_PRETTY", "") != "",
		Output: os.Stderr,
	})
	logger := logging.NewLogger("pager-demo")

	// Redis is optional; when configured, session histories can use it and
	// /ready verifies the connection.
	var redisClient *redis.Client
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: redisURL})
		defer redisClient.Close()
	}

	http.HandleFunc("/health", healthHandler)
	http.HandleFunc("/ready", readyHandler(redisClient))
	http.HandleFunc("/demo/products", productsHandler(pageSize))
	http.Handle("/metrics", promhttp.Handler())

	addr := ":" + port
	logger.Info().
		Str("addr", addr).
		Int("page_size", pageSize).
		Int("products", len(catalog)).
		Msg("Starting pager demo server")

	if err := http.ListenAndServe(addr, nil); err != nil {
		logger.Fatal().Err(err).Msg("Server failed")
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "OK")
}

// readyHandler reports readiness. With a Redis client configured, ready
// means the connection answers a ping.
func readyHandler(redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if redisClient != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := redisClient.Ping(ctx).Err(); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				fmt.Fprintf(w, "Redis unavailable: %v", err)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "Ready")
	}
}

// productsHandler filters, paginates, and renders the catalog. Filter
// parameters follow the pager's bracket notation: search, category,
// price[min], price[max], page.
func productsHandler(pageSize int) http.HandlerFunc {
	logger := logging.NewLogger("pager-demo")

	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()

		filtered := filterCatalog(catalog, query.Get("search"), query.Get("category"),
			query.Get("price[min]"), query.Get("price[max]"))

		page, _ := strconv.Atoi(query.Get("page"))
		if page < 1 {
			page = 1
		}

		pages := (len(filtered) + pageSize - 1) / pageSize
		if pages < 1 {
			pages = 1
		}
		if page > pages {
			page = pages
		}

		start := (page - 1) * pageSize
		end := start + pageSize
		if end > len(filtered) {
			end = len(filtered)
		}

		payload := fragmentPayload{
			Rows: renderRows(filtered[start:end]),
		}
		if pages > 1 {
			payload.Pagination = renderPagination(page, pages)
		}

		data, _ := json.Marshal(map[string]any{
			"total": len(filtered),
			"page":  page,
			"pages": pages,
		})
		payload.Data = data

		logger.Debug().
			Str("query", r.URL.RawQuery).
			Int("page", page).
			Int("matches", len(filtered)).
			Msg("Serving catalog fragment")

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			logger.Error().Err(err).Msg("Failed to encode fragment payload")
		}
	}
}

// filterCatalog applies the demo filters to the catalog.
func filterCatalog(products []Product, search, category, minStr, maxStr string) []Product {
	min, hasMin := parsePrice(minStr)
	max, hasMax := parsePrice(maxStr)
	search = strings.ToLower(search)

	var out []Product
	for _, p := range products {
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) {
			continue
		}
		if category != "" && p.Category != category {
			continue
		}
		if hasMin && p.Price < min {
			continue
		}
		if hasMax && p.Price > max {
			continue
		}
		out = append(out, p)
	}
	return out
}

func parsePrice(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// renderRows renders catalog entries as table rows.
func renderRows(products []Product) string {
	if len(products) == 0 {
		return `<tr class="empty"><td colspan="3">No products match the current filters.</td></tr>`
	}

	var sb strings.Builder
	for _, p := range products {
		fmt.Fprintf(&sb, `<tr><td>%s</td><td>%s</td><td>%.2f</td></tr>`,
			p.Name, p.Category, p.Price)
	}
	return sb.String()
}

// renderPagination renders the pagination region with page links the
// pager can intercept.
func renderPagination(page, pages int) string {
	var sb strings.Builder
	sb.WriteString(`<nav class="pagination">`)
	if page > 1 {
		fmt.Fprintf(&sb, `<a href="?page=%d" rel="prev">&laquo;</a>`, page-1)
	}
	for n := 1; n <= pages; n++ {
		if n == page {
			fmt.Fprintf(&sb, `<span class="current">%d</span>`, n)
			continue
		}
		fmt.Fprintf(&sb, `<a href="?page=%d">%d</a>`, n, n)
	}
	if page < pages {
		fmt.Fprintf(&sb, `<a href="?page=%d" rel="next">&raquo;</a>`, page+1)
	}
	sb.WriteString(`</nav>`)
	return sb.String()
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
