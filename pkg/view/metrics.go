package view

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RegionUpdates tracks document region mutations by operation
	RegionUpdates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pager_region_updates_total",
			Help: "Total number of document region mutations",
		},
		[]string{"op"}, // "rows", "pagination_replace", "pagination_insert", "pagination_remove"
	)
)
