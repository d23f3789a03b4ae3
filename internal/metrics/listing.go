package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Listing pipeline Prometheus metrics.
var (
	ListingItemsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "listing_items_total",
			Help:      "Nodes evaluated by listings",
		},
		[]string{"result"}, // "evaluated" / "skipped" / "hidden"
	)

	DirectoryLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "directory_lookups_total",
			Help:      "Per-request person, group and site cache hits and misses",
		},
		[]string{"cache", "result"},
	)

	ThumbnailRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "thumbnail_requests_total",
			Help:      "Thumbnail generation requests",
		},
		[]string{"status"}, // "queued" / "pending" / "error"
	)

	ActionItemsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "action_items_total",
			Help:      "Items processed by copy, move and link actions",
		},
		[]string{"action", "status"},
	)
)

var registerListing sync.Once

// RegisterListingMetrics registers the listing and action metrics. Safe to
// call more than once.
func RegisterListingMetrics() {
	registerListing.Do(func() {
		prometheus.MustRegister(ListingItemsTotal)
		prometheus.MustRegister(DirectoryLookupsTotal)
		prometheus.MustRegister(ThumbnailRequestsTotal)
		prometheus.MustRegister(ActionItemsTotal)
	})
}
