package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Domain counters, served from /metrics next to the HTTP metrics.
var (
	ShoppingListsGenerated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "family_meals",
		Name:      "shopping_lists_generated_total",
		Help:      "Shopping list generation requests by outcome (created, existing, race_lost).",
	}, []string{"outcome"})

	ShoppingListItems = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "family_meals",
		Name:      "shopping_list_items",
		Help:      "Number of aggregated items per generated shopping list.",
		Buckets:   []float64{0, 1, 5, 10, 20, 40, 80},
	})

	ItemToggles = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "family_meals",
		Name:      "shopping_list_item_toggles_total",
		Help:      "Shopping list item check/uncheck operations.",
	})

	AccessDenied = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "family_meals",
		Name:      "access_denied_total",
		Help:      "Requests rejected because the caller lacked family membership or admin rights.",
	})

	LoginFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "family_meals",
		Name:      "login_failures_total",
		Help:      "Failed login attempts.",
	})
)
