// Package metrics exposes Prometheus counters for the main business events
// and the /metrics handler that serves them.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// BillsCreated counts bills recorded, labeled by how they were ingested.
	BillsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tabsplit_bills_created_total",
		Help: "Number of bills created, by source (items or markdown).",
	}, []string{"source"})

	// AssignmentsSettled counts assignment rows transitioned to settled.
	AssignmentsSettled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tabsplit_assignments_settled_total",
		Help: "Number of item assignments marked settled.",
	})

	// ParseFailures counts markdown tables rejected by the parser.
	ParseFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tabsplit_parse_failures_total",
		Help: "Number of markdown table parse attempts that failed.",
	})

	// HTTPRequests counts requests by method, route and status class.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tabsplit_http_requests_total",
		Help: "Number of HTTP requests handled.",
	}, []string{"method", "route", "status"})
)

// Handler returns the Prometheus scrape endpoint handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
