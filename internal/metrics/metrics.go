// Package metrics exposes Prometheus collectors for the scraper.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	pagesFetchedTotal *prometheus.CounterVec
	pageErrorsTotal   *prometheus.CounterVec
	sessionsTotal     *prometheus.CounterVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		pagesFetchedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vmgd_pages_fetched_total",
				Help: "Total number of pages fetched and scraped, labeled by session.",
			},
			[]string{"session"},
		)

		pageErrorsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vmgd_page_errors_total",
				Help: "Total number of page failures, labeled by error kind.",
			},
			[]string{"kind"},
		)

		sessionsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vmgd_sessions_total",
				Help: "Total number of session runs, labeled by session and outcome.",
			},
			[]string{"session", "status"},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObservePage increments the fetched-page counter for a session.
func ObservePage(session string) {
	if pagesFetchedTotal != nil {
		pagesFetchedTotal.WithLabelValues(session).Inc()
	}
}

// ObservePageError increments the error counter for a classified kind.
func ObservePageError(kind string) {
	if pageErrorsTotal != nil {
		pageErrorsTotal.WithLabelValues(kind).Inc()
	}
}

// ObserveSession increments the session counter for the given outcome.
func ObserveSession(session string, status string) {
	if sessionsTotal != nil {
		sessionsTotal.WithLabelValues(session, status).Inc()
	}
}
