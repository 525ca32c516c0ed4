// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package metrics holds the prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry collects everything this service exports.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

var (
	HTTPRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	CheckInsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkins_total",
			Help: "Successful meeting check-ins by participant type",
		},
		[]string{"type"},
	)

	TableTopicsTogglesTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "table_topics_toggles_total",
			Help: "Table-topics speaker toggles by outcome",
		},
		[]string{"action"},
	)

	VotingTransitionsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "voting_transitions_total",
			Help: "Voting session open/close transitions",
		},
		[]string{"action"},
	)

	BallotsTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "ballots_total",
			Help: "Accepted award ballots",
		},
	)
)

// Handler serves the registry in the prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
