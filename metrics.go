package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// This file defines the Prometheus metrics that are exposed by the application.

// httpRequestsTotal is a Prometheus counter vector that tracks the total number of HTTP requests.
// It is partitioned by the request's URL path, HTTP method, and the resulting status code.
var httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "mediseek_http_requests_total",
	Help: "Total number of HTTP requests by path, method and code.",
}, []string{"path", "method", "code"})

// upstreamRequestsTotal counts fallback-chain attempts per adapter and
// outcome (success, empty, error). A rising "error" series on the first
// adapter with "success" on the second is the signature of a degraded
// upstream that is still being papered over.
var upstreamRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "mediseek_upstream_requests_total",
	Help: "Total number of upstream adapter attempts by adapter and outcome.",
}, []string{"adapter", "outcome"})
