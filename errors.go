package main

import (
	"errors"
	"fmt"
	"strings"
)

// This file defines the error taxonomy shared by the upstream adapters and
// the aggregation layer. Adapter failures are classified into sentinel errors
// so the fallback chain can decide whether to fall through, and so handlers
// can map exhaustion to a useful HTTP response instead of a generic 500.

var (
	// ErrUpstreamUnavailable marks network failures and 5xx responses.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	// ErrUpstreamRejected marks 4xx responses and unparseable bodies, which
	// usually mean a bad key or a parameter-shape mismatch.
	ErrUpstreamRejected = errors.New("upstream rejected request")
	// ErrEmptyResult marks a successful response with no usable records.
	ErrEmptyResult = errors.New("upstream returned no records")
	// ErrUnsupportedRegion is returned when no numeric board code is
	// registered for the requested administrative region.
	ErrUnsupportedRegion = errors.New("region has no registered board code")
	// ErrNotFound is returned by forward geocoding when the provider knows
	// nothing about the given address text.
	ErrNotFound = errors.New("no results found for the given query")
	// ErrInvalidInput marks missing or empty required query fields.
	ErrInvalidInput = errors.New("invalid input")
)

// adapterAttempt records one failed adapter in a fallback chain, for the
// diagnostic detail surfaced when every source has been exhausted.
type adapterAttempt struct {
	Adapter string
	Err     error
}

// NoDataAvailableError is returned when the full fallback chain has been
// exhausted. It names each adapter that was tried and why it failed, since
// "could not reach data providers" needs to be distinguishable from "no
// results in this area" for users in a health-urgency context.
type NoDataAvailableError struct {
	Attempts []adapterAttempt
}

func (e *NoDataAvailableError) Error() string {
	if len(e.Attempts) == 0 {
		return "no data available: no adapters configured"
	}
	parts := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		parts[i] = fmt.Sprintf("%s: %v", a.Adapter, a.Err)
	}
	return "no data available: " + strings.Join(parts, "; ")
}

// Unwrap lets errors.Is see through to individual attempt causes, e.g. to
// detect that every adapter failed with ErrUpstreamRejected.
func (e *NoDataAvailableError) Unwrap() []error {
	errs := make([]error, len(e.Attempts))
	for i, a := range e.Attempts {
		errs[i] = a.Err
	}
	return errs
}

// truncateBody shortens an upstream response body for inclusion in error
// diagnostics. Bodies can be multi-kilobyte HTML error pages; the first few
// hundred bytes are enough to identify the failure mode.
func truncateBody(body string, max int) string {
	if len(body) <= max {
		return body
	}
	return body[:max] + "..."
}
