package main

import (
	"context"
	"errors"
	"log/slog"
)

// This file implements the fallback chain over upstream facility sources.
// Adapters are tried in a fixed priority order (most authoritative first);
// a failure or an empty result falls through to the next adapter, and only
// exhaustion of the whole chain surfaces as an error. The exhaustion error
// names every adapter tried and why it failed, which is what makes a
// production incident in this chain debuggable from logs alone.

// facilitySource is the common interface over the upstream adapters.
type facilitySource interface {
	Name() string
	Fetch(ctx context.Context, query FacilityQuery) ([]FacilityRecord, error)
}

// runFallbackChain tries each source in order and returns the first
// non-empty normalized result along with the name of the source that
// produced it. Misconfiguration-grade errors (ErrInvalidInput,
// ErrUnsupportedRegion) from the FIRST applicable source still fall through,
// since a later source may serve the query shape, but they are kept in the
// attempt list for diagnostics.
func runFallbackChain(ctx context.Context, logger *slog.Logger, query FacilityQuery, sources ...facilitySource) ([]FacilityRecord, string, error) {
	attempts := make([]adapterAttempt, 0, len(sources))

	for _, source := range sources {
		records, err := source.Fetch(ctx, query)
		outcome := "success"
		switch {
		case err == nil && len(records) > 0:
			upstreamRequestsTotal.WithLabelValues(source.Name(), outcome).Inc()
			logger.Debug("fallback chain satisfied", "adapter", source.Name(), "records", len(records))
			return records, source.Name(), nil
		case err == nil:
			err = ErrEmptyResult
			outcome = "empty"
		case errors.Is(err, ErrEmptyResult):
			outcome = "empty"
		default:
			outcome = "error"
		}
		upstreamRequestsTotal.WithLabelValues(source.Name(), outcome).Inc()
		logger.Warn("adapter failed, falling through", "adapter", source.Name(), "error", err)
		attempts = append(attempts, adapterAttempt{Adapter: source.Name(), Err: err})

		if ctx.Err() != nil {
			attempts = append(attempts, adapterAttempt{Adapter: "context", Err: ctx.Err()})
			break
		}
	}

	return nil, "", &NoDataAvailableError{Attempts: attempts}
}
