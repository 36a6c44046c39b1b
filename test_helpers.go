package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"
)

// --- Mocks ---

// mockGeocodingService is a mock for the GeocodingService interface.
type mockGeocodingService struct {
	GeocodeFunc        func(ctx context.Context, address string) (GeocodePoint, error)
	ReverseGeocodeFunc func(ctx context.Context, lat, lng float64) (RegionAddress, error)
}

func (m *mockGeocodingService) Geocode(ctx context.Context, address string) (GeocodePoint, error) {
	if m.GeocodeFunc != nil {
		return m.GeocodeFunc(ctx, address)
	}
	return GeocodePoint{}, errors.New("GeocodeFunc not implemented in mock")
}

func (m *mockGeocodingService) ReverseGeocode(ctx context.Context, lat, lng float64) (RegionAddress, error) {
	if m.ReverseGeocodeFunc != nil {
		return m.ReverseGeocodeFunc(ctx, lat, lng)
	}
	return RegionAddress{}, errors.New("ReverseGeocodeFunc not implemented in mock")
}

// mockFacilitySource is a mock for the facilitySource interface.
type mockFacilitySource struct {
	name      string
	FetchFunc func(ctx context.Context, query FacilityQuery) ([]FacilityRecord, error)
}

func (m *mockFacilitySource) Name() string {
	return m.name
}

func (m *mockFacilitySource) Fetch(ctx context.Context, query FacilityQuery) ([]FacilityRecord, error) {
	if m.FetchFunc != nil {
		return m.FetchFunc(ctx, query)
	}
	return nil, errors.New("FetchFunc not implemented in mock")
}

// mockSymptomChecker is a mock for the SymptomChecker interface.
type mockSymptomChecker struct {
	ClassifyFunc func(ctx context.Context, symptoms string) (DepartmentRecommendation, error)
}

func (m *mockSymptomChecker) Classify(ctx context.Context, symptoms string) (DepartmentRecommendation, error) {
	if m.ClassifyFunc != nil {
		return m.ClassifyFunc(ctx, symptoms)
	}
	return DepartmentRecommendation{}, errors.New("ClassifyFunc not implemented in mock")
}

// --- Helpers ---

// newTestConfig builds an apiConfig with a discarding logger and the
// embedded region tables loaded. Upstream adapters are left nil; tests that
// exercise them attach adapters backed by httptest servers.
func newTestConfig(t *testing.T) *apiConfig {
	t.Helper()
	regions, err := LoadRegionTable()
	if err != nil {
		t.Fatalf("could not load region tables: %v", err)
	}
	return &apiConfig{
		logger:            slog.New(slog.NewTextHandler(io.Discard, nil)),
		httpClient:        &http.Client{Timeout: 5 * time.Second},
		regions:           regions,
		maxResults:        30,
		enrichConcurrency: 5,
		defaultRadiusKm:   5,
	}
}
