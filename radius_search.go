package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// This file implements the adapter for the government facility registry: a
// radius query around a coordinate pair returning general medical facilities
// (no bed data). The registry has changed endpoint paths and parameter
// casing between revisions, so instead of hardcoding one shape the adapter
// carries a prioritized, declarative list of request variants and walks it
// until one answers with usable records.

// registryVariant describes one historically observed request shape of the
// facility registry.
type registryVariant struct {
	endpoint    string
	latParam    string
	lonParam    string
	radiusParam string // empty when the variant does not accept a radius
}

// registryVariants is ordered most-recent-first; earlier entries are the
// shapes the service currently documents.
var registryVariants = []registryVariant{
	{endpoint: "getHsptlMdcncLcinfoInqire", latParam: "WGS84_LAT", lonParam: "WGS84_LON", radiusParam: "radius"},
	{endpoint: "getHsptlMdcncLcinfoInqire", latParam: "wgs84Lat", lonParam: "wgs84Lon", radiusParam: "radius"},
	{endpoint: "getHsptlMdcncListInfoInqire", latParam: "WGS84_LAT", lonParam: "WGS84_LON"},
}

// RadiusSearchAdapter queries the facility registry around a reference
// coordinate.
type RadiusSearchAdapter struct {
	serviceKey string
	baseURL    string
	variants   []registryVariant
	httpClient *http.Client
	logger     *slog.Logger
}

func NewRadiusSearchAdapter(serviceKey, baseURL string, httpClient *http.Client, logger *slog.Logger) *RadiusSearchAdapter {
	return &RadiusSearchAdapter{
		serviceKey: serviceKey,
		baseURL:    baseURL,
		variants:   registryVariants,
		httpClient: httpClient,
		logger:     logger,
	}
}

func (a *RadiusSearchAdapter) Name() string {
	return "radius-search"
}

// Fetch tries each request variant in priority order and returns the first
// variant's records that parse and are non-empty. Only when every variant
// has failed does the adapter give up, reporting the last failure.
func (a *RadiusSearchAdapter) Fetch(ctx context.Context, query FacilityQuery) ([]FacilityRecord, error) {
	if query.Lat == 0 && query.Lng == 0 {
		return nil, fmt.Errorf("%w: radius search requires coordinates", ErrInvalidInput)
	}

	var lastErr error
	for _, variant := range a.variants {
		items, err := a.fetchVariant(ctx, variant, query)
		if err != nil {
			a.logger.Debug("registry variant failed",
				"endpoint", variant.endpoint, "lat_param", variant.latParam, "error", err)
			lastErr = err
			continue
		}
		return a.normalize(items, query), nil
	}
	if lastErr == nil {
		lastErr = errors.New("no registry variants configured")
	}
	return nil, fmt.Errorf("all registry request variants failed: %w", lastErr)
}

func (a *RadiusSearchAdapter) fetchVariant(ctx context.Context, variant registryVariant, query FacilityQuery) ([]govFacilityItem, error) {
	params := url.Values{}
	params.Set("serviceKey", a.serviceKey)
	params.Set(variant.latParam, strconv.FormatFloat(query.Lat, 'f', -1, 64))
	params.Set(variant.lonParam, strconv.FormatFloat(query.Lng, 'f', -1, 64))
	if variant.radiusParam != "" {
		radiusKm := query.RadiusKm
		if radiusKm <= 0 {
			radiusKm = 5
		}
		params.Set(variant.radiusParam, strconv.Itoa(int(radiusKm*1000)))
	}
	rows := query.NumOfRows
	if rows <= 0 {
		rows = 100
	}
	params.Set("numOfRows", strconv.Itoa(rows))
	params.Set("pageNo", "1")
	params.Set("_type", "json")

	requestURL := a.baseURL + variant.endpoint + "?" + params.Encode()
	items, err := fetchGovItems(ctx, a.httpClient, requestURL)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: registry variant %s", ErrEmptyResult, variant.endpoint)
	}
	return items, nil
}

// normalize maps raw registry items onto facility records. Registry rows
// don't state a category, so it is inferred the same way the original
// integration did: pharmacies by name, dutyEryn flag or the "C" facility-id
// prefix; emergency rooms by flag or name.
func (a *RadiusSearchAdapter) normalize(items []govFacilityItem, query FacilityQuery) []FacilityRecord {
	records := make([]FacilityRecord, 0, len(items))
	for _, item := range items {
		record := FacilityRecord{
			ID:          item.HpID,
			Name:        item.DutyName,
			Address:     item.DutyAddr,
			Phone:       item.DutyTel1,
			Category:    inferRegistryCategory(item),
			Coordinates: Coordinates{Lat: item.WGS84Lat.Float(), Lng: item.WGS84Lon.Float()},
		}
		if item.DutyTime1s.String() != "" && item.DutyTime1c.String() != "" {
			record.OperatingHours = &OperatingHours{
				StartTime: item.DutyTime1s.String(),
				EndTime:   item.DutyTime1c.String(),
			}
		}
		records = append(records, record)
	}
	return records
}

func inferRegistryCategory(item govFacilityItem) FacilityCategory {
	switch {
	case strings.Contains(item.DutyName, "약국"),
		item.DutyEryn.Int() == 2,
		strings.HasPrefix(item.HpID, "C"):
		return CategoryPharmacy
	case item.DutyEryn.Int() == 1,
		strings.Contains(item.DutyName, "응급"):
		return CategoryEmergencyRoom
	case strings.Contains(item.DutyName, "병원"):
		return CategoryGeneralHospital
	default:
		return CategoryClinic
	}
}
