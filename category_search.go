package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// This file implements the adapter for the commercial map-search provider
// (Kakao Local place search). It is the fallback of last resort when both
// government sources fail, and the exclusive source for phone-number
// backfill, since the government registries frequently omit phone numbers.
//
// Kakao constraints baked in below: radius is capped at 20000 m and pages
// carry at most 15 documents, so larger result sets are assembled by paging
// until meta.is_end or the page budget runs out.

const (
	kakaoHospitalCategory = "HP8"
	kakaoMaxRadiusMeters  = 20000
	kakaoPageSize         = 15
	kakaoMaxPages         = 5
)

// CategorySearchAdapter queries Kakao place search by category code for
// hospitals, or by keyword for emergency rooms.
type CategorySearchAdapter struct {
	kakaoKey   string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewCategorySearchAdapter(kakaoKey, baseURL string, httpClient *http.Client, logger *slog.Logger) *CategorySearchAdapter {
	return &CategorySearchAdapter{
		kakaoKey:   kakaoKey,
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logger,
	}
}

func (a *CategorySearchAdapter) Name() string {
	return "category-search"
}

// Fetch returns hospitals (or emergency rooms, for emergency queries) around
// the reference point, sorted by distance on the provider side.
func (a *CategorySearchAdapter) Fetch(ctx context.Context, query FacilityQuery) ([]FacilityRecord, error) {
	if query.Lat == 0 && query.Lng == 0 {
		return nil, fmt.Errorf("%w: category search requires coordinates", ErrInvalidInput)
	}

	radiusMeters := int(query.RadiusKm * 1000)
	if radiusMeters <= 0 {
		radiusMeters = 5000
	}
	if radiusMeters > kakaoMaxRadiusMeters {
		radiusMeters = kakaoMaxRadiusMeters
	}

	rows := query.NumOfRows
	if rows <= 0 {
		rows = kakaoPageSize * kakaoMaxPages
	}

	var collected []kakaoPlaceDocument
	for page := 1; len(collected) < rows && page <= kakaoMaxPages; page++ {
		params := url.Values{}
		params.Set("x", strconv.FormatFloat(query.Lng, 'f', -1, 64))
		params.Set("y", strconv.FormatFloat(query.Lat, 'f', -1, 64))
		params.Set("radius", strconv.Itoa(radiusMeters))
		params.Set("size", strconv.Itoa(kakaoPageSize))
		params.Set("page", strconv.Itoa(page))
		params.Set("sort", "distance")

		path := "search/category.json"
		if query.EmergencyOnly {
			path = "search/keyword.json"
			params.Set("query", "응급실")
		} else {
			params.Set("category_group_code", kakaoHospitalCategory)
		}

		response, err := a.performSearch(ctx, path, params)
		if err != nil {
			return nil, err
		}
		if len(response.Documents) == 0 {
			break
		}
		collected = append(collected, response.Documents...)
		if response.Meta.IsEnd {
			break
		}
	}

	if len(collected) == 0 {
		return nil, fmt.Errorf("%w: kakao place search found nothing in radius", ErrEmptyResult)
	}
	if len(collected) > rows {
		collected = collected[:rows]
	}

	records := make([]FacilityRecord, 0, len(collected))
	for _, doc := range collected {
		records = append(records, a.normalize(doc, query))
	}
	return records, nil
}

// LookupPhone finds a phone number for a named facility near its known
// position. Used for per-record backfill; failures are per-record and the
// caller degrades to an empty phone.
func (a *CategorySearchAdapter) LookupPhone(ctx context.Context, name string, at Coordinates) (string, error) {
	params := url.Values{}
	params.Set("query", name)
	params.Set("x", strconv.FormatFloat(at.Lng, 'f', -1, 64))
	params.Set("y", strconv.FormatFloat(at.Lat, 'f', -1, 64))
	params.Set("radius", "1000")
	params.Set("size", "1")
	params.Set("sort", "distance")

	response, err := a.performSearch(ctx, "search/keyword.json", params)
	if err != nil {
		return "", err
	}
	if len(response.Documents) == 0 {
		return "", fmt.Errorf("%w: no place named %q nearby", ErrEmptyResult, name)
	}
	return response.Documents[0].Phone, nil
}

func (a *CategorySearchAdapter) performSearch(ctx context.Context, path string, params url.Values) (*kakaoPlaceResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build kakao request: %w", err)
	}
	req.Header.Set("Authorization", "KakaoAK "+a.kakaoKey)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", ErrUpstreamUnavailable, err)
	}

	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("%w: kakao returned %s", ErrUpstreamUnavailable, resp.Status)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: kakao returned %s: %s", ErrUpstreamRejected, resp.Status, truncateBody(string(body), 200))
	}

	var response kakaoPlaceResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("%w: non-JSON body: %s", ErrUpstreamRejected, truncateBody(string(body), 200))
	}
	return &response, nil
}

// normalize maps a Kakao place document onto a facility record. Kakao knows
// nothing about beds or operating hours; coordinates arrive as strings and
// unparseable ones fall back to the query reference per the degraded-record
// rule.
func (a *CategorySearchAdapter) normalize(doc kakaoPlaceDocument, query FacilityQuery) FacilityRecord {
	lat, err := strconv.ParseFloat(doc.Y, 64)
	if err != nil {
		lat = query.Lat
	}
	lng, err := strconv.ParseFloat(doc.X, 64)
	if err != nil {
		lng = query.Lng
	}

	category := CategoryClinic
	switch {
	case query.EmergencyOnly:
		category = CategoryEmergencyRoom
	case strings.Contains(doc.PlaceName, "약국"):
		category = CategoryPharmacy
	case strings.Contains(doc.PlaceName, "응급"):
		category = CategoryEmergencyRoom
	case strings.Contains(doc.PlaceName, "병원"):
		category = CategoryGeneralHospital
	}

	address := doc.RoadAddressName
	if address == "" {
		address = doc.AddressName
	}

	return FacilityRecord{
		ID:          doc.ID,
		Name:        doc.PlaceName,
		Address:     address,
		Phone:       doc.Phone,
		Category:    category,
		Coordinates: Coordinates{Lat: lat, Lng: lng},
	}
}

// Kakao place-search response structs.

type kakaoPlaceResponse struct {
	Documents []kakaoPlaceDocument `json:"documents"`
	Meta      struct {
		IsEnd      bool `json:"is_end"`
		TotalCount int  `json:"total_count"`
	} `json:"meta"`
}

type kakaoPlaceDocument struct {
	ID              string `json:"id"`
	PlaceName       string `json:"place_name"`
	AddressName     string `json:"address_name"`
	RoadAddressName string `json:"road_address_name"`
	Phone           string `json:"phone"`
	X               string `json:"x"`
	Y               string `json:"y"`
}
