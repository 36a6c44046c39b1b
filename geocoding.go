package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// This file provides the application's geocoding capabilities: converting a
// free-text address into coordinates (forward geocoding) and converting
// coordinates into a postal address plus coarse administrative region names
// (reverse geocoding). The provider is abstracted behind a GeocodingService
// interface so handlers and the aggregation layer can be tested without a
// live Kakao account, and so the provider could be replaced without touching
// its consumers. There is deliberately no caching here: every call is a
// fresh round-trip.

// GeocodePoint is the result of forward geocoding an address string.
type GeocodePoint struct {
	Lat               float64
	Lng               float64
	NormalizedAddress string
}

// RegionAddress is the result of reverse geocoding a coordinate pair.
// Region1 and Region2 are the province and district names in the form the
// regional board tables use.
type RegionAddress struct {
	Address string
	Region1 string
	Region2 string
}

// GeocodingService defines a generic interface for geocoding operations.
type GeocodingService interface {
	Geocode(ctx context.Context, address string) (GeocodePoint, error)
	ReverseGeocode(ctx context.Context, lat, lng float64) (RegionAddress, error)
}

// KakaoGeocodingService implements GeocodingService against the Kakao Local
// REST API.
type KakaoGeocodingService struct {
	kakaoKey   string
	baseURL    string
	httpClient *http.Client
}

// NewKakaoGeocodingService creates a new KakaoGeocodingService. baseURL is
// the Kakao Local API root, e.g. "https://dapi.kakao.com/v2/local/".
func NewKakaoGeocodingService(kakaoKey, baseURL string, httpClient *http.Client) *KakaoGeocodingService {
	return &KakaoGeocodingService{
		kakaoKey:   kakaoKey,
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

// Geocode resolves a free-text address to coordinates. Empty or whitespace
// input yields ErrInvalidInput; a well-formed query the provider knows
// nothing about yields ErrNotFound.
func (s *KakaoGeocodingService) Geocode(ctx context.Context, address string) (GeocodePoint, error) {
	if strings.TrimSpace(address) == "" {
		return GeocodePoint{}, fmt.Errorf("%w: address must not be empty", ErrInvalidInput)
	}

	params := url.Values{}
	params.Set("query", address)
	var response kakaoAddressSearchResponse
	if err := s.performLocalRequest(ctx, "search/address.json", params, &response); err != nil {
		return GeocodePoint{}, err
	}

	if len(response.Documents) == 0 {
		return GeocodePoint{}, fmt.Errorf("%w: %q", ErrNotFound, address)
	}

	doc := response.Documents[0]
	lng, err := strconv.ParseFloat(doc.X, 64)
	if err != nil {
		return GeocodePoint{}, fmt.Errorf("%w: unparseable longitude %q", ErrUpstreamRejected, doc.X)
	}
	lat, err := strconv.ParseFloat(doc.Y, 64)
	if err != nil {
		return GeocodePoint{}, fmt.Errorf("%w: unparseable latitude %q", ErrUpstreamRejected, doc.Y)
	}

	return GeocodePoint{
		Lat:               lat,
		Lng:               lng,
		NormalizedAddress: doc.AddressName,
	}, nil
}

// ReverseGeocode resolves coordinates to an address string and region names.
// Provider errors and empty document lists both surface as
// ErrUpstreamUnavailable; callers degrade to a query without an address
// rather than aborting.
func (s *KakaoGeocodingService) ReverseGeocode(ctx context.Context, lat, lng float64) (RegionAddress, error) {
	params := url.Values{}
	params.Set("x", strconv.FormatFloat(lng, 'f', -1, 64))
	params.Set("y", strconv.FormatFloat(lat, 'f', -1, 64))
	var response kakaoCoordToAddressResponse
	if err := s.performLocalRequest(ctx, "geo/coord2address.json", params, &response); err != nil {
		return RegionAddress{}, err
	}

	if len(response.Documents) == 0 {
		return RegionAddress{}, fmt.Errorf("%w: no address for %.4f,%.4f", ErrUpstreamUnavailable, lat, lng)
	}

	doc := response.Documents[0]
	result := RegionAddress{}
	// Road addresses are preferred for display; the lot-number address is
	// the one that reliably carries region depth names.
	if doc.RoadAddress != nil && doc.RoadAddress.AddressName != "" {
		result.Address = doc.RoadAddress.AddressName
	} else if doc.Address != nil {
		result.Address = doc.Address.AddressName
	}
	if doc.Address != nil {
		result.Region1 = doc.Address.Region1DepthName
		result.Region2 = doc.Address.Region2DepthName
	} else if doc.RoadAddress != nil {
		result.Region1 = doc.RoadAddress.Region1DepthName
		result.Region2 = doc.RoadAddress.Region2DepthName
	}

	return result, nil
}

// performLocalRequest handles the shared mechanics of a Kakao Local API
// call: URL assembly, the KakaoAK authorization header, status checking and
// JSON decoding.
func (s *KakaoGeocodingService) performLocalRequest(ctx context.Context, path string, params url.Values, out any) error {
	baseURL, err := url.Parse(s.baseURL + path)
	if err != nil {
		return fmt.Errorf("failed to parse kakao local URL: %w", err)
	}
	baseURL.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to build kakao request: %w", err)
	}
	req.Header.Set("Authorization", "KakaoAK "+s.kakaoKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return fmt.Errorf("%w: kakao returned %s", ErrUpstreamUnavailable, resp.Status)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: kakao returned %s", ErrUpstreamRejected, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: failed to decode kakao response: %v", ErrUpstreamRejected, err)
	}
	return nil
}

// The following structs represent the Kakao Local API JSON responses.

type kakaoAddressSearchResponse struct {
	Documents []kakaoAddressDocument `json:"documents"`
}

type kakaoAddressDocument struct {
	AddressName string `json:"address_name"`
	X           string `json:"x"`
	Y           string `json:"y"`
}

type kakaoCoordToAddressResponse struct {
	Documents []kakaoCoordDocument `json:"documents"`
}

type kakaoCoordDocument struct {
	RoadAddress *kakaoRegionAddress `json:"road_address"`
	Address     *kakaoRegionAddress `json:"address"`
}

type kakaoRegionAddress struct {
	AddressName      string `json:"address_name"`
	Region1DepthName string `json:"region_1depth_name"`
	Region2DepthName string `json:"region_2depth_name"`
}
