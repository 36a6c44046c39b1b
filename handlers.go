package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
)

// This file contains the main HTTP handlers for the application. Each handler is responsible
// for processing incoming API requests, calling the appropriate aggregation or provider
// functions, and writing the final JSON response.

// The facility handlers (handlerFacilities, handlerEmergencyRooms) follow a similar pattern:
// 1. They ensure the request method is GET.
// 2. They parse the query parameters into a FacilityQuery.
// 3. They run the aggregation pipeline via findFacilities.
// 4. They map the sorted records onto the wire shape and respond.

// statusForError translates aggregation and provider errors into HTTP status
// codes. Exhausted fallback chains map to 502 because the failure lives
// upstream, not in this service.
func statusForError(err error) int {
	var noData *NoDataAvailableError
	switch {
	case errors.As(err, &noData):
		// Exhaustion is judged by the first adapter in the chain, the one
		// authoritative for the query shape. Only its failure can mean the
		// request itself was bad; a later adapter rejecting a shape it
		// cannot serve (a region-only query has no coordinates for the
		// map-search fallback) must not relabel a provider outage as 400.
		if len(noData.Attempts) > 0 {
			first := noData.Attempts[0].Err
			if errors.Is(first, ErrInvalidInput) || errors.Is(first, ErrUnsupportedRegion) {
				return http.StatusBadRequest
			}
		}
		return http.StatusBadGateway
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrUnsupportedRegion):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// parseCoordinate parses a single query parameter as a float, distinguishing
// "absent" from "malformed".
func parseCoordinate(r *http.Request, key string) (float64, bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return 0, false, nil
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false, err
	}
	return val, true, nil
}

// @Summary      Find nearby medical facilities
// @Description  Retrieves hospitals and clinics around a coordinate, sorted by distance.
// @Description  Pharmacies and emergency rooms are excluded; use /api/emergencyrooms for the latter.
// @Tags         facilities
// @Produce      json
// @Param        lat        query  number  true   "Latitude of the reference point (e.g., 37.5665)"
// @Param        lng        query  number  true   "Longitude of the reference point (e.g., 126.9780)"
// @Param        radius_km  query  number  false  "Search radius in kilometers (default 5)"
// @Param        num_of_rows  query  integer  false  "Upstream page-size hint"
// @Success      200  {object}  FacilitiesResponse
// @Failure      400  {object}  ErrorResponse "Bad Request - Missing or malformed coordinates"
// @Failure      502  {object}  ErrorResponse "Bad Gateway - All upstream data providers failed"
// @Router       /api/facilities [get]
func (cfg *apiConfig) handlerFacilities(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if r.Method != http.MethodGet {
		cfg.respondWithError(w, http.StatusMethodNotAllowed, "Method Not Allowed", nil)
		return
	}

	lat, hasLat, err := parseCoordinate(r, "lat")
	if err != nil {
		cfg.respondWithError(w, http.StatusBadRequest, "Invalid latitude", err)
		return
	}
	lng, hasLng, err := parseCoordinate(r, "lng")
	if err != nil {
		cfg.respondWithError(w, http.StatusBadRequest, "Invalid longitude", err)
		return
	}
	if !hasLat || !hasLng {
		cfg.respondWithError(w, http.StatusBadRequest, "Both lat and lng are required", ErrInvalidInput)
		return
	}

	query := FacilityQuery{Lat: lat, Lng: lng}
	if radius, ok, err := parseCoordinate(r, "radius_km"); err != nil {
		cfg.respondWithError(w, http.StatusBadRequest, "Invalid radius_km", err)
		return
	} else if ok {
		query.RadiusKm = radius
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("num_of_rows")); raw != "" {
		rows, err := strconv.Atoi(raw)
		if err != nil || rows <= 0 {
			cfg.respondWithError(w, http.StatusBadRequest, "Invalid num_of_rows", err)
			return
		}
		query.NumOfRows = rows
	}
	cfg.logger.Debug("facility search request", "lat", lat, "lng", lng, "radius_km", query.RadiusKm)

	records, err := cfg.findFacilities(ctx, query)
	if err != nil {
		cfg.respondWithError(w, statusForError(err), "Error getting facility data", err)
		return
	}

	facilitiesJSON := make([]FacilityJSON, len(records))
	for i, record := range records {
		facilitiesJSON[i] = facilityRecordToJSON(record)
	}

	cfg.respondWithJSON(w, http.StatusOK, FacilitiesResponse{Facilities: facilitiesJSON})
}

// @Summary      Find emergency rooms
// @Description  Retrieves emergency rooms with real-time bed availability, sorted by distance.
// @Description  Pass region1 (and optionally region2) for a regional search, or lat/lng for a
// @Description  coordinate search. A coordinate search still requires lat/lng for sorting.
// @Tags         facilities
// @Produce      json
// @Param        region1  query  string  false  "Province name, long or short form (e.g., '서울특별시' or '서울')"
// @Param        region2  query  string  false  "District name within the province (e.g., '강남구')"
// @Param        lat      query  number  false  "Latitude of the reference point"
// @Param        lng      query  number  false  "Longitude of the reference point"
// @Success      200  {object}  FacilitiesResponse
// @Failure      400  {object}  ErrorResponse "Bad Request - Missing location or unsupported region"
// @Failure      502  {object}  ErrorResponse "Bad Gateway - All upstream data providers failed"
// @Router       /api/emergencyrooms [get]
func (cfg *apiConfig) handlerEmergencyRooms(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if r.Method != http.MethodGet {
		cfg.respondWithError(w, http.StatusMethodNotAllowed, "Method Not Allowed", nil)
		return
	}

	query := FacilityQuery{
		Region1:       strings.TrimSpace(r.URL.Query().Get("region1")),
		Region2:       strings.TrimSpace(r.URL.Query().Get("region2")),
		EmergencyOnly: true,
	}

	lat, hasLat, err := parseCoordinate(r, "lat")
	if err != nil {
		cfg.respondWithError(w, http.StatusBadRequest, "Invalid latitude", err)
		return
	}
	lng, hasLng, err := parseCoordinate(r, "lng")
	if err != nil {
		cfg.respondWithError(w, http.StatusBadRequest, "Invalid longitude", err)
		return
	}
	if hasLat && hasLng {
		query.Lat = lat
		query.Lng = lng
	}
	if query.Region1 == "" && (!hasLat || !hasLng) {
		cfg.respondWithError(w, http.StatusBadRequest, "Either region1 or lat/lng is required", ErrInvalidInput)
		return
	}
	cfg.logger.Debug("emergency room request",
		"region1", query.Region1, "region2", query.Region2, "lat", query.Lat, "lng", query.Lng)

	records, err := cfg.findFacilities(ctx, query)
	if err != nil {
		cfg.respondWithError(w, statusForError(err), "Error getting emergency room data", err)
		return
	}

	facilitiesJSON := make([]FacilityJSON, len(records))
	for i, record := range records {
		facilitiesJSON[i] = facilityRecordToJSON(record)
	}

	cfg.respondWithJSON(w, http.StatusOK, FacilitiesResponse{Facilities: facilitiesJSON})
}

// @Summary      Geocode an address
// @Description  Resolves a Korean address or place name to WGS84 coordinates.
// @Tags         geocoding
// @Produce      json
// @Param        address  query  string  true  "Address text to resolve (e.g., '서울특별시 중구 세종대로 110')"
// @Success      200  {object}  GeocodeResponse
// @Failure      400  {object}  ErrorResponse "Bad Request - Missing address parameter"
// @Failure      404  {object}  ErrorResponse "Not Found - Provider has no match for the address"
// @Router       /api/geocode [get]
func (cfg *apiConfig) handlerGeocode(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if r.Method != http.MethodGet {
		cfg.respondWithError(w, http.StatusMethodNotAllowed, "Method Not Allowed", nil)
		return
	}

	address := strings.TrimSpace(r.URL.Query().Get("address"))
	cfg.logger.Debug("geocode request", "address", address)

	point, err := cfg.geocoder.Geocode(ctx, address)
	if err != nil {
		cfg.respondWithError(w, statusForError(err), "Error geocoding address", err)
		return
	}

	cfg.respondWithJSON(w, http.StatusOK, GeocodeResponse{
		Lat:     point.Lat,
		Lng:     point.Lng,
		Address: point.NormalizedAddress,
	})
}

// @Summary      Reverse geocode a coordinate
// @Description  Resolves WGS84 coordinates to a Korean address and its administrative regions.
// @Tags         geocoding
// @Produce      json
// @Param        lat  query  number  true  "Latitude (e.g., 37.5665)"
// @Param        lng  query  number  true  "Longitude (e.g., 126.9780)"
// @Success      200  {object}  ReverseGeocodeResponse
// @Failure      400  {object}  ErrorResponse "Bad Request - Missing or malformed coordinates"
// @Router       /api/reversegeocode [get]
func (cfg *apiConfig) handlerReverseGeocode(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if r.Method != http.MethodGet {
		cfg.respondWithError(w, http.StatusMethodNotAllowed, "Method Not Allowed", nil)
		return
	}

	lat, hasLat, err := parseCoordinate(r, "lat")
	if err != nil {
		cfg.respondWithError(w, http.StatusBadRequest, "Invalid latitude", err)
		return
	}
	lng, hasLng, err := parseCoordinate(r, "lng")
	if err != nil {
		cfg.respondWithError(w, http.StatusBadRequest, "Invalid longitude", err)
		return
	}
	if !hasLat || !hasLng {
		cfg.respondWithError(w, http.StatusBadRequest, "Both lat and lng are required", ErrInvalidInput)
		return
	}
	cfg.logger.Debug("reverse geocode request", "lat", lat, "lng", lng)

	regionAddress, err := cfg.geocoder.ReverseGeocode(ctx, lat, lng)
	if err != nil {
		cfg.respondWithError(w, statusForError(err), "Error reverse geocoding coordinates", err)
		return
	}

	cfg.respondWithJSON(w, http.StatusOK, ReverseGeocodeResponse{
		Address: regionAddress.Address,
		Region1: regionAddress.Region1,
		Region2: regionAddress.Region2,
	})
}

type symptomCheckRequest struct {
	Symptoms string `json:"symptoms"`
}

// @Summary      Recommend a medical department for symptoms
// @Description  Classifies free-text Korean symptom descriptions into a recommended
// @Description  hospital department with an urgency estimate.
// @Tags         symptoms
// @Accept       json
// @Produce      json
// @Param        request  body  symptomCheckRequest  true  "Symptom description"
// @Success      200  {object}  DepartmentRecommendation
// @Failure      400  {object}  ErrorResponse "Bad Request - Missing or empty symptoms"
// @Failure      502  {object}  ErrorResponse "Bad Gateway - AI gateway unreachable"
// @Router       /api/symptomcheck [post]
func (cfg *apiConfig) handlerSymptomCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if r.Method != http.MethodPost {
		cfg.respondWithError(w, http.StatusMethodNotAllowed, "Method Not Allowed", nil)
		return
	}

	var req symptomCheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		cfg.respondWithError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	cfg.logger.Debug("symptom check request", "length", len(req.Symptoms))

	recommendation, err := cfg.symptomChecker.Classify(ctx, req.Symptoms)
	if err != nil {
		if errors.Is(err, ErrUpstreamUnavailable) {
			cfg.respondWithError(w, http.StatusBadGateway, "Symptom classification unavailable", err)
			return
		}
		cfg.respondWithError(w, statusForError(err), "Error classifying symptoms", err)
		return
	}

	cfg.respondWithJSON(w, http.StatusOK, recommendation)
}

// handlerConfig provides client-side applications with necessary configuration,
// such as whether the application is running in development mode.

// @Summary      Get application configuration
// @Description  Provides client-side applications with necessary configuration details,
// @Description  such as whether the application is running in development mode and the
// @Description  maximum number of results a facility search returns.
// @Tags         configuration
// @Produce      json
// @Success      200  {object}  ConfigResponse
// @Router       /api/config [get]
func (cfg *apiConfig) handlerConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		cfg.respondWithError(w, http.StatusMethodNotAllowed, "Method Not Allowed", nil)
		return
	}

	response := ConfigResponse{
		DevMode:    cfg.devMode,
		MaxResults: cfg.maxResults,
	}

	cfg.respondWithJSON(w, http.StatusOK, response)
}
