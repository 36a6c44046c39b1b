package main

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
)

// This file contains the aggregation orchestrator: the one place that turns
// a facility query into a normalized, enriched, sorted result list. The
// pipeline is fixed:
//
//  1. pick the fallback chain matching the query shape (regional vs radius)
//  2. run the chain (adapters normalize their own response shapes)
//  3. repair degraded records (surrogate IDs, reference-point coordinates)
//  4. join bed availability when it came from a separate call
//  5. apply the category filter for the querying page
//  6. compute distances and sort ascending when the query carries a
//     reference point (stable; ties keep upstream order)
//  7. truncate to the result cap
//  8. compute open-status and department tags
//  9. backfill missing phone numbers with bounded concurrency
//
// Records are request-scoped throughout; nothing here caches or persists.

// findFacilities answers one aggregation query. When every adapter in the
// chain fails the error is a *NoDataAvailableError naming each attempt;
// callers translate that into a "could not reach data providers" state,
// distinct from a successful empty result.
func (cfg *apiConfig) findFacilities(ctx context.Context, query FacilityQuery) ([]FacilityRecord, error) {
	if query.RadiusKm <= 0 {
		query.RadiusKm = cfg.defaultRadiusKm
	}
	if query.Region1 != "" {
		query.Region1 = cfg.regions.LongName(query.Region1)
	}

	var sources []facilitySource
	if query.Region1 != "" {
		sources = []facilitySource{cfg.regionalBoard, cfg.categorySearch}
	} else {
		sources = []facilitySource{cfg.radiusSearch, cfg.categorySearch}
	}

	records, sourceName, err := runFallbackChain(ctx, cfg.logger, query, sources...)
	if err != nil {
		return nil, err
	}
	cfg.logger.Debug("aggregation source selected", "adapter", sourceName, "raw_records", len(records))

	hasReference := query.Lat != 0 || query.Lng != 0

	for i := range records {
		if records[i].ID == "" {
			records[i].ID = uuid.NewString()
		}
		if hasReference && records[i].Coordinates.Lat == 0 && records[i].Coordinates.Lng == 0 {
			// Degraded but non-fatal: the record sorts at distance zero
			// from the reference point instead of being dropped.
			records[i].Coordinates = Coordinates{Lat: query.Lat, Lng: query.Lng}
		}
	}

	if query.EmergencyOnly && sourceName != cfg.regionalBoard.Name() {
		cfg.attachBedData(ctx, query, records)
	}

	records = filterByCategory(records, query.EmergencyOnly)

	// Region-only queries carry no reference point. Their distances are
	// unknowable, so none are reported and records keep the board's order.
	if hasReference {
		for i := range records {
			records[i].DerivedDistanceKm = distanceKm(query.Lat, query.Lng,
				records[i].Coordinates.Lat, records[i].Coordinates.Lng)
			records[i].DerivedDistanceKnown = true
		}
		sort.SliceStable(records, func(i, j int) bool {
			return records[i].DerivedDistanceKm < records[j].DerivedDistanceKm
		})
	}
	if len(records) > cfg.maxResults {
		records = records[:cfg.maxResults]
	}

	if !query.EmergencyOnly {
		now := time.Now()
		for i := range records {
			records[i].DerivedDepartment = classifyDepartment(records[i].Name)
			if records[i].OperatingHours != nil {
				status := evaluateOperatingStatus(*records[i].OperatingHours, now)
				records[i].DerivedIsOpen = status.IsOpen
				records[i].DerivedClosing = status.ClosingTime
			}
		}
	}

	if sourceName != cfg.categorySearch.Name() {
		cfg.backfillPhones(ctx, records)
	}

	return records, nil
}

// attachBedData makes the secondary regional-board call and joins its bed
// counts onto records that came from a bed-unaware source. Any failure here
// degrades to records without bed info; it never fails the query.
func (cfg *apiConfig) attachBedData(ctx context.Context, query FacilityQuery, records []FacilityRecord) {
	boardQuery := query
	if boardQuery.Region1 == "" {
		regionAddress, err := cfg.geocoder.ReverseGeocode(ctx, query.Lat, query.Lng)
		if err != nil {
			cfg.logger.Warn("could not resolve region for bed join", "error", err)
			return
		}
		boardQuery.Region1 = regionAddress.Region1
		boardQuery.Region2 = regionAddress.Region2
	}

	boardRecords, err := cfg.regionalBoard.Fetch(ctx, boardQuery)
	if err != nil {
		cfg.logger.Warn("bed-availability call failed, serving without bed info",
			"region1", boardQuery.Region1, "error", err)
		return
	}

	joined := joinBedInfo(records, boardRecords, cfg.logger)
	cfg.logger.Debug("bed join complete", "board_records", len(boardRecords), "joined", joined)
}

// filterByCategory applies the page-dependent category filter: emergency
// searches keep only emergency rooms; hospital searches drop pharmacies and
// emergency rooms.
func filterByCategory(records []FacilityRecord, emergencyOnly bool) []FacilityRecord {
	filtered := records[:0]
	for _, record := range records {
		switch {
		case emergencyOnly && record.Category == CategoryEmergencyRoom:
			filtered = append(filtered, record)
		case !emergencyOnly && record.Category != CategoryPharmacy && record.Category != CategoryEmergencyRoom:
			filtered = append(filtered, record)
		}
	}
	return filtered
}

// facilityRecordToJSON maps a record onto the wire shape.
func facilityRecordToJSON(record FacilityRecord) FacilityJSON {
	out := FacilityJSON{
		ID:             record.ID,
		Name:           record.Name,
		Address:        record.Address,
		Coordinates:    record.Coordinates,
		Phone:          record.Phone,
		Category:       string(record.Category),
		BedInfo:        record.BedInfo,
		OperatingHours: record.OperatingHours,
		IsOpen:         record.DerivedIsOpen,
		ClosingTime:    record.DerivedClosing,
		Department:     record.DerivedDepartment,
	}
	if record.DerivedDistanceKnown {
		distance := record.DerivedDistanceKm
		out.DistanceKm = &distance
	}
	return out
}
