package main

import (
	"log/slog"
	"strings"
)

// This file joins real-time bed-availability data onto emergency-room
// records obtained from a different source. The two datasets share no stable
// identifier, so the join is an explicit two-phase affair: exact facility
// code first, then a confidence-scored fuzzy match on normalized names.
// A fuzzy match below the confidence threshold is dropped entirely - showing
// no bed count is strictly better than attributing another hospital's beds,
// especially across branches of the same hospital chain, which is the known
// false-positive case for name containment.

// bedJoinMinConfidence is the lowest fuzzy-match confidence at which bed
// data is attached.
const bedJoinMinConfidence = 0.5

// bedMatch is one candidate pairing between a facility record and a board
// entry.
type bedMatch struct {
	bed        *BedInfo
	confidence float64
	exact      bool
}

// joinBedInfo attaches bed data from board records to the given facilities.
// Facilities that already carry bed data are left untouched. Returns the
// number of facilities enriched.
func joinBedInfo(facilities []FacilityRecord, boardRecords []FacilityRecord, logger *slog.Logger) int {
	if len(boardRecords) == 0 {
		return 0
	}

	byCode := make(map[string]*BedInfo, len(boardRecords))
	type namedBed struct {
		normalized string
		bed        *BedInfo
	}
	byName := make([]namedBed, 0, len(boardRecords))

	for i := range boardRecords {
		board := &boardRecords[i]
		if board.BedInfo == nil {
			continue
		}
		if board.ID != "" {
			byCode[board.ID] = board.BedInfo
		}
		normalized, err := normalizeFacilityName(board.Name)
		if err != nil || normalized == "" {
			continue
		}
		byName = append(byName, namedBed{normalized: normalized, bed: board.BedInfo})
	}

	joined := 0
	for i := range facilities {
		facility := &facilities[i]
		if facility.BedInfo != nil || facility.Category != CategoryEmergencyRoom {
			continue
		}

		match := bedMatch{}
		if facility.ID != "" {
			if bed, ok := byCode[facility.ID]; ok {
				match = bedMatch{bed: bed, confidence: 1, exact: true}
			}
		}

		if match.bed == nil {
			normalized, err := normalizeFacilityName(facility.Name)
			if err != nil || normalized == "" {
				continue
			}
			for _, candidate := range byName {
				confidence := nameMatchConfidence(normalized, candidate.normalized)
				if confidence > match.confidence {
					match = bedMatch{bed: candidate.bed, confidence: confidence}
				}
			}
		}

		if match.bed == nil || match.confidence < bedJoinMinConfidence {
			continue
		}
		if !match.exact {
			logger.Debug("fuzzy bed join accepted",
				"facility", facility.Name, "confidence", match.confidence)
		}
		bed := *match.bed
		facility.BedInfo = &bed
		joined++
	}
	return joined
}

// nameMatchConfidence scores how confidently two normalized facility names
// refer to the same institution: 0 when neither contains the other,
// otherwise the length ratio of the shorter to the longer name. Identical
// names score 1.0; "세브란스" inside "신촌세브란스병원응급의료센터" scores
// well below it.
func nameMatchConfidence(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	shorter, longer := a, b
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}
	if !strings.Contains(longer, shorter) {
		return 0
	}
	return float64(len(shorter)) / float64(len(longer))
}
