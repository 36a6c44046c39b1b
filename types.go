package main

// FacilityCategory tags a facility record with the coarse kind of institution
// it represents. Upstream sources disagree on how (or whether) they expose
// this, so every adapter is responsible for assigning a category during
// normalization.
type FacilityCategory string

const (
	CategoryEmergencyRoom   FacilityCategory = "emergency-room"
	CategoryGeneralHospital FacilityCategory = "general-hospital"
	CategoryClinic          FacilityCategory = "clinic"
	CategoryPharmacy        FacilityCategory = "pharmacy"
)

// Coordinates is a WGS84 position in floating-point degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// BedInfo carries real-time emergency-bed availability as reported by the
// regional board. AvailableBeds counts currently free general emergency beds
// and TotalBeds the standard capacity. The board occasionally reports
// available > total; the value is passed through as-is.
type BedInfo struct {
	TotalBeds     int    `json:"total_beds"`
	AvailableBeds int    `json:"available_beds"`
	Status        string `json:"status,omitempty"`
	LastUpdated   string `json:"last_updated,omitempty"`
}

// OperatingHours holds the raw opening and closing time strings from the
// upstream record. Both "HHMM" and "HH:MM" appear in the wild.
type OperatingHours struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// FacilityRecord is the canonical normalized unit produced by the aggregation
// layer, regardless of which upstream path supplied the data. Records are
// request-scoped: constructed fresh per query and never persisted.
//
// ID is the upstream identifier when one exists, otherwise a locally
// generated surrogate; it is not unique across sources for the same physical
// facility. The Derived* fields are recomputed per query relative to the
// query's reference point and wall-clock time.
type FacilityRecord struct {
	ID             string
	Name           string
	Address        string
	Coordinates    Coordinates
	Phone          string
	Category       FacilityCategory
	BedInfo        *BedInfo
	OperatingHours *OperatingHours

	DerivedDistanceKm    float64
	DerivedDistanceKnown bool
	DerivedIsOpen        bool
	DerivedClosing       string
	DerivedDepartment    string
}

// FacilityQuery describes one aggregation request. Region1/Region2 select the
// regional emergency-board path; otherwise the radius path around Lat/Lng is
// used. EmergencyOnly switches the category filter between the clinic page
// (pharmacies and emergency rooms excluded) and the emergency page
// (emergency rooms only).
type FacilityQuery struct {
	Lat           float64
	Lng           float64
	RadiusKm      float64
	Region1       string
	Region2       string
	NumOfRows     int
	EmergencyOnly bool
}

// FacilityJSON is the wire shape of a single facility in API responses.
type FacilityJSON struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Address        string          `json:"address,omitempty"`
	Coordinates    Coordinates     `json:"coordinates"`
	Phone          string          `json:"phone,omitempty"`
	Category       string          `json:"category"`
	BedInfo        *BedInfo        `json:"bed_info,omitempty"`
	OperatingHours *OperatingHours `json:"operating_hours,omitempty"`
	DistanceKm     *float64        `json:"distance_km,omitempty"`
	IsOpen         bool            `json:"is_open"`
	ClosingTime    string          `json:"closing_time,omitempty"`
	Department     string          `json:"department,omitempty"`
}

type FacilitiesResponse struct {
	Facilities []FacilityJSON `json:"facilities"`
}

type GeocodeResponse struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Address string  `json:"address"`
}

type ReverseGeocodeResponse struct {
	Address string `json:"address"`
	Region1 string `json:"region1,omitempty"`
	Region2 string `json:"region2,omitempty"`
}

// DepartmentRecommendation is the parsed output of the AI symptom classifier.
type DepartmentRecommendation struct {
	Department       string `json:"department"`
	Reason           string `json:"reason"`
	Urgency          string `json:"urgency"`
	AdditionalAdvice string `json:"additionalAdvice,omitempty"`
}

type ConfigResponse struct {
	DevMode    bool `json:"dev_mode"`
	MaxResults int  `json:"max_results"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
