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

// This file implements the adapter for the regional emergency board: the
// government service that reports emergency rooms with real-time bed counts,
// keyed by proprietary numeric region codes. It is the most authoritative
// source in the chain and the only one that knows about beds, so it is also
// consulted as a secondary call to enrich emergency-room lists obtained from
// other sources (see bed_join.go).

// RegionalBoardAdapter queries the emergency board for one administrative
// region. Regions without a registered board code fail with
// ErrUnsupportedRegion before any network call is made.
type RegionalBoardAdapter struct {
	serviceKey string
	baseURL    string
	regions    *RegionTable
	httpClient *http.Client
	logger     *slog.Logger
}

func NewRegionalBoardAdapter(serviceKey, baseURL string, regions *RegionTable, httpClient *http.Client, logger *slog.Logger) *RegionalBoardAdapter {
	return &RegionalBoardAdapter{
		serviceKey: serviceKey,
		baseURL:    baseURL,
		regions:    regions,
		httpClient: httpClient,
		logger:     logger,
	}
}

func (a *RegionalBoardAdapter) Name() string {
	return "regional-board"
}

// Fetch returns the emergency rooms of the queried region, bed counts
// included. The board does not reliably return coordinates; records without
// them keep zero coordinates and the aggregation layer substitutes the
// query's reference point.
func (a *RegionalBoardAdapter) Fetch(ctx context.Context, query FacilityQuery) ([]FacilityRecord, error) {
	if query.Region1 == "" {
		return nil, fmt.Errorf("%w: regional board requires region1", ErrUnsupportedRegion)
	}
	provinceCode, err := a.regions.RegionCode(query.Region1, "")
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("serviceKey", a.serviceKey)
	params.Set("Q0", strconv.Itoa(provinceCode))
	if query.Region2 != "" {
		districtCode, err := a.regions.RegionCode(query.Region1, query.Region2)
		if err != nil {
			return nil, err
		}
		params.Set("Q1", strconv.Itoa(districtCode))
	}
	rows := query.NumOfRows
	if rows <= 0 {
		rows = 100
	}
	params.Set("numOfRows", strconv.Itoa(rows))
	params.Set("pageNo", "1")
	params.Set("_type", "json")

	requestURL := a.baseURL + "getEmrrmRltmUsefulSckbdInfoInqire?" + params.Encode()

	items, err := fetchGovItems(ctx, a.httpClient, requestURL)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: regional board has no entries for %s %s", ErrEmptyResult, query.Region1, query.Region2)
	}

	records := make([]FacilityRecord, 0, len(items))
	for _, item := range items {
		records = append(records, FacilityRecord{
			ID:          item.HpID,
			Name:        item.DutyName,
			Address:     item.DutyAddr,
			Phone:       firstNonEmpty(item.DutyTel3, item.DutyTel1),
			Category:    CategoryEmergencyRoom,
			Coordinates: Coordinates{Lat: item.WGS84Lat.Float(), Lng: item.WGS84Lon.Float()},
			BedInfo:     bedInfoFromItem(item),
		})
	}
	return records, nil
}

// bedInfoFromItem builds bed availability only for items that actually
// carried a bed field. The board lists some facilities without any bed
// reporting; those must come back without bed info rather than with a
// zero-bed block a client would render as "no beds free".
func bedInfoFromItem(item govFacilityItem) *BedInfo {
	if item.HPeryn == nil && item.HVec == nil && item.HVidate == "" {
		return nil
	}
	info := &BedInfo{
		Status:      item.DutyEmclsName,
		LastUpdated: item.HVidate,
	}
	if item.HPeryn != nil {
		info.TotalBeds = item.HPeryn.Int()
	}
	if item.HVec != nil {
		info.AvailableBeds = item.HVec.Int()
	}
	return info
}

// fetchGovItems performs a data.go.kr request and unwraps the shared
// response envelope. Bodies that are not JSON (the service answers quota
// errors with XML regardless of _type) surface as ErrUpstreamRejected with
// a truncated diagnostic.
func fetchGovItems(ctx context.Context, client *http.Client, requestURL string) ([]govFacilityItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", ErrUpstreamUnavailable, err)
	}

	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("%w: %s: %s", ErrUpstreamUnavailable, resp.Status, truncateBody(string(body), 200))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s: %s", ErrUpstreamRejected, resp.Status, truncateBody(string(body), 200))
	}

	var envelope govResponseEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("%w: non-JSON body: %s", ErrUpstreamRejected, truncateBody(string(body), 200))
	}
	if envelope.Response.Header.ResultCode != "00" {
		return nil, fmt.Errorf("%w: result %s (%s)", ErrUpstreamRejected,
			envelope.Response.Header.ResultCode, envelope.Response.Header.ResultMsg)
	}

	return envelope.Response.Body.Items.Item, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// The data.go.kr envelope. items.item is an object when the result set has
// a single entry and an array otherwise; govItemList absorbs both.
type govResponseEnvelope struct {
	Response struct {
		Header struct {
			ResultCode string `json:"resultCode"`
			ResultMsg  string `json:"resultMsg"`
		} `json:"header"`
		Body struct {
			Items      govItemList `json:"items"`
			TotalCount flexInt     `json:"totalCount"`
		} `json:"body"`
	} `json:"response"`
}

type govItemList struct {
	Item []govFacilityItem
}

func (l *govItemList) UnmarshalJSON(data []byte) error {
	// items can be "", a single object, or {"item": obj-or-array}.
	trimmed := strings.TrimSpace(string(data))
	if trimmed == `""` || trimmed == "null" {
		l.Item = nil
		return nil
	}

	var multi struct {
		Item []govFacilityItem `json:"item"`
	}
	if err := json.Unmarshal(data, &multi); err == nil {
		l.Item = multi.Item
		return nil
	}

	var single struct {
		Item govFacilityItem `json:"item"`
	}
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	l.Item = []govFacilityItem{single.Item}
	return nil
}

// govFacilityItem is the superset of fields used across the board and the
// facility registry. The services label the same concepts differently per
// endpoint revision; absent fields simply decode to zero values.
type govFacilityItem struct {
	HpID       string     `json:"hpid"`
	DutyName   string     `json:"dutyName"`
	DutyAddr   string     `json:"dutyAddr"`
	DutyTel1   string     `json:"dutyTel1"`
	DutyTel3   string     `json:"dutyTel3"`
	DutyEryn   flexInt    `json:"dutyEryn"`
	DutyTime1s flexString `json:"dutyTime1s"`
	DutyTime1c flexString `json:"dutyTime1c"`
	WGS84Lat   flexFloat  `json:"wgs84Lat"`
	WGS84Lon   flexFloat  `json:"wgs84Lon"`

	// The bed fields are pointers so "absent" stays distinguishable from a
	// reported zero.
	HPeryn        *flexInt `json:"hperyn"`
	HVec          *flexInt `json:"hvec"`
	HVidate       string   `json:"hvidate"`
	DutyEmclsName string   `json:"dutyEmclsName"`
}

// flexFloat, flexInt and flexString tolerate the registry's habit of
// switching a field between JSON number and string across revisions.
// Unparseable values coerce to zero so downstream arithmetic stays safe.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*f = 0
		return nil
	}
	*f = flexFloat(v)
	return nil
}

func (f flexFloat) Float() float64 { return float64(f) }

type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		*f = 0
		return nil
	}
	*f = flexInt(v)
	return nil
}

func (f flexInt) Int() int { return int(f) }

type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*f = ""
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*f = flexString(v)
		return nil
	}
	*f = flexString(s)
	return nil
}

func (f flexString) String() string { return string(f) }
