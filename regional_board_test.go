package main

import (
	"context"
	"embed"
	"errors"
	"math"
	"net/http"
	"testing"
)

//go:embed testdata/*.json
var testData embed.FS

func serveFixture(t *testing.T, name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := testData.ReadFile("testdata/" + name)
		if err != nil {
			t.Fatalf("Failed to read test data: %v", err)
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}

func newTestBoardAdapter(t *testing.T, serverURL string) *RegionalBoardAdapter {
	t.Helper()
	cfg := newTestConfig(t)
	return NewRegionalBoardAdapter("dummy-key", serverURL+"/", cfg.regions, http.DefaultClient, cfg.logger)
}

func TestRegionalBoardFetch(t *testing.T) {
	var gotQuery map[string]string
	server := setupMockServer(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{
			"Q0":    r.URL.Query().Get("Q0"),
			"Q1":    r.URL.Query().Get("Q1"),
			"_type": r.URL.Query().Get("_type"),
		}
		serveFixture(t, "board_items.json")(w, r)
	})
	defer server.Close()

	adapter := newTestBoardAdapter(t, server.URL)

	records, err := adapter.Fetch(context.Background(), FacilityQuery{Region1: "서울특별시", Region2: "종로구"})
	if err != nil {
		t.Fatalf("Fetch() returned an unexpected error: %v", err)
	}

	if gotQuery["Q0"] != "1100" {
		t.Errorf("Expected Q0=1100, got %q", gotQuery["Q0"])
	}
	if gotQuery["Q1"] == "" {
		t.Error("Expected a Q1 district code, got none")
	}
	if gotQuery["_type"] != "json" {
		t.Errorf("Expected _type=json, got %q", gotQuery["_type"])
	}

	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}

	first := records[0]
	if first.ID != "A1100001" {
		t.Errorf("Expected facility code A1100001, got %q", first.ID)
	}
	if first.Name != "서울대학교병원" {
		t.Errorf("Expected name 서울대학교병원, got %q", first.Name)
	}
	if first.Category != CategoryEmergencyRoom {
		t.Errorf("Expected emergency-room category, got %q", first.Category)
	}
	if first.Phone != "02-2072-1234" {
		t.Errorf("Expected the emergency phone number, got %q", first.Phone)
	}
	if first.BedInfo == nil {
		t.Fatal("Expected bed info on a board record")
	}
	if first.BedInfo.TotalBeds != 27 || first.BedInfo.AvailableBeds != 12 {
		t.Errorf("Expected 12/27 beds, got %d/%d", first.BedInfo.AvailableBeds, first.BedInfo.TotalBeds)
	}
	if math.Abs(first.Coordinates.Lat-37.5796) > 0.0001 {
		t.Errorf("Expected latitude 37.5796, got %f", first.Coordinates.Lat)
	}

	// The second record mixes number and string field types.
	second := records[1]
	if second.BedInfo.TotalBeds != 30 || second.BedInfo.AvailableBeds != 5 {
		t.Errorf("Expected 5/30 beds, got %d/%d", second.BedInfo.AvailableBeds, second.BedInfo.TotalBeds)
	}
	if second.Phone != "02-2228-0114" {
		t.Errorf("Expected fallback to dutyTel1, got %q", second.Phone)
	}
}

func TestRegionalBoardFetch_NoBedFieldsMeansNoBedInfo(t *testing.T) {
	server := setupMockServer(serveFixture(t, "board_mixed_beds.json"))
	defer server.Close()

	adapter := newTestBoardAdapter(t, server.URL)

	records, err := adapter.Fetch(context.Background(), FacilityQuery{Region1: "서울특별시"})
	if err != nil {
		t.Fatalf("Fetch() returned an unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}

	if records[0].BedInfo == nil {
		t.Fatal("Expected bed info on the record that reports beds")
	}
	if records[1].BedInfo != nil {
		t.Errorf("Expected no bed info on a record without bed fields, got %+v", records[1].BedInfo)
	}
}

func TestRegionalBoardFetch_SingleItem(t *testing.T) {
	server := setupMockServer(serveFixture(t, "board_single_item.json"))
	defer server.Close()

	adapter := newTestBoardAdapter(t, server.URL)

	records, err := adapter.Fetch(context.Background(), FacilityQuery{Region1: "서울"})
	if err != nil {
		t.Fatalf("Fetch() returned an unexpected error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("Expected 1 record from a single-object item, got %d", len(records))
	}
	if records[0].Name != "삼성서울병원" {
		t.Errorf("Expected name 삼성서울병원, got %q", records[0].Name)
	}
}

func TestRegionalBoardFetch_ResultCodeError(t *testing.T) {
	server := setupMockServer(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"response": {"header": {"resultCode": "22", "resultMsg": "LIMITED NUMBER OF SERVICE REQUESTS EXCEEDS ERROR."}}}`))
	})
	defer server.Close()

	adapter := newTestBoardAdapter(t, server.URL)

	_, err := adapter.Fetch(context.Background(), FacilityQuery{Region1: "서울특별시"})
	if !errors.Is(err, ErrUpstreamRejected) {
		t.Errorf("Expected ErrUpstreamRejected, but got %v", err)
	}
}

func TestRegionalBoardFetch_NonJSONBody(t *testing.T) {
	server := setupMockServer(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`<OpenAPI_ServiceResponse><cmmMsgHeader><errMsg>SERVICE ERROR</errMsg></cmmMsgHeader></OpenAPI_ServiceResponse>`))
	})
	defer server.Close()

	adapter := newTestBoardAdapter(t, server.URL)

	_, err := adapter.Fetch(context.Background(), FacilityQuery{Region1: "서울특별시"})
	if !errors.Is(err, ErrUpstreamRejected) {
		t.Errorf("Expected ErrUpstreamRejected for a non-JSON body, but got %v", err)
	}
}

func TestRegionalBoardFetch_EmptyItems(t *testing.T) {
	server := setupMockServer(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"response": {"header": {"resultCode": "00", "resultMsg": "NORMAL SERVICE."}, "body": {"items": "", "totalCount": 0}}}`))
	})
	defer server.Close()

	adapter := newTestBoardAdapter(t, server.URL)

	_, err := adapter.Fetch(context.Background(), FacilityQuery{Region1: "서울특별시"})
	if !errors.Is(err, ErrEmptyResult) {
		t.Errorf("Expected ErrEmptyResult, but got %v", err)
	}
}

func TestRegionalBoardFetch_UnsupportedRegion(t *testing.T) {
	adapter := newTestBoardAdapter(t, "http://unused")

	_, err := adapter.Fetch(context.Background(), FacilityQuery{Region1: "화성시"})
	if !errors.Is(err, ErrUnsupportedRegion) {
		t.Errorf("Expected ErrUnsupportedRegion, but got %v", err)
	}

	_, err = adapter.Fetch(context.Background(), FacilityQuery{})
	if !errors.Is(err, ErrUnsupportedRegion) {
		t.Errorf("Expected ErrUnsupportedRegion for a missing region, but got %v", err)
	}
}
