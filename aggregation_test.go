package main

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newAggregationTestConfig wires an apiConfig whose three upstream adapters
// point at the given test servers. Pass an empty URL to leave an upstream
// answering 404s (httptest servers reject unknown paths anyway).
func newAggregationTestConfig(t *testing.T, boardURL, registryURL, kakaoURL string) *apiConfig {
	t.Helper()
	cfg := newTestConfig(t)
	cfg.regionalBoard = NewRegionalBoardAdapter("dummy-key", boardURL+"/", cfg.regions, http.DefaultClient, cfg.logger)
	cfg.radiusSearch = NewRadiusSearchAdapter("dummy-key", registryURL+"/", http.DefaultClient, cfg.logger)
	cfg.categorySearch = NewCategorySearchAdapter("dummy-key", kakaoURL+"/", http.DefaultClient, cfg.logger)
	return cfg
}

func TestFindFacilities_RegionalEmergencyPath(t *testing.T) {
	boardServer := setupMockServer(serveFixture(t, "board_items.json"))
	defer boardServer.Close()
	kakaoServer := setupMockServer(func(w http.ResponseWriter, r *http.Request) {
		t.Error("the map-search provider should not be consulted when the board succeeds")
	})
	defer kakaoServer.Close()

	cfg := newAggregationTestConfig(t, boardServer.URL, "http://unused", kakaoServer.URL)

	records, err := cfg.findFacilities(context.Background(), FacilityQuery{
		Lat:           37.5665,
		Lng:           126.9780,
		Region1:       "서울",
		EmergencyOnly: true,
	})
	require.NoError(t, err)
	require.Len(t, records, 2)

	// Sorted ascending by distance from the reference point.
	assert.Equal(t, "A1100001", records[0].ID)
	assert.Equal(t, "A1100002", records[1].ID)
	assert.Less(t, records[0].DerivedDistanceKm, records[1].DerivedDistanceKm)

	for _, record := range records {
		assert.Equal(t, CategoryEmergencyRoom, record.Category)
		require.NotNil(t, record.BedInfo)
		assert.NotEmpty(t, record.Phone)
	}
	assert.Equal(t, 12, records[0].BedInfo.AvailableBeds)
}

func TestFindFacilities_RegionOnlyQueryHasNoDistances(t *testing.T) {
	boardServer := setupMockServer(serveFixture(t, "board_items.json"))
	defer boardServer.Close()

	cfg := newAggregationTestConfig(t, boardServer.URL, "http://unused", "http://unused")

	records, err := cfg.findFacilities(context.Background(), FacilityQuery{
		Region1:       "서울특별시",
		EmergencyOnly: true,
	})
	require.NoError(t, err)
	require.Len(t, records, 2)

	// Without a reference point there is nothing to measure from, so no
	// distance is derived and the board's ordering is kept as-is.
	assert.Equal(t, "A1100001", records[0].ID)
	assert.Equal(t, "A1100002", records[1].ID)
	for _, record := range records {
		assert.False(t, record.DerivedDistanceKnown)
		assert.Zero(t, record.DerivedDistanceKm)
	}
}

func TestFindFacilities_RadiusClinicPath(t *testing.T) {
	registryServer := setupMockServer(serveFixture(t, "registry_items.json"))
	defer registryServer.Close()

	cfg := newAggregationTestConfig(t, "http://unused", registryServer.URL, "http://unused")

	records, err := cfg.findFacilities(context.Background(), FacilityQuery{
		Lat: 37.5665,
		Lng: 126.9780,
	})
	require.NoError(t, err)

	// Pharmacies and emergency rooms are filtered off the clinic page.
	require.Len(t, records, 2)
	assert.Equal(t, "서울내과의원", records[0].Name)
	assert.Equal(t, "강남세브란스병원", records[1].Name)
	assert.Less(t, records[0].DerivedDistanceKm, records[1].DerivedDistanceKm)

	assert.Equal(t, "내과", records[0].DerivedDepartment)
	assert.Equal(t, "일반", records[1].DerivedDepartment)
	require.NotNil(t, records[0].OperatingHours)
}

func TestFindFacilities_RadiusEmergencyPathJoinsBeds(t *testing.T) {
	registryServer := setupMockServer(serveFixture(t, "registry_items.json"))
	defer registryServer.Close()
	boardServer := setupMockServer(serveFixture(t, "board_items.json"))
	defer boardServer.Close()

	cfg := newAggregationTestConfig(t, boardServer.URL, registryServer.URL, "http://unused")
	cfg.geocoder = &mockGeocodingService{
		ReverseGeocodeFunc: func(ctx context.Context, lat, lng float64) (RegionAddress, error) {
			return RegionAddress{Address: "서울특별시 종로구 대학로 101", Region1: "서울특별시", Region2: "종로구"}, nil
		},
	}

	records, err := cfg.findFacilities(context.Background(), FacilityQuery{
		Lat:           37.5665,
		Lng:           126.9780,
		EmergencyOnly: true,
	})
	require.NoError(t, err)
	require.Len(t, records, 1)

	record := records[0]
	assert.Equal(t, "서울대학교병원", record.Name)
	require.NotNil(t, record.BedInfo, "bed data from the board should be joined onto the registry record")
	assert.Equal(t, 12, record.BedInfo.AvailableBeds)
	assert.Equal(t, 27, record.BedInfo.TotalBeds)
}

func TestFindFacilities_BedJoinFailureDegrades(t *testing.T) {
	registryServer := setupMockServer(serveFixture(t, "registry_items.json"))
	defer registryServer.Close()
	boardServer := setupMockServer(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	defer boardServer.Close()

	cfg := newAggregationTestConfig(t, boardServer.URL, registryServer.URL, "http://unused")
	cfg.geocoder = &mockGeocodingService{
		ReverseGeocodeFunc: func(ctx context.Context, lat, lng float64) (RegionAddress, error) {
			return RegionAddress{Region1: "서울특별시"}, nil
		},
	}

	records, err := cfg.findFacilities(context.Background(), FacilityQuery{
		Lat:           37.5665,
		Lng:           126.9780,
		EmergencyOnly: true,
	})
	require.NoError(t, err, "a failed bed-availability call must not fail the query")
	require.Len(t, records, 1)
	assert.Nil(t, records[0].BedInfo)
}

func TestFindFacilities_ResultCap(t *testing.T) {
	registryServer := setupMockServer(serveFixture(t, "registry_items.json"))
	defer registryServer.Close()

	cfg := newAggregationTestConfig(t, "http://unused", registryServer.URL, "http://unused")
	cfg.maxResults = 1

	records, err := cfg.findFacilities(context.Background(), FacilityQuery{
		Lat: 37.5665,
		Lng: 126.9780,
	})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "서울내과의원", records[0].Name, "truncation keeps the nearest records")
}

func TestFindFacilities_AllSourcesExhausted(t *testing.T) {
	failing := setupMockServer(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	defer failing.Close()

	cfg := newAggregationTestConfig(t, failing.URL, failing.URL, failing.URL)

	_, err := cfg.findFacilities(context.Background(), FacilityQuery{
		Lat:     37.5665,
		Lng:     126.9780,
		Region1: "서울특별시",
	})
	require.Error(t, err)

	var noData *NoDataAvailableError
	require.True(t, errors.As(err, &noData))
	assert.Len(t, noData.Attempts, 2)
}

func TestFindFacilities_SurrogateIDAndCoordinateFallback(t *testing.T) {
	boardServer := setupMockServer(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"response": {"header": {"resultCode": "00", "resultMsg": "NORMAL SERVICE."}, "body": {"items": {"item": {"dutyName": "이름만있는병원", "dutyAddr": "서울특별시 중구", "dutyTel1": "02-123-4567"}}, "totalCount": 1}}}`))
	})
	defer boardServer.Close()

	cfg := newAggregationTestConfig(t, boardServer.URL, "http://unused", "http://unused")

	records, err := cfg.findFacilities(context.Background(), FacilityQuery{
		Lat:           37.5665,
		Lng:           126.9780,
		Region1:       "서울특별시",
		EmergencyOnly: true,
	})
	require.NoError(t, err)
	require.Len(t, records, 1)

	record := records[0]
	assert.NotEmpty(t, record.ID, "records without an upstream code get a surrogate ID")
	assert.Equal(t, 37.5665, record.Coordinates.Lat, "records without coordinates inherit the reference point")
	assert.Equal(t, 0.0, record.DerivedDistanceKm)
}

func TestFilterByCategory(t *testing.T) {
	records := []FacilityRecord{
		{Name: "응급실", Category: CategoryEmergencyRoom},
		{Name: "병원", Category: CategoryGeneralHospital},
		{Name: "의원", Category: CategoryClinic},
		{Name: "약국", Category: CategoryPharmacy},
	}

	emergency := filterByCategory(append([]FacilityRecord(nil), records...), true)
	require.Len(t, emergency, 1)
	assert.Equal(t, CategoryEmergencyRoom, emergency[0].Category)

	clinics := filterByCategory(append([]FacilityRecord(nil), records...), false)
	require.Len(t, clinics, 2)
	for _, record := range clinics {
		assert.NotEqual(t, CategoryPharmacy, record.Category)
		assert.NotEqual(t, CategoryEmergencyRoom, record.Category)
	}
}
