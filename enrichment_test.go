package main

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBackfillPhones(t *testing.T) {
	server := setupMockServer(func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Query().Get("query")
		w.WriteHeader(http.StatusOK)
		if name == "전화없는병원" {
			_, _ = w.Write([]byte(`{"documents": [], "meta": {"is_end": true}}`))
			return
		}
		_, _ = fmt.Fprintf(w, `{"documents": [{"id": "1", "place_name": %q, "phone": "02-555-0101", "x": "127.0", "y": "37.5"}], "meta": {"is_end": true}}`, name)
	})
	defer server.Close()

	cfg := newTestConfig(t)
	cfg.categorySearch = NewCategorySearchAdapter("dummy-key", server.URL+"/", http.DefaultClient, cfg.logger)

	records := []FacilityRecord{
		{Name: "서울내과의원"},
		{Name: "이미있는병원", Phone: "02-777-0000"},
		{Name: "전화없는병원"},
		{Name: "튼튼정형외과의원"},
	}

	cfg.backfillPhones(context.Background(), records)

	assert.Equal(t, "02-555-0101", records[0].Phone)
	assert.Equal(t, "02-777-0000", records[1].Phone, "records with phones are not re-looked-up")
	assert.Empty(t, records[2].Phone, "a failed lookup degrades that record alone")
	assert.Equal(t, "02-555-0101", records[3].Phone)
}

func TestBackfillPhones_BoundedConcurrency(t *testing.T) {
	var mu sync.Mutex
	inFlight, maxInFlight := 0, 0

	server := setupMockServer(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		inFlight++
		if inFlight > maxInFlight {
			maxInFlight = inFlight
		}
		mu.Unlock()

		defer func() {
			mu.Lock()
			inFlight--
			mu.Unlock()
		}()

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"documents": [{"id": "1", "place_name": "병원", "phone": "02-555-0101", "x": "127.0", "y": "37.5"}], "meta": {"is_end": true}}`))
	})
	defer server.Close()

	cfg := newTestConfig(t)
	cfg.enrichConcurrency = 2
	cfg.categorySearch = NewCategorySearchAdapter("dummy-key", server.URL+"/", http.DefaultClient, cfg.logger)

	records := make([]FacilityRecord, 12)
	for i := range records {
		records[i] = FacilityRecord{Name: fmt.Sprintf("병원%d", i)}
	}

	cfg.backfillPhones(context.Background(), records)

	assert.LessOrEqual(t, maxInFlight, 2, "lookups must respect the concurrency bound")
	for i := range records {
		assert.NotEmpty(t, records[i].Phone)
	}
}

func TestBackfillPhones_CancelledContext(t *testing.T) {
	var requests int
	var mu sync.Mutex
	server := setupMockServer(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		requests++
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"documents": [], "meta": {"is_end": true}}`))
	})
	defer server.Close()

	cfg := newTestConfig(t)
	cfg.categorySearch = NewCategorySearchAdapter("dummy-key", server.URL+"/", http.DefaultClient, cfg.logger)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	records := []FacilityRecord{{Name: "병원1"}, {Name: "병원2"}}
	cfg.backfillPhones(ctx, records)

	mu.Lock()
	defer mu.Unlock()
	assert.Zero(t, requests, "no lookups start after cancellation")
}
