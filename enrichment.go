package main

import (
	"context"
	"sync"
)

// This file performs per-record phone-number backfill. The government
// sources frequently ship records without phone numbers, and the map-search
// provider is the only upstream that reliably has them. The lookups are
// independent per record, so they run concurrently, but behind a bounded
// semaphore so a 30-record result does not burst 30 simultaneous requests
// into the provider's rate limit. One record's failed lookup degrades that
// record alone to an empty phone; it never fails the batch.

func (cfg *apiConfig) backfillPhones(ctx context.Context, records []FacilityRecord) {
	limit := cfg.enrichConcurrency
	if limit <= 0 {
		limit = 1
	}
	semaphore := make(chan struct{}, limit)

	var wg sync.WaitGroup
	for i := range records {
		if records[i].Phone != "" {
			continue
		}
		if ctx.Err() != nil {
			break
		}

		wg.Add(1)
		semaphore <- struct{}{}
		go func(record *FacilityRecord) {
			defer wg.Done()
			defer func() { <-semaphore }()

			phone, err := cfg.categorySearch.LookupPhone(ctx, record.Name, record.Coordinates)
			if err != nil {
				cfg.logger.Debug("phone backfill miss", "facility", record.Name, "error", err)
				return
			}
			record.Phone = phone
		}(&records[i])
	}
	wg.Wait()
}
