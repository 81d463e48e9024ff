// Package common provides shared utilities across the application.
package common

import (
	"fmt"
	"time"
)

// StalenessResult contains the result of a staleness check.
type StalenessResult struct {
	// IsStale indicates whether the cached entry is stale and needs refresh.
	IsStale bool
	// NextCheckTime is when the entry will become stale if it is currently
	// fresh. Zero when the entry is already stale.
	NextCheckTime time.Time
	// Reason provides a human-readable explanation for the decision.
	Reason string
}

// CheckCacheStaleness determines whether a cached entry fetched at fetchedAt
// is stale at time now, given the configured time-to-live.
//
// A zero fetchedAt means the entry was never fetched and is always stale.
// A non-positive TTL disables caching, so every entry is stale.
func CheckCacheStaleness(fetchedAt time.Time, now time.Time, ttl time.Duration) StalenessResult {
	if fetchedAt.IsZero() {
		return StalenessResult{
			IsStale: true,
			Reason:  "entry was never fetched",
		}
	}

	if ttl <= 0 {
		return StalenessResult{
			IsStale: true,
			Reason:  "caching disabled (non-positive TTL)",
		}
	}

	now = now.UTC()
	fetchedAt = fetchedAt.UTC()
	expiresAt := fetchedAt.Add(ttl)

	if !now.Before(expiresAt) {
		return StalenessResult{
			IsStale: true,
			Reason: fmt.Sprintf(
				"entry fetched %s expired at %s",
				fetchedAt.Format(time.RFC3339),
				expiresAt.Format(time.RFC3339),
			),
		}
	}

	return StalenessResult{
		IsStale:       false,
		NextCheckTime: expiresAt,
		Reason: fmt.Sprintf(
			"entry is fresh for another %s",
			expiresAt.Sub(now).Round(time.Second),
		),
	}
}
