package constants

import "time"

// Redis cache keys and TTLs.
// Pattern: buslane:{module}:{operation}:{identifier}
//
// Only trip data is cached. Seat maps are never cached: hold state has to
// be read fresh from the store so expiry is always reflected.

const (
	CACHE_PREFIX = "buslane"
)

// Trip cache keys
const (
	CACHE_KEY_TRIPS_ACTIVE = CACHE_PREFIX + ":trips:active:all"
	CACHE_KEY_TRIP_DETAIL  = CACHE_PREFIX + ":trips:detail:uuid:" // + trip-id
)

// Trip cache TTLs. The active listing changes when an admin creates or
// deactivates a trip, and both paths invalidate explicitly; the TTL is a
// backstop.
const (
	TTL_TRIPS_ACTIVE = 15 * time.Minute
	TTL_TRIP_DETAIL  = 1 * time.Hour
)

// Invalidation patterns
const (
	PATTERN_INVALIDATE_TRIPS_ALL = CACHE_PREFIX + ":trips:*"
)

func BuildTripDetailKey(tripID string) string {
	return CACHE_KEY_TRIP_DETAIL + tripID
}
