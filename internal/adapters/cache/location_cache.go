package cache

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"trip-analytics-service/internal/domain"
	"trip-analytics-service/internal/ports"
)

// LocationCache is the deduplicating, concurrency-safe store mapping a
// rounded coordinate to its resolved location. It fronts the external
// geocoder: hits are served from memory with no synchronization beyond a
// read lock, and concurrent misses for the same key collapse into a
// single geocoder call.
//
// An optional persistent LocationStore is consulted between the in-memory
// map and the geocoder, so distinct coordinates already resolved by a
// previous run cost one store read instead of an external call.
//
// Entries are never evicted within a run: memory is bounded by
// distinct-coordinate cardinality, not record cardinality.
type LocationCache struct {
	geocoder ports.Geocoder
	store    ports.LocationStore

	group   singleflight.Group
	mu      sync.RWMutex
	entries map[domain.CoordinateKey]domain.Location
}

// NewLocationCache builds a cache over the given geocoder. store may be
// nil, in which case only the in-memory tier is used.
func NewLocationCache(geocoder ports.Geocoder, store ports.LocationStore) *LocationCache {
	return &LocationCache{
		geocoder: geocoder,
		store:    store,
		entries:  make(map[domain.CoordinateKey]domain.Location),
	}
}

// Resolve returns the location for the coordinate's rounded key.
//
// Geocoding failures degrade to domain.UnknownLocation, which is cached
// like any other result so a failing key is looked up at most once per
// run. Resolve therefore always completes and never returns an error.
func (c *LocationCache) Resolve(ctx context.Context, coord domain.Coordinates) domain.Location {
	key := coord.Key()

	c.mu.RLock()
	loc, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		return loc
	}

	// Collapse concurrent misses for the same key into one lookup.
	v, _, _ := c.group.Do(key.String(), func() (any, error) {
		// A concurrent caller may have stored the entry between the
		// read above and entering the group.
		c.mu.RLock()
		loc, ok := c.entries[key]
		c.mu.RUnlock()
		if ok {
			return loc, nil
		}

		loc = c.lookup(ctx, key, coord)

		c.mu.Lock()
		c.entries[key] = loc
		c.mu.Unlock()

		return loc, nil
	})

	return v.(domain.Location)
}

func (c *LocationCache) lookup(ctx context.Context, key domain.CoordinateKey, coord domain.Coordinates) domain.Location {
	if c.store != nil {
		stored, err := c.store.GetMany(ctx, []domain.CoordinateKey{key})
		if err != nil {
			log.Warn().Str("key", key.String()).Err(err).Msg("location store read failed")
		} else if loc, ok := stored[key]; ok {
			return loc
		}
	}

	loc, err := c.geocoder.ReverseGeocode(ctx, coord)
	if err != nil {
		log.Warn().Str("key", key.String()).Err(err).Msg("reverse geocode failed, using Unknown")
		return domain.UnknownLocation
	}

	if c.store != nil {
		err := c.store.PutMany(ctx, map[domain.CoordinateKey]domain.Location{key: loc})
		if err != nil {
			log.Warn().Str("key", key.String()).Err(err).Msg("location store write failed")
		}
	}

	return loc
}

// Len reports the number of distinct keys resolved so far.
func (c *LocationCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

var _ ports.LocationResolver = (*LocationCache)(nil)
