package geocode

import (
	"context"
	"fmt"
	"sync"

	"trip-analytics-service/internal/domain"
)

// MockGeocoder serves canned locations from a fixed table, counting
// lookups per key. Used in tests and for offline runs.
type MockGeocoder struct {
	mu    sync.Mutex
	m     map[domain.CoordinateKey]domain.Location
	calls map[domain.CoordinateKey]int
}

func NewMockGeocoder(entries map[domain.CoordinateKey]domain.Location) *MockGeocoder {
	m := make(map[domain.CoordinateKey]domain.Location, len(entries))
	for k, v := range entries {
		m[k] = v
	}
	return &MockGeocoder{m: m, calls: make(map[domain.CoordinateKey]int)}
}

func (g *MockGeocoder) ReverseGeocode(ctx context.Context, coord domain.Coordinates) (domain.Location, error) {
	key := coord.Key()

	g.mu.Lock()
	g.calls[key]++
	loc, ok := g.m[key]
	g.mu.Unlock()

	if !ok {
		return domain.Location{}, fmt.Errorf("missing location for %s", key)
	}
	return loc, nil
}

// Calls reports how many times the given key was looked up.
func (g *MockGeocoder) Calls(key domain.CoordinateKey) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[key]
}

// TotalCalls reports the total number of lookups across all keys.
func (g *MockGeocoder) TotalCalls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	total := 0
	for _, n := range g.calls {
		total += n
	}
	return total
}
