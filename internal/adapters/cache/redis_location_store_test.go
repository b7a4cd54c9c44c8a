package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"trip-analytics-service/internal/domain"
)

func newTestRedisStore(t *testing.T) *RedisLocationStore {
	t.Helper()

	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisLocationStore(client)
}

func TestRedisLocationStoreRoundTrip(t *testing.T) {
	store := newTestRedisStore(t)
	ctx := context.Background()

	turinKey := domain.Coordinates{Lat: 45.0705, Lon: 7.6866}.Key()
	milanKey := domain.Coordinates{Lat: 45.4642, Lon: 9.19}.Key()

	entries := map[domain.CoordinateKey]domain.Location{
		turinKey: {City: "Turin", Country: "IT", Region: "Piedmont"},
		milanKey: {City: "Milan", Country: "IT", Region: "Lombardy"},
	}

	if err := store.PutMany(ctx, entries); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	missingKey := domain.Coordinates{Lat: 1, Lon: 1}.Key()
	got, err := store.GetMany(ctx, []domain.CoordinateKey{turinKey, milanKey, missingKey})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("got %d entries, want 2", len(got))
	}
	if got[turinKey].City != "Turin" || got[turinKey].Region != "Piedmont" {
		t.Errorf("turin entry = %+v", got[turinKey])
	}
	if got[milanKey].City != "Milan" {
		t.Errorf("milan entry = %+v", got[milanKey])
	}
	if _, ok := got[missingKey]; ok {
		t.Error("missing key should be absent from result")
	}
}

func TestRedisLocationStoreGetManyEmpty(t *testing.T) {
	store := newTestRedisStore(t)

	got, err := store.GetMany(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("got %d entries, want 0", len(got))
	}
}
