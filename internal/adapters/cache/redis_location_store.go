package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"trip-analytics-service/internal/domain"
	"trip-analytics-service/internal/ports"
)

const redisKeyPrefix = "geocode:"

// RedisLocationStore is a Redis-backed cross-run location cache.
// Entries have no TTL: a coordinate's location does not go stale.
type RedisLocationStore struct {
	Client *redis.Client
}

func NewRedisLocationStore(client *redis.Client) *RedisLocationStore {
	return &RedisLocationStore{Client: client}
}

type redisLocation struct {
	City    string `json:"city"`
	Country string `json:"country"`
	Region  string `json:"region"`
}

// Fetch cached locations for the given keys.
func (s *RedisLocationStore) GetMany(
	ctx context.Context,
	keys []domain.CoordinateKey,
) (map[domain.CoordinateKey]domain.Location, error) {
	if s.Client == nil {
		return nil, errors.New("redis location store: client is nil")
	}

	if len(keys) == 0 {
		return map[domain.CoordinateKey]domain.Location{}, nil
	}

	redisKeys := make([]string, 0, len(keys))
	for _, k := range keys {
		redisKeys = append(redisKeys, redisKeyPrefix+k.String())
	}

	values, err := s.Client.MGet(ctx, redisKeys...).Result()
	if err != nil {
		return nil, fmt.Errorf("get location cache: mget: %w", err)
	}

	out := make(map[domain.CoordinateKey]domain.Location, len(keys))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}

		var loc redisLocation
		if err := json.Unmarshal([]byte(raw), &loc); err != nil {
			return nil, fmt.Errorf("get location cache: decode key %q: %w", redisKeys[i], err)
		}
		out[keys[i]] = domain.Location{City: loc.City, Country: loc.Country, Region: loc.Region}
	}

	return out, nil
}

// Store key -> location mappings in the cache.
func (s *RedisLocationStore) PutMany(
	ctx context.Context,
	entries map[domain.CoordinateKey]domain.Location,
) error {
	if s.Client == nil {
		return errors.New("redis location store: client is nil")
	}

	if len(entries) == 0 {
		return nil
	}

	pipe := s.Client.Pipeline()
	for k, loc := range entries {
		raw, err := json.Marshal(redisLocation{City: loc.City, Country: loc.Country, Region: loc.Region})
		if err != nil {
			return fmt.Errorf("insert location cache: encode key %q: %w", k.String(), err)
		}
		pipe.Set(ctx, redisKeyPrefix+k.String(), raw, 0)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("insert location cache: pipeline exec: %w", err)
	}

	return nil
}

var _ ports.LocationStore = (*RedisLocationStore)(nil)
