// Package cache stores hourly weather samples in Redis. Entries carry their
// own cached-at timestamp so freshness is decided at read time: a sample past
// its logical TTL is normally a miss but can still be served as stale fallback
// when the upstream API is down.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/astroseer/astroseer/internal/weather"
)

const (
	// defaultTTL is how long a sample counts as fresh.
	defaultTTL = time.Hour
	// physicalExpiry is how long Redis keeps the entry for stale reads.
	physicalExpiry = 48 * time.Hour
)

// entry is the stored form of a sample.
type entry struct {
	Sample   weather.Sample `json:"sample"`
	CachedAt time.Time      `json:"cached_at"`
}

// Cache wraps a Redis client with typed access to weather samples.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache constructs a Cache with a 1-hour freshness TTL.
func NewCache(client *redis.Client) *Cache {
	return &Cache{client: client, ttl: defaultTTL}
}

// NewCacheWithTTL constructs a Cache with a custom freshness TTL.
func NewCacheWithTTL(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// key identifies a sample by location rounded to ~1km and the hour it covers.
func key(lat, lon float64, t time.Time) string {
	return fmt.Sprintf("weather:%.2f:%.2f:%s", lat, lon, t.UTC().Truncate(time.Hour).Format("2006-01-02T15"))
}

// GetSample retrieves the sample covering t. Returns nil, nil on a miss.
// With ignoreTTL set, samples past their freshness TTL are still returned.
func (c *Cache) GetSample(ctx context.Context, lat, lon float64, t time.Time, ignoreTTL bool) (*weather.Sample, error) {
	val, err := c.client.Get(ctx, key(lat, lon, t)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("cache get at %.2f,%.2f: %w", lat, lon, err)
	}

	var e entry
	if err := json.Unmarshal([]byte(val), &e); err != nil {
		return nil, fmt.Errorf("unmarshaling cached sample at %.2f,%.2f: %w", lat, lon, err)
	}

	if !ignoreTTL && time.Since(e.CachedAt) > c.ttl {
		return nil, nil
	}
	return &e.Sample, nil
}

// SetSample stores a single sample under its hour slot.
func (c *Cache) SetSample(ctx context.Context, lat, lon float64, s *weather.Sample) error {
	if s == nil {
		return nil
	}

	b, err := json.Marshal(entry{Sample: *s, CachedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("marshaling sample at %.2f,%.2f: %w", lat, lon, err)
	}

	if err := c.client.Set(ctx, key(lat, lon, s.Timestamp), b, physicalExpiry).Err(); err != nil {
		return fmt.Errorf("cache set at %.2f,%.2f: %w", lat, lon, err)
	}
	return nil
}

// SetSamples stores a batch of forecast samples in one pipeline round trip.
func (c *Cache) SetSamples(ctx context.Context, lat, lon float64, samples []weather.Sample) error {
	if len(samples) == 0 {
		return nil
	}

	now := time.Now().UTC()
	pipe := c.client.Pipeline()
	for _, s := range samples {
		b, err := json.Marshal(entry{Sample: s, CachedAt: now})
		if err != nil {
			return fmt.Errorf("marshaling sample at %.2f,%.2f: %w", lat, lon, err)
		}
		pipe.Set(ctx, key(lat, lon, s.Timestamp), b, physicalExpiry)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache batch set at %.2f,%.2f: %w", lat, lon, err)
	}
	return nil
}

// GetSampleRange returns the fresh samples covering [from, to], in time order.
// Hours with no fresh entry are simply absent from the result.
func (c *Cache) GetSampleRange(ctx context.Context, lat, lon float64, from, to time.Time) ([]weather.Sample, error) {
	var keys []string
	for t := from.UTC().Truncate(time.Hour); !t.After(to); t = t.Add(time.Hour) {
		keys = append(keys, key(lat, lon, t))
	}
	if len(keys) == 0 {
		return nil, nil
	}

	vals, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("cache range get at %.2f,%.2f: %w", lat, lon, err)
	}

	var samples []weather.Sample
	for _, v := range vals {
		str, ok := v.(string)
		if !ok {
			continue
		}
		var e entry
		if err := json.Unmarshal([]byte(str), &e); err != nil {
			continue
		}
		if time.Since(e.CachedAt) > c.ttl {
			continue
		}
		samples = append(samples, e.Sample)
	}
	return samples, nil
}

// DeleteSample removes the cached entry for one hour slot.
func (c *Cache) DeleteSample(ctx context.Context, lat, lon float64, t time.Time) error {
	if err := c.client.Del(ctx, key(lat, lon, t)).Err(); err != nil {
		return fmt.Errorf("cache delete at %.2f,%.2f: %w", lat, lon, err)
	}
	return nil
}
