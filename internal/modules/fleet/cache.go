// README: Fleet listing cache backed by Redis (deflated JSON with TTL).
package fleet

import (
	"bytes"
	"compress/flate"
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const vehiclesKey = "fleet:vehicles"

type Cache struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewCache(redis *redis.Client, ttl time.Duration) *Cache {
	return &Cache{redis: redis, ttl: ttl}
}

// Vehicles returns the cached listing and whether it was present.
func (c *Cache) Vehicles(ctx context.Context) ([]Vehicle, bool, error) {
	raw, err := c.redis.Get(ctx, vehiclesKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	plain, err := inflate(raw)
	if err != nil {
		return nil, false, err
	}
	var vehicles []Vehicle
	if err := json.Unmarshal(plain, &vehicles); err != nil {
		return nil, false, err
	}
	return vehicles, true, nil
}

func (c *Cache) StoreVehicles(ctx context.Context, vehicles []Vehicle) error {
	payload, err := encodeVehicles(vehicles)
	if err != nil {
		return err
	}
	return c.redis.SetEx(ctx, vehiclesKey, payload, c.ttl).Err()
}

func encodeVehicles(vehicles []Vehicle) ([]byte, error) {
	plain, err := json.Marshal(vehicles)
	if err != nil {
		return nil, err
	}
	return deflate(plain)
}

func deflate(uncompressed []byte) ([]byte, error) {
	var buffer bytes.Buffer
	writer, err := flate.NewWriter(&buffer, flate.BestSpeed)
	if err != nil {
		return nil, err
	}
	if _, err := writer.Write(uncompressed); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

func inflate(compressed []byte) ([]byte, error) {
	reader := flate.NewReader(bytes.NewReader(compressed))
	defer reader.Close()

	var out bytes.Buffer
	if _, err := out.ReadFrom(reader); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
