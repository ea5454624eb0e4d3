package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"snappoint/pkg/logger"
)

// ErrUnavailable is returned when a batch cannot be resolved from the cache or its
// backing source.
var ErrUnavailable = errors.New("cache: value unavailable")

func BlockKey(postID string) string {
	return "block:" + postID
}

func FileKey(blockID string) string {
	return "file:" + blockID
}

// Gateway is a cache-aside front for list-valued keys.
type Gateway struct {
	store  Store
	ttl    time.Duration
	logger *logger.Logger
}

func NewGateway(store Store, ttl time.Duration, logger *logger.Logger) *Gateway {
	return &Gateway{store: store, ttl: ttl, logger: logger}
}

// BatchGet resolves keys in one store round trip. Misses are deduplicated and handed
// to a single populate call, which must return one list per missing key in the same
// order. Populated values are written back best-effort. The result is aligned with keys.
func BatchGet[T any](
	ctx context.Context,
	g *Gateway,
	keys []string,
	decode func([]byte) ([]T, error),
	populate func(ctx context.Context, missing []string) ([][]T, error),
) ([][]T, error) {
	result := make([][]T, len(keys))
	if len(keys) == 0 {
		return result, nil
	}

	raw, err := g.store.MGet(ctx, keys)
	if err != nil {
		g.logger.Warn("[CACHE] mget failed, falling back to source: %v", err)
		raw = make([][]byte, len(keys))
	}

	var missing []string
	seen := make(map[string]bool)
	hit := make([]bool, len(keys))
	for i, key := range keys {
		if i < len(raw) && raw[i] != nil {
			values, err := decode(raw[i])
			if err == nil {
				result[i] = values
				hit[i] = true
				continue
			}
			g.logger.Warn("[CACHE] corrupt entry for %s: %v", key, err)
		}
		if !seen[key] {
			seen[key] = true
			missing = append(missing, key)
		}
	}

	if len(missing) == 0 {
		return result, nil
	}

	populated, err := populate(ctx, missing)
	if err != nil {
		return nil, err
	}
	if len(populated) != len(missing) {
		return nil, fmt.Errorf("%w: populate returned %d lists for %d keys", ErrUnavailable, len(populated), len(missing))
	}

	byKey := make(map[string][]T, len(missing))
	entries := make(map[string][]byte, len(missing))
	for i, key := range missing {
		values := populated[i]
		if values == nil {
			values = []T{}
		}
		byKey[key] = values

		encoded, err := json.Marshal(values)
		if err != nil {
			g.logger.Warn("[CACHE] failed to encode %s: %v", key, err)
			continue
		}
		entries[key] = encoded
	}

	for i, key := range keys {
		if !hit[i] {
			result[i] = byKey[key]
		}
	}

	if err := g.store.Set(ctx, entries, g.ttl); err != nil {
		g.logger.Warn("[CACHE] write-back failed for %d keys: %v", len(entries), err)
	}

	return result, nil
}

// Delete removes keys in one call. Missing keys are not an error.
func (g *Gateway) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := g.store.Del(ctx, keys...); err != nil {
		return fmt.Errorf("cache delete: %w", err)
	}
	g.logger.Debug("[CACHE] invalidated %v", keys)
	return nil
}

// JSONDecoder decodes a cached JSON array of T.
func JSONDecoder[T any]() func([]byte) ([]T, error) {
	return func(data []byte) ([]T, error) {
		var values []T
		if err := json.Unmarshal(data, &values); err != nil {
			return nil, err
		}
		if values == nil {
			values = []T{}
		}
		return values, nil
	}
}
