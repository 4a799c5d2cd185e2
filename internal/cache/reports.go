// Package cache provides an optional read-through cache for computed reports.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/tinoosan/bookkeeping/internal/ledger"
)

// Reports stores encoded report results under a key.
type Reports interface {
	// Get decodes the cached value into v and reports whether it was present.
	Get(ctx context.Context, key string, v any) (bool, error)
	Set(ctx context.Context, key string, v any) error
	// Generation returns the entity's current report generation. Keys built
	// with an older generation are never read again.
	Generation(ctx context.Context, entityID uuid.UUID) (int64, error)
	// Invalidate bumps the entity's generation after its accounts change.
	Invalidate(ctx context.Context, entityID uuid.UUID) error
}

// Noop is used when no cache is configured. Every Get misses.
type Noop struct{}

func (Noop) Get(context.Context, string, any) (bool, error)       { return false, nil }
func (Noop) Set(context.Context, string, any) error               { return nil }
func (Noop) Generation(context.Context, uuid.UUID) (int64, error) { return 0, nil }
func (Noop) Invalidate(context.Context, uuid.UUID) error          { return nil }

// Redis caches reports in Redis with a fixed TTL.
type Redis struct {
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedis connects to addr and verifies the connection with a ping.
func NewRedis(ctx context.Context, addr, password string, ttl time.Duration) (*Redis, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr, Password: password})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Redis{rdb: rdb, ttl: ttl, prefix: "bookkeeping:report:"}, nil
}

func (r *Redis) Get(ctx context.Context, key string, v any) (bool, error) {
	b, err := r.rdb.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(b, v); err != nil {
		return false, err
	}
	return true, nil
}

func (r *Redis) Set(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, r.prefix+key, b, r.ttl).Err()
}

func (r *Redis) genKey(entityID uuid.UUID) string {
	return r.prefix + "gen:" + entityID.String()
}

func (r *Redis) Generation(ctx context.Context, entityID uuid.UUID) (int64, error) {
	n, err := r.rdb.Get(ctx, r.genKey(entityID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

// Invalidate increments the generation counter. The counter has no TTL.
func (r *Redis) Invalidate(ctx context.Context, entityID uuid.UUID) error {
	return r.rdb.Incr(ctx, r.genKey(entityID)).Err()
}

// Ready pings Redis.
func (r *Redis) Ready(ctx context.Context) error { return r.rdb.Ping(ctx).Err() }

// Close releases the client.
func (r *Redis) Close() error { return r.rdb.Close() }

// SectionKey identifies a section-balance report at a cache generation. Type order does not matter.
func SectionKey(kind string, entityID uuid.UUID, gen int64, types []ledger.AccountType, start, end time.Time) string {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	sort.Strings(names)
	return strings.Join([]string{
		kind,
		entityID.String(),
		strconv.FormatInt(gen, 10),
		strings.Join(names, ","),
		start.UTC().Format(time.RFC3339Nano),
		end.UTC().Format(time.RFC3339Nano),
	}, "|")
}
