package llm

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// Dedup coalesces concurrent calls for the same key onto one computation.
// The in-process singleflight.Group handles same-process concurrency for
// free; the Redis lock extends the same guarantee across process
// boundaries, matching spec.md §4.1's "for any key in flight, concurrent
// callers coalesce onto a single in-flight computation" when the substrate
// is horizontally scaled.
type Dedup struct {
	local *singleflight.Group
	redis *redis.Client
	// MaxWait bounds how long a distributed waiter polls for the lock
	// holder's result before falling through to an independent call.
	MaxWait time.Duration
}

func NewDedup(client *redis.Client, maxWait time.Duration) *Dedup {
	return &Dedup{local: &singleflight.Group{}, redis: client, MaxWait: maxWait}
}

// Do coalesces calls to fn by key: the first caller in this process runs
// fn; concurrent same-process callers block on its result via
// singleflight. Across processes, the first caller also holds a short
// Redis lock; other processes' first-callers poll the result key for
// MaxWait before giving up and calling fn independently (spec.md §4.1:
// "on timeout, the waiter falls back to an independent call").
func (d *Dedup) Do(ctx context.Context, key string, fn func() (cachedResult, error)) (cachedResult, error, bool) {
	v, err, shared := d.local.Do(key, func() (any, error) {
		return d.doDistributed(ctx, key, fn)
	})
	if err != nil {
		return cachedResult{}, err, shared
	}
	return v.(cachedResult), nil, shared
}

func (d *Dedup) doDistributed(ctx context.Context, key string, fn func() (cachedResult, error)) (cachedResult, error) {
	if d.redis == nil {
		return fn()
	}

	lockKey := "llm:lock:" + key
	resultKey := "llm:result:" + key
	token := uuid.NewString()

	acquired, err := d.redis.SetNX(ctx, lockKey, token, 30*time.Second).Result()
	if err != nil {
		// Redis unavailable: degrade to independent execution rather than
		// blocking the call on a broken dedup layer.
		return fn()
	}

	if acquired {
		defer d.releaseLock(ctx, lockKey, token)
		result, err := fn()
		if err != nil {
			return cachedResult{}, err
		}
		if raw, marshalErr := json.Marshal(result); marshalErr == nil {
			d.redis.Set(ctx, resultKey, raw, 30*time.Second)
		}
		return result, nil
	}

	result, found := d.awaitResult(ctx, resultKey)
	if found {
		return result, nil
	}
	// MaxWait elapsed without the holder publishing a result: fall through
	// to an independent call rather than waiting indefinitely.
	return fn()
}

func (d *Dedup) awaitResult(ctx context.Context, resultKey string) (cachedResult, bool) {
	deadline := time.Now().Add(d.MaxWait)
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return cachedResult{}, false
		case <-ticker.C:
			raw, err := d.redis.Get(ctx, resultKey).Bytes()
			if err == nil {
				var cr cachedResult
				if json.Unmarshal(raw, &cr) == nil {
					return cr, true
				}
			}
		}
	}
	return cachedResult{}, false
}

func (d *Dedup) releaseLock(ctx context.Context, lockKey, token string) {
	// Only release if we still hold the lock (best-effort; a stale release
	// racing a new holder is a correctness bug the CAS below avoids).
	script := redis.NewScript(`
		if redis.call("GET", KEYS[1]) == ARGV[1] then
			return redis.call("DEL", KEYS[1])
		end
		return 0
	`)
	script.Run(ctx, d.redis, []string{lockKey}, token)
}

