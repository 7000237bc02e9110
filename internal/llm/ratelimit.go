package llm

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"lexigraph.dev/dictionary/common/apierr"
	"lexigraph.dev/dictionary/core/config"
)

// RateLimiter enforces the two bucket groups from spec.md §4.1: request
// buckets (per-minute, per-hour) and token buckets (per-minute estimated
// with actual-token correction, per-day). State is process-global in the
// sense spec.md §5 requires ("behind an internal lock") but implemented
// against Redis sorted sets so the buckets are actually shared across every
// process of a horizontally scaled substrate, not just one.
type RateLimiter struct {
	redis *redis.Client
	cfg   config.RateConfig
}

func NewRateLimiter(client *redis.Client, cfg config.RateConfig) *RateLimiter {
	return &RateLimiter{redis: client, cfg: cfg}
}

// AdmitRequest checks the per-minute and per-hour request buckets for
// callerID, recording this call if both are under their limits. Denied
// admissions return apierr.RateLimited with a retry-after hint.
func (r *RateLimiter) AdmitRequest(ctx context.Context, callerID string) error {
	now := time.Now()
	if err := r.slideAndCheck(ctx, requestKey(callerID, "minute"), now, time.Minute, r.cfg.RequestsPerMinute); err != nil {
		return err
	}
	return r.slideAndCheck(ctx, requestKey(callerID, "hour"), now, time.Hour, r.cfg.RequestsPerHour)
}

// AdmitTokens checks the per-minute token bucket against estimatedTokens
// before dispatch. The per-day bucket records the same entry but is not
// checked against any limit. The entry recorded here carries estimatedTokens as its weight until
// CorrectTokens replaces it with the actual usage.
func (r *RateLimiter) AdmitTokens(ctx context.Context, callerID string, estimatedTokens int) (entryID string, err error) {
	now := time.Now()
	minuteKey := tokenKey(callerID, "minute")
	dayKey := tokenKey(callerID, "day")

	if err := r.evictStale(ctx, minuteKey, now, time.Minute); err != nil {
		return "", err
	}
	if err := r.evictStale(ctx, dayKey, now, 24*time.Hour); err != nil {
		return "", err
	}

	minuteTotal, err := r.sumWeights(ctx, minuteKey)
	if err != nil {
		return "", err
	}
	if minuteTotal+estimatedTokens > r.cfg.TokensPerMinute {
		return "", apierr.RateLimited(time.Minute)
	}

	entryID = uuid.NewString()
	member := weightedMember(entryID, estimatedTokens)
	pipe := r.redis.Pipeline()
	pipe.ZAdd(ctx, minuteKey, redis.Z{Score: float64(now.UnixNano()), Member: member})
	pipe.ZAdd(ctx, dayKey, redis.Z{Score: float64(now.UnixNano()), Member: member})
	pipe.Expire(ctx, minuteKey, time.Minute+time.Second)
	pipe.Expire(ctx, dayKey, 24*time.Hour+time.Second)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", err
	}
	return entryID, nil
}

// CorrectTokens replaces the estimated-token entry with the actual usage
// recorded post-call, per spec.md §4.1's "actual tokens correction".
func (r *RateLimiter) CorrectTokens(ctx context.Context, callerID, entryID string, estimated, actual int) {
	if estimated == actual {
		return
	}
	now := time.Now()
	oldMember := weightedMember(entryID, estimated)
	newMember := weightedMember(entryID, actual)
	for _, key := range []string{tokenKey(callerID, "minute"), tokenKey(callerID, "day")} {
		pipe := r.redis.Pipeline()
		pipe.ZRem(ctx, key, oldMember)
		pipe.ZAdd(ctx, key, redis.Z{Score: float64(now.UnixNano()), Member: newMember})
		pipe.Exec(ctx)
	}
}

func (r *RateLimiter) slideAndCheck(ctx context.Context, key string, now time.Time, window time.Duration, limit int) error {
	if limit <= 0 {
		return nil
	}
	if err := r.evictStale(ctx, key, now, window); err != nil {
		return err
	}
	count, err := r.redis.ZCard(ctx, key).Result()
	if err != nil {
		return err
	}
	if int(count) >= limit {
		return apierr.RateLimited(window)
	}
	pipe := r.redis.Pipeline()
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(now.UnixNano()), Member: uuid.NewString()})
	pipe.Expire(ctx, key, window+time.Second)
	_, err = pipe.Exec(ctx)
	return err
}

func (r *RateLimiter) evictStale(ctx context.Context, key string, now time.Time, window time.Duration) error {
	cutoff := now.Add(-window).UnixNano()
	return r.redis.ZRemRangeByScore(ctx, key, "-inf", strconv.FormatInt(cutoff, 10)).Err()
}

func (r *RateLimiter) sumWeights(ctx context.Context, key string) (int, error) {
	members, err := r.redis.ZRange(ctx, key, 0, -1).Result()
	if err != nil {
		return 0, err
	}
	total := 0
	for _, m := range members {
		total += parseWeight(m)
	}
	return total, nil
}

// weightedMember encodes an entry's token weight into the ZSET member
// string (entryID:weight), since Redis sorted sets carry no separate
// per-member payload beyond the member name itself.
func weightedMember(entryID string, weight int) string {
	return fmt.Sprintf("%s:%d", entryID, weight)
}

func parseWeight(member string) int {
	for i := len(member) - 1; i >= 0; i-- {
		if member[i] == ':' {
			n, _ := strconv.Atoi(member[i+1:])
			return n
		}
	}
	return 0
}

func requestKey(callerID, window string) string {
	return fmt.Sprintf("llm:rate:req:%s:%s", callerID, window)
}

func tokenKey(callerID, window string) string {
	return fmt.Sprintf("llm:rate:tok:%s:%s", callerID, window)
}
