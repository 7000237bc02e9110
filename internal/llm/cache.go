package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// cachedResult is what Cache stores: the validated response plus the usage
// metadata recorded at call time, so a cache hit still reports accurate
// token accounting to callers.
type cachedResult struct {
	Result json.RawMessage `json:"result"`
	Usage  Usage           `json:"usage"`
}

// Cache is the content-addressed response store keyed on
// (task_tag, prompt_hash, schema_hash), per spec.md §4.1.
type Cache struct {
	redis *redis.Client
}

func NewCache(client *redis.Client) *Cache {
	return &Cache{redis: client}
}

// Key derives the cache key from the call's identifying content. Two calls
// with the same task tag, prompt, and schema collapse onto the same entry
// regardless of caller.
func Key(taskTag TaskTag, systemPrompt, userPrompt string, schema any) string {
	schemaJSON, _ := json.Marshal(schema)
	h := sha256.New()
	h.Write([]byte(taskTag))
	h.Write([]byte{0})
	h.Write([]byte(systemPrompt))
	h.Write([]byte{0})
	h.Write([]byte(userPrompt))
	h.Write([]byte{0})
	h.Write(schemaJSON)
	return fmt.Sprintf("llm:cache:%s:%s", taskTag, hex.EncodeToString(h.Sum(nil)))
}

func (c *Cache) Get(ctx context.Context, key string) (*cachedResult, bool, error) {
	raw, err := c.redis.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var cr cachedResult
	if err := json.Unmarshal(raw, &cr); err != nil {
		return nil, false, err
	}
	cr.Usage.CacheHit = true
	return &cr, true, nil
}

func (c *Cache) Set(ctx context.Context, key string, cr cachedResult, ttl time.Duration) error {
	raw, err := json.Marshal(cr)
	if err != nil {
		return err
	}
	return c.redis.Set(ctx, key, raw, ttl).Err()
}
