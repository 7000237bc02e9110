package llm

import (
	"context"
	"encoding/json"
	"math"
	"time"

	"lexigraph.dev/dictionary/common/apierr"
	"lexigraph.dev/dictionary/common/logger"
	"lexigraph.dev/dictionary/core/config"
)

const maxRetryAttempts = 3

// Substrate is the single entry point for every LLM call (spec.md §4.1):
// model/temperature selection, rate+token admission, content-addressed
// caching, single-flight dedup, and bounded retry of transient errors.
type Substrate struct {
	client     Client
	cache      *Cache
	dedup      *Dedup
	rate       *RateLimiter
	cfg        config.LLMConfig
	defaultTTL time.Duration
}

func NewSubstrate(client Client, cache *Cache, dedup *Dedup, rate *RateLimiter, cfg config.LLMConfig, defaultTTL time.Duration) *Substrate {
	return &Substrate{client: client, cache: cache, dedup: dedup, rate: rate, cfg: cfg, defaultTTL: defaultTTL}
}

// Call executes req, validating the result against req.Schema via
// json.Unmarshal into result. Returns usage metadata even on a cache hit.
func (s *Substrate) Call(ctx context.Context, req Request, result any) (*Usage, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		TaskTag:   logger.Ptr(string(req.TaskTag)),
		Component: "dictionary.llm.substrate",
	})

	if req.ModelOverride == "" {
		req.ModelOverride = ModelTier(s.modelForComplexity(ComplexityFor(req.TaskTag)))
	}
	callerID := req.CallerID
	if callerID == "" {
		callerID = "shared"
	}

	if req.CacheTTL == 0 {
		req.CacheTTL = s.defaultTTL
	}
	cacheKey := Key(req.TaskTag, req.SystemPrompt, req.UserPrompt, req.Schema)

	cr, err, _ := s.dedup.Do(ctx, cacheKey, func() (cachedResult, error) {
		if cached, ok, err := s.cache.Get(ctx, cacheKey); err == nil && ok {
			return *cached, nil
		}
		return s.dispatch(ctx, req, callerID)
	})
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(cr.Result, result); err != nil {
		return nil, apierr.SchemaValidationFailure(apierr.Detail{Message: err.Error()})
	}
	usage := cr.Usage
	return &usage, nil
}

// dispatch performs rate admission, the actual provider call with bounded
// retry of transient errors, and persists the result to cache.
func (s *Substrate) dispatch(ctx context.Context, req Request, callerID string) (cachedResult, error) {
	if err := s.rate.AdmitRequest(ctx, callerID); err != nil {
		return cachedResult{}, err
	}

	estimatedTokens := req.MaxTokens
	if estimatedTokens == 0 {
		estimatedTokens = 1000
	}
	entryID, err := s.rate.AdmitTokens(ctx, callerID, estimatedTokens)
	if err != nil {
		return cachedResult{}, err
	}

	var raw json.RawMessage
	var usage *Usage
	for attempt := 0; attempt < maxRetryAttempts; attempt++ {
		raw, usage, err = s.client.Chat(ctx, req)
		if err == nil {
			break
		}
		if !apierr.IsRetryable(err) || attempt == maxRetryAttempts-1 {
			return cachedResult{}, err
		}
		select {
		case <-ctx.Done():
			return cachedResult{}, apierr.Cancelled()
		case <-time.After(backoff(attempt)):
		}
	}
	if err != nil {
		return cachedResult{}, err
	}

	s.rate.CorrectTokens(ctx, callerID, entryID, estimatedTokens, usage.TotalTokens)

	cr := cachedResult{Result: raw, Usage: *usage}
	if ttl := req.CacheTTL; ttl > 0 {
		_ = s.cache.Set(ctx, Key(req.TaskTag, req.SystemPrompt, req.UserPrompt, req.Schema), cr, ttl)
	}
	return cr, nil
}

func backoff(attempt int) time.Duration {
	base := 200 * time.Millisecond
	return time.Duration(math.Pow(2, float64(attempt))) * base
}
