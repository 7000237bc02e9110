// Package service wires every package built for this system into the
// handler set the HTTP router dispatches to, mirroring the teacher's
// factory pattern of centralizing construction in one place so cmd/server
// stays a thin bootstrap.
package service

import (
	"github.com/redis/go-redis/v9"

	"lexigraph.dev/dictionary/core/config"
	"lexigraph.dev/dictionary/core/db"
	"lexigraph.dev/dictionary/internal/corpus"
	"lexigraph.dev/dictionary/internal/enhancement"
	"lexigraph.dev/dictionary/internal/http/handler"
	"lexigraph.dev/dictionary/internal/http/router"
	"lexigraph.dev/dictionary/internal/llm"
	"lexigraph.dev/dictionary/internal/pipeline"
	"lexigraph.dev/dictionary/internal/provider"
	"lexigraph.dev/dictionary/internal/store"
	"lexigraph.dev/dictionary/internal/stream"
	"lexigraph.dev/dictionary/internal/wordlist"
)

// Services owns every long-lived component built at startup and exposes
// the handler set the router dispatches to.
//
// Usage:
//
//	services, err := service.New(cfg, database, redisClient)
//	router.SetupRoutes(engine, services.Handlers())
type Services struct {
	stores      *store.Stores
	substrate   *llm.Substrate
	embedder    *llm.Embedder
	lookup      *pipeline.Lookup
	enhancement *enhancement.Engine
	corpora     *corpus.Manager
	wordlists   *wordlist.Service
	adapter     *stream.Adapter
}

// New constructs every component from config, wiring the LLM substrate's
// rate limiter/cache/dedup, the provider registry, the lookup pipeline,
// the enhancement engine as the pipeline's Enhancer, and the corpus
// manager, in that dependency order.
func New(cfg config.Config, database *db.DB, redisClient *redis.Client) (*Services, error) {
	stores := store.NewStores(database.Pool())

	llmClient, err := llm.NewClient(cfg.LLM.Provider, llm.ClientConfig{APIKey: cfg.LLM.APIKey, BaseURL: cfg.LLM.BaseURL})
	if err != nil {
		return nil, err
	}
	cache := llm.NewCache(redisClient)
	dedup := llm.NewDedup(redisClient, cfg.Pipeline.LookupDedupMaxWait())
	rateLimiter := llm.NewRateLimiter(redisClient, cfg.Rate)
	substrate := llm.NewSubstrate(llmClient, cache, dedup, rateLimiter, cfg.LLM, cfg.Cache.LLMTTL())

	embedder, err := llm.NewEmbedder(llm.ClientConfig{APIKey: cfg.LLM.APIKey, BaseURL: cfg.LLM.BaseURL})
	if err != nil {
		return nil, err
	}

	providers := provider.New(cfg)
	enhancementEngine := enhancement.NewEngine(stores, substrate, nil)
	lookup := pipeline.NewLookup(stores, providers, substrate, enhancementEngine, cfg.Pipeline.LookupDedupMaxWait())

	corpora := corpus.New(database.Pool(), embedder, cfg.Corpus.TypesenseURL, cfg.Corpus.TypesenseAPIKey,
		cfg.Cache.CorpusNamesTTL(), cfg.Cache.CorpusWordlistTTL())
	wordlists := wordlist.NewService(stores, corpora)

	adapter := stream.NewAdapter(cfg.Stream.Heartbeat(), cfg.Stream.OverallTimeout())

	return &Services{
		stores:      stores,
		substrate:   substrate,
		embedder:    embedder,
		lookup:      lookup,
		enhancement: enhancementEngine,
		corpora:     corpora,
		wordlists:   wordlists,
		adapter:     adapter,
	}, nil
}

// Handlers builds the handler set for router.SetupRoutes. Handlers are
// cheap wrappers over the components New already built, so a fresh set is
// fine to construct per call.
func (s *Services) Handlers() router.Handlers {
	return router.Handlers{
		Lookup:      handler.NewLookupHandler(s.lookup, s.adapter, s.stores),
		Enhancement: handler.NewEnhancementHandler(s.stores, s.enhancement),
		Corpus:      handler.NewCorpusHandler(s.corpora),
		WordLists:   handler.NewWordListHandler(s.wordlists),
	}
}

// Stores exposes the persistence facade for components constructed outside
// this factory (e.g. a future admin CLI or worker).
func (s *Services) Stores() *store.Stores { return s.stores }
