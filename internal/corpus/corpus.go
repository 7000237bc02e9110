// Package corpus implements the per-wordlist search indexes (spec.md
// §4.7): a shared corpus over every wordlist's name, and one corpus per
// wordlist over its word texts, each fuzzy-matched via Typesense and
// optionally blended with pgvector cosine similarity.
package corpus

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"lexigraph.dev/dictionary/core/db"
)

// Kind distinguishes the two corpora spec.md §4.7 names, since they carry
// different TTLs; both share the one semanticAutoThreshold.
type Kind string

const (
	KindWordlistNames Kind = "wordlist_names"
	KindWordlistWords Kind = "wordlist_words"
)

// semanticAutoThreshold is the vocabulary size above which semantic
// matching is enabled when the caller doesn't specify it explicitly.
const semanticAutoThreshold = 100

// VocabEntry is one normalized token/phrase in a corpus's vocabulary,
// with an optional embedding for semantic matching.
type VocabEntry struct {
	Text      string
	Embedding []float32
}

// Result is one scored match from Search.
type Result struct {
	Text  string
	Score float64
}

// corpusHandle is a built corpus: its vocabulary, when it was built, and
// whether a semantic index backs it.
type corpusHandle struct {
	name       string
	kind       Kind
	vocabulary []VocabEntry
	builtAt    time.Time
	semantic   bool
}

// Manager builds and caches corpora by name, rebuilding lazily once a
// corpus's TTL has lapsed and invalidating eagerly on wordlist mutation.
type Manager struct {
	fuzzy    *fuzzyIndex
	semantic *semanticIndex

	namesTTL    time.Duration
	wordlistTTL time.Duration

	mu      sync.RWMutex
	corpora map[string]*corpusHandle
	sf      singleflight.Group
}

func NewManager(fuzzy *fuzzyIndex, semantic *semanticIndex, namesTTL, wordlistTTL time.Duration) *Manager {
	return &Manager{
		fuzzy:       fuzzy,
		semantic:    semantic,
		namesTTL:    namesTTL,
		wordlistTTL: wordlistTTL,
		corpora:     make(map[string]*corpusHandle),
	}
}

// New builds a Manager backed by Postgres/pgvector for semantic search and,
// when typesenseURL is non-empty, Typesense for fuzzy search (falling back
// to in-process Jaro-Winkler scoring otherwise). This is the constructor
// internal/service wires at startup; NewManager stays available for tests
// that hand in their own fuzzy/semantic indexes directly.
func New(q db.Querier, embed Embedder, typesenseURL, typesenseAPIKey string, namesTTL, wordlistTTL time.Duration) *Manager {
	var ts *typesenseIndex
	if typesenseURL != "" {
		ts = newTypesenseIndex(typesenseURL, typesenseAPIKey)
	}
	return NewManager(newFuzzyIndex(ts), newSemanticIndex(q, embed), namesTTL, wordlistTTL)
}

// Embedder turns text into a vector for semantic search. Satisfied by
// *llm.Embedder; named here (rather than only the package-private
// embedder alias) so internal/service can reference it when wiring New.
type Embedder = embedder

// CreateOrGet builds the named corpus from vocabulary if missing or
// stale, or leaves the cached corpus in place otherwise. Concurrent calls for the
// same name share one build via single-flight.
func (m *Manager) CreateOrGet(ctx context.Context, kind Kind, name string, vocabulary []VocabEntry) error {
	m.mu.RLock()
	existing, ok := m.corpora[name]
	m.mu.RUnlock()
	if ok && time.Since(existing.builtAt) < m.ttlFor(kind) {
		return nil
	}

	_, err, _ := m.sf.Do(name, func() (any, error) {
		if err := m.fuzzy.index(ctx, name, vocabulary); err != nil {
			return nil, err
		}
		semantic := hasEmbeddings(vocabulary)
		if semantic {
			if err := m.semantic.index(ctx, name, vocabulary); err != nil {
				return nil, err
			}
		}
		handle := &corpusHandle{name: name, kind: kind, vocabulary: vocabulary, builtAt: time.Now(), semantic: semantic}
		m.mu.Lock()
		m.corpora[name] = handle
		m.mu.Unlock()
		return handle, nil
	})
	return err
}

// Search fuzzy-matches query against the named corpus, blending in
// semantic similarity when requested (or, if semantic is nil, when the
// vocabulary exceeds semanticAutoThreshold). minScore is lowered
// stepwise for short queries to preserve recall.
func (m *Manager) Search(ctx context.Context, name, query string, maxResults int, minScore float64, semantic *bool) ([]Result, error) {
	m.mu.RLock()
	handle, ok := m.corpora[name]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrCorpusNotBuilt
	}

	useSemantic := handle.semantic && len(handle.vocabulary) > semanticAutoThreshold
	if semantic != nil {
		useSemantic = *semantic && handle.semantic
	}

	effectiveMin := adaptiveMinScore(query, minScore)

	fuzzyResults, err := m.fuzzy.search(ctx, name, query, maxResults, effectiveMin)
	if err != nil {
		return nil, err
	}
	if !useSemantic {
		return fuzzyResults, nil
	}

	semanticResults, err := m.semantic.search(ctx, name, query, maxResults)
	if err != nil {
		return nil, err
	}
	return blend(fuzzyResults, semanticResults, maxResults, effectiveMin), nil
}

// Invalidate drops a corpus so the next CreateOrGet rebuilds it, per
// spec.md §4.7's "on wordlist mutation, the affected corpora are
// explicitly invalidated".
func (m *Manager) Invalidate(name string) {
	m.mu.Lock()
	delete(m.corpora, name)
	m.mu.Unlock()
}

func (m *Manager) ttlFor(kind Kind) time.Duration {
	if kind == KindWordlistNames {
		return m.namesTTL
	}
	return m.wordlistTTL
}

func hasEmbeddings(vocabulary []VocabEntry) bool {
	for _, v := range vocabulary {
		if len(v.Embedding) == 0 {
			return false
		}
	}
	return len(vocabulary) > 0
}

// adaptiveMinScore lowers the minimum score stepwise for short queries to
// preserve recall (spec.md §4.7), leaving longer queries at the caller's
// base threshold.
func adaptiveMinScore(query string, base float64) float64 {
	switch {
	case len(query) <= 2:
		return min(base, 0.20)
	case len(query) <= 4:
		return min(base, 0.25)
	case len(query) <= 6:
		return min(base, 0.30)
	default:
		return base
	}
}

// blend merges fuzzy and semantic result sets, averaging scores for
// entries present in both, per spec.md §4.7's "blend with vector
// similarity using a fixed weight".
const semanticWeight = 0.5

func blend(fuzzy, semantic []Result, maxResults int, minScore float64) []Result {
	scores := make(map[string]float64, len(fuzzy)+len(semantic))
	for _, r := range fuzzy {
		scores[r.Text] += (1 - semanticWeight) * r.Score
	}
	for _, r := range semantic {
		scores[r.Text] += semanticWeight * r.Score
	}

	out := make([]Result, 0, len(scores))
	for text, score := range scores {
		if score >= minScore {
			out = append(out, Result{Text: text, Score: score})
		}
	}
	sortByScoreDesc(out)
	if len(out) > maxResults {
		out = out[:maxResults]
	}
	return out
}

func sortByScoreDesc(results []Result) {
	for i := 1; i < len(results); i++ {
		for j := i; j > 0 && results[j].Score > results[j-1].Score; j-- {
			results[j], results[j-1] = results[j-1], results[j]
		}
	}
}
