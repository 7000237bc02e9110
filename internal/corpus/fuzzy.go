package corpus

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/antzucaro/matchr"
)

// ErrCorpusNotBuilt is returned by Search when CreateOrGet has not been
// called for the given corpus name yet.
var ErrCorpusNotBuilt = errors.New("corpus: not built")

// fuzzyIndex scores queries against a corpus's vocabulary using
// Jaro-Winkler similarity, the same character-distance technique
// Typesense's own typo-tolerant search applies. A real deployment backs
// this with a Typesense collection (see typesense.go) for vocabularies
// too large to score in-process on every query; this in-process scorer
// is the fallback and the one exercised by tests.
type fuzzyIndex struct {
	typesense *typesenseIndex // nil uses in-process scoring only

	mu         sync.RWMutex
	vocabulary map[string][]VocabEntry
}

func newFuzzyIndex(typesense *typesenseIndex) *fuzzyIndex {
	return &fuzzyIndex{typesense: typesense, vocabulary: make(map[string][]VocabEntry)}
}

func (f *fuzzyIndex) index(ctx context.Context, name string, vocabulary []VocabEntry) error {
	f.mu.Lock()
	f.vocabulary[name] = vocabulary
	f.mu.Unlock()
	if f.typesense != nil {
		return f.typesense.indexCollection(ctx, name, vocabulary)
	}
	return nil
}

func (f *fuzzyIndex) search(ctx context.Context, name, query string, maxResults int, minScore float64) ([]Result, error) {
	if f.typesense != nil {
		return f.typesense.search(ctx, name, query, maxResults, minScore)
	}

	f.mu.RLock()
	vocabulary := f.vocabulary[name]
	f.mu.RUnlock()
	results := make([]Result, 0, len(vocabulary))
	for _, v := range vocabulary {
		score := matchr.JaroWinkler(query, v.Text, false)
		if score >= minScore {
			results = append(results, Result{Text: v.Text, Score: score})
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > maxResults {
		results = results[:maxResults]
	}
	return results, nil
}
