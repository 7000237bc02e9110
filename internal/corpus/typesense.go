package corpus

import (
	"context"
	"fmt"

	"github.com/typesense/typesense-go/v4/typesense"
	"github.com/typesense/typesense-go/v4/typesense/api"
)

// typesenseIndex backs fuzzyIndex with a real typo-tolerant search engine
// for corpora too large to score in-process on every query. Each corpus
// name becomes its own Typesense collection so CreateOrGet can rebuild
// one wordlist's corpus without touching another's.
type typesenseIndex struct {
	client *typesense.Client
}

func newTypesenseIndex(serverURL, apiKey string) *typesenseIndex {
	client := typesense.NewClient(
		typesense.WithServer(serverURL),
		typesense.WithAPIKey(apiKey),
	)
	return &typesenseIndex{client: client}
}

// indexCollection drops and recreates name's collection, then bulk-imports
// vocabulary. A fresh collection per build keeps stale entries from a
// shrunk wordlist out of search results.
func (t *typesenseIndex) indexCollection(ctx context.Context, name string, vocabulary []VocabEntry) error {
	_, _ = t.client.Collection(name).Delete(ctx)

	schema := &api.CollectionSchema{
		Name: name,
		Fields: []api.Field{
			{Name: "text", Type: "string"},
		},
	}
	if _, err := t.client.Collections().Create(ctx, schema); err != nil {
		return fmt.Errorf("typesense: create collection %s: %w", name, err)
	}

	documents := make([]any, len(vocabulary))
	for i, v := range vocabulary {
		documents[i] = map[string]any{"text": v.Text}
	}
	if len(documents) == 0 {
		return nil
	}
	action := "upsert"
	if _, err := t.client.Collection(name).Documents().Import(ctx, documents, &api.ImportDocumentsParams{Action: &action}); err != nil {
		return fmt.Errorf("typesense: import documents into %s: %w", name, err)
	}
	return nil
}

// search performs a typo-tolerant prefix/fuzzy query against name's
// collection, converting Typesense's text_match rank into the same
// [0, 1] score range the in-process scorer and semanticIndex use.
func (t *typesenseIndex) search(ctx context.Context, name, query string, maxResults int, minScore float64) ([]Result, error) {
	perPage := maxResults
	typoTokens := 1
	params := &api.SearchCollectionParams{
		Q:                   query,
		QueryBy:             "text",
		PerPage:             &perPage,
		TypoTokensThreshold: &typoTokens,
	}

	resp, err := t.client.Collection(name).Documents().Search(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("typesense: search %s: %w", name, err)
	}
	if resp.Hits == nil {
		return []Result{}, nil
	}

	results := make([]Result, 0, len(*resp.Hits))
	for _, hit := range *resp.Hits {
		if hit.Document == nil {
			continue
		}
		text, _ := (*hit.Document)["text"].(string)
		score := textMatchScore(hit)
		if score < minScore {
			continue
		}
		results = append(results, Result{Text: text, Score: score})
	}
	return results, nil
}

// textMatchScore normalizes Typesense's TextMatch rank (an arbitrarily
// large integer) into [0, 1] by dividing by a fixed ceiling and clamping
// at 1.0, since the corpus package blends scores across backends on a
// common scale.
func textMatchScore(hit api.SearchResultHit) float64 {
	if hit.TextMatch == nil || *hit.TextMatch == 0 {
		return 0
	}
	const typesenseMaxRank = 1 << 52 // Typesense's documented text_match ceiling
	score := float64(*hit.TextMatch) / float64(typesenseMaxRank)
	if score > 1 {
		score = 1
	}
	return score
}
