package corpus

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	pgvector "github.com/pgvector/pgvector-go"

	"lexigraph.dev/dictionary/core/db"
)

// embedder turns query text into a vector comparable to the ones stored
// by index. Satisfied by *llm.Embedder; kept as a narrow local interface
// so this package doesn't import internal/llm just for one method.
type embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// semanticIndex stores one embedding row per (corpus name, vocabulary
// entry) and ranks by cosine distance, the same pgvector pattern as the
// wordlist corpus's fuzzy counterpart is the fallback for: a real
// deployment runs both and blends them (see corpus.go's blend).
type semanticIndex struct {
	q        db.Querier
	embedder embedder
}

func newSemanticIndex(q db.Querier, embedder embedder) *semanticIndex {
	return &semanticIndex{q: q, embedder: embedder}
}

// index replaces every embedding row for name with vocabulary's, skipping
// entries with no embedding (corpus.go only calls this when
// hasEmbeddings reports the whole vocabulary is embedded, but individual
// zero-length embeddings are tolerated defensively here).
func (s *semanticIndex) index(ctx context.Context, name string, vocabulary []VocabEntry) error {
	if _, err := s.q.Exec(ctx, `DELETE FROM corpus_embeddings WHERE corpus_name = $1`, name); err != nil {
		return fmt.Errorf("semantic index: clear %s: %w", name, err)
	}

	const q = `
		INSERT INTO corpus_embeddings (corpus_name, text, embedding)
		VALUES ($1, $2, $3)
		ON CONFLICT (corpus_name, text) DO UPDATE SET embedding = EXCLUDED.embedding`

	for _, v := range vocabulary {
		if len(v.Embedding) == 0 {
			continue
		}
		vec := pgvector.NewVector(v.Embedding)
		if _, err := s.q.Exec(ctx, q, name, v.Text, vec); err != nil {
			return fmt.Errorf("semantic index: upsert %q: %w", v.Text, err)
		}
	}
	return nil
}

// search embeds query and ranks a corpus's stored vocabulary by cosine
// distance to it, nearest first, converting distance to a similarity
// score in [0, 1] so it composes with the fuzzy scorer's scale in blend.
func (s *semanticIndex) search(ctx context.Context, name, query string, maxResults int) ([]Result, error) {
	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("semantic index: embed query: %w", err)
	}
	queryVec := pgvector.NewVector(embedding)

	const q = `
		SELECT text, embedding <=> $1 AS distance
		FROM   corpus_embeddings
		WHERE  corpus_name = $2
		ORDER  BY distance
		LIMIT  $3`

	rows, err := s.q.Query(ctx, q, queryVec, name, maxResults)
	if err != nil {
		return nil, fmt.Errorf("semantic index: search %s: %w", name, err)
	}

	results, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Result, error) {
		var r Result
		var distance float64
		if err := row.Scan(&r.Text, &distance); err != nil {
			return Result{}, err
		}
		r.Score = 1 - distance
		return r, nil
	})
	if err != nil {
		return nil, fmt.Errorf("semantic index: scan rows: %w", err)
	}
	if results == nil {
		results = []Result{}
	}
	return results, nil
}
