package store

import (
	"context"

	"lexigraph.dev/dictionary/common/id"
	"lexigraph.dev/dictionary/core/db"
	"lexigraph.dev/dictionary/internal/model"
)

type factStore struct {
	q db.Querier
}

func NewFactStore(q db.Querier) FactStore {
	return &factStore{q: q}
}

const factColumns = `id, word_id, content, category, model_info_model, model_info_confidence, model_info_prompt_tokens, model_info_completion_tokens, model_info_total_tokens, version, created_at, updated_at`

func (s *factStore) ListByWord(ctx context.Context, wordID int64) ([]model.Fact, error) {
	rows, err := s.q.Query(ctx, `SELECT `+factColumns+` FROM facts WHERE word_id = $1`, wordID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectFacts(rows)
}

func (s *factStore) ListByIDs(ctx context.Context, ids []int64) ([]model.Fact, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := s.q.Query(ctx, `SELECT `+factColumns+` FROM facts WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectFacts(rows)
}

func (s *factStore) Create(ctx context.Context, f *model.Fact) error {
	f.ID = id.New()
	f.Version = 1
	row := s.q.QueryRow(ctx, `
		INSERT INTO facts (`+factColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 1, now(), now())
		RETURNING `+factColumns,
		f.ID, f.WordID, f.Content, f.Category,
		f.ModelInfo.Model, f.ModelInfo.Confidence, f.ModelInfo.PromptTokens, f.ModelInfo.CompletionTokens, f.ModelInfo.TotalTokens)
	return scanFactInto(f, row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFactInto(f *model.Fact, row rowScanner) error {
	return row.Scan(
		&f.ID, &f.WordID, &f.Content, &f.Category,
		&f.ModelInfo.Model, &f.ModelInfo.Confidence, &f.ModelInfo.PromptTokens, &f.ModelInfo.CompletionTokens, &f.ModelInfo.TotalTokens,
		&f.Version, &f.CreatedAt, &f.UpdatedAt,
	)
}

func collectFacts(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]model.Fact, error) {
	var out []model.Fact
	for rows.Next() {
		var f model.Fact
		if err := scanFactInto(&f, rows); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}
