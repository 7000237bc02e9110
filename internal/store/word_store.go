package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"lexigraph.dev/dictionary/common/id"
	"lexigraph.dev/dictionary/core/db"
	"lexigraph.dev/dictionary/internal/model"
)

type wordStore struct {
	q db.Querier
}

func NewWordStore(q db.Querier) WordStore {
	return &wordStore{q: q}
}

func (s *wordStore) GetByID(ctx context.Context, wordID int64) (*model.Word, error) {
	row := s.q.QueryRow(ctx, `
		SELECT id, text, normalized, language, version, created_at, updated_at
		FROM words WHERE id = $1`, wordID)
	return scanWord(row)
}

func (s *wordStore) GetByNormalized(ctx context.Context, normalized, language string) (*model.Word, error) {
	row := s.q.QueryRow(ctx, `
		SELECT id, text, normalized, language, version, created_at, updated_at
		FROM words WHERE normalized = $1 AND language = $2`, normalized, language)
	return scanWord(row)
}

// GetOrCreate implements the Resolve stage of the lookup pipeline: look up
// by (normalized, language), creating on first sight. The unique constraint
// on (normalized, language) makes the insert race-safe under ON CONFLICT.
func (s *wordStore) GetOrCreate(ctx context.Context, text, normalized, language string) (*model.Word, error) {
	existing, err := s.GetByNormalized(ctx, normalized, language)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	row := s.q.QueryRow(ctx, `
		INSERT INTO words (id, text, normalized, language, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, 1, now(), now())
		ON CONFLICT (normalized, language) DO UPDATE SET updated_at = words.updated_at
		RETURNING id, text, normalized, language, version, created_at, updated_at`,
		id.New(), text, normalized, language)
	return scanWord(row)
}

func (s *wordStore) Delete(ctx context.Context, wordID int64) error {
	// Schema-level ON DELETE CASCADE on definitions/provider_data/
	// pronunciations/facts/synthesized_entries(word_id) carries out the
	// cascade invariant from spec.md §3.
	tag, err := s.q.Exec(ctx, `DELETE FROM words WHERE id = $1`, wordID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanWord(row pgx.Row) (*model.Word, error) {
	var w model.Word
	if err := row.Scan(&w.ID, &w.Text, &w.Normalized, &w.Language, &w.Version, &w.CreatedAt, &w.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &w, nil
}
