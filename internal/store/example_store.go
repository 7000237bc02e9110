package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"lexigraph.dev/dictionary/common/id"
	"lexigraph.dev/dictionary/core/db"
	"lexigraph.dev/dictionary/internal/model"
)

type exampleStore struct {
	q db.Querier
}

func NewExampleStore(q db.Querier) ExampleStore {
	return &exampleStore{q: q}
}

func (s *exampleStore) ListByDefinition(ctx context.Context, definitionID int64) ([]model.Example, error) {
	rows, err := s.q.Query(ctx, `
		SELECT id, definition_id, text, type, quality_score, version, created_at, updated_at
		FROM examples WHERE definition_id = $1`, definitionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Example
	for rows.Next() {
		var e model.Example
		if err := rows.Scan(&e.ID, &e.DefinitionID, &e.Text, &e.Type, &e.QualityScore, &e.Version, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *exampleStore) Create(ctx context.Context, ex *model.Example) error {
	ex.ID = id.New()
	ex.Version = 1
	row := s.q.QueryRow(ctx, `
		INSERT INTO examples (id, definition_id, text, type, quality_score, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, 1, now(), now())
		RETURNING id, definition_id, text, type, quality_score, version, created_at, updated_at`,
		ex.ID, ex.DefinitionID, ex.Text, ex.Type, ex.QualityScore)
	if err := row.Scan(&ex.ID, &ex.DefinitionID, &ex.Text, &ex.Type, &ex.QualityScore, &ex.Version, &ex.CreatedAt, &ex.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
