package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"lexigraph.dev/dictionary/common/id"
	"lexigraph.dev/dictionary/core/db"
	"lexigraph.dev/dictionary/internal/model"
)

type providerDataStore struct {
	q db.Querier
}

func NewProviderDataStore(q db.Querier) ProviderDataStore {
	return &providerDataStore{q: q}
}

const providerDataColumns = `id, word_id, provider, definition_ids, pronunciation_id, etymology, raw_data, version, created_at, updated_at`

func (s *providerDataStore) ListByWord(ctx context.Context, wordID int64) ([]model.ProviderData, error) {
	rows, err := s.q.Query(ctx, `SELECT `+providerDataColumns+` FROM provider_data WHERE word_id = $1`, wordID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ProviderData
	for rows.Next() {
		pd, err := scanProviderData(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *pd)
	}
	return out, rows.Err()
}

func (s *providerDataStore) Create(ctx context.Context, pd *model.ProviderData) error {
	pd.ID = id.New()
	pd.Version = 1
	row := s.q.QueryRow(ctx, `
		INSERT INTO provider_data (id, word_id, provider, definition_ids, pronunciation_id, etymology, raw_data, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 1, now(), now())
		RETURNING `+providerDataColumns,
		pd.ID, pd.WordID, pd.Provider, pd.DefinitionIDs, pd.PronunciationID, pd.Etymology, pd.RawData)
	scanned, err := scanProviderData(row)
	if err != nil {
		return err
	}
	*pd = *scanned
	return nil
}

// ReplaceForProvider implements the force_refresh lifecycle from spec.md §3:
// a provider's ProviderData is replaced wholesale, not merged, on refresh.
func (s *providerDataStore) ReplaceForProvider(ctx context.Context, wordID int64, provider string, pd *model.ProviderData) error {
	if _, err := s.q.Exec(ctx, `DELETE FROM provider_data WHERE word_id = $1 AND provider = $2`, wordID, provider); err != nil {
		return err
	}
	pd.WordID = wordID
	pd.Provider = provider
	return s.Create(ctx, pd)
}

func scanProviderData(row pgx.Row) (*model.ProviderData, error) {
	var pd model.ProviderData
	if err := row.Scan(&pd.ID, &pd.WordID, &pd.Provider, &pd.DefinitionIDs, &pd.PronunciationID, &pd.Etymology, &pd.RawData, &pd.Version, &pd.CreatedAt, &pd.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &pd, nil
}
