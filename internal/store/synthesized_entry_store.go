package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"lexigraph.dev/dictionary/common/id"
	"lexigraph.dev/dictionary/core/db"
	"lexigraph.dev/dictionary/internal/model"
)

type synthesizedEntryStore struct {
	q db.Querier
}

func NewSynthesizedEntryStore(q db.Querier) SynthesizedEntryStore {
	return &synthesizedEntryStore{q: q}
}

const entryColumns = `
	id, word_id, definition_ids, pronunciation_id, etymology, fact_ids, image_ids,
	model_info_model, model_info_confidence, model_info_prompt_tokens, model_info_completion_tokens, model_info_total_tokens,
	source_provider_data_ids, accessed_at, access_count, version, created_at, updated_at`

func (s *synthesizedEntryStore) GetByWord(ctx context.Context, wordID int64) (*model.SynthesizedEntry, error) {
	row := s.q.QueryRow(ctx, `SELECT `+entryColumns+` FROM synthesized_entries WHERE word_id = $1`, wordID)
	return scanEntry(row)
}

// Upsert enforces the "at most one SynthesizedEntry per Word" invariant via
// ON CONFLICT (word_id), replacing the row wholesale on force_refresh.
func (s *synthesizedEntryStore) Upsert(ctx context.Context, entry *model.SynthesizedEntry) error {
	if entry.ID == 0 {
		entry.ID = id.New()
	}
	row := s.q.QueryRow(ctx, `
		INSERT INTO synthesized_entries (`+entryColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, now(), 0, 1, now(), now())
		ON CONFLICT (word_id) DO UPDATE SET
			definition_ids = EXCLUDED.definition_ids,
			pronunciation_id = EXCLUDED.pronunciation_id,
			etymology = EXCLUDED.etymology,
			fact_ids = EXCLUDED.fact_ids,
			image_ids = EXCLUDED.image_ids,
			model_info_model = EXCLUDED.model_info_model,
			model_info_confidence = EXCLUDED.model_info_confidence,
			model_info_prompt_tokens = EXCLUDED.model_info_prompt_tokens,
			model_info_completion_tokens = EXCLUDED.model_info_completion_tokens,
			model_info_total_tokens = EXCLUDED.model_info_total_tokens,
			source_provider_data_ids = EXCLUDED.source_provider_data_ids,
			version = synthesized_entries.version + 1,
			updated_at = now()
		RETURNING `+entryColumns,
		entry.ID, entry.WordID, entry.DefinitionIDs, entry.PronunciationID, entry.Etymology,
		entry.FactIDs, entry.ImageIDs,
		entry.ModelInfo.Model, entry.ModelInfo.Confidence, entry.ModelInfo.PromptTokens, entry.ModelInfo.CompletionTokens, entry.ModelInfo.TotalTokens,
		entry.SourceProviderDataIDs,
	)
	scanned, err := scanEntry(row)
	if err != nil {
		return err
	}
	*entry = *scanned
	return nil
}

// TouchAccess bumps access_count/accessed_at on a cache hit (spec.md §4.3
// stage 2), without going through the version-incrementing Upsert path.
func (s *synthesizedEntryStore) TouchAccess(ctx context.Context, entryID int64) error {
	tag, err := s.q.Exec(ctx, `
		UPDATE synthesized_entries SET accessed_at = now(), access_count = access_count + 1
		WHERE id = $1`, entryID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanEntry(row pgx.Row) (*model.SynthesizedEntry, error) {
	var e model.SynthesizedEntry
	if err := row.Scan(
		&e.ID, &e.WordID, &e.DefinitionIDs, &e.PronunciationID, &e.Etymology, &e.FactIDs, &e.ImageIDs,
		&e.ModelInfo.Model, &e.ModelInfo.Confidence, &e.ModelInfo.PromptTokens, &e.ModelInfo.CompletionTokens, &e.ModelInfo.TotalTokens,
		&e.SourceProviderDataIDs, &e.AccessedAt, &e.AccessCount, &e.Version, &e.CreatedAt, &e.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}
