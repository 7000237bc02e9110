package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"lexigraph.dev/dictionary/common/id"
	"lexigraph.dev/dictionary/core/db"
	"lexigraph.dev/dictionary/internal/model"
)

type definitionStore struct {
	q db.Querier
}

func NewDefinitionStore(q db.Querier) DefinitionStore {
	return &definitionStore{q: q}
}

const definitionColumns = `
	id, word_id, part_of_speech, text, sense_number,
	meaning_cluster_id, meaning_cluster_label,
	synonyms, antonyms, example_ids, image_ids, word_forms,
	cefr_level, frequency_band, language_register, domain, region,
	grammar_patterns, collocations, usage_notes, transitivity,
	version, created_at, updated_at`

func (s *definitionStore) GetByID(ctx context.Context, defID int64) (*model.Definition, error) {
	row := s.q.QueryRow(ctx, `SELECT `+definitionColumns+` FROM definitions WHERE id = $1`, defID)
	return scanDefinition(row)
}

func (s *definitionStore) ListByWord(ctx context.Context, wordID int64) ([]model.Definition, error) {
	rows, err := s.q.Query(ctx, `SELECT `+definitionColumns+` FROM definitions WHERE word_id = $1 ORDER BY sense_number`, wordID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDefinitions(rows)
}

func (s *definitionStore) ListByIDs(ctx context.Context, ids []int64) ([]model.Definition, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := s.q.Query(ctx, `SELECT `+definitionColumns+` FROM definitions WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDefinitions(rows)
}

func (s *definitionStore) Create(ctx context.Context, def *model.Definition) error {
	def.ID = id.New()
	def.Version = 1
	var clusterID, clusterLabel *string
	if def.MeaningCluster != nil {
		clusterID, clusterLabel = &def.MeaningCluster.ID, &def.MeaningCluster.Label
	}
	row := s.q.QueryRow(ctx, `
		INSERT INTO definitions (
			id, word_id, part_of_speech, text, sense_number,
			meaning_cluster_id, meaning_cluster_label,
			synonyms, antonyms, example_ids, image_ids, word_forms,
			cefr_level, frequency_band, language_register, domain, region,
			grammar_patterns, collocations, usage_notes, transitivity,
			version, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
			$13, $14, $15, $16, $17, $18, $19, $20, $21, 1, now(), now()
		) RETURNING `+definitionColumns,
		def.ID, def.WordID, def.PartOfSpeech, def.Text, def.SenseNumber,
		clusterID, clusterLabel,
		def.Synonyms, def.Antonyms, def.ExampleIDs, def.ImageIDs, def.WordForms,
		def.CEFRLevel, def.FrequencyBand, def.LanguageRegister, def.Domain, def.Region,
		def.GrammarPatterns, def.Collocations, def.UsageNotes, def.Transitivity,
	)
	scanned, err := scanDefinition(row)
	if err != nil {
		return err
	}
	*def = *scanned
	return nil
}

// Update writes def, enforcing optimistic concurrency: the WHERE clause
// checks def.Version against the stored row, failing with
// ErrVersionConflict (spec.md §5, "Shared-resource policy") on mismatch.
func (s *definitionStore) Update(ctx context.Context, def *model.Definition) error {
	var clusterID, clusterLabel *string
	if def.MeaningCluster != nil {
		clusterID, clusterLabel = &def.MeaningCluster.ID, &def.MeaningCluster.Label
	}
	row := s.q.QueryRow(ctx, `
		UPDATE definitions SET
			part_of_speech = $1, text = $2, sense_number = $3,
			meaning_cluster_id = $4, meaning_cluster_label = $5,
			synonyms = $6, antonyms = $7, example_ids = $8, image_ids = $9, word_forms = $10,
			cefr_level = $11, frequency_band = $12, language_register = $13, domain = $14, region = $15,
			grammar_patterns = $16, collocations = $17, usage_notes = $18, transitivity = $19,
			version = version + 1, updated_at = now()
		WHERE id = $20 AND version = $21
		RETURNING `+definitionColumns,
		def.PartOfSpeech, def.Text, def.SenseNumber,
		clusterID, clusterLabel,
		def.Synonyms, def.Antonyms, def.ExampleIDs, def.ImageIDs, def.WordForms,
		def.CEFRLevel, def.FrequencyBand, def.LanguageRegister, def.Domain, def.Region,
		def.GrammarPatterns, def.Collocations, def.UsageNotes, def.Transitivity,
		def.ID, def.Version,
	)
	scanned, err := scanDefinition(row)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// Distinguish a missing row from a stale version by re-reading.
			if _, getErr := s.GetByID(ctx, def.ID); errors.Is(getErr, ErrNotFound) {
				return ErrNotFound
			}
			return ErrVersionConflict
		}
		return err
	}
	*def = *scanned
	return nil
}

func scanDefinition(row pgx.Row) (*model.Definition, error) {
	var d model.Definition
	var clusterID, clusterLabel *string
	if err := row.Scan(
		&d.ID, &d.WordID, &d.PartOfSpeech, &d.Text, &d.SenseNumber,
		&clusterID, &clusterLabel,
		&d.Synonyms, &d.Antonyms, &d.ExampleIDs, &d.ImageIDs, &d.WordForms,
		&d.CEFRLevel, &d.FrequencyBand, &d.LanguageRegister, &d.Domain, &d.Region,
		&d.GrammarPatterns, &d.Collocations, &d.UsageNotes, &d.Transitivity,
		&d.Version, &d.CreatedAt, &d.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if clusterID != nil {
		d.MeaningCluster = &model.MeaningCluster{ID: *clusterID, Label: derefOr(clusterLabel, "")}
	}
	return &d, nil
}

func collectDefinitions(rows pgx.Rows) ([]model.Definition, error) {
	var out []model.Definition
	for rows.Next() {
		d, err := scanDefinition(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

func derefOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}
