package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"lexigraph.dev/dictionary/common/id"
	"lexigraph.dev/dictionary/core/db"
	"lexigraph.dev/dictionary/internal/model"
)

type pronunciationStore struct {
	q db.Querier
}

func NewPronunciationStore(q db.Querier) PronunciationStore {
	return &pronunciationStore{q: q}
}

func (s *pronunciationStore) GetByWord(ctx context.Context, wordID int64) (*model.Pronunciation, error) {
	row := s.q.QueryRow(ctx, `
		SELECT id, word_id, phonetic, ipa, audio_file_ids, version, created_at, updated_at
		FROM pronunciations WHERE word_id = $1`, wordID)
	var p model.Pronunciation
	if err := row.Scan(&p.ID, &p.WordID, &p.Phonetic, &p.IPA, &p.AudioFileIDs, &p.Version, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (s *pronunciationStore) Create(ctx context.Context, p *model.Pronunciation) error {
	p.ID = id.New()
	p.Version = 1
	row := s.q.QueryRow(ctx, `
		INSERT INTO pronunciations (id, word_id, phonetic, ipa, audio_file_ids, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, 1, now(), now())
		RETURNING id, word_id, phonetic, ipa, audio_file_ids, version, created_at, updated_at`,
		p.ID, p.WordID, p.Phonetic, p.IPA, p.AudioFileIDs)
	return row.Scan(&p.ID, &p.WordID, &p.Phonetic, &p.IPA, &p.AudioFileIDs, &p.Version, &p.CreatedAt, &p.UpdatedAt)
}
