package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"

	"lexigraph.dev/dictionary/common/id"
	"lexigraph.dev/dictionary/core/db"
	"lexigraph.dev/dictionary/internal/model"
)

type wordListStore struct {
	q db.Querier
}

func NewWordListStore(q db.Querier) WordListStore {
	return &wordListStore{q: q}
}

// WordListItems are owned by value (spec.md §3): rather than a child table
// keyed by (list_id, word_id), the whole slice is stored as one JSONB
// column and rewritten on every mutation. This matches the ownership model
// exactly (no independent lifecycle, no cascade-delete semantics needed)
// and keeps reads a single round trip for what's always read as a unit.
const wordListColumns = `id, name, hash_id, owner_id, visibility, words, learning_stats, version, created_at, updated_at`

func (s *wordListStore) GetByID(ctx context.Context, listID int64) (*model.WordList, error) {
	row := s.q.QueryRow(ctx, `SELECT `+wordListColumns+` FROM word_lists WHERE id = $1`, listID)
	return scanWordList(row)
}

func (s *wordListStore) GetByHashID(ctx context.Context, hashID string) (*model.WordList, error) {
	row := s.q.QueryRow(ctx, `SELECT `+wordListColumns+` FROM word_lists WHERE hash_id = $1`, hashID)
	return scanWordList(row)
}

func (s *wordListStore) ListByOwner(ctx context.Context, ownerID string) ([]model.WordList, error) {
	rows, err := s.q.Query(ctx, `SELECT `+wordListColumns+` FROM word_lists WHERE owner_id = $1 ORDER BY updated_at DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.WordList
	for rows.Next() {
		wl, err := scanWordList(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *wl)
	}
	return out, rows.Err()
}

func (s *wordListStore) Create(ctx context.Context, wl *model.WordList) error {
	wl.ID = id.New()
	wl.Version = 1
	wordsJSON, statsJSON, err := marshalWordList(wl)
	if err != nil {
		return err
	}
	row := s.q.QueryRow(ctx, `
		INSERT INTO word_lists (id, name, hash_id, owner_id, visibility, words, learning_stats, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 1, now(), now())
		RETURNING `+wordListColumns,
		wl.ID, wl.Name, wl.HashID, wl.OwnerID, wl.Visibility, wordsJSON, statsJSON)
	scanned, err := scanWordList(row)
	if err != nil {
		return err
	}
	*wl = *scanned
	return nil
}

func (s *wordListStore) Update(ctx context.Context, wl *model.WordList) error {
	wordsJSON, statsJSON, err := marshalWordList(wl)
	if err != nil {
		return err
	}
	row := s.q.QueryRow(ctx, `
		UPDATE word_lists SET
			name = $1, hash_id = $2, visibility = $3, words = $4, learning_stats = $5,
			version = version + 1, updated_at = now()
		WHERE id = $6 AND version = $7
		RETURNING `+wordListColumns,
		wl.Name, wl.HashID, wl.Visibility, wordsJSON, statsJSON, wl.ID, wl.Version)
	scanned, err := scanWordList(row)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			if _, getErr := s.GetByID(ctx, wl.ID); errors.Is(getErr, ErrNotFound) {
				return ErrNotFound
			}
			return ErrVersionConflict
		}
		return err
	}
	*wl = *scanned
	return nil
}

func (s *wordListStore) Delete(ctx context.Context, listID int64) error {
	tag, err := s.q.Exec(ctx, `DELETE FROM word_lists WHERE id = $1`, listID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpsertItem replaces the item for item.WordID if present, else appends it.
// Dangling Word references are tolerated per spec.md §3 and are filtered at
// read time by the caller, not here.
func (s *wordListStore) UpsertItem(ctx context.Context, listID int64, item model.WordListItem) error {
	wl, err := s.GetByID(ctx, listID)
	if err != nil {
		return err
	}
	replaced := false
	for i := range wl.Words {
		if wl.Words[i].WordID == item.WordID {
			wl.Words[i] = item
			replaced = true
			break
		}
	}
	if !replaced {
		wl.Words = append(wl.Words, item)
	}
	return s.Update(ctx, wl)
}

func (s *wordListStore) RemoveItem(ctx context.Context, listID int64, wordID int64) error {
	wl, err := s.GetByID(ctx, listID)
	if err != nil {
		return err
	}
	out := wl.Words[:0]
	for _, item := range wl.Words {
		if item.WordID != wordID {
			out = append(out, item)
		}
	}
	wl.Words = out
	return s.Update(ctx, wl)
}

func marshalWordList(wl *model.WordList) (wordsJSON, statsJSON []byte, err error) {
	wordsJSON, err = json.Marshal(wl.Words)
	if err != nil {
		return nil, nil, err
	}
	statsJSON, err = json.Marshal(wl.LearningStats)
	if err != nil {
		return nil, nil, err
	}
	return wordsJSON, statsJSON, nil
}

func scanWordList(row pgx.Row) (*model.WordList, error) {
	var wl model.WordList
	var wordsJSON, statsJSON []byte
	if err := row.Scan(&wl.ID, &wl.Name, &wl.HashID, &wl.OwnerID, &wl.Visibility, &wordsJSON, &statsJSON, &wl.Version, &wl.CreatedAt, &wl.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(wordsJSON, &wl.Words); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(statsJSON, &wl.LearningStats); err != nil {
		return nil, err
	}
	return &wl, nil
}
