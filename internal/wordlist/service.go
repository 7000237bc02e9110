// Package wordlist manages WordList aggregates on top of store.WordListStore
// and keeps their corpus.Manager search indexes in step: every mutation
// invalidates the affected corpora and rebuilds them eagerly, so a Search
// right after a write never serves stale vocabulary (spec.md §4.7).
package wordlist

import (
	"context"
	"fmt"

	"lexigraph.dev/dictionary/internal/corpus"
	"lexigraph.dev/dictionary/internal/model"
	"lexigraph.dev/dictionary/internal/store"
)

type Service struct {
	stores  *store.Stores
	corpora *corpus.Manager
}

func NewService(stores *store.Stores, corpora *corpus.Manager) *Service {
	return &Service{stores: stores, corpora: corpora}
}

func (s *Service) Get(ctx context.Context, listID int64) (*model.WordList, error) {
	return s.stores.WordLists().GetByID(ctx, listID)
}

func (s *Service) ListByOwner(ctx context.Context, ownerID string) ([]model.WordList, error) {
	return s.stores.WordLists().ListByOwner(ctx, ownerID)
}

func (s *Service) Create(ctx context.Context, wl *model.WordList) error {
	if err := s.stores.WordLists().Create(ctx, wl); err != nil {
		return err
	}
	return s.reindex(ctx, wl)
}

func (s *Service) Update(ctx context.Context, wl *model.WordList) error {
	if err := s.stores.WordLists().Update(ctx, wl); err != nil {
		return err
	}
	return s.reindex(ctx, wl)
}

func (s *Service) Delete(ctx context.Context, listID int64) error {
	wl, err := s.stores.WordLists().GetByID(ctx, listID)
	if err != nil {
		return err
	}
	if err := s.stores.WordLists().Delete(ctx, listID); err != nil {
		return err
	}
	s.corpora.Invalidate(wordsCorpusName(wl))
	return s.reindexNames(ctx, wl.OwnerID)
}

func (s *Service) UpsertItem(ctx context.Context, listID int64, item model.WordListItem) error {
	if err := s.stores.WordLists().UpsertItem(ctx, listID, item); err != nil {
		return err
	}
	wl, err := s.stores.WordLists().GetByID(ctx, listID)
	if err != nil {
		return err
	}
	return s.reindexWords(ctx, wl)
}

func (s *Service) RemoveItem(ctx context.Context, listID int64, wordID int64) error {
	if err := s.stores.WordLists().RemoveItem(ctx, listID, wordID); err != nil {
		return err
	}
	wl, err := s.stores.WordLists().GetByID(ctx, listID)
	if err != nil {
		return err
	}
	return s.reindexWords(ctx, wl)
}

// reindex rebuilds both the shared wordlist-names corpus for wl's owner and
// wl's own words corpus. Create/Update can change either the list's name or
// its words, so both need a fresh build.
func (s *Service) reindex(ctx context.Context, wl *model.WordList) error {
	if err := s.reindexNames(ctx, wl.OwnerID); err != nil {
		return err
	}
	return s.reindexWords(ctx, wl)
}

func (s *Service) reindexNames(ctx context.Context, ownerID string) error {
	lists, err := s.stores.WordLists().ListByOwner(ctx, ownerID)
	if err != nil {
		return err
	}
	vocabulary := make([]corpus.VocabEntry, len(lists))
	for i, wl := range lists {
		vocabulary[i] = corpus.VocabEntry{Text: wl.Name}
	}
	name := namesCorpusName(ownerID)
	s.corpora.Invalidate(name)
	return s.corpora.CreateOrGet(ctx, corpus.KindWordlistNames, name, vocabulary)
}

// reindexWords rebuilds wl's own word-text corpus, resolving each item's
// Word by id and silently skipping dangling references (spec.md §3 already
// tolerates these at read time, so indexing does the same).
func (s *Service) reindexWords(ctx context.Context, wl *model.WordList) error {
	vocabulary := make([]corpus.VocabEntry, 0, len(wl.Words))
	for _, item := range wl.Words {
		word, err := s.stores.Words().GetByID(ctx, item.WordID)
		if err != nil {
			if err == store.ErrNotFound {
				continue
			}
			return err
		}
		vocabulary = append(vocabulary, corpus.VocabEntry{Text: word.Text})
	}
	name := wordsCorpusName(wl)
	s.corpora.Invalidate(name)
	return s.corpora.CreateOrGet(ctx, corpus.KindWordlistWords, name, vocabulary)
}

func namesCorpusName(ownerID string) string {
	return fmt.Sprintf("wordlist_names:%s", ownerID)
}

func wordsCorpusName(wl *model.WordList) string {
	return fmt.Sprintf("wordlist_words:%d", wl.ID)
}
