// Package store is the persistence facade: one repository interface and
// Postgres implementation per entity in internal/model, each enforcing the
// optimistic-concurrency and cascade-delete invariants from spec.md §3.
package store

import (
	"context"
	"errors"

	"lexigraph.dev/dictionary/internal/model"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrVersionConflict is returned when an Update's expected version does not
// match the row's current version.
var ErrVersionConflict = errors.New("version conflict")

// WordStore resolves and creates Word records.
type WordStore interface {
	GetByID(ctx context.Context, id int64) (*model.Word, error)
	GetByNormalized(ctx context.Context, normalized, language string) (*model.Word, error)
	GetOrCreate(ctx context.Context, text, normalized, language string) (*model.Word, error)
	Delete(ctx context.Context, id int64) error // cascades Definitions/ProviderData/Pronunciation/Facts/SynthesizedEntry
}

// ProviderDataStore persists per-provider fetch results.
type ProviderDataStore interface {
	ListByWord(ctx context.Context, wordID int64) ([]model.ProviderData, error)
	Create(ctx context.Context, pd *model.ProviderData) error
	ReplaceForProvider(ctx context.Context, wordID int64, provider string, pd *model.ProviderData) error
}

// DefinitionStore manages Definition rows and their optimistic concurrency.
type DefinitionStore interface {
	GetByID(ctx context.Context, id int64) (*model.Definition, error)
	ListByWord(ctx context.Context, wordID int64) ([]model.Definition, error)
	ListByIDs(ctx context.Context, ids []int64) ([]model.Definition, error)
	Create(ctx context.Context, def *model.Definition) error
	// Update writes def, checking def.Version against the stored row and
	// failing with ErrVersionConflict on mismatch, then increments the
	// in-memory def.Version to match the new stored value.
	Update(ctx context.Context, def *model.Definition) error
}

// ExampleStore manages Example rows owned by a Definition.
type ExampleStore interface {
	ListByDefinition(ctx context.Context, definitionID int64) ([]model.Example, error)
	Create(ctx context.Context, ex *model.Example) error
}

// PronunciationStore manages the single Pronunciation owned by a Word.
type PronunciationStore interface {
	GetByWord(ctx context.Context, wordID int64) (*model.Pronunciation, error)
	Create(ctx context.Context, p *model.Pronunciation) error
}

// FactStore manages Facts generated for a Word.
type FactStore interface {
	ListByWord(ctx context.Context, wordID int64) ([]model.Fact, error)
	ListByIDs(ctx context.Context, ids []int64) ([]model.Fact, error)
	Create(ctx context.Context, f *model.Fact) error
}

// SynthesizedEntryStore manages the at-most-one SynthesizedEntry per Word.
type SynthesizedEntryStore interface {
	GetByWord(ctx context.Context, wordID int64) (*model.SynthesizedEntry, error)
	// Upsert creates the entry if none exists for WordID, or replaces it
	// (used on force_refresh).
	Upsert(ctx context.Context, entry *model.SynthesizedEntry) error
	TouchAccess(ctx context.Context, id int64) error
}

// WordListStore manages WordList aggregates (list + its items by value).
type WordListStore interface {
	GetByID(ctx context.Context, id int64) (*model.WordList, error)
	GetByHashID(ctx context.Context, hashID string) (*model.WordList, error)
	ListByOwner(ctx context.Context, ownerID string) ([]model.WordList, error)
	Create(ctx context.Context, wl *model.WordList) error
	Update(ctx context.Context, wl *model.WordList) error
	Delete(ctx context.Context, id int64) error
	UpsertItem(ctx context.Context, listID int64, item model.WordListItem) error
	RemoveItem(ctx context.Context, listID int64, wordID int64) error
}
