package store

import (
	"lexigraph.dev/dictionary/core/db"
)

// Stores provides access to every repository implementation. It can be
// instantiated with either a pool connection or an in-flight transaction,
// so the same type is used both outside and inside db.WithTx.
//
// Usage with pool (non-transactional):
//
//	stores := store.NewStores(database.Pool())
//	word, err := stores.Words().GetByID(ctx, 123)
//
// Usage with transaction:
//
//	err := database.WithTx(ctx, func(tx pgx.Tx) error {
//	    stores := store.NewStores(tx)
//	    if err := stores.Words().Delete(ctx, wordID); err != nil {
//	        return err
//	    }
//	    return stores.SynthesizedEntries().Upsert(ctx, entry)
//	})
type Stores struct {
	q db.Querier
}

func NewStores(q db.Querier) *Stores {
	return &Stores{q: q}
}

func (s *Stores) Words() WordStore                           { return &wordStore{q: s.q} }
func (s *Stores) ProviderData() ProviderDataStore             { return &providerDataStore{q: s.q} }
func (s *Stores) Definitions() DefinitionStore                { return &definitionStore{q: s.q} }
func (s *Stores) Examples() ExampleStore                      { return &exampleStore{q: s.q} }
func (s *Stores) Pronunciations() PronunciationStore          { return &pronunciationStore{q: s.q} }
func (s *Stores) Facts() FactStore                            { return &factStore{q: s.q} }
func (s *Stores) SynthesizedEntries() SynthesizedEntryStore   { return &synthesizedEntryStore{q: s.q} }
func (s *Stores) WordLists() WordListStore                    { return &wordListStore{q: s.q} }
