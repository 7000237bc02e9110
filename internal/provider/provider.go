// Package provider implements the external dictionary provider contracts
// (spec.md §4.2): one Fetch operation per source, each rate-limited and
// fail-soft.
package provider

import (
	"context"
	"errors"

	"lexigraph.dev/dictionary/internal/model"
)

// ErrNotFound is returned when the provider has no entry for a word. It is
// distinguished from other errors because the pipeline treats it as "this
// provider has nothing to say", not as a provider failure.
var ErrNotFound = errors.New("provider: word not found")

// Fetched bundles the normalized ProviderData with any Definitions,
// Examples, and Pronunciation the provider's response already contained —
// most providers return full entries, not just a pointer to elsewhere.
type Fetched struct {
	ProviderData  model.ProviderData
	Definitions   []model.Definition
	Examples      map[int]([]model.Example) // keyed by index into Definitions
	Pronunciation *model.Pronunciation
}

// Client is the one operation every dictionary provider exposes.
type Client interface {
	// Tag identifies this provider (e.g. "wiktionary", "apple").
	Tag() string
	// Available reports whether this provider can be used in the current
	// deployment; local/platform providers are a capability flag, not an
	// error (spec.md §4.2).
	Available() bool
	// Fetch retrieves and normalizes one word's entry. Returns ErrNotFound
	// if the provider has nothing for word.
	Fetch(ctx context.Context, word string) (*Fetched, error)
}
