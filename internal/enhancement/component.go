// Package enhancement implements the on-demand component engine
// (spec.md §4.4): a fixed grid of (definition, component) LLM dispatches
// that enriches an existing Definition's facets without re-running the
// lookup pipeline.
package enhancement

import (
	"context"

	"lexigraph.dev/dictionary/internal/llm"
	"lexigraph.dev/dictionary/internal/model"
)

// Component is a pure function from (definition, word) to a partial
// Definition patch, dispatched through the LLM substrate. Each component
// owns exactly the field(s) it writes.
type Component interface {
	// Name identifies the component (e.g. "synonyms", "cefr_level").
	Name() string
	// TargetEmpty reports whether def's field for this component is
	// currently unset, gating force=false dispatches.
	TargetEmpty(def model.Definition) bool
	// Generate invokes the LLM and returns the patch to apply.
	Generate(ctx context.Context, substrate *llm.Substrate, word model.Word, def model.Definition) (Patch, error)
}

// Patch carries the subset of Definition fields one component writes, plus
// any new Example rows a component (e.g. "examples") wants persisted
// alongside the Definition, since Examples are owned rows rather than an
// inline Definition field.
type Patch struct {
	Synonyms         []string
	Antonyms         []string
	NewExamples      []model.Example
	WordForms        []string
	CEFRLevel        *string
	FrequencyBand    *int
	LanguageRegister *string
	Domain           *string
	Region           []string
	GrammarPatterns  []string
	Collocations     []string
	UsageNotes       []string
	Transitivity     *model.Transitivity
}

func (p Patch) apply(def *model.Definition) {
	if p.Synonyms != nil {
		def.Synonyms = p.Synonyms
	}
	if p.Antonyms != nil {
		def.Antonyms = p.Antonyms
	}
	if p.WordForms != nil {
		def.WordForms = p.WordForms
	}
	if p.CEFRLevel != nil {
		def.CEFRLevel = p.CEFRLevel
	}
	if p.FrequencyBand != nil {
		def.FrequencyBand = p.FrequencyBand
	}
	if p.LanguageRegister != nil {
		def.LanguageRegister = p.LanguageRegister
	}
	if p.Domain != nil {
		def.Domain = p.Domain
	}
	if p.Region != nil {
		def.Region = p.Region
	}
	if p.GrammarPatterns != nil {
		def.GrammarPatterns = p.GrammarPatterns
	}
	if p.Collocations != nil {
		def.Collocations = p.Collocations
	}
	if p.UsageNotes != nil {
		def.UsageNotes = p.UsageNotes
	}
	if p.Transitivity != nil {
		def.Transitivity = p.Transitivity
	}
}
