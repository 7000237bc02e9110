package enhancement

import (
	"context"
	"fmt"

	"lexigraph.dev/dictionary/internal/llm"
	"lexigraph.dev/dictionary/internal/model"
)

// All returns the default facet set the lookup pipeline enhances every new
// Definition with (spec.md §4.3 stage 8).
func All() []Component {
	return []Component{
		synonymsComponent{},
		antonymsComponent{},
		examplesComponent{},
		wordFormsComponent{},
		cefrComponent{},
		frequencyComponent{},
		domainComponent{},
		registerComponent{},
		collocationsComponent{},
		usageNotesComponent{},
		grammarPatternsComponent{},
		regionalVariantsComponent{},
	}
}

// ByNames resolves a component-set request (spec.md §4.4/§6.1) against the
// recognized component set, preserving All()'s canonical ordering. An empty
// names list means "every component". An unrecognized name is rejected
// outright rather than silently dropped, naming the offending value so the
// caller can turn it into a structured validation error.
func ByNames(names []string) ([]Component, error) {
	all := All()
	if len(names) == 0 {
		return all, nil
	}

	byName := make(map[string]Component, len(all))
	for _, c := range all {
		byName[c.Name()] = c
	}

	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		if _, ok := byName[n]; !ok {
			return nil, fmt.Errorf("unknown component %q", n)
		}
		wanted[n] = true
	}

	out := make([]Component, 0, len(names))
	for _, c := range all {
		if wanted[c.Name()] {
			out = append(out, c)
		}
	}
	return out, nil
}

func prompt(word model.Word, def model.Definition) string {
	return fmt.Sprintf("Word: %s\nPart of speech: %s\nDefinition: %s", word.Text, def.PartOfSpeech, def.Text)
}

type wordListResult struct {
	Items []string `json:"items"`
}

func callWordList(ctx context.Context, substrate *llm.Substrate, task llm.TaskTag, system string, word model.Word, def model.Definition) ([]string, error) {
	var result wordListResult
	_, err := substrate.Call(ctx, llm.Request{
		TaskTag:      task,
		SystemPrompt: system,
		UserPrompt:   prompt(word, def),
		SchemaName:   "word_list_result",
		Schema:       llm.GenerateSchema[wordListResult](),
		CallerID:     fmt.Sprintf("enhancement:%s", task),
		MaxTokens:    200,
	}, &result)
	return result.Items, err
}

type synonymsComponent struct{}

func (synonymsComponent) Name() string                             { return "synonyms" }
func (synonymsComponent) TargetEmpty(def model.Definition) bool     { return len(def.Synonyms) == 0 }
func (c synonymsComponent) Generate(ctx context.Context, s *llm.Substrate, w model.Word, d model.Definition) (Patch, error) {
	items, err := callWordList(ctx, s, llm.TaskGenerateSynonyms, "You list close synonyms for a word sense.", w, d)
	return Patch{Synonyms: items}, err
}

type antonymsComponent struct{}

func (antonymsComponent) Name() string                         { return "antonyms" }
func (antonymsComponent) TargetEmpty(def model.Definition) bool { return len(def.Antonyms) == 0 }
func (c antonymsComponent) Generate(ctx context.Context, s *llm.Substrate, w model.Word, d model.Definition) (Patch, error) {
	items, err := callWordList(ctx, s, llm.TaskGenerateAntonyms, "You list antonyms for a word sense, or an empty list if none exist.", w, d)
	return Patch{Antonyms: items}, err
}

type wordFormsComponent struct{}

func (wordFormsComponent) Name() string                         { return "word_forms" }
func (wordFormsComponent) TargetEmpty(def model.Definition) bool { return len(def.WordForms) == 0 }
func (c wordFormsComponent) Generate(ctx context.Context, s *llm.Substrate, w model.Word, d model.Definition) (Patch, error) {
	items, err := callWordList(ctx, s, llm.TaskGenerateWordForms, "You list inflected word forms (plurals, tenses, comparatives) for a word sense.", w, d)
	return Patch{WordForms: items}, err
}

type collocationsComponent struct{}

func (collocationsComponent) Name() string                         { return "collocations" }
func (collocationsComponent) TargetEmpty(def model.Definition) bool { return len(def.Collocations) == 0 }
func (c collocationsComponent) Generate(ctx context.Context, s *llm.Substrate, w model.Word, d model.Definition) (Patch, error) {
	items, err := callWordList(ctx, s, llm.TaskGenerateCollocations, "You list common collocations for a word sense.", w, d)
	return Patch{Collocations: items}, err
}

type usageNotesComponent struct{}

func (usageNotesComponent) Name() string                         { return "usage_notes" }
func (usageNotesComponent) TargetEmpty(def model.Definition) bool { return len(def.UsageNotes) == 0 }
func (c usageNotesComponent) Generate(ctx context.Context, s *llm.Substrate, w model.Word, d model.Definition) (Patch, error) {
	items, err := callWordList(ctx, s, llm.TaskGenerateUsageNotes, "You list short usage notes (register pitfalls, common confusions) for a word sense.", w, d)
	return Patch{UsageNotes: items}, err
}

type grammarPatternsComponent struct{}

func (grammarPatternsComponent) Name() string { return "grammar_patterns" }
func (grammarPatternsComponent) TargetEmpty(def model.Definition) bool {
	return len(def.GrammarPatterns) == 0
}
func (c grammarPatternsComponent) Generate(ctx context.Context, s *llm.Substrate, w model.Word, d model.Definition) (Patch, error) {
	items, err := callWordList(ctx, s, llm.TaskIdentifyGrammarPatterns, "You list grammar patterns (e.g. verb complementation) for a word sense.", w, d)
	return Patch{GrammarPatterns: items}, err
}

type regionalVariantsComponent struct{}

func (regionalVariantsComponent) Name() string                         { return "region" }
func (regionalVariantsComponent) TargetEmpty(def model.Definition) bool { return len(def.Region) == 0 }
func (c regionalVariantsComponent) Generate(ctx context.Context, s *llm.Substrate, w model.Word, d model.Definition) (Patch, error) {
	items, err := callWordList(ctx, s, llm.TaskIdentifyRegionalVariants, "You list the English-speaking regions where this word sense is in common use.", w, d)
	return Patch{Region: items}, err
}

type singleStringResult struct {
	Value string `json:"value"`
}

func callSingleString(ctx context.Context, substrate *llm.Substrate, task llm.TaskTag, system string, word model.Word, def model.Definition) (string, error) {
	var result singleStringResult
	_, err := substrate.Call(ctx, llm.Request{
		TaskTag:      task,
		SystemPrompt: system,
		UserPrompt:   prompt(word, def),
		SchemaName:   "single_string_result",
		Schema:       llm.GenerateSchema[singleStringResult](),
		CallerID:     fmt.Sprintf("enhancement:%s", task),
		MaxTokens:    60,
	}, &result)
	return result.Value, err
}

type cefrComponent struct{}

func (cefrComponent) Name() string                         { return "cefr_level" }
func (cefrComponent) TargetEmpty(def model.Definition) bool { return def.CEFRLevel == nil }
func (c cefrComponent) Generate(ctx context.Context, s *llm.Substrate, w model.Word, d model.Definition) (Patch, error) {
	v, err := callSingleString(ctx, s, llm.TaskAssessCEFRLevel, "You assess the CEFR level (A1-C2) of a word sense for a language learner.", w, d)
	if err != nil {
		return Patch{}, err
	}
	return Patch{CEFRLevel: &v}, nil
}

type domainComponent struct{}

func (domainComponent) Name() string                         { return "domain" }
func (domainComponent) TargetEmpty(def model.Definition) bool { return def.Domain == nil }
func (c domainComponent) Generate(ctx context.Context, s *llm.Substrate, w model.Word, d model.Definition) (Patch, error) {
	v, err := callSingleString(ctx, s, llm.TaskClassifyDomain, "You classify the subject domain of a word sense (e.g. 'general', 'medical', 'legal').", w, d)
	if err != nil {
		return Patch{}, err
	}
	return Patch{Domain: &v}, nil
}

type registerComponent struct{}

func (registerComponent) Name() string                         { return "language_register" }
func (registerComponent) TargetEmpty(def model.Definition) bool { return def.LanguageRegister == nil }
func (c registerComponent) Generate(ctx context.Context, s *llm.Substrate, w model.Word, d model.Definition) (Patch, error) {
	v, err := callSingleString(ctx, s, llm.TaskClassifyRegister, "You classify the register of a word sense (e.g. 'formal', 'informal', 'slang').", w, d)
	if err != nil {
		return Patch{}, err
	}
	return Patch{LanguageRegister: &v}, nil
}

type frequencyResult struct {
	Band int `json:"band"`
}

type frequencyComponent struct{}

func (frequencyComponent) Name() string                         { return "frequency_band" }
func (frequencyComponent) TargetEmpty(def model.Definition) bool { return def.FrequencyBand == nil }
func (c frequencyComponent) Generate(ctx context.Context, s *llm.Substrate, w model.Word, d model.Definition) (Patch, error) {
	var result frequencyResult
	_, err := s.Call(ctx, llm.Request{
		TaskTag:      llm.TaskAssessFrequency,
		SystemPrompt: "You rate a word sense's frequency of use on a scale of 1 (very rare) to 5 (very common).",
		UserPrompt:   prompt(w, d),
		SchemaName:   "frequency_result",
		Schema:       llm.GenerateSchema[frequencyResult](),
		CallerID:     "enhancement:frequency_band",
		MaxTokens:    30,
	}, &result)
	if err != nil {
		return Patch{}, err
	}
	return Patch{FrequencyBand: &result.Band}, nil
}

type examplesResult struct {
	Examples []string `json:"examples"`
}

type examplesComponent struct{}

func (examplesComponent) Name() string { return "examples" }
func (examplesComponent) TargetEmpty(def model.Definition) bool {
	return len(def.ExampleIDs) == 0
}
func (c examplesComponent) Generate(ctx context.Context, s *llm.Substrate, w model.Word, d model.Definition) (Patch, error) {
	var result examplesResult
	_, err := s.Call(ctx, llm.Request{
		TaskTag:      llm.TaskGenerateExamples,
		SystemPrompt: "You write 2-3 natural example sentences using a word in the given sense.",
		UserPrompt:   prompt(w, d),
		SchemaName:   "examples_result",
		Schema:       llm.GenerateSchema[examplesResult](),
		CallerID:     "enhancement:examples",
		MaxTokens:    300,
	}, &result)
	if err != nil {
		return Patch{}, err
	}
	examples := make([]model.Example, 0, len(result.Examples))
	for _, text := range result.Examples {
		examples = append(examples, model.Example{
			DefinitionID: d.ID,
			Text:         text,
			Type:         model.ExampleTypeGenerated,
		})
	}
	return Patch{NewExamples: examples}, nil
}
