package pipeline

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"lexigraph.dev/dictionary/common/apierr"
	"lexigraph.dev/dictionary/common/id"
	"lexigraph.dev/dictionary/internal/llm"
	"lexigraph.dev/dictionary/internal/model"
)

// clusterAssignment is one definition's placement, as returned by the
// cluster-mapping task.
type clusterAssignment struct {
	DefinitionIndex int     `json:"definition_index"`
	ClusterID       string  `json:"cluster_id"`
	ClusterLabel    string  `json:"cluster_label"`
	RelevanceScore  float64 `json:"relevance_score"`
}

type clusterMappingResult struct {
	Assignments []clusterAssignment `json:"assignments"`
}

// definitionCluster groups the raw provider Definitions assigned to one
// meaning, ready for per-cluster synthesis.
type definitionCluster struct {
	id    string
	label string
	defs  []model.Definition
}

// cluster invokes the cluster-mapping task over every definition gathered
// from provider fan-out. Definitions the model does not place remain their
// own singleton clusters, per spec.md §4.3.
func (l *Lookup) cluster(ctx context.Context, word string, defs []model.Definition) ([]definitionCluster, error) {
	if len(defs) == 0 {
		return nil, apierr.NotFound("definition", word)
	}

	prompt := buildClusterPrompt(word, defs)
	var result clusterMappingResult
	_, err := l.substrate.Call(ctx, llm.Request{
		TaskTag:      llm.TaskExtractClusterMapping,
		SystemPrompt: "You group dictionary definitions of a word into distinct meaning clusters.",
		UserPrompt:   prompt,
		SchemaName:   "cluster_mapping",
		Schema:       llm.GenerateSchema[clusterMappingResult](),
		CallerID:     "pipeline:cluster",
	}, &result)
	if err != nil {
		return nil, fmt.Errorf("clustering definitions: %w", err)
	}

	placed := make(map[int]bool, len(result.Assignments))
	byCluster := make(map[string]*definitionCluster)
	var order []string
	for _, a := range result.Assignments {
		if a.DefinitionIndex < 0 || a.DefinitionIndex >= len(defs) {
			continue
		}
		placed[a.DefinitionIndex] = true
		dc, ok := byCluster[a.ClusterID]
		if !ok {
			dc = &definitionCluster{id: a.ClusterID, label: a.ClusterLabel}
			byCluster[a.ClusterID] = dc
			order = append(order, a.ClusterID)
		}
		dc.defs = append(dc.defs, defs[a.DefinitionIndex])
	}

	for i, d := range defs {
		if placed[i] {
			continue
		}
		singletonID := fmt.Sprintf("singleton-%d", i)
		byCluster[singletonID] = &definitionCluster{id: singletonID, label: d.PartOfSpeech, defs: []model.Definition{d}}
		order = append(order, singletonID)
	}

	sort.Strings(order)
	clusters := make([]definitionCluster, 0, len(order))
	for _, cid := range order {
		clusters = append(clusters, *byCluster[cid])
	}
	return clusters, nil
}

func buildClusterPrompt(word string, defs []model.Definition) string {
	var b []byte
	b = append(b, fmt.Sprintf("Word: %s\n\nDefinitions:\n", word)...)
	for i, d := range defs {
		b = append(b, fmt.Sprintf("[%d] (%s) %s\n", i, d.PartOfSpeech, d.Text)...)
	}
	return string(b)
}

// synthesizedDefinition is the structured-output shape the synthesis task
// returns for one cluster.
type synthesizedDefinition struct {
	PartOfSpeech string   `json:"part_of_speech"`
	Text         string   `json:"text"`
	Synonyms     []string `json:"synonyms,omitempty"`
	Antonyms     []string `json:"antonyms,omitempty"`
}

type synthesisResult struct {
	Definitions []synthesizedDefinition `json:"definitions"`
}

// synthesizeClusters runs synthesis concurrently per cluster, bounded by
// the number of clusters, tie-breaking deterministically on cluster id
// (already sorted by cluster()).
func (l *Lookup) synthesizeClusters(ctx context.Context, word *model.Word, clusters []definitionCluster) ([]model.Definition, error) {
	results := make([][]model.Definition, len(clusters))
	errs := make([]error, len(clusters))

	var wg sync.WaitGroup
	for i, c := range clusters {
		wg.Add(1)
		go func(idx int, cl definitionCluster) {
			defer wg.Done()
			defs, err := l.synthesizeOneCluster(ctx, word, cl)
			results[idx] = defs
			errs[idx] = err
		}(i, c)
	}
	wg.Wait()

	var out []model.Definition
	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("synthesizing cluster %q: %w", clusters[i].id, err)
		}
		out = append(out, results[i]...)
	}
	return out, nil
}

func (l *Lookup) synthesizeOneCluster(ctx context.Context, word *model.Word, cl definitionCluster) ([]model.Definition, error) {
	prompt := buildSynthesisPrompt(word.Text, cl)
	var result synthesisResult
	_, err := l.substrate.Call(ctx, llm.Request{
		TaskTag:      llm.TaskSynthesizeDefinitions,
		SystemPrompt: "You merge near-duplicate dictionary definitions for one meaning of a word into a single, clear definition.",
		UserPrompt:   prompt,
		SchemaName:   "synthesis_result",
		Schema:       llm.GenerateSchema[synthesisResult](),
		CallerID:     "pipeline:synthesize",
	}, &result)
	if err != nil {
		return nil, err
	}

	cluster := cl // capture for MeaningCluster pointer stability
	out := make([]model.Definition, 0, len(result.Definitions))
	for i, sd := range result.Definitions {
		def := model.Definition{
			ID:             id.New(),
			WordID:         word.ID,
			PartOfSpeech:   sd.PartOfSpeech,
			Text:           sd.Text,
			SenseNumber:    i + 1,
			MeaningCluster: &model.MeaningCluster{ID: cluster.id, Label: cluster.label},
			Synonyms:       sd.Synonyms,
			Antonyms:       sd.Antonyms,
			Version:        1,
		}
		if err := l.stores.Definitions().Create(ctx, &def); err != nil {
			return nil, err
		}
		out = append(out, def)
	}
	return out, nil
}

func buildSynthesisPrompt(word string, cl definitionCluster) string {
	var b []byte
	b = append(b, fmt.Sprintf("Word: %s\nMeaning cluster: %s\n\nSource definitions:\n", word, cl.label)...)
	for _, d := range cl.defs {
		b = append(b, fmt.Sprintf("- (%s) %s\n", d.PartOfSpeech, d.Text)...)
	}
	return string(b)
}

type pronunciationResult struct {
	Phonetic string `json:"phonetic"`
	IPA      string `json:"ipa"`
}

// synthesizePronunciation picks the first provider-supplied Pronunciation;
// if none was fetched, it asks the LLM to generate one.
func (l *Lookup) synthesizePronunciation(ctx context.Context, word *model.Word, fetched []fetchResult) (*model.Pronunciation, error) {
	if existing, err := l.stores.Pronunciations().GetByWord(ctx, word.ID); err == nil {
		return existing, nil
	}

	var result pronunciationResult
	_, err := l.substrate.Call(ctx, llm.Request{
		TaskTag:      llm.TaskGeneratePronunciation,
		SystemPrompt: "You produce an approximate phonetic respelling and IPA transcription for an English word.",
		UserPrompt:   fmt.Sprintf("Word: %s", word.Text),
		SchemaName:   "pronunciation_result",
		Schema:       llm.GenerateSchema[pronunciationResult](),
		CallerID:     "pipeline:pronunciation",
		MaxTokens:    200,
	}, &result)
	if err != nil {
		return nil, fmt.Errorf("generating pronunciation: %w", err)
	}

	p := &model.Pronunciation{
		ID:       id.New(),
		WordID:   word.ID,
		Phonetic: result.Phonetic,
		IPA:      result.IPA,
		Version:  1,
	}
	if err := l.stores.Pronunciations().Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

type etymologyResult struct {
	Etymology string `json:"etymology"`
}

// synthesizeEtymology asks the LLM for an etymology given only the word's
// text; the fetched provider data is not included in the prompt.
func (l *Lookup) synthesizeEtymology(ctx context.Context, word *model.Word, fetched []fetchResult) (*string, *llm.Usage, error) {
	var result etymologyResult
	usage, err := l.substrate.Call(ctx, llm.Request{
		TaskTag:      llm.TaskSynthesizeEtymology,
		SystemPrompt: "You write a concise, one-paragraph etymology for an English word.",
		UserPrompt:   fmt.Sprintf("Word: %s", word.Text),
		SchemaName:   "etymology_result",
		Schema:       llm.GenerateSchema[etymologyResult](),
		CallerID:     "pipeline:etymology",
		MaxTokens:    300,
	}, &result)
	if err != nil {
		return nil, nil, fmt.Errorf("synthesizing etymology: %w", err)
	}
	return &result.Etymology, usage, nil
}

type generatedFact struct {
	Content  string `json:"content"`
	Category string `json:"category"`
}

type factsResult struct {
	Facts []generatedFact `json:"facts"`
}

// synthesizeFacts generates interesting facts keyed off the primary
// synthesized definition (the first by sense order).
func (l *Lookup) synthesizeFacts(ctx context.Context, word *model.Word, synthesized []model.Definition) ([]model.Fact, error) {
	if len(synthesized) == 0 {
		return nil, nil
	}
	primary := synthesized[0]

	var result factsResult
	usage, err := l.substrate.Call(ctx, llm.Request{
		TaskTag:      llm.TaskGenerateFacts,
		SystemPrompt: "You produce 2-4 short, interesting facts about a word given its primary meaning.",
		UserPrompt:   fmt.Sprintf("Word: %s\nPrimary definition: %s", word.Text, primary.Text),
		SchemaName:   "facts_result",
		Schema:       llm.GenerateSchema[factsResult](),
		CallerID:     "pipeline:facts",
		MaxTokens:    500,
	}, &result)
	if err != nil {
		return nil, fmt.Errorf("generating facts: %w", err)
	}

	facts := make([]model.Fact, 0, len(result.Facts))
	for _, gf := range result.Facts {
		f := model.Fact{
			ID:       id.New(),
			WordID:   word.ID,
			Content:  gf.Content,
			Category: model.FactCategory(gf.Category),
			ModelInfo: model.ModelInfo{
				Model:            usage.Model,
				PromptTokens:     usage.PromptTokens,
				CompletionTokens: usage.CompletionTokens,
				TotalTokens:      usage.TotalTokens,
			},
			Version: 1,
		}
		if err := l.stores.Facts().Create(ctx, &f); err != nil {
			return nil, err
		}
		facts = append(facts, f)
	}
	return facts, nil
}
