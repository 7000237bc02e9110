package enhancement

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"lexigraph.dev/dictionary/internal/llm"
	"lexigraph.dev/dictionary/internal/model"
	"lexigraph.dev/dictionary/internal/store"
)

const asyncEnhanceTimeout = 2 * time.Minute

// maxParallelDispatches bounds the (definitions × components) grid's
// concurrent LLM dispatches, mirroring the provider fan-out's bounded
// parallelism rather than submitting everything at once.
const maxParallelDispatches = 8

// Failure records one (definition, component) dispatch that did not
// complete; the batch gathers these instead of aborting.
type Failure struct {
	DefinitionID int64
	Component    string
	Err          error
}

// Engine dispatches the enhancement component grid and persists results.
type Engine struct {
	stores     *store.Stores
	substrate  *llm.Substrate
	components []Component
}

func NewEngine(stores *store.Stores, substrate *llm.Substrate, components []Component) *Engine {
	if components == nil {
		components = All()
	}
	return &Engine{stores: stores, substrate: substrate, components: components}
}

// EnhanceAsync runs Enhance in the background with its own timeout,
// detached from the caller's request context, so the lookup pipeline's
// stage 8 never delays persistence (spec.md §4.3). Failures are logged,
// not surfaced, since nothing awaits this call.
func (e *Engine) EnhanceAsync(word model.Word, definitions []model.Definition) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), asyncEnhanceTimeout)
		defer cancel()
		failures, err := e.Enhance(ctx, word, definitions, false, nil)
		if err != nil {
			slog.ErrorContext(ctx, "background enhancement failed", "word", word.Text, "error", err)
			return
		}
		if len(failures) > 0 {
			slog.WarnContext(ctx, "background enhancement had partial failures",
				"word", word.Text, "failure_count", len(failures))
		}
	}()
}

// Enhance dispatches every (definition, component) pair, skipping
// components whose target field is already populated unless force is
// set. All dispatches run concurrently, bounded by maxParallelDispatches;
// failures are collected and do not abort the batch. Touched definitions
// are persisted once each, after the full grid has settled. A nil
// components argument runs the engine's default set (e.components); callers
// that accept a caller-supplied component-set (spec.md §4.4/§6.1) resolve it
// through ByNames first and pass the result here.
func (e *Engine) Enhance(ctx context.Context, word model.Word, definitions []model.Definition, force bool, components []Component) ([]Failure, error) {
	if components == nil {
		components = e.components
	}
	type job struct {
		defIdx int
		comp   Component
	}
	var jobs []job
	for i, def := range definitions {
		for _, comp := range components {
			if !force && !comp.TargetEmpty(def) {
				continue
			}
			jobs = append(jobs, job{defIdx: i, comp: comp})
		}
	}
	if len(jobs) == 0 {
		return nil, nil
	}

	patches := make([]Patch, len(jobs))
	errs := make([]error, len(jobs))

	var wg sync.WaitGroup
	sem := make(chan struct{}, maxParallelDispatches)
	for i, j := range jobs {
		wg.Add(1)
		go func(idx int, jb job) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			patch, err := jb.comp.Generate(ctx, e.substrate, word, definitions[jb.defIdx])
			patches[idx] = patch
			errs[idx] = err
		}(i, j)
	}
	wg.Wait()

	touched := make(map[int]bool)
	var failures []Failure
	for i, j := range jobs {
		if errs[i] != nil {
			failures = append(failures, Failure{
				DefinitionID: definitions[j.defIdx].ID,
				Component:    j.comp.Name(),
				Err:          errs[i],
			})
			continue
		}
		patches[i].apply(&definitions[j.defIdx])
		touched[j.defIdx] = true
		for _, ex := range patches[i].NewExamples {
			if err := e.stores.Examples().Create(ctx, &ex); err != nil {
				failures = append(failures, Failure{DefinitionID: definitions[j.defIdx].ID, Component: j.comp.Name(), Err: err})
				continue
			}
			definitions[j.defIdx].ExampleIDs = append(definitions[j.defIdx].ExampleIDs, ex.ID)
		}
	}

	for idx := range touched {
		if err := e.stores.Definitions().Update(ctx, &definitions[idx]); err != nil {
			failures = append(failures, Failure{DefinitionID: definitions[idx].ID, Component: "persist", Err: err})
		}
	}

	return failures, nil
}

// Regenerate resolves a SynthesizedEntry's Definitions and dispatches the
// enhancement grid over them, the entry point spec.md §4.4 calls
// "regenerate components for a SynthesizedEntry". components restricts the
// grid to a caller-chosen subset (resolve it through ByNames first); nil
// runs every component. When force is set it also generates new Facts for
// the word; pronunciation and etymology are not regenerated here.
func (e *Engine) Regenerate(ctx context.Context, entry model.SynthesizedEntry, word model.Word, force bool, components []Component) ([]Failure, error) {
	defs, err := e.stores.Definitions().ListByIDs(ctx, entry.DefinitionIDs)
	if err != nil {
		return nil, err
	}
	failures, err := e.Enhance(ctx, word, defs, force, components)
	if err != nil {
		return failures, err
	}
	if force {
		if err := e.regenerateFacts(ctx, word, entry); err != nil {
			failures = append(failures, Failure{DefinitionID: word.ID, Component: "facts", Err: err})
		}
	}
	return failures, nil
}

type wordFactsResult struct {
	Facts []generatedFact `json:"facts"`
}

type generatedFact struct {
	Content  string `json:"content"`
	Category string `json:"category"`
}

// regenerateFacts generates and stores new Facts for a Word, keyed off its
// primary Definition, following the same shape as the lookup pipeline's
// word-level synthesis stage. Existing Facts and the entry's FactIDs are
// left unchanged.
func (e *Engine) regenerateFacts(ctx context.Context, word model.Word, entry model.SynthesizedEntry) error {
	defs, err := e.stores.Definitions().ListByIDs(ctx, entry.DefinitionIDs)
	if err != nil || len(defs) == 0 {
		return err
	}
	var result wordFactsResult
	usage, err := e.substrate.Call(ctx, llm.Request{
		TaskTag:      llm.TaskGenerateFacts,
		SystemPrompt: "You produce 2-4 short, interesting facts about a word given its primary meaning.",
		UserPrompt:   prompt(word, defs[0]),
		SchemaName:   "word_facts_result",
		Schema:       llm.GenerateSchema[wordFactsResult](),
		CallerID:     "enhancement:regenerate_facts",
		MaxTokens:    500,
	}, &result)
	if err != nil {
		return err
	}
	for _, gf := range result.Facts {
		f := model.Fact{
			WordID:   word.ID,
			Content:  gf.Content,
			Category: model.FactCategory(gf.Category),
			ModelInfo: model.ModelInfo{
				Model:            usage.Model,
				PromptTokens:     usage.PromptTokens,
				CompletionTokens: usage.CompletionTokens,
				TotalTokens:      usage.TotalTokens,
			},
		}
		if err := e.stores.Facts().Create(ctx, &f); err != nil {
			return err
		}
	}
	return nil
}
