// Package pipeline implements the lookup pipeline (spec.md §4.3): resolve,
// cache check, provider fan-out, clustering, per-cluster and word-level
// synthesis, entry persistence, and the enhancement trigger.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"lexigraph.dev/dictionary/common/apierr"
	"lexigraph.dev/dictionary/common/id"
	"lexigraph.dev/dictionary/internal/llm"
	"lexigraph.dev/dictionary/internal/model"
	"lexigraph.dev/dictionary/internal/progress"
	"lexigraph.dev/dictionary/internal/provider"
	"lexigraph.dev/dictionary/internal/store"
)

const providerFetchTimeout = 15 * time.Second

// entryFreshness is how long a cached SynthesizedEntry is served without
// re-running the pipeline.
const entryFreshness = 7 * 24 * time.Hour

// Input describes one lookup request.
type Input struct {
	Word         string
	Providers    []string // subset filter; empty means every configured provider
	Languages    []string
	ForceRefresh bool
	NoAI         bool
}

// Enhancer is the enhancement engine's entry point, invoked as the
// pipeline's final, non-blocking stage. Defined here to avoid a dependency
// cycle between pipeline and enhancement; internal/service wires the
// concrete implementation in.
type Enhancer interface {
	EnhanceAsync(word model.Word, definitions []model.Definition)
}

// Lookup runs the staged lookup pipeline described in spec.md §4.3.
type Lookup struct {
	stores       *store.Stores
	providers    []provider.Client
	substrate    *llm.Substrate
	enhancer     Enhancer
	sf           singleflight.Group
	dedupMaxWait time.Duration
}

func NewLookup(stores *store.Stores, providers []provider.Client, substrate *llm.Substrate, enhancer Enhancer, dedupMaxWait time.Duration) *Lookup {
	return &Lookup{stores: stores, providers: providers, substrate: substrate, enhancer: enhancer, dedupMaxWait: dedupMaxWait}
}

// Run executes the pipeline, reporting progress to tracker if non-nil.
func (l *Lookup) Run(ctx context.Context, in Input, tracker *progress.Tracker) (*model.SynthesizedEntry, error) {
	normalized := normalize(in.Word)
	language := "en"
	if len(in.Languages) > 0 {
		language = in.Languages[0]
	}

	// Keyed on (word, provider-set, no_ai) only (spec.md §4.3/§5) — a
	// force-refresh in flight still dedups against a concurrent plain
	// lookup for the same word, rather than starting a second fetch.
	dedupKey := fmt.Sprintf("%s|%s|%t", normalized, strings.Join(providerTags(in, l.providers), ","), in.NoAI)

	resultCh := l.sf.DoChan(dedupKey, func() (any, error) {
		entry, err := l.run(ctx, in, normalized, language, tracker)
		return entry, err
	})

	select {
	case res := <-resultCh:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*model.SynthesizedEntry), nil
	case <-time.After(l.dedupMaxWait):
		entry, err := l.run(ctx, in, normalized, language, tracker)
		return entry, err
	case <-ctx.Done():
		return nil, apierr.Cancelled()
	}
}

func (l *Lookup) run(ctx context.Context, in Input, normalized, language string, tracker *progress.Tracker) (*model.SynthesizedEntry, error) {
	publish := func(stage progress.Stage, p float64, msg string) {
		if tracker != nil {
			tracker.Publish(progress.State{Stage: stage, Progress: p, Message: msg})
		}
	}

	// 1. Resolve.
	publish(progress.StageResolve, 0.0, "resolving word")
	if normalized == "" {
		return nil, apierr.Validation(apierr.Detail{Field: "word", Message: "must not be empty"})
	}
	word, err := l.stores.Words().GetOrCreate(ctx, in.Word, normalized, language)
	if err != nil {
		return nil, fmt.Errorf("resolving word: %w", err)
	}

	// 2. Cache check.
	publish(progress.StageCacheCheck, 0.1, "checking cache")
	if !in.ForceRefresh {
		existing, err := l.stores.SynthesizedEntries().GetByWord(ctx, word.ID)
		if err == nil && time.Since(existing.UpdatedAt) < entryFreshness {
			if err := l.stores.SynthesizedEntries().TouchAccess(ctx, existing.ID); err != nil {
				return nil, fmt.Errorf("touching cached entry: %w", err)
			}
			// TouchAccess only bumps the row; reflect the same increment here
			// so the response the caller sees matches what was just persisted.
			existing.AccessCount++
			existing.AccessedAt = time.Now()
			publish(progress.StagePersist, 1.0, "served from cache")
			return existing, nil
		} else if err != nil && err != store.ErrNotFound {
			return nil, fmt.Errorf("checking cached entry: %w", err)
		}
	}

	// 3. Provider fan-out.
	publish(progress.StageProviderFetch, 0.2, "fetching from providers")
	fetched, err := l.fanOut(ctx, word, in)
	if err != nil {
		return nil, err
	}

	if in.NoAI {
		entry, err := l.persistProviderOnly(ctx, word, fetched)
		if err != nil {
			return nil, err
		}
		publish(progress.StagePersist, 1.0, "materialized from providers only")
		return entry, nil
	}

	// 4. Cluster.
	publish(progress.StageCluster, 0.4, "clustering definitions")
	allDefs := flattenDefinitions(fetched)
	clusters, err := l.cluster(ctx, word.Text, allDefs)
	if err != nil {
		return nil, err
	}

	// 5. Per-cluster synthesis.
	publish(progress.StageSynthesize, 0.6, "synthesizing definitions")
	synthesized, err := l.synthesizeClusters(ctx, word, clusters)
	if err != nil {
		return nil, err
	}

	// 6. Word-level synthesis.
	publish(progress.StageWordLevel, 0.8, "synthesizing word-level facets")
	pronunciation, err := l.synthesizePronunciation(ctx, word, fetched)
	if err != nil {
		return nil, err
	}
	etymology, etymologyUsage, err := l.synthesizeEtymology(ctx, word, fetched)
	if err != nil {
		return nil, err
	}
	facts, err := l.synthesizeFacts(ctx, word, synthesized)
	if err != nil {
		return nil, err
	}

	// 7. Entry persistence.
	publish(progress.StagePersist, 0.95, "persisting entry")
	entry, err := l.persistEntry(ctx, word, synthesized, pronunciation, etymology, etymologyUsage, facts)
	if err != nil {
		return nil, err
	}

	// 8. Enhancement (non-blocking).
	if l.enhancer != nil {
		l.enhancer.EnhanceAsync(*word, synthesized)
	}

	publish(progress.StagePersist, 1.0, "done")
	return entry, nil
}

func normalize(word string) string {
	return strings.ToLower(strings.TrimSpace(word))
}

func providerTags(in Input, configured []provider.Client) []string {
	if len(in.Providers) > 0 {
		tags := make([]string, len(in.Providers))
		copy(tags, in.Providers)
		return tags
	}
	tags := make([]string, 0, len(configured))
	for _, c := range configured {
		tags = append(tags, c.Tag())
	}
	return tags
}

// fetchResult pairs a provider's output with its tag for ordering and
// persistence.
type fetchResult struct {
	tag     string
	fetched *provider.Fetched
	err     error
}

// fanOut starts every selected, available provider concurrently, bounded
// by the number of providers, each under its own deadline, and persists
// every successful result.
func (l *Lookup) fanOut(ctx context.Context, word *model.Word, in Input) ([]fetchResult, error) {
	selected := l.selectProviders(in.Providers)
	if len(selected) == 0 {
		return nil, apierr.NotFound("provider", strings.Join(in.Providers, ","))
	}

	results := make([]fetchResult, len(selected))
	var wg sync.WaitGroup
	for i, c := range selected {
		wg.Add(1)
		go func(idx int, client provider.Client) {
			defer wg.Done()
			fetchCtx, cancel := context.WithTimeout(ctx, providerFetchTimeout)
			defer cancel()
			fetched, err := client.Fetch(fetchCtx, word.Text)
			results[idx] = fetchResult{tag: client.Tag(), fetched: fetched, err: err}
		}(i, c)
	}
	wg.Wait()

	anySuccess := false
	anyRealFailure := false
	for _, r := range results {
		if r.err == nil {
			anySuccess = true
			continue
		}
		if r.err != provider.ErrNotFound {
			anyRealFailure = true
		}
	}
	if !anySuccess {
		if anyRealFailure {
			return nil, apierr.UpstreamFailure("providers", fmt.Errorf("all configured providers failed"))
		}
		return nil, apierr.NotFound("word", word.Text)
	}

	for _, r := range results {
		if r.err != nil {
			continue
		}
		if err := l.persistFetched(ctx, word, r); err != nil {
			return nil, fmt.Errorf("persisting %s provider data: %w", r.tag, err)
		}
	}
	return results, nil
}

func (l *Lookup) selectProviders(wanted []string) []provider.Client {
	if len(wanted) == 0 {
		out := make([]provider.Client, 0, len(l.providers))
		for _, c := range l.providers {
			if c.Available() {
				out = append(out, c)
			}
		}
		return out
	}
	want := make(map[string]bool, len(wanted))
	for _, w := range wanted {
		want[w] = true
	}
	out := make([]provider.Client, 0, len(wanted))
	for _, c := range l.providers {
		if want[c.Tag()] && c.Available() {
			out = append(out, c)
		}
	}
	return out
}

func (l *Lookup) persistFetched(ctx context.Context, word *model.Word, r fetchResult) error {
	pd := r.fetched.ProviderData
	pd.WordID = word.ID
	if err := l.stores.ProviderData().ReplaceForProvider(ctx, word.ID, r.tag, &pd); err != nil {
		return err
	}
	for i, def := range r.fetched.Definitions {
		def.WordID = word.ID
		if err := l.stores.Definitions().Create(ctx, &def); err != nil {
			return err
		}
		for _, ex := range r.fetched.Examples[i] {
			ex.DefinitionID = def.ID
			if err := l.stores.Examples().Create(ctx, &ex); err != nil {
				return err
			}
		}
	}
	if r.fetched.Pronunciation != nil {
		r.fetched.Pronunciation.WordID = word.ID
		if err := l.stores.Pronunciations().Create(ctx, r.fetched.Pronunciation); err != nil {
			return err
		}
	}
	return nil
}

func flattenDefinitions(results []fetchResult) []model.Definition {
	var out []model.Definition
	for _, r := range results {
		if r.err != nil {
			continue
		}
		out = append(out, r.fetched.Definitions...)
	}
	return out
}

func (l *Lookup) persistProviderOnly(ctx context.Context, word *model.Word, results []fetchResult) (*model.SynthesizedEntry, error) {
	defs, err := l.stores.Definitions().ListByWord(ctx, word.ID)
	if err != nil {
		return nil, err
	}
	defIDs := make([]int64, len(defs))
	for i, d := range defs {
		defIDs[i] = d.ID
	}
	var pronunciationID *int64
	if p, err := l.stores.Pronunciations().GetByWord(ctx, word.ID); err == nil {
		pronunciationID = &p.ID
	}
	pds, err := l.stores.ProviderData().ListByWord(ctx, word.ID)
	if err != nil {
		return nil, err
	}
	sourceIDs := make([]int64, len(pds))
	for i, pd := range pds {
		sourceIDs[i] = pd.ID
	}

	entry := &model.SynthesizedEntry{
		ID:                    id.New(),
		WordID:                word.ID,
		DefinitionIDs:         defIDs,
		PronunciationID:       pronunciationID,
		SourceProviderDataIDs: sourceIDs,
		Version:               1,
	}
	if err := l.stores.SynthesizedEntries().Upsert(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (l *Lookup) persistEntry(ctx context.Context, word *model.Word, synthesized []model.Definition, pronunciation *model.Pronunciation, etymology *string, etymologyUsage *llm.Usage, facts []model.Fact) (*model.SynthesizedEntry, error) {
	defIDs := make([]int64, len(synthesized))
	for i, d := range synthesized {
		defIDs[i] = d.ID
	}
	factIDs := make([]int64, len(facts))
	for i, f := range facts {
		factIDs[i] = f.ID
	}
	var pronunciationID *int64
	if pronunciation != nil {
		pronunciationID = &pronunciation.ID
	}
	pds, err := l.stores.ProviderData().ListByWord(ctx, word.ID)
	if err != nil {
		return nil, err
	}
	sourceIDs := make([]int64, len(pds))
	for i, pd := range pds {
		sourceIDs[i] = pd.ID
	}

	var modelInfo model.ModelInfo
	if etymologyUsage != nil {
		modelInfo = model.ModelInfo{
			Model:            etymologyUsage.Model,
			PromptTokens:     etymologyUsage.PromptTokens,
			CompletionTokens: etymologyUsage.CompletionTokens,
			TotalTokens:      etymologyUsage.TotalTokens,
		}
	}

	entry := &model.SynthesizedEntry{
		ID:                    id.New(),
		WordID:                word.ID,
		DefinitionIDs:         defIDs,
		PronunciationID:       pronunciationID,
		Etymology:             etymology,
		FactIDs:               factIDs,
		ModelInfo:             modelInfo,
		SourceProviderDataIDs: sourceIDs,
		Version:               1,
	}
	if err := l.stores.SynthesizedEntries().Upsert(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}
