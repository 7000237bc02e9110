package corpus

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager() *Manager {
	return NewManager(newFuzzyIndex(nil), newSemanticIndex(nil, nil), time.Minute, time.Minute)
}

func TestManagerSearchBeforeBuildReturnsErrCorpusNotBuilt(t *testing.T) {
	m := newTestManager()
	_, err := m.Search(context.Background(), "missing", "word", 10, 0.3, nil)
	assert.ErrorIs(t, err, ErrCorpusNotBuilt)
}

func TestManagerCreateOrGetThenSearchFuzzyOnly(t *testing.T) {
	m := newTestManager()
	ctx := context.Background()
	vocab := []VocabEntry{{Text: "apple"}, {Text: "application"}, {Text: "banana"}}

	require.NoError(t, m.CreateOrGet(ctx, KindWordlistWords, "list-1", vocab))

	results, err := m.Search(ctx, "list-1", "aple", 10, 0.5, nil)
	require.NoError(t, err)
	require.NotEmpty(t, results, "expected at least one fuzzy match for 'aple'")

	for i := 1; i < len(results); i++ {
		assert.LessOrEqual(t, results[i].Score, results[i-1].Score, "expected descending score order")
	}

	found := false
	for _, r := range results {
		if r.Text == "apple" {
			found = true
		}
	}
	assert.True(t, found, "expected 'apple' among matches for 'aple', got %+v", results)
}

func TestManagerCreateOrGetWithinTTLSkipsRebuild(t *testing.T) {
	m := newTestManager()
	ctx := context.Background()

	require.NoError(t, m.CreateOrGet(ctx, KindWordlistWords, "list-1", []VocabEntry{{Text: "alpha"}}))
	// A second call with different vocabulary inside the TTL window must not
	// replace the handle, since CreateOrGet's freshness check short-circuits.
	require.NoError(t, m.CreateOrGet(ctx, KindWordlistWords, "list-1", []VocabEntry{{Text: "omega"}}))

	results, err := m.Search(ctx, "list-1", "alpha", 10, 0.9, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "alpha", results[0].Text, "expected stale vocabulary to still be served within TTL")
}

func TestManagerInvalidateForcesRebuild(t *testing.T) {
	m := newTestManager()
	ctx := context.Background()

	require.NoError(t, m.CreateOrGet(ctx, KindWordlistWords, "list-1", []VocabEntry{{Text: "alpha"}}))
	m.Invalidate("list-1")
	require.NoError(t, m.CreateOrGet(ctx, KindWordlistWords, "list-1", []VocabEntry{{Text: "omega"}}))

	results, err := m.Search(ctx, "list-1", "omega", 10, 0.9, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "omega", results[0].Text, "expected rebuilt vocabulary after Invalidate")
}

func TestAdaptiveMinScoreLowersThresholdForShortQueries(t *testing.T) {
	cases := []struct {
		query string
		base  float64
		want  float64
	}{
		{"a", 0.5, 0.20},
		{"ab", 0.5, 0.20},
		{"abcd", 0.5, 0.25},
		{"abcdef", 0.5, 0.30},
		{"abcdefg", 0.5, 0.5},
		{"x", 0.1, 0.1}, // base already below the floor
	}
	for _, tc := range cases {
		got := adaptiveMinScore(tc.query, tc.base)
		assert.Equalf(t, tc.want, got, "adaptiveMinScore(%q, %v)", tc.query, tc.base)
	}
}

func TestBlendWeightsSemanticAndFuzzyThenSortsDescending(t *testing.T) {
	fuzzy := []Result{{Text: "apple", Score: 1.0}, {Text: "banana", Score: 0.4}}
	semantic := []Result{{Text: "apple", Score: 0.2}, {Text: "cherry", Score: 0.9}}

	out := blend(fuzzy, semantic, 10, 0)

	require.Len(t, out, 3)
	for i := 1; i < len(out); i++ {
		assert.LessOrEqual(t, out[i].Score, out[i-1].Score, "expected descending score order")
	}

	var apple float64
	for _, r := range out {
		if r.Text == "apple" {
			apple = r.Score
		}
	}
	want := (1-semanticWeight)*1.0 + semanticWeight*0.2
	assert.Equal(t, want, apple, "blended apple score")
}

func TestBlendRespectsMaxResultsAndMinScore(t *testing.T) {
	fuzzy := []Result{{Text: "a", Score: 0.9}, {Text: "b", Score: 0.05}}
	out := blend(fuzzy, nil, 1, 0.1)

	require.Len(t, out, 1, "expected minScore+maxResults to leave exactly one result")
	assert.Equal(t, "a", out[0].Text, "expected the higher-scoring result to survive")
}

func TestHasEmbeddingsRequiresEveryEntryEmbedded(t *testing.T) {
	assert.False(t, hasEmbeddings(nil), "empty vocabulary should not be considered embedded")
	assert.False(t, hasEmbeddings([]VocabEntry{{Text: "a"}, {Text: "b", Embedding: []float32{1}}}),
		"partial embedding coverage should not count as embedded")
	assert.True(t, hasEmbeddings([]VocabEntry{{Text: "a", Embedding: []float32{1}}}),
		"fully embedded vocabulary should count as embedded")
}
