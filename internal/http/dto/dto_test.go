package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lexigraph.dev/dictionary/internal/model"
	"lexigraph.dev/dictionary/internal/pipeline"
)

func TestLookupRequestToInputCarriesEveryField(t *testing.T) {
	req := LookupRequest{
		Word:         "serendipity",
		Providers:    []string{"wiktionary"},
		Languages:    []string{"en"},
		ForceRefresh: true,
		NoAI:         true,
	}
	got := req.ToInput()
	want := pipeline.Input{
		Word:         "serendipity",
		Providers:    []string{"wiktionary"},
		Languages:    []string{"en"},
		ForceRefresh: true,
		NoAI:         true,
	}
	assert.Equal(t, want.Word, got.Word)
	assert.Equal(t, want.ForceRefresh, got.ForceRefresh)
	assert.Equal(t, want.NoAI, got.NoAI)
	assert.Equal(t, []string{"wiktionary"}, got.Providers)
	assert.Equal(t, want.Languages, got.Languages)
}

func TestToEntryResponseCopiesFields(t *testing.T) {
	pronID := int64(5)
	etymology := "from Serendip"
	entry := &model.SynthesizedEntry{
		ID:                    1,
		WordID:                2,
		DefinitionIDs:         []int64{3, 4},
		PronunciationID:       &pronID,
		Etymology:             &etymology,
		FactIDs:               []int64{6},
		SourceProviderDataIDs: []int64{7},
		AccessCount:           42,
	}

	resp := ToEntryResponse(entry)

	assert.Equal(t, int64(1), resp.ID)
	assert.Equal(t, int64(2), resp.WordID)
	assert.Equal(t, int64(42), resp.AccessCount)
	require.NotNil(t, resp.PronunciationID)
	assert.Equal(t, int64(5), *resp.PronunciationID)
	require.NotNil(t, resp.Etymology)
	assert.Equal(t, "from Serendip", *resp.Etymology)
	assert.Len(t, resp.DefinitionIDs, 2)
	assert.Len(t, resp.FactIDs, 1)
}

func TestToWordListResponseCopiesFields(t *testing.T) {
	wl := &model.WordList{
		ID:         10,
		Name:       "GRE words",
		HashID:     "abc123",
		OwnerID:    "user-1",
		Visibility: model.VisibilityPrivate,
		Words:      []model.WordListItem{{WordID: 1}},
		Version:    3,
	}

	resp := ToWordListResponse(wl)

	assert.Equal(t, int64(10), resp.ID)
	assert.Equal(t, "GRE words", resp.Name)
	assert.Equal(t, 3, resp.Version)
	require.Len(t, resp.Words, 1)
	assert.Equal(t, int64(1), resp.Words[0].WordID)
}
