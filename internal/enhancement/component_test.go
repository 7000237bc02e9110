package enhancement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lexigraph.dev/dictionary/internal/model"
)

func TestPatchApplyOnlySetsNonNilFields(t *testing.T) {
	def := model.Definition{
		Synonyms: []string{"old-synonym"},
		Domain:   strPtr("general"),
	}

	p := Patch{
		Antonyms: []string{"new-antonym"},
	}
	p.apply(&def)

	assert.Equal(t, []string{"old-synonym"}, def.Synonyms, "expected Synonyms untouched by a patch that doesn't set it")
	assert.Equal(t, []string{"new-antonym"}, def.Antonyms)
	require.NotNil(t, def.Domain)
	assert.Equal(t, "general", *def.Domain, "expected Domain untouched")
}

func TestPatchApplyOverwritesExistingValue(t *testing.T) {
	def := model.Definition{CEFRLevel: strPtr("A1")}
	p := Patch{CEFRLevel: strPtr("C1")}
	p.apply(&def)

	require.NotNil(t, def.CEFRLevel)
	assert.Equal(t, "C1", *def.CEFRLevel)
}

func TestByNamesEmptyReturnsEveryComponent(t *testing.T) {
	components, err := ByNames(nil)
	require.NoError(t, err)
	assert.Len(t, components, len(All()))
}

func TestByNamesFiltersToRequestedSubsetInCanonicalOrder(t *testing.T) {
	components, err := ByNames([]string{"cefr_level", "synonyms"})
	require.NoError(t, err)
	require.Len(t, components, 2)
	// All()'s order puts synonyms before cefr_level regardless of request order.
	assert.Equal(t, "synonyms", components[0].Name())
	assert.Equal(t, "cefr_level", components[1].Name())
}

func TestByNamesRejectsUnknownName(t *testing.T) {
	_, err := ByNames([]string{"synonyms", "made-up-component"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "made-up-component")
}

func TestAllReturnsTwelveDistinctlyNamedComponents(t *testing.T) {
	components := All()
	seen := make(map[string]bool, len(components))
	for _, c := range components {
		require.False(t, seen[c.Name()], "duplicate component name %q", c.Name())
		seen[c.Name()] = true
	}
	assert.Len(t, components, 12)
}

func TestTargetEmptyGatesOnTheComponentsOwnField(t *testing.T) {
	empty := model.Definition{}
	populated := model.Definition{
		Synonyms:         []string{"a"},
		Antonyms:         []string{"a"},
		WordForms:        []string{"a"},
		Collocations:     []string{"a"},
		UsageNotes:       []string{"a"},
		GrammarPatterns:  []string{"a"},
		Region:           []string{"a"},
		CEFRLevel:        strPtr("A1"),
		Domain:           strPtr("general"),
		LanguageRegister: strPtr("formal"),
		FrequencyBand:    intPtr(3),
		ExampleIDs:       []int64{1},
	}

	for _, c := range All() {
		assert.True(t, c.TargetEmpty(empty), "%s: expected TargetEmpty(empty) to be true", c.Name())
		assert.False(t, c.TargetEmpty(populated), "%s: expected TargetEmpty(populated) to be false", c.Name())
	}
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }
