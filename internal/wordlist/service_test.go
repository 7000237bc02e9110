package wordlist

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"lexigraph.dev/dictionary/internal/model"
)

func TestNamesCorpusNameIsScopedPerOwner(t *testing.T) {
	a := namesCorpusName("owner-1")
	b := namesCorpusName("owner-2")
	assert.NotEqual(t, a, b, "expected distinct owners to get distinct corpus names")
	assert.Equal(t, "wordlist_names:owner-1", a)
}

func TestWordsCorpusNameIsScopedPerList(t *testing.T) {
	a := wordsCorpusName(&model.WordList{ID: 1})
	b := wordsCorpusName(&model.WordList{ID: 2})
	assert.NotEqual(t, a, b, "expected distinct lists to get distinct corpus names")
}
