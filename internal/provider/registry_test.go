package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lexigraph.dev/dictionary/core/config"
)

func TestNewSkipsUnknownTagsAndWrapsKnownOnes(t *testing.T) {
	cfg := config.Config{
		ProvidersEnabled: []string{"wiktionary", "made-up-provider", "apple"},
		Providers: config.ProviderConfig{
			WiktionaryBaseURL: "https://example.invalid",
			RequestsPerSecond: 5,
			Burst:             1,
		},
	}

	clients := New(cfg)
	require.Len(t, clients, 2, "expected unknown tag to be skipped")

	tags := map[string]bool{}
	for _, c := range clients {
		tags[c.Tag()] = true
	}
	assert.True(t, tags["wiktionary"])
	assert.True(t, tags["apple"])
}

func TestNewPreservesConfiguredOrder(t *testing.T) {
	cfg := config.Config{
		ProvidersEnabled: []string{"apple", "wiktionary"},
		Providers:        config.ProviderConfig{RequestsPerSecond: 5, Burst: 1},
	}
	clients := New(cfg)
	require.Len(t, clients, 2)
	assert.Equal(t, []string{"apple", "wiktionary"}, tagsOf(clients))
}

func tagsOf(clients []Client) []string {
	out := make([]string, len(clients))
	for i, c := range clients {
		out[i] = c.Tag()
	}
	return out
}
