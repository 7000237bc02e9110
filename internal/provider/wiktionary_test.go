package provider

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWiktionaryClientFetchParsesDefinitions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body := map[string][]wiktionaryEntry{
			"en": {
				{
					PartOfSpeech: "noun",
					Definitions: []struct {
						Definition string   `json:"definition"`
						Examples   []string `json:"examples,omitempty"`
					}{
						{Definition: "a round fruit <a>link</a>", Examples: []string{"an <i>apple</i> a day"}},
					},
				},
			},
		}
		_ = json.NewEncoder(w).Encode(body)
	}))
	defer server.Close()

	client := NewWiktionaryClient(server.URL)
	fetched, err := client.Fetch(context.Background(), "apple")
	require.NoError(t, err)
	require.Len(t, fetched.Definitions, 1)
	assert.Equal(t, "a round fruit link", fetched.Definitions[0].Text, "expected markup stripped")

	examples := fetched.Examples[0]
	require.Len(t, examples, 1)
	assert.Equal(t, "an apple a day", examples[0].Text)

	require.NotEmpty(t, fetched.ProviderData.RawData, "expected the raw response body to be retained")
	zr, err := gzip.NewReader(bytes.NewReader(fetched.ProviderData.RawData))
	require.NoError(t, err)
	raw, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "a round fruit", "expected the decompressed body to be the original JSON")
}

func TestWiktionaryClientFetchNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewWiktionaryClient(server.URL)
	_, err := client.Fetch(context.Background(), "zzzznotaword")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWiktionaryClientFetchUpstreamFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewWiktionaryClient(server.URL)
	_, err := client.Fetch(context.Background(), "apple")
	assert.Error(t, err, "expected an error for a 500 response")
}

func TestStripMarkupRemovesTags(t *testing.T) {
	got := stripMarkup("<a href=\"x\">hello</a> <b>world</b>  ")
	assert.Equal(t, "hello world", got)
}
