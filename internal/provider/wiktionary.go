package provider

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"lexigraph.dev/dictionary/common/apierr"
	"lexigraph.dev/dictionary/internal/model"
)

// wiktionaryClient fetches definitions from the Wiktionary REST API. It is
// the one illustrative HTML/HTTP provider this spec's Non-goals allow
// (spec.md §1: "no provider HTML-scraping specifics beyond a couple of
// illustrative provider clients").
type wiktionaryClient struct {
	http    *http.Client
	baseURL string
}

func NewWiktionaryClient(baseURL string) Client {
	if baseURL == "" {
		baseURL = "https://en.wiktionary.org/api/rest_v1/page/definition"
	}
	return &wiktionaryClient{
		http:    &http.Client{Timeout: 8 * time.Second},
		baseURL: baseURL,
	}
}

func (c *wiktionaryClient) Tag() string     { return "wiktionary" }
func (c *wiktionaryClient) Available() bool { return true }

type wiktionaryEntry struct {
	PartOfSpeech string `json:"partOfSpeech"`
	Definitions  []struct {
		Definition string   `json:"definition"`
		Examples   []string `json:"examples,omitempty"`
	} `json:"definitions"`
}

func (c *wiktionaryClient) Fetch(ctx context.Context, word string) (*Fetched, error) {
	url := fmt.Sprintf("%s/%s", c.baseURL, word)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, apierr.Internal(err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, apierr.NetworkFailure(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode >= 500 {
		return nil, apierr.UpstreamFailure("wiktionary", fmt.Errorf("status %d", resp.StatusCode))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apierr.UpstreamFailure("wiktionary", fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	rawBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apierr.Internal(fmt.Errorf("reading wiktionary response: %w", err))
	}

	var body map[string][]wiktionaryEntry
	if err := json.Unmarshal(rawBody, &body); err != nil {
		return nil, apierr.Internal(fmt.Errorf("decoding wiktionary response: %w", err))
	}

	entries, ok := body["en"]
	if !ok || len(entries) == 0 {
		return nil, ErrNotFound
	}

	defs := make([]model.Definition, 0, len(entries))
	examplesByIdx := make(map[int][]model.Example)
	for _, entry := range entries {
		for senseNum, d := range entry.Definitions {
			defs = append(defs, model.Definition{
				PartOfSpeech: entry.PartOfSpeech,
				Text:         stripMarkup(d.Definition),
				SenseNumber:  senseNum + 1,
			})
			idx := len(defs) - 1
			for _, ex := range d.Examples {
				examplesByIdx[idx] = append(examplesByIdx[idx], model.Example{
					Text: stripMarkup(ex),
					Type: model.ExampleTypeProvider,
				})
			}
		}
	}
	if len(defs) == 0 {
		return nil, ErrNotFound
	}

	gzipped, err := gzipJSON(rawBody)
	if err != nil {
		return nil, apierr.Internal(fmt.Errorf("compressing raw wiktionary response: %w", err))
	}

	return &Fetched{
		ProviderData: model.ProviderData{Provider: c.Tag(), RawData: gzipped},
		Definitions:  defs,
		Examples:     examplesByIdx,
	}, nil
}

// gzipJSON compresses a provider's raw response body for ProviderData.RawData
// (spec.md §9: retained so a normalization bug can be fixed by re-deriving
// Definitions from the stored body instead of re-fetching).
func gzipJSON(raw []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(raw); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// stripMarkup removes the HTML anchors Wiktionary embeds in definition text.
func stripMarkup(s string) string {
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
