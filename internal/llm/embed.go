package llm

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	openaioption "github.com/openai/openai-go/option"
)

// embeddingModel is fixed rather than tiered like chat completions: the
// corpus package only ever compares vectors produced by this one model,
// so changing it requires re-indexing every corpus.
const embeddingModel = "text-embedding-3-small"

// Embedder turns text into a vector for semantic search (internal/corpus).
// It is independent of Client/Substrate: embeddings aren't structured
// chat completions, don't need schema validation, and are cheap enough
// not to warrant the substrate's caching or rate limiting layered on top.
type Embedder struct {
	client openai.Client
}

func NewEmbedder(cfg ClientConfig) (*Embedder, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("llm: embedder API key is required")
	}
	opts := []openaioption.RequestOption{openaioption.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, openaioption.WithBaseURL(cfg.BaseURL))
	}
	return &Embedder{client: openai.NewClient(opts...)}, nil
}

// Embed returns text's embedding vector.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: embeddingModel,
		Input: openai.EmbeddingNewParamsInputUnion{OfString: openai.String(text)},
	})
	if err != nil {
		return nil, fmt.Errorf("llm: embed: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("llm: embed: empty response")
	}
	vec := make([]float32, len(resp.Data[0].Embedding))
	for i, v := range resp.Data[0].Embedding {
		vec[i] = float32(v)
	}
	return vec, nil
}
