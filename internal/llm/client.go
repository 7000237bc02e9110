package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	openaioption "github.com/openai/openai-go/option"

	"lexigraph.dev/dictionary/common/apierr"
)

// Client is the raw structured-output call, one per provider. The
// Substrate (substrate.go) wraps Client with rate limiting, caching, and
// single-flight; callers never hold a Client directly.
type Client interface {
	Chat(ctx context.Context, req Request) (json.RawMessage, *Usage, error)
}

// ClientConfig configures a provider client.
type ClientConfig struct {
	APIKey  string
	BaseURL string
}

// NewClient builds the Client for the given provider name ("openai" or
// "anthropic").
func NewClient(provider string, cfg ClientConfig) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("llm: API key is required")
	}
	switch provider {
	case "anthropic":
		return newAnthropicClient(cfg)
	default:
		return newOpenAIClient(cfg)
	}
}

// GenerateSchema reflects a Go type into a JSON Schema document for use as
// a structured-output contract.
func GenerateSchema[T any]() any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return reflector.Reflect(v)
}

// --- OpenAI ------------------------------------------------------------

type openAIClient struct {
	client openai.Client
}

func newOpenAIClient(cfg ClientConfig) (Client, error) {
	opts := []openaioption.RequestOption{openaioption.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, openaioption.WithBaseURL(cfg.BaseURL))
	}
	return &openAIClient{client: openai.NewClient(opts...)}, nil
}

func (c *openAIClient) Chat(ctx context.Context, req Request) (json.RawMessage, *Usage, error) {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 1000
	}
	maxTokens = AdjustTokenBudget(string(req.ModelOverride), maxTokens)

	schemaParam := openai.ResponseFormatJSONSchemaJSONSchemaParam{
		Name:        req.SchemaName,
		Description: openai.String("Structured response schema"),
		Schema:      req.Schema,
		Strict:      openai.Bool(true),
	}

	params := openai.ChatCompletionNewParams{
		Model: string(req.ModelOverride),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.SystemPrompt),
			openai.UserMessage(req.UserPrompt),
		},
		MaxTokens: openai.Int(int64(maxTokens)),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{JSONSchema: schemaParam},
		},
	}
	if temp := TemperatureFor(req.TaskTag); temp != nil && !isReasoningModel(string(req.ModelOverride)) {
		params.Temperature = openai.Float(*temp)
	}

	start := time.Now()
	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, nil, translateOpenAIError(ctx, err)
	}

	if len(resp.Choices) == 0 {
		return nil, nil, apierr.Internal(errors.New("llm: empty response: no choices"))
	}

	usage := &Usage{
		Model:            string(req.ModelOverride),
		PromptTokens:     int(resp.Usage.PromptTokens),
		CompletionTokens: int(resp.Usage.CompletionTokens),
		TotalTokens:      int(resp.Usage.TotalTokens),
		WallTime:         time.Since(start),
	}

	slog.DebugContext(ctx, "llm chat completed",
		"model", usage.Model, "duration_ms", usage.WallTime.Milliseconds(),
		"prompt_tokens", usage.PromptTokens, "completion_tokens", usage.CompletionTokens)

	return json.RawMessage(resp.Choices[0].Message.Content), usage, nil
}

func translateOpenAIError(ctx context.Context, err error) error {
	if errors.Is(err, context.Canceled) {
		return apierr.Cancelled()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apierr.Timeout(err)
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == 429:
			slog.WarnContext(ctx, "llm rate limited", "status_code", apiErr.StatusCode)
			return apierr.RateLimited(0)
		case apiErr.StatusCode == 401 || apiErr.StatusCode == 403:
			return &apierr.Error{Kind: apierr.KindUnauthorized, Message: "llm auth failure", Err: err}
		case apiErr.StatusCode >= 500:
			return apierr.UpstreamFailure("openai", err)
		default:
			slog.ErrorContext(ctx, "llm client error", "status_code", apiErr.StatusCode, "error_type", apiErr.Type)
			return apierr.Internal(err)
		}
	}

	return apierr.NetworkFailure(err)
}

// --- Anthropic -----------------------------------------------------------

type anthropicClient struct {
	client anthropic.Client
}

func newAnthropicClient(cfg ClientConfig) (Client, error) {
	opts := []anthropicoption.RequestOption{anthropicoption.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, anthropicoption.WithBaseURL(cfg.BaseURL))
	}
	return &anthropicClient{client: anthropic.NewClient(opts...)}, nil
}

// structuredOutputToolName is the single forced tool used to obtain
// schema-shaped JSON from Anthropic, which has no native JSON-schema
// response mode: the schema is presented as a tool's input schema, the
// model is required to call it, and the tool call's input *is* the result.
const structuredOutputToolName = "emit_result"

func (c *anthropicClient) Chat(ctx context.Context, req Request) (json.RawMessage, *Usage, error) {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 1000
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(req.ModelOverride),
		MaxTokens: int64(maxTokens),
		System:    []anthropic.TextBlockParam{{Type: "text", Text: req.SystemPrompt}},
		Messages: []anthropic.MessageParam{
			{Role: anthropic.MessageParamRoleUser, Content: []anthropic.ContentBlockParamUnion{anthropic.NewTextBlock(req.UserPrompt)}},
		},
		Tools: []anthropic.ToolUnionParam{{
			OfTool: &anthropic.ToolParam{
				Name:        structuredOutputToolName,
				Description: anthropic.String("Emit the structured result"),
				InputSchema: anthropic.ToolInputSchemaParam{Type: "object", Properties: req.Schema},
			},
		}},
		ToolChoice: anthropic.ToolChoiceUnionParam{
			OfTool: &anthropic.ToolChoiceToolParam{Name: structuredOutputToolName},
		},
	}
	if temp := TemperatureFor(req.TaskTag); temp != nil {
		params.Temperature = anthropic.Float(*temp)
	}

	start := time.Now()
	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return nil, nil, translateAnthropicError(ctx, err)
	}

	var result json.RawMessage
	for _, block := range resp.Content {
		if block.Type == "tool_use" && block.Name == structuredOutputToolName {
			result = json.RawMessage(block.Input)
			break
		}
	}
	if result == nil {
		return nil, nil, apierr.Internal(errors.New("llm: empty response: no tool_use block"))
	}

	usage := &Usage{
		Model:            string(req.ModelOverride),
		PromptTokens:     int(resp.Usage.InputTokens),
		CompletionTokens: int(resp.Usage.OutputTokens),
		TotalTokens:      int(resp.Usage.InputTokens + resp.Usage.OutputTokens),
		WallTime:         time.Since(start),
	}
	slog.DebugContext(ctx, "llm chat completed",
		"model", usage.Model, "duration_ms", usage.WallTime.Milliseconds(),
		"prompt_tokens", usage.PromptTokens, "completion_tokens", usage.CompletionTokens)

	return result, usage, nil
}

func translateAnthropicError(ctx context.Context, err error) error {
	if errors.Is(err, context.Canceled) {
		return apierr.Cancelled()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apierr.Timeout(err)
	}

	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == 429:
			slog.WarnContext(ctx, "llm rate limited", "status_code", apiErr.StatusCode)
			return apierr.RateLimited(0)
		case apiErr.StatusCode == 401 || apiErr.StatusCode == 403:
			return &apierr.Error{Kind: apierr.KindUnauthorized, Message: "llm auth failure", Err: err}
		case apiErr.StatusCode >= 500:
			return apierr.UpstreamFailure("anthropic", err)
		default:
			return apierr.Internal(err)
		}
	}

	return apierr.NetworkFailure(err)
}
