package logger

import "context"

type contextKey string

const logFieldsKey contextKey = "log_fields"

// LogFields contains structured fields automatically added to all logs within
// a context. Fields flow through context enrichment, so business context
// (word, operation, component) is included in every log statement without
// threading it through every function signature.
type LogFields struct {
	Word        *string // headword being looked up / enhanced
	RequestID   *string // client-supplied or generated request id
	Operation   *string // "lookup", "enhancement", "stream", "corpus_search"
	ProviderTag *string // provider tag for provider-scoped log lines
	TaskTag     *string // LLM substrate task tag
	Component   string  // dotted, OTel-semconv style, e.g. "dictionary.pipeline.cluster"
}

// WithLogFields enriches context with structured log fields. Multiple calls
// merge fields, with newer non-nil/non-empty values taking precedence.
func WithLogFields(ctx context.Context, fields LogFields) context.Context {
	existing := GetLogFields(ctx)
	merged := mergeFields(existing, fields)
	return context.WithValue(ctx, logFieldsKey, merged)
}

// GetLogFields retrieves log fields from context, or a zero value if none are set.
func GetLogFields(ctx context.Context) LogFields {
	if fields, ok := ctx.Value(logFieldsKey).(LogFields); ok {
		return fields
	}
	return LogFields{}
}

func mergeFields(existing, next LogFields) LogFields {
	result := existing
	if next.Word != nil {
		result.Word = next.Word
	}
	if next.RequestID != nil {
		result.RequestID = next.RequestID
	}
	if next.Operation != nil {
		result.Operation = next.Operation
	}
	if next.ProviderTag != nil {
		result.ProviderTag = next.ProviderTag
	}
	if next.TaskTag != nil {
		result.TaskTag = next.TaskTag
	}
	if next.Component != "" {
		result.Component = next.Component
	}
	return result
}

// Ptr creates a pointer from a value, handy for inline LogFields literals.
func Ptr[T any](v T) *T {
	return &v
}

// Truncate truncates a string to maxLen characters, appending "..." if truncated.
// Useful for logging prompts or LLM responses without flooding the log line.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
