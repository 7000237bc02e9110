// Package llm is the LLM-call substrate (spec.md §4.1): a single entry
// point for every structured-output LLM call, with model/temperature
// selection, rate/token limiting, response caching, and single-flight
// deduplication layered in front of the raw provider clients.
package llm

import "time"

// TaskTag identifies the kind of work a call performs, driving both model
// tier and temperature selection.
type TaskTag string

const (
	TaskSynthesizeDefinitions TaskTag = "synthesize_definitions"
	TaskExtractClusterMapping TaskTag = "extract_cluster_mapping"
	TaskSuggestWords          TaskTag = "suggest_words"

	TaskGenerateSynonyms       TaskTag = "generate_synonyms"
	TaskGenerateAntonyms       TaskTag = "generate_antonyms"
	TaskGenerateFacts          TaskTag = "generate_facts"
	TaskGenerateExamples       TaskTag = "generate_examples"
	TaskSynthesizeEtymology    TaskTag = "synthesize_etymology"
	TaskGenerateCollocations   TaskTag = "generate_collocations"
	TaskGenerateWordForms      TaskTag = "generate_word_forms"
	TaskGenerateSuggestions    TaskTag = "generate_suggestions"
	TaskLookupWord             TaskTag = "lookup_word"
	TaskDeduplicateDefinitions TaskTag = "deduplicate_definitions"

	TaskAssessFrequency          TaskTag = "assess_frequency"
	TaskAssessCEFRLevel          TaskTag = "assess_cefr_level"
	TaskClassifyDomain           TaskTag = "classify_domain"
	TaskClassifyRegister         TaskTag = "classify_register"
	TaskGeneratePronunciation    TaskTag = "generate_pronunciation"
	TaskGenerateUsageNotes       TaskTag = "generate_usage_notes"
	TaskValidateQuery            TaskTag = "validate_query"
	TaskIdentifyGrammarPatterns  TaskTag = "identify_grammar_patterns"
	TaskIdentifyRegionalVariants TaskTag = "identify_regional_variants"
)

// Complexity classifies a TaskTag for model-tier selection.
type Complexity string

const (
	ComplexityHigh   Complexity = "high"
	ComplexityMedium Complexity = "medium"
	ComplexityLow    Complexity = "low"
)

// ModelTier is a concrete model selection, provider-qualified by the
// Substrate's configured provider.
type ModelTier string

// Request is one structured-output call.
type Request struct {
	TaskTag      TaskTag
	SystemPrompt string
	UserPrompt   string
	SchemaName   string
	Schema       any
	MaxTokens    int
	// ModelOverride bypasses task-tag-driven model selection when set.
	ModelOverride ModelTier
	// CacheTTL overrides the Substrate's default cache TTL; zero uses the default.
	CacheTTL time.Duration
	// CallerID scopes rate/token limiting; empty falls back to a shared bucket.
	CallerID string
}

// Usage records token accounting and wall time for one call.
type Usage struct {
	Model            string        `json:"model"`
	PromptTokens     int           `json:"prompt_tokens"`
	CompletionTokens int           `json:"completion_tokens"`
	TotalTokens      int           `json:"total_tokens"`
	WallTime         time.Duration `json:"wall_time"`
	CacheHit         bool          `json:"cache_hit"`
}
