package llm

import "lexigraph.dev/dictionary/common/logger"

// taskComplexityMap mirrors the task-to-complexity classification the
// service has always used (see DESIGN.md): high complexity for
// reasoning/synthesis/clustering, medium for creative generation and
// pedagogical tasks, low for simple classification and validation.
var taskComplexityMap = map[TaskTag]Complexity{
	TaskSynthesizeDefinitions: ComplexityHigh,
	TaskSuggestWords:          ComplexityHigh,
	TaskExtractClusterMapping: ComplexityHigh,

	TaskGenerateSynonyms:       ComplexityMedium,
	TaskGenerateFacts:          ComplexityMedium,
	TaskGenerateExamples:       ComplexityMedium,
	TaskSynthesizeEtymology:    ComplexityMedium,
	TaskGenerateCollocations:   ComplexityMedium,
	TaskGenerateWordForms:      ComplexityMedium,
	TaskGenerateAntonyms:       ComplexityMedium,
	TaskGenerateSuggestions:    ComplexityMedium,
	TaskLookupWord:             ComplexityMedium,
	TaskDeduplicateDefinitions: ComplexityMedium,

	TaskAssessFrequency:          ComplexityLow,
	TaskAssessCEFRLevel:          ComplexityLow,
	TaskClassifyDomain:           ComplexityLow,
	TaskClassifyRegister:         ComplexityLow,
	TaskGeneratePronunciation:    ComplexityLow,
	TaskGenerateUsageNotes:       ComplexityLow,
	TaskValidateQuery:            ComplexityLow,
	TaskIdentifyGrammarPatterns:  ComplexityLow,
	TaskIdentifyRegionalVariants: ComplexityLow,
}

// creativeTasks receive the higher creative-generation temperature.
var creativeTasks = map[TaskTag]bool{
	TaskGenerateFacts:       true,
	TaskGenerateExamples:    true,
	TaskSuggestWords:        true,
	TaskGenerateSuggestions: true,
}

// classificationTasks receive the lower, more deterministic temperature.
var classificationTasks = map[TaskTag]bool{
	TaskAssessFrequency:  true,
	TaskAssessCEFRLevel:  true,
	TaskClassifyDomain:   true,
	TaskClassifyRegister: true,
	TaskValidateQuery:    true,
}

// ComplexityFor classifies a TaskTag, defaulting to medium for unrecognized
// tags rather than erroring, so new task tags fail open to a sane middle
// tier.
func ComplexityFor(tag TaskTag) Complexity {
	if c, ok := taskComplexityMap[tag]; ok {
		return c
	}
	return ComplexityMedium
}

// modelForComplexity maps complexity to a Substrate's configured model name per
// tier; the Substrate resolves this from its own config rather than a
// package-level table, since model names are provider-specific and
// environment-configurable (see core/config.LLMConfig).
func (s *Substrate) modelForComplexity(c Complexity) string {
	switch c {
	case ComplexityHigh:
		return s.cfg.ModelHigh
	case ComplexityLow:
		return s.cfg.ModelLow
	default:
		return s.cfg.ModelMedium
	}
}

// isReasoningModel reports whether name is an o-series reasoning model,
// which takes no temperature and reserves extra tokens for internal
// reasoning.
func isReasoningModel(name string) bool {
	return len(name) >= 2 && (name[:2] == "o1" || name[:2] == "o3")
}

// TemperatureFor is the single source of truth mapping a task tag to a
// temperature: nil for reasoning models (handled by the caller, since this
// function only sees the tag), 0.8 for creative tasks, 0.3 for
// classification tasks, 0.7 default. Collapsing task-tag and model-tier
// into one function (see DESIGN.md, supplemented feature) avoids the two
// inconsistent code paths recomputing the same choice.
func TemperatureFor(taskTag TaskTag) *float64 {
	if creativeTasks[taskTag] {
		return logger.Ptr(0.8)
	}
	if classificationTasks[taskTag] {
		return logger.Ptr(0.3)
	}
	return logger.Ptr(0.7)
}

// reasoningTokenMultiplier scales a requested token budget to reserve
// headroom for a reasoning model's internal chain-of-thought tokens, which
// count against the same budget but aren't visible in the completion.
// Very small requested budgets get a steeper multiplier since fixed
// overhead (a few hundred reasoning tokens) dominates at that scale.
func reasoningTokenMultiplier(maxTokens int) int {
	if maxTokens <= 50 {
		return 30
	}
	return 15
}

// AdjustTokenBudget applies the reasoning multiplier when model is a
// reasoning model, leaving other models' budgets untouched.
func AdjustTokenBudget(model string, maxTokens int) int {
	if !isReasoningModel(model) {
		return maxTokens
	}
	return maxTokens * reasoningTokenMultiplier(maxTokens)
}
