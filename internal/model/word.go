// Package model defines the persistent entities of the dictionary domain:
// Word, ProviderData, Definition, Example, Pronunciation, SynthesizedEntry,
// Fact, and WordList/WordListItem.
package model

import "time"

// Word is the canonical headword record. (normalized, language) is unique.
type Word struct {
	ID         int64     `json:"id"`
	Text       string    `json:"text"`
	Normalized string    `json:"normalized"`
	Language   string    `json:"language"`
	Version    int       `json:"version"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ProviderData is the normalized output of one provider fetch for a Word.
// Raw-response retention lets the entry synthesizer re-normalize without
// re-fetching (see DESIGN.md, supplemented feature).
type ProviderData struct {
	ID              int64     `json:"id"`
	WordID          int64     `json:"word_id"`
	Provider        string    `json:"provider"`
	DefinitionIDs   []int64   `json:"definition_ids,omitempty"`
	PronunciationID *int64    `json:"pronunciation_id,omitempty"`
	Etymology       *string   `json:"etymology,omitempty"`
	RawData         []byte    `json:"-"` // gzip'd JSON, never serialized to clients
	Version         int       `json:"version"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// MeaningCluster groups Definitions synthesized from the same sense.
type MeaningCluster struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Transitivity classifies a verb definition's argument structure.
type Transitivity string

const (
	TransitivityTransitive   Transitivity = "transitive"
	TransitivityIntransitive Transitivity = "intransitive"
	TransitivityBoth         Transitivity = "both"
)

// Definition is owned by a Word; cascade-deleted with it. Facet fields are
// independently optional and populated either by provider normalization, by
// synthesis, or by the enhancement engine.
type Definition struct {
	ID               int64           `json:"id"`
	WordID           int64           `json:"word_id"`
	PartOfSpeech     string          `json:"part_of_speech"`
	Text             string          `json:"text"`
	SenseNumber      int             `json:"sense_number"`
	MeaningCluster   *MeaningCluster `json:"meaning_cluster,omitempty"`
	Synonyms         []string        `json:"synonyms,omitempty"`
	Antonyms         []string        `json:"antonyms,omitempty"`
	ExampleIDs       []int64         `json:"example_ids,omitempty"`
	ImageIDs         []string        `json:"image_ids,omitempty"`
	WordForms        []string        `json:"word_forms,omitempty"`
	CEFRLevel        *string         `json:"cefr_level,omitempty"`
	FrequencyBand    *int            `json:"frequency_band,omitempty"` // 1..5
	LanguageRegister *string         `json:"language_register,omitempty"`
	Domain           *string         `json:"domain,omitempty"`
	Region           []string        `json:"region,omitempty"` // widened to a list, see DESIGN.md
	GrammarPatterns  []string        `json:"grammar_patterns,omitempty"`
	Collocations     []string        `json:"collocations,omitempty"`
	UsageNotes       []string        `json:"usage_notes,omitempty"`
	Transitivity     *Transitivity   `json:"transitivity,omitempty"`
	Version          int             `json:"version"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// ExampleType distinguishes how an Example was produced.
type ExampleType string

const (
	ExampleTypeProvider   ExampleType = "provider"
	ExampleTypeGenerated  ExampleType = "generated"
	ExampleTypeLiterature ExampleType = "literature"
)

// Example is owned by a Definition; cascade-deleted with it.
type Example struct {
	ID           int64       `json:"id"`
	DefinitionID int64       `json:"definition_id"`
	Text         string      `json:"text"`
	Type         ExampleType `json:"type"`
	QualityScore *float64    `json:"quality_score,omitempty"` // in [0,1]
	Version      int         `json:"version"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// Pronunciation is owned by a Word.
type Pronunciation struct {
	ID            int64     `json:"id"`
	WordID        int64     `json:"word_id"`
	Phonetic      string    `json:"phonetic"`
	IPA           string    `json:"ipa"`
	AudioFileIDs  []string  `json:"audio_file_ids,omitempty"`
	Version       int       `json:"version"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// FactCategory classifies a generated Fact.
type FactCategory string

const (
	FactCategoryGeneral   FactCategory = "general"
	FactCategoryTechnical FactCategory = "technical"
	FactCategoryCultural  FactCategory = "cultural"
	FactCategoryScience   FactCategory = "scientific"
	FactCategoryEtymology FactCategory = "etymology"
	FactCategoryUsage     FactCategory = "usage"
)

// ModelInfo records which model produced a synthesized artifact and at what
// cost, surfaced to clients as provenance.
type ModelInfo struct {
	Model            string  `json:"model"`
	Confidence       float64 `json:"confidence"`
	PromptTokens     int     `json:"prompt_tokens"`
	CompletionTokens int     `json:"completion_tokens"`
	TotalTokens      int     `json:"total_tokens"`
}

// Fact is an LLM-generated interesting fact about a Word.
type Fact struct {
	ID        int64        `json:"id"`
	WordID    int64        `json:"word_id"`
	Content   string       `json:"content"`
	Category  FactCategory `json:"category"`
	ModelInfo ModelInfo    `json:"model_info"`
	Version   int          `json:"version"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// SynthesizedEntry is the canonical answer returned to clients. At most one
// exists per Word.
type SynthesizedEntry struct {
	ID                   int64     `json:"id"`
	WordID               int64     `json:"word_id"`
	DefinitionIDs        []int64   `json:"definition_ids"`
	PronunciationID      *int64    `json:"pronunciation_id,omitempty"`
	Etymology            *string   `json:"etymology,omitempty"`
	FactIDs              []int64   `json:"fact_ids,omitempty"`
	ImageIDs             []string  `json:"image_ids,omitempty"`
	ModelInfo            ModelInfo `json:"model_info"`
	SourceProviderDataIDs []int64  `json:"source_provider_data_ids,omitempty"`
	AccessedAt           time.Time `json:"accessed_at"`
	AccessCount          int64     `json:"access_count"`
	Version              int       `json:"version"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}
