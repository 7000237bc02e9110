package dto

import (
	"lexigraph.dev/dictionary/internal/model"
	"lexigraph.dev/dictionary/internal/pipeline"
)

// LookupRequest is the unary and streaming lookup request body.
type LookupRequest struct {
	Word         string   `json:"word" binding:"required,min=1,max=255"`
	Providers    []string `json:"providers,omitempty"`
	Languages    []string `json:"languages,omitempty"`
	ForceRefresh bool     `json:"force_refresh"`
	NoAI         bool     `json:"no_ai"`
}

func (r LookupRequest) ToInput() pipeline.Input {
	return pipeline.Input{
		Word:         r.Word,
		Providers:    r.Providers,
		Languages:    r.Languages,
		ForceRefresh: r.ForceRefresh,
		NoAI:         r.NoAI,
	}
}

// EntryResponse is the full SynthesizedEntry returned from a unary lookup.
type EntryResponse struct {
	ID                    int64           `json:"id,string"`
	WordID                int64           `json:"word_id,string"`
	DefinitionIDs         []int64         `json:"definition_ids"`
	PronunciationID       *int64          `json:"pronunciation_id,omitempty"`
	Etymology             *string         `json:"etymology,omitempty"`
	FactIDs               []int64         `json:"fact_ids,omitempty"`
	ModelInfo             model.ModelInfo `json:"model_info"`
	SourceProviderDataIDs []int64         `json:"source_provider_data_ids,omitempty"`
	AccessCount           int64           `json:"access_count"`
}

func ToEntryResponse(e *model.SynthesizedEntry) EntryResponse {
	return EntryResponse{
		ID:                    e.ID,
		WordID:                e.WordID,
		DefinitionIDs:         e.DefinitionIDs,
		PronunciationID:       e.PronunciationID,
		Etymology:             e.Etymology,
		FactIDs:               e.FactIDs,
		ModelInfo:             e.ModelInfo,
		SourceProviderDataIDs: e.SourceProviderDataIDs,
		AccessCount:           e.AccessCount,
	}
}
