package dto

import (
	"lexigraph.dev/dictionary/internal/model"
)

type CreateWordListRequest struct {
	Name       string           `json:"name" binding:"required,min=1,max=255"`
	HashID     string           `json:"hash_id" binding:"required"`
	OwnerID    string           `json:"owner_id" binding:"required"`
	Visibility model.Visibility `json:"visibility"`
}

type UpdateWordListRequest struct {
	Name       string           `json:"name" binding:"required,min=1,max=255"`
	HashID     string           `json:"hash_id" binding:"required"`
	Visibility model.Visibility `json:"visibility"`
	Version    int              `json:"version" binding:"required"`
}

type UpsertWordListItemRequest struct {
	WordID       int64    `json:"word_id,string" binding:"required"`
	DefinitionID *int64   `json:"definition_id,omitempty"`
	MasteryLevel int      `json:"mastery_level"`
	Notes        *string  `json:"notes,omitempty"`
	Tags         []string `json:"tags,omitempty"`
}

type WordListResponse struct {
	ID            int64                `json:"id,string"`
	Name          string               `json:"name"`
	HashID        string               `json:"hash_id"`
	OwnerID       string               `json:"owner_id"`
	Visibility    model.Visibility     `json:"visibility"`
	Words         []model.WordListItem `json:"words"`
	LearningStats model.LearningStats  `json:"learning_stats"`
	Version       int                  `json:"version"`
}

func ToWordListResponse(wl *model.WordList) WordListResponse {
	return WordListResponse{
		ID:            wl.ID,
		Name:          wl.Name,
		HashID:        wl.HashID,
		OwnerID:       wl.OwnerID,
		Visibility:    wl.Visibility,
		Words:         wl.Words,
		LearningStats: wl.LearningStats,
		Version:       wl.Version,
	}
}
