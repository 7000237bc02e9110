package dto

// SearchRequest queries one corpus by name (spec.md §4.7).
type SearchRequest struct {
	Query      string  `form:"q" binding:"required,min=1,max=255"`
	MaxResults int     `form:"max_results"`
	MinScore   float64 `form:"min_score"`
	Semantic   *bool   `form:"semantic"`
}

// SearchResultResponse is one scored corpus match.
type SearchResultResponse struct {
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}
