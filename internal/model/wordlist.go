package model

import "time"

// Visibility controls who can see a WordList.
type Visibility string

const (
	VisibilityPrivate Visibility = "private"
	VisibilityShared  Visibility = "shared"
	VisibilityPublic  Visibility = "public"
)

// Temperature buckets a WordListItem by recent review recency, used by
// spaced-repetition clients to prioritize review order.
type Temperature string

const (
	TemperatureHot  Temperature = "hot"
	TemperatureCold Temperature = "cold"
)

// ReviewRecord is one spaced-repetition review event, appended to a
// WordListItem's history.
type ReviewRecord struct {
	ReviewedAt time.Time `json:"reviewed_at"`
	Quality    int       `json:"quality"` // 0..5, SM-2 style grade
	IntervalAt int       `json:"interval_at"`
}

// SpacedRepetitionData tracks one WordListItem's SM-2 scheduling state.
type SpacedRepetitionData struct {
	Repetitions  int            `json:"repetitions"`
	Interval     int            `json:"interval"` // days
	EaseFactor   float64        `json:"ease_factor"`
	NextReviewAt time.Time      `json:"next_review_at"`
	History      []ReviewRecord `json:"history,omitempty"`
}

// WordListItem references a Word (and optionally a specific Definition) by
// id; it does not own them. Dangling references (Word deleted) are
// tolerated and filtered on read.
type WordListItem struct {
	WordID       int64                `json:"word_id"`
	DefinitionID *int64               `json:"definition_id,omitempty"`
	SRS          SpacedRepetitionData `json:"srs"`
	MasteryLevel int                  `json:"mastery_level"` // 0..5
	Temperature  Temperature          `json:"temperature"`
	Frequency    int                  `json:"frequency"` // times encountered
	Notes        *string              `json:"notes,omitempty"`
	Tags         []string             `json:"tags,omitempty"`
	AddedAt      time.Time            `json:"added_at"`
}

// LearningStats aggregates a WordList's review state for dashboards.
type LearningStats struct {
	TotalWords     int `json:"total_words"`
	MasteredWords  int `json:"mastered_words"`
	DueForReview   int `json:"due_for_review"`
	AverageEase    float64 `json:"average_ease"`
}

// WordList owns its WordListItems by value; it only references Words and
// Definitions.
type WordList struct {
	ID            int64          `json:"id"`
	Name          string         `json:"name"`
	HashID        string         `json:"hash_id"` // content hash of words
	OwnerID       string         `json:"owner_id"`
	Visibility    Visibility     `json:"visibility"`
	Words         []WordListItem `json:"words"`
	LearningStats LearningStats  `json:"learning_stats"`
	Version       int            `json:"version"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}
