package dto

import "time"

// TranscriptQuery filters the transcript listing. Zero values mean "any".
type TranscriptQuery struct {
	SessionId  string `query:"session_id" validate:"max=128"`
	Intent     string `query:"intent" validate:"omitempty,oneof=VECTOR_SEARCH CHIT_CHAT"`
	Grade      string `query:"grade" validate:"omitempty,oneof=USEFUL NOT_USEFUL"`
	Violations bool   `query:"violations"`
	Limit      int    `query:"limit" validate:"min=0,max=100"`
	Offset     int    `query:"offset" validate:"min=0"`
}

type TranscriptDTO struct {
	Id              string    `json:"id"`
	SessionId       string    `json:"session_id"`
	UserId          *int      `json:"user_id,omitempty"`
	UserQuery       string    `json:"user_query"`
	RefinedQuery    string    `json:"refined_query"`
	Intent          string    `json:"intent"`
	Generation      string    `json:"generation"`
	RetryCount      int       `json:"retry_count"`
	SafetyViolation bool      `json:"safety_violation"`
	Grade           string    `json:"grade,omitempty"`
	DocumentIds     []string  `json:"document_ids"`
	CreatedAt       time.Time `json:"created_at"`
}

type TranscriptPage struct {
	Total  int64           `json:"total"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
	Items  []TranscriptDTO `json:"items"`
}
