package dto

type ChatMessageDTO struct {
	Role    string `json:"role" validate:"required,oneof=user assistant model system"`
	Content string `json:"content" validate:"max=4000"`
}

type SendChatRequest struct {
	SessionId string           `json:"session_id" validate:"required,max=128"`
	Chat      string           `json:"chat" validate:"max=2000"`
	Messages  []ChatMessageDTO `json:"messages,omitempty" validate:"max=50,dive"`
	UserId    *int             `json:"user_id,omitempty"`
}

type RetrievedDocumentDTO struct {
	Id       string                 `json:"id"`
	Title    string                 `json:"title"`
	Content  string                 `json:"content"`
	Score    float64                `json:"score"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

type SendChatResponse struct {
	SessionId       string                 `json:"session_id"`
	Intent          string                 `json:"intent"`
	RefinedQuery    string                 `json:"refined_query"`
	Reply           string                 `json:"reply"`
	RetryCount      int                    `json:"retry_count"`
	SafetyViolation bool                   `json:"safety_violation"`
	SafetyCategory  string                 `json:"safety_category,omitempty"`
	Grade           string                 `json:"grade,omitempty"`
	Documents       []RetrievedDocumentDTO `json:"documents"`
}
