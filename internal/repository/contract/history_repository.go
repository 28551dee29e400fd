package contract

import (
	"context"

	"travel-chatbot-be/pkg/llm"
)

// HistoryRepository keeps the rolling conversation of a chat session.
type HistoryRepository interface {
	// Load returns at most limit messages, oldest first.
	Load(ctx context.Context, sessionId string, limit int) ([]llm.Message, error)
	Append(ctx context.Context, sessionId string, messages ...llm.Message) error
	Clear(ctx context.Context, sessionId string) error
}
