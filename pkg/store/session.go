package store

import (
	"time"

	"travel-chatbot-be/pkg/llm"
)

// Session is the in-memory conversation record of one chat session.
type Session struct {
	ID        string        `json:"id"`
	Messages  []llm.Message `json:"messages"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// Tail returns the last n messages (all of them when n <= 0).
func (s *Session) Tail(n int) []llm.Message {
	if n <= 0 || len(s.Messages) <= n {
		out := make([]llm.Message, len(s.Messages))
		copy(out, s.Messages)
		return out
	}
	out := make([]llm.Message, n)
	copy(out, s.Messages[len(s.Messages)-n:])
	return out
}
