package history

import (
	"context"
	"strings"

	"travel-chatbot-be/internal/pkg/logger"
	"travel-chatbot-be/internal/repository/contract"
	"travel-chatbot-be/pkg/llm"
)

const defaultLimit = 10

// Loader prepares conversation history for a turn.
type Loader struct {
	repo   contract.HistoryRepository
	limit  int
	logger logger.ILogger
}

// NewLoader creates a history loader. repo may be nil, in which case only
// caller supplied messages are used.
func NewLoader(repo contract.HistoryRepository, limit int, log logger.ILogger) *Loader {
	if limit <= 0 {
		limit = defaultLimit
	}
	return &Loader{
		repo:   repo,
		limit:  limit,
		logger: log,
	}
}

// Load returns the caller's messages when present, otherwise the stored
// session history. A store failure yields an empty history.
func (l *Loader) Load(ctx context.Context, sessionId string, supplied []llm.Message) []llm.Message {
	if len(supplied) > 0 || l.repo == nil || sessionId == "" {
		return Clean(supplied, l.limit)
	}

	stored, err := l.repo.Load(ctx, sessionId, l.limit)
	if err != nil {
		l.logger.Warn("HISTORY", "Failed to load session history", map[string]interface{}{
			"session_id": sessionId,
			"error":      err.Error(),
		})
		return []llm.Message{}
	}
	return Clean(stored, l.limit)
}

// Record appends a finished turn to the session history.
func (l *Loader) Record(ctx context.Context, sessionId, userQuery, answer string) {
	if l.repo == nil || sessionId == "" {
		return
	}
	err := l.repo.Append(ctx, sessionId,
		llm.Message{Role: llm.RoleUser, Content: userQuery},
		llm.Message{Role: llm.RoleAssistant, Content: answer},
	)
	if err != nil {
		l.logger.Warn("HISTORY", "Failed to append session history", map[string]interface{}{
			"session_id": sessionId,
			"error":      err.Error(),
		})
	}
}

// Clean normalizes roles ("model" becomes "assistant"), drops blank and
// system messages and keeps the last limit entries.
func Clean(messages []llm.Message, limit int) []llm.Message {
	out := make([]llm.Message, 0, len(messages))
	for _, msg := range messages {
		content := strings.TrimSpace(msg.Content)
		if content == "" {
			continue
		}
		role := llm.NormalizeRole(msg.Role)
		if role == llm.RoleSystem {
			continue
		}
		out = append(out, llm.Message{Role: role, Content: content})
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}

// Forget drops the stored history of a session.
func (l *Loader) Forget(ctx context.Context, sessionId string) error {
	if l.repo == nil {
		return nil
	}
	return l.repo.Clear(ctx, sessionId)
}
