package transcript

import (
	"context"
	"time"

	"travel-chatbot-be/internal/pkg/logger"
)

// Record is one completed chatbot turn.
type Record struct {
	SessionID       string    `json:"session_id"`
	UserID          *int      `json:"user_id"`
	UserQuery       string    `json:"user_query"`
	RefinedQuery    string    `json:"refined_query"`
	Intent          string    `json:"intent"`
	Generation      string    `json:"generation"`
	RetryCount      int       `json:"retry_count"`
	SafetyViolation bool      `json:"safety_violation"`
	Grade           string    `json:"grade"`
	DocumentIDs     []string  `json:"document_ids"`
	Timestamp       time.Time `json:"timestamp"`
}

func (r Record) fields() map[string]interface{} {
	var userID interface{}
	if r.UserID != nil {
		userID = *r.UserID
	}
	return map[string]interface{}{
		"session_id":       r.SessionID,
		"user_id":          userID,
		"user_query":       r.UserQuery,
		"refined_query":    r.RefinedQuery,
		"intent":           r.Intent,
		"generation":       r.Generation,
		"retry_count":      r.RetryCount,
		"safety_violation": r.SafetyViolation,
		"grade":            r.Grade,
		"document_ids":     r.DocumentIDs,
		"timestamp":        r.Timestamp.Format(time.RFC3339Nano),
	}
}

// Logger persists transcript records.
type Logger interface {
	Log(ctx context.Context, record Record) error
}

// MultiLogger fans a record out to every sink. Sink failures are logged and
// never returned, a turn must not fail because a transcript could not be written.
type MultiLogger struct {
	sinks  map[string]Logger
	order  []string
	logger logger.ILogger
}

func NewMultiLogger(log logger.ILogger) *MultiLogger {
	return &MultiLogger{sinks: make(map[string]Logger), logger: log}
}

// Add registers a named sink.
func (m *MultiLogger) Add(name string, sink Logger) *MultiLogger {
	if _, exists := m.sinks[name]; !exists {
		m.order = append(m.order, name)
	}
	m.sinks[name] = sink
	return m
}

func (m *MultiLogger) Len() int {
	return len(m.order)
}

func (m *MultiLogger) Log(ctx context.Context, record Record) error {
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now().UTC()
	}
	if record.DocumentIDs == nil {
		record.DocumentIDs = []string{}
	}
	for _, name := range m.order {
		if err := m.sinks[name].Log(ctx, record); err != nil {
			m.logger.Warn("TRANSCRIPT", "Transcript sink failed", map[string]interface{}{
				"sink":       name,
				"session_id": record.SessionID,
				"error":      err.Error(),
			})
		}
	}
	return nil
}
