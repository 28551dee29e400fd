package state

import (
	"errors"
	"fmt"
	"strings"

	"travel-chatbot-be/pkg/llm"
)

type Intent string

const (
	IntentVectorSearch Intent = "VECTOR_SEARCH"
	IntentChitChat     Intent = "CHIT_CHAT"
)

// ParseIntent accepts the labels models tend to produce for each intent.
func ParseIntent(raw string) (Intent, bool) {
	normalized := strings.ToUpper(strings.TrimSpace(raw))
	normalized = strings.NewReplacer("-", "_", " ", "_").Replace(normalized)
	switch normalized {
	case string(IntentVectorSearch), "SEARCH", "RETRIEVAL":
		return IntentVectorSearch, true
	case string(IntentChitChat), "CHITCHAT", "CHAT", "SMALL_TALK":
		return IntentChitChat, true
	default:
		return "", false
	}
}

type Grade string

const (
	GradeNone      Grade = ""
	GradeUseful    Grade = "USEFUL"
	GradeNotUseful Grade = "NOT_USEFUL"
)

// RetrievedDocument is a read-only snapshot of a corpus hit for one turn.
type RetrievedDocument struct {
	ID       string                 `json:"id"`
	Title    string                 `json:"title"`
	Content  string                 `json:"content"`
	Score    float64                `json:"score"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// AgentState is threaded through every node of a single chatbot turn.
type AgentState struct {
	UserQuery       string
	SessionID       string
	UserID          *int
	History         []llm.Message
	SafetyViolation bool
	SafetyCategory  string
	Intent          Intent
	RefinedQuery    string
	Documents       []RetrievedDocument
	Generation      string
	RetryCount      int
	Grade           Grade
}

var ErrInvalidState = errors.New("invalid agent state")

// New starts a turn with the refined query defaulting to the raw query.
func New(userQuery, sessionID string, userID *int, history []llm.Message) *AgentState {
	return &AgentState{
		UserQuery:    userQuery,
		SessionID:    sessionID,
		UserID:       userID,
		History:      history,
		RefinedQuery: userQuery,
		Documents:    []RetrievedDocument{},
	}
}

// Validate checks the turn invariants; the graph calls it at each node boundary.
func (s *AgentState) Validate(maxRetries int) error {
	if s.RetryCount < 0 || s.RetryCount > maxRetries {
		return fmt.Errorf("%w: retry count %d outside [0, %d]", ErrInvalidState, s.RetryCount, maxRetries)
	}
	if len(s.Documents) > 0 && s.Intent != IntentVectorSearch {
		return fmt.Errorf("%w: %d documents on a %q turn", ErrInvalidState, len(s.Documents), s.Intent)
	}
	if s.Intent == IntentVectorSearch && strings.TrimSpace(s.RefinedQuery) == "" {
		return fmt.Errorf("%w: empty refined query for vector search", ErrInvalidState)
	}
	if s.SafetyViolation {
		if s.Generation == "" {
			return fmt.Errorf("%w: safety violation without refusal", ErrInvalidState)
		}
		if s.Intent != "" || len(s.Documents) > 0 || s.RetryCount != 0 {
			return fmt.Errorf("%w: state mutated after safety violation", ErrInvalidState)
		}
	}
	switch s.Intent {
	case "", IntentVectorSearch, IntentChitChat:
	default:
		return fmt.Errorf("%w: unknown intent %q", ErrInvalidState, s.Intent)
	}
	switch s.Grade {
	case GradeNone, GradeUseful, GradeNotUseful:
	default:
		return fmt.Errorf("%w: unknown grade %q", ErrInvalidState, s.Grade)
	}
	return nil
}
