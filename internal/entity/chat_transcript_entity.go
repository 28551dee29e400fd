package entity

import (
	"time"

	"github.com/google/uuid"
)

type ChatTranscript struct {
	Id              uuid.UUID
	SessionId       string
	UserId          *int
	UserQuery       string
	RefinedQuery    string
	Intent          string
	Generation      string
	RetryCount      int
	SafetyViolation bool
	Grade           string
	DocumentIds     []string
	CreatedAt       time.Time
}
