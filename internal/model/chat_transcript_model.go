package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ChatTranscript struct {
	Id              uuid.UUID                   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionId       string                      `gorm:"type:varchar(255);not null;index"`
	UserId          *int                        `gorm:"index"`
	UserQuery       string                      `gorm:"type:text;not null"`
	RefinedQuery    string                      `gorm:"type:text"`
	Intent          string                      `gorm:"type:varchar(50)"`
	Generation      string                      `gorm:"type:text"`
	RetryCount      int                         `gorm:"default:0"`
	SafetyViolation bool                        `gorm:"default:false"`
	Grade           string                      `gorm:"type:varchar(50)"`
	DocumentIds     datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	CreatedAt       time.Time                   `gorm:"autoCreateTime;index"`
}

func (ChatTranscript) TableName() string {
	return "chat_transcripts"
}
