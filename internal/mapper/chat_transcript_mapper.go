package mapper

import (
	"travel-chatbot-be/internal/entity"
	"travel-chatbot-be/internal/model"

	"gorm.io/datatypes"
)

type ChatTranscriptMapper struct{}

func NewChatTranscriptMapper() *ChatTranscriptMapper {
	return &ChatTranscriptMapper{}
}

func (m *ChatTranscriptMapper) ToEntity(t *model.ChatTranscript) *entity.ChatTranscript {
	if t == nil {
		return nil
	}
	return &entity.ChatTranscript{
		Id:              t.Id,
		SessionId:       t.SessionId,
		UserId:          t.UserId,
		UserQuery:       t.UserQuery,
		RefinedQuery:    t.RefinedQuery,
		Intent:          t.Intent,
		Generation:      t.Generation,
		RetryCount:      t.RetryCount,
		SafetyViolation: t.SafetyViolation,
		Grade:           t.Grade,
		DocumentIds:     []string(t.DocumentIds),
		CreatedAt:       t.CreatedAt,
	}
}

func (m *ChatTranscriptMapper) ToModel(t *entity.ChatTranscript) *model.ChatTranscript {
	if t == nil {
		return nil
	}
	return &model.ChatTranscript{
		Id:              t.Id,
		SessionId:       t.SessionId,
		UserId:          t.UserId,
		UserQuery:       t.UserQuery,
		RefinedQuery:    t.RefinedQuery,
		Intent:          t.Intent,
		Generation:      t.Generation,
		RetryCount:      t.RetryCount,
		SafetyViolation: t.SafetyViolation,
		Grade:           t.Grade,
		DocumentIds:     datatypes.NewJSONSlice(t.DocumentIds),
		CreatedAt:       t.CreatedAt,
	}
}
