package transcript

import (
	"context"
	"fmt"

	"travel-chatbot-be/internal/entity"
	"travel-chatbot-be/internal/repository/unitofwork"
	"travel-chatbot-be/pkg/events"

	"github.com/google/uuid"
)

type recordWriter interface {
	Record(message string, fields map[string]interface{})
}

// FileSink writes one JSON line per turn, normally through logger.NewIsolatedLogger.
type FileSink struct {
	writer recordWriter
}

func NewFileSink(writer recordWriter) *FileSink {
	return &FileSink{writer: writer}
}

func (s *FileSink) Log(ctx context.Context, record Record) error {
	s.writer.Record("chat_turn", record.fields())
	return nil
}

// DBSink stores turns in the chat_transcripts table.
type DBSink struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewDBSink(uowFactory unitofwork.RepositoryFactory) *DBSink {
	return &DBSink{uowFactory: uowFactory}
}

func (s *DBSink) Log(ctx context.Context, record Record) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	err := uow.ChatTranscriptRepository().Create(ctx, &entity.ChatTranscript{
		Id:              uuid.New(),
		SessionId:       record.SessionID,
		UserId:          record.UserID,
		UserQuery:       record.UserQuery,
		RefinedQuery:    record.RefinedQuery,
		Intent:          record.Intent,
		Generation:      record.Generation,
		RetryCount:      record.RetryCount,
		SafetyViolation: record.SafetyViolation,
		Grade:           record.Grade,
		DocumentIds:     record.DocumentIDs,
		CreatedAt:       record.Timestamp,
	})
	if err != nil {
		return fmt.Errorf("failed to store transcript: %w", err)
	}
	return nil
}

// EventSink publishes a CHAT_TURN_COMPLETED event per turn.
type EventSink struct {
	publisher events.Publisher
}

func NewEventSink(publisher events.Publisher) *EventSink {
	return &EventSink{publisher: publisher}
}

func (s *EventSink) Log(ctx context.Context, record Record) error {
	event := events.BaseEvent{
		Type:       events.ChatTurnCompleted,
		Data:       record.fields(),
		OccurredAt: record.Timestamp,
	}
	return s.publisher.Publish(ctx, event)
}
