package contract

import (
	"context"

	"travel-chatbot-be/internal/entity"
	"travel-chatbot-be/internal/repository/specification"
)

type ChatTranscriptRepository interface {
	Create(ctx context.Context, transcript *entity.ChatTranscript) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatTranscript, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
