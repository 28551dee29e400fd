package implementation

import (
	"context"

	"travel-chatbot-be/internal/entity"
	"travel-chatbot-be/internal/mapper"
	"travel-chatbot-be/internal/model"
	"travel-chatbot-be/internal/repository/contract"
	"travel-chatbot-be/internal/repository/specification"

	"gorm.io/gorm"
)

type ChatTranscriptRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChatTranscriptMapper
}

func NewChatTranscriptRepository(db *gorm.DB) contract.ChatTranscriptRepository {
	return &ChatTranscriptRepositoryImpl{
		db:     db,
		mapper: mapper.NewChatTranscriptMapper(),
	}
}

func (r *ChatTranscriptRepositoryImpl) Create(ctx context.Context, transcript *entity.ChatTranscript) error {
	m := r.mapper.ToModel(transcript)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*transcript = *r.mapper.ToEntity(m)
	return nil
}

func (r *ChatTranscriptRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatTranscript, error) {
	var models []*model.ChatTranscript
	query := specification.ApplyAll(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.ChatTranscript, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *ChatTranscriptRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := specification.ApplyAll(r.db.WithContext(ctx).Model(&model.ChatTranscript{}), specs...)
	err := query.Count(&count).Error
	return count, err
}
