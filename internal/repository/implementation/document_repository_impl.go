package implementation

import (
	"context"

	"travel-chatbot-be/internal/entity"
	"travel-chatbot-be/internal/mapper"
	"travel-chatbot-be/internal/model"
	"travel-chatbot-be/internal/repository/contract"
	"travel-chatbot-be/internal/repository/scope"
	"travel-chatbot-be/internal/repository/specification"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type DocumentRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.DocumentMapper
}

func NewDocumentRepository(db *gorm.DB) contract.DocumentRepository {
	return &DocumentRepositoryImpl{
		db:     db,
		mapper: mapper.NewDocumentMapper(),
	}
}

func (r *DocumentRepositoryImpl) CreateBulk(ctx context.Context, documents []*entity.Document) error {
	if len(documents) == 0 {
		return nil
	}
	models := make([]*model.Document, len(documents))
	for i, d := range documents {
		models[i] = r.mapper.ToModel(d)
	}

	if err := r.db.WithContext(ctx).Create(models).Error; err != nil {
		return err
	}

	for i, m := range models {
		*documents[i] = *r.mapper.ToEntity(m)
	}
	return nil
}

// DeleteBySourceId hard-deletes chunks so re-ingestion does not leave stale vectors behind.
func (r *DocumentRepositoryImpl) DeleteBySourceId(ctx context.Context, sourceId string) error {
	return r.db.WithContext(ctx).Scopes(scope.WithSoftDelete).Where("source_id = ?", sourceId).Delete(&model.Document{}).Error
}

func (r *DocumentRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Document, error) {
	var models []*model.Document
	query := specification.ApplyAll(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.Document, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *DocumentRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := specification.ApplyAll(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.Document{}).Count(&count).Error
	return count, err
}

// SearchSimilarWithScore ranks chunks by cosine similarity.
// pgvector's <=> is cosine distance, so similarity = 1 - distance.
func (r *DocumentRepositoryImpl) SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, threshold float64) ([]*contract.ScoredDocument, error) {
	if limit <= 0 {
		limit = 5
	}

	type result struct {
		model.Document
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	err := r.db.WithContext(ctx).
		Table("documents").
		Select("documents.*, 1 - (embedding_value <=> ?) as similarity", queryVector).
		Scopes(scope.ExcludeSoftDelete).
		Where("1 - (embedding_value <=> ?) >= ?", queryVector, threshold).
		Order(gorm.Expr("embedding_value <=> ?", queryVector)).
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredDocument, len(results))
	for i := range results {
		scored[i] = &contract.ScoredDocument{
			Document:   r.mapper.ToEntity(&results[i].Document),
			Similarity: results[i].Similarity,
		}
	}
	return scored, nil
}
