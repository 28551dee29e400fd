package vectorstore

import (
	"context"
	"fmt"

	"travel-chatbot-be/internal/entity"
	"travel-chatbot-be/internal/repository/contract"
	"travel-chatbot-be/internal/repository/specification"
	"travel-chatbot-be/internal/repository/unitofwork"
)

// PgVectorStore serves the corpus from the documents table.
type PgVectorStore struct {
	uowFactory unitofwork.RepositoryFactory
}

var _ contract.VectorStore = (*PgVectorStore)(nil)

func NewPgVectorStore(uowFactory unitofwork.RepositoryFactory) *PgVectorStore {
	return &PgVectorStore{uowFactory: uowFactory}
}

func (s *PgVectorStore) SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, threshold float64) ([]*contract.ScoredDocument, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.DocumentRepository().SearchSimilarWithScore(ctx, embedding, limit, threshold)
}

func (s *PgVectorStore) ReplaceSource(ctx context.Context, sourceId string, chunks []*entity.Document) error {
	return s.uowFactory.NewUnitOfWork(ctx).Transaction(ctx, func(tx unitofwork.UnitOfWork) error {
		repo := tx.DocumentRepository()
		if err := repo.DeleteBySourceId(ctx, sourceId); err != nil {
			return fmt.Errorf("delete old chunks for %s: %w", sourceId, err)
		}
		if len(chunks) == 0 {
			return nil
		}
		if err := repo.CreateBulk(ctx, chunks); err != nil {
			return fmt.Errorf("insert chunks for %s: %w", sourceId, err)
		}
		return nil
	})
}

func (s *PgVectorStore) ListSource(ctx context.Context, sourceId string) ([]*entity.Document, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.DocumentRepository().FindAll(ctx,
		specification.BySourceID{SourceID: sourceId},
		specification.OrderBy{Column: "chunk_index"},
	)
}

func (s *PgVectorStore) Count(ctx context.Context) (int64, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.DocumentRepository().Count(ctx)
}
