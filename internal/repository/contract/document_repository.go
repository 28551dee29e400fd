package contract

import (
	"context"

	"travel-chatbot-be/internal/entity"
	"travel-chatbot-be/internal/repository/specification"
)

// ScoredDocument wraps a Document chunk with its cosine similarity (1.0 = identical).
type ScoredDocument struct {
	Document   *entity.Document
	Similarity float64
}

type DocumentRepository interface {
	CreateBulk(ctx context.Context, documents []*entity.Document) error
	DeleteBySourceId(ctx context.Context, sourceId string) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Document, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// SearchSimilarWithScore returns up to limit chunks at or above threshold, best first.
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, threshold float64) ([]*ScoredDocument, error)
}

// VectorStore is the corpus as seen by retrieval and ingestion.
type VectorStore interface {
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, threshold float64) ([]*ScoredDocument, error)
	// ReplaceSource swaps every chunk of sourceId for chunks atomically.
	ReplaceSource(ctx context.Context, sourceId string, chunks []*entity.Document) error
	// ListSource returns the live chunks of sourceId in chunk order.
	ListSource(ctx context.Context, sourceId string) ([]*entity.Document, error)
	Count(ctx context.Context) (int64, error)
}
