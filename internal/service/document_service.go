package service

import (
	"context"
	"errors"

	"travel-chatbot-be/internal/dto"
	"travel-chatbot-be/internal/repository/contract"
)

type IDocumentService interface {
	Ingest(ctx context.Context, req *dto.PublishEmbedDocumentMessage) error
	Delete(ctx context.Context, sourceId string) error
	Stats(ctx context.Context) (*dto.CorpusStatsResponse, error)
	Source(ctx context.Context, sourceId string) (*dto.SourceDocumentResponse, error)
}

var ErrSourceNotFound = errors.New("source not found")

type documentService struct {
	publisher IPublisherService
	store     contract.VectorStore
}

func NewDocumentService(publisher IPublisherService, store contract.VectorStore) IDocumentService {
	return &documentService{publisher: publisher, store: store}
}

// Ingest queues the document; embedding happens in the consumer.
func (s *documentService) Ingest(ctx context.Context, req *dto.PublishEmbedDocumentMessage) error {
	return s.publisher.PublishDocument(ctx, req)
}

func (s *documentService) Delete(ctx context.Context, sourceId string) error {
	return s.publisher.PublishDelete(ctx, sourceId)
}

func (s *documentService) Stats(ctx context.Context) (*dto.CorpusStatsResponse, error) {
	n, err := s.store.Count(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.CorpusStatsResponse{Chunks: n}, nil
}

// Source reassembles a corpus item from its live chunks.
func (s *documentService) Source(ctx context.Context, sourceId string) (*dto.SourceDocumentResponse, error) {
	chunks, err := s.store.ListSource(ctx, sourceId)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, ErrSourceNotFound
	}

	res := &dto.SourceDocumentResponse{
		SourceId: sourceId,
		Title:    chunks[0].Title,
		Metadata: chunks[0].Metadata,
		Chunks:   make([]dto.DocumentChunkDTO, len(chunks)),
	}
	for i, c := range chunks {
		res.Chunks[i] = dto.DocumentChunkDTO{Id: c.Id.String(), ChunkIndex: c.ChunkIndex, Content: c.Content}
	}
	return res, nil
}
