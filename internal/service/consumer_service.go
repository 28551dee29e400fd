// FILE: internal/service/consumer_service.go
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"travel-chatbot-be/internal/dto"
	"travel-chatbot-be/internal/entity"
	"travel-chatbot-be/internal/pkg/logger"
	"travel-chatbot-be/internal/pkg/serverutils"
	"travel-chatbot-be/internal/repository/contract"
	"travel-chatbot-be/pkg/embedding"
	"travel-chatbot-be/pkg/retry"
	"travel-chatbot-be/pkg/utils"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

const (
	// ChunkSize is ~375 tokens, safe for every embedding model we support.
	ChunkSize    = 1500
	ChunkOverlap = 200
)

type IConsumerService interface {
	Consume(ctx context.Context) error
	// Ingest embeds and stores one document on the caller's goroutine.
	Ingest(ctx context.Context, doc *dto.PublishEmbedDocumentMessage) error
}

type consumerService struct {
	subscriber        message.Subscriber
	topicName         string
	store             contract.VectorStore
	embeddingProvider embedding.EmbeddingProvider
	logger            logger.ILogger
}

func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	store contract.VectorStore,
	embeddingProvider embedding.EmbeddingProvider,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber:        subscriber,
		topicName:         topicName,
		store:             store,
		embeddingProvider: embeddingProvider,
		logger:            log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var err error
	if msg.Metadata.Get(actionMetadataKey) == actionDelete {
		err = cs.deleteDocument(ctx, msg.Payload)
	} else {
		err = cs.ingestDocument(ctx, msg.Payload)
	}

	if err == nil {
		msg.Ack()
		return
	}

	// Only transient failures are redelivered; bad payloads would loop forever.
	if ctx.Err() == nil && retry.IsRetryable(err) {
		cs.logger.Warn("INGESTION", "Transient ingestion failure, redelivering", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		msg.Nack()
		return
	}

	cs.logger.Error("INGESTION", "Dropping document message", map[string]interface{}{
		"message_id": msg.UUID,
		"error":      err.Error(),
	})
	msg.Ack()
}

func (cs *consumerService) ingestDocument(ctx context.Context, payload []byte) error {
	var doc dto.PublishEmbedDocumentMessage
	if err := json.Unmarshal(payload, &doc); err != nil {
		return fmt.Errorf("failed to unmarshal message: %w", err)
	}
	return cs.Ingest(ctx, &doc)
}

func (cs *consumerService) Ingest(ctx context.Context, doc *dto.PublishEmbedDocumentMessage) error {
	if err := serverutils.ValidateRequest(doc); err != nil {
		return err
	}

	chunks, err := cs.embedChunks(ctx, doc)
	if err != nil {
		return err
	}

	if err := cs.store.ReplaceSource(ctx, doc.SourceId, chunks); err != nil {
		return fmt.Errorf("failed to store chunks for %s: %w", doc.SourceId, err)
	}

	cs.logger.Info("INGESTION", "Document embedded", map[string]interface{}{
		"source_id": doc.SourceId,
		"chunks":    len(chunks),
	})
	return nil
}

func (cs *consumerService) embedChunks(ctx context.Context, doc *dto.PublishEmbedDocumentMessage) ([]*entity.Document, error) {
	content := fmt.Sprintf("%s\n\n%s", strings.TrimSpace(doc.Title), strings.TrimSpace(doc.Content))
	pieces := utils.SplitText(content, ChunkSize, ChunkOverlap)

	now := time.Now()
	chunks := make([]*entity.Document, 0, len(pieces))
	for i, piece := range pieces {
		res, err := cs.embeddingProvider.Generate(ctx, piece, embedding.TaskRetrievalDocument)
		if err != nil {
			return nil, fmt.Errorf("failed to embed chunk %d of %s: %w", i, doc.SourceId, err)
		}
		if len(res.Embedding.Values) != embedding.Dimensions {
			return nil, errors.New("embedding dimension mismatch for " + doc.SourceId)
		}

		chunks = append(chunks, &entity.Document{
			Id:         uuid.New(),
			SourceId:   doc.SourceId,
			Title:      doc.Title,
			Content:    piece,
			Embedding:  res.Embedding.Values,
			Metadata:   doc.Metadata,
			ChunkIndex: i,
			CreatedAt:  now,
		})
	}
	return chunks, nil
}

func (cs *consumerService) deleteDocument(ctx context.Context, payload []byte) error {
	var req dto.DeleteDocumentMessage
	if err := json.Unmarshal(payload, &req); err != nil {
		return fmt.Errorf("failed to unmarshal message: %w", err)
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}
	if err := cs.store.ReplaceSource(ctx, req.SourceId, nil); err != nil {
		return fmt.Errorf("failed to delete %s: %w", req.SourceId, err)
	}
	cs.logger.Info("INGESTION", "Document removed", map[string]interface{}{
		"source_id": req.SourceId,
	})
	return nil
}
