package service

import (
	"context"
	"encoding/json"
	"fmt"

	"travel-chatbot-be/internal/dto"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

const (
	actionMetadataKey = "action"
	actionUpsert      = "upsert"
	actionDelete      = "delete"
)

type IPublisherService interface {
	Publish(ctx context.Context, payload []byte) error
	PublishDocument(ctx context.Context, doc *dto.PublishEmbedDocumentMessage) error
	PublishDelete(ctx context.Context, sourceId string) error
}

type publisherService struct {
	topicName string
	publisher message.Publisher
}

func NewPublisherService(topicName string, publisher message.Publisher) IPublisherService {
	return &publisherService{
		topicName: topicName,
		publisher: publisher,
	}
}

func (ps *publisherService) Publish(ctx context.Context, payload []byte) error {
	return ps.publish(ctx, actionUpsert, payload)
}

func (ps *publisherService) PublishDocument(ctx context.Context, doc *dto.PublishEmbedDocumentMessage) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal document %s: %w", doc.SourceId, err)
	}
	return ps.publish(ctx, actionUpsert, payload)
}

func (ps *publisherService) PublishDelete(ctx context.Context, sourceId string) error {
	payload, err := json.Marshal(dto.DeleteDocumentMessage{SourceId: sourceId})
	if err != nil {
		return err
	}
	return ps.publish(ctx, actionDelete, payload)
}

func (ps *publisherService) publish(ctx context.Context, action string, payload []byte) error {
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set(actionMetadataKey, action)
	msg.SetContext(ctx)
	return ps.publisher.Publish(ps.topicName, msg)
}
