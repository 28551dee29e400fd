package service

import (
	"context"
	"encoding/json"
	"fmt"

	"travel-chatbot-be/internal/dto"
	"travel-chatbot-be/internal/pkg/logger"
	"travel-chatbot-be/internal/pkg/serverutils"
	"travel-chatbot-be/pkg/events"
	pkgNats "travel-chatbot-be/pkg/nats"
)

// EventSubscriber is satisfied by pkg/nats.Subscriber.
type EventSubscriber interface {
	Subscribe(ctx context.Context, eventType, durableName string, handler pkgNats.EventHandler) error
}

// IngestionBridge forwards DOCUMENT_UPSERTED bus events into the local embed topic,
// so other services can feed the corpus without calling this API.
type IngestionBridge struct {
	publisher IPublisherService
	logger    logger.ILogger
}

func NewIngestionBridge(publisher IPublisherService, log logger.ILogger) *IngestionBridge {
	return &IngestionBridge{publisher: publisher, logger: log}
}

func (b *IngestionBridge) Start(ctx context.Context, subscriber EventSubscriber) error {
	return subscriber.Subscribe(ctx, events.DocumentUpserted, "chatbot-ingestion", b.Handle)
}

func (b *IngestionBridge) Handle(ctx context.Context, event events.Event) error {
	raw, err := json.Marshal(event.Payload())
	if err != nil {
		return fmt.Errorf("failed to re-encode event payload: %w", err)
	}

	var doc dto.PublishEmbedDocumentMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("invalid %s payload: %w", events.DocumentUpserted, err)
	}
	if err := serverutils.ValidateRequest(doc); err != nil {
		// Redelivery cannot fix a bad payload.
		b.logger.Warn("INGESTION", "Ignoring invalid document event", map[string]interface{}{
			"error": err.Error(),
		})
		return nil
	}

	return b.publisher.PublishDocument(ctx, &doc)
}
