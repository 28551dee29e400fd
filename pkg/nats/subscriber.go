package nats

import (
	"context"
	"fmt"

	"travel-chatbot-be/internal/pkg/logger"
	"travel-chatbot-be/pkg/events"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// EventHandler is a function that processes an event.
type EventHandler func(ctx context.Context, event events.Event) error

// Subscriber handles listening for events from NATS.
type Subscriber struct {
	js       jetstream.JetStream
	logger   logger.ILogger
	contexts []jetstream.ConsumeContext
}

func NewSubscriber(nc *nats.Conn, log logger.ILogger) (*Subscriber, error) {
	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}
	return &Subscriber{js: js, logger: log}, nil
}

// Subscribe registers a handler for an event type using a durable consumer.
// Handler errors Nak the message so JetStream redelivers it.
func (s *Subscriber) Subscribe(ctx context.Context, eventType, durableName string, handler EventHandler) error {
	consumer, err := s.js.CreateOrUpdateConsumer(ctx, streamName, jetstream.ConsumerConfig{
		Durable:       durableName,
		FilterSubject: events.Subject(eventType),
		AckPolicy:     jetstream.AckExplicitPolicy,
		MaxDeliver:    5,
	})
	if err != nil {
		return fmt.Errorf("failed to create consumer: %w", err)
	}

	cc, err := consumer.Consume(func(msg jetstream.Msg) {
		event, err := decode(msg.Data())
		if err != nil {
			s.logger.Error("NATS", "Dropping undecodable message", map[string]interface{}{
				"subject": msg.Subject(),
				"error":   err.Error(),
			})
			_ = msg.Term()
			return
		}

		if err := handler(ctx, event); err != nil {
			s.logger.Warn("NATS", "Handler failed, message will be redelivered", map[string]interface{}{
				"subject": msg.Subject(),
				"error":   err.Error(),
			})
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	})
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}
	s.contexts = append(s.contexts, cc)

	s.logger.Info("NATS", "Subscribed", map[string]interface{}{
		"subject": events.Subject(eventType),
		"durable": durableName,
	})
	return nil
}

// Close stops all consumers. The connection is owned by the caller.
func (s *Subscriber) Close() {
	for _, cc := range s.contexts {
		cc.Stop()
	}
}
