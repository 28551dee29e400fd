package nats

import (
	"context"
	"fmt"
	"time"

	"travel-chatbot-be/internal/pkg/logger"
	"travel-chatbot-be/pkg/events"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const streamName = "EVENTS"

// Connect dials NATS with the reconnect settings shared by publisher and subscriber.
func Connect(url string) (*nats.Conn, error) {
	nc, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(5),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return nc, nil
}

// Publisher handles sending events to the NATS bus.
type Publisher struct {
	nc     *nats.Conn
	js     jetstream.JetStream
	logger logger.ILogger
}

var _ events.Publisher = (*Publisher)(nil)

// NewPublisher wraps a connection and ensures the EVENTS stream exists.
func NewPublisher(nc *nats.Conn, log logger.ILogger) (*Publisher, error) {
	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      streamName,
		Subjects:  []string{"events.>"},
		Storage:   jetstream.FileStorage,
		Retention: jetstream.LimitsPolicy,
		MaxAge:    7 * 24 * time.Hour,
	})
	if err != nil {
		// Stream may already exist with another config, or the server is still starting.
		log.Warn("NATS", "Failed to ensure stream", map[string]interface{}{
			"stream": streamName,
			"error":  err.Error(),
		})
	}

	return &Publisher{nc: nc, js: js, logger: log}, nil
}

// Publish sends an event to NATS.
func (p *Publisher) Publish(ctx context.Context, event events.Event) error {
	data, err := encode(event)
	if err != nil {
		return err
	}

	subject := events.Subject(event.EventType())
	if _, err := p.js.Publish(ctx, subject, data); err != nil {
		return fmt.Errorf("failed to publish event to subject %s: %w", subject, err)
	}
	return nil
}

func (p *Publisher) Close() {
	if p.nc != nil {
		p.nc.Close()
	}
}
