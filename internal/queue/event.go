package queue

import (
	"context"
	"encoding/json"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
)

// ErrorEvent is the structured record published to the error channel.
type ErrorEvent struct {
	ID        string         `json:"id"`
	EventKind string         `json:"eventKind"`
	Name      string         `json:"name"`
	Payload   map[string]any `json:"payload"`
	CreatedAt string         `json:"createdAt"`
}

// ErrorPublisher forwards error events to the error queue. Publishing is
// fire-and-forget: a failed publish is logged, never returned.
type ErrorPublisher struct {
	rabbitMQ *RabbitMQ
	logger   *zap.SugaredLogger
}

func NewErrorPublisher(rabbitMQ *RabbitMQ, logger *zap.SugaredLogger) *ErrorPublisher {
	return &ErrorPublisher{rabbitMQ: rabbitMQ, logger: logger}
}

func (p *ErrorPublisher) ReportError(ctx context.Context, name string, payload map[string]any) {
	id, err := gonanoid.New()
	if err != nil {
		id = "unknown"
	}

	event := ErrorEvent{
		ID:        id,
		EventKind: "error",
		Name:      name,
		Payload:   payload,
		CreatedAt: time.Now().Format(time.RFC3339),
	}

	body, err := json.Marshal(event)
	if err != nil {
		p.logger.Errorf("Failed to marshal error event %s: %v", name, err)
		return
	}

	if err := p.rabbitMQ.Publish(QueueErrorEvents, body); err != nil {
		p.logger.Errorf("Failed to publish error event %s: %v", name, err)
	}
}
