// Package events provides event publishing for discovery run lifecycle
// events.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jonesrussell/adscout/internal/logger"
)

// StreamName is the Redis stream run events are published to.
const StreamName = "adscout:run-events"

// asyncPublishTimeout is the context timeout for async publish operations.
const asyncPublishTimeout = 5 * time.Second

// EventType identifies a run lifecycle event.
type EventType string

const (
	RunStarted   EventType = "run.started"
	RunCompleted EventType = "run.completed"
	ProductAdded EventType = "run.product_added"
)

// RunEvent is one run lifecycle event on the stream.
type RunEvent struct {
	EventID   uuid.UUID `json:"event_id"`
	EventType EventType `json:"event_type"`
	RunID     string    `json:"run_id"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload,omitempty"`
}

// RunCompletedPayload accompanies RunCompleted events.
type RunCompletedPayload struct {
	ProductCount int `json:"product_count"`
	IdeaCount    int `json:"idea_count"`
}

// ProductAddedPayload accompanies ProductAdded events.
type ProductAddedPayload struct {
	ProductID string `json:"product_id"`
	Title     string `json:"title"`
	Merchant  string `json:"merchant"`
}

// Publisher publishes run events to Redis Streams.
type Publisher struct {
	client *redis.Client
	log    logger.Logger
}

// NewPublisher creates a new event publisher.
// Returns nil if client is nil; a nil Publisher is safe to use.
func NewPublisher(client *redis.Client, log logger.Logger) *Publisher {
	if client == nil {
		return nil
	}
	return &Publisher{
		client: client,
		log:    log,
	}
}

// Publish sends an event to the Redis stream.
func (p *Publisher) Publish(ctx context.Context, event RunEvent) error {
	if p == nil || p.client == nil {
		return nil // No-op if publisher not configured
	}

	// Ensure event has ID and timestamp
	if event.EventID == uuid.Nil {
		event.EventID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	result := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: StreamName,
		Values: map[string]any{
			"event": string(payload),
		},
	})

	if publishErr := result.Err(); publishErr != nil {
		if p.log != nil {
			p.log.Error("Failed to publish run event",
				logger.String("event_type", string(event.EventType)),
				logger.String("run_id", event.RunID),
				logger.Error(publishErr),
			)
		}
		return fmt.Errorf("publish to stream: %w", publishErr)
	}

	if p.log != nil {
		p.log.Debug("Published run event",
			logger.String("event_type", string(event.EventType)),
			logger.String("run_id", event.RunID),
			logger.String("stream_id", result.Val()),
		)
	}

	return nil
}

// PublishAsync publishes an event asynchronously.
// Errors are logged but not returned.
func (p *Publisher) PublishAsync(event RunEvent) {
	if p == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), asyncPublishTimeout)
		defer cancel()

		if err := p.Publish(ctx, event); err != nil && p.log != nil {
			p.log.Error("Async publish failed",
				logger.String("event_type", string(event.EventType)),
				logger.String("run_id", event.RunID),
				logger.Error(err),
			)
		}
	}()
}
