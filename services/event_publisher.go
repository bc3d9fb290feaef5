package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Domain event types
const (
	EventOrderCreated         = "order.created"
	EventOrderStatusChanged   = "order.status_changed"
	EventOrdersMarkedStale    = "orders.marked_stale"
	EventBookingCreated       = "booking.created"
	EventBookingStatusChanged = "booking.status_changed"
	EventLeadCreated          = "lead.created"
	EventProductStockChanged  = "product.stock_changed"
)

// Event is the envelope written to the events topic
type Event struct {
	ID         string      `json:"id"`
	Type       string      `json:"type"`
	Key        string      `json:"key"`
	OccurredAt time.Time   `json:"occurred_at"`
	Data       interface{} `json:"data"`
}

// NewEvent wraps data in an envelope with a fresh id
func NewEvent(eventType, key string, data interface{}) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		Key:        key,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}
}

// EventPublisher publishes domain events. Publishing is best-effort: callers log
// failures and never fail the request because of them.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// KafkaEventPublisher writes events to a Kafka topic keyed by entity
type KafkaEventPublisher struct {
	w *kafka.Writer
}

// NoopEventPublisher drops every event. Used when KAFKA_BROKERS is unset.
type NoopEventPublisher struct{}

var eventPublisherInstance EventPublisher

// InitEventPublisher builds the Kafka writer, or the no-op publisher when no brokers are configured
func InitEventPublisher(brokers []string, topic string) EventPublisher {
	if len(brokers) == 0 {
		eventPublisherInstance = NoopEventPublisher{}
		return eventPublisherInstance
	}

	eventPublisherInstance = &KafkaEventPublisher{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			Async:        true,
			Completion: func(messages []kafka.Message, err error) {
				if err != nil {
					zap.L().Warn("failed to deliver events", zap.Int("count", len(messages)), zap.Error(err))
				}
			},
		},
	}
	return eventPublisherInstance
}

// GetEventPublisher returns the publisher, or the no-op publisher when none was initialized
func GetEventPublisher() EventPublisher {
	if eventPublisherInstance == nil {
		return NoopEventPublisher{}
	}
	return eventPublisherInstance
}

// SetEventPublisher sets the publisher instance (primarily for testing)
func SetEventPublisher(p EventPublisher) {
	eventPublisherInstance = p
}

// Publish enqueues event on the writer; delivery errors surface in the Completion log
func (p *KafkaEventPublisher) Publish(ctx context.Context, event Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	return p.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.Key),
		Value: value,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(event.Type)},
		},
	})
}

// Close flushes pending messages
func (p *KafkaEventPublisher) Close() error {
	return p.w.Close()
}

func (NoopEventPublisher) Publish(ctx context.Context, event Event) error { return nil }

func (NoopEventPublisher) Close() error { return nil }

// publishEvent sends one event through the global publisher and logs failures
func publishEvent(ctx context.Context, eventType, key string, data interface{}) {
	if err := GetEventPublisher().Publish(ctx, NewEvent(eventType, key, data)); err != nil {
		zap.L().Warn("failed to publish event", zap.String("type", eventType), zap.String("key", key), zap.Error(err))
	}
}
