package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const eventSource = "service-planner"

// CloudEvent is the envelope for every message on the planner topic.
type CloudEvent struct {
	ID          string          `json:"id"`
	Source      string          `json:"source"`
	SpecVersion string          `json:"specversion"`
	Type        string          `json:"type"`
	Time        time.Time       `json:"time"`
	Data        json.RawMessage `json:"data"`
}

// ParseData unmarshals the event payload into out.
func (e CloudEvent) ParseData(out any) error {
	return json.Unmarshal(e.Data, out)
}

// Publisher writes planner events to Kafka. Publishing is best-effort:
// callers treat a publish failure as a log-and-continue condition, never as
// an operation failure.
type Publisher struct {
	writer *kafkago.Writer
	logger *zap.Logger
}

// NewPublisher creates a Kafka publisher for the planner topic.
func NewPublisher(brokers []string, logger *zap.Logger) *Publisher {
	writer := &kafkago.Writer{
		Addr:                   kafkago.TCP(brokers...),
		Topic:                  TopicPlannerEvents,
		Balancer:               &kafkago.LeastBytes{},
		AllowAutoTopicCreation: true,
		BatchTimeout:           50 * time.Millisecond,
	}
	return &Publisher{writer: writer, logger: logger}
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

// Publish wraps the payload in a CloudEvent and writes it keyed by the given
// key so events for one entity stay ordered.
func (p *Publisher) Publish(ctx context.Context, eventType, key string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event payload: %w", err)
	}

	event := CloudEvent{
		ID:          uuid.NewString(),
		Source:      eventSource,
		SpecVersion: "1.0",
		Type:        eventType,
		Time:        time.Now().UTC(),
		Data:        data,
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal cloud event: %w", err)
	}

	if err := p.writer.WriteMessages(ctx, kafkago.Message{
		Key:   []byte(key),
		Value: value,
	}); err != nil {
		return fmt.Errorf("write event %s: %w", eventType, err)
	}

	p.logger.Debug("event published",
		zap.String("type", eventType),
		zap.String("key", key),
	)
	return nil
}
