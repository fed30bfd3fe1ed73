package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"
)

// KafkaPublisher streams events to a Kafka topic, keyed by project ID so all
// events for one project land on one partition in order.
type KafkaPublisher struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

// NewKafkaPublisher connects to the given brokers.
func NewKafkaPublisher(brokers []string, topic string, logger *slog.Logger) (*KafkaPublisher, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return &KafkaPublisher{client: client, topic: topic, logger: logger}, nil
}

// Emit produces the event asynchronously. Delivery failures are logged; the
// sale that triggered the event has already committed and must not observe
// them.
func (p *KafkaPublisher) Emit(ctx context.Context, event Event) {
	value, err := json.Marshal(event)
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to encode event",
			"type", event.Type,
			"project_id", event.ProjectID,
			"error", err,
		)
		return
	}

	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(event.ProjectID.String()),
		Value: value,
	}
	p.client.Produce(ctx, record, func(_ *kgo.Record, err error) {
		if err != nil {
			p.logger.ErrorContext(ctx, "failed to publish event",
				"type", event.Type,
				"project_id", event.ProjectID,
				"error", err,
			)
		}
	})
}

// Close flushes pending records and closes the client.
func (p *KafkaPublisher) Close(ctx context.Context) error {
	if err := p.client.Flush(ctx); err != nil {
		return fmt.Errorf("flush kafka client: %w", err)
	}
	p.client.Close()
	return nil
}
