// Package kafka wraps franz-go for the audit outbox relay.
package kafka

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"casework/pkg/platform/audit/outbox"
)

// Producer publishes outbox messages to a single topic.
type Producer struct {
	client *kgo.Client
	topic  string
}

// NewProducer connects to the brokers. The client is lazy: connection errors
// surface on the first produce or Ping.
func NewProducer(brokers []string, topic string) (*Producer, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka brokers are required")
	}
	if topic == "" {
		return nil, errors.New("kafka topic is required")
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.ProducerLinger(5*time.Millisecond),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return &Producer{client: client, topic: topic}, nil
}

// Publish produces the batch keyed by aggregate id so events for one review stay
// ordered within a partition. It blocks until every record is acknowledged.
func (p *Producer) Publish(ctx context.Context, msgs []outbox.Message) error {
	records := make([]*kgo.Record, 0, len(msgs))
	for _, m := range msgs {
		records = append(records, &kgo.Record{
			Topic: p.topic,
			Key:   []byte(m.AggregateID),
			Value: m.Payload,
			Headers: []kgo.RecordHeader{
				{Key: "event_type", Value: []byte(m.EventType)},
				{Key: "aggregate_type", Value: []byte(m.AggregateType)},
				{Key: "outbox_id", Value: []byte(m.ID.String())},
			},
		})
	}
	if err := p.client.ProduceSync(ctx, records...).FirstErr(); err != nil {
		return fmt.Errorf("produce to %s: %w", p.topic, err)
	}
	return nil
}

// EnsureTopic creates the topic when it does not exist yet.
func (p *Producer) EnsureTopic(ctx context.Context, partitions int32, replicationFactor int16) error {
	adm := kadm.NewClient(p.client)
	_, err := adm.CreateTopic(ctx, partitions, replicationFactor, nil, p.topic)
	if err != nil && !errors.Is(err, kerr.TopicAlreadyExists) {
		return fmt.Errorf("create topic %s: %w", p.topic, err)
	}
	return nil
}

// Health pings the cluster.
func (p *Producer) Health(ctx context.Context) error {
	return p.client.Ping(ctx)
}

func (p *Producer) Close() {
	p.client.Close()
}
