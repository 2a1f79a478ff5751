// Package kafka ships audit events to a Kafka topic for downstream
// consumers (SIEM, warehousing). Delivery is asynchronous and best-effort;
// the domain never blocks on the broker.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"

	audit "onboard/pkg/platform/audit"
)

// Publisher produces audit events onto a single topic, keyed by session so
// one session's events stay ordered within a partition.
type Publisher struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

// Option configures a Publisher.
type Option func(*Publisher)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// New connects to the brokers and ensures the topic exists.
func New(ctx context.Context, brokers []string, topic string, opts ...Option) (*Publisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka publisher requires at least one broker")
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	if err := ensureTopic(ctx, client, topic); err != nil {
		client.Close()
		return nil, err
	}

	p := &Publisher{
		client: client,
		topic:  topic,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// ensureTopic creates the audit topic when it is missing. Existing topics
// are left untouched.
func ensureTopic(ctx context.Context, client *kgo.Client, topic string) error {
	admin := kadm.NewClient(client)
	topics, err := admin.ListTopics(ctx, topic)
	if err != nil {
		return fmt.Errorf("list kafka topics: %w", err)
	}
	if topics.Has(topic) {
		return nil
	}
	if _, err := admin.CreateTopic(ctx, 1, 1, nil, topic); err != nil {
		return fmt.Errorf("create kafka topic %q: %w", topic, err)
	}
	return nil
}

// Publish produces one event asynchronously. Broker failures are logged and
// dropped.
func (p *Publisher) Publish(ctx context.Context, event audit.Event) {
	if event.Category == "" {
		event.Category = audit.CategoryFor(event.Action)
	}
	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Warn("audit event not serializable", "action", event.Action, "error", err)
		return
	}
	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(event.SessionID),
		Value: payload,
	}
	p.client.Produce(ctx, record, func(_ *kgo.Record, err error) {
		if err != nil {
			p.logger.Warn("audit event not delivered to kafka", "action", event.Action, "error", err)
		}
	})
}

// Close flushes outstanding records and releases the client.
func (p *Publisher) Close(ctx context.Context) error {
	if err := p.client.Flush(ctx); err != nil {
		p.client.Close()
		return fmt.Errorf("flush kafka producer: %w", err)
	}
	p.client.Close()
	return nil
}
