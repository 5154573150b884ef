// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/IBM/sarama"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/holomush/accounts/internal/account"
)

// envelopeVersion is bumped when the envelope layout changes incompatibly.
const envelopeVersion = "1"

// Envelope is the JSON document published for each message.
type Envelope struct {
	ID       string          `json:"id"`
	Version  string          `json:"version"`
	QueuedAt time.Time       `json:"queued_at"`
	Message  account.Message `json:"message"`
}

// KafkaMailer publishes messages to a Kafka topic. A separate worker owns
// actual delivery.
type KafkaMailer struct {
	producer sarama.SyncProducer
	topic    string
	now      func() time.Time
	logger   *slog.Logger
}

var _ Transport = (*KafkaMailer)(nil)

// NewKafkaMailer connects a synchronous producer to cfg.Brokers.
func NewKafkaMailer(cfg KafkaConfig, logger *slog.Logger) (*KafkaMailer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, oops.Code(CodeConfigInvalid).Errorf("kafka brokers are required")
	}
	if cfg.Topic == "" {
		return nil, oops.Code(CodeConfigInvalid).Errorf("kafka topic is required")
	}

	sc := sarama.NewConfig()
	sc.Producer.RequiredAcks = sarama.WaitForAll
	sc.Producer.Retry.Max = 3
	sc.Producer.Return.Successes = true
	sc.Producer.Return.Errors = true
	sc.Metadata.Retry.Max = 3
	sc.Metadata.Retry.Backoff = 250 * time.Millisecond

	producer, err := sarama.NewSyncProducer(cfg.Brokers, sc)
	if err != nil {
		return nil, oops.Code(CodeConfigInvalid).
			With("brokers", cfg.Brokers).
			Wrap(err)
	}
	return newKafkaMailer(producer, cfg.Topic, logger), nil
}

func newKafkaMailer(producer sarama.SyncProducer, topic string, logger *slog.Logger) *KafkaMailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &KafkaMailer{producer: producer, topic: topic, now: time.Now, logger: logger}
}

// Send publishes msg keyed by recipient, so one recipient's messages stay
// ordered within a partition.
func (m *KafkaMailer) Send(ctx context.Context, msg account.Message) error {
	if err := ctx.Err(); err != nil {
		return oops.Code(CodeSendFailed).Wrap(err)
	}

	env := Envelope{
		ID:       ulid.Make().String(),
		Version:  envelopeVersion,
		QueuedAt: m.now().UTC(),
		Message:  msg,
	}
	payload, err := json.Marshal(env)
	if err != nil {
		return oops.Code(CodeBuildFailed).With("to", msg.To).Wrap(err)
	}

	partition, offset, err := m.producer.SendMessage(&sarama.ProducerMessage{
		Topic: m.topic,
		Key:   sarama.StringEncoder(msg.To),
		Value: sarama.ByteEncoder(payload),
	})
	if err != nil {
		return oops.Code(CodeSendFailed).
			With("transport", TransportKafka).
			With("topic", m.topic).
			With("to", msg.To).
			Wrap(err)
	}

	m.logger.DebugContext(ctx, "message queued",
		"id", env.ID,
		"topic", m.topic,
		"partition", partition,
		"offset", offset)
	return nil
}

// Close flushes and closes the producer.
func (m *KafkaMailer) Close() error {
	if err := m.producer.Close(); err != nil {
		return oops.Code(CodeSendFailed).With("operation", "close kafka producer").Wrap(err)
	}
	return nil
}
