package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	kafkaGo "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/egannguyen/vayam-storefront/internal/entity"
	"github.com/egannguyen/vayam-storefront/internal/messaging"
)

// Publishing happens on the request path after the write has committed.
// Delivery is at-most-once: a failed write is reported to the caller, which
// logs it and moves on.
const (
	batchTimeout = 10 * time.Millisecond
	writeTimeout = 2 * time.Second
)

type kafkaBroker struct {
	brokers []string
	writer  *kafkaGo.Writer
	logger  *zap.Logger
}

// NewKafkaBroker creates a new Kafka publisher and subscriber. The writer is
// shared across topics; each message names its own topic.
func NewKafkaBroker(brokers []string, logger *zap.Logger) (messaging.Publisher, messaging.Subscriber) {
	kb := &kafkaBroker{
		brokers: brokers,
		writer:  newWriter(brokers),
		logger:  logger,
	}
	return kb, kb
}

// newWriter flushes every write after batchTimeout instead of kafka-go's
// one second default, and waits for the partition leader only.
func newWriter(brokers []string) *kafkaGo.Writer {
	return &kafkaGo.Writer{
		Addr:                   kafkaGo.TCP(brokers...),
		Balancer:               &kafkaGo.Hash{},
		BatchTimeout:           batchTimeout,
		WriteTimeout:           writeTimeout,
		RequiredAcks:           kafkaGo.RequireOne,
		AllowAutoTopicCreation: true,
	}
}

// Encode wraps an event in the envelope written to the topic.
func Encode(event entity.Event) ([]byte, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event %s: %w", event.EventType(), err)
	}
	return json.Marshal(entity.EventEnvelope{Type: event.EventType(), Payload: payload})
}

func (k *kafkaBroker) PublishEvent(ctx context.Context, topic string, key string, event entity.Event) error {
	value, err := Encode(event)
	if err != nil {
		return err
	}

	return k.writer.WriteMessages(ctx, kafkaGo.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: value,
		Headers: []kafkaGo.Header{
			{Key: "event_type", Value: []byte(event.EventType())},
		},
	})
}

func (k *kafkaBroker) Close() error {
	return k.writer.Close()
}

func (k *kafkaBroker) Consume(ctx context.Context, topic string, groupID string, handler func(ctx context.Context, payload []byte) error) {
	reader := kafkaGo.NewReader(kafkaGo.ReaderConfig{
		Brokers: k.brokers,
		Topic:   topic,
		GroupID: groupID,
	})
	defer reader.Close()

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				k.logger.Info("Consumer shutting down", zap.String("topic", topic))
				return
			}
			k.logger.Error("Error reading message", zap.String("topic", topic), zap.Error(err))
			continue
		}

		if err := handler(ctx, msg.Value); err != nil {
			k.logger.Error("Error handling message", zap.String("topic", topic), zap.Error(err))
		}
	}
}
