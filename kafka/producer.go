package kafka

import (
	"context"
	"encoding/json"

	"commerce-service/models"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// SettlementPublisher publishes settled-payment events. Delivery is
// fire-and-forget from the caller's point of view: no confirmation is
// required and the caller decides whether a failure matters.
type SettlementPublisher interface {
	PublishSettlement(ctx context.Context, evt models.SettlementEvent) error
}

// Producer writes settlement events to the settlement topic.
type Producer struct {
	writer *kafka.Writer
	topic  string
	logger *zap.Logger
}

// NewProducer creates a Kafka producer for the settlement topic.
func NewProducer(brokers []string, topic string, logger *zap.Logger) *Producer {
	w := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}
	logger.Info("Kafka producer initialized",
		zap.String("topic", topic),
		zap.Strings("brokers", brokers),
	)
	return &Producer{writer: w, topic: topic, logger: logger}
}

// PublishSettlement sends one settlement event, keyed by order id so events
// for the same order land on the same partition.
func (p *Producer) PublishSettlement(ctx context.Context, evt models.SettlementEvent) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	msg := kafka.Message{
		Key:   []byte(evt.OrderID.String()),
		Value: data,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return err
	}
	p.logger.Info("Settlement event published",
		zap.String("payment_id", evt.PaymentID.String()),
		zap.String("order_id", evt.OrderID.String()),
	)
	return nil
}

// Close flushes and closes the underlying writer.
func (p *Producer) Close() error {
	p.logger.Info("Closing Kafka producer", zap.String("topic", p.topic))
	return p.writer.Close()
}
