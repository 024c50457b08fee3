package services

import (
	"context"
	"encoding/json"
	"errors"

	"commerce-service/models"
	"commerce-service/repository"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// TransactionConsumer is a long-lived consumer of settlement events. Every
// delivered event is appended to the ledger as-is; redelivery produces a
// duplicate row, which the at-least-once design accepts. Malformed events are
// logged and dropped so they cannot poison the topic.
type TransactionConsumer struct {
	reader       *kafka.Reader
	transactions repository.TransactionRepository
	logger       *zap.Logger
}

// NewTransactionConsumer creates a consumer bound to the settlement topic.
func NewTransactionConsumer(brokers []string, topic, groupID string, transactions repository.TransactionRepository, logger *zap.Logger) *TransactionConsumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1e3,
		MaxBytes: 10e6,
	})
	logger.Info("Transaction consumer initialized",
		zap.String("topic", topic),
		zap.String("group", groupID),
		zap.Strings("brokers", brokers),
	)
	return &TransactionConsumer{reader: r, transactions: transactions, logger: logger}
}

// Start blocks reading settlement events until ctx is cancelled.
func (c *TransactionConsumer) Start(ctx context.Context) {
	c.logger.Info("Transaction consumer listening")
	for {
		m, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				c.logger.Info("Transaction consumer stopping")
				return
			}
			c.logger.Error("Transaction consumer read error", zap.Error(err))
			continue
		}
		if err := c.HandleSettlement(ctx, m.Value); err != nil {
			c.logger.Error("Failed to record settlement", zap.Error(err))
		}
	}
}

// HandleSettlement appends one ledger entry for a delivered settlement event.
// A payload that cannot be decoded is dropped with a nil return.
func (c *TransactionConsumer) HandleSettlement(ctx context.Context, payload []byte) error {
	var evt models.SettlementEvent
	if err := json.Unmarshal(payload, &evt); err != nil {
		c.logger.Error("Dropping malformed settlement event",
			zap.Error(err),
			zap.ByteString("payload", payload),
		)
		return nil
	}
	if evt.OrderID == uuid.Nil || evt.UserID == uuid.Nil {
		c.logger.Error("Dropping settlement event with missing references",
			zap.String("payment_id", evt.PaymentID.String()),
		)
		return nil
	}

	transaction := &models.Transaction{
		OrderID: evt.OrderID,
		UserID:  evt.UserID,
		Amount:  evt.Amount,
	}
	if err := c.transactions.Create(ctx, transaction); err != nil {
		return err
	}

	c.logger.Info("Transaction recorded",
		zap.String("transaction_id", transaction.ID.String()),
		zap.String("order_id", evt.OrderID.String()),
		zap.String("amount", evt.Amount.String()),
	)
	return nil
}

// Close closes the underlying reader.
func (c *TransactionConsumer) Close() error {
	return c.reader.Close()
}
