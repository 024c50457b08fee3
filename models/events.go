package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SettlementEvent carries a successfully validated payment from the payment
// flow to the transaction recorder. It is a transport payload only, delivered
// at-least-once with no ordering guarantee across orders.
type SettlementEvent struct {
	PaymentID uuid.UUID       `json:"payment_id"`
	OrderID   uuid.UUID       `json:"order_id"`
	UserID    uuid.UUID       `json:"user_id"`
	Amount    decimal.Decimal `json:"amount"`
	Timestamp time.Time       `json:"timestamp"`
}
