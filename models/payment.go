package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStatus is the outcome of a payment attempt.
type PaymentStatus string

const (
	PaymentStatusSuccess PaymentStatus = "success"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// Payment records a single payment attempt against an order. A payment is
// immutable once persisted: either success with no error message, or failed
// with a non-empty one.
type Payment struct {
	ID             uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	UserID         uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	ReceivedAmount decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"received_amount"`
	Status         PaymentStatus   `gorm:"type:varchar(20);not null" json:"status"`
	ErrorMessage   string          `json:"error_message,omitempty"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}
