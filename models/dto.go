package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItemRequest is one requested line item.
type OrderItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1"`
}

// OrderRequest is the inbound payload for placing or updating an order.
type OrderRequest struct {
	UserID uuid.UUID          `json:"user_id" binding:"required"`
	Items  []OrderItemRequest `json:"items" binding:"required,dive"`
}

// PaymentRequest is the inbound payload for paying an order.
type PaymentRequest struct {
	OrderID uuid.UUID       `json:"order_id" binding:"required"`
	UserID  uuid.UUID       `json:"user_id" binding:"required"`
	Amount  decimal.Decimal `json:"amount" binding:"required"`
}

// OrderItemResponse is the rendered view of a line item.
type OrderItemResponse struct {
	ID        uuid.UUID       `json:"id"`
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// OrderResponse is a flattened, serializable snapshot of an order. It is the
// value cached and returned to callers, decoupled from store-backed entities.
type OrderResponse struct {
	ID        uuid.UUID           `json:"id"`
	UserID    uuid.UUID           `json:"user_id"`
	Items     []OrderItemResponse `json:"items"`
	Amount    decimal.Decimal     `json:"amount"`
	Status    OrderStatus         `json:"status"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// RenderOrder maps a store-backed order to its response snapshot.
func RenderOrder(order *Order) *OrderResponse {
	items := make([]OrderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderItemResponse{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}
	return &OrderResponse{
		ID:        order.ID,
		UserID:    order.UserID,
		Items:     items,
		Amount:    order.Amount,
		Status:    order.Status,
		CreatedAt: order.CreatedAt,
		UpdatedAt: order.UpdatedAt,
	}
}
