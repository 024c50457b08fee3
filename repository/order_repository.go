package repository

import (
	"context"
	"errors"

	"commerce-service/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrOrderSettled is returned when a status transition is requested on an
// order that has already been paid successfully.
var ErrOrderSettled = errors.New("order already settled")

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindAll(ctx context.Context) ([]models.Order, error)
	Update(ctx context.Context, order *models.Order) error
	Delete(ctx context.Context, order *models.Order) error
	UpdateStatus(ctx context.Context, id uuid.UUID, next models.OrderStatus) error
}

// GormOrderRepository implements OrderRepository using GORM.
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository.
func NewGormOrderRepository(db *gorm.DB) OrderRepository {
	return &GormOrderRepository{db: db}
}

// Create inserts an order together with its line items.
func (r *GormOrderRepository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

// FindByID retrieves an order with its line items.
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// FindAll retrieves all orders with their line items.
func (r *GormOrderRepository) FindAll(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Order("created_at DESC").
		Find(&orders).Error
	return orders, err
}

// Update persists an order whose line items have been fully replaced. Items
// missing from order.Items are dropped in the same transaction.
func (r *GormOrderRepository) Update(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", order.ID).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		if err := tx.Omit("Items").Save(order).Error; err != nil {
			return err
		}
		if len(order.Items) > 0 {
			for i := range order.Items {
				order.Items[i].OrderID = order.ID
			}
			if err := tx.Create(&order.Items).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes an order and all of its line items in one transaction.
func (r *GormOrderRepository) Delete(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", order.ID).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Order{}, "id = ?", order.ID).Error
	})
}

// UpdateStatus moves an order to the next status. The order row is locked for
// the duration of the transaction so concurrent transitions serialize, and a
// settled order is never moved again.
func (r *GormOrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, next models.OrderStatus) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&order, "id = ?", id).Error; err != nil {
			return err
		}
		if !order.Status.CanTransitionTo(next) {
			return ErrOrderSettled
		}
		return tx.Model(&order).Update("status", next).Error
	})
}
