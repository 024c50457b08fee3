package repository

import (
	"context"

	"commerce-service/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PaymentRepository defines the interface for payment data access.
type PaymentRepository interface {
	// CreateWithOrderStatus persists the payment and moves its order to the
	// given status as one unit of work: if either write fails, neither is
	// retained. The order row is locked so concurrent payment attempts
	// against the same order serialize; ErrOrderSettled is returned when the
	// order was settled by the time the lock was acquired.
	CreateWithOrderStatus(ctx context.Context, payment *models.Payment, next models.OrderStatus) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	FindAll(ctx context.Context) ([]models.Payment, error)
}

// GormPaymentRepository implements PaymentRepository using GORM.
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository.
func NewGormPaymentRepository(db *gorm.DB) PaymentRepository {
	return &GormPaymentRepository{db: db}
}

func (r *GormPaymentRepository) CreateWithOrderStatus(ctx context.Context, payment *models.Payment, next models.OrderStatus) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&order, "id = ?", payment.OrderID).Error; err != nil {
			return err
		}
		if !order.Status.CanTransitionTo(next) {
			return ErrOrderSettled
		}
		if err := tx.Model(&order).Update("status", next).Error; err != nil {
			return err
		}
		return tx.Create(payment).Error
	})
}

func (r *GormPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).First(&payment, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *GormPaymentRepository) FindAll(ctx context.Context) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&payments).Error
	return payments, err
}
