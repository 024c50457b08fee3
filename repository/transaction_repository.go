package repository

import (
	"context"

	"commerce-service/models"

	"gorm.io/gorm"
)

// TransactionRepository is the append-only ledger store. Ledger rows are never
// updated or deleted.
type TransactionRepository interface {
	Create(ctx context.Context, transaction *models.Transaction) error
	FindAll(ctx context.Context) ([]models.Transaction, error)
}

// GormTransactionRepository implements TransactionRepository using GORM.
type GormTransactionRepository struct {
	db *gorm.DB
}

// NewGormTransactionRepository creates a new GormTransactionRepository.
func NewGormTransactionRepository(db *gorm.DB) TransactionRepository {
	return &GormTransactionRepository{db: db}
}

func (r *GormTransactionRepository) Create(ctx context.Context, transaction *models.Transaction) error {
	return r.db.WithContext(ctx).Create(transaction).Error
}

func (r *GormTransactionRepository) FindAll(ctx context.Context) ([]models.Transaction, error) {
	var transactions []models.Transaction
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&transactions).Error
	return transactions, err
}
