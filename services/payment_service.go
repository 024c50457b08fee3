package services

import (
	"context"
	"errors"
	"time"

	"commerce-service/kafka"
	"commerce-service/models"
	"commerce-service/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PaymentService validates payments against order totals and hands settled
// payments off to the transaction recorder. It never mutates order status
// fields directly; transitions go through the order repository's guarded
// unit of work.
type PaymentService interface {
	MakePayment(ctx context.Context, req *models.PaymentRequest) (*models.Payment, *ServiceError)
	GetPayment(ctx context.Context, id uuid.UUID) (*models.Payment, *ServiceError)
	ListPayments(ctx context.Context) ([]models.Payment, *ServiceError)
}

type paymentServiceImpl struct {
	payments  repository.PaymentRepository
	users     repository.UserRepository
	orders    OrderService
	publisher kafka.SettlementPublisher
	logger    *zap.Logger
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(
	payments repository.PaymentRepository,
	users repository.UserRepository,
	orders OrderService,
	publisher kafka.SettlementPublisher,
	logger *zap.Logger,
) PaymentService {
	return &paymentServiceImpl{
		payments:  payments,
		users:     users,
		orders:    orders,
		publisher: publisher,
		logger:    logger,
	}
}

// MakePayment compares the received amount against the order total and
// records the outcome. The payment row and the order status move in one unit
// of work; on success a settlement event is published best-effort.
func (s *paymentServiceImpl) MakePayment(ctx context.Context, req *models.PaymentRequest) (*models.Payment, *ServiceError) {
	if !req.Amount.IsPositive() {
		return nil, &ServiceError{StatusCode: 400, Message: "payment amount must be positive"}
	}

	order, svcErr := s.orders.GetOrderEntity(ctx, req.OrderID)
	if svcErr != nil {
		return nil, svcErr
	}
	if _, err := s.users.FindByID(ctx, req.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ServiceError{StatusCode: 404, Message: "user not found"}
		}
		s.logger.Error("Failed to fetch user", zap.String("user_id", req.UserID.String()), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "failed to fetch user"}
	}

	if order.Status.Terminal() {
		return nil, &ServiceError{StatusCode: 409, Message: "payment already received"}
	}

	payment := &models.Payment{
		OrderID:        order.ID,
		UserID:         req.UserID,
		ReceivedAmount: req.Amount,
	}

	var next models.OrderStatus
	switch req.Amount.Cmp(order.Amount) {
	case -1:
		payment.Status = models.PaymentStatusFailed
		payment.ErrorMessage = "insufficient amount"
		next = models.OrderStatusFailed
		s.logger.Info("Payment failed: insufficient amount",
			zap.String("order_id", order.ID.String()),
			zap.String("received", req.Amount.String()),
			zap.String("expected", order.Amount.String()),
		)
	case 1:
		payment.Status = models.PaymentStatusFailed
		payment.ErrorMessage = "amount exceeds order total"
		next = models.OrderStatusFailed
		s.logger.Info("Payment failed: amount exceeds order total",
			zap.String("order_id", order.ID.String()),
			zap.String("received", req.Amount.String()),
			zap.String("expected", order.Amount.String()),
		)
	default:
		payment.Status = models.PaymentStatusSuccess
		next = models.OrderStatusSuccess
		s.logger.Info("Payment processed successfully",
			zap.String("order_id", order.ID.String()),
			zap.String("amount", req.Amount.String()),
		)
	}

	if err := s.payments.CreateWithOrderStatus(ctx, payment, next); err != nil {
		if errors.Is(err, repository.ErrOrderSettled) {
			return nil, &ServiceError{StatusCode: 409, Message: "payment already received"}
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ServiceError{StatusCode: 404, Message: "order not found"}
		}
		s.logger.Error("Failed to persist payment", zap.String("order_id", order.ID.String()), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "failed to save payment"}
	}

	// The stored status changed; drop any cached rendered views.
	s.orders.InvalidateOrder(ctx, order.ID)

	if payment.Status == models.PaymentStatusSuccess {
		s.publishSettlement(ctx, payment)
	}

	return payment, nil
}

// publishSettlement is best-effort: a publish failure is logged and swallowed.
// The payment is authoritative; the ledger entry is eventual.
func (s *paymentServiceImpl) publishSettlement(ctx context.Context, payment *models.Payment) {
	evt := models.SettlementEvent{
		PaymentID: payment.ID,
		OrderID:   payment.OrderID,
		UserID:    payment.UserID,
		Amount:    payment.ReceivedAmount,
		Timestamp: time.Now().UTC(),
	}
	if err := s.publisher.PublishSettlement(ctx, evt); err != nil {
		s.logger.Error("Settlement publish failed",
			zap.String("payment_id", payment.ID.String()),
			zap.String("order_id", payment.OrderID.String()),
			zap.Error(err),
		)
	}
}

func (s *paymentServiceImpl) GetPayment(ctx context.Context, id uuid.UUID) (*models.Payment, *ServiceError) {
	payment, err := s.payments.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ServiceError{StatusCode: 404, Message: "payment not found"}
		}
		s.logger.Error("Failed to fetch payment", zap.String("payment_id", id.String()), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "failed to fetch payment"}
	}
	return payment, nil
}

func (s *paymentServiceImpl) ListPayments(ctx context.Context) ([]models.Payment, *ServiceError) {
	payments, err := s.payments.FindAll(ctx)
	if err != nil {
		s.logger.Error("Failed to list payments", zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "failed to list payments"}
	}
	return payments, nil
}
