package services_test

import (
	"context"
	"errors"
	"testing"

	"commerce-service/models"
	"commerce-service/repository"
	"commerce-service/services"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// --- Mock payment repository ---

// mockPaymentRepo shares the order map so CreateWithOrderStatus mirrors the
// real unit of work: guarded transition plus payment insert, or neither.
type mockPaymentRepo struct {
	orders   *mockOrderRepo
	payments map[uuid.UUID]models.Payment
	failNext error
}

func newMockPaymentRepo(orders *mockOrderRepo) *mockPaymentRepo {
	return &mockPaymentRepo{orders: orders, payments: make(map[uuid.UUID]models.Payment)}
}

func (m *mockPaymentRepo) CreateWithOrderStatus(_ context.Context, payment *models.Payment, next models.OrderStatus) error {
	if m.failNext != nil {
		err := m.failNext
		m.failNext = nil
		return err
	}
	order, ok := m.orders.orders[payment.OrderID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if !order.Status.CanTransitionTo(next) {
		return repository.ErrOrderSettled
	}
	order.Status = next
	m.orders.orders[payment.OrderID] = order

	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	m.payments[payment.ID] = *payment
	return nil
}

func (m *mockPaymentRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Payment, error) {
	payment, ok := m.payments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := payment
	return &cp, nil
}

func (m *mockPaymentRepo) FindAll(_ context.Context) ([]models.Payment, error) {
	var all []models.Payment
	for _, p := range m.payments {
		all = append(all, p)
	}
	return all, nil
}

// --- Mock settlement publisher ---

type mockPublisher struct {
	published []models.SettlementEvent
	err       error
}

func (m *mockPublisher) PublishSettlement(_ context.Context, evt models.SettlementEvent) error {
	if m.err != nil {
		return m.err
	}
	m.published = append(m.published, evt)
	return nil
}

// --- Helpers ---

type paymentFixture struct {
	*orderFixture
	payments  *mockPaymentRepo
	publisher *mockPublisher
	svc       services.PaymentService
}

func newPaymentFixture() *paymentFixture {
	of := newOrderFixture()
	f := &paymentFixture{
		orderFixture: of,
		payments:     newMockPaymentRepo(of.orders),
		publisher:    &mockPublisher{},
	}
	logger, _ := zap.NewDevelopment()
	f.svc = services.NewPaymentService(f.payments, f.users, of.svc, f.publisher, logger)
	return f
}

// placeOrder creates an order totalling the given amount.
func (f *paymentFixture) placeOrder(t *testing.T, total string) uuid.UUID {
	t.Helper()
	productID := f.addProduct(total)
	placed, svcErr := f.orderFixture.svc.PlaceOrder(context.Background(), &models.OrderRequest{
		UserID: f.userID,
		Items:  []models.OrderItemRequest{{ProductID: productID, Quantity: 1}},
	})
	assert.Nil(t, svcErr)
	return placed.ID
}

func (f *paymentFixture) pay(orderID uuid.UUID, amount string) (*models.Payment, *services.ServiceError) {
	return f.svc.MakePayment(context.Background(), &models.PaymentRequest{
		OrderID: orderID,
		UserID:  f.userID,
		Amount:  decimal.RequireFromString(amount),
	})
}

// --- Tests ---

func TestPaymentService_MakePayment_ExactAmount(t *testing.T) {
	f := newPaymentFixture()
	orderID := f.placeOrder(t, "100.00")

	payment, svcErr := f.pay(orderID, "100.00")

	assert.Nil(t, svcErr)
	assert.Equal(t, models.PaymentStatusSuccess, payment.Status)
	assert.Empty(t, payment.ErrorMessage)

	order, _ := f.orders.FindByID(context.Background(), orderID)
	assert.Equal(t, models.OrderStatusSuccess, order.Status)

	// Exactly one settlement event, carrying the payment's fields.
	assert.Len(t, f.publisher.published, 1)
	evt := f.publisher.published[0]
	assert.Equal(t, payment.ID, evt.PaymentID)
	assert.Equal(t, orderID, evt.OrderID)
	assert.True(t, evt.Amount.Equal(decimal.RequireFromString("100.00")))

	// The cached view for the order was invalidated with the status change.
	assert.Nil(t, f.cache.byID[orderID])
}

func TestPaymentService_MakePayment_InsufficientAmount(t *testing.T) {
	f := newPaymentFixture()
	orderID := f.placeOrder(t, "100.00")

	payment, svcErr := f.pay(orderID, "50.00")

	assert.Nil(t, svcErr)
	assert.Equal(t, models.PaymentStatusFailed, payment.Status)
	assert.Equal(t, "insufficient amount", payment.ErrorMessage)

	order, _ := f.orders.FindByID(context.Background(), orderID)
	assert.Equal(t, models.OrderStatusFailed, order.Status)
	assert.Empty(t, f.publisher.published)
}

func TestPaymentService_MakePayment_ExcessAmount(t *testing.T) {
	f := newPaymentFixture()
	orderID := f.placeOrder(t, "100.00")

	payment, svcErr := f.pay(orderID, "150.00")

	assert.Nil(t, svcErr)
	assert.Equal(t, models.PaymentStatusFailed, payment.Status)
	assert.Equal(t, "amount exceeds order total", payment.ErrorMessage)

	order, _ := f.orders.FindByID(context.Background(), orderID)
	assert.Equal(t, models.OrderStatusFailed, order.Status)
	assert.Empty(t, f.publisher.published)
}

func TestPaymentService_MakePayment_AlreadySettled(t *testing.T) {
	f := newPaymentFixture()
	orderID := f.placeOrder(t, "100.00")
	_, _ = f.pay(orderID, "100.00")

	_, svcErr := f.pay(orderID, "100.00")

	assert.NotNil(t, svcErr)
	assert.Equal(t, 409, svcErr.StatusCode)
	assert.Equal(t, "payment already received", svcErr.Message)

	// No second payment row and no second settlement event.
	assert.Len(t, f.payments.payments, 1)
	assert.Len(t, f.publisher.published, 1)
}

func TestPaymentService_MakePayment_RetryAfterFailure(t *testing.T) {
	f := newPaymentFixture()
	orderID := f.placeOrder(t, "100.00")

	first, svcErr := f.pay(orderID, "50.00")
	assert.Nil(t, svcErr)
	assert.Equal(t, models.PaymentStatusFailed, first.Status)

	// Failed is not terminal: a corrected amount settles the order.
	second, svcErr := f.pay(orderID, "100.00")
	assert.Nil(t, svcErr)
	assert.Equal(t, models.PaymentStatusSuccess, second.Status)

	order, _ := f.orders.FindByID(context.Background(), orderID)
	assert.Equal(t, models.OrderStatusSuccess, order.Status)
	assert.Len(t, f.payments.payments, 2)
	assert.Len(t, f.publisher.published, 1)
}

func TestPaymentService_MakePayment_PublishFailureSwallowed(t *testing.T) {
	f := newPaymentFixture()
	orderID := f.placeOrder(t, "100.00")
	f.publisher.err = errors.New("broker unavailable")

	payment, svcErr := f.pay(orderID, "100.00")

	// The payment stays authoritative; the ledger entry is simply missing.
	assert.Nil(t, svcErr)
	assert.Equal(t, models.PaymentStatusSuccess, payment.Status)

	order, _ := f.orders.FindByID(context.Background(), orderID)
	assert.Equal(t, models.OrderStatusSuccess, order.Status)
	assert.Empty(t, f.publisher.published)
}

func TestPaymentService_MakePayment_OrderNotFound(t *testing.T) {
	f := newPaymentFixture()

	_, svcErr := f.pay(uuid.New(), "100.00")

	assert.NotNil(t, svcErr)
	assert.Equal(t, 404, svcErr.StatusCode)
	assert.Empty(t, f.payments.payments)
}

func TestPaymentService_MakePayment_UserNotFound(t *testing.T) {
	f := newPaymentFixture()
	orderID := f.placeOrder(t, "100.00")

	_, svcErr := f.svc.MakePayment(context.Background(), &models.PaymentRequest{
		OrderID: orderID,
		UserID:  uuid.New(),
		Amount:  decimal.RequireFromString("100.00"),
	})

	assert.NotNil(t, svcErr)
	assert.Equal(t, 404, svcErr.StatusCode)
}

func TestPaymentService_MakePayment_NonPositiveAmount(t *testing.T) {
	f := newPaymentFixture()
	orderID := f.placeOrder(t, "100.00")

	_, svcErr := f.pay(orderID, "0")

	assert.NotNil(t, svcErr)
	assert.Equal(t, 400, svcErr.StatusCode)
	assert.Empty(t, f.payments.payments)
}

func TestPaymentService_MakePayment_RaceLosesToSettledOrder(t *testing.T) {
	f := newPaymentFixture()
	orderID := f.placeOrder(t, "100.00")

	// Simulate a concurrent payment settling the order between the service's
	// pre-check and the unit of work.
	f.payments.failNext = repository.ErrOrderSettled

	_, svcErr := f.pay(orderID, "100.00")
	assert.NotNil(t, svcErr)
	assert.Equal(t, 409, svcErr.StatusCode)
	assert.Empty(t, f.payments.payments)
}

func TestPaymentService_GetPayment(t *testing.T) {
	f := newPaymentFixture()
	orderID := f.placeOrder(t, "100.00")
	payment, _ := f.pay(orderID, "100.00")

	fetched, svcErr := f.svc.GetPayment(context.Background(), payment.ID)
	assert.Nil(t, svcErr)
	assert.Equal(t, payment.ID, fetched.ID)

	_, svcErr = f.svc.GetPayment(context.Background(), uuid.New())
	assert.NotNil(t, svcErr)
	assert.Equal(t, 404, svcErr.StatusCode)
}
