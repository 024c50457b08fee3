package services

import (
	"context"
	"errors"

	"commerce-service/cache"
	"commerce-service/models"
	"commerce-service/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// OrderService owns the order lifecycle: totals, status transitions, and the
// cached read path. It is the only writer of order cache keys.
type OrderService interface {
	PlaceOrder(ctx context.Context, req *models.OrderRequest) (*models.OrderResponse, *ServiceError)
	GetOrder(ctx context.Context, id uuid.UUID) (*models.OrderResponse, *ServiceError)
	ListOrders(ctx context.Context) ([]models.OrderResponse, *ServiceError)
	UpdateOrder(ctx context.Context, id uuid.UUID, req *models.OrderRequest) (*models.OrderResponse, *ServiceError)
	DeleteOrder(ctx context.Context, id uuid.UUID) *ServiceError

	// GetOrderEntity returns the store-backed order, bypassing the cache.
	// Used by the payment flow, which must see current status.
	GetOrderEntity(ctx context.Context, id uuid.UUID) (*models.Order, *ServiceError)
	// UpdateOrderStatus persists a status transition and drops the cached
	// views for the order.
	UpdateOrderStatus(ctx context.Context, order *models.Order, next models.OrderStatus) *ServiceError
	// InvalidateOrder drops the cached views for the order. Every write path
	// to the order store must invalidate through here.
	InvalidateOrder(ctx context.Context, id uuid.UUID)
}

type orderServiceImpl struct {
	orders   repository.OrderRepository
	products repository.ProductRepository
	users    repository.UserRepository
	cache    cache.OrderCache
	logger   *zap.Logger
}

// NewOrderService creates a new OrderService.
func NewOrderService(
	orders repository.OrderRepository,
	products repository.ProductRepository,
	users repository.UserRepository,
	orderCache cache.OrderCache,
	logger *zap.Logger,
) OrderService {
	return &orderServiceImpl{
		orders:   orders,
		products: products,
		users:    users,
		cache:    orderCache,
		logger:   logger,
	}
}

// composeItems validates the request, resolves user and products, and builds
// the line items with the unit price captured now. Returns the order total.
func (s *orderServiceImpl) composeItems(ctx context.Context, req *models.OrderRequest) ([]models.OrderItem, decimal.Decimal, *ServiceError) {
	if len(req.Items) == 0 {
		return nil, decimal.Zero, &ServiceError{StatusCode: 400, Message: "at least one item is required"}
	}
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, decimal.Zero, &ServiceError{StatusCode: 400, Message: "item quantity must be positive"}
		}
	}

	if _, err := s.users.FindByID(ctx, req.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, decimal.Zero, &ServiceError{StatusCode: 404, Message: "user not found"}
		}
		s.logger.Error("Failed to fetch user", zap.String("user_id", req.UserID.String()), zap.Error(err))
		return nil, decimal.Zero, &ServiceError{StatusCode: 500, Message: "failed to fetch user"}
	}

	items := make([]models.OrderItem, 0, len(req.Items))
	total := decimal.Zero
	for _, item := range req.Items {
		product, err := s.products.FindByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, decimal.Zero, &ServiceError{StatusCode: 404, Message: "product not found"}
			}
			s.logger.Error("Failed to fetch product", zap.String("product_id", item.ProductID.String()), zap.Error(err))
			return nil, decimal.Zero, &ServiceError{StatusCode: 500, Message: "failed to fetch product"}
		}
		items = append(items, models.OrderItem{
			ProductID: product.ID,
			Quantity:  item.Quantity,
			Price:     product.Price,
		})
		total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return items, total, nil
}

// PlaceOrder computes the total, persists a pending order, and caches the
// rendered view.
func (s *orderServiceImpl) PlaceOrder(ctx context.Context, req *models.OrderRequest) (*models.OrderResponse, *ServiceError) {
	items, total, svcErr := s.composeItems(ctx, req)
	if svcErr != nil {
		return nil, svcErr
	}

	order := &models.Order{
		UserID: req.UserID,
		Items:  items,
		Amount: total,
		Status: models.OrderStatusPending,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		s.logger.Error("Failed to persist order", zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "failed to save order"}
	}

	s.logger.Info("Order placed",
		zap.String("order_id", order.ID.String()),
		zap.String("user_id", order.UserID.String()),
		zap.String("amount", order.Amount.String()),
	)

	view := models.RenderOrder(order)
	s.cacheOrder(ctx, view)
	s.evictAggregate(ctx)
	return view, nil
}

// GetOrder serves from cache when possible; on miss it loads from the store
// and populates the cache. Cache failures degrade to a store fetch.
func (s *orderServiceImpl) GetOrder(ctx context.Context, id uuid.UUID) (*models.OrderResponse, *ServiceError) {
	view, err := s.cache.GetOrder(ctx, id)
	if err != nil {
		s.logger.Warn("Order cache read failed", zap.String("order_id", id.String()), zap.Error(err))
	}
	if view != nil {
		return view, nil
	}

	order, svcErr := s.GetOrderEntity(ctx, id)
	if svcErr != nil {
		return nil, svcErr
	}
	view = models.RenderOrder(order)
	s.cacheOrder(ctx, view)
	return view, nil
}

// ListOrders is cache-backed as a single aggregate entry, invalidated on any
// write.
func (s *orderServiceImpl) ListOrders(ctx context.Context) ([]models.OrderResponse, *ServiceError) {
	views, err := s.cache.GetAllOrders(ctx)
	if err != nil {
		s.logger.Warn("Order cache read failed for aggregate entry", zap.Error(err))
	}
	if views != nil {
		return views, nil
	}

	orders, dbErr := s.orders.FindAll(ctx)
	if dbErr != nil {
		s.logger.Error("Failed to list orders", zap.Error(dbErr))
		return nil, &ServiceError{StatusCode: 500, Message: "failed to list orders"}
	}
	views = make([]models.OrderResponse, 0, len(orders))
	for i := range orders {
		views = append(views, *models.RenderOrder(&orders[i]))
	}
	if err := s.cache.SetAllOrders(ctx, views); err != nil {
		s.logger.Warn("Order cache write failed for aggregate entry", zap.Error(err))
	}
	return views, nil
}

// UpdateOrder replaces the order's line items wholesale and recomputes the
// total. A settled order cannot be modified.
func (s *orderServiceImpl) UpdateOrder(ctx context.Context, id uuid.UUID, req *models.OrderRequest) (*models.OrderResponse, *ServiceError) {
	order, svcErr := s.GetOrderEntity(ctx, id)
	if svcErr != nil {
		return nil, svcErr
	}
	if order.Status.Terminal() {
		return nil, &ServiceError{StatusCode: 409, Message: "cannot modify a settled order"}
	}

	items, total, svcErr := s.composeItems(ctx, req)
	if svcErr != nil {
		return nil, svcErr
	}

	order.UserID = req.UserID
	order.Items = items
	order.Amount = total
	if err := s.orders.Update(ctx, order); err != nil {
		s.logger.Error("Failed to update order", zap.String("order_id", id.String()), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "failed to update order"}
	}

	s.logger.Info("Order updated",
		zap.String("order_id", id.String()),
		zap.String("amount", total.String()),
	)

	// Refresh the per-order entry rather than evicting it; the aggregate is
	// simply dropped.
	view := models.RenderOrder(order)
	s.cacheOrder(ctx, view)
	s.evictAggregate(ctx)
	return view, nil
}

// DeleteOrder removes the order and its line items and evicts both cache
// entries.
func (s *orderServiceImpl) DeleteOrder(ctx context.Context, id uuid.UUID) *ServiceError {
	order, svcErr := s.GetOrderEntity(ctx, id)
	if svcErr != nil {
		return svcErr
	}
	if err := s.orders.Delete(ctx, order); err != nil {
		s.logger.Error("Failed to delete order", zap.String("order_id", id.String()), zap.Error(err))
		return &ServiceError{StatusCode: 500, Message: "failed to delete order"}
	}
	s.logger.Info("Order deleted", zap.String("order_id", id.String()))
	s.InvalidateOrder(ctx, id)
	return nil
}

func (s *orderServiceImpl) GetOrderEntity(ctx context.Context, id uuid.UUID) (*models.Order, *ServiceError) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ServiceError{StatusCode: 404, Message: "order not found"}
		}
		s.logger.Error("Failed to fetch order", zap.String("order_id", id.String()), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "failed to fetch order"}
	}
	return order, nil
}

func (s *orderServiceImpl) UpdateOrderStatus(ctx context.Context, order *models.Order, next models.OrderStatus) *ServiceError {
	if err := s.orders.UpdateStatus(ctx, order.ID, next); err != nil {
		if errors.Is(err, repository.ErrOrderSettled) {
			return &ServiceError{StatusCode: 409, Message: "order already settled"}
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &ServiceError{StatusCode: 404, Message: "order not found"}
		}
		s.logger.Error("Failed to update order status",
			zap.String("order_id", order.ID.String()),
			zap.String("next", string(next)),
			zap.Error(err),
		)
		return &ServiceError{StatusCode: 500, Message: "failed to update order status"}
	}
	order.Status = next
	s.InvalidateOrder(ctx, order.ID)
	return nil
}

func (s *orderServiceImpl) InvalidateOrder(ctx context.Context, id uuid.UUID) {
	if err := s.cache.EvictOrder(ctx, id); err != nil {
		s.logger.Warn("Order cache eviction failed", zap.String("order_id", id.String()), zap.Error(err))
	}
	s.evictAggregate(ctx)
}

func (s *orderServiceImpl) cacheOrder(ctx context.Context, view *models.OrderResponse) {
	if err := s.cache.SetOrder(ctx, view); err != nil {
		s.logger.Warn("Order cache write failed", zap.String("order_id", view.ID.String()), zap.Error(err))
	}
}

func (s *orderServiceImpl) evictAggregate(ctx context.Context) {
	if err := s.cache.EvictAllOrders(ctx); err != nil {
		s.logger.Warn("Order cache eviction failed for aggregate entry", zap.Error(err))
	}
}
