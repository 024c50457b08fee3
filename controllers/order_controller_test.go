package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"commerce-service/controllers"
	"commerce-service/models"
	"commerce-service/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// --- Mock OrderService ---

type mockOrderService struct {
	placeFn  func(ctx context.Context, req *models.OrderRequest) (*models.OrderResponse, *services.ServiceError)
	getFn    func(ctx context.Context, id uuid.UUID) (*models.OrderResponse, *services.ServiceError)
	listFn   func(ctx context.Context) ([]models.OrderResponse, *services.ServiceError)
	updateFn func(ctx context.Context, id uuid.UUID, req *models.OrderRequest) (*models.OrderResponse, *services.ServiceError)
	deleteFn func(ctx context.Context, id uuid.UUID) *services.ServiceError
}

func (m *mockOrderService) PlaceOrder(ctx context.Context, req *models.OrderRequest) (*models.OrderResponse, *services.ServiceError) {
	return m.placeFn(ctx, req)
}
func (m *mockOrderService) GetOrder(ctx context.Context, id uuid.UUID) (*models.OrderResponse, *services.ServiceError) {
	return m.getFn(ctx, id)
}
func (m *mockOrderService) ListOrders(ctx context.Context) ([]models.OrderResponse, *services.ServiceError) {
	return m.listFn(ctx)
}
func (m *mockOrderService) UpdateOrder(ctx context.Context, id uuid.UUID, req *models.OrderRequest) (*models.OrderResponse, *services.ServiceError) {
	return m.updateFn(ctx, id, req)
}
func (m *mockOrderService) DeleteOrder(ctx context.Context, id uuid.UUID) *services.ServiceError {
	return m.deleteFn(ctx, id)
}
func (m *mockOrderService) GetOrderEntity(context.Context, uuid.UUID) (*models.Order, *services.ServiceError) {
	return nil, &services.ServiceError{StatusCode: 500, Message: "not implemented"}
}
func (m *mockOrderService) UpdateOrderStatus(context.Context, *models.Order, models.OrderStatus) *services.ServiceError {
	return nil
}
func (m *mockOrderService) InvalidateOrder(context.Context, uuid.UUID) {}

func setupOrderRouter(svc services.OrderService) *gin.Engine {
	r := gin.New()
	oc := controllers.NewOrderController(svc)
	r.POST("/orders", oc.PlaceOrder)
	r.GET("/orders", oc.ListOrders)
	r.GET("/orders/:id", oc.GetOrder)
	r.PUT("/orders/:id", oc.UpdateOrder)
	r.DELETE("/orders/:id", oc.DeleteOrder)
	return r
}

// --- Tests ---

func TestOrderController_PlaceOrder_Created(t *testing.T) {
	view := &models.OrderResponse{
		ID:     uuid.New(),
		UserID: uuid.New(),
		Amount: decimal.RequireFromString("61.00"),
		Status: models.OrderStatusPending,
	}
	r := setupOrderRouter(&mockOrderService{
		placeFn: func(_ context.Context, _ *models.OrderRequest) (*models.OrderResponse, *services.ServiceError) {
			return view, nil
		},
	})

	body, _ := json.Marshal(models.OrderRequest{
		UserID: view.UserID,
		Items:  []models.OrderItemRequest{{ProductID: uuid.New(), Quantity: 2}},
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	var got models.OrderResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, view.ID, got.ID)
}

func TestOrderController_PlaceOrder_InvalidBody(t *testing.T) {
	r := setupOrderRouter(&mockOrderService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewReader([]byte("{")))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOrderController_GetOrder_BadID(t *testing.T) {
	r := setupOrderRouter(&mockOrderService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/orders/not-a-uuid", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOrderController_GetOrder_NotFound(t *testing.T) {
	r := setupOrderRouter(&mockOrderService{
		getFn: func(_ context.Context, _ uuid.UUID) (*models.OrderResponse, *services.ServiceError) {
			return nil, &services.ServiceError{StatusCode: 404, Message: "order not found"}
		},
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/orders/"+uuid.NewString(), nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestOrderController_UpdateOrder_SettledConflict(t *testing.T) {
	r := setupOrderRouter(&mockOrderService{
		updateFn: func(_ context.Context, _ uuid.UUID, _ *models.OrderRequest) (*models.OrderResponse, *services.ServiceError) {
			return nil, &services.ServiceError{StatusCode: 409, Message: "cannot modify a settled order"}
		},
	})

	body, _ := json.Marshal(models.OrderRequest{
		UserID: uuid.New(),
		Items:  []models.OrderItemRequest{{ProductID: uuid.New(), Quantity: 1}},
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/orders/"+uuid.NewString(), bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestOrderController_DeleteOrder_NoContent(t *testing.T) {
	r := setupOrderRouter(&mockOrderService{
		deleteFn: func(_ context.Context, _ uuid.UUID) *services.ServiceError {
			return nil
		},
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/orders/"+uuid.NewString(), nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
}
