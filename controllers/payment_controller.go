package controllers

import (
	"net/http"

	"commerce-service/models"
	"commerce-service/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PaymentController handles HTTP requests for payment operations.
type PaymentController struct {
	paymentService services.PaymentService
}

// NewPaymentController creates a new PaymentController.
func NewPaymentController(paymentService services.PaymentService) *PaymentController {
	return &PaymentController{paymentService: paymentService}
}

// MakePayment handles POST /payments.
func (pc *PaymentController) MakePayment(ctx *gin.Context) {
	var req models.PaymentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	payment, svcErr := pc.paymentService.MakePayment(ctx.Request.Context(), &req)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusCreated, payment)
}

// GetPayment handles GET /payments/:id.
func (pc *PaymentController) GetPayment(ctx *gin.Context) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment id"})
		return
	}

	payment, svcErr := pc.paymentService.GetPayment(ctx.Request.Context(), id)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, payment)
}

// ListPayments handles GET /payments.
func (pc *PaymentController) ListPayments(ctx *gin.Context) {
	payments, svcErr := pc.paymentService.ListPayments(ctx.Request.Context())
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, payments)
}
