package routes

import (
	"commerce-service/controllers"

	"github.com/gin-gonic/gin"
)

// Register sets up all HTTP routes.
func Register(
	r *gin.Engine,
	oc *controllers.OrderController,
	pc *controllers.PaymentController,
	prc *controllers.ProductController,
	uc *controllers.UserController,
) {
	orders := r.Group("/orders")
	orders.POST("", oc.PlaceOrder)
	orders.GET("", oc.ListOrders)
	orders.GET("/:id", oc.GetOrder)
	orders.PUT("/:id", oc.UpdateOrder)
	orders.DELETE("/:id", oc.DeleteOrder)

	payments := r.Group("/payments")
	payments.POST("", pc.MakePayment)
	payments.GET("", pc.ListPayments)
	payments.GET("/:id", pc.GetPayment)

	products := r.Group("/products")
	products.POST("", prc.CreateProduct)
	products.GET("", prc.ListProducts)
	products.GET("/:id", prc.GetProduct)

	users := r.Group("/users")
	users.POST("", uc.CreateUser)
	users.GET("", uc.ListUsers)
	users.GET("/:id", uc.GetUser)
}
