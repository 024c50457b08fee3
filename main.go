package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"commerce-service/cache"
	"commerce-service/controllers"
	"commerce-service/database"
	"commerce-service/kafka"
	"commerce-service/models"
	"commerce-service/repository"
	"commerce-service/routes"
	"commerce-service/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()

	cfg := LoadConfig()

	// --- Database ---
	db, err := database.ConnectPostgres(logger,
		&models.User{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
		&models.Payment{},
		&models.Transaction{},
	)
	if err != nil {
		logger.Fatal("DB connection failed", zap.Error(err))
	}
	defer database.Close(db)

	// --- Redis ---
	redisClient, err := database.NewRedisClient(cfg.RedisURL)
	if err != nil {
		logger.Fatal("Redis connection failed", zap.Error(err))
	}
	defer redisClient.Close()
	orderCache := cache.NewRedisOrderCache(redisClient, cfg.OrderCacheTTL)

	// --- Kafka ---
	producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.SettlementTopic, logger)
	defer producer.Close()

	// --- Repositories ---
	orderRepo := repository.NewGormOrderRepository(db)
	paymentRepo := repository.NewGormPaymentRepository(db)
	transactionRepo := repository.NewGormTransactionRepository(db)
	productRepo := repository.NewGormProductRepository(db)
	userRepo := repository.NewGormUserRepository(db)

	// --- Services ---
	orderService := services.NewOrderService(orderRepo, productRepo, userRepo, orderCache, logger)
	paymentService := services.NewPaymentService(paymentRepo, userRepo, orderService, producer, logger)
	productService := services.NewProductService(productRepo, logger)
	userService := services.NewUserService(userRepo, logger)

	// --- Settlement consumer ---
	consumerCtx, stopConsumer := context.WithCancel(context.Background())
	consumer := services.NewTransactionConsumer(cfg.KafkaBrokers, cfg.SettlementTopic, cfg.ConsumerGroupID, transactionRepo, logger)
	go consumer.Start(consumerCtx)

	// --- HTTP router ---
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	// Structured HTTP request logging
	r.Use(func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		}
		switch {
		case status >= 500:
			logger.Error("http_request", fields...)
		case status >= 400:
			logger.Warn("http_request", fields...)
		default:
			logger.Info("http_request", fields...)
		}
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	routes.Register(r,
		controllers.NewOrderController(orderService),
		controllers.NewPaymentController(paymentService),
		controllers.NewProductController(productService),
		controllers.NewUserController(userService),
	)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		logger.Info("Server starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down")

	stopConsumer()
	if err := consumer.Close(); err != nil {
		logger.Warn("Consumer close failed", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}
	logger.Info("Server stopped")
}
