package main

import (
	"context"

	"github.com/TrongPhucX5/BizFlowProject/internal/handler"
	"github.com/TrongPhucX5/BizFlowProject/internal/middleware"
	"github.com/TrongPhucX5/BizFlowProject/internal/model"
	"github.com/TrongPhucX5/BizFlowProject/internal/notify"
	"github.com/TrongPhucX5/BizFlowProject/internal/service"
	"github.com/TrongPhucX5/BizFlowProject/pkg/config"
	"github.com/TrongPhucX5/BizFlowProject/pkg/database"
	"github.com/TrongPhucX5/BizFlowProject/pkg/jwtutil"
	"github.com/TrongPhucX5/BizFlowProject/pkg/logger"
	"github.com/TrongPhucX5/BizFlowProject/prometheus"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// RequestValidator adapts go-playground/validator to echo's Validator
// interface
type RequestValidator struct {
	validate *validator.Validate
}

func (v *RequestValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load("bizflow-api")
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	if err := logger.InitLogger(&logger.LogConfig{
		Level:       cfg.Log.Level,
		Environment: cfg.Server.Env,
		ServiceName: cfg.ServiceName,
	}); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	log.Info("Starting BizFlow API...", cfg.LogConfig()...)

	// Initialize database
	if _, err := database.InitDB(&cfg.DB); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	if err := database.MigrateModels(
		&model.Store{},
		&model.User{},
		&model.Customer{},
		&model.Product{},
		&model.Inventory{},
		&model.StockMovement{},
		&model.Order{},
		&model.OrderItem{},
		&model.Debt{},
	); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}
	log.Info("Database connection established and migrations completed")

	// Initialize Prometheus metrics
	prometheus.InitMetrics(cfg)
	log.Info("Prometheus metrics initialized")

	// Order notifications, disabled unless a Pub/Sub project is configured
	sender, err := notify.FromConfig(context.Background(), &cfg.PubSub)
	if err != nil {
		log.Fatal("Failed to initialize notification sender", zap.Error(err))
	}

	// Wire services and handlers
	jwtManager := jwtutil.NewManager(&cfg.JWT)
	inventoryService := service.NewInventoryService(database.GetDB())
	debtService := service.NewDebtService(database.GetDB(), cfg.Order.DebtGraceDays)
	orderService := service.NewOrderService(database.GetDB(), inventoryService, debtService, sender)
	handler.Init(cfg, jwtManager, orderService, inventoryService, debtService)

	loadUser := func(username string) (*model.User, error) {
		var user model.User
		if err := database.GetDB().Where("username = ?", username).First(&user).Error; err != nil {
			return nil, err
		}
		return &user, nil
	}

	// Initialize Echo framework
	e := echo.New()
	e.HideBanner = true
	e.Validator = &RequestValidator{validate: validator.New()}

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware)
	e.Use(logger.Middleware())
	e.Use(middleware.MetricsMiddleware)
	e.Use(middleware.AuthGate(jwtManager, loadUser))

	// Public routes - no authentication required
	e.GET("/health", handler.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	auth := e.Group("/auth")
	auth.POST("/register", handler.Register)
	auth.POST("/login", handler.Login)
	auth.POST("/refresh", handler.Refresh)

	// Protected routes - all require a resolved identity
	api := e.Group("/api")
	api.Use(middleware.RequireAuth)

	api.GET("/store", handler.GetMyStore)
	api.PUT("/store", handler.UpdateMyStore)

	users := api.Group("/users")
	users.POST("", handler.CreateUser)
	users.GET("", handler.ListUsers)

	products := api.Group("/products")
	products.GET("", handler.ListProducts)
	products.POST("", handler.CreateProduct)
	products.GET("/:id", handler.GetProduct)
	products.PUT("/:id", handler.UpdateProduct)
	products.DELETE("/:id", handler.DeleteProduct)
	products.GET("/:id/inventory", handler.GetInventory)
	products.GET("/:id/movements", handler.ListMovements)

	customers := api.Group("/customers")
	customers.GET("", handler.ListCustomers)
	customers.POST("", handler.CreateCustomer)
	customers.GET("/:id", handler.GetCustomer)
	customers.PUT("/:id", handler.UpdateCustomer)
	customers.DELETE("/:id", handler.DeleteCustomer)
	customers.GET("/:id/debts", handler.ListCustomerDebts)

	inventory := api.Group("/inventory")
	inventory.GET("", handler.ListInventory)
	inventory.POST("/stock-in", handler.StockIn)
	inventory.POST("/adjust", handler.AdjustStock)

	orders := api.Group("/orders")
	orders.POST("", handler.CreateOrder)
	orders.GET("", handler.ListOrders)
	orders.GET("/:id", handler.GetOrder)

	debts := api.Group("/debts")
	debts.GET("", handler.ListDebts)
	debts.GET("/:id", handler.GetDebt)
	debts.POST("/:id/payments", handler.PayDebt)

	// Start server
	port := cfg.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}
