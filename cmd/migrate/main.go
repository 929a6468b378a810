package main

import (
	"github.com/TrongPhucX5/BizFlowProject/internal/model"
	"github.com/TrongPhucX5/BizFlowProject/pkg/config"
	"github.com/TrongPhucX5/BizFlowProject/pkg/database"
	"github.com/TrongPhucX5/BizFlowProject/pkg/logger"
	"go.uber.org/zap"
)

// Standalone migration runner for deployments where the API process does not
// own schema changes.
func main() {
	cfg, err := config.Load("bizflow-migrate")
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	if err := logger.InitLogger(&logger.LogConfig{
		Level:       cfg.Log.Level,
		Environment: cfg.Server.Env,
		ServiceName: cfg.ServiceName,
	}); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()

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

	log.Info("Migrations completed")
}
