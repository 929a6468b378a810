package handler

import (
	"net/http"

	"github.com/TrongPhucX5/BizFlowProject/pkg/database"
	"github.com/labstack/echo/v4"
)

// Health reports process liveness and database connectivity
func Health(c echo.Context) error {
	dbStatus := "up"
	if sqlDB, err := database.GetDB().DB(); err != nil || sqlDB.Ping() != nil {
		dbStatus = "down"
	}

	status := http.StatusOK
	if dbStatus != "up" {
		status = http.StatusServiceUnavailable
	}

	return c.JSON(status, echo.Map{
		"status":   "ok",
		"database": dbStatus,
		"service":  appConfig.ServiceName,
	})
}
