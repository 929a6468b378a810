package handler

import (
	"strconv"

	"github.com/TrongPhucX5/BizFlowProject/internal/apperr"
	"github.com/TrongPhucX5/BizFlowProject/internal/service"
	"github.com/TrongPhucX5/BizFlowProject/pkg/config"
	"github.com/TrongPhucX5/BizFlowProject/pkg/jwtutil"
	"github.com/TrongPhucX5/BizFlowProject/pkg/logger"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

var (
	jwtManager       *jwtutil.Manager
	orderService     *service.OrderService
	inventoryService *service.InventoryService
	debtService      *service.DebtService
	appConfig        *config.Config
)

// Init wires the handler package with its collaborators. Called once from
// main before routes are registered.
func Init(cfg *config.Config, jm *jwtutil.Manager, orders *service.OrderService, inventory *service.InventoryService, debts *service.DebtService) {
	appConfig = cfg
	jwtManager = jm
	orderService = orders
	inventoryService = inventory
	debtService = debts
}

// respondError translates a service error into the HTTP response exactly
// once. Cross-tenant attempts are logged distinctly but rendered to the
// client as not-found.
func respondError(c echo.Context, err error) error {
	log := logger.FromEcho(c)
	appErr := apperr.From(err)

	switch appErr.Code {
	case apperr.CodeInternal:
		log.Error("Request failed", zap.Error(appErr))
	case apperr.CodeCrossTenant:
		log.Warn("Cross-tenant access rejected", zap.String("detail", appErr.Message))
	default:
		log.Debug("Business rule rejection",
			zap.Int("code", appErr.Code),
			zap.String("detail", appErr.Message))
	}

	return c.JSON(appErr.HTTPStatus(), echo.Map{
		"error":     appErr.PublicMessage(),
		"code":      appErr.PublicCode(),
		"retryable": appErr.Retryable(),
	})
}

// pageParams reads ?page= and ?size= with sane bounds
func pageParams(c echo.Context) (page, size int) {
	page, _ = strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	size, _ = strconv.Atoi(c.QueryParam("size"))
	if size < 1 || size > 100 {
		size = 20
	}
	return page, size
}

// pagedResponse is the common list envelope
func pagedResponse(items interface{}, total int64, page, size int) echo.Map {
	return echo.Map{
		"items": items,
		"total": total,
		"page":  page,
		"size":  size,
	}
}
