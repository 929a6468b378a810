package handler

import (
	"net/http"
	"strconv"

	"github.com/TrongPhucX5/BizFlowProject/internal/apperr"
	"github.com/TrongPhucX5/BizFlowProject/internal/service"
	"github.com/TrongPhucX5/BizFlowProject/internal/tenant"
	"github.com/TrongPhucX5/BizFlowProject/pkg/logger"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// CreateOrder handles POST /api/orders. The store and acting employee come
// from the verified identity, never from the body.
func CreateOrder(c echo.Context) error {
	log := logger.FromEcho(c)

	id, err := tenant.FromContext(c)
	if err != nil {
		return respondError(c, err)
	}

	var req service.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid order request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data", "code": apperr.CodeValidation})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error(), "code": apperr.CodeValidation})
	}

	ctx := logger.WithContext(c.Request().Context(), log)
	order, err := orderService.Create(ctx, id, &req)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusCreated, order)
}

// ListOrders handles GET /api/orders
func ListOrders(c echo.Context) error {
	id, err := tenant.FromContext(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := tenant.Authorize(id.Role, tenant.ActionOrderRead); err != nil {
		return respondError(c, err)
	}

	page, size := pageParams(c)
	orders, total, err := orderService.List(id, page, size)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, pagedResponse(orders, total, page, size))
}

// GetOrder handles GET /api/orders/:id
func GetOrder(c echo.Context) error {
	id, err := tenant.FromContext(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := tenant.Authorize(id.Role, tenant.ActionOrderRead); err != nil {
		return respondError(c, err)
	}

	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id", "code": apperr.CodeValidation})
	}

	order, svcErr := orderService.Get(id, uint(orderID))
	if svcErr != nil {
		return respondError(c, svcErr)
	}

	return c.JSON(http.StatusOK, order)
}
