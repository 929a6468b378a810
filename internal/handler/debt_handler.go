package handler

import (
	"net/http"
	"strconv"

	"github.com/TrongPhucX5/BizFlowProject/internal/apperr"
	"github.com/TrongPhucX5/BizFlowProject/internal/tenant"
	"github.com/TrongPhucX5/BizFlowProject/pkg/logger"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PayDebtRequest defines the structure for recording a debt payment
type PayDebtRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"required"`
}

// ListDebts handles retrieving the store's debts.
// ?unpaid=true limits to unsettled debts, ?overdue=true to overdue ones.
func ListDebts(c echo.Context) error {
	id, err := tenant.FromContext(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := tenant.Authorize(id.Role, tenant.ActionDebtRead); err != nil {
		return respondError(c, err)
	}

	unpaidOnly, _ := strconv.ParseBool(c.QueryParam("unpaid"))
	overdueOnly, _ := strconv.ParseBool(c.QueryParam("overdue"))

	page, size := pageParams(c)
	debts, total, err := debtService.List(id, unpaidOnly, overdueOnly, page, size)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, pagedResponse(debts, total, page, size))
}

// GetDebt handles retrieving a single debt by ID
func GetDebt(c echo.Context) error {
	id, err := tenant.FromContext(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := tenant.Authorize(id.Role, tenant.ActionDebtRead); err != nil {
		return respondError(c, err)
	}

	debtID, parseErr := strconv.ParseUint(c.Param("id"), 10, 64)
	if parseErr != nil {
		return respondError(c, apperr.Validation("invalid debt id"))
	}

	debt, err := debtService.Get(id, uint(debtID))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, debt)
}

// ListCustomerDebts handles retrieving one customer's debts together with
// their outstanding balance
func ListCustomerDebts(c echo.Context) error {
	id, err := tenant.FromContext(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := tenant.Authorize(id.Role, tenant.ActionDebtRead); err != nil {
		return respondError(c, err)
	}

	customer, err := loadStoreCustomer(c, id)
	if err != nil {
		return respondError(c, err)
	}

	page, size := pageParams(c)
	debts, total, err := debtService.ListByCustomer(id, customer.ID, page, size)
	if err != nil {
		return respondError(c, err)
	}

	outstanding, err := debtService.Outstanding(id, customer.ID)
	if err != nil {
		return respondError(c, err)
	}

	resp := pagedResponse(debts, total, page, size)
	resp["outstanding"] = outstanding
	return c.JSON(http.StatusOK, resp)
}

// PayDebt handles recording a payment against a debt
func PayDebt(c echo.Context) error {
	log := logger.FromEcho(c)

	id, err := tenant.FromContext(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := tenant.Authorize(id.Role, tenant.ActionDebtPay); err != nil {
		return respondError(c, err)
	}

	debtID, parseErr := strconv.ParseUint(c.Param("id"), 10, 64)
	if parseErr != nil {
		return respondError(c, apperr.Validation("invalid debt id"))
	}

	var req PayDebtRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data", "code": apperr.CodeValidation})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error(), "code": apperr.CodeValidation})
	}

	debt, err := debtService.Pay(id, uint(debtID), req.Amount)
	if err != nil {
		return respondError(c, err)
	}

	log.Info("Debt payment recorded",
		zap.Uint("debt_id", debt.ID),
		zap.String("amount", req.Amount.String()),
		zap.String("status", string(debt.Status)))
	return c.JSON(http.StatusOK, debt)
}
