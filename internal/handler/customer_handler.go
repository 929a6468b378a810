package handler

import (
	"net/http"
	"strconv"

	"github.com/TrongPhucX5/BizFlowProject/internal/apperr"
	"github.com/TrongPhucX5/BizFlowProject/internal/model"
	"github.com/TrongPhucX5/BizFlowProject/internal/tenant"
	"github.com/TrongPhucX5/BizFlowProject/pkg/database"
	"github.com/TrongPhucX5/BizFlowProject/pkg/logger"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// CustomerRequest defines the structure for customer creation/update requests
type CustomerRequest struct {
	Name    string `json:"name" validate:"required"`
	Phone   string `json:"phone"`
	Email   string `json:"email" validate:"omitempty,email"`
	Address string `json:"address"`
	Notes   string `json:"notes"`
}

// ListCustomers handles retrieving the store's customers
func ListCustomers(c echo.Context) error {
	id, err := tenant.FromContext(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := tenant.Authorize(id.Role, tenant.ActionCustomerRead); err != nil {
		return respondError(c, err)
	}
	storeID, err := id.Store()
	if err != nil {
		return respondError(c, err)
	}

	query := database.GetDB().Model(&model.Customer{}).Where("store_id = ?", storeID)
	if keyword := c.QueryParam("q"); keyword != "" {
		query = query.Where("name ILIKE ? OR phone ILIKE ?", "%"+keyword+"%", "%"+keyword+"%")
	}

	page, size := pageParams(c)
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return respondError(c, apperr.Internal(err))
	}

	var customers []model.Customer
	if err := query.Order("id").Offset((page - 1) * size).Limit(size).Find(&customers).Error; err != nil {
		return respondError(c, apperr.Internal(err))
	}

	return c.JSON(http.StatusOK, pagedResponse(customers, total, page, size))
}

// GetCustomer handles retrieving a single customer by ID
func GetCustomer(c echo.Context) error {
	id, err := tenant.FromContext(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := tenant.Authorize(id.Role, tenant.ActionCustomerRead); err != nil {
		return respondError(c, err)
	}

	customer, err := loadStoreCustomer(c, id)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, customer)
}

// CreateCustomer handles creating a new customer
func CreateCustomer(c echo.Context) error {
	log := logger.FromEcho(c)

	id, err := tenant.FromContext(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := tenant.Authorize(id.Role, tenant.ActionCustomerWrite); err != nil {
		return respondError(c, err)
	}
	storeID, err := id.Store()
	if err != nil {
		return respondError(c, err)
	}

	var req CustomerRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data", "code": apperr.CodeValidation})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error(), "code": apperr.CodeValidation})
	}

	customer := model.Customer{
		StoreID: storeID,
		Name:    req.Name,
		Phone:   req.Phone,
		Email:   req.Email,
		Address: req.Address,
		Status:  model.CustomerActive,
		Notes:   req.Notes,
	}

	if err := database.GetDB().Create(&customer).Error; err != nil {
		log.Error("Failed to create customer", zap.Error(err))
		return respondError(c, apperr.Internal(err))
	}

	log.Info("Customer created",
		zap.Uint("customer_id", customer.ID),
		zap.String("name", customer.Name))
	return c.JSON(http.StatusCreated, customer)
}

// UpdateCustomer handles updating an existing customer
func UpdateCustomer(c echo.Context) error {
	log := logger.FromEcho(c)

	id, err := tenant.FromContext(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := tenant.Authorize(id.Role, tenant.ActionCustomerWrite); err != nil {
		return respondError(c, err)
	}

	customer, err := loadStoreCustomer(c, id)
	if err != nil {
		return respondError(c, err)
	}

	var req CustomerRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data", "code": apperr.CodeValidation})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error(), "code": apperr.CodeValidation})
	}

	customer.Name = req.Name
	customer.Phone = req.Phone
	customer.Email = req.Email
	customer.Address = req.Address
	customer.Notes = req.Notes

	if err := database.GetDB().Save(customer).Error; err != nil {
		log.Error("Failed to update customer", zap.Uint("customer_id", customer.ID), zap.Error(err))
		return respondError(c, apperr.Internal(err))
	}

	return c.JSON(http.StatusOK, customer)
}

// DeleteCustomer handles deleting a customer (soft delete). Customers with
// outstanding debts cannot be removed.
func DeleteCustomer(c echo.Context) error {
	log := logger.FromEcho(c)

	id, err := tenant.FromContext(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := tenant.Authorize(id.Role, tenant.ActionCustomerWrite); err != nil {
		return respondError(c, err)
	}

	customer, err := loadStoreCustomer(c, id)
	if err != nil {
		return respondError(c, err)
	}

	var open int64
	database.GetDB().Model(&model.Debt{}).
		Where("customer_id = ? AND status NOT IN ?", customer.ID,
			[]model.DebtStatus{model.DebtPaid, model.DebtCancelled}).
		Count(&open)
	if open > 0 {
		return c.JSON(http.StatusConflict, echo.Map{"error": "customer has outstanding debts", "code": apperr.CodeConflict})
	}

	if err := database.GetDB().Delete(customer).Error; err != nil {
		log.Error("Failed to delete customer", zap.Uint("customer_id", customer.ID), zap.Error(err))
		return respondError(c, apperr.Internal(err))
	}

	log.Info("Customer deleted", zap.Uint("customer_id", customer.ID))
	return c.JSON(http.StatusOK, echo.Map{"message": "customer deleted successfully"})
}

// loadStoreCustomer fetches :id and enforces store ownership
func loadStoreCustomer(c echo.Context, id *tenant.Identity) (*model.Customer, error) {
	storeID, err := id.Store()
	if err != nil {
		return nil, err
	}

	customerID, parseErr := strconv.ParseUint(c.Param("id"), 10, 64)
	if parseErr != nil {
		return nil, apperr.Validation("invalid customer id")
	}

	var customer model.Customer
	if err := database.GetDB().First(&customer, uint(customerID)).Error; err != nil {
		return nil, apperr.NotFound("customer", uint(customerID))
	}
	if customer.StoreID != storeID {
		return nil, apperr.CrossTenant("customer", uint(customerID))
	}
	return &customer, nil
}
