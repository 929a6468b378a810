package handler

import (
	"net/http"

	"github.com/TrongPhucX5/BizFlowProject/internal/apperr"
	"github.com/TrongPhucX5/BizFlowProject/internal/model"
	"github.com/TrongPhucX5/BizFlowProject/internal/tenant"
	"github.com/TrongPhucX5/BizFlowProject/pkg/database"
	"github.com/TrongPhucX5/BizFlowProject/pkg/logger"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// StoreRequest defines the structure for store profile updates
type StoreRequest struct {
	Name      string `json:"name" validate:"required"`
	OwnerName string `json:"owner_name"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
}

// GetMyStore handles retrieving the caller's store profile
func GetMyStore(c echo.Context) error {
	id, err := tenant.FromContext(c)
	if err != nil {
		return respondError(c, err)
	}
	storeID, err := id.Store()
	if err != nil {
		return respondError(c, err)
	}

	var store model.Store
	if err := database.GetDB().First(&store, storeID).Error; err != nil {
		return respondError(c, apperr.NotFound("store", storeID))
	}

	return c.JSON(http.StatusOK, store)
}

// UpdateMyStore handles updating the caller's store profile. Owners and
// admins only.
func UpdateMyStore(c echo.Context) error {
	log := logger.FromEcho(c)

	id, err := tenant.FromContext(c)
	if err != nil {
		return respondError(c, err)
	}
	if id.Role != model.RoleOwner && id.Role != model.RoleAdmin {
		return respondError(c, apperr.Forbidden("permission denied"))
	}
	storeID, err := id.Store()
	if err != nil {
		return respondError(c, err)
	}

	var req StoreRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data", "code": apperr.CodeValidation})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error(), "code": apperr.CodeValidation})
	}

	var store model.Store
	if err := database.GetDB().First(&store, storeID).Error; err != nil {
		return respondError(c, apperr.NotFound("store", storeID))
	}

	store.Name = req.Name
	store.OwnerName = req.OwnerName
	store.Phone = req.Phone
	store.Address = req.Address

	if err := database.GetDB().Save(&store).Error; err != nil {
		log.Error("Failed to update store", zap.Uint("store_id", storeID), zap.Error(err))
		return respondError(c, apperr.Internal(err))
	}

	return c.JSON(http.StatusOK, store)
}
