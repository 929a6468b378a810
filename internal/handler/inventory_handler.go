package handler

import (
	"net/http"

	"github.com/TrongPhucX5/BizFlowProject/internal/apperr"
	"github.com/TrongPhucX5/BizFlowProject/internal/model"
	"github.com/TrongPhucX5/BizFlowProject/internal/service"
	"github.com/TrongPhucX5/BizFlowProject/internal/tenant"
	"github.com/TrongPhucX5/BizFlowProject/pkg/database"
	"github.com/TrongPhucX5/BizFlowProject/pkg/logger"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// StockInRequest defines the structure for receiving stock
type StockInRequest struct {
	ProductID    uint   `json:"product_id" validate:"required"`
	Quantity     int    `json:"quantity" validate:"required,gt=0"`
	SupplierName string `json:"supplier_name"`
	Notes        string `json:"notes"`
}

// AdjustStockRequest defines the structure for a stock-take correction
type AdjustStockRequest struct {
	ProductID   uint   `json:"product_id" validate:"required"`
	NewQuantity *int   `json:"new_quantity" validate:"required,gte=0"`
	Reason      string `json:"reason" validate:"required"`
}

// ListInventory handles retrieving the store's inventory records
func ListInventory(c echo.Context) error {
	id, err := tenant.FromContext(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := tenant.Authorize(id.Role, tenant.ActionInventoryRead); err != nil {
		return respondError(c, err)
	}
	storeID, err := id.Store()
	if err != nil {
		return respondError(c, err)
	}

	page, size := pageParams(c)
	records, total, err := inventoryService.List(storeID, page, size)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, pagedResponse(records, total, page, size))
}

// GetInventory handles retrieving the inventory record for one product
func GetInventory(c echo.Context) error {
	id, err := tenant.FromContext(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := tenant.Authorize(id.Role, tenant.ActionInventoryRead); err != nil {
		return respondError(c, err)
	}

	product, err := loadStoreProduct(c, id)
	if err != nil {
		return respondError(c, err)
	}

	inv, err := inventoryService.Get(product.StoreID, product.ID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, inv)
}

// StockIn handles receiving stock from a supplier
func StockIn(c echo.Context) error {
	log := logger.FromEcho(c)

	id, err := tenant.FromContext(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := tenant.Authorize(id.Role, tenant.ActionInventoryStockIn); err != nil {
		return respondError(c, err)
	}
	storeID, err := id.Store()
	if err != nil {
		return respondError(c, err)
	}

	var req StockInRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data", "code": apperr.CodeValidation})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error(), "code": apperr.CodeValidation})
	}

	product, err := loadOwnedProduct(storeID, req.ProductID)
	if err != nil {
		return respondError(c, err)
	}

	var inv *model.Inventory
	txErr := database.GetDB().Transaction(func(tx *gorm.DB) error {
		updated, incErr := inventoryService.Increment(tx, id.Username, product, req.Quantity,
			model.MovementStockIn, service.MovementRef{}, req.SupplierName, req.Notes)
		if incErr != nil {
			return incErr
		}
		inv = updated
		return nil
	})
	if txErr != nil {
		return respondError(c, txErr)
	}

	log.Info("Stock received",
		zap.Uint("product_id", product.ID),
		zap.Int("quantity", req.Quantity),
		zap.Int("new_quantity", inv.Quantity))
	return c.JSON(http.StatusOK, inv)
}

// AdjustStock handles a stock-take correction to an absolute quantity
func AdjustStock(c echo.Context) error {
	log := logger.FromEcho(c)

	id, err := tenant.FromContext(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := tenant.Authorize(id.Role, tenant.ActionInventoryAdjust); err != nil {
		return respondError(c, err)
	}
	storeID, err := id.Store()
	if err != nil {
		return respondError(c, err)
	}

	var req AdjustStockRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data", "code": apperr.CodeValidation})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error(), "code": apperr.CodeValidation})
	}

	product, err := loadOwnedProduct(storeID, req.ProductID)
	if err != nil {
		return respondError(c, err)
	}

	var inv *model.Inventory
	txErr := database.GetDB().Transaction(func(tx *gorm.DB) error {
		updated, adjErr := inventoryService.Adjust(tx, id.Username, product, *req.NewQuantity, req.Reason)
		if adjErr != nil {
			return adjErr
		}
		inv = updated
		return nil
	})
	if txErr != nil {
		return respondError(c, txErr)
	}

	log.Info("Stock adjusted",
		zap.Uint("product_id", product.ID),
		zap.Int("new_quantity", inv.Quantity),
		zap.String("reason", req.Reason))
	return c.JSON(http.StatusOK, inv)
}

// ListMovements handles retrieving a product's stock movement history
func ListMovements(c echo.Context) error {
	id, err := tenant.FromContext(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := tenant.Authorize(id.Role, tenant.ActionInventoryRead); err != nil {
		return respondError(c, err)
	}

	product, err := loadStoreProduct(c, id)
	if err != nil {
		return respondError(c, err)
	}

	page, size := pageParams(c)
	movements, total, err := inventoryService.Movements(product.StoreID, product.ID, page, size)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, pagedResponse(movements, total, page, size))
}

// loadOwnedProduct fetches a product by ID from the request body and enforces
// store ownership
func loadOwnedProduct(storeID, productID uint) (*model.Product, error) {
	var product model.Product
	if err := database.GetDB().First(&product, productID).Error; err != nil {
		return nil, apperr.NotFound("product", productID)
	}
	if product.StoreID != storeID {
		return nil, apperr.CrossTenant("product", productID)
	}
	return &product, nil
}
