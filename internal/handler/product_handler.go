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
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ProductRequest defines the structure for product creation/update requests
type ProductRequest struct {
	Name        string          `json:"name" validate:"required"`
	Description string          `json:"description"`
	SKU         string          `json:"sku" validate:"required"`
	Price       decimal.Decimal `json:"price" validate:"required"`
	Unit        string          `json:"unit"`
	IsActive    bool            `json:"is_active"`
}

// ListProducts handles retrieving the store's products
func ListProducts(c echo.Context) error {
	id, err := tenant.FromContext(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := tenant.Authorize(id.Role, tenant.ActionProductRead); err != nil {
		return respondError(c, err)
	}
	storeID, err := id.Store()
	if err != nil {
		return respondError(c, err)
	}

	query := database.GetDB().Model(&model.Product{}).Where("store_id = ?", storeID)

	if isActive := c.QueryParam("is_active"); isActive != "" {
		if active, parseErr := strconv.ParseBool(isActive); parseErr == nil {
			query = query.Where("is_active = ?", active)
		}
	}
	if keyword := c.QueryParam("q"); keyword != "" {
		query = query.Where("name ILIKE ? OR sku ILIKE ?", "%"+keyword+"%", "%"+keyword+"%")
	}

	page, size := pageParams(c)
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return respondError(c, apperr.Internal(err))
	}

	var products []model.Product
	if err := query.Order("id").Offset((page - 1) * size).Limit(size).Find(&products).Error; err != nil {
		return respondError(c, apperr.Internal(err))
	}

	return c.JSON(http.StatusOK, pagedResponse(products, total, page, size))
}

// GetProduct handles retrieving a single product by ID
func GetProduct(c echo.Context) error {
	id, err := tenant.FromContext(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := tenant.Authorize(id.Role, tenant.ActionProductRead); err != nil {
		return respondError(c, err)
	}

	product, err := loadStoreProduct(c, id)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, product)
}

// CreateProduct handles creating a new product. A zero inventory record is
// seeded alongside so stock-in never has to special-case new products.
func CreateProduct(c echo.Context) error {
	log := logger.FromEcho(c)

	id, err := tenant.FromContext(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := tenant.Authorize(id.Role, tenant.ActionProductWrite); err != nil {
		return respondError(c, err)
	}
	storeID, err := id.Store()
	if err != nil {
		return respondError(c, err)
	}

	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data", "code": apperr.CodeValidation})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error(), "code": apperr.CodeValidation})
	}
	if req.Price.IsNegative() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "price cannot be negative", "code": apperr.CodeValidation})
	}

	var count int64
	database.GetDB().Model(&model.Product{}).
		Where("store_id = ? AND sku = ?", storeID, req.SKU).
		Count(&count)
	if count > 0 {
		log.Warn("Product with this SKU already exists", zap.String("sku", req.SKU))
		return c.JSON(http.StatusConflict, echo.Map{"error": "product with this SKU already exists", "code": apperr.CodeConflict})
	}

	product := model.Product{
		StoreID:     storeID,
		Name:        req.Name,
		Description: req.Description,
		SKU:         req.SKU,
		Price:       req.Price,
		Unit:        req.Unit,
		IsActive:    req.IsActive,
	}

	txErr := database.GetDB().Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&product).Error; err != nil {
			return err
		}
		return tx.Create(&model.Inventory{
			StoreID:   storeID,
			ProductID: product.ID,
		}).Error
	})
	if txErr != nil {
		log.Error("Failed to create product", zap.String("sku", req.SKU), zap.Error(txErr))
		return respondError(c, apperr.Internal(txErr))
	}

	log.Info("Product created",
		zap.Uint("product_id", product.ID),
		zap.String("sku", product.SKU))
	return c.JSON(http.StatusCreated, product)
}

// UpdateProduct handles updating an existing product
func UpdateProduct(c echo.Context) error {
	log := logger.FromEcho(c)

	id, err := tenant.FromContext(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := tenant.Authorize(id.Role, tenant.ActionProductWrite); err != nil {
		return respondError(c, err)
	}
	storeID, err := id.Store()
	if err != nil {
		return respondError(c, err)
	}

	product, err := loadStoreProduct(c, id)
	if err != nil {
		return respondError(c, err)
	}

	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data", "code": apperr.CodeValidation})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error(), "code": apperr.CodeValidation})
	}

	if req.SKU != product.SKU {
		var count int64
		database.GetDB().Model(&model.Product{}).
			Where("store_id = ? AND sku = ? AND id != ?", storeID, req.SKU, product.ID).
			Count(&count)
		if count > 0 {
			return c.JSON(http.StatusConflict, echo.Map{"error": "product with this SKU already exists", "code": apperr.CodeConflict})
		}
	}

	product.Name = req.Name
	product.Description = req.Description
	product.SKU = req.SKU
	product.Price = req.Price
	product.Unit = req.Unit
	product.IsActive = req.IsActive

	if err := database.GetDB().Save(product).Error; err != nil {
		log.Error("Failed to update product", zap.Uint("product_id", product.ID), zap.Error(err))
		return respondError(c, apperr.Internal(err))
	}

	return c.JSON(http.StatusOK, product)
}

// DeleteProduct handles deleting a product (soft delete)
func DeleteProduct(c echo.Context) error {
	log := logger.FromEcho(c)

	id, err := tenant.FromContext(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := tenant.Authorize(id.Role, tenant.ActionProductWrite); err != nil {
		return respondError(c, err)
	}

	product, err := loadStoreProduct(c, id)
	if err != nil {
		return respondError(c, err)
	}

	if err := database.GetDB().Delete(product).Error; err != nil {
		log.Error("Failed to delete product", zap.Uint("product_id", product.ID), zap.Error(err))
		return respondError(c, apperr.Internal(err))
	}

	log.Info("Product deleted", zap.Uint("product_id", product.ID))
	return c.JSON(http.StatusOK, echo.Map{"message": "product deleted successfully"})
}

// loadStoreProduct fetches :id and enforces store ownership
func loadStoreProduct(c echo.Context, id *tenant.Identity) (*model.Product, error) {
	storeID, err := id.Store()
	if err != nil {
		return nil, err
	}

	productID, parseErr := strconv.ParseUint(c.Param("id"), 10, 64)
	if parseErr != nil {
		return nil, apperr.Validation("invalid product id")
	}

	var product model.Product
	if err := database.GetDB().First(&product, uint(productID)).Error; err != nil {
		return nil, apperr.NotFound("product", uint(productID))
	}
	if product.StoreID != storeID {
		return nil, apperr.CrossTenant("product", uint(productID))
	}
	return &product, nil
}
