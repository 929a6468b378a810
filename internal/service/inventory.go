package service

import (
	"errors"

	"github.com/TrongPhucX5/BizFlowProject/internal/apperr"
	"github.com/TrongPhucX5/BizFlowProject/internal/model"
	"github.com/TrongPhucX5/BizFlowProject/prometheus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MovementRef links a stock movement to the document that caused it.
type MovementRef struct {
	ID   uint
	Type string
}

// InventoryService owns stock quantities per (store, product) and the
// append-only movement log. Every quantity mutation is paired with exactly
// one movement row in the same transaction; there is no code path that
// changes stock without an audit entry.
type InventoryService struct {
	db *gorm.DB
}

func NewInventoryService(db *gorm.DB) *InventoryService {
	return &InventoryService{db: db}
}

// Get returns the inventory record for a product in the caller's store
func (s *InventoryService) Get(storeID, productID uint) (*model.Inventory, error) {
	var inv model.Inventory
	err := s.db.Where("store_id = ? AND product_id = ?", storeID, productID).First(&inv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Newf(apperr.CodeNoInventory, "product has no inventory record: %d", productID)
		}
		return nil, apperr.Internal(err)
	}
	return &inv, nil
}

// List returns the store's inventory records, paginated
func (s *InventoryService) List(storeID uint, page, size int) ([]model.Inventory, int64, error) {
	var (
		records []model.Inventory
		total   int64
	)
	q := s.db.Model(&model.Inventory{}).Where("store_id = ?", storeID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, apperr.Internal(err)
	}
	if err := q.Order("product_id").Offset(offset(page, size)).Limit(size).Find(&records).Error; err != nil {
		return nil, 0, apperr.Internal(err)
	}
	return records, total, nil
}

// CheckAvailable rejects a requested quantity at the validation step,
// distinguishing a missing inventory record from plain shortage. Callers
// must not rely on this alone: the quantity is re-checked under a row lock
// at decrement time.
func (s *InventoryService) CheckAvailable(tx *gorm.DB, product *model.Product, qty int) error {
	var inv model.Inventory
	err := tx.Where("store_id = ? AND product_id = ?", product.StoreID, product.ID).First(&inv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.Newf(apperr.CodeNoInventory, "product has no inventory record: %d", product.ID)
		}
		return apperr.Internal(err)
	}
	if inv.AvailableQuantity < qty {
		return apperr.InsufficientStock(product.Name, inv.AvailableQuantity, qty)
	}
	return nil
}

// Decrement atomically reduces quantity and available by qty and appends a
// SALE movement. The row is locked and availability re-checked here, at
// mutation time, to close the race between the earlier validation read and
// this write.
func (s *InventoryService) Decrement(tx *gorm.DB, actor string, product *model.Product, qty int, ref MovementRef) (*model.Inventory, error) {
	if qty <= 0 {
		return nil, apperr.Validation("quantity must be positive")
	}

	inv, err := s.lockRecord(tx, product.StoreID, product.ID)
	if err != nil {
		return nil, err
	}

	if inv.AvailableQuantity < qty {
		return nil, apperr.InsufficientStock(product.Name, inv.AvailableQuantity, qty)
	}

	inv.Quantity -= qty
	inv.AvailableQuantity -= qty
	if err := tx.Save(inv).Error; err != nil {
		return nil, apperr.Internal(err)
	}

	if err := s.appendMovement(tx, &model.StockMovement{
		StoreID:       product.StoreID,
		ProductID:     product.ID,
		Type:          model.MovementSale,
		Quantity:      -qty,
		ReferenceID:   ref.ID,
		ReferenceType: ref.Type,
		UnitPrice:     product.Price,
		CreatedBy:     actor,
	}); err != nil {
		return nil, err
	}

	return inv, nil
}

// Increment atomically adds qty and appends a movement with a positive
// delta. A missing record is created, so the first stock-in of a product
// does not need a separate initialization step.
func (s *InventoryService) Increment(tx *gorm.DB, actor string, product *model.Product, qty int, kind model.MovementType, ref MovementRef, supplierName, notes string) (*model.Inventory, error) {
	if qty <= 0 {
		return nil, apperr.Validation("quantity must be positive")
	}
	if kind != model.MovementStockIn && kind != model.MovementReturn {
		return nil, apperr.Validation("movement type must add stock")
	}

	inv, err := s.lockOrCreateRecord(tx, product.StoreID, product.ID)
	if err != nil {
		return nil, err
	}

	inv.Quantity += qty
	inv.AvailableQuantity += qty
	if err := tx.Save(inv).Error; err != nil {
		return nil, apperr.Internal(err)
	}

	if err := s.appendMovement(tx, &model.StockMovement{
		StoreID:       product.StoreID,
		ProductID:     product.ID,
		Type:          kind,
		Quantity:      qty,
		ReferenceID:   ref.ID,
		ReferenceType: ref.Type,
		UnitPrice:     product.Price,
		SupplierName:  supplierName,
		Notes:         notes,
		CreatedBy:     actor,
	}); err != nil {
		return nil, err
	}

	return inv, nil
}

// Adjust sets the total quantity to newQuantity and records an ADJUST
// movement with the signed difference. Reserved stock is preserved; the
// adjustment is rejected when it would leave available negative.
func (s *InventoryService) Adjust(tx *gorm.DB, actor string, product *model.Product, newQuantity int, reason string) (*model.Inventory, error) {
	if newQuantity < 0 {
		return nil, apperr.Validation("quantity cannot be negative")
	}

	inv, err := s.lockOrCreateRecord(tx, product.StoreID, product.ID)
	if err != nil {
		return nil, err
	}

	delta := newQuantity - inv.Quantity
	if delta == 0 {
		return inv, nil
	}
	if newQuantity-inv.ReservedQuantity < 0 {
		return nil, apperr.Validation("adjustment would make available stock negative")
	}

	inv.Quantity = newQuantity
	inv.AvailableQuantity = newQuantity - inv.ReservedQuantity
	if err := tx.Save(inv).Error; err != nil {
		return nil, apperr.Internal(err)
	}

	if err := s.appendMovement(tx, &model.StockMovement{
		StoreID:   product.StoreID,
		ProductID: product.ID,
		Type:      model.MovementAdjust,
		Quantity:  delta,
		Notes:     reason,
		CreatedBy: actor,
	}); err != nil {
		return nil, err
	}

	return inv, nil
}

// Movements returns the audit trail for a product, newest first
func (s *InventoryService) Movements(storeID, productID uint, page, size int) ([]model.StockMovement, int64, error) {
	var (
		movements []model.StockMovement
		total     int64
	)
	q := s.db.Model(&model.StockMovement{}).
		Where("store_id = ? AND product_id = ?", storeID, productID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, apperr.Internal(err)
	}
	if err := q.Order("id DESC").Offset(offset(page, size)).Limit(size).Find(&movements).Error; err != nil {
		return nil, 0, apperr.Internal(err)
	}
	return movements, total, nil
}

func (s *InventoryService) lockRecord(tx *gorm.DB, storeID, productID uint) (*model.Inventory, error) {
	var inv model.Inventory
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("store_id = ? AND product_id = ?", storeID, productID).
		First(&inv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Newf(apperr.CodeNoInventory, "product has no inventory record: %d", productID)
		}
		return nil, apperr.Internal(err)
	}
	return &inv, nil
}

func (s *InventoryService) lockOrCreateRecord(tx *gorm.DB, storeID, productID uint) (*model.Inventory, error) {
	inv, err := s.lockRecord(tx, storeID, productID)
	if err == nil {
		return inv, nil
	}
	appErr := apperr.From(err)
	if appErr.Code != apperr.CodeNoInventory {
		return nil, err
	}

	created := &model.Inventory{StoreID: storeID, ProductID: productID}
	if createErr := tx.Create(created).Error; createErr != nil {
		// Lost a create race with a concurrent stock-in; take the lock
		// on the winner's row.
		if errors.Is(createErr, gorm.ErrDuplicatedKey) {
			return s.lockRecord(tx, storeID, productID)
		}
		return nil, apperr.Internal(createErr)
	}
	return s.lockRecord(tx, storeID, productID)
}

func (s *InventoryService) appendMovement(tx *gorm.DB, movement *model.StockMovement) error {
	if err := tx.Create(movement).Error; err != nil {
		return apperr.Internal(err)
	}
	prometheus.RecordStockMovement(string(movement.Type))
	return nil
}

func offset(page, size int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * size
}
