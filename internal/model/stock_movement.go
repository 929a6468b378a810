package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementType classifies a stock change
type MovementType string

const (
	MovementSale    MovementType = "SALE"
	MovementStockIn MovementType = "STOCK_IN"
	MovementAdjust  MovementType = "ADJUST"
	MovementReturn  MovementType = "RETURN"
)

// StockMovement is one immutable audit row per inventory mutation.
// Quantity is signed: negative for stock leaving, positive for stock
// entering. Rows are never updated or deleted.
type StockMovement struct {
	ID            uint            `json:"id" gorm:"primaryKey"`
	StoreID       uint            `json:"store_id" gorm:"index;not null"`
	ProductID     uint            `json:"product_id" gorm:"index;not null"`
	Type          MovementType    `json:"type" gorm:"type:varchar(20);not null"`
	Quantity      int             `json:"quantity" gorm:"not null"`
	ReferenceID   uint            `json:"reference_id"`
	ReferenceType string          `json:"reference_type" gorm:"type:varchar(50)"`
	UnitPrice     decimal.Decimal `json:"unit_price" gorm:"type:numeric(18,2)"`
	SupplierName  string          `json:"supplier_name" gorm:"type:varchar(100)"`
	Notes         string          `json:"notes" gorm:"type:varchar(500)"`
	CreatedBy     string          `json:"created_by" gorm:"type:varchar(30)"`
	CreatedAt     time.Time       `json:"created_at"`
}
