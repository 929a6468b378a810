package model

import (
	"time"
)

// Inventory tracks stock per (store, product). Invariant:
// AvailableQuantity = Quantity - ReservedQuantity, both Quantity >= 0 and
// AvailableQuantity >= 0 at all times. Mutated only through the inventory
// service, which pairs every change with a StockMovement row.
type Inventory struct {
	ID                uint      `json:"id" gorm:"primaryKey"`
	StoreID           uint      `json:"store_id" gorm:"uniqueIndex:uk_store_product;not null"`
	ProductID         uint      `json:"product_id" gorm:"uniqueIndex:uk_store_product;not null"`
	Quantity          int       `json:"quantity" gorm:"not null;default:0"`
	ReservedQuantity  int       `json:"reserved_quantity" gorm:"not null;default:0"`
	AvailableQuantity int       `json:"available_quantity" gorm:"not null;default:0"`
	UpdatedAt         time.Time `json:"updated_at"`
}
