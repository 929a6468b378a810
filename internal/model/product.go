package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product represents the product master data. Price is the current selling
// price; orders capture it at checkout and never reference it live afterwards.
type Product struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	StoreID     uint            `json:"store_id" gorm:"uniqueIndex:uk_store_sku;index;not null"`
	SKU         string          `json:"sku" gorm:"type:varchar(100);uniqueIndex:uk_store_sku;not null"`
	Name        string          `json:"name" gorm:"type:varchar(255);not null"`
	Description string          `json:"description" gorm:"type:text"`
	Price       decimal.Decimal `json:"price" gorm:"type:numeric(18,2);not null"`
	Unit        string          `json:"unit" gorm:"type:varchar(20)"`
	IsActive    bool            `json:"is_active" gorm:"default:true"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `json:"-" gorm:"index"`
}
