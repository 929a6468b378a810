package model

import (
	"time"

	"gorm.io/gorm"
)

// StoreStatus is the store lifecycle status
type StoreStatus string

const (
	StoreActive   StoreStatus = "ACTIVE"
	StoreInactive StoreStatus = "INACTIVE"
)

// Store is the tenant. Every domain record is partitioned by StoreID.
type Store struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Name      string         `json:"name" gorm:"type:varchar(100);not null"`
	OwnerName string         `json:"owner_name" gorm:"type:varchar(100)"`
	Phone     string         `json:"phone" gorm:"type:varchar(15)"`
	Address   string         `json:"address" gorm:"type:varchar(255)"`
	Status    StoreStatus    `json:"status" gorm:"type:varchar(20);default:'ACTIVE'"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}
