package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentType is how the customer pays for an order
type PaymentType string

const (
	PaymentCash     PaymentType = "CASH"
	PaymentCredit   PaymentType = "CREDIT"
	PaymentTransfer PaymentType = "TRANSFER"
)

// Valid reports whether the payment type is one of the known kinds
func (p PaymentType) Valid() bool {
	switch p {
	case PaymentCash, PaymentCredit, PaymentTransfer:
		return true
	}
	return false
}

// OrderStatus is the order lifecycle status. Orders are created CONFIRMED
// and advanced by payment events.
type OrderStatus string

const (
	OrderConfirmed     OrderStatus = "CONFIRMED"
	OrderPaid          OrderStatus = "PAID"
	OrderPartiallyPaid OrderStatus = "PARTIALLY_PAID"
	OrderUnpaid        OrderStatus = "UNPAID"
	OrderCancelled     OrderStatus = "CANCELLED"
)

// Order is the checkout header. Invariant: TotalAmount = Subtotal - DiscountAmount >= 0.
type Order struct {
	ID             uint            `json:"id" gorm:"primaryKey"`
	StoreID        uint            `json:"store_id" gorm:"index;not null"`
	OrderNumber    string          `json:"order_number" gorm:"type:varchar(50);uniqueIndex;not null"`
	CustomerID     uint            `json:"customer_id" gorm:"index;not null"`
	EmployeeID     uint            `json:"employee_id"`
	Subtotal       decimal.Decimal `json:"subtotal" gorm:"type:numeric(18,2);not null"`
	DiscountAmount decimal.Decimal `json:"discount_amount" gorm:"type:numeric(18,2);default:0"`
	TotalAmount    decimal.Decimal `json:"total_amount" gorm:"type:numeric(18,2);not null"`
	PaymentType    PaymentType     `json:"payment_type" gorm:"type:varchar(20);default:'CASH'"`
	Status         OrderStatus     `json:"status" gorm:"type:varchar(20);default:'CONFIRMED'"`
	Notes          string          `json:"notes" gorm:"type:varchar(500)"`
	CreatedBy      string          `json:"created_by" gorm:"type:varchar(30)"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`

	Items []OrderItem `json:"items,omitempty" gorm:"foreignKey:OrderID"`
}

// OrderItem is one line of an order. Immutable once persisted; UnitPrice is
// the product price captured at order time.
type OrderItem struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	OrderID     uint            `json:"order_id" gorm:"index;not null"`
	ProductID   uint            `json:"product_id" gorm:"not null"`
	Quantity    int             `json:"quantity" gorm:"not null"`
	UnitPrice   decimal.Decimal `json:"unit_price" gorm:"type:numeric(18,2);not null"`
	TotalAmount decimal.Decimal `json:"total_amount" gorm:"type:numeric(18,2);not null"`
	CreatedAt   time.Time       `json:"created_at"`
}
