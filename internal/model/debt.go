package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DebtStatus is the receivable lifecycle status
type DebtStatus string

const (
	DebtUnpaid        DebtStatus = "UNPAID"
	DebtPartiallyPaid DebtStatus = "PARTIALLY_PAID"
	DebtPaid          DebtStatus = "PAID"
	DebtOverdue       DebtStatus = "OVERDUE"
	DebtCancelled     DebtStatus = "CANCELLED"
)

// Debt is a customer receivable opened for non-cash orders. Invariant:
// UnpaidAmount = OriginalAmount - PaidAmount and PaidAmount <= OriginalAmount
// at every step.
type Debt struct {
	ID             uint            `json:"id" gorm:"primaryKey"`
	StoreID        uint            `json:"store_id" gorm:"index;not null"`
	OrderID        uint            `json:"order_id" gorm:"index"`
	CustomerID     uint            `json:"customer_id" gorm:"index;not null"`
	OriginalAmount decimal.Decimal `json:"original_amount" gorm:"type:numeric(18,2);not null"`
	PaidAmount     decimal.Decimal `json:"paid_amount" gorm:"type:numeric(18,2);default:0"`
	UnpaidAmount   decimal.Decimal `json:"unpaid_amount" gorm:"type:numeric(18,2);default:0"`
	Status         DebtStatus      `json:"status" gorm:"type:varchar(20);default:'UNPAID'"`
	DueDate        time.Time       `json:"due_date"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// IsOverdue reports whether an unsettled debt has passed its due date
func (d *Debt) IsOverdue(now time.Time) bool {
	if d.Status == DebtPaid || d.Status == DebtCancelled {
		return false
	}
	return now.After(d.DueDate)
}
