package service

import (
	"errors"
	"time"

	"github.com/TrongPhucX5/BizFlowProject/internal/apperr"
	"github.com/TrongPhucX5/BizFlowProject/internal/model"
	"github.com/TrongPhucX5/BizFlowProject/internal/tenant"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DebtService tracks customer receivables. A debt is opened exactly once
// per non-cash order and mutated afterwards only by payment recording,
// which preserves paid + unpaid = original at every step.
type DebtService struct {
	db        *gorm.DB
	graceDays int
}

func NewDebtService(db *gorm.DB, graceDays int) *DebtService {
	return &DebtService{db: db, graceDays: graceDays}
}

// Open creates the receivable for a freshly persisted non-cash order.
// Runs inside the order-creation transaction.
func (s *DebtService) Open(tx *gorm.DB, order *model.Order, customer *model.Customer) (*model.Debt, error) {
	debt := &model.Debt{
		StoreID:        order.StoreID,
		OrderID:        order.ID,
		CustomerID:     customer.ID,
		OriginalAmount: order.TotalAmount,
		PaidAmount:     decimal.Zero,
		UnpaidAmount:   order.TotalAmount,
		Status:         model.DebtUnpaid,
		DueDate:        time.Now().AddDate(0, 0, s.graceDays),
	}
	if err := tx.Create(debt).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	return debt, nil
}

// Pay applies a payment to a debt. The row is locked so concurrent
// payments cannot push paid past original.
func (s *DebtService) Pay(id *tenant.Identity, debtID uint, amount decimal.Decimal) (*model.Debt, error) {
	storeID, err := id.Store()
	if err != nil {
		return nil, err
	}
	if !amount.IsPositive() {
		return nil, apperr.Validation("payment amount must be positive")
	}

	var debt model.Debt
	txErr := s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&debt, debtID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("debt", debtID)
			}
			return apperr.Internal(err)
		}
		if debt.StoreID != storeID {
			return apperr.CrossTenant("debt", debtID)
		}
		if debt.Status == model.DebtPaid || debt.Status == model.DebtCancelled {
			return apperr.Conflict("debt is already settled")
		}
		if amount.GreaterThan(debt.UnpaidAmount) {
			return apperr.Validation("payment exceeds unpaid amount")
		}

		debt.PaidAmount = debt.PaidAmount.Add(amount)
		debt.UnpaidAmount = debt.OriginalAmount.Sub(debt.PaidAmount)
		if debt.UnpaidAmount.IsZero() {
			debt.Status = model.DebtPaid
		} else {
			debt.Status = model.DebtPartiallyPaid
		}

		if err := tx.Save(&debt).Error; err != nil {
			return apperr.Internal(err)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return &debt, nil
}

// Get returns one debt in the caller's store
func (s *DebtService) Get(id *tenant.Identity, debtID uint) (*model.Debt, error) {
	storeID, err := id.Store()
	if err != nil {
		return nil, err
	}

	var debt model.Debt
	if err := s.db.First(&debt, debtID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("debt", debtID)
		}
		return nil, apperr.Internal(err)
	}
	if debt.StoreID != storeID {
		return nil, apperr.CrossTenant("debt", debtID)
	}

	single := []model.Debt{debt}
	markOverdue(single)
	return &single[0], nil
}

// List returns the store's debts, optionally only unsettled or overdue
// ones. OVERDUE is derived from due date against now at read time.
func (s *DebtService) List(id *tenant.Identity, unpaidOnly, overdueOnly bool, page, size int) ([]model.Debt, int64, error) {
	storeID, err := id.Store()
	if err != nil {
		return nil, 0, err
	}

	q := s.db.Model(&model.Debt{}).Where("store_id = ?", storeID)
	if unpaidOnly || overdueOnly {
		q = q.Where("status IN ?", []model.DebtStatus{model.DebtUnpaid, model.DebtPartiallyPaid, model.DebtOverdue})
	}
	if overdueOnly {
		q = q.Where("due_date < ?", time.Now())
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, apperr.Internal(err)
	}

	var debts []model.Debt
	if err := q.Order("id DESC").Offset(offset(page, size)).Limit(size).Find(&debts).Error; err != nil {
		return nil, 0, apperr.Internal(err)
	}

	markOverdue(debts)
	return debts, total, nil
}

// ListByCustomer returns one customer's debts within the caller's store
func (s *DebtService) ListByCustomer(id *tenant.Identity, customerID uint, page, size int) ([]model.Debt, int64, error) {
	storeID, err := id.Store()
	if err != nil {
		return nil, 0, err
	}

	q := s.db.Model(&model.Debt{}).Where("store_id = ? AND customer_id = ?", storeID, customerID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, apperr.Internal(err)
	}

	var debts []model.Debt
	if err := q.Order("id DESC").Offset(offset(page, size)).Limit(size).Find(&debts).Error; err != nil {
		return nil, 0, apperr.Internal(err)
	}

	markOverdue(debts)
	return debts, total, nil
}

// Outstanding sums a customer's unpaid amounts
func (s *DebtService) Outstanding(id *tenant.Identity, customerID uint) (decimal.Decimal, error) {
	storeID, err := id.Store()
	if err != nil {
		return decimal.Zero, err
	}

	var sum decimal.NullDecimal
	err = s.db.Model(&model.Debt{}).
		Where("store_id = ? AND customer_id = ? AND status NOT IN ?",
			storeID, customerID, []model.DebtStatus{model.DebtPaid, model.DebtCancelled}).
		Select("SUM(unpaid_amount)").
		Scan(&sum).Error
	if err != nil {
		return decimal.Zero, apperr.Internal(err)
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal, nil
}

// markOverdue decorates read results; the stored status stays untouched
// until payment recording.
func markOverdue(debts []model.Debt) {
	now := time.Now()
	for i := range debts {
		if debts[i].IsOverdue(now) && debts[i].Status != model.DebtOverdue {
			debts[i].Status = model.DebtOverdue
		}
	}
}
