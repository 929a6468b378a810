package service

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/TrongPhucX5/BizFlowProject/internal/apperr"
	"github.com/TrongPhucX5/BizFlowProject/internal/model"
	"github.com/TrongPhucX5/BizFlowProject/internal/notify"
	"github.com/TrongPhucX5/BizFlowProject/internal/tenant"
	"github.com/TrongPhucX5/BizFlowProject/pkg/logger"
	"github.com/TrongPhucX5/BizFlowProject/prometheus"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// orderNumberAttempts bounds the retry on an order-number collision before
// the conflict is surfaced to the caller as retryable.
const orderNumberAttempts = 3

// OrderItemRequest is one requested line
type OrderItemRequest struct {
	ProductID uint `json:"product_id" validate:"required"`
	Quantity  int  `json:"quantity" validate:"required,gt=0"`
}

// CreateOrderRequest is the checkout payload. The store and the acting
// employee are never part of it: both come from the caller's identity.
type CreateOrderRequest struct {
	CustomerID     uint               `json:"customer_id" validate:"required"`
	Items          []OrderItemRequest `json:"items" validate:"dive"`
	DiscountAmount decimal.Decimal    `json:"discount_amount"`
	PaymentType    model.PaymentType  `json:"payment_type"`
	Notes          string             `json:"notes"`
}

// orderLine holds one validated line while the order is being built
type orderLine struct {
	product   *model.Product
	quantity  int
	unitPrice decimal.Decimal
	total     decimal.Decimal
}

// OrderService orchestrates order creation as one all-or-nothing
// transaction: customer and product ownership checks, price capture,
// header and line persistence, inventory decrement with audit trail, and
// receivable opening for non-cash orders. The only step outside the
// transaction is the best-effort notification after commit.
type OrderService struct {
	db        *gorm.DB
	inventory *InventoryService
	debts     *DebtService
	sender    notify.Sender
}

func NewOrderService(db *gorm.DB, inventory *InventoryService, debts *DebtService, sender notify.Sender) *OrderService {
	return &OrderService{db: db, inventory: inventory, debts: debts, sender: sender}
}

// Create runs the checkout. Any failure inside the transaction rolls back
// everything: no partial order can exist with understocked lines.
func (s *OrderService) Create(ctx context.Context, id *tenant.Identity, req *CreateOrderRequest) (*model.Order, error) {
	storeID, err := id.Store()
	if err != nil {
		return nil, err
	}
	if err := tenant.Authorize(id.Role, tenant.ActionOrderCreate); err != nil {
		return nil, err
	}

	paymentType := req.PaymentType
	if paymentType == "" {
		paymentType = model.PaymentCash
	}
	if !paymentType.Valid() {
		return nil, apperr.Validation("unknown payment type")
	}
	if req.DiscountAmount.IsNegative() {
		return nil, apperr.New(apperr.CodeInvalidDiscount, "discount cannot be negative")
	}

	log := logger.FromContext(ctx)

	var (
		order    *model.Order
		customer *model.Customer
	)
	for attempt := 1; ; attempt++ {
		order, customer, err = s.createOnce(storeID, id, req, paymentType)
		if err == nil {
			break
		}
		appErr := apperr.From(err)
		if appErr.Code == apperr.CodeConflict && attempt < orderNumberAttempts {
			log.Warn("Order number collision, retrying",
				zap.Uint("store_id", storeID),
				zap.Int("attempt", attempt))
			continue
		}
		if appErr.Code == apperr.CodeCrossTenant {
			log.Warn("Cross-tenant access attempt during order creation",
				zap.Uint("store_id", storeID),
				zap.Uint("user_id", id.UserID),
				zap.String("detail", appErr.Message))
		}
		prometheus.RecordOrderFailure(fmt.Sprintf("%d", appErr.PublicCode()))
		return nil, err
	}

	prometheus.OrdersCreatedCounter.WithLabelValues(string(paymentType)).Inc()
	log.Info("Order created",
		zap.Uint("order_id", order.ID),
		zap.String("order_number", order.OrderNumber),
		zap.String("total", order.TotalAmount.String()))

	// Intentionally non-atomic: a notification outage must never block
	// commerce, so the publish happens after commit behind its own error
	// boundary.
	s.notifyOrderCreated(ctx, order, customer)

	return order, nil
}

// createOnce is one transactional attempt; a duplicate order number comes
// back as a Conflict so Create can retry with a fresh number.
func (s *OrderService) createOnce(storeID uint, id *tenant.Identity, req *CreateOrderRequest, paymentType model.PaymentType) (*model.Order, *model.Customer, error) {
	var (
		order    *model.Order
		customer *model.Customer
	)

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		customer, err = s.loadCustomer(tx, storeID, req.CustomerID)
		if err != nil {
			return err
		}

		if len(req.Items) == 0 {
			return apperr.Validation("order must contain at least one item")
		}

		lines, err := s.buildLines(tx, storeID, req.Items)
		if err != nil {
			return err
		}

		subtotal := decimal.Zero
		for _, line := range lines {
			subtotal = subtotal.Add(line.total)
		}
		total, err := calculateTotal(subtotal, req.DiscountAmount)
		if err != nil {
			return err
		}

		order = &model.Order{
			StoreID:        storeID,
			OrderNumber:    generateOrderNumber(storeID, time.Now()),
			CustomerID:     customer.ID,
			EmployeeID:     id.UserID,
			Subtotal:       subtotal,
			DiscountAmount: req.DiscountAmount,
			TotalAmount:    total,
			PaymentType:    paymentType,
			Status:         model.OrderConfirmed,
			Notes:          req.Notes,
			CreatedBy:      id.Username,
		}
		if err := tx.Create(order).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperr.Conflict("order number already exists")
			}
			return apperr.Internal(err)
		}

		items := make([]model.OrderItem, 0, len(lines))
		for _, line := range lines {
			items = append(items, model.OrderItem{
				OrderID:     order.ID,
				ProductID:   line.product.ID,
				Quantity:    line.quantity,
				UnitPrice:   line.unitPrice,
				TotalAmount: line.total,
			})
		}
		if err := tx.Create(&items).Error; err != nil {
			return apperr.Internal(err)
		}
		order.Items = items

		// Decrement re-checks availability under a row lock; losing the
		// race to a concurrent order rolls back the whole transaction.
		ref := MovementRef{ID: order.ID, Type: "ORDER"}
		for _, line := range lines {
			if _, err := s.inventory.Decrement(tx, id.Username, line.product, line.quantity, ref); err != nil {
				return err
			}
		}

		if paymentType != model.PaymentCash {
			if _, err := s.debts.Open(tx, order, customer); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return order, customer, nil
}

func (s *OrderService) loadCustomer(tx *gorm.DB, storeID, customerID uint) (*model.Customer, error) {
	var customer model.Customer
	if err := tx.First(&customer, customerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("customer", customerID)
		}
		return nil, apperr.Internal(err)
	}
	if customer.StoreID != storeID {
		return nil, apperr.CrossTenant("customer", customerID)
	}
	return &customer, nil
}

// buildLines validates ownership and availability per line and captures the
// product's current price; the order never references the live price again.
func (s *OrderService) buildLines(tx *gorm.DB, storeID uint, items []OrderItemRequest) ([]orderLine, error) {
	lines := make([]orderLine, 0, len(items))
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, apperr.Validation("item quantity must be positive")
		}

		var product model.Product
		if err := tx.First(&product, item.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperr.NotFound("product", item.ProductID)
			}
			return nil, apperr.Internal(err)
		}
		if product.StoreID != storeID {
			return nil, apperr.CrossTenant("product", item.ProductID)
		}

		if err := s.inventory.CheckAvailable(tx, &product, item.Quantity); err != nil {
			return nil, err
		}

		unitPrice := product.Price
		lines = append(lines, orderLine{
			product:   &product,
			quantity:  item.Quantity,
			unitPrice: unitPrice,
			total:     unitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))),
		})
	}
	return lines, nil
}

// Get returns one order with its lines, store-scoped
func (s *OrderService) Get(id *tenant.Identity, orderID uint) (*model.Order, error) {
	storeID, err := id.Store()
	if err != nil {
		return nil, err
	}

	var order model.Order
	if err := s.db.Preload("Items").First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("order", orderID)
		}
		return nil, apperr.Internal(err)
	}
	if order.StoreID != storeID {
		return nil, apperr.CrossTenant("order", orderID)
	}
	return &order, nil
}

// List returns the store's orders, newest first
func (s *OrderService) List(id *tenant.Identity, page, size int) ([]model.Order, int64, error) {
	storeID, err := id.Store()
	if err != nil {
		return nil, 0, err
	}

	q := s.db.Model(&model.Order{}).Where("store_id = ?", storeID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, apperr.Internal(err)
	}

	var orders []model.Order
	if err := q.Order("id DESC").Offset(offset(page, size)).Limit(size).Find(&orders).Error; err != nil {
		return nil, 0, apperr.Internal(err)
	}
	return orders, total, nil
}

func (s *OrderService) notifyOrderCreated(ctx context.Context, order *model.Order, customer *model.Customer) {
	log := logger.FromContext(ctx)

	defer func() {
		if r := recover(); r != nil {
			prometheus.NotificationErrorsCounter.Inc()
			log.Warn("Notification sender panicked", zap.Any("panic", r))
		}
	}()

	publishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	topic := fmt.Sprintf("store_%d_orders", order.StoreID)
	title := "New order: " + order.OrderNumber
	body := fmt.Sprintf("Customer: %s - Total: %s", customer.Name, order.TotalAmount.String())

	if err := s.sender.Publish(publishCtx, topic, title, body); err != nil {
		prometheus.NotificationErrorsCounter.Inc()
		log.Warn("Failed to send order notification",
			zap.String("order_number", order.OrderNumber),
			zap.Error(err))
	}
}

// calculateTotal applies the discount; a discount larger than the subtotal
// is rejected before anything is persisted.
func calculateTotal(subtotal, discount decimal.Decimal) (decimal.Decimal, error) {
	total := subtotal.Sub(discount)
	if total.IsNegative() {
		return decimal.Zero, apperr.New(apperr.CodeInvalidDiscount, "discount cannot exceed subtotal")
	}
	return total, nil
}

// generateOrderNumber builds ORD-<store>-<yyyymmdd>-<8 hex>. The random
// suffix makes collisions practically impossible under concurrent
// checkouts; the unique index plus retry covers the rest.
func generateOrderNumber(storeID uint, now time.Time) string {
	raw := uuid.New()
	return fmt.Sprintf("ORD-%d-%s-%s",
		storeID,
		now.Format("20060102"),
		hex.EncodeToString(raw[:4]))
}
