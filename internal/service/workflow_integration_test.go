package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/TrongPhucX5/BizFlowProject/internal/apperr"
	"github.com/TrongPhucX5/BizFlowProject/internal/model"
	"github.com/TrongPhucX5/BizFlowProject/internal/notify"
	"github.com/TrongPhucX5/BizFlowProject/internal/tenant"
	"github.com/TrongPhucX5/BizFlowProject/pkg/config"
	"github.com/TrongPhucX5/BizFlowProject/pkg/database"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// The tests below run the full order workflow against a real PostgreSQL
// instance; row locking does not exist in lighter test doubles. Each test
// creates its own store so runs are isolated on a shared database.

func requireIntegrationDB(t *testing.T) *gorm.DB {
	t.Helper()
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires postgres)")
	}

	cfg, err := config.Load("bizflow-test")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	db, err := database.InitDB(&cfg.DB)
	if err != nil {
		t.Fatalf("connect database: %v", err)
	}
	if err := database.MigrateModels(
		&model.Store{},
		&model.User{},
		&model.Customer{},
		&model.Product{},
		&model.Inventory{},
		&model.StockMovement{},
		&model.Order{},
		&model.OrderItem{},
		&model.Debt{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

type fixture struct {
	db       *gorm.DB
	store    model.Store
	identity *tenant.Identity
	customer model.Customer
	product  model.Product

	inventory *InventoryService
	debts     *DebtService
	orders    *OrderService
}

// newFixture creates a fresh store with one customer and one product priced
// at 100.00 with the given available quantity.
func newFixture(t *testing.T, db *gorm.DB, available int) *fixture {
	t.Helper()

	store := model.Store{Name: fmt.Sprintf("Test Store %d", time.Now().UnixNano())}
	if err := db.Create(&store).Error; err != nil {
		t.Fatalf("create store: %v", err)
	}

	customer := model.Customer{StoreID: store.ID, Name: "Walk-in Customer", Status: model.CustomerActive}
	if err := db.Create(&customer).Error; err != nil {
		t.Fatalf("create customer: %v", err)
	}

	product := model.Product{
		StoreID:  store.ID,
		SKU:      fmt.Sprintf("SKU-%d", time.Now().UnixNano()),
		Name:     "Test Product",
		Price:    decimal.RequireFromString("100.00"),
		IsActive: true,
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}

	inv := model.Inventory{
		StoreID:           store.ID,
		ProductID:         product.ID,
		Quantity:          available,
		AvailableQuantity: available,
	}
	if err := db.Create(&inv).Error; err != nil {
		t.Fatalf("create inventory: %v", err)
	}

	inventory := NewInventoryService(db)
	debts := NewDebtService(db, 30)
	return &fixture{
		db:        db,
		store:     store,
		identity:  &tenant.Identity{UserID: 1, StoreID: &store.ID, Username: "seller", Role: model.RoleOwner},
		customer:  customer,
		product:   product,
		inventory: inventory,
		debts:     debts,
		orders:    NewOrderService(db, inventory, debts, notify.LogSender{}),
	}
}

func (f *fixture) orderRequest(qty int) *CreateOrderRequest {
	return &CreateOrderRequest{
		CustomerID:  f.customer.ID,
		Items:       []OrderItemRequest{{ProductID: f.product.ID, Quantity: qty}},
		PaymentType: model.PaymentCash,
	}
}

func (f *fixture) currentInventory(t *testing.T) model.Inventory {
	t.Helper()
	var inv model.Inventory
	if err := f.db.Where("store_id = ? AND product_id = ?", f.store.ID, f.product.ID).First(&inv).Error; err != nil {
		t.Fatalf("load inventory: %v", err)
	}
	return inv
}

func TestCashOrderDecrementsStockWithoutDebt(t *testing.T) {
	db := requireIntegrationDB(t)
	f := newFixture(t, db, 3)

	order, err := f.orders.Create(context.Background(), f.identity, f.orderRequest(2))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if !order.TotalAmount.Equal(decimal.RequireFromString("200.00")) {
		t.Errorf("total = %s, want 200.00", order.TotalAmount)
	}
	if order.Status != model.OrderConfirmed {
		t.Errorf("status = %s, want CONFIRMED", order.Status)
	}
	if len(order.Items) != 1 || order.Items[0].Quantity != 2 {
		t.Errorf("items = %+v, want one line of 2", order.Items)
	}
	if !order.Items[0].UnitPrice.Equal(f.product.Price) {
		t.Errorf("unit price = %s, want captured %s", order.Items[0].UnitPrice, f.product.Price)
	}

	inv := f.currentInventory(t)
	if inv.Quantity != 1 || inv.AvailableQuantity != 1 {
		t.Errorf("inventory = %d/%d available, want 1/1", inv.Quantity, inv.AvailableQuantity)
	}

	var movements []model.StockMovement
	if err := db.Where("store_id = ? AND product_id = ?", f.store.ID, f.product.ID).Find(&movements).Error; err != nil {
		t.Fatalf("load movements: %v", err)
	}
	if len(movements) != 1 {
		t.Fatalf("movements = %d, want exactly 1", len(movements))
	}
	m := movements[0]
	if m.Type != model.MovementSale || m.Quantity != -2 {
		t.Errorf("movement = %s %d, want SALE -2", m.Type, m.Quantity)
	}
	if m.ReferenceID != order.ID || m.ReferenceType != "ORDER" {
		t.Errorf("movement reference = %d/%s, want %d/ORDER", m.ReferenceID, m.ReferenceType, order.ID)
	}

	var debtCount int64
	db.Model(&model.Debt{}).Where("order_id = ?", order.ID).Count(&debtCount)
	if debtCount != 0 {
		t.Errorf("cash order opened %d debts, want 0", debtCount)
	}
}

func TestCreditOrderOpensDebt(t *testing.T) {
	db := requireIntegrationDB(t)
	f := newFixture(t, db, 3)

	req := f.orderRequest(2)
	req.PaymentType = model.PaymentCredit

	order, err := f.orders.Create(context.Background(), f.identity, req)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	var debt model.Debt
	if err := db.Where("order_id = ?", order.ID).First(&debt).Error; err != nil {
		t.Fatalf("credit order opened no debt: %v", err)
	}
	if !debt.OriginalAmount.Equal(order.TotalAmount) {
		t.Errorf("debt original = %s, want %s", debt.OriginalAmount, order.TotalAmount)
	}
	if !debt.UnpaidAmount.Equal(order.TotalAmount) || !debt.PaidAmount.IsZero() {
		t.Errorf("debt paid/unpaid = %s/%s, want 0/%s", debt.PaidAmount, debt.UnpaidAmount, order.TotalAmount)
	}
	if debt.Status != model.DebtUnpaid {
		t.Errorf("debt status = %s, want UNPAID", debt.Status)
	}

	wantDue := time.Now().AddDate(0, 0, 30)
	if diff := debt.DueDate.Sub(wantDue); diff < -time.Hour || diff > time.Hour {
		t.Errorf("due date = %s, want about %s", debt.DueDate, wantDue)
	}
}

func TestCrossTenantCustomerRollsBackEverything(t *testing.T) {
	db := requireIntegrationDB(t)
	seller := newFixture(t, db, 3)
	other := newFixture(t, db, 3)

	req := seller.orderRequest(2)
	req.CustomerID = other.customer.ID

	_, err := seller.orders.Create(context.Background(), seller.identity, req)
	appErr := apperr.From(err)
	if appErr == nil || appErr.Code != apperr.CodeCrossTenant {
		t.Fatalf("expected cross-tenant error, got %v", err)
	}
	if appErr.PublicCode() != apperr.CodeNotFound {
		t.Errorf("public code = %d, cross-tenant must render as not-found", appErr.PublicCode())
	}

	var orderCount, movementCount int64
	db.Model(&model.Order{}).Where("store_id = ?", seller.store.ID).Count(&orderCount)
	db.Model(&model.StockMovement{}).Where("store_id = ?", seller.store.ID).Count(&movementCount)
	if orderCount != 0 || movementCount != 0 {
		t.Errorf("rejected order persisted %d orders, %d movements", orderCount, movementCount)
	}

	inv := seller.currentInventory(t)
	if inv.AvailableQuantity != 3 {
		t.Errorf("available = %d after rejected order, want 3", inv.AvailableQuantity)
	}
}

func TestCrossTenantProductRollsBackEverything(t *testing.T) {
	db := requireIntegrationDB(t)
	seller := newFixture(t, db, 3)
	other := newFixture(t, db, 3)

	req := seller.orderRequest(2)
	req.Items[0].ProductID = other.product.ID

	_, err := seller.orders.Create(context.Background(), seller.identity, req)
	appErr := apperr.From(err)
	if appErr == nil || appErr.Code != apperr.CodeCrossTenant {
		t.Fatalf("expected cross-tenant error, got %v", err)
	}

	var orderCount int64
	db.Model(&model.Order{}).Where("store_id = ?", seller.store.ID).Count(&orderCount)
	if orderCount != 0 {
		t.Errorf("rejected order persisted %d orders", orderCount)
	}
	if inv := other.currentInventory(t); inv.AvailableQuantity != 3 {
		t.Errorf("victim store stock touched: available = %d", inv.AvailableQuantity)
	}
}

func TestInsufficientStockRejectsOrder(t *testing.T) {
	db := requireIntegrationDB(t)
	f := newFixture(t, db, 1)

	_, err := f.orders.Create(context.Background(), f.identity, f.orderRequest(2))
	appErr := apperr.From(err)
	if appErr == nil || appErr.Code != apperr.CodeInsufficientStock {
		t.Fatalf("expected insufficient-stock error, got %v", err)
	}
	if !appErr.Retryable() {
		t.Error("insufficient stock should be flagged retryable")
	}

	inv := f.currentInventory(t)
	if inv.Quantity != 1 || inv.AvailableQuantity != 1 {
		t.Errorf("inventory mutated by rejected order: %d/%d", inv.Quantity, inv.AvailableQuantity)
	}
}

func TestProductWithoutInventoryRecordRejected(t *testing.T) {
	db := requireIntegrationDB(t)
	f := newFixture(t, db, 3)

	orphan := model.Product{
		StoreID:  f.store.ID,
		SKU:      fmt.Sprintf("SKU-ORPHAN-%d", time.Now().UnixNano()),
		Name:     "Untracked Product",
		Price:    decimal.RequireFromString("50.00"),
		IsActive: true,
	}
	if err := db.Create(&orphan).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}

	req := f.orderRequest(1)
	req.Items[0].ProductID = orphan.ID

	_, err := f.orders.Create(context.Background(), f.identity, req)
	appErr := apperr.From(err)
	if appErr == nil || appErr.Code != apperr.CodeNoInventory {
		t.Fatalf("expected no-inventory error, got %v", err)
	}

	var orderCount int64
	db.Model(&model.Order{}).Where("store_id = ?", f.store.ID).Count(&orderCount)
	if orderCount != 0 {
		t.Errorf("rejected order persisted %d orders", orderCount)
	}
}

func TestDiscountExceedingSubtotalRejected(t *testing.T) {
	db := requireIntegrationDB(t)
	f := newFixture(t, db, 3)

	req := f.orderRequest(2)
	req.DiscountAmount = decimal.RequireFromString("200.01")

	_, err := f.orders.Create(context.Background(), f.identity, req)
	appErr := apperr.From(err)
	if appErr == nil || appErr.Code != apperr.CodeInvalidDiscount {
		t.Fatalf("expected invalid-discount error, got %v", err)
	}

	if inv := f.currentInventory(t); inv.AvailableQuantity != 3 {
		t.Errorf("inventory mutated by rejected order: available = %d", inv.AvailableQuantity)
	}
}

func TestConcurrentOrdersNeverOversell(t *testing.T) {
	db := requireIntegrationDB(t)
	f := newFixture(t, db, 5)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.orders.Create(context.Background(), f.identity, f.orderRequest(3))
		}(i)
	}
	wg.Wait()

	var succeeded, rejected int
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		rejected++
		if appErr := apperr.From(err); appErr.Code != apperr.CodeInsufficientStock {
			t.Errorf("loser failed with %d, want insufficient stock: %v", appErr.Code, err)
		}
	}
	if succeeded != 1 || rejected != 1 {
		t.Fatalf("succeeded=%d rejected=%d, want exactly one of each", succeeded, rejected)
	}

	inv := f.currentInventory(t)
	if inv.Quantity != 2 || inv.AvailableQuantity != 2 {
		t.Errorf("final inventory = %d/%d, want 2/2", inv.Quantity, inv.AvailableQuantity)
	}

	var movementCount int64
	db.Model(&model.StockMovement{}).Where("store_id = ?", f.store.ID).Count(&movementCount)
	if movementCount != 1 {
		t.Errorf("movements = %d, want 1 (loser rolled back)", movementCount)
	}
}

func TestOrderNumbersUniquePerStore(t *testing.T) {
	db := requireIntegrationDB(t)
	f := newFixture(t, db, 100)

	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		order, err := f.orders.Create(context.Background(), f.identity, f.orderRequest(1))
		if err != nil {
			t.Fatalf("Create #%d: %v", i, err)
		}
		if seen[order.OrderNumber] {
			t.Fatalf("duplicate order number %s", order.OrderNumber)
		}
		seen[order.OrderNumber] = true
	}
}

func TestEmployeeCannotAdjustStock(t *testing.T) {
	db := requireIntegrationDB(t)
	f := newFixture(t, db, 3)

	employee := &tenant.Identity{UserID: 2, StoreID: &f.store.ID, Username: "clerk", Role: model.RoleEmployee}
	if err := tenant.Authorize(employee.Role, tenant.ActionInventoryAdjust); err == nil {
		t.Fatal("employee allowed to adjust stock")
	}

	// Order creation stays open to employees
	if _, err := f.orders.Create(context.Background(), employee, f.orderRequest(1)); err != nil {
		t.Fatalf("employee order rejected: %v", err)
	}
}

func TestDebtPaymentLifecycle(t *testing.T) {
	db := requireIntegrationDB(t)
	f := newFixture(t, db, 3)

	req := f.orderRequest(2)
	req.PaymentType = model.PaymentCredit
	order, err := f.orders.Create(context.Background(), f.identity, req)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	var debt model.Debt
	if err := db.Where("order_id = ?", order.ID).First(&debt).Error; err != nil {
		t.Fatalf("load debt: %v", err)
	}

	partial, err := f.debts.Pay(f.identity, debt.ID, decimal.RequireFromString("50.00"))
	if err != nil {
		t.Fatalf("partial payment: %v", err)
	}
	if partial.Status != model.DebtPartiallyPaid {
		t.Errorf("status = %s, want PARTIALLY_PAID", partial.Status)
	}
	if !partial.UnpaidAmount.Equal(decimal.RequireFromString("150.00")) {
		t.Errorf("unpaid = %s, want 150.00", partial.UnpaidAmount)
	}
	if !partial.PaidAmount.Add(partial.UnpaidAmount).Equal(partial.OriginalAmount) {
		t.Errorf("paid+unpaid=%s, want %s", partial.PaidAmount.Add(partial.UnpaidAmount), partial.OriginalAmount)
	}

	// Overpayment of the remainder is rejected
	if _, err := f.debts.Pay(f.identity, debt.ID, decimal.RequireFromString("150.01")); err == nil {
		t.Fatal("overpayment accepted")
	}

	settled, err := f.debts.Pay(f.identity, debt.ID, decimal.RequireFromString("150.00"))
	if err != nil {
		t.Fatalf("final payment: %v", err)
	}
	if settled.Status != model.DebtPaid || !settled.UnpaidAmount.IsZero() {
		t.Errorf("settled = %s/%s, want PAID/0", settled.Status, settled.UnpaidAmount)
	}

	// A settled debt takes no further payments
	_, err = f.debts.Pay(f.identity, debt.ID, decimal.RequireFromString("1.00"))
	if appErr := apperr.From(err); appErr == nil || appErr.Code != apperr.CodeConflict {
		t.Fatalf("payment on settled debt: expected conflict, got %v", err)
	}
}

func TestOverdueDerivedOnEveryReadPath(t *testing.T) {
	db := requireIntegrationDB(t)
	f := newFixture(t, db, 3)

	debt := model.Debt{
		StoreID:        f.store.ID,
		CustomerID:     f.customer.ID,
		OriginalAmount: decimal.RequireFromString("100.00"),
		PaidAmount:     decimal.Zero,
		UnpaidAmount:   decimal.RequireFromString("100.00"),
		Status:         model.DebtUnpaid,
		DueDate:        time.Now().AddDate(0, 0, -5),
	}
	if err := db.Create(&debt).Error; err != nil {
		t.Fatalf("create debt: %v", err)
	}

	got, err := f.debts.Get(f.identity, debt.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != model.DebtOverdue {
		t.Errorf("Get status = %s, want OVERDUE", got.Status)
	}

	listed, _, err := f.debts.List(f.identity, false, true, 1, 20)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(listed) != 1 || listed[0].Status != model.DebtOverdue {
		t.Errorf("overdue list = %+v, want one OVERDUE debt", listed)
	}

	// Derivation is read-side only; the stored status must stay UNPAID.
	var stored model.Debt
	if err := db.First(&stored, debt.ID).Error; err != nil {
		t.Fatalf("reload debt: %v", err)
	}
	if stored.Status != model.DebtUnpaid {
		t.Errorf("stored status = %s, want UNPAID", stored.Status)
	}
}

func TestDebtPaymentCrossStoreRejected(t *testing.T) {
	db := requireIntegrationDB(t)
	creditor := newFixture(t, db, 3)
	attacker := newFixture(t, db, 3)

	req := creditor.orderRequest(1)
	req.PaymentType = model.PaymentCredit
	order, err := creditor.orders.Create(context.Background(), creditor.identity, req)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	var debt model.Debt
	if err := db.Where("order_id = ?", order.ID).First(&debt).Error; err != nil {
		t.Fatalf("load debt: %v", err)
	}

	_, err = attacker.debts.Pay(attacker.identity, debt.ID, decimal.RequireFromString("10.00"))
	if appErr := apperr.From(err); appErr == nil || appErr.Code != apperr.CodeCrossTenant {
		t.Fatalf("expected cross-tenant error, got %v", err)
	}
}

func TestStockInAndAdjust(t *testing.T) {
	db := requireIntegrationDB(t)
	f := newFixture(t, db, 0)

	err := db.Transaction(func(tx *gorm.DB) error {
		_, err := f.inventory.Increment(tx, "owner", &f.product, 10, model.MovementStockIn, MovementRef{}, "Acme Supply", "first delivery")
		return err
	})
	if err != nil {
		t.Fatalf("stock in: %v", err)
	}
	if inv := f.currentInventory(t); inv.Quantity != 10 || inv.AvailableQuantity != 10 {
		t.Fatalf("after stock-in inventory = %d/%d, want 10/10", inv.Quantity, inv.AvailableQuantity)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		_, err := f.inventory.Adjust(tx, "owner", &f.product, 7, "stock take")
		return err
	})
	if err != nil {
		t.Fatalf("adjust: %v", err)
	}
	if inv := f.currentInventory(t); inv.Quantity != 7 || inv.AvailableQuantity != 7 {
		t.Fatalf("after adjust inventory = %d/%d, want 7/7", inv.Quantity, inv.AvailableQuantity)
	}

	var movements []model.StockMovement
	if err := db.Where("store_id = ?", f.store.ID).Order("id").Find(&movements).Error; err != nil {
		t.Fatalf("load movements: %v", err)
	}
	if len(movements) != 2 {
		t.Fatalf("movements = %d, want 2", len(movements))
	}
	if movements[0].Type != model.MovementStockIn || movements[0].Quantity != 10 {
		t.Errorf("first movement = %s %d, want STOCK_IN 10", movements[0].Type, movements[0].Quantity)
	}
	if movements[0].SupplierName != "Acme Supply" {
		t.Errorf("supplier = %q, want Acme Supply", movements[0].SupplierName)
	}
	if movements[1].Type != model.MovementAdjust || movements[1].Quantity != -3 {
		t.Errorf("second movement = %s %d, want ADJUST -3", movements[1].Type, movements[1].Quantity)
	}
}
