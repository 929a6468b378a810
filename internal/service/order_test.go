package service

import (
	"errors"
	"os"
	"regexp"
	"testing"
	"time"

	"github.com/TrongPhucX5/BizFlowProject/internal/apperr"
	"github.com/TrongPhucX5/BizFlowProject/internal/model"
	"github.com/TrongPhucX5/BizFlowProject/pkg/config"
	"github.com/TrongPhucX5/BizFlowProject/prometheus"
	"github.com/shopspring/decimal"
)

func TestMain(m *testing.M) {
	prometheus.InitMetrics(&config.Config{
		Metrics: config.MetricsConfig{Prefix: "servicetest"},
	})
	os.Exit(m.Run())
}

func TestCalculateTotal(t *testing.T) {
	cases := []struct {
		name     string
		subtotal string
		discount string
		want     string
		wantErr  bool
	}{
		{"no discount", "200", "0", "200", false},
		{"partial discount", "200", "50", "150", false},
		{"discount equals subtotal", "200", "200", "0", false},
		{"discount exceeds subtotal", "200", "200.01", "", true},
		{"cents preserved", "99.99", "0.99", "99", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			subtotal := decimal.RequireFromString(tc.subtotal)
			discount := decimal.RequireFromString(tc.discount)

			total, err := calculateTotal(subtotal, discount)
			if tc.wantErr {
				var appErr *apperr.Error
				if !errors.As(err, &appErr) || appErr.Code != apperr.CodeInvalidDiscount {
					t.Fatalf("expected invalid-discount error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("calculateTotal: %v", err)
			}
			if !total.Equal(decimal.RequireFromString(tc.want)) {
				t.Errorf("total = %s, want %s", total, tc.want)
			}
		})
	}
}

func TestGenerateOrderNumberFormat(t *testing.T) {
	now := time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC)
	number := generateOrderNumber(17, now)

	pattern := regexp.MustCompile(`^ORD-17-20250314-[0-9a-f]{8}$`)
	if !pattern.MatchString(number) {
		t.Errorf("order number %q does not match expected shape", number)
	}
}

func TestGenerateOrderNumberUniqueness(t *testing.T) {
	now := time.Now()
	seen := make(map[string]bool)
	for i := 0; i < 10000; i++ {
		n := generateOrderNumber(1, now)
		if seen[n] {
			t.Fatalf("duplicate order number after %d draws: %s", i, n)
		}
		seen[n] = true
	}
}

func TestPaymentTypeValidation(t *testing.T) {
	for _, pt := range []model.PaymentType{model.PaymentCash, model.PaymentCredit, model.PaymentTransfer} {
		if !pt.Valid() {
			t.Errorf("%s should be valid", pt)
		}
	}
	if model.PaymentType("BARTER").Valid() {
		t.Error("unknown payment type should be invalid")
	}
}

func TestOffsetClampsPage(t *testing.T) {
	if got := offset(0, 20); got != 0 {
		t.Errorf("offset(0, 20) = %d, want 0", got)
	}
	if got := offset(1, 20); got != 0 {
		t.Errorf("offset(1, 20) = %d, want 0", got)
	}
	if got := offset(3, 20); got != 40 {
		t.Errorf("offset(3, 20) = %d, want 40", got)
	}
}
