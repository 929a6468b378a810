package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatusMapping(t *testing.T) {
	cases := []struct {
		code int
		want int
	}{
		{CodeUnauthorized, http.StatusUnauthorized},
		{CodeForbidden, http.StatusForbidden},
		{CodeValidation, http.StatusBadRequest},
		{CodeNotFound, http.StatusNotFound},
		{CodeCrossTenant, http.StatusNotFound},
		{CodeNoInventory, http.StatusBadRequest},
		{CodeInsufficientStock, http.StatusConflict},
		{CodeInvalidDiscount, http.StatusBadRequest},
		{CodeConflict, http.StatusConflict},
		{CodeInternal, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		got := New(tc.code, "x").HTTPStatus()
		if got != tc.want {
			t.Errorf("code %d: status = %d, want %d", tc.code, got, tc.want)
		}
	}
}

func TestCrossTenantRendersAsNotFound(t *testing.T) {
	err := CrossTenant("product", 9)

	if err.Code != CodeCrossTenant {
		t.Errorf("internal code = %d, want %d", err.Code, CodeCrossTenant)
	}
	if err.PublicCode() != CodeNotFound {
		t.Errorf("public code = %d, want %d", err.PublicCode(), CodeNotFound)
	}
	if err.PublicMessage() != "resource not found" {
		t.Errorf("public message = %q, leaks ownership detail", err.PublicMessage())
	}
	if err.HTTPStatus() != http.StatusNotFound {
		t.Errorf("status = %d, want 404", err.HTTPStatus())
	}
}

func TestInternalHidesDetail(t *testing.T) {
	err := Internal(errors.New("pq: connection refused"))

	if err.PublicMessage() != "internal server error" {
		t.Errorf("public message = %q, leaks internals", err.PublicMessage())
	}
	if err.PublicCode() != CodeInternal {
		t.Errorf("public code = %d, want %d", err.PublicCode(), CodeInternal)
	}
}

func TestRetryable(t *testing.T) {
	if !InsufficientStock("Milk", 1, 3).Retryable() {
		t.Error("insufficient stock should be retryable")
	}
	if !Conflict("order number collision").Retryable() {
		t.Error("conflict should be retryable")
	}
	if Validation("bad input").Retryable() {
		t.Error("validation failure should not be retryable")
	}
	if NotFound("customer", 5).Retryable() {
		t.Error("not-found should not be retryable")
	}
}

func TestFromPassesThroughWrapped(t *testing.T) {
	orig := NotFound("order", 3)
	wrapped := fmt.Errorf("loading order: %w", orig)

	got := From(wrapped)
	if got.Code != CodeNotFound {
		t.Errorf("code = %d, want %d", got.Code, CodeNotFound)
	}
}

func TestFromWrapsUnknownAsInternal(t *testing.T) {
	got := From(errors.New("boom"))
	if got.Code != CodeInternal {
		t.Errorf("code = %d, want %d", got.Code, CodeInternal)
	}
}

func TestFromNil(t *testing.T) {
	if From(nil) != nil {
		t.Error("From(nil) should be nil")
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := Internal(cause)
	if !errors.Is(err, cause) {
		t.Error("Internal should unwrap to its cause")
	}
}
