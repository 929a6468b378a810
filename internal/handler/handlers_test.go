package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/TrongPhucX5/BizFlowProject/internal/apperr"
	"github.com/labstack/echo/v4"
)

func testContext(target string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestPageParams(t *testing.T) {
	cases := []struct {
		target   string
		wantPage int
		wantSize int
	}{
		{"/?page=2&size=50", 2, 50},
		{"/", 1, 20},
		{"/?page=0&size=0", 1, 20},
		{"/?page=-3&size=500", 1, 20},
		{"/?page=abc&size=xyz", 1, 20},
		{"/?page=1&size=100", 1, 100},
		{"/?page=1&size=101", 1, 20},
	}
	for _, tc := range cases {
		c, _ := testContext(tc.target)
		page, size := pageParams(c)
		if page != tc.wantPage || size != tc.wantSize {
			t.Errorf("%s: page/size = %d/%d, want %d/%d", tc.target, page, size, tc.wantPage, tc.wantSize)
		}
	}
}

func decodeErrorBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return body
}

func TestRespondErrorCrossTenantHidesExistence(t *testing.T) {
	c, rec := testContext("/")
	if err := respondError(c, apperr.CrossTenant("product", 12)); err != nil {
		t.Fatalf("respondError: %v", err)
	}

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	body := decodeErrorBody(t, rec)
	if body["code"].(float64) != apperr.CodeNotFound {
		t.Errorf("code = %v, want %d", body["code"], apperr.CodeNotFound)
	}
	if body["error"] != "resource not found" {
		t.Errorf("error = %q, leaks cross-store detail", body["error"])
	}
}

func TestRespondErrorInsufficientStockIsRetryable(t *testing.T) {
	c, rec := testContext("/")
	if err := respondError(c, apperr.InsufficientStock("Milk", 1, 3)); err != nil {
		t.Fatalf("respondError: %v", err)
	}

	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
	body := decodeErrorBody(t, rec)
	if body["retryable"] != true {
		t.Error("insufficient stock response should be retryable")
	}
}

func TestRespondErrorUnknownBecomesInternal(t *testing.T) {
	c, rec := testContext("/")
	if err := respondError(c, assertableError("pq: out of shared memory")); err != nil {
		t.Fatalf("respondError: %v", err)
	}

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	body := decodeErrorBody(t, rec)
	if body["error"] != "internal server error" {
		t.Errorf("error = %q, leaks driver detail", body["error"])
	}
}

type assertableError string

func (e assertableError) Error() string { return string(e) }
