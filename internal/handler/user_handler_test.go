package handler

import (
	"net/http"
	"testing"

	"github.com/TrongPhucX5/BizFlowProject/internal/apperr"
	"github.com/TrongPhucX5/BizFlowProject/internal/model"
	"github.com/TrongPhucX5/BizFlowProject/internal/tenant"
)

func TestCreateUserRequiresAuthentication(t *testing.T) {
	c, rec := testContext("/api/users")

	if err := CreateUser(c); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestCreateUserRejectsEmployee(t *testing.T) {
	c, rec := testContext("/api/users")
	storeID := uint(7)
	tenant.Install(c, &tenant.Identity{UserID: 2, StoreID: &storeID, Username: "clerk", Role: model.RoleEmployee})

	if err := CreateUser(c); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
	body := decodeErrorBody(t, rec)
	if code, _ := body["code"].(float64); int(code) != apperr.CodeForbidden {
		t.Errorf("code = %v, want %d", body["code"], apperr.CodeForbidden)
	}
}

func TestListUsersRejectsEmployee(t *testing.T) {
	c, rec := testContext("/api/users")
	storeID := uint(7)
	tenant.Install(c, &tenant.Identity{UserID: 2, StoreID: &storeID, Username: "clerk", Role: model.RoleEmployee})

	if err := ListUsers(c); err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}
