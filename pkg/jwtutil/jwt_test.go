package jwtutil

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/TrongPhucX5/BizFlowProject/pkg/config"
)

func testManager(accessTTL, refreshTTL time.Duration) *Manager {
	return NewManager(&config.JWTConfig{
		SigningKey: "test-signing-key",
		AccessTTL:  accessTTL,
		RefreshTTL: refreshTTL,
	})
}

func TestAccessTokenRoundTrip(t *testing.T) {
	m := testManager(time.Hour, 24*time.Hour)
	storeID := uint(42)

	token, err := m.GenerateAccessToken("alice", 7, &storeID, "OWNER")
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	claims, err := m.ValidateAccessToken(token)
	if err != nil {
		t.Fatalf("ValidateAccessToken: %v", err)
	}
	if claims.Subject != "alice" {
		t.Errorf("subject = %q, want alice", claims.Subject)
	}
	if claims.UserID != 7 {
		t.Errorf("user id = %d, want 7", claims.UserID)
	}
	if claims.StoreID == nil || *claims.StoreID != 42 {
		t.Errorf("store id = %v, want 42", claims.StoreID)
	}
	if claims.Role != "OWNER" {
		t.Errorf("role = %q, want OWNER", claims.Role)
	}
	if claims.TokenType != AccessToken {
		t.Errorf("token type = %q, want access", claims.TokenType)
	}
}

func TestAccessTokenWithoutStore(t *testing.T) {
	m := testManager(time.Hour, 24*time.Hour)

	token, err := m.GenerateAccessToken("sysadmin", 1, nil, "ADMIN")
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	claims, err := m.ValidateAccessToken(token)
	if err != nil {
		t.Fatalf("ValidateAccessToken: %v", err)
	}
	if claims.StoreID != nil {
		t.Errorf("store id = %v, want nil", claims.StoreID)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	m := testManager(-time.Minute, 24*time.Hour)

	token, err := m.GenerateAccessToken("alice", 7, nil, "OWNER")
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	if _, err := m.ValidateAccessToken(token); !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
}

func TestTamperedTokenRejected(t *testing.T) {
	m := testManager(time.Hour, 24*time.Hour)

	token, err := m.GenerateAccessToken("alice", 7, nil, "OWNER")
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	// Flip a character in the payload segment
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token shape: %q", token)
	}
	payload := []byte(parts[1])
	if payload[0] == 'A' {
		payload[0] = 'B'
	} else {
		payload[0] = 'A'
	}
	tampered := parts[0] + "." + string(payload) + "." + parts[2]

	if _, err := m.ValidateAccessToken(tampered); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestWrongSigningKeyRejected(t *testing.T) {
	issuer := testManager(time.Hour, 24*time.Hour)
	verifier := NewManager(&config.JWTConfig{
		SigningKey: "a-different-key",
		AccessTTL:  time.Hour,
		RefreshTTL: 24 * time.Hour,
	})

	token, err := issuer.GenerateAccessToken("alice", 7, nil, "OWNER")
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	if _, err := verifier.ValidateAccessToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestRefreshTokenNotAcceptedAsAccess(t *testing.T) {
	m := testManager(time.Hour, 24*time.Hour)

	refresh, err := m.GenerateRefreshToken("alice", 7, nil, "OWNER")
	if err != nil {
		t.Fatalf("GenerateRefreshToken: %v", err)
	}

	if _, err := m.ValidateAccessToken(refresh); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("refresh token accepted as access token, err = %v", err)
	}
}

func TestAccessTokenNotAcceptedAsRefresh(t *testing.T) {
	m := testManager(time.Hour, 24*time.Hour)

	access, err := m.GenerateAccessToken("alice", 7, nil, "OWNER")
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	if _, err := m.ValidateRefreshToken(access); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("access token accepted as refresh token, err = %v", err)
	}
}

func TestTokenPairTypes(t *testing.T) {
	m := testManager(time.Hour, 24*time.Hour)

	access, refresh, err := m.GenerateTokenPair("alice", 7, nil, "OWNER")
	if err != nil {
		t.Fatalf("GenerateTokenPair: %v", err)
	}
	if _, err := m.ValidateAccessToken(access); err != nil {
		t.Errorf("access token invalid: %v", err)
	}
	if _, err := m.ValidateRefreshToken(refresh); err != nil {
		t.Errorf("refresh token invalid: %v", err)
	}
}
