package jwtutil

import (
	"errors"
	"fmt"
	"time"

	"github.com/TrongPhucX5/BizFlowProject/pkg/config"
	"github.com/golang-jwt/jwt/v5"
)

// TokenType distinguishes the two credentials issued at login. Refresh
// tokens can only mint new access tokens, never reach resources.
type TokenType string

const (
	AccessToken  TokenType = "access"
	RefreshToken TokenType = "refresh"
)

var (
	// ErrExpiredToken means signature and structure were fine but the
	// token is past its expiry.
	ErrExpiredToken = errors.New("token expired")
	// ErrInvalidToken covers bad signature, tampering, malformed
	// structure and wrong token type.
	ErrInvalidToken = errors.New("invalid token")
)

// UserClaims are the JWT claims carried by both token kinds. StoreID is nil
// for system-wide ADMIN accounts.
type UserClaims struct {
	UserID    uint      `json:"user_id"`
	StoreID   *uint     `json:"store_id,omitempty"`
	Role      string    `json:"role"`
	TokenType TokenType `json:"token_type"`
	jwt.RegisteredClaims
}

// Manager issues and verifies signed tokens with a process-wide symmetric key.
// Verification is pure: no database access.
type Manager struct {
	signingKey []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewManager creates a token manager from configuration
func NewManager(cfg *config.JWTConfig) *Manager {
	return &Manager{
		signingKey: []byte(cfg.SigningKey),
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
	}
}

// GenerateAccessToken issues a short-lived access token
func (m *Manager) GenerateAccessToken(username string, userID uint, storeID *uint, role string) (string, error) {
	return m.generate(username, userID, storeID, role, AccessToken, m.accessTTL)
}

// GenerateRefreshToken issues a longer-lived refresh token
func (m *Manager) GenerateRefreshToken(username string, userID uint, storeID *uint, role string) (string, error) {
	return m.generate(username, userID, storeID, role, RefreshToken, m.refreshTTL)
}

// GenerateTokenPair issues both tokens for a successful login
func (m *Manager) GenerateTokenPair(username string, userID uint, storeID *uint, role string) (access string, refresh string, err error) {
	access, err = m.GenerateAccessToken(username, userID, storeID, role)
	if err != nil {
		return "", "", err
	}
	refresh, err = m.GenerateRefreshToken(username, userID, storeID, role)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

func (m *Manager) generate(username string, userID uint, storeID *uint, role string, kind TokenType, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := UserClaims{
		UserID:    userID,
		StoreID:   storeID,
		Role:      role,
		TokenType: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.signingKey)
}

// ValidateAccessToken verifies signature, expiry and token type for a
// per-request credential
func (m *Manager) ValidateAccessToken(tokenString string) (*UserClaims, error) {
	return m.validate(tokenString, AccessToken)
}

// ValidateRefreshToken verifies a refresh credential. A valid access token
// is rejected here so it cannot be replayed into the refresh endpoint.
func (m *Manager) ValidateRefreshToken(tokenString string) (*UserClaims, error) {
	return m.validate(tokenString, RefreshToken)
}

func (m *Manager) validate(tokenString string, want TokenType) (*UserClaims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&UserClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return m.signingKey, nil
		},
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*UserClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != want {
		return nil, fmt.Errorf("%w: wrong token type", ErrInvalidToken)
	}

	return claims, nil
}
