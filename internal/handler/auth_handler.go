package handler

import (
	"net/http"
	"time"

	"github.com/TrongPhucX5/BizFlowProject/internal/model"
	"github.com/TrongPhucX5/BizFlowProject/pkg/database"
	"github.com/TrongPhucX5/BizFlowProject/pkg/logger"
	"github.com/TrongPhucX5/BizFlowProject/prometheus"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// RegisterRequest creates a store and its OWNER account together
type RegisterRequest struct {
	Username  string `json:"username" validate:"required,min=3,max=30"`
	Password  string `json:"password" validate:"required,min=6"`
	FullName  string `json:"full_name" validate:"required"`
	Email     string `json:"email" validate:"omitempty,email"`
	Phone     string `json:"phone"`
	StoreName string `json:"store_name" validate:"required"`
}

// LoginRequest carries the credentials
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest carries the refresh token only
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// Register handles store + owner registration
func Register(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RegisterCounter.Inc()

	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse registration request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		prometheus.RecordAuthError("incomplete_registration")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var existing model.User
	if err := database.GetDB().Where("username = ?", req.Username).First(&existing).Error; err == nil {
		log.Warn("Username already taken", zap.String("username", req.Username))
		prometheus.RecordAuthError("username_taken")
		return c.JSON(http.StatusConflict, echo.Map{"error": "username already registered"})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		prometheus.RecordAuthError("password_hash_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}

	var user model.User
	txErr := database.GetDB().Transaction(func(tx *gorm.DB) error {
		store := model.Store{
			Name:      req.StoreName,
			OwnerName: req.FullName,
			Phone:     req.Phone,
			Status:    model.StoreActive,
		}
		if err := tx.Create(&store).Error; err != nil {
			return err
		}

		user = model.User{
			StoreID:  &store.ID,
			Username: req.Username,
			Password: string(hashed),
			FullName: req.FullName,
			Email:    req.Email,
			Phone:    req.Phone,
			Role:     model.RoleOwner,
			Status:   model.UserActive,
		}
		return tx.Create(&user).Error
	})
	if txErr != nil {
		log.Error("Failed to create store and owner", zap.Error(txErr))
		prometheus.RecordAuthError("registration_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}

	log.Info("Store registered",
		zap.String("username", user.Username),
		zap.Uint("store_id", *user.StoreID))
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "registered successfully",
		"user": echo.Map{
			"id":       user.ID,
			"username": user.Username,
			"store_id": user.StoreID,
			"role":     user.Role,
		},
	})
}

// Login verifies credentials and issues the access + refresh token pair
func Login(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.LoginCounter.Inc()

	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse login request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var user model.User
	if err := database.GetDB().Where("username = ?", req.Username).First(&user).Error; err != nil {
		log.Warn("User not found", zap.String("username", req.Username))
		prometheus.RecordAuthError("user_not_found")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		log.Warn("Invalid password", zap.String("username", req.Username))
		prometheus.RecordAuthError("invalid_password")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	if !user.IsActive() {
		log.Warn("Inactive user attempted login",
			zap.String("username", req.Username),
			zap.String("status", string(user.Status)))
		prometheus.RecordAuthError("user_inactive")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "account is not active"})
	}

	access, refresh, err := jwtManager.GenerateTokenPair(user.Username, user.ID, user.StoreID, string(user.Role))
	if err != nil {
		log.Error("Failed to generate tokens", zap.Error(err))
		prometheus.RecordAuthError("token_generation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}

	now := time.Now()
	if err := database.GetDB().Model(&user).Update("last_login_at", now).Error; err != nil {
		// Login still succeeds; the timestamp is best effort.
		log.Warn("Failed to update last login time", zap.Error(err))
	}

	prometheus.TokensIssuedCounter.Inc()
	log.Info("User logged in",
		zap.String("username", user.Username),
		zap.String("role", string(user.Role)))

	return c.JSON(http.StatusOK, echo.Map{
		"access_token":  access,
		"refresh_token": refresh,
		"user": echo.Map{
			"id":        user.ID,
			"username":  user.Username,
			"full_name": user.FullName,
			"store_id":  user.StoreID,
			"role":      user.Role,
		},
	})
}

// Refresh mints a new access token from a valid refresh token. The refresh
// token itself never grants resource access.
func Refresh(c echo.Context) error {
	log := logger.FromEcho(c)

	var req RefreshRequest
	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token is required"})
	}

	claims, err := jwtManager.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		log.Warn("Invalid refresh token", zap.Error(err))
		prometheus.RecordAuthError("invalid_refresh_token")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired refresh token"})
	}

	// Revocation check: the account must still exist and be active.
	var user model.User
	if err := database.GetDB().Where("username = ?", claims.Subject).First(&user).Error; err != nil {
		log.Warn("User from refresh token not found", zap.String("username", claims.Subject))
		prometheus.RecordAuthError("user_not_found")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired refresh token"})
	}
	if !user.IsActive() {
		prometheus.RecordAuthError("user_inactive")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "account is not active"})
	}

	access, err := jwtManager.GenerateAccessToken(user.Username, user.ID, user.StoreID, string(user.Role))
	if err != nil {
		log.Error("Failed to generate access token", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}

	prometheus.TokensIssuedCounter.Inc()
	return c.JSON(http.StatusOK, echo.Map{"access_token": access})
}
