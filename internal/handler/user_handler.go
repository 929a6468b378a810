package handler

import (
	"net/http"

	"github.com/TrongPhucX5/BizFlowProject/internal/apperr"
	"github.com/TrongPhucX5/BizFlowProject/internal/model"
	"github.com/TrongPhucX5/BizFlowProject/internal/tenant"
	"github.com/TrongPhucX5/BizFlowProject/pkg/database"
	"github.com/TrongPhucX5/BizFlowProject/pkg/logger"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// CreateUserRequest defines the structure for employee account creation.
// The store and the EMPLOYEE role come from the caller's identity and the
// endpoint itself, never from the body.
type CreateUserRequest struct {
	Username string `json:"username" validate:"required,min=3,max=30"`
	Password string `json:"password" validate:"required,min=6"`
	FullName string `json:"full_name" validate:"required"`
	Email    string `json:"email" validate:"omitempty,email"`
	Phone    string `json:"phone"`
}

// CreateUser handles creating an EMPLOYEE account in the caller's store
func CreateUser(c echo.Context) error {
	log := logger.FromEcho(c)

	id, err := tenant.FromContext(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := tenant.Authorize(id.Role, tenant.ActionUserWrite); err != nil {
		return respondError(c, err)
	}
	storeID, err := id.Store()
	if err != nil {
		return respondError(c, err)
	}

	var req CreateUserRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data", "code": apperr.CodeValidation})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error(), "code": apperr.CodeValidation})
	}

	var count int64
	database.GetDB().Model(&model.User{}).Where("username = ?", req.Username).Count(&count)
	if count > 0 {
		log.Warn("Username already taken", zap.String("username", req.Username))
		return c.JSON(http.StatusConflict, echo.Map{"error": "username already registered", "code": apperr.CodeConflict})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		return respondError(c, apperr.Internal(err))
	}

	user := model.User{
		StoreID:  &storeID,
		Username: req.Username,
		Password: string(hashed),
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
		Role:     model.RoleEmployee,
		Status:   model.UserActive,
	}
	if err := database.GetDB().Create(&user).Error; err != nil {
		log.Error("Failed to create user", zap.Error(err))
		return respondError(c, apperr.Internal(err))
	}

	log.Info("Employee account created",
		zap.String("username", user.Username),
		zap.Uint("store_id", storeID),
		zap.String("created_by", id.Username))
	return c.JSON(http.StatusCreated, user)
}

// ListUsers handles retrieving the store's accounts
func ListUsers(c echo.Context) error {
	id, err := tenant.FromContext(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := tenant.Authorize(id.Role, tenant.ActionUserRead); err != nil {
		return respondError(c, err)
	}
	storeID, err := id.Store()
	if err != nil {
		return respondError(c, err)
	}

	query := database.GetDB().Model(&model.User{}).Where("store_id = ?", storeID)

	page, size := pageParams(c)
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return respondError(c, apperr.Internal(err))
	}

	var users []model.User
	if err := query.Order("id").Offset((page - 1) * size).Limit(size).Find(&users).Error; err != nil {
		return respondError(c, apperr.Internal(err))
	}

	return c.JSON(http.StatusOK, pagedResponse(users, total, page, size))
}
