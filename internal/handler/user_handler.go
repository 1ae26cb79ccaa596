package handler

import (
	"errors"
	"net/http"

	"crm-service/internal/model"
	"crm-service/pkg/database"
	"crm-service/pkg/logger"
	"crm-service/pkg/tenantctx"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserHandler serves user administration within the caller's tenant
type UserHandler struct {
	db *gorm.DB
}

func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{db: db}
}

// Create registers a new user in the caller's tenant. The stable identity
// is a generated UUID; the login name only has to be unique.
func (h *UserHandler) Create(c echo.Context) error {
	log := logger.FromEcho(c)

	if !requirePermission(c, "user", model.ActionWrite) {
		return accessDenied(c)
	}

	var req struct {
		UserID     string  `json:"user_id"`
		Password   string  `json:"password"`
		UserName   string  `json:"user_name"`
		Email      string  `json:"email"`
		BranchID   *string `json:"branch_id"`
		GroupID    *string `json:"group_id"`
		PositionID *string `json:"position_id"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.UserID == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "user_id and password are required"})
	}

	ctx := c.Request().Context()
	tenantID, ok := tenantctx.TenantID(ctx)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no tenant context"})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("failed to hash password", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create user"})
	}

	user := model.User{
		EsntlID:    uuid.New().String(),
		UserID:     req.UserID,
		Password:   string(hashed),
		UserName:   req.UserName,
		Email:      req.Email,
		TenantID:   tenantID,
		BranchID:   req.BranchID,
		GroupID:    req.GroupID,
		PositionID: req.PositionID,
		Active:     true,
	}
	if err := h.db.WithContext(ctx).Create(&user).Error; err != nil {
		log.Error("failed to create user", zap.Error(err))
		return c.JSON(http.StatusConflict, echo.Map{"error": "login name already taken"})
	}

	log.Info("user created",
		zap.String("user_id", user.UserID),
		zap.String("tenant_id", tenantID))
	return c.JSON(http.StatusCreated, user)
}

// Get fetches one user within the caller's tenant
func (h *UserHandler) Get(c echo.Context) error {
	if !requirePermission(c, "user", model.ActionRead) {
		return accessDenied(c)
	}

	var user model.User
	err := database.Scoped(c.Request().Context(), h.db).
		First(&user, "esntl_id = ?", c.Param("id")).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch user"})
	}
	return c.JSON(http.StatusOK, user)
}

// List returns the caller tenant's users
func (h *UserHandler) List(c echo.Context) error {
	if !requirePermission(c, "user", model.ActionRead) {
		return accessDenied(c)
	}

	var users []model.User
	if err := database.Scoped(c.Request().Context(), h.db).Find(&users).Error; err != nil {
		logger.FromEcho(c).Error("failed to list users", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list users"})
	}
	return c.JSON(http.StatusOK, echo.Map{"users": users, "count": len(users)})
}
