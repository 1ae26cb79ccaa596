package handler

import (
	"errors"
	"net/http"

	"crm-service/internal/middleware"
	"crm-service/internal/model"
	"crm-service/pkg/database"
	"crm-service/pkg/logger"
	"crm-service/pkg/tenantctx"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RoleHandler serves role administration: creating roles, granting
// permissions to roles and assigning roles to users.
type RoleHandler struct {
	db *gorm.DB
}

func NewRoleHandler(db *gorm.DB) *RoleHandler {
	return &RoleHandler{db: db}
}

// Create stores a new role for the caller's tenant
func (h *RoleHandler) Create(c echo.Context) error {
	log := logger.FromEcho(c)

	if !requirePermission(c, "role", model.ActionWrite) {
		return accessDenied(c)
	}

	var req struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		Description string `json:"description"`
		SortOrder   int    `json:"sort_order"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.ID == "" || req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "id and name are required"})
	}

	ctx := c.Request().Context()
	tenantID, ok := tenantctx.TenantID(ctx)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no tenant context"})
	}

	role := model.Role{
		ID:          req.ID,
		TenantID:    tenantID,
		Name:        req.Name,
		Description: req.Description,
		SortOrder:   req.SortOrder,
	}
	if err := h.db.WithContext(ctx).Create(&role).Error; err != nil {
		log.Error("failed to create role", zap.Error(err))
		return c.JSON(http.StatusConflict, echo.Map{"error": "failed to create role"})
	}

	log.Info("role created", zap.String("role_id", role.ID), zap.String("tenant_id", tenantID))
	return c.JSON(http.StatusCreated, role)
}

// List returns the caller tenant's roles
func (h *RoleHandler) List(c echo.Context) error {
	if !requirePermission(c, "role", model.ActionRead) {
		return accessDenied(c)
	}

	var roles []model.Role
	if err := database.Scoped(c.Request().Context(), h.db).Order("sort_order asc").Find(&roles).Error; err != nil {
		logger.FromEcho(c).Error("failed to list roles", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list roles"})
	}
	return c.JSON(http.StatusOK, echo.Map{"roles": roles, "count": len(roles)})
}

// GrantPermission links an existing permission to a role. The grant row
// records the granting user for auditing.
func (h *RoleHandler) GrantPermission(c echo.Context) error {
	log := logger.FromEcho(c)

	if !requirePermission(c, "role", model.ActionWrite) {
		return accessDenied(c)
	}
	principal, _ := middleware.PrincipalFromEcho(c)

	roleID := c.Param("id")
	var req struct {
		PermissionID uint `json:"permission_id"`
	}
	if err := c.Bind(&req); err != nil || req.PermissionID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "permission_id is required"})
	}

	ctx := c.Request().Context()

	var role model.Role
	if err := database.Scoped(ctx, h.db).First(&role, "id = ?", roleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "role not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch role"})
	}

	var permission model.Permission
	if err := database.Scoped(ctx, h.db).First(&permission, req.PermissionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "permission not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch permission"})
	}

	grant := model.RolePermission{
		RoleID:       role.ID,
		PermissionID: permission.ID,
		TenantID:     role.TenantID,
		GrantedBy:    principal.EsntlID,
	}
	if err := h.db.WithContext(ctx).Create(&grant).Error; err != nil {
		log.Error("failed to grant permission", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to grant permission"})
	}

	log.Info("permission granted",
		zap.String("role_id", role.ID),
		zap.String("permission", permission.FullCode()),
		zap.String("granted_by", principal.EsntlID))
	return c.JSON(http.StatusCreated, grant)
}

// AssignRole links a role to a user. The user's first assignment becomes
// the primary role; later assignments only take over when asked to.
func (h *RoleHandler) AssignRole(c echo.Context) error {
	log := logger.FromEcho(c)

	if !requirePermission(c, "role", model.ActionWrite) {
		return accessDenied(c)
	}
	principal, _ := middleware.PrincipalFromEcho(c)

	userEsntlID := c.Param("id")
	var req struct {
		RoleID  string `json:"role_id"`
		Primary bool   `json:"primary"`
	}
	if err := c.Bind(&req); err != nil || req.RoleID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "role_id is required"})
	}

	ctx := c.Request().Context()

	var user model.User
	if err := database.Scoped(ctx, h.db).First(&user, "esntl_id = ?", userEsntlID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch user"})
	}

	var role model.Role
	if err := database.Scoped(ctx, h.db).First(&role, "id = ?", req.RoleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "role not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch role"})
	}

	err := h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&model.UserRole{}).
			Where("user_esntl_id = ?", user.EsntlID).
			Count(&existing).Error; err != nil {
			return err
		}

		isPrimary := existing == 0
		if req.Primary && !isPrimary {
			if err := tx.Model(&model.UserRole{}).
				Where("user_esntl_id = ?", user.EsntlID).
				Update("is_primary", false).Error; err != nil {
				return err
			}
			isPrimary = true
		}

		return tx.Create(&model.UserRole{
			UserEsntlID: user.EsntlID,
			RoleID:      role.ID,
			TenantID:    user.TenantID,
			IsPrimary:   isPrimary,
			AssignedBy:  principal.EsntlID,
		}).Error
	})
	if err != nil {
		log.Error("failed to assign role", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to assign role"})
	}

	log.Info("role assigned",
		zap.String("user", user.EsntlID),
		zap.String("role_id", role.ID),
		zap.String("assigned_by", principal.EsntlID))
	return c.NoContent(http.StatusCreated)
}
