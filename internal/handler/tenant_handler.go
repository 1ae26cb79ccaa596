package handler

import (
	"errors"
	"net/http"

	"crm-service/internal/middleware"
	"crm-service/internal/model"
	"crm-service/pkg/logger"
	"crm-service/pkg/tenantctx"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TenantHandler serves tenant administration. Tenants are global rows, so
// the endpoints are restricted to callers of the SYSTEM tenant instead of
// being row-scoped.
type TenantHandler struct {
	db *gorm.DB
}

func NewTenantHandler(db *gorm.DB) *TenantHandler {
	return &TenantHandler{db: db}
}

func requireSystemTenant(c echo.Context) bool {
	principal, ok := middleware.PrincipalFromEcho(c)
	return ok && principal.HasTenant(tenantctx.SystemTenantID)
}

// Create provisions a new tenant partition
func (h *TenantHandler) Create(c echo.Context) error {
	log := logger.FromEcho(c)

	if !requireSystemTenant(c) {
		return accessDenied(c)
	}

	var req struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.ID == "" || req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "id and name are required"})
	}
	if req.ID == tenantctx.SystemTenantID {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "tenant id is reserved"})
	}

	tenant := model.Tenant{
		ID:          req.ID,
		Name:        req.Name,
		Description: req.Description,
		Active:      true,
	}
	if err := h.db.WithContext(c.Request().Context()).Create(&tenant).Error; err != nil {
		log.Error("failed to create tenant", zap.Error(err))
		return c.JSON(http.StatusConflict, echo.Map{"error": "failed to create tenant"})
	}

	log.Info("tenant created", zap.String("tenant_id", tenant.ID))
	return c.JSON(http.StatusCreated, tenant)
}

// List returns all tenants
func (h *TenantHandler) List(c echo.Context) error {
	if !requireSystemTenant(c) {
		return accessDenied(c)
	}

	var tenants []model.Tenant
	if err := h.db.WithContext(c.Request().Context()).Find(&tenants).Error; err != nil {
		logger.FromEcho(c).Error("failed to list tenants", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list tenants"})
	}
	return c.JSON(http.StatusOK, echo.Map{"tenants": tenants, "count": len(tenants)})
}

// Get fetches one tenant
func (h *TenantHandler) Get(c echo.Context) error {
	if !requireSystemTenant(c) {
		return accessDenied(c)
	}

	var tenant model.Tenant
	err := h.db.WithContext(c.Request().Context()).First(&tenant, "id = ?", c.Param("id")).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "tenant not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch tenant"})
	}
	return c.JSON(http.StatusOK, tenant)
}
