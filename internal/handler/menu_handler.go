package handler

import (
	"errors"
	"net/http"
	"strconv"

	"crm-service/internal/apperror"
	"crm-service/internal/middleware"
	"crm-service/internal/model"
	"crm-service/internal/service"
	"crm-service/pkg/logger"
	"crm-service/pkg/tenantctx"
	"crm-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// MenuHandler serves the menu catalog endpoints. Writes to the catalog
// drive permission generation through the menu service.
type MenuHandler struct {
	menus *service.MenuService
}

func NewMenuHandler(menus *service.MenuService) *MenuHandler {
	return &MenuHandler{menus: menus}
}

type menuCreateRequest struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Path        string `json:"path"`
	APIEndpoint string `json:"api_endpoint"`
	IconName    string `json:"icon_name"`
	ParentID    *uint  `json:"parent_id"`
	Order       int    `json:"order"`
	Visible     *bool  `json:"visible"`
	Description string `json:"description"`
}

type menuUpdateRequest struct {
	Name        *string `json:"name"`
	Type        *string `json:"type"`
	Path        *string `json:"path"`
	APIEndpoint *string `json:"api_endpoint"`
	IconName    *string `json:"icon_name"`
	ParentID    *uint   `json:"parent_id"`
	Order       *int    `json:"order"`
	Visible     *bool   `json:"visible"`
	Active      *bool   `json:"active"`
	Description *string `json:"description"`
}

// Create stores a new menu and generates its permissions
func (h *MenuHandler) Create(c echo.Context) error {
	log := logger.FromEcho(c)

	if !requirePermission(c, "menu", model.ActionWrite) {
		return accessDenied(c)
	}

	var req menuCreateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Code == "" || req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "code and name are required"})
	}

	menu := model.Menu{
		Code:        req.Code,
		Name:        req.Name,
		Type:        req.Type,
		Path:        req.Path,
		APIEndpoint: req.APIEndpoint,
		IconName:    req.IconName,
		ParentID:    req.ParentID,
		Order:       req.Order,
		Visible:     true,
		Active:      true,
		Description: req.Description,
	}
	if req.Visible != nil {
		menu.Visible = *req.Visible
	}

	if err := h.menus.Create(c.Request().Context(), &menu); err != nil {
		if errors.Is(err, apperror.ErrDuplicateKey) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "menu code already exists"})
		}
		log.Error("failed to create menu", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create menu"})
	}

	prometheus.RecordMenuOperation("create")
	return c.JSON(http.StatusCreated, menu)
}

// Update applies a partial update and regenerates permissions
func (h *MenuHandler) Update(c echo.Context) error {
	log := logger.FromEcho(c)

	if !requirePermission(c, "menu", model.ActionWrite) {
		return accessDenied(c)
	}

	id, err := menuID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid menu id"})
	}

	var req menuUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	menu, err := h.menus.Update(c.Request().Context(), id, service.MenuUpdate{
		Name:        req.Name,
		Type:        req.Type,
		Path:        req.Path,
		APIEndpoint: req.APIEndpoint,
		IconName:    req.IconName,
		ParentID:    req.ParentID,
		Order:       req.Order,
		Visible:     req.Visible,
		Active:      req.Active,
		Description: req.Description,
	})
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "menu not found"})
		}
		log.Error("failed to update menu", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update menu"})
	}

	prometheus.RecordMenuOperation("update")
	return c.JSON(http.StatusOK, menu)
}

// Get fetches one menu within the caller's tenant
func (h *MenuHandler) Get(c echo.Context) error {
	if !requirePermission(c, "menu", model.ActionRead) {
		return accessDenied(c)
	}

	id, err := menuID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid menu id"})
	}

	menu, err := h.menus.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "menu not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch menu"})
	}
	return c.JSON(http.StatusOK, menu)
}

// List returns the caller tenant's menus in catalog order
func (h *MenuHandler) List(c echo.Context) error {
	if !requirePermission(c, "menu", model.ActionRead) {
		return accessDenied(c)
	}

	menus, err := h.menus.List(c.Request().Context())
	if err != nil {
		logger.FromEcho(c).Error("failed to list menus", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list menus"})
	}
	return c.JSON(http.StatusOK, echo.Map{"menus": menus, "count": len(menus)})
}

// Delete removes a leaf menu
func (h *MenuHandler) Delete(c echo.Context) error {
	log := logger.FromEcho(c)

	if !requirePermission(c, "menu", model.ActionDelete) {
		return accessDenied(c)
	}

	id, err := menuID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid menu id"})
	}

	if err := h.menus.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "menu not found"})
		}
		log.Warn("menu delete refused", zap.Uint("menu_id", id), zap.Error(err))
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	}

	prometheus.RecordMenuOperation("delete")
	return c.NoContent(http.StatusNoContent)
}

func menuID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	return uint(id), err
}

// requirePermission checks API:<resource>:<action> against the caller's
// principal. Callers holding the SYSTEM tenant pass every check.
func requirePermission(c echo.Context, resource, action string) bool {
	principal, ok := middleware.PrincipalFromEcho(c)
	if !ok {
		return false
	}
	if principal.HasTenant(tenantctx.SystemTenantID) {
		return true
	}
	return principal.HasPermissionFor(resource, action)
}

func accessDenied(c echo.Context) error {
	prometheus.RecordAuthError("access_denied")
	return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied"})
}
