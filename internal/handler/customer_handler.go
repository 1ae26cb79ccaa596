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

// CustomerHandler serves the customer endpoints. Customers are the
// representative tenant-scoped records: every query runs through the row
// scope gate and writes are stamped with the caller's tenant.
type CustomerHandler struct {
	db *gorm.DB
}

func NewCustomerHandler(db *gorm.DB) *CustomerHandler {
	return &CustomerHandler{db: db}
}

// Create stores a new customer owned by the caller
func (h *CustomerHandler) Create(c echo.Context) error {
	log := logger.FromEcho(c)

	principal, ok := middleware.PrincipalFromEcho(c)
	if !ok || !principal.HasPermissionFor("customer", model.ActionWrite) {
		return accessDenied(c)
	}

	var req struct {
		Name     string  `json:"name"`
		Email    string  `json:"email"`
		Phone    string  `json:"phone"`
		BranchID *string `json:"branch_id"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	ctx := c.Request().Context()
	tenantID, ok := tenantctx.TenantID(ctx)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no tenant context"})
	}

	// writing into another branch needs a matching branch attribute
	if req.BranchID != nil && !principal.CanAccess("customer", model.ActionWrite, *req.BranchID) {
		return accessDenied(c)
	}

	customer := model.Customer{
		TenantID: tenantID,
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		BranchID: req.BranchID,
		OwnerID:  principal.EsntlID,
		Status:   "ACTIVE",
	}
	if err := h.db.WithContext(ctx).Create(&customer).Error; err != nil {
		log.Error("failed to create customer", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create customer"})
	}

	log.Info("customer created",
		zap.Uint("customer_id", customer.ID),
		zap.String("tenant_id", tenantID))
	return c.JSON(http.StatusCreated, customer)
}

// Get fetches one customer within the caller's tenant
func (h *CustomerHandler) Get(c echo.Context) error {
	if !requirePermission(c, "customer", model.ActionRead) {
		return accessDenied(c)
	}

	var customer model.Customer
	err := database.Scoped(c.Request().Context(), h.db).
		First(&customer, "id = ?", c.Param("id")).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "customer not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch customer"})
	}
	return c.JSON(http.StatusOK, customer)
}

// List returns the caller tenant's customers
func (h *CustomerHandler) List(c echo.Context) error {
	if !requirePermission(c, "customer", model.ActionRead) {
		return accessDenied(c)
	}

	var customers []model.Customer
	if err := database.Scoped(c.Request().Context(), h.db).Find(&customers).Error; err != nil {
		logger.FromEcho(c).Error("failed to list customers", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list customers"})
	}
	return c.JSON(http.StatusOK, echo.Map{"customers": customers, "count": len(customers)})
}

// Delete soft-deletes a customer within the caller's tenant
func (h *CustomerHandler) Delete(c echo.Context) error {
	log := logger.FromEcho(c)

	if !requirePermission(c, "customer", model.ActionDelete) {
		return accessDenied(c)
	}

	ctx := c.Request().Context()
	var customer model.Customer
	if err := database.Scoped(ctx, h.db).First(&customer, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "customer not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch customer"})
	}

	if err := h.db.WithContext(ctx).Delete(&customer).Error; err != nil {
		log.Error("failed to delete customer", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete customer"})
	}

	log.Info("customer deleted", zap.Uint("customer_id", customer.ID))
	return c.NoContent(http.StatusNoContent)
}
