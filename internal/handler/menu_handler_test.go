package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"crm-service/internal/auth"
	"crm-service/internal/model"
	"crm-service/internal/service"
	"crm-service/pkg/tenantctx"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newMenuHandler(db *gorm.DB) *MenuHandler {
	return NewMenuHandler(service.NewMenuService(db, service.NewPermissionGenerator(db)))
}

// menuRequest builds an echo context carrying the given principal and its
// tenant in the request context, the way the middleware chain does.
func menuRequest(method, path, body string, principal *auth.Principal) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if principal != nil {
		req = req.WithContext(tenantctx.WithTenant(req.Context(), principal.TenantID))
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if principal != nil {
		c.Set("principal", principal)
	}
	return c, rec
}

func TestMenuCreateRequiresWritePermission(t *testing.T) {
	db := openTestDB(t)
	h := newMenuHandler(db)

	reader := auth.NewPrincipal("E1", "u1", "T1", "", "", "", nil,
		[]string{"API:menu:READ"})
	c, rec := menuRequest(http.MethodPost, "/api/menus",
		`{"code":"orders","name":"Orders"}`, reader)
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	var count int64
	require.NoError(t, db.Model(&model.Menu{}).Count(&count).Error)
	assert.Zero(t, count, "denied request must not create rows")
}

func TestMenuCreateGeneratesPermissions(t *testing.T) {
	db := openTestDB(t)
	h := newMenuHandler(db)

	writer := auth.NewPrincipal("E1", "u1", "T1", "", "", "", nil,
		[]string{"API:menu:WRITE"})
	c, rec := menuRequest(http.MethodPost, "/api/menus",
		`{"code":"orders","name":"Orders","path":"/orders","api_endpoint":"/api/orders"}`, writer)
	require.NoError(t, h.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var perms []model.Permission
	require.NoError(t, db.Where("code = ?", "orders").Find(&perms).Error)
	assert.Len(t, perms, 4)
	for _, p := range perms {
		assert.Equal(t, "T1", p.TenantID)
	}
}

func TestMenuSystemTenantBypassesPermissionCheck(t *testing.T) {
	db := openTestDB(t)
	h := newMenuHandler(db)

	operator := auth.NewPrincipal("E1", "root", tenantctx.SystemTenantID, "", "", "", nil, nil)
	c, rec := menuRequest(http.MethodGet, "/api/menus", "", operator)
	require.NoError(t, h.List(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMenuListDeniedWithoutPrincipal(t *testing.T) {
	db := openTestDB(t)
	h := newMenuHandler(db)

	c, rec := menuRequest(http.MethodGet, "/api/menus", "", nil)
	require.NoError(t, h.List(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestMenuGetScopedToTenant(t *testing.T) {
	db := openTestDB(t)
	h := newMenuHandler(db)

	writer := auth.NewPrincipal("E1", "u1", "T1", "", "", "", nil,
		[]string{"API:menu:WRITE", "API:menu:READ"})
	c, rec := menuRequest(http.MethodPost, "/api/menus",
		`{"code":"orders","name":"Orders"}`, writer)
	require.NoError(t, h.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	outsider := auth.NewPrincipal("E2", "u2", "T2", "", "", "", nil,
		[]string{"API:menu:READ"})
	c, rec = menuRequest(http.MethodGet, "/api/menus/1", "", outsider)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusNotFound, rec.Code, "other tenants' menus must be invisible")
}
