package service

import (
	"context"
	"testing"

	"crm-service/internal/model"
	"crm-service/pkg/tenantctx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func countPermissions(t *testing.T, db *gorm.DB, code string) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&model.Permission{}).Where("code = ?", code).Count(&count).Error)
	return count
}

func TestApplyMenuWithEndpointAndPath(t *testing.T) {
	db := openTestDB(t)
	generator := NewPermissionGenerator(db)
	ctx := tenantctx.WithTenant(context.Background(), "T1")

	menu := &model.Menu{
		Code:        "orders",
		Name:        "Orders",
		Path:        "/orders",
		APIEndpoint: "/api/orders",
		TenantID:    "T1",
	}
	require.NoError(t, db.Create(menu).Error)

	created := generator.ApplyMenu(ctx, menu)
	assert.Equal(t, 4, created, "1 API + 3 MENU permissions expected")
	assert.EqualValues(t, 4, countPermissions(t, db, "orders"))

	var api model.Permission
	require.NoError(t, db.Where("code = ? AND type = ?", "orders", model.PermissionTypeAPI).First(&api).Error)
	assert.Equal(t, model.ActionRead, api.Action)
	assert.Equal(t, "/api/orders", api.ResourcePath)
	assert.Equal(t, "API:orders:READ", api.FullCode())
}

func TestApplyMenuWithPathOnly(t *testing.T) {
	db := openTestDB(t)
	generator := NewPermissionGenerator(db)
	ctx := tenantctx.WithTenant(context.Background(), "T1")

	menu := &model.Menu{Code: "reports", Name: "Reports", Path: "/reports", TenantID: "T1"}
	require.NoError(t, db.Create(menu).Error)

	created := generator.ApplyMenu(ctx, menu)
	assert.Equal(t, 3, created)

	var actions []string
	require.NoError(t, db.Model(&model.Permission{}).
		Where("code = ?", "reports").Pluck("action", &actions).Error)
	assert.ElementsMatch(t, []string{"READ", "WRITE", "DELETE"}, actions)
}

func TestApplyMenuWithEndpointOnly(t *testing.T) {
	db := openTestDB(t)
	generator := NewPermissionGenerator(db)
	ctx := tenantctx.WithTenant(context.Background(), "T1")

	menu := &model.Menu{Code: "export", Name: "Export", APIEndpoint: "/api/export", TenantID: "T1"}
	require.NoError(t, db.Create(menu).Error)

	assert.Equal(t, 1, generator.ApplyMenu(ctx, menu))
	assert.EqualValues(t, 1, countPermissions(t, db, "export"))
}

func TestApplyMenuWithNeither(t *testing.T) {
	db := openTestDB(t)
	generator := NewPermissionGenerator(db)
	ctx := tenantctx.WithTenant(context.Background(), "T1")

	menu := &model.Menu{Code: "folder", Name: "Folder", Type: "FOLDER", TenantID: "T1"}
	require.NoError(t, db.Create(menu).Error)

	assert.Equal(t, 0, generator.ApplyMenu(ctx, menu))
	assert.EqualValues(t, 0, countPermissions(t, db, "folder"))
}

func TestApplyMenuWithoutCodeIsNoOp(t *testing.T) {
	db := openTestDB(t)
	generator := NewPermissionGenerator(db)
	ctx := tenantctx.WithTenant(context.Background(), "T1")

	menu := &model.Menu{Name: "Unnamed", Path: "/unnamed", TenantID: "T1"}

	assert.Equal(t, 0, generator.ApplyMenu(ctx, menu))
	var count int64
	require.NoError(t, db.Model(&model.Permission{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestApplyMenuIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	generator := NewPermissionGenerator(db)
	ctx := tenantctx.WithTenant(context.Background(), "T1")

	menu := &model.Menu{
		Code:        "orders",
		Name:        "Orders",
		Path:        "/orders",
		APIEndpoint: "/api/orders",
		TenantID:    "T1",
	}
	require.NoError(t, db.Create(menu).Error)

	assert.Equal(t, 4, generator.ApplyMenu(ctx, menu))
	assert.Equal(t, 0, generator.ApplyMenu(ctx, menu), "re-applying an unchanged menu must create nothing")
	assert.Equal(t, 0, generator.ApplyMenu(ctx, menu))
	assert.EqualValues(t, 4, countPermissions(t, db, "orders"))
}

func TestApplyMenuSeparatesTenants(t *testing.T) {
	db := openTestDB(t)
	generator := NewPermissionGenerator(db)

	t1Menu := &model.Menu{Code: "orders", Name: "Orders", APIEndpoint: "/api/orders", TenantID: "T1"}
	require.NoError(t, db.Create(t1Menu).Error)
	assert.Equal(t, 1, generator.ApplyMenu(tenantctx.WithTenant(context.Background(), "T1"), t1Menu))

	// the permission uniqueness key includes the tenant, so the same code
	// under another tenant is a distinct row, not a duplicate
	t2Menu := &model.Menu{Code: "orders", Name: "Orders", APIEndpoint: "/api/orders", TenantID: "T2"}
	assert.Equal(t, 1, generator.ApplyMenu(tenantctx.WithTenant(context.Background(), "T2"), t2Menu))

	assert.EqualValues(t, 2, countPermissions(t, db, "orders"))
}
