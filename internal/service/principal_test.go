package service

import (
	"context"
	"testing"

	"crm-service/internal/apperror"
	"crm-service/internal/model"
	"crm-service/pkg/tenantctx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedUserWithRole(t *testing.T, db *gorm.DB) {
	t.Helper()

	branchID := "BR01"
	require.NoError(t, db.Create(&model.User{
		EsntlID:  "ESNTL-0001",
		UserID:   "u1",
		Password: "$2a$10$hash",
		UserName: "User One",
		TenantID: "T1",
		BranchID: &branchID,
		Active:   true,
	}).Error)

	require.NoError(t, db.Create(&model.Role{ID: "r1", TenantID: "T1", Name: "Sales"}).Error)
	require.NoError(t, db.Create(&model.UserRole{
		UserEsntlID: "ESNTL-0001", RoleID: "r1", TenantID: "T1", IsPrimary: true,
	}).Error)

	perm := model.Permission{
		Code: "orders", Type: model.PermissionTypeAPI, Action: model.ActionRead,
		ResourcePath: "/api/orders", TenantID: "T1",
	}
	require.NoError(t, db.Create(&perm).Error)
	require.NoError(t, db.Create(&model.RolePermission{
		RoleID: "r1", PermissionID: perm.ID, TenantID: "T1", GrantedBy: "ESNTL-0001",
	}).Error)
}

func TestLoadResolvesRolesAndPermissions(t *testing.T) {
	db := openTestDB(t)
	seedUserWithRole(t, db)
	principals := NewPrincipalService(db)

	user, err := principals.FindByLogin("u1")
	require.NoError(t, err)
	assert.Equal(t, "T1", user.TenantID)

	p, err := principals.Load(user)
	require.NoError(t, err)

	assert.Equal(t, "ESNTL-0001", p.EsntlID)
	assert.Equal(t, "u1", p.UserID)
	assert.Equal(t, "T1", p.TenantID)
	assert.Equal(t, "BR01", p.BranchID)
	assert.Equal(t, []string{"r1"}, p.RoleIDs())
	assert.True(t, p.HasPermission("API:orders:READ"))
	assert.False(t, p.HasPermission("API:orders:WRITE"))
	assert.Equal(t, "r1", p.Authorities())
}

func TestLoadWithNoRolesYieldsEmptySets(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.Create(&model.User{
		EsntlID: "ESNTL-0002", UserID: "u2", Password: "x", TenantID: "T1", Active: true,
	}).Error)
	principals := NewPrincipalService(db)

	user, err := principals.FindByLogin("u2")
	require.NoError(t, err)

	p, err := principals.Load(user)
	require.NoError(t, err)
	assert.Empty(t, p.RoleIDs())
	assert.Empty(t, p.Permissions())
	assert.Empty(t, p.Authorities())
}

func TestFindByLoginUnknownUser(t *testing.T) {
	db := openTestDB(t)
	principals := NewPrincipalService(db)

	_, err := principals.FindByLogin("nobody")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestFindByLoginIgnoresTenantScope(t *testing.T) {
	db := openTestDB(t)
	seedUserWithRole(t, db)
	principals := NewPrincipalService(db)

	// login-time lookup runs before any tenant is known
	user, err := principals.FindByLogin("u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.UserID)
}

func TestLoadByEsntlIDHonorsTenantScope(t *testing.T) {
	db := openTestDB(t)
	seedUserWithRole(t, db)
	principals := NewPrincipalService(db)

	// matching tenant context resolves the user
	ctx := tenantctx.WithTenant(context.Background(), "T1")
	p, err := principals.LoadByEsntlID(ctx, "ESNTL-0001")
	require.NoError(t, err)
	assert.Equal(t, "u1", p.UserID)

	// a different tenant's context must not see the row
	ctx = tenantctx.WithTenant(context.Background(), "T2")
	_, err = principals.LoadByEsntlID(ctx, "ESNTL-0001")
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	// SYSTEM sees everything
	ctx = tenantctx.WithTenant(context.Background(), tenantctx.SystemTenantID)
	p, err = principals.LoadByEsntlID(ctx, "ESNTL-0001")
	require.NoError(t, err)
	assert.Equal(t, "T1", p.TenantID)
}
