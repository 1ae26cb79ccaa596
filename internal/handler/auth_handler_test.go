package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"crm-service/internal/model"
	"crm-service/internal/service"
	"crm-service/pkg/config"
	"crm-service/pkg/jwtutil"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.Tenant{},
		&model.User{},
		&model.Role{},
		&model.Permission{},
		&model.RolePermission{},
		&model.UserRole{},
		&model.Menu{},
		&model.Customer{},
	))
	return db
}

func initTestJWT(t *testing.T) {
	t.Helper()
	jwtutil.Initialize(&config.JWTConfig{
		SigningKey:        "test-signing-key-test-signing-key-test",
		AccessTTLSeconds:  60,
		RefreshTTLSeconds: 120,
	})
}

// seedLoginUser creates a user in tenant T1 holding role r1 with the
// API:orders:READ permission. The password is "s3cret".
func seedLoginUser(t *testing.T, db *gorm.DB) *model.User {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	user := &model.User{
		EsntlID:  "ESNTL-0001",
		UserID:   "jdoe",
		Password: string(hashed),
		TenantID: "T1",
		Active:   true,
	}
	require.NoError(t, db.Create(user).Error)
	require.NoError(t, db.Create(&model.Role{ID: "r1", TenantID: "T1", Name: "Clerk"}).Error)

	perm := &model.Permission{Code: "orders", Type: model.PermissionTypeAPI, Action: model.ActionRead, TenantID: "T1"}
	require.NoError(t, db.Create(perm).Error)
	require.NoError(t, db.Create(&model.RolePermission{RoleID: "r1", PermissionID: perm.ID, TenantID: "T1"}).Error)
	require.NoError(t, db.Create(&model.UserRole{UserEsntlID: user.EsntlID, RoleID: "r1", TenantID: "T1", IsPrimary: true}).Error)

	return user
}

func postJSON(e *echo.Echo, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestLoginIssuesTokenPair(t *testing.T) {
	initTestJWT(t)
	db := openTestDB(t)
	seedLoginUser(t, db)
	h := NewAuthHandler(service.NewPrincipalService(db))

	e := echo.New()
	c, rec := postJSON(e, "/auth/login", `{"login_name":"jdoe","password":"s3cret"}`)
	require.NoError(t, h.Login(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var bundle tokenBundle
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &bundle))
	assert.Equal(t, "Bearer", bundle.TokenType)
	assert.Equal(t, int64(60), bundle.AccessExpiresIn)
	assert.Equal(t, int64(120), bundle.RefreshExpiresIn)

	claims, err := jwtutil.DecodeToken(bundle.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "ESNTL-0001", claims.Subject)
	assert.Equal(t, "T1", claims.TenantID)
	assert.Contains(t, claims.Permissions, "API:orders:READ")

	refreshClaims, err := jwtutil.DecodeToken(bundle.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "ESNTL-0001", refreshClaims.Subject)
	assert.Empty(t, refreshClaims.Permissions, "refresh token must not carry entitlements")
}

func TestLoginDoesNotDistinguishUnknownUserFromBadPassword(t *testing.T) {
	initTestJWT(t)
	db := openTestDB(t)
	seedLoginUser(t, db)
	h := NewAuthHandler(service.NewPrincipalService(db))
	e := echo.New()

	c, recBadPassword := postJSON(e, "/auth/login", `{"login_name":"jdoe","password":"wrong"}`)
	require.NoError(t, h.Login(c))
	c, recUnknownUser := postJSON(e, "/auth/login", `{"login_name":"nobody","password":"s3cret"}`)
	require.NoError(t, h.Login(c))

	assert.Equal(t, http.StatusUnauthorized, recBadPassword.Code)
	assert.Equal(t, http.StatusUnauthorized, recUnknownUser.Code)
	assert.Equal(t, recUnknownUser.Body.String(), recBadPassword.Body.String())
}

func TestLoginRejectsInactiveUser(t *testing.T) {
	initTestJWT(t)
	db := openTestDB(t)
	user := seedLoginUser(t, db)
	require.NoError(t, db.Model(user).Update("active", false).Error)
	h := NewAuthHandler(service.NewPrincipalService(db))

	c, rec := postJSON(echo.New(), "/auth/login", `{"login_name":"jdoe","password":"s3cret"}`)
	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefreshPicksUpNewEntitlements(t *testing.T) {
	initTestJWT(t)
	db := openTestDB(t)
	seedLoginUser(t, db)
	h := NewAuthHandler(service.NewPrincipalService(db))
	e := echo.New()

	c, rec := postJSON(e, "/auth/login", `{"login_name":"jdoe","password":"s3cret"}`)
	require.NoError(t, h.Login(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var first tokenBundle
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &first))

	firstClaims, err := jwtutil.DecodeToken(first.AccessToken)
	require.NoError(t, err)
	require.NotContains(t, firstClaims.Permissions, "API:orders:WRITE")

	// grant a new permission after the first token was issued
	perm := &model.Permission{Code: "orders", Type: model.PermissionTypeAPI, Action: model.ActionWrite, TenantID: "T1"}
	require.NoError(t, db.Create(perm).Error)
	require.NoError(t, db.Create(&model.RolePermission{RoleID: "r1", PermissionID: perm.ID, TenantID: "T1"}).Error)

	c, rec = postJSON(e, "/auth/refresh", `{"refresh_token":"`+first.RefreshToken+`"}`)
	require.NoError(t, h.Refresh(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var second tokenBundle
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &second))

	secondClaims, err := jwtutil.DecodeToken(second.AccessToken)
	require.NoError(t, err)
	assert.Contains(t, secondClaims.Permissions, "API:orders:WRITE",
		"refresh must re-resolve entitlements from the store")
	assert.NotEmpty(t, second.RefreshToken, "refresh must rotate the refresh token")
}

func TestRefreshRejectsGarbageToken(t *testing.T) {
	initTestJWT(t)
	db := openTestDB(t)
	h := NewAuthHandler(service.NewPrincipalService(db))

	c, rec := postJSON(echo.New(), "/auth/refresh", `{"refresh_token":"garbage"}`)
	require.NoError(t, h.Refresh(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefreshRejectsAccessTokenOfDeletedUser(t *testing.T) {
	initTestJWT(t)
	db := openTestDB(t)
	user := seedLoginUser(t, db)
	h := NewAuthHandler(service.NewPrincipalService(db))
	e := echo.New()

	c, rec := postJSON(e, "/auth/login", `{"login_name":"jdoe","password":"s3cret"}`)
	require.NoError(t, h.Login(c))
	var bundle tokenBundle
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &bundle))

	require.NoError(t, db.Delete(user).Error)

	c, rec = postJSON(e, "/auth/refresh", `{"refresh_token":"`+bundle.RefreshToken+`"}`)
	require.NoError(t, h.Refresh(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
