package handler

import (
	"errors"
	"net/http"
	"time"

	"crm-service/internal/apperror"
	"crm-service/internal/auth"
	"crm-service/internal/middleware"
	"crm-service/internal/service"
	"crm-service/pkg/jwtutil"
	"crm-service/pkg/logger"
	"crm-service/pkg/tenantctx"
	"crm-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AuthHandler serves login, token refresh and caller-identity endpoints
type AuthHandler struct {
	principals *service.PrincipalService
}

// NewAuthHandler creates an auth handler backed by the principal service
func NewAuthHandler(principals *service.PrincipalService) *AuthHandler {
	return &AuthHandler{principals: principals}
}

type tokenBundle struct {
	AccessToken      string `json:"access_token"`
	RefreshToken     string `json:"refresh_token"`
	TokenType        string `json:"token_type"`
	AccessExpiresIn  int64  `json:"access_expires_in"`
	RefreshExpiresIn int64  `json:"refresh_expires_in"`
}

// Login authenticates by login name and password and issues a token pair.
// Unknown login name and wrong password produce the same response so
// callers cannot enumerate users.
func (h *AuthHandler) Login(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.LoginCounter.Inc()

	var req struct {
		LoginName string `json:"login_name"`
		Password  string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("failed to parse login request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	// login-time lookup runs unscoped: the tenant comes from the matched row
	user, err := h.principals.FindByLogin(req.LoginName)
	if err != nil {
		log.Warn("login failed", zap.String("login_name", req.LoginName))
		prometheus.RecordAuthError("invalid_credentials")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		log.Warn("login failed", zap.String("login_name", req.LoginName))
		prometheus.RecordAuthError("invalid_credentials")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	principal, err := h.principals.Load(user)
	if err != nil {
		log.Error("failed to assemble principal", zap.Error(err))
		prometheus.RecordAuthError("principal_load_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "login failed"})
	}

	bundle, err := issueTokens(principal)
	if err != nil {
		log.Error("failed to generate tokens", zap.Error(err))
		prometheus.RecordAuthError("token_generation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}

	prometheus.IncreaseActiveTokens()
	log.Info("user logged in",
		zap.String("login_name", user.UserID),
		zap.String("tenant_id", user.TenantID))

	return c.JSON(http.StatusOK, bundle)
}

// Refresh exchanges a valid refresh token for a fresh token pair. The
// principal is re-resolved from the store, so role and permission changes
// made after login take effect immediately; the refresh token is rotated.
func (h *AuthHandler) Refresh(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RefreshCounter.Inc()

	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("failed to parse refresh request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	claims, err := jwtutil.DecodeToken(req.RefreshToken)
	if err != nil {
		log.Warn("refresh token rejected", zap.Error(err))
		prometheus.RecordAuthError("invalid_refresh_token")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	// session re-authentication honors the row scope of the token's tenant
	ctx := tenantctx.WithTenant(c.Request().Context(), claims.TenantID)
	principal, err := h.principals.LoadByEsntlID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			log.Warn("refresh for unknown user", zap.String("subject", claims.Subject))
			prometheus.RecordAuthError("invalid_refresh_token")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
		}
		log.Error("failed to assemble principal", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "refresh failed"})
	}

	bundle, err := issueTokens(principal)
	if err != nil {
		log.Error("failed to generate tokens", zap.Error(err))
		prometheus.RecordAuthError("token_generation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}

	log.Info("token refreshed", zap.String("subject", principal.EsntlID))
	return c.JSON(http.StatusOK, bundle)
}

// Me returns the authenticated caller's identity
func (h *AuthHandler) Me(c echo.Context) error {
	principal, ok := middleware.PrincipalFromEcho(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"identity":  principal.EsntlID,
		"user_id":   principal.UserID,
		"tenant_id": principal.TenantID,
		"roles":     principal.RoleIDs(),
	})
}

func issueTokens(principal *auth.Principal) (*tokenBundle, error) {
	accessToken, err := jwtutil.GenerateAccessToken(jwtutil.TokenSubject{
		EsntlID:     principal.EsntlID,
		UserID:      principal.UserID,
		TenantID:    principal.TenantID,
		BranchID:    principal.BranchID,
		GroupID:     principal.GroupID,
		PositionID:  principal.PositionID,
		RoleIDs:     principal.RoleIDs(),
		Permissions: principal.Permissions(),
		Authorities: principal.Authorities(),
	})
	if err != nil {
		return nil, err
	}

	refreshToken, err := jwtutil.GenerateRefreshToken(principal.EsntlID, principal.TenantID)
	if err != nil {
		return nil, err
	}

	return &tokenBundle{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		TokenType:        "Bearer",
		AccessExpiresIn:  jwtutil.AccessTTLSeconds(),
		RefreshExpiresIn: jwtutil.RefreshTTLSeconds(),
	}, nil
}
