package middleware

import (
	"net/http"
	"strings"

	"crm-service/internal/auth"
	"crm-service/pkg/jwtutil"
	"crm-service/pkg/logger"
	"crm-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const principalKey = "principal"

// Authenticate validates the bearer token from the Authorization header
// and stores the rebuilt principal in the echo context. All token failures
// surface as the same generic unauthorized response; the reason is only
// logged.
func Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromEcho(c)

		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			log.Warn("missing Authorization header")
			prometheus.RecordAuthError("missing_token")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			log.Warn("invalid Authorization header format")
			prometheus.RecordAuthError("invalid_auth_format")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
		}

		claims, err := jwtutil.DecodeToken(parts[1])
		if err != nil {
			log.Warn("token rejected", zap.Error(err))
			prometheus.RecordAuthError("invalid_token")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
		}

		principal := auth.FromClaims(claims)
		c.Set(principalKey, principal)

		log.Debug("request authenticated",
			zap.String("user_id", principal.UserID),
			zap.String("tenant_id", principal.TenantID))

		return next(c)
	}
}

// PrincipalFromEcho returns the authenticated principal stored by
// Authenticate, if any.
func PrincipalFromEcho(c echo.Context) (*auth.Principal, bool) {
	principal, ok := c.Get(principalKey).(*auth.Principal)
	return principal, ok
}
