package middleware

import (
	"crm-service/pkg/logger"
	"crm-service/pkg/tenantctx"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// TenantContext resolves the caller's tenant and injects it into the
// request context for the rest of the request. The tenant comes from the
// authenticated principal when one is present, otherwise the configured
// default tenant is used; the middleware never fails a request itself.
//
// The original request (without tenant) is restored on every exit path,
// so a pooled worker picking up the next request never observes a stale
// tenant.
func TenantContext(defaultTenant string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			tenantID := defaultTenant
			if principal, ok := PrincipalFromEcho(c); ok && principal.TenantID != "" {
				tenantID = principal.TenantID
			}

			ctx := tenantctx.WithTenant(req.Context(), tenantID)
			c.SetRequest(req.WithContext(ctx))
			defer c.SetRequest(req)

			logger.FromEcho(c).Debug("tenant context set",
				zap.String("tenant_id", tenantID),
				zap.String("uri", req.RequestURI))

			return next(c)
		}
	}
}
