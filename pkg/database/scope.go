package database

import (
	"context"

	"crm-service/pkg/logger"
	"crm-service/pkg/tenantctx"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TenantScope returns a gorm scope that applies the row-level tenant
// predicate for the given request context. The decision is made fresh on
// every call:
//
//   - SYSTEM tenant: no predicate, all rows visible
//   - no tenant in context: no predicate, logged as a warning because it
//     may expose cross-tenant data (fail-open, matching the interceptor
//     contract where login-time lookups legitimately run unscoped)
//   - any other tenant: rows restricted to tenant_id = <tenant>
func TenantScope(ctx context.Context) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		tenantID, ok := tenantctx.TenantID(ctx)
		if !ok {
			logger.FromContext(ctx).Warn("no tenant in context, tenant filter disabled; query may expose cross-tenant data")
			return db
		}
		if tenantID == tenantctx.SystemTenantID {
			return db
		}
		logger.FromContext(ctx).Debug("tenant filter enabled", zap.String("tenant_id", tenantID))
		return db.Where("tenant_id = ?", tenantID)
	}
}

// Scoped wraps a database handle with the tenant predicate for ctx.
// Every tenant-scoped data access goes through this gate.
func Scoped(ctx context.Context, db *gorm.DB) *gorm.DB {
	return db.WithContext(ctx).Scopes(TenantScope(ctx))
}
