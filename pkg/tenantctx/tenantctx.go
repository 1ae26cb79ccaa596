// Package tenantctx carries the active tenant of a request as an explicit
// context value. Each request gets its own context, so concurrent requests
// can never observe each other's tenant; there is no process-wide slot.
package tenantctx

import "context"

// SystemTenantID is the reserved tenant that bypasses row scoping entirely.
const SystemTenantID = "SYSTEM"

type contextKey string

const tenantKey contextKey = "tenant_id"

// WithTenant returns a context carrying the given tenant ID.
func WithTenant(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, tenantKey, tenantID)
}

// TenantID returns the tenant ID carried by the context. The second return
// value is false when no tenant is set (or it was cleared).
func TenantID(ctx context.Context) (string, bool) {
	tenantID, ok := ctx.Value(tenantKey).(string)
	if !ok || tenantID == "" {
		return "", false
	}
	return tenantID, true
}

// IsSet reports whether the context carries a tenant ID.
func IsSet(ctx context.Context) bool {
	_, ok := TenantID(ctx)
	return ok
}

// IsSystem reports whether the context carries the reserved SYSTEM tenant.
func IsSystem(ctx context.Context) bool {
	tenantID, ok := TenantID(ctx)
	return ok && tenantID == SystemTenantID
}

// Clear returns a context with the tenant removed. Any tenant set on a
// parent context is shadowed, so lookups through the returned context
// behave as if no tenant was ever set.
func Clear(ctx context.Context) context.Context {
	return context.WithValue(ctx, tenantKey, "")
}
