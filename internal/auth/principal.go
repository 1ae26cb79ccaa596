// Package auth holds the in-memory authorization principal and the pure
// checks evaluated against it. Nothing here touches the database; the
// principal is built fresh on every authentication event and never stored.
package auth

import (
	"sort"
	"strings"

	"crm-service/pkg/jwtutil"
)

// Principal is the in-memory representation of the authenticated caller:
// identity, tenant, organizational attributes and resolved entitlements.
type Principal struct {
	EsntlID    string
	UserID     string
	TenantID   string
	BranchID   string
	GroupID    string
	PositionID string

	roleIDs     map[string]struct{}
	permissions map[string]struct{}
}

// NewPrincipal builds a principal from resolved role IDs and permission
// codes.
func NewPrincipal(esntlID, userID, tenantID, branchID, groupID, positionID string, roleIDs, permissions []string) *Principal {
	p := &Principal{
		EsntlID:     esntlID,
		UserID:      userID,
		TenantID:    tenantID,
		BranchID:    branchID,
		GroupID:     groupID,
		PositionID:  positionID,
		roleIDs:     make(map[string]struct{}, len(roleIDs)),
		permissions: make(map[string]struct{}, len(permissions)),
	}
	for _, id := range roleIDs {
		p.roleIDs[id] = struct{}{}
	}
	for _, code := range permissions {
		p.permissions[code] = struct{}{}
	}
	return p
}

// FromClaims rebuilds a principal from validated token claims.
func FromClaims(claims *jwtutil.Claims) *Principal {
	return NewPrincipal(
		claims.Subject,
		claims.UserID,
		claims.TenantID,
		claims.BranchID,
		claims.GroupID,
		claims.PositionID,
		claims.RoleIDs,
		claims.Permissions,
	)
}

// RoleIDs returns the principal's role IDs in sorted order.
func (p *Principal) RoleIDs() []string {
	ids := make([]string, 0, len(p.roleIDs))
	for id := range p.roleIDs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Permissions returns the principal's permission codes in sorted order.
func (p *Principal) Permissions() []string {
	codes := make([]string, 0, len(p.permissions))
	for code := range p.permissions {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Authorities returns the comma-joined authority string (one authority per
// role ID) carried in the access token's roles claim.
func (p *Principal) Authorities() string {
	return strings.Join(p.RoleIDs(), ",")
}

// HasPermission checks an exact permission code, e.g. "API:orders:READ".
func (p *Principal) HasPermission(code string) bool {
	_, ok := p.permissions[code]
	return ok
}

// HasPermissionFor checks the API permission for a resource and action,
// building the code as API:<resource>:<action>.
func (p *Principal) HasPermissionFor(resource, action string) bool {
	return p.HasPermission("API:" + resource + ":" + action)
}

// HasAnyPermission reports whether any of the given codes is held.
func (p *Principal) HasAnyPermission(codes ...string) bool {
	for _, code := range codes {
		if p.HasPermission(code) {
			return true
		}
	}
	return false
}

// HasAllPermissions reports whether every one of the given codes is held.
func (p *Principal) HasAllPermissions(codes ...string) bool {
	for _, code := range codes {
		if !p.HasPermission(code) {
			return false
		}
	}
	return true
}

// HasRole checks membership of a single role ID.
func (p *Principal) HasRole(roleID string) bool {
	_, ok := p.roleIDs[roleID]
	return ok
}

// HasAnyRole reports whether any of the given role IDs is held.
func (p *Principal) HasAnyRole(roleIDs ...string) bool {
	for _, id := range roleIDs {
		if p.HasRole(id) {
			return true
		}
	}
	return false
}

// HasBranch checks the principal's branch attribute.
func (p *Principal) HasBranch(branchID string) bool {
	return branchID != "" && p.BranchID == branchID
}

// HasGroup checks the principal's group attribute.
func (p *Principal) HasGroup(groupID string) bool {
	return groupID != "" && p.GroupID == groupID
}

// HasPosition checks the principal's position attribute.
func (p *Principal) HasPosition(positionID string) bool {
	return positionID != "" && p.PositionID == positionID
}

// HasTenant checks the principal's tenant.
func (p *Principal) HasTenant(tenantID string) bool {
	return tenantID != "" && p.TenantID == tenantID
}

// CanAccess combines the permission check with optional branch scoping:
// the caller needs API:<resource>:<action>, and when targetBranchID is
// non-empty the caller's branch must match it.
func (p *Principal) CanAccess(resource, action, targetBranchID string) bool {
	if !p.HasPermissionFor(resource, action) {
		return false
	}
	if targetBranchID == "" {
		return true
	}
	return p.HasBranch(targetBranchID)
}
