package service

import (
	"context"
	"errors"
	"fmt"

	"crm-service/internal/apperror"
	"crm-service/internal/auth"
	"crm-service/internal/model"
	"crm-service/pkg/database"
	"crm-service/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PrincipalService assembles authorization principals from the user,
// role and permission stores.
type PrincipalService struct {
	db *gorm.DB
}

// NewPrincipalService creates a principal service backed by the given store
func NewPrincipalService(db *gorm.DB) *PrincipalService {
	return &PrincipalService{db: db}
}

// FindByLogin fetches a user row by login name, bypassing the tenant
// scope. This path is only used at login time, before a tenant is known:
// the tenant is discovered from the matched record.
func (s *PrincipalService) FindByLogin(loginName string) (*model.User, error) {
	var user model.User
	err := s.db.Where("user_id = ? AND active = ?", loginName, true).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %s", apperror.ErrNotFound, loginName)
		}
		return nil, err
	}
	return &user, nil
}

// LoadByEsntlID fetches a user through the tenant scope gate and assembles
// the principal. This is the session re-authentication path; the caller's
// tenant context decides row visibility.
func (s *PrincipalService) LoadByEsntlID(ctx context.Context, esntlID string) (*auth.Principal, error) {
	var user model.User
	err := database.Scoped(ctx, s.db).Where("esntl_id = ?", esntlID).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %s", apperror.ErrNotFound, esntlID)
		}
		return nil, err
	}
	return s.Load(&user)
}

// Load assembles the full authorization principal for a user row:
// role IDs from the user's role assignments, permission codes resolved
// across all of those roles, and the organizational attributes.
func (s *PrincipalService) Load(user *model.User) (*auth.Principal, error) {
	var roleIDs []string
	err := s.db.Model(&model.UserRole{}).
		Where("user_esntl_id = ?", user.EsntlID).
		Pluck("role_id", &roleIDs).Error
	if err != nil {
		return nil, err
	}

	permissions := make([]string, 0)
	if len(roleIDs) > 0 {
		var perms []model.Permission
		err = s.db.Model(&model.Permission{}).
			Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
			Where("role_permissions.role_id IN ?", roleIDs).
			Find(&perms).Error
		if err != nil {
			return nil, err
		}
		seen := make(map[string]struct{}, len(perms))
		for i := range perms {
			code := perms[i].FullCode()
			if _, ok := seen[code]; ok {
				continue
			}
			seen[code] = struct{}{}
			permissions = append(permissions, code)
		}
	}

	logger.GetLogger().Debug("principal assembled",
		zap.String("user_id", user.UserID),
		zap.String("tenant_id", user.TenantID),
		zap.Int("roles", len(roleIDs)),
		zap.Int("permissions", len(permissions)))

	return auth.NewPrincipal(
		user.EsntlID,
		user.UserID,
		user.TenantID,
		derefOrEmpty(user.BranchID),
		derefOrEmpty(user.GroupID),
		derefOrEmpty(user.PositionID),
		roleIDs,
		permissions,
	), nil
}

func derefOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
