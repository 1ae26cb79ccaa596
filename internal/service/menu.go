package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"crm-service/internal/apperror"
	"crm-service/internal/model"
	"crm-service/pkg/database"
	"crm-service/pkg/logger"
	"crm-service/pkg/tenantctx"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MenuUpdate carries the fields of a partial menu update; nil means
// "leave unchanged".
type MenuUpdate struct {
	Name        *string
	Type        *string
	Path        *string
	APIEndpoint *string
	IconName    *string
	ParentID    *uint
	Order       *int
	Visible     *bool
	Active      *bool
	Description *string
}

// MenuService manages the menu catalog. Creates and updates invoke the
// permission generator synchronously so the permission table always
// reflects the catalog.
type MenuService struct {
	db        *gorm.DB
	generator *PermissionGenerator
}

// NewMenuService creates a menu service with its generator dependency
// injected at construction.
func NewMenuService(db *gorm.DB, generator *PermissionGenerator) *MenuService {
	return &MenuService{db: db, generator: generator}
}

// Create stores a new menu for the current tenant and generates its
// permissions.
func (s *MenuService) Create(ctx context.Context, menu *model.Menu) error {
	tenantID, ok := tenantctx.TenantID(ctx)
	if !ok {
		return errors.New("cannot create menu without tenant context")
	}
	menu.TenantID = tenantID

	if err := s.db.WithContext(ctx).Create(menu).Error; err != nil {
		if isDuplicateKey(err) {
			return fmt.Errorf("%w: menu code %s", apperror.ErrDuplicateKey, menu.Code)
		}
		return err
	}

	logger.FromContext(ctx).Info("menu created",
		zap.String("code", menu.Code), zap.String("tenant_id", tenantID))

	s.generator.ApplyMenu(ctx, menu)
	return nil
}

// Update applies a partial update and regenerates permissions, since the
// path or endpoint may have changed.
func (s *MenuService) Update(ctx context.Context, id uint, update MenuUpdate) (*model.Menu, error) {
	menu, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		menu.Name = *update.Name
	}
	if update.Type != nil {
		menu.Type = *update.Type
	}
	if update.Path != nil {
		menu.Path = *update.Path
	}
	if update.APIEndpoint != nil {
		menu.APIEndpoint = *update.APIEndpoint
	}
	if update.IconName != nil {
		menu.IconName = *update.IconName
	}
	if update.ParentID != nil {
		menu.ParentID = update.ParentID
	}
	if update.Order != nil {
		menu.Order = *update.Order
	}
	if update.Visible != nil {
		menu.Visible = *update.Visible
	}
	if update.Active != nil {
		menu.Active = *update.Active
	}
	if update.Description != nil {
		menu.Description = *update.Description
	}

	if err := s.db.WithContext(ctx).Save(menu).Error; err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("menu updated", zap.String("code", menu.Code))

	s.generator.ApplyMenu(ctx, menu)
	return menu, nil
}

// Get fetches a menu through the tenant scope gate
func (s *MenuService) Get(ctx context.Context, id uint) (*model.Menu, error) {
	var menu model.Menu
	err := database.Scoped(ctx, s.db).First(&menu, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: menu %d", apperror.ErrNotFound, id)
		}
		return nil, err
	}
	return &menu, nil
}

// List returns the current tenant's menus ordered by menu order
func (s *MenuService) List(ctx context.Context) ([]model.Menu, error) {
	var menus []model.Menu
	err := database.Scoped(ctx, s.db).Order("menu_order asc").Find(&menus).Error
	return menus, err
}

// Delete removes a menu. Menus with children cannot be deleted.
func (s *MenuService) Delete(ctx context.Context, id uint) error {
	menu, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	var children []model.Menu
	if err := database.Scoped(ctx, s.db).Where("parent_id = ?", id).Find(&children).Error; err != nil {
		return err
	}
	if len(children) > 0 {
		codes := make([]string, len(children))
		for i, child := range children {
			codes[i] = child.Code
		}
		return fmt.Errorf("cannot delete menu %s with child menus: %s", menu.Code, strings.Join(codes, ", "))
	}

	if err := s.db.WithContext(ctx).Delete(menu).Error; err != nil {
		return err
	}

	logger.FromContext(ctx).Info("menu deleted", zap.String("code", menu.Code))
	return nil
}

// isDuplicateKey reports whether err is a uniqueness violation. GORM
// translates these for some dialects; fall back to the message for the rest.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
