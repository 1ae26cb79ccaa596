package service

import (
	"context"

	"crm-service/internal/model"
	"crm-service/pkg/logger"
	"crm-service/prometheus"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PermissionGenerator derives permission rows from menu catalog items.
//
// Generation rules:
//   - menu has an API endpoint: one API:READ permission
//   - menu has a UI path: MENU READ, WRITE and DELETE permissions
//
// Applying the same menu repeatedly creates no new rows; a concurrent
// duplicate insert for the same candidate is resolved by the unique index
// on (code, type, action, tenant_id) and treated as a no-op here.
type PermissionGenerator struct {
	db *gorm.DB
}

// NewPermissionGenerator creates a generator backed by the given store
func NewPermissionGenerator(db *gorm.DB) *PermissionGenerator {
	return &PermissionGenerator{db: db}
}

// ApplyMenu creates the permissions implied by a menu catalog item and
// returns the number of rows created. Candidates failing individually are
// logged and skipped; one failure never aborts the others.
func (g *PermissionGenerator) ApplyMenu(ctx context.Context, menu *model.Menu) int {
	log := logger.FromContext(ctx)

	if menu.Code == "" {
		// catalog items without a code are intentionally unmanaged
		log.Warn("menu has no code, skipping permission generation", zap.Uint("menu_id", menu.ID))
		return 0
	}

	var candidates []model.Permission
	if menu.APIEndpoint != "" {
		candidates = append(candidates, g.candidate(menu, model.PermissionTypeAPI, model.ActionRead, menu.APIEndpoint))
	}
	if menu.Path != "" {
		for _, action := range []string{model.ActionRead, model.ActionWrite, model.ActionDelete} {
			candidates = append(candidates, g.candidate(menu, model.PermissionTypeMenu, action, menu.Path))
		}
	}

	created := 0
	for i := range candidates {
		perm := candidates[i]

		var count int64
		err := g.db.WithContext(ctx).Model(&model.Permission{}).
			Where("code = ? AND type = ? AND action = ? AND tenant_id = ?",
				perm.Code, perm.Type, perm.Action, perm.TenantID).
			Count(&count).Error
		if err != nil {
			log.Error("failed to check permission existence",
				zap.String("code", perm.FullCode()), zap.Error(err))
			prometheus.RecordPermissionGeneration("failed")
			continue
		}
		if count > 0 {
			log.Debug("permission already exists, skipping", zap.String("code", perm.FullCode()))
			prometheus.RecordPermissionGeneration("exists")
			continue
		}

		if err := g.db.WithContext(ctx).Create(&perm).Error; err != nil {
			// expected under concurrent generation for the same menu code:
			// the unique index lets one insert survive, the rest land here
			log.Warn("failed to create permission",
				zap.String("code", perm.FullCode()), zap.Error(err))
			prometheus.RecordPermissionGeneration("failed")
			continue
		}

		created++
		prometheus.RecordPermissionGeneration("created")
		log.Debug("created permission", zap.String("code", perm.FullCode()))
	}

	log.Info("permission generation completed",
		zap.String("menu_code", menu.Code),
		zap.Int("candidates", len(candidates)),
		zap.Int("created", created))

	return created
}

func (g *PermissionGenerator) candidate(menu *model.Menu, permType, action, resourcePath string) model.Permission {
	return model.Permission{
		Code:         menu.Code,
		Type:         permType,
		Action:       action,
		ResourcePath: resourcePath,
		TenantID:     menu.TenantID,
		MenuID:       &menu.ID,
		Description:  "Auto-generated from menu: " + menu.Code,
	}
}
