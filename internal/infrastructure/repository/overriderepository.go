package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"instra/internal/domain/access"
	"instra/internal/infrastructure/persistence/models"
	"instra/internal/shared/constants"
	"instra/internal/shared/db"
)

type OverrideRepositoryImpl struct {
	db *gorm.DB
}

func NewOverrideRepository(database *gorm.DB) access.OverrideRepository {
	return &OverrideRepositoryImpl{db: database}
}

func (r *OverrideRepositoryImpl) Upsert(ctx context.Context, override *access.PermissionOverride) error {
	tx := db.GetTxFromContext(ctx, r.db)

	var existing models.UserPermissionOverrideModel
	err := tx.Where("user_id = ? AND permission_id = ?", override.UserID(), override.PermissionID()).
		First(&existing).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		return fmt.Errorf("failed to look up override: %w", err)
	}

	if err == gorm.ErrRecordNotFound {
		model := &models.UserPermissionOverrideModel{
			UserID:       override.UserID(),
			PermissionID: override.PermissionID(),
			IsGranted:    override.IsGranted(),
			GrantedBy:    override.GrantedBy(),
		}
		if err := tx.Create(model).Error; err != nil {
			return fmt.Errorf("failed to create override: %w", err)
		}
		return override.SetID(model.ID)
	}

	result := tx.Model(&models.UserPermissionOverrideModel{}).
		Where("id = ?", existing.ID).
		Updates(map[string]interface{}{
			"is_granted": override.IsGranted(),
			"granted_by": override.GrantedBy(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update override: %w", result.Error)
	}
	if override.ID() == 0 {
		return override.SetID(existing.ID)
	}
	return nil
}

func (r *OverrideRepositoryImpl) Remove(ctx context.Context, userID, permissionID uint) error {
	tx := db.GetTxFromContext(ctx, r.db)
	result := tx.Where("user_id = ? AND permission_id = ?", userID, permissionID).
		Delete(&models.UserPermissionOverrideModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to remove override: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("override not found for user %d permission %d", userID, permissionID)
	}
	return nil
}

func (r *OverrideRepositoryImpl) ListForUser(ctx context.Context, userID uint) ([]*access.PermissionOverride, error) {
	var overrideModels []*models.UserPermissionOverrideModel
	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.Where("user_id = ?", userID).
		Order("id ASC").
		Find(&overrideModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list overrides: %w", err)
	}

	overrides := make([]*access.PermissionOverride, 0, len(overrideModels))
	for _, model := range overrideModels {
		override, err := access.ReconstructPermissionOverride(
			model.ID,
			model.UserID,
			model.PermissionID,
			model.IsGranted,
			model.GrantedBy,
			model.CreatedAt,
			model.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to reconstruct override: %w", err)
		}
		overrides = append(overrides, override)
	}
	return overrides, nil
}

func (r *OverrideRepositoryImpl) CodesForUser(ctx context.Context, userID uint) (*access.OverrideCodes, error) {
	type row struct {
		Code      string
		IsGranted bool
	}

	var rows []row
	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.Model(&models.UserPermissionOverrideModel{}).
		Select(fmt.Sprintf("p.code AS code, %s.is_granted AS is_granted",
			constants.TableUserPermissionOverrides)).
		Joins(fmt.Sprintf("JOIN %s p ON p.id = %s.permission_id",
			constants.TablePermissions, constants.TableUserPermissionOverrides)).
		Where("user_id = ?", userID).
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load override codes: %w", err)
	}

	codes := &access.OverrideCodes{
		Allowed: []string{},
		Denied:  []string{},
	}
	for _, r := range rows {
		if r.IsGranted {
			codes.Allowed = append(codes.Allowed, r.Code)
		} else {
			codes.Denied = append(codes.Denied, r.Code)
		}
	}
	return codes, nil
}
