package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"instra/internal/domain/access"
	"instra/internal/infrastructure/persistence/models"
	"instra/internal/shared/constants"
	"instra/internal/shared/db"
	appErrors "instra/internal/shared/errors"
)

type PermissionRepositoryImpl struct {
	db *gorm.DB
}

func NewPermissionRepository(database *gorm.DB) access.PermissionRepository {
	return &PermissionRepositoryImpl{db: database}
}

func (r *PermissionRepositoryImpl) Create(ctx context.Context, permission *access.Permission) error {
	model := &models.PermissionModel{
		Code:        permission.Code(),
		Name:        permission.Name(),
		Module:      permission.Module(),
		Description: permission.Description(),
	}

	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.Create(model).Error; err != nil {
		return fmt.Errorf("failed to create permission: %w", err)
	}

	return permission.SetID(model.ID)
}

func (r *PermissionRepositoryImpl) GetByID(ctx context.Context, id uint) (*access.Permission, error) {
	var model models.PermissionModel
	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.First(&model, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get permission: %w", err)
	}
	return reconstructPermission(&model)
}

func (r *PermissionRepositoryImpl) GetByCode(ctx context.Context, code string) (*access.Permission, error) {
	var model models.PermissionModel
	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.Where("code = ?", code).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get permission by code: %w", err)
	}
	return reconstructPermission(&model)
}

func (r *PermissionRepositoryImpl) GetByIDs(ctx context.Context, ids []uint) ([]*access.Permission, error) {
	if len(ids) == 0 {
		return []*access.Permission{}, nil
	}

	var permModels []*models.PermissionModel
	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.Where("id IN ?", ids).Find(&permModels).Error; err != nil {
		return nil, fmt.Errorf("failed to get permissions by ids: %w", err)
	}

	perms := make([]*access.Permission, 0, len(permModels))
	for _, model := range permModels {
		perm, err := reconstructPermission(model)
		if err != nil {
			return nil, fmt.Errorf("failed to reconstruct permission: %w", err)
		}
		perms = append(perms, perm)
	}
	return perms, nil
}

func (r *PermissionRepositoryImpl) List(ctx context.Context, filter access.PermissionFilter) ([]*access.Permission, int64, error) {
	tx := db.GetTxFromContext(ctx, r.db)
	query := tx.Model(&models.PermissionModel{})

	if filter.Module != "" {
		query = query.Where("module = ?", filter.Module)
	}
	if filter.Code != "" {
		query = query.Where("code = ?", filter.Code)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count permissions: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = constants.DefaultPage
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = constants.DefaultPageSize
	}
	if pageSize > constants.MaxPageSize {
		pageSize = constants.MaxPageSize
	}

	offset := (page - 1) * pageSize
	query = query.Offset(offset).Limit(pageSize).Order("module ASC, code ASC")

	var permModels []*models.PermissionModel
	if err := query.Find(&permModels).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list permissions: %w", err)
	}

	perms := make([]*access.Permission, 0, len(permModels))
	for _, model := range permModels {
		perm, err := reconstructPermission(model)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to reconstruct permission: %w", err)
		}
		perms = append(perms, perm)
	}

	return perms, total, nil
}

func (r *PermissionRepositoryImpl) Update(ctx context.Context, permission *access.Permission) error {
	tx := db.GetTxFromContext(ctx, r.db)
	result := tx.Model(&models.PermissionModel{}).
		Where("id = ?", permission.ID()).
		Updates(map[string]interface{}{
			"name":        permission.Name(),
			"module":      permission.Module(),
			"description": permission.Description(),
			"updated_at":  permission.UpdatedAt(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update permission: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("permission not found: %d", permission.ID())
	}
	return nil
}

func (r *PermissionRepositoryImpl) Delete(ctx context.Context, id uint) error {
	tx := db.GetTxFromContext(ctx, r.db)

	// Drop dependent grant and override rows first so no dangling
	// references survive the delete.
	if err := tx.Where("permission_id = ?", id).
		Delete(&models.RolePermissionModel{}).Error; err != nil {
		return fmt.Errorf("failed to delete role grants: %w", err)
	}
	if err := tx.Where("permission_id = ?", id).
		Delete(&models.UserPermissionOverrideModel{}).Error; err != nil {
		return fmt.Errorf("failed to delete overrides: %w", err)
	}

	result := tx.Delete(&models.PermissionModel{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete permission: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("permission not found: %d", id)
	}
	return nil
}

func (r *PermissionRepositoryImpl) ListAllCodes(ctx context.Context) ([]string, error) {
	var codes []string
	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.Model(&models.PermissionModel{}).
		Order("code ASC").
		Pluck("code", &codes).Error; err != nil {
		return nil, fmt.Errorf("failed to list permission codes: %w", err)
	}
	return codes, nil
}

func (r *PermissionRepositoryImpl) ListCodesForRole(ctx context.Context, roleID uint) ([]string, error) {
	var codes []string
	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.Model(&models.PermissionModel{}).
		Joins(fmt.Sprintf("JOIN %s rp ON rp.permission_id = %s.id",
			constants.TableRolePermissions, constants.TablePermissions)).
		Where("rp.role_id = ?", roleID).
		Order("code ASC").
		Pluck(fmt.Sprintf("%s.code", constants.TablePermissions), &codes).Error; err != nil {
		return nil, fmt.Errorf("failed to list role permission codes: %w", err)
	}
	return codes, nil
}

func (r *PermissionRepositoryImpl) ListRoleCodesForPermission(ctx context.Context, permissionID uint) ([]string, error) {
	var codes []string
	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.Model(&models.RoleModel{}).
		Joins(fmt.Sprintf("JOIN %s rp ON rp.role_id = %s.id",
			constants.TableRolePermissions, constants.TableRoles)).
		Where("rp.permission_id = ?", permissionID).
		Order("code ASC").
		Pluck(fmt.Sprintf("%s.code", constants.TableRoles), &codes).Error; err != nil {
		return nil, fmt.Errorf("failed to list granting role codes: %w", err)
	}
	return codes, nil
}

func (r *PermissionRepositoryImpl) SetForRole(ctx context.Context, roleID uint, permissionIDs []uint) error {
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.Where("role_id = ?", roleID).
		Delete(&models.RolePermissionModel{}).Error; err != nil {
		return fmt.Errorf("failed to clear role permissions: %w", err)
	}

	if len(permissionIDs) == 0 {
		return nil
	}

	grants := make([]*models.RolePermissionModel, 0, len(permissionIDs))
	for _, pid := range permissionIDs {
		grants = append(grants, &models.RolePermissionModel{
			RoleID:       roleID,
			PermissionID: pid,
		})
	}
	if err := tx.Create(&grants).Error; err != nil {
		return fmt.Errorf("failed to set role permissions: %w", err)
	}
	return nil
}

func (r *PermissionRepositoryImpl) AssignToRole(ctx context.Context, roleID uint, permissionIDs []uint) error {
	if len(permissionIDs) == 0 {
		return nil
	}

	tx := db.GetTxFromContext(ctx, r.db)
	for _, pid := range permissionIDs {
		grant := &models.RolePermissionModel{RoleID: roleID, PermissionID: pid}
		if err := tx.Create(grant).Error; err != nil {
			if appErrors.IsDuplicateError(err) {
				continue
			}
			return fmt.Errorf("failed to assign permission to role: %w", err)
		}
	}
	return nil
}

func (r *PermissionRepositoryImpl) RemoveFromRole(ctx context.Context, roleID uint, permissionIDs []uint) error {
	if len(permissionIDs) == 0 {
		return nil
	}

	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.Where("role_id = ? AND permission_id IN ?", roleID, permissionIDs).
		Delete(&models.RolePermissionModel{}).Error; err != nil {
		return fmt.Errorf("failed to remove permissions from role: %w", err)
	}
	return nil
}

func (r *PermissionRepositoryImpl) ListForRole(ctx context.Context, roleID uint) ([]*access.Permission, error) {
	var permModels []*models.PermissionModel
	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.Model(&models.PermissionModel{}).
		Joins(fmt.Sprintf("JOIN %s rp ON rp.permission_id = %s.id",
			constants.TableRolePermissions, constants.TablePermissions)).
		Where("rp.role_id = ?", roleID).
		Order("code ASC").
		Find(&permModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list role permissions: %w", err)
	}

	perms := make([]*access.Permission, 0, len(permModels))
	for _, model := range permModels {
		perm, err := reconstructPermission(model)
		if err != nil {
			return nil, fmt.Errorf("failed to reconstruct permission: %w", err)
		}
		perms = append(perms, perm)
	}
	return perms, nil
}

func reconstructPermission(model *models.PermissionModel) (*access.Permission, error) {
	return access.ReconstructPermission(
		model.ID,
		model.Code,
		model.Name,
		model.Module,
		model.Description,
		model.CreatedAt,
		model.UpdatedAt,
	)
}
