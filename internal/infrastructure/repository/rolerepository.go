package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"instra/internal/domain/access"
	"instra/internal/infrastructure/persistence/models"
	"instra/internal/shared/constants"
	"instra/internal/shared/db"
)

type RoleRepositoryImpl struct {
	db *gorm.DB
}

func NewRoleRepository(database *gorm.DB) access.RoleRepository {
	return &RoleRepositoryImpl{db: database}
}

func (r *RoleRepositoryImpl) Create(ctx context.Context, role *access.Role) error {
	model := &models.RoleModel{
		Code:        role.Code(),
		Name:        role.Name(),
		Description: role.Description(),
		IsActive:    role.IsActive(),
		IsSystem:    role.IsSystem(),
	}

	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.Create(model).Error; err != nil {
		return fmt.Errorf("failed to create role: %w", err)
	}

	return role.SetID(model.ID)
}

func (r *RoleRepositoryImpl) GetByID(ctx context.Context, id uint) (*access.Role, error) {
	var model models.RoleModel
	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.First(&model, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get role: %w", err)
	}
	return reconstructRole(&model)
}

func (r *RoleRepositoryImpl) GetByCode(ctx context.Context, code string) (*access.Role, error) {
	var model models.RoleModel
	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.Where("code = ?", code).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get role by code: %w", err)
	}
	return reconstructRole(&model)
}

func (r *RoleRepositoryImpl) GetByCodeForUpdate(ctx context.Context, code string) (*access.Role, error) {
	var model models.RoleModel
	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("code = ?", code).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to lock role by code: %w", err)
	}
	return reconstructRole(&model)
}

func (r *RoleRepositoryImpl) List(ctx context.Context, filter access.RoleFilter) ([]*access.Role, int64, error) {
	tx := db.GetTxFromContext(ctx, r.db)
	query := tx.Model(&models.RoleModel{})

	if filter.Name != "" {
		query = query.Where("name LIKE ?", "%"+filter.Name+"%")
	}
	if filter.Code != "" {
		query = query.Where("code = ?", filter.Code)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count roles: %w", err)
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
	query = query.Offset(offset).Limit(pageSize).Order("created_at DESC")

	var roleModels []*models.RoleModel
	if err := query.Find(&roleModels).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list roles: %w", err)
	}

	roles := make([]*access.Role, 0, len(roleModels))
	for _, model := range roleModels {
		role, err := reconstructRole(model)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to reconstruct role: %w", err)
		}
		roles = append(roles, role)
	}

	return roles, total, nil
}

func (r *RoleRepositoryImpl) Update(ctx context.Context, role *access.Role) error {
	tx := db.GetTxFromContext(ctx, r.db)
	result := tx.Model(&models.RoleModel{}).
		Where("id = ?", role.ID()).
		Updates(map[string]interface{}{
			"name":            role.Name(),
			"description":     role.Description(),
			"is_active":       role.IsActive(),
			"is_system":       role.IsSystem(),
			"deleted_at":      role.DeletedAt(),
			"deleted_by":      role.DeletedBy(),
			"deletion_reason": role.DeletionReason(),
			"updated_at":      role.UpdatedAt(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update role: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("role not found: %d", role.ID())
	}
	return nil
}

func (r *RoleRepositoryImpl) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.Model(&models.RoleModel{}).
		Where("code = ?", code).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check role code: %w", err)
	}
	return count > 0, nil
}

func reconstructRole(model *models.RoleModel) (*access.Role, error) {
	return access.ReconstructRole(
		model.ID,
		model.Code,
		model.Name,
		model.Description,
		model.IsActive,
		model.IsSystem,
		model.DeletedAt,
		model.DeletedBy,
		model.DeletionReason,
		model.CreatedAt,
		model.UpdatedAt,
	)
}
