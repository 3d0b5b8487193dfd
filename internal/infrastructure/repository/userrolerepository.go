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

type UserRoleRepositoryImpl struct {
	db *gorm.DB
}

func NewUserRoleRepository(database *gorm.DB) access.UserRoleRepository {
	return &UserRoleRepositoryImpl{db: database}
}

func (r *UserRoleRepositoryImpl) Assign(ctx context.Context, binding *access.UserRoleBinding) error {
	model := &models.UserRoleModel{
		UserID:     binding.UserID(),
		RoleID:     binding.RoleID(),
		AssignedAt: binding.AssignedAt(),
		AssignedBy: binding.AssignedBy(),
	}

	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.Create(model).Error; err != nil {
		return fmt.Errorf("failed to assign role: %w", err)
	}

	return binding.SetID(model.ID)
}

func (r *UserRoleRepositoryImpl) Remove(ctx context.Context, userID, roleID uint) error {
	tx := db.GetTxFromContext(ctx, r.db)
	result := tx.Where("user_id = ? AND role_id = ?", userID, roleID).
		Delete(&models.UserRoleModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to remove role binding: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("binding not found for user %d role %d", userID, roleID)
	}
	return nil
}

func (r *UserRoleRepositoryImpl) Holds(ctx context.Context, userID, roleID uint) (bool, error) {
	var count int64
	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.Model(&models.UserRoleModel{}).
		Where("user_id = ? AND role_id = ?", userID, roleID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check role binding: %w", err)
	}
	return count > 0, nil
}

// ListRolesForUser returns the user's roles ordered earliest-assigned first,
// which fixes the deterministic fallback when no active role is specified.
func (r *UserRoleRepositoryImpl) ListRolesForUser(ctx context.Context, userID uint) ([]*access.Role, error) {
	var roleModels []*models.RoleModel
	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.Model(&models.RoleModel{}).
		Joins(fmt.Sprintf("JOIN %s ur ON ur.role_id = %s.id",
			constants.TableUserRoles, constants.TableRoles)).
		Where("ur.user_id = ?", userID).
		Order("ur.assigned_at ASC, ur.id ASC").
		Find(&roleModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list user roles: %w", err)
	}

	roles := make([]*access.Role, 0, len(roleModels))
	for _, model := range roleModels {
		role, err := reconstructRole(model)
		if err != nil {
			return nil, fmt.Errorf("failed to reconstruct role: %w", err)
		}
		roles = append(roles, role)
	}
	return roles, nil
}

// ListBindingsForRole locks the matching rows when a transaction is in
// flight, so role deactivation reassigns against a stable set.
func (r *UserRoleRepositoryImpl) ListBindingsForRole(ctx context.Context, roleID uint) ([]*access.UserRoleBinding, error) {
	var bindingModels []*models.UserRoleModel
	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("role_id = ?", roleID).
		Order("id ASC").
		Find(&bindingModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list role bindings: %w", err)
	}

	bindings := make([]*access.UserRoleBinding, 0, len(bindingModels))
	for _, model := range bindingModels {
		binding, err := access.ReconstructUserRoleBinding(
			model.ID,
			model.UserID,
			model.RoleID,
			model.AssignedAt,
			model.AssignedBy,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to reconstruct binding: %w", err)
		}
		bindings = append(bindings, binding)
	}
	return bindings, nil
}

func (r *UserRoleRepositoryImpl) DeleteBinding(ctx context.Context, bindingID uint) error {
	tx := db.GetTxFromContext(ctx, r.db)
	result := tx.Delete(&models.UserRoleModel{}, bindingID)
	if result.Error != nil {
		return fmt.Errorf("failed to delete binding: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("binding not found: %d", bindingID)
	}
	return nil
}

func (r *UserRoleRepositoryImpl) RebindToRole(ctx context.Context, bindingID, newRoleID uint) error {
	tx := db.GetTxFromContext(ctx, r.db)
	result := tx.Model(&models.UserRoleModel{}).
		Where("id = ?", bindingID).
		Update("role_id", newRoleID)
	if result.Error != nil {
		return fmt.Errorf("failed to rebind role: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("binding not found: %d", bindingID)
	}
	return nil
}
