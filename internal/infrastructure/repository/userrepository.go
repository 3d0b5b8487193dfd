package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"instra/internal/domain/identity"
	"instra/internal/infrastructure/persistence/models"
	"instra/internal/shared/constants"
	"instra/internal/shared/db"
)

type UserRepositoryImpl struct {
	db *gorm.DB
}

func NewUserRepository(database *gorm.DB) identity.UserRepository {
	return &UserRepositoryImpl{db: database}
}

func (r *UserRepositoryImpl) Create(ctx context.Context, user *identity.User) error {
	model := &models.UserModel{
		Email:              user.Email(),
		Name:               user.Name(),
		PasswordHash:       user.PasswordHash(),
		IsActive:           user.IsActive(),
		IsSuperuser:        user.IsSuperuser(),
		MustChangePassword: user.MustChangePassword(),
		LastActiveRole:     user.LastActiveRole(),
	}

	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.Create(model).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return user.SetID(model.ID)
}

func (r *UserRepositoryImpl) GetByID(ctx context.Context, id uint) (*identity.User, error) {
	var model models.UserModel
	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.First(&model, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return reconstructUser(&model)
}

func (r *UserRepositoryImpl) GetByEmail(ctx context.Context, email string) (*identity.User, error) {
	var model models.UserModel
	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.Where("email = ?", email).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return reconstructUser(&model)
}

func (r *UserRepositoryImpl) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.Model(&models.UserModel{}).
		Where("email = ?", email).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check user email: %w", err)
	}
	return count > 0, nil
}

func (r *UserRepositoryImpl) List(ctx context.Context, filter identity.UserFilter) ([]*identity.User, int64, error) {
	tx := db.GetTxFromContext(ctx, r.db)
	query := tx.Model(&models.UserModel{})

	if filter.Email != "" {
		query = query.Where("email = ?", filter.Email)
	}
	if filter.Name != "" {
		query = query.Where("name LIKE ?", "%"+filter.Name+"%")
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	if filter.IsSuperuser != nil {
		query = query.Where("is_superuser = ?", *filter.IsSuperuser)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
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

	var userModels []*models.UserModel
	if err := query.Find(&userModels).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]*identity.User, 0, len(userModels))
	for _, model := range userModels {
		user, err := reconstructUser(model)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to reconstruct user: %w", err)
		}
		users = append(users, user)
	}

	return users, total, nil
}

func (r *UserRepositoryImpl) Update(ctx context.Context, user *identity.User) error {
	tx := db.GetTxFromContext(ctx, r.db)
	result := tx.Model(&models.UserModel{}).
		Where("id = ?", user.ID()).
		Updates(map[string]interface{}{
			"name":                 user.Name(),
			"password_hash":        user.PasswordHash(),
			"is_active":            user.IsActive(),
			"is_superuser":         user.IsSuperuser(),
			"must_change_password": user.MustChangePassword(),
			"last_active_role":     user.LastActiveRole(),
			"updated_at":           user.UpdatedAt(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("user not found: %d", user.ID())
	}
	return nil
}

func reconstructUser(model *models.UserModel) (*identity.User, error) {
	return identity.ReconstructUser(
		model.ID,
		model.Email,
		model.Name,
		model.PasswordHash,
		model.IsActive,
		model.IsSuperuser,
		model.MustChangePassword,
		model.LastActiveRole,
		model.CreatedAt,
		model.UpdatedAt,
	)
}
