package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"instra/internal/domain/profile"
	"instra/internal/infrastructure/persistence/models"
	"instra/internal/shared/db"
)

type ProfileConfigRepositoryImpl struct {
	db *gorm.DB
}

func NewProfileConfigRepository(database *gorm.DB) profile.ConfigRepository {
	return &ProfileConfigRepositoryImpl{db: database}
}

func (r *ProfileConfigRepositoryImpl) Create(ctx context.Context, config *profile.RoleProfileConfig) error {
	model := &models.RoleProfileConfigModel{
		RoleCode:   config.RoleCode(),
		IsRequired: config.IsRequired(),
		Storage:    string(config.Storage()),
	}

	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.Create(model).Error; err != nil {
		return fmt.Errorf("failed to create profile config: %w", err)
	}

	return config.SetID(model.ID)
}

func (r *ProfileConfigRepositoryImpl) GetByRoleCode(ctx context.Context, roleCode string) (*profile.RoleProfileConfig, error) {
	var model models.RoleProfileConfigModel
	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.Where("role_code = ?", roleCode).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get profile config: %w", err)
	}
	return reconstructProfileConfig(&model)
}

func (r *ProfileConfigRepositoryImpl) List(ctx context.Context) ([]*profile.RoleProfileConfig, error) {
	var configModels []*models.RoleProfileConfigModel
	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.Order("role_code ASC").Find(&configModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list profile configs: %w", err)
	}

	configs := make([]*profile.RoleProfileConfig, 0, len(configModels))
	for _, model := range configModels {
		config, err := reconstructProfileConfig(model)
		if err != nil {
			return nil, fmt.Errorf("failed to reconstruct profile config: %w", err)
		}
		configs = append(configs, config)
	}
	return configs, nil
}

func (r *ProfileConfigRepositoryImpl) Update(ctx context.Context, config *profile.RoleProfileConfig) error {
	tx := db.GetTxFromContext(ctx, r.db)
	result := tx.Model(&models.RoleProfileConfigModel{}).
		Where("id = ?", config.ID()).
		Updates(map[string]interface{}{
			"is_required": config.IsRequired(),
			"storage":     string(config.Storage()),
			"updated_at":  config.UpdatedAt(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update profile config: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("profile config not found: %d", config.ID())
	}
	return nil
}

func reconstructProfileConfig(model *models.RoleProfileConfigModel) (*profile.RoleProfileConfig, error) {
	return profile.ReconstructRoleProfileConfig(
		model.ID,
		model.RoleCode,
		model.IsRequired,
		profile.StorageKind(model.Storage),
		model.CreatedAt,
		model.UpdatedAt,
	)
}

type FieldDefinitionRepositoryImpl struct {
	db *gorm.DB
}

func NewFieldDefinitionRepository(database *gorm.DB) profile.FieldDefinitionRepository {
	return &FieldDefinitionRepositoryImpl{db: database}
}

func (r *FieldDefinitionRepositoryImpl) Create(ctx context.Context, def *profile.FieldDefinition) error {
	options, err := marshalOptions(def.Options())
	if err != nil {
		return fmt.Errorf("failed to marshal field options: %w", err)
	}

	model := &models.ProfileFieldDefinitionModel{
		ConfigID:  def.ConfigID(),
		Key:       def.Key(),
		Label:     def.Label(),
		FieldType: string(def.Type()),
		Required:  def.Required(),
		Options:   options,
		Stage:     def.Stage(),
	}

	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.Create(model).Error; err != nil {
		return fmt.Errorf("failed to create field definition: %w", err)
	}

	return def.SetID(model.ID)
}

func (r *FieldDefinitionRepositoryImpl) GetByID(ctx context.Context, id uint) (*profile.FieldDefinition, error) {
	var model models.ProfileFieldDefinitionModel
	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.First(&model, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get field definition: %w", err)
	}
	return reconstructFieldDefinition(&model)
}

func (r *FieldDefinitionRepositoryImpl) ListForConfig(ctx context.Context, configID uint) ([]*profile.FieldDefinition, error) {
	var defModels []*models.ProfileFieldDefinitionModel
	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.Where("config_id = ?", configID).
		Order("id ASC").
		Find(&defModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list field definitions: %w", err)
	}

	defs := make([]*profile.FieldDefinition, 0, len(defModels))
	for _, model := range defModels {
		def, err := reconstructFieldDefinition(model)
		if err != nil {
			return nil, fmt.Errorf("failed to reconstruct field definition: %w", err)
		}
		defs = append(defs, def)
	}
	return defs, nil
}

func (r *FieldDefinitionRepositoryImpl) Update(ctx context.Context, def *profile.FieldDefinition) error {
	options, err := marshalOptions(def.Options())
	if err != nil {
		return fmt.Errorf("failed to marshal field options: %w", err)
	}

	tx := db.GetTxFromContext(ctx, r.db)
	result := tx.Model(&models.ProfileFieldDefinitionModel{}).
		Where("id = ?", def.ID()).
		Updates(map[string]interface{}{
			"label":      def.Label(),
			"field_type": string(def.Type()),
			"required":   def.Required(),
			"options":    options,
			"stage":      def.Stage(),
			"updated_at": def.UpdatedAt(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update field definition: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("field definition not found: %d", def.ID())
	}
	return nil
}

func (r *FieldDefinitionRepositoryImpl) Delete(ctx context.Context, id uint) error {
	tx := db.GetTxFromContext(ctx, r.db)
	result := tx.Delete(&models.ProfileFieldDefinitionModel{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete field definition: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("field definition not found: %d", id)
	}
	return nil
}

func reconstructFieldDefinition(model *models.ProfileFieldDefinitionModel) (*profile.FieldDefinition, error) {
	options, err := unmarshalOptions(model.Options)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal field options: %w", err)
	}

	return profile.ReconstructFieldDefinition(
		model.ID,
		model.ConfigID,
		model.Key,
		model.Label,
		profile.FieldType(model.FieldType),
		model.Required,
		options,
		model.Stage,
		model.CreatedAt,
		model.UpdatedAt,
	)
}

func marshalOptions(options []string) (datatypes.JSON, error) {
	if options == nil {
		return nil, nil
	}
	raw, err := json.Marshal(options)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

func unmarshalOptions(raw datatypes.JSON) ([]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var options []string
	if err := json.Unmarshal(raw, &options); err != nil {
		return nil, err
	}
	return options, nil
}
