package migration

import (
	"fmt"

	"gorm.io/gorm"

	"instra/internal/infrastructure/persistence/models"
	"instra/internal/shared/logger"
)

// AutoMigrate lets gorm sync the schema. Development convenience only;
// deployed environments run the SQL migrations.
func AutoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.UserModel{},
		&models.RoleModel{},
		&models.PermissionModel{},
		&models.RolePermissionModel{},
		&models.UserRoleModel{},
		&models.UserPermissionOverrideModel{},
		&models.OnboardRequestModel{},
		&models.RoleProfileConfigModel{},
		&models.ProfileFieldDefinitionModel{},
		&models.StudentProfileModel{},
		&models.TrainerProfileModel{},
		&models.GenericProfileModel{},
		&models.AuditLogModel{},
	)
	if err != nil {
		return fmt.Errorf("failed to auto-migrate schema: %w", err)
	}

	logger.Info("schema auto-migrated")
	return nil
}
