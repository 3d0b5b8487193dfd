package models

import (
	"time"

	"gorm.io/datatypes"

	"instra/internal/shared/constants"
)

type RoleProfileConfigModel struct {
	ID         uint   `gorm:"primarykey"`
	RoleCode   string `gorm:"uniqueIndex;not null;size:20"`
	IsRequired bool   `gorm:"not null;default:true"`
	Storage    string `gorm:"not null;size:20"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (RoleProfileConfigModel) TableName() string {
	return constants.TableRoleProfileConfigs
}

type ProfileFieldDefinitionModel struct {
	ID        uint   `gorm:"primarykey"`
	ConfigID  uint   `gorm:"not null;uniqueIndex:idx_config_key"`
	Key       string `gorm:"not null;size:100;uniqueIndex:idx_config_key"`
	Label     string `gorm:"not null;size:100"`
	FieldType string `gorm:"not null;size:20"`
	Required  bool   `gorm:"not null;default:false"`
	Options   datatypes.JSON
	Stage     string `gorm:"size:20"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (ProfileFieldDefinitionModel) TableName() string {
	return constants.TableProfileFieldDefinitions
}

// StudentProfileModel is the dedicated profile sink for the student role.
type StudentProfileModel struct {
	ID          uint   `gorm:"primarykey"`
	UserID      uint   `gorm:"uniqueIndex;not null"`
	StudentID   string `gorm:"uniqueIndex;not null;size:20"`
	FirstName   string `gorm:"size:100"`
	LastName    string `gorm:"size:100"`
	DateOfBirth *time.Time
	Phone       string `gorm:"size:30"`
	Guardian    string `gorm:"size:100"`
	Extra       datatypes.JSON
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (StudentProfileModel) TableName() string {
	return constants.TableStudentProfiles
}

// TrainerProfileModel is the dedicated profile sink for the trainer role.
type TrainerProfileModel struct {
	ID             uint   `gorm:"primarykey"`
	UserID         uint   `gorm:"uniqueIndex;not null"`
	TrainerID      string `gorm:"uniqueIndex;not null;size:20"`
	FirstName      string `gorm:"size:100"`
	LastName       string `gorm:"size:100"`
	Phone          string `gorm:"size:30"`
	Specialization string `gorm:"size:100"`
	Extra          datatypes.JSON
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (TrainerProfileModel) TableName() string {
	return constants.TableTrainerProfiles
}

// GenericProfileModel stores profiles for roles without a dedicated table.
type GenericProfileModel struct {
	ID        uint   `gorm:"primarykey"`
	UserID    uint   `gorm:"uniqueIndex;not null"`
	ProfileID string `gorm:"uniqueIndex;not null;size:20"`
	RoleCode  string `gorm:"not null;size:20"`
	Data      datatypes.JSON
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (GenericProfileModel) TableName() string {
	return constants.TableGenericProfiles
}
