package models

import (
	"time"

	"instra/internal/shared/constants"
)

type RoleModel struct {
	ID             uint   `gorm:"primarykey"`
	Code           string `gorm:"uniqueIndex;not null;size:20"`
	Name           string `gorm:"not null;size:100"`
	Description    string `gorm:"type:text"`
	IsActive       bool   `gorm:"not null;default:true"`
	IsSystem       bool   `gorm:"not null;default:false"`
	DeletedAt      *time.Time
	DeletedBy      *uint
	DeletionReason string `gorm:"type:text"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (RoleModel) TableName() string {
	return constants.TableRoles
}

type PermissionModel struct {
	ID          uint   `gorm:"primarykey"`
	Code        string `gorm:"uniqueIndex;not null;size:100"`
	Name        string `gorm:"not null;size:100"`
	Module      string `gorm:"size:50;index"`
	Description string `gorm:"type:text"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (PermissionModel) TableName() string {
	return constants.TablePermissions
}
