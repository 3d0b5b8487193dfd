package models

import (
	"time"

	"instra/internal/shared/constants"
)

type RolePermissionModel struct {
	ID           uint `gorm:"primarykey"`
	RoleID       uint `gorm:"not null;uniqueIndex:idx_role_permission"`
	PermissionID uint `gorm:"not null;uniqueIndex:idx_role_permission"`
	CreatedAt    time.Time
}

func (RolePermissionModel) TableName() string {
	return constants.TableRolePermissions
}

type UserRoleModel struct {
	ID         uint `gorm:"primarykey"`
	UserID     uint `gorm:"not null;uniqueIndex:idx_user_role"`
	RoleID     uint `gorm:"not null;uniqueIndex:idx_user_role;index"`
	AssignedAt time.Time `gorm:"not null;index"`
	AssignedBy *uint
	CreatedAt  time.Time
}

func (UserRoleModel) TableName() string {
	return constants.TableUserRoles
}

type UserPermissionOverrideModel struct {
	ID           uint `gorm:"primarykey"`
	UserID       uint `gorm:"not null;uniqueIndex:idx_user_permission"`
	PermissionID uint `gorm:"not null;uniqueIndex:idx_user_permission"`
	IsGranted    bool `gorm:"not null"`
	GrantedBy    *uint
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (UserPermissionOverrideModel) TableName() string {
	return constants.TableUserPermissionOverrides
}
