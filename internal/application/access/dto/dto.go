package dto

import "time"

type CreateRoleRequest struct {
	Code        string `json:"code" validate:"required,max=20"`
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description"`
}

type UpdateRoleRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=100"`
	Description *string `json:"description"`
}

type DeactivateRoleRequest struct {
	Strategy   string `json:"strategy" validate:"required,oneof=reassign fallback"`
	TargetRole string `json:"target_role"`
	Reason     string `json:"reason" validate:"required"`
}

type DeactivateRoleResponse struct {
	RoleCode              string `json:"role_code"`
	TargetRoleCode        string `json:"target_role_code"`
	ReassignedCount       int    `json:"reassigned_count"`
	RemovedDuplicateCount int    `json:"removed_duplicate_count"`
}

type RoleResponse struct {
	ID          uint       `json:"id"`
	Code        string     `json:"code"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	IsActive    bool       `json:"is_active"`
	IsSystem    bool       `json:"is_system"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type CreatePermissionRequest struct {
	Code        string `json:"code" validate:"required,max=100"`
	Name        string `json:"name" validate:"required,max=100"`
	Module      string `json:"module" validate:"max=50"`
	Description string `json:"description"`
}

type UpdatePermissionRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=100"`
	Module      *string `json:"module" validate:"omitempty,max=50"`
	Description *string `json:"description"`
}

type PermissionResponse struct {
	ID          uint      `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Module      string    `json:"module"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type SetRolePermissionsRequest struct {
	PermissionIDs []uint `json:"permission_ids" validate:"required"`
}

type AssignUserRoleRequest struct {
	UserID uint `json:"user_id" validate:"required"`
	RoleID uint `json:"role_id" validate:"required"`
}

type UserRoleResponse struct {
	RoleID     uint      `json:"role_id"`
	RoleCode   string    `json:"role_code"`
	RoleName   string    `json:"role_name"`
	IsActive   bool      `json:"is_active"`
	AssignedAt time.Time `json:"assigned_at,omitempty"`
}

type SetOverrideRequest struct {
	UserID       uint `json:"user_id" validate:"required"`
	PermissionID uint `json:"permission_id" validate:"required"`
	IsGranted    *bool `json:"is_granted" validate:"required"`
}

type OverrideResponse struct {
	ID           uint      `json:"id"`
	UserID       uint      `json:"user_id"`
	PermissionID uint      `json:"permission_id"`
	IsGranted    bool      `json:"is_granted"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type ResolvedPermissionsResponse struct {
	UserID      uint     `json:"user_id"`
	ActiveRole  string   `json:"active_role,omitempty"`
	IsSuperuser bool     `json:"is_superuser"`
	Permissions []string `json:"permissions"`
}
