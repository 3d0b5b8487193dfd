package usecases

import (
	"instra/internal/application/access/dto"
	"instra/internal/domain/access"
)

func toRoleResponse(role *access.Role) *dto.RoleResponse {
	return &dto.RoleResponse{
		ID:          role.ID(),
		Code:        role.Code(),
		Name:        role.Name(),
		Description: role.Description(),
		IsActive:    role.IsActive(),
		IsSystem:    role.IsSystem(),
		DeletedAt:   role.DeletedAt(),
		CreatedAt:   role.CreatedAt(),
		UpdatedAt:   role.UpdatedAt(),
	}
}

func toPermissionResponse(perm *access.Permission) *dto.PermissionResponse {
	return &dto.PermissionResponse{
		ID:          perm.ID(),
		Code:        perm.Code(),
		Name:        perm.Name(),
		Module:      perm.Module(),
		Description: perm.Description(),
		CreatedAt:   perm.CreatedAt(),
		UpdatedAt:   perm.UpdatedAt(),
	}
}

func toOverrideResponse(override *access.PermissionOverride) *dto.OverrideResponse {
	return &dto.OverrideResponse{
		ID:           override.ID(),
		UserID:       override.UserID(),
		PermissionID: override.PermissionID(),
		IsGranted:    override.IsGranted(),
		CreatedAt:    override.CreatedAt(),
		UpdatedAt:    override.UpdatedAt(),
	}
}
