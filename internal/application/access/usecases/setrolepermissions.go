package usecases

import (
	"context"
	"fmt"

	"instra/internal/application/access/dto"
	"instra/internal/application/access/services"
	"instra/internal/domain/access"
	"instra/internal/domain/audit"
	"instra/internal/shared/db"
	"instra/internal/shared/errors"
	"instra/internal/shared/logger"
)

// SetRolePermissionsUseCase replaces a role's grants with exactly the
// requested permission set and drops the role's cached codes before
// returning, so revocation is visible on the next resolution.
type SetRolePermissionsUseCase struct {
	roleRepo    access.RoleRepository
	permRepo    access.PermissionRepository
	txManager   *db.TransactionManager
	invalidator *services.CacheInvalidator
	recorder    audit.Recorder
	logger      logger.Interface
}

func NewSetRolePermissionsUseCase(
	roleRepo access.RoleRepository,
	permRepo access.PermissionRepository,
	txManager *db.TransactionManager,
	invalidator *services.CacheInvalidator,
	recorder audit.Recorder,
	logger logger.Interface,
) *SetRolePermissionsUseCase {
	return &SetRolePermissionsUseCase{
		roleRepo:    roleRepo,
		permRepo:    permRepo,
		txManager:   txManager,
		invalidator: invalidator,
		recorder:    recorder,
		logger:      logger,
	}
}

func (uc *SetRolePermissionsUseCase) Execute(ctx context.Context, actorID, roleID uint, request dto.SetRolePermissionsRequest) ([]*dto.PermissionResponse, error) {
	role, err := uc.roleRepo.GetByID(ctx, roleID)
	if err != nil {
		return nil, fmt.Errorf("failed to get role: %w", err)
	}
	if role == nil {
		return nil, errors.NewNotFoundError("role not found")
	}

	perms, err := uc.permRepo.GetByIDs(ctx, request.PermissionIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load permissions: %w", err)
	}
	if len(perms) != len(uniqueIDs(request.PermissionIDs)) {
		return nil, errors.NewValidationError("one or more permission IDs do not exist")
	}

	err = uc.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		return uc.permRepo.SetForRole(txCtx, roleID, request.PermissionIDs)
	})
	if err != nil {
		uc.logger.Errorw("failed to set role permissions",
			"role_id", roleID, "error", err)
		return nil, fmt.Errorf("failed to set role permissions: %w", err)
	}

	uc.invalidator.RoleChanged(ctx, role.Code())

	uc.logger.Infow("role permissions set",
		"role", role.Code(), "count", len(perms))
	uc.recorder.Record(ctx, audit.Record{
		ActorID:    &actorID,
		Action:     audit.ActionRolePermsSet,
		EntityType: "role",
		EntityID:   role.Code(),
		Detail:     map[string]any{"permission_count": len(perms)},
	})

	responses := make([]*dto.PermissionResponse, 0, len(perms))
	for _, perm := range perms {
		responses = append(responses, toPermissionResponse(perm))
	}
	return responses, nil
}

type ListRolePermissionsUseCase struct {
	roleRepo access.RoleRepository
	permRepo access.PermissionRepository
	logger   logger.Interface
}

func NewListRolePermissionsUseCase(
	roleRepo access.RoleRepository,
	permRepo access.PermissionRepository,
	logger logger.Interface,
) *ListRolePermissionsUseCase {
	return &ListRolePermissionsUseCase{roleRepo: roleRepo, permRepo: permRepo, logger: logger}
}

func (uc *ListRolePermissionsUseCase) Execute(ctx context.Context, roleID uint) ([]*dto.PermissionResponse, error) {
	role, err := uc.roleRepo.GetByID(ctx, roleID)
	if err != nil {
		return nil, fmt.Errorf("failed to get role: %w", err)
	}
	if role == nil {
		return nil, errors.NewNotFoundError("role not found")
	}

	perms, err := uc.permRepo.ListForRole(ctx, roleID)
	if err != nil {
		return nil, fmt.Errorf("failed to list role permissions: %w", err)
	}

	responses := make([]*dto.PermissionResponse, 0, len(perms))
	for _, perm := range perms {
		responses = append(responses, toPermissionResponse(perm))
	}
	return responses, nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
