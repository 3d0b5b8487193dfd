package usecases

import (
	"context"
	"fmt"

	"instra/internal/application/access/dto"
	"instra/internal/application/access/services"
	"instra/internal/domain/access"
	"instra/internal/domain/audit"
	"instra/internal/shared/errors"
	"instra/internal/shared/logger"
)

type CreatePermissionUseCase struct {
	permRepo    access.PermissionRepository
	invalidator *services.CacheInvalidator
	recorder    audit.Recorder
	logger      logger.Interface
}

func NewCreatePermissionUseCase(
	permRepo access.PermissionRepository,
	invalidator *services.CacheInvalidator,
	recorder audit.Recorder,
	logger logger.Interface,
) *CreatePermissionUseCase {
	return &CreatePermissionUseCase{
		permRepo:    permRepo,
		invalidator: invalidator,
		recorder:    recorder,
		logger:      logger,
	}
}

func (uc *CreatePermissionUseCase) Execute(ctx context.Context, actorID uint, request dto.CreatePermissionRequest) (*dto.PermissionResponse, error) {
	perm, err := access.NewPermission(request.Code, request.Name, request.Module, request.Description)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	existing, err := uc.permRepo.GetByCode(ctx, perm.Code())
	if err != nil {
		return nil, fmt.Errorf("failed to check permission code: %w", err)
	}
	if existing != nil {
		return nil, errors.NewConflictError(fmt.Sprintf("permission with code %s already exists", perm.Code()))
	}

	if err := uc.permRepo.Create(ctx, perm); err != nil {
		if errors.IsDuplicateError(err) {
			return nil, errors.NewConflictError(fmt.Sprintf("permission with code %s already exists", perm.Code()))
		}
		uc.logger.Errorw("failed to create permission", "code", perm.Code(), "error", err)
		return nil, fmt.Errorf("failed to create permission: %w", err)
	}

	// A new permission changes the superuser universe.
	uc.invalidator.PermissionUniverseChanged(ctx)

	uc.recorder.Record(ctx, audit.Record{
		ActorID:    &actorID,
		Action:     audit.ActionPermissionCreate,
		EntityType: "permission",
		EntityID:   perm.Code(),
	})

	return toPermissionResponse(perm), nil
}

type UpdatePermissionUseCase struct {
	permRepo access.PermissionRepository
	recorder audit.Recorder
	logger   logger.Interface
}

func NewUpdatePermissionUseCase(
	permRepo access.PermissionRepository,
	recorder audit.Recorder,
	logger logger.Interface,
) *UpdatePermissionUseCase {
	return &UpdatePermissionUseCase{permRepo: permRepo, recorder: recorder, logger: logger}
}

func (uc *UpdatePermissionUseCase) Execute(ctx context.Context, actorID, permID uint, request dto.UpdatePermissionRequest) (*dto.PermissionResponse, error) {
	perm, err := uc.permRepo.GetByID(ctx, permID)
	if err != nil {
		return nil, fmt.Errorf("failed to get permission: %w", err)
	}
	if perm == nil {
		return nil, errors.NewNotFoundError("permission not found")
	}

	if request.Name != nil {
		if err := perm.UpdateName(*request.Name); err != nil {
			return nil, errors.NewValidationError(err.Error())
		}
	}
	if request.Module != nil {
		perm.UpdateModule(*request.Module)
	}
	if request.Description != nil {
		perm.UpdateDescription(*request.Description)
	}

	if err := uc.permRepo.Update(ctx, perm); err != nil {
		uc.logger.Errorw("failed to update permission", "permission_id", permID, "error", err)
		return nil, fmt.Errorf("failed to update permission: %w", err)
	}

	uc.recorder.Record(ctx, audit.Record{
		ActorID:    &actorID,
		Action:     audit.ActionPermissionUpdate,
		EntityType: "permission",
		EntityID:   perm.Code(),
	})

	return toPermissionResponse(perm), nil
}

// DeletePermissionUseCase removes a permission together with its role
// grants and user overrides. The codes of every role granting the
// permission are collected before the delete, so exactly their cached
// sets get dropped.
type DeletePermissionUseCase struct {
	permRepo    access.PermissionRepository
	invalidator *services.CacheInvalidator
	recorder    audit.Recorder
	logger      logger.Interface
}

func NewDeletePermissionUseCase(
	permRepo access.PermissionRepository,
	invalidator *services.CacheInvalidator,
	recorder audit.Recorder,
	logger logger.Interface,
) *DeletePermissionUseCase {
	return &DeletePermissionUseCase{
		permRepo:    permRepo,
		invalidator: invalidator,
		recorder:    recorder,
		logger:      logger,
	}
}

func (uc *DeletePermissionUseCase) Execute(ctx context.Context, actorID, permID uint) error {
	perm, err := uc.permRepo.GetByID(ctx, permID)
	if err != nil {
		return fmt.Errorf("failed to get permission: %w", err)
	}
	if perm == nil {
		return errors.NewNotFoundError("permission not found")
	}

	// Collect the roles whose cached sets contain this code before the
	// grants disappear.
	codes, err := uc.permRepo.ListRoleCodesForPermission(ctx, permID)
	if err != nil {
		return fmt.Errorf("failed to list granting roles: %w", err)
	}

	if err := uc.permRepo.Delete(ctx, permID); err != nil {
		uc.logger.Errorw("failed to delete permission", "permission_id", permID, "error", err)
		return fmt.Errorf("failed to delete permission: %w", err)
	}

	uc.invalidator.RoleChanged(ctx, codes...)

	uc.recorder.Record(ctx, audit.Record{
		ActorID:    &actorID,
		Action:     audit.ActionPermissionDelete,
		EntityType: "permission",
		EntityID:   perm.Code(),
	})

	return nil
}

type ListPermissionsUseCase struct {
	permRepo access.PermissionRepository
	logger   logger.Interface
}

func NewListPermissionsUseCase(permRepo access.PermissionRepository, logger logger.Interface) *ListPermissionsUseCase {
	return &ListPermissionsUseCase{permRepo: permRepo, logger: logger}
}

func (uc *ListPermissionsUseCase) Execute(ctx context.Context, filter access.PermissionFilter) ([]*dto.PermissionResponse, int64, error) {
	perms, total, err := uc.permRepo.List(ctx, filter)
	if err != nil {
		uc.logger.Errorw("failed to list permissions", "error", err)
		return nil, 0, fmt.Errorf("failed to list permissions: %w", err)
	}

	responses := make([]*dto.PermissionResponse, 0, len(perms))
	for _, perm := range perms {
		responses = append(responses, toPermissionResponse(perm))
	}
	return responses, total, nil
}
