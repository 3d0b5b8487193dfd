package usecases

import (
	"context"
	"fmt"

	"instra/internal/application/access/dto"
	"instra/internal/domain/access"
	"instra/internal/domain/audit"
	"instra/internal/shared/errors"
	"instra/internal/shared/logger"
)

// UpdateRoleUseCase edits a role's descriptive fields. The code is
// immutable and no request field can touch it.
type UpdateRoleUseCase struct {
	roleRepo access.RoleRepository
	recorder audit.Recorder
	logger   logger.Interface
}

func NewUpdateRoleUseCase(
	roleRepo access.RoleRepository,
	recorder audit.Recorder,
	logger logger.Interface,
) *UpdateRoleUseCase {
	return &UpdateRoleUseCase{
		roleRepo: roleRepo,
		recorder: recorder,
		logger:   logger,
	}
}

func (uc *UpdateRoleUseCase) Execute(ctx context.Context, actorID, roleID uint, request dto.UpdateRoleRequest) (*dto.RoleResponse, error) {
	role, err := uc.roleRepo.GetByID(ctx, roleID)
	if err != nil {
		uc.logger.Errorw("failed to get role", "role_id", roleID, "error", err)
		return nil, fmt.Errorf("failed to get role: %w", err)
	}
	if role == nil {
		return nil, errors.NewNotFoundError("role not found")
	}

	if request.Name != nil {
		if err := role.UpdateName(*request.Name); err != nil {
			return nil, errors.NewValidationError(err.Error())
		}
	}
	if request.Description != nil {
		role.UpdateDescription(*request.Description)
	}

	if err := uc.roleRepo.Update(ctx, role); err != nil {
		uc.logger.Errorw("failed to update role", "role_id", roleID, "error", err)
		return nil, fmt.Errorf("failed to update role: %w", err)
	}

	uc.recorder.Record(ctx, audit.Record{
		ActorID:    &actorID,
		Action:     audit.ActionRoleUpdate,
		EntityType: "role",
		EntityID:   role.Code(),
	})

	return toRoleResponse(role), nil
}
