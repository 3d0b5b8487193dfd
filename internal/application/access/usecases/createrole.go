package usecases

import (
	"context"
	"fmt"
	"strings"

	"instra/internal/application/access/dto"
	"instra/internal/domain/access"
	"instra/internal/domain/audit"
	"instra/internal/shared/errors"
	"instra/internal/shared/logger"
)

type CreateRoleUseCase struct {
	roleRepo access.RoleRepository
	recorder audit.Recorder
	logger   logger.Interface
}

func NewCreateRoleUseCase(
	roleRepo access.RoleRepository,
	recorder audit.Recorder,
	logger logger.Interface,
) *CreateRoleUseCase {
	return &CreateRoleUseCase{
		roleRepo: roleRepo,
		recorder: recorder,
		logger:   logger,
	}
}

func (uc *CreateRoleUseCase) Execute(ctx context.Context, actorID uint, request dto.CreateRoleRequest) (*dto.RoleResponse, error) {
	code := strings.ToUpper(strings.TrimSpace(request.Code))

	exists, err := uc.roleRepo.ExistsByCode(ctx, code)
	if err != nil {
		uc.logger.Errorw("failed to check role code", "code", code, "error", err)
		return nil, fmt.Errorf("failed to check role code: %w", err)
	}
	if exists {
		return nil, errors.NewConflictError(fmt.Sprintf("role with code %s already exists", code))
	}

	role, err := access.NewRole(code, request.Name, request.Description)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	if err := uc.roleRepo.Create(ctx, role); err != nil {
		if errors.IsDuplicateError(err) {
			return nil, errors.NewConflictError(fmt.Sprintf("role with code %s already exists", code))
		}
		uc.logger.Errorw("failed to create role", "code", code, "error", err)
		return nil, fmt.Errorf("failed to create role: %w", err)
	}

	uc.logger.Infow("role created", "role_id", role.ID(), "code", role.Code())
	uc.recorder.Record(ctx, audit.Record{
		ActorID:    &actorID,
		Action:     audit.ActionRoleCreate,
		EntityType: "role",
		EntityID:   role.Code(),
	})

	return toRoleResponse(role), nil
}
