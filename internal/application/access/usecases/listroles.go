package usecases

import (
	"context"
	"fmt"

	"instra/internal/application/access/dto"
	"instra/internal/domain/access"
	"instra/internal/shared/logger"
)

type ListRolesUseCase struct {
	roleRepo access.RoleRepository
	logger   logger.Interface
}

func NewListRolesUseCase(roleRepo access.RoleRepository, logger logger.Interface) *ListRolesUseCase {
	return &ListRolesUseCase{roleRepo: roleRepo, logger: logger}
}

func (uc *ListRolesUseCase) Execute(ctx context.Context, filter access.RoleFilter) ([]*dto.RoleResponse, int64, error) {
	roles, total, err := uc.roleRepo.List(ctx, filter)
	if err != nil {
		uc.logger.Errorw("failed to list roles", "error", err)
		return nil, 0, fmt.Errorf("failed to list roles: %w", err)
	}

	responses := make([]*dto.RoleResponse, 0, len(roles))
	for _, role := range roles {
		responses = append(responses, toRoleResponse(role))
	}
	return responses, total, nil
}
