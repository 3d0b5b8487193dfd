package usecases

import (
	"context"
	"fmt"
	"strconv"

	"instra/internal/application/access/dto"
	"instra/internal/domain/access"
	"instra/internal/domain/audit"
	"instra/internal/domain/identity"
	"instra/internal/shared/errors"
	"instra/internal/shared/logger"
)

type AssignUserRoleUseCase struct {
	userRepo     identity.UserRepository
	roleRepo     access.RoleRepository
	userRoleRepo access.UserRoleRepository
	recorder     audit.Recorder
	logger       logger.Interface
}

func NewAssignUserRoleUseCase(
	userRepo identity.UserRepository,
	roleRepo access.RoleRepository,
	userRoleRepo access.UserRoleRepository,
	recorder audit.Recorder,
	logger logger.Interface,
) *AssignUserRoleUseCase {
	return &AssignUserRoleUseCase{
		userRepo:     userRepo,
		roleRepo:     roleRepo,
		userRoleRepo: userRoleRepo,
		recorder:     recorder,
		logger:       logger,
	}
}

func (uc *AssignUserRoleUseCase) Execute(ctx context.Context, actorID uint, request dto.AssignUserRoleRequest) error {
	user, err := uc.userRepo.GetByID(ctx, request.UserID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return errors.NewNotFoundError("user not found")
	}

	role, err := uc.roleRepo.GetByID(ctx, request.RoleID)
	if err != nil {
		return fmt.Errorf("failed to get role: %w", err)
	}
	if role == nil {
		return errors.NewNotFoundError("role not found")
	}
	if !role.IsActive() {
		return errors.NewStateConflictError("cannot assign an inactive role")
	}

	holds, err := uc.userRoleRepo.Holds(ctx, request.UserID, request.RoleID)
	if err != nil {
		return fmt.Errorf("failed to check binding: %w", err)
	}
	if holds {
		return errors.NewConflictError("user already holds this role")
	}

	binding, err := access.NewUserRoleBinding(request.UserID, request.RoleID, &actorID)
	if err != nil {
		return errors.NewValidationError(err.Error())
	}
	if err := uc.userRoleRepo.Assign(ctx, binding); err != nil {
		if errors.IsDuplicateError(err) {
			return errors.NewConflictError("user already holds this role")
		}
		uc.logger.Errorw("failed to assign role",
			"user_id", request.UserID, "role_id", request.RoleID, "error", err)
		return fmt.Errorf("failed to assign role: %w", err)
	}

	uc.recorder.Record(ctx, audit.Record{
		ActorID:    &actorID,
		Action:     audit.ActionUserRoleAssign,
		EntityType: "user",
		EntityID:   strconv.FormatUint(uint64(request.UserID), 10),
		Detail:     map[string]any{"role": role.Code()},
	})
	return nil
}

// RemoveUserRoleUseCase unbinds a role from a user. Role-level caches are
// keyed by role code, not user, so only the sticky hint needs attention.
type RemoveUserRoleUseCase struct {
	userRepo     identity.UserRepository
	roleRepo     access.RoleRepository
	userRoleRepo access.UserRoleRepository
	recorder     audit.Recorder
	logger       logger.Interface
}

func NewRemoveUserRoleUseCase(
	userRepo identity.UserRepository,
	roleRepo access.RoleRepository,
	userRoleRepo access.UserRoleRepository,
	recorder audit.Recorder,
	logger logger.Interface,
) *RemoveUserRoleUseCase {
	return &RemoveUserRoleUseCase{
		userRepo:     userRepo,
		roleRepo:     roleRepo,
		userRoleRepo: userRoleRepo,
		recorder:     recorder,
		logger:       logger,
	}
}

func (uc *RemoveUserRoleUseCase) Execute(ctx context.Context, actorID, userID, roleID uint) error {
	role, err := uc.roleRepo.GetByID(ctx, roleID)
	if err != nil {
		return fmt.Errorf("failed to get role: %w", err)
	}
	if role == nil {
		return errors.NewNotFoundError("role not found")
	}

	if err := uc.userRoleRepo.Remove(ctx, userID, roleID); err != nil {
		return errors.NewNotFoundError("user does not hold this role")
	}

	// Drop the sticky hint if it pointed at the removed role.
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err == nil && user != nil && user.LastActiveRole() == role.Code() {
		user.ClearActiveRole()
		if err := uc.userRepo.Update(ctx, user); err != nil {
			uc.logger.Warnw("failed to clear last active role",
				"user_id", userID, "error", err)
		}
	}

	uc.recorder.Record(ctx, audit.Record{
		ActorID:    &actorID,
		Action:     audit.ActionUserRoleRemove,
		EntityType: "user",
		EntityID:   strconv.FormatUint(uint64(userID), 10),
		Detail:     map[string]any{"role": role.Code()},
	})
	return nil
}

type ListUserRolesUseCase struct {
	userRepo     identity.UserRepository
	userRoleRepo access.UserRoleRepository
	logger       logger.Interface
}

func NewListUserRolesUseCase(
	userRepo identity.UserRepository,
	userRoleRepo access.UserRoleRepository,
	logger logger.Interface,
) *ListUserRolesUseCase {
	return &ListUserRolesUseCase{userRepo: userRepo, userRoleRepo: userRoleRepo, logger: logger}
}

func (uc *ListUserRolesUseCase) Execute(ctx context.Context, userID uint) ([]*dto.UserRoleResponse, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, errors.NewNotFoundError("user not found")
	}

	roles, err := uc.userRoleRepo.ListRolesForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user roles: %w", err)
	}

	responses := make([]*dto.UserRoleResponse, 0, len(roles))
	for _, role := range roles {
		responses = append(responses, &dto.UserRoleResponse{
			RoleID:   role.ID(),
			RoleCode: role.Code(),
			RoleName: role.Name(),
			IsActive: role.IsActive(),
		})
	}
	return responses, nil
}
