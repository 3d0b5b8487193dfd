package usecases

import (
	"context"
	"fmt"
	"strconv"

	"instra/internal/application/access/dto"
	"instra/internal/application/access/services"
	"instra/internal/domain/access"
	"instra/internal/domain/audit"
	"instra/internal/domain/identity"
	"instra/internal/shared/errors"
	"instra/internal/shared/logger"
)

// SetOverrideUseCase creates or flips a per-user permission override and
// drops the user's cached override codes before returning.
type SetOverrideUseCase struct {
	userRepo     identity.UserRepository
	permRepo     access.PermissionRepository
	overrideRepo access.OverrideRepository
	invalidator  *services.CacheInvalidator
	recorder     audit.Recorder
	logger       logger.Interface
}

func NewSetOverrideUseCase(
	userRepo identity.UserRepository,
	permRepo access.PermissionRepository,
	overrideRepo access.OverrideRepository,
	invalidator *services.CacheInvalidator,
	recorder audit.Recorder,
	logger logger.Interface,
) *SetOverrideUseCase {
	return &SetOverrideUseCase{
		userRepo:     userRepo,
		permRepo:     permRepo,
		overrideRepo: overrideRepo,
		invalidator:  invalidator,
		recorder:     recorder,
		logger:       logger,
	}
}

func (uc *SetOverrideUseCase) Execute(ctx context.Context, actorID uint, request dto.SetOverrideRequest) (*dto.OverrideResponse, error) {
	if request.IsGranted == nil {
		return nil, errors.NewValidationError("is_granted is required")
	}

	user, err := uc.userRepo.GetByID(ctx, request.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, errors.NewNotFoundError("user not found")
	}

	perm, err := uc.permRepo.GetByID(ctx, request.PermissionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get permission: %w", err)
	}
	if perm == nil {
		return nil, errors.NewNotFoundError("permission not found")
	}

	override, err := access.NewPermissionOverride(request.UserID, request.PermissionID, *request.IsGranted, &actorID)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	if err := uc.overrideRepo.Upsert(ctx, override); err != nil {
		uc.logger.Errorw("failed to set override",
			"user_id", request.UserID, "permission_id", request.PermissionID, "error", err)
		return nil, fmt.Errorf("failed to set override: %w", err)
	}

	uc.invalidator.UserOverridesChanged(ctx, request.UserID)

	uc.recorder.Record(ctx, audit.Record{
		ActorID:    &actorID,
		Action:     audit.ActionOverrideSet,
		EntityType: "user",
		EntityID:   strconv.FormatUint(uint64(request.UserID), 10),
		Detail: map[string]any{
			"permission": perm.Code(),
			"is_granted": *request.IsGranted,
		},
	})

	return toOverrideResponse(override), nil
}

type RemoveOverrideUseCase struct {
	overrideRepo access.OverrideRepository
	invalidator  *services.CacheInvalidator
	recorder     audit.Recorder
	logger       logger.Interface
}

func NewRemoveOverrideUseCase(
	overrideRepo access.OverrideRepository,
	invalidator *services.CacheInvalidator,
	recorder audit.Recorder,
	logger logger.Interface,
) *RemoveOverrideUseCase {
	return &RemoveOverrideUseCase{
		overrideRepo: overrideRepo,
		invalidator:  invalidator,
		recorder:     recorder,
		logger:       logger,
	}
}

func (uc *RemoveOverrideUseCase) Execute(ctx context.Context, actorID, userID, permissionID uint) error {
	if err := uc.overrideRepo.Remove(ctx, userID, permissionID); err != nil {
		return errors.NewNotFoundError("override not found")
	}

	uc.invalidator.UserOverridesChanged(ctx, userID)

	uc.recorder.Record(ctx, audit.Record{
		ActorID:    &actorID,
		Action:     audit.ActionOverrideRemove,
		EntityType: "user",
		EntityID:   strconv.FormatUint(uint64(userID), 10),
		Detail:     map[string]any{"permission_id": permissionID},
	})
	return nil
}

type ListOverridesUseCase struct {
	overrideRepo access.OverrideRepository
	logger       logger.Interface
}

func NewListOverridesUseCase(overrideRepo access.OverrideRepository, logger logger.Interface) *ListOverridesUseCase {
	return &ListOverridesUseCase{overrideRepo: overrideRepo, logger: logger}
}

func (uc *ListOverridesUseCase) Execute(ctx context.Context, userID uint) ([]*dto.OverrideResponse, error) {
	overrides, err := uc.overrideRepo.ListForUser(ctx, userID)
	if err != nil {
		uc.logger.Errorw("failed to list overrides", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to list overrides: %w", err)
	}

	responses := make([]*dto.OverrideResponse, 0, len(overrides))
	for _, override := range overrides {
		responses = append(responses, toOverrideResponse(override))
	}
	return responses, nil
}
