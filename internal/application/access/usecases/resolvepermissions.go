package usecases

import (
	"context"
	"fmt"

	"instra/internal/application/access/dto"
	"instra/internal/application/access/services"
	"instra/internal/domain/identity"
	"instra/internal/shared/errors"
	"instra/internal/shared/logger"
)

// ResolvePermissionsUseCase exposes the resolver to the HTTP layer: given
// the authenticated user and the active role header, return the effective
// permission codes.
type ResolvePermissionsUseCase struct {
	userRepo identity.UserRepository
	resolver *services.PermissionResolver
	logger   logger.Interface
}

func NewResolvePermissionsUseCase(
	userRepo identity.UserRepository,
	resolver *services.PermissionResolver,
	logger logger.Interface,
) *ResolvePermissionsUseCase {
	return &ResolvePermissionsUseCase{
		userRepo: userRepo,
		resolver: resolver,
		logger:   logger,
	}
}

func (uc *ResolvePermissionsUseCase) Execute(ctx context.Context, userID uint, activeRoleCode string) (*dto.ResolvedPermissionsResponse, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, errors.NewNotFoundError("user not found")
	}

	perms, err := uc.resolver.Resolve(ctx, userID, activeRoleCode)
	if err != nil {
		uc.logger.Errorw("permission resolution failed", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to resolve permissions: %w", err)
	}

	return &dto.ResolvedPermissionsResponse{
		UserID:      userID,
		ActiveRole:  services.NormalizeRoleCode(activeRoleCode),
		IsSuperuser: user.IsSuperuser(),
		Permissions: perms,
	}, nil
}
