package usecases

import (
	"context"
	"fmt"

	"instra/internal/application/identity/dto"
	"instra/internal/domain/identity"
	"instra/internal/shared/errors"
	"instra/internal/shared/logger"
)

// ChangePasswordUseCase replaces the user's password and clears the
// forced-change flag set at provisioning time.
type ChangePasswordUseCase struct {
	userRepo identity.UserRepository
	hasher   PasswordVerifier
	logger   logger.Interface
}

func NewChangePasswordUseCase(
	userRepo identity.UserRepository,
	hasher PasswordVerifier,
	logger logger.Interface,
) *ChangePasswordUseCase {
	return &ChangePasswordUseCase{
		userRepo: userRepo,
		hasher:   hasher,
		logger:   logger,
	}
}

func (uc *ChangePasswordUseCase) Execute(ctx context.Context, userID uint, request dto.ChangePasswordRequest) error {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return errors.NewNotFoundError("user not found")
	}

	if err := uc.hasher.Verify(request.CurrentPassword, user.PasswordHash()); err != nil {
		return errors.NewUnauthorizedError("current password is incorrect")
	}
	if request.CurrentPassword == request.NewPassword {
		return errors.NewValidationError("new password must differ from the current one")
	}

	hash, err := uc.hasher.Hash(request.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := user.ChangePassword(hash); err != nil {
		return errors.NewValidationError(err.Error())
	}
	if err := uc.userRepo.Update(ctx, user); err != nil {
		uc.logger.Errorw("failed to update password", "user_id", userID, "error", err)
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}
