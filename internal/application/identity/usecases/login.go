package usecases

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"instra/internal/application/identity/dto"
	"instra/internal/domain/audit"
	"instra/internal/domain/identity"
	"instra/internal/shared/errors"
	"instra/internal/shared/logger"
)

// TokenGenerator issues access tokens for authenticated sessions.
type TokenGenerator interface {
	Generate(userID uint, isSuperuser bool) (token string, expiresIn int64, err error)
}

// PasswordVerifier checks and hashes credentials.
type PasswordVerifier interface {
	Hash(password string) (string, error)
	Verify(password, hash string) error
}

// LoginUseCase authenticates by email and password. Unknown email, wrong
// password and deactivated account all answer with the same message.
type LoginUseCase struct {
	userRepo identity.UserRepository
	hasher   PasswordVerifier
	tokens   TokenGenerator
	recorder audit.Recorder
	logger   logger.Interface
}

func NewLoginUseCase(
	userRepo identity.UserRepository,
	hasher PasswordVerifier,
	tokens TokenGenerator,
	recorder audit.Recorder,
	logger logger.Interface,
) *LoginUseCase {
	return &LoginUseCase{
		userRepo: userRepo,
		hasher:   hasher,
		tokens:   tokens,
		recorder: recorder,
		logger:   logger,
	}
}

func (uc *LoginUseCase) Execute(ctx context.Context, request dto.LoginRequest) (*dto.LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(request.Email))

	user, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil || !user.IsActive() {
		return nil, errors.NewUnauthorizedError("invalid email or password")
	}
	if err := uc.hasher.Verify(request.Password, user.PasswordHash()); err != nil {
		return nil, errors.NewUnauthorizedError("invalid email or password")
	}

	token, expiresIn, err := uc.tokens.Generate(user.ID(), user.IsSuperuser())
	if err != nil {
		uc.logger.Errorw("failed to issue access token", "user_id", user.ID(), "error", err)
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	actorID := user.ID()
	uc.recorder.Record(ctx, audit.Record{
		ActorID:    &actorID,
		Action:     audit.ActionLogin,
		EntityType: "user",
		EntityID:   strconv.FormatUint(uint64(user.ID()), 10),
	})

	return &dto.LoginResponse{
		AccessToken:        token,
		ExpiresIn:          expiresIn,
		MustChangePassword: user.MustChangePassword(),
		User:               toUserResponse(user),
	}, nil
}

func toUserResponse(user *identity.User) *dto.UserResponse {
	return &dto.UserResponse{
		ID:             user.ID(),
		Email:          user.Email(),
		Name:           user.Name(),
		IsActive:       user.IsActive(),
		IsSuperuser:    user.IsSuperuser(),
		LastActiveRole: user.LastActiveRole(),
	}
}
