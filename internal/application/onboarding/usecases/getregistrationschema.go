package usecases

import (
	"context"
	"fmt"
	"time"

	"instra/internal/application/onboarding/dto"
	"instra/internal/application/onboarding/services"
	"instra/internal/domain/onboarding"
	"instra/internal/shared/errors"
	"instra/internal/shared/logger"
)

// GetRegistrationSchemaUseCase backs the public registration page. Every
// failure path, from a forged token to a lapsed invite, surfaces as the
// same generic token error.
type GetRegistrationSchemaUseCase struct {
	requestRepo onboarding.RequestRepository
	tokens      TokenIssuer
	schema      *services.SchemaService
	logger      logger.Interface
}

func NewGetRegistrationSchemaUseCase(
	requestRepo onboarding.RequestRepository,
	tokens TokenIssuer,
	schema *services.SchemaService,
	logger logger.Interface,
) *GetRegistrationSchemaUseCase {
	return &GetRegistrationSchemaUseCase{
		requestRepo: requestRepo,
		tokens:      tokens,
		schema:      schema,
		logger:      logger,
	}
}

func (uc *GetRegistrationSchemaUseCase) Execute(ctx context.Context, token string) (*dto.RegistrationSchemaResponse, error) {
	request, err := resolveTokenRequest(ctx, uc.requestRepo, uc.tokens, uc.logger, token)
	if err != nil {
		return nil, err
	}

	fields, err := uc.schema.Schema(ctx, request.RoleCode(), services.StageRegistration)
	if err != nil {
		return nil, fmt.Errorf("failed to build registration schema: %w", err)
	}

	return &dto.RegistrationSchemaResponse{
		Email:       request.Email(),
		Name:        request.Name(),
		RoleCode:    request.RoleCode(),
		Status:      string(request.Status()),
		ExpiresAt:   request.ExpiresAt(),
		Fields:      toFieldSpecResponses(fields),
		UserPayload: request.UserPayload(),
	}, nil
}

// resolveTokenRequest is the shared gate for public endpoints: verify the
// signature, load the request, compare the nonce, and expire lazily. A
// lapsed invite is dropped on first touch and then behaves exactly like a
// bad token.
func resolveTokenRequest(
	ctx context.Context,
	requestRepo onboarding.RequestRepository,
	tokens TokenIssuer,
	log logger.Interface,
	token string,
) (*onboarding.Request, error) {
	rid, nonce, err := tokens.Verify(token)
	if err != nil {
		return nil, err
	}

	request, err := requestRepo.GetByRID(ctx, rid)
	if err != nil {
		return nil, fmt.Errorf("failed to get request: %w", err)
	}
	if request == nil || !request.MatchesNonce(nonce) {
		return nil, errors.NewTokenError()
	}

	if request.ExpiredAt(time.Now()) {
		if dropErr := request.Drop(nil, "invite expired"); dropErr == nil {
			if err := requestRepo.Update(ctx, request); err != nil {
				log.Warnw("failed to persist lazy expiry", "rid", request.RID(), "error", err)
			}
		}
		return nil, errors.NewTokenError()
	}

	if request.Status().IsTerminal() {
		return nil, errors.NewTokenError()
	}

	return request, nil
}
