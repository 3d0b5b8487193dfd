package usecases

import (
	"context"
	"fmt"

	"github.com/microcosm-cc/bluemonday"

	"instra/internal/application/onboarding/dto"
	"instra/internal/application/onboarding/services"
	"instra/internal/domain/audit"
	"instra/internal/domain/onboarding"
	"instra/internal/shared/errors"
	"instra/internal/shared/logger"
)

// SubmitRegistrationUseCase accepts the invitee's form via the public
// endpoint. The payload is sanitized, validated against the registration
// stage schema, and stored; the request moves to PENDING_APPROVAL. A
// resubmission before the admin decides simply overwrites the earlier one.
type SubmitRegistrationUseCase struct {
	requestRepo onboarding.RequestRepository
	tokens      TokenIssuer
	merge       *services.MergeService
	recorder    audit.Recorder
	sanitizer   *bluemonday.Policy
	logger      logger.Interface
}

func NewSubmitRegistrationUseCase(
	requestRepo onboarding.RequestRepository,
	tokens TokenIssuer,
	merge *services.MergeService,
	recorder audit.Recorder,
	logger logger.Interface,
) *SubmitRegistrationUseCase {
	return &SubmitRegistrationUseCase{
		requestRepo: requestRepo,
		tokens:      tokens,
		merge:       merge,
		recorder:    recorder,
		sanitizer:   bluemonday.StrictPolicy(),
		logger:      logger,
	}
}

func (uc *SubmitRegistrationUseCase) Execute(ctx context.Context, submission dto.SubmitRegistrationRequest) (*dto.RequestResponse, error) {
	request, err := resolveTokenRequest(ctx, uc.requestRepo, uc.tokens, uc.logger, submission.Token)
	if err != nil {
		return nil, err
	}

	payload := uc.sanitizePayload(submission.Payload)

	flat, err := uc.merge.ValidateStage(ctx, request.RoleCode(), services.StageRegistration, payload)
	if err != nil {
		return nil, err
	}

	if err := request.SubmitUserPayload(flat); err != nil {
		return nil, errors.NewStateConflictError(err.Error())
	}
	if err := uc.requestRepo.Update(ctx, request); err != nil {
		uc.logger.Errorw("failed to store registration", "rid", request.RID(), "error", err)
		return nil, fmt.Errorf("failed to store registration: %w", err)
	}

	uc.recorder.Record(ctx, audit.Record{
		Action:     audit.ActionRegistrationSubmit,
		EntityType: "onboarding_request",
		EntityID:   request.RID(),
		Detail:     map[string]any{"email": request.Email()},
	})

	return toRequestResponse(request), nil
}

// sanitizePayload strips all markup from string values, recursing into
// nested maps. Non-string values pass through untouched.
func (uc *SubmitRegistrationUseCase) sanitizePayload(payload map[string]any) map[string]any {
	out := make(map[string]any, len(payload))
	for k, v := range payload {
		switch value := v.(type) {
		case string:
			out[k] = uc.sanitizer.Sanitize(value)
		case map[string]any:
			out[k] = uc.sanitizePayload(value)
		default:
			out[k] = v
		}
	}
	return out
}
