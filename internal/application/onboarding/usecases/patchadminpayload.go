package usecases

import (
	"context"
	"fmt"

	"instra/internal/application/onboarding/dto"
	"instra/internal/domain/audit"
	"instra/internal/domain/onboarding"
	"instra/internal/shared/errors"
	"instra/internal/shared/logger"
)

// PatchAdminPayloadUseCase stores the reviewer's corrections and extra
// fields. Values here win over the invitee's submission at merge time, but
// nothing is validated until approval runs the full merge.
type PatchAdminPayloadUseCase struct {
	requestRepo onboarding.RequestRepository
	recorder    audit.Recorder
	logger      logger.Interface
}

func NewPatchAdminPayloadUseCase(
	requestRepo onboarding.RequestRepository,
	recorder audit.Recorder,
	logger logger.Interface,
) *PatchAdminPayloadUseCase {
	return &PatchAdminPayloadUseCase{
		requestRepo: requestRepo,
		recorder:    recorder,
		logger:      logger,
	}
}

func (uc *PatchAdminPayloadUseCase) Execute(ctx context.Context, actorID uint, rid string, patch dto.PatchAdminPayloadRequest) (*dto.RequestResponse, error) {
	request, err := uc.requestRepo.GetByRID(ctx, rid)
	if err != nil {
		return nil, fmt.Errorf("failed to get request: %w", err)
	}
	if request == nil {
		return nil, errors.NewNotFoundError("onboarding request not found")
	}

	if err := request.SetAdminPayload(patch.Payload); err != nil {
		return nil, errors.NewStateConflictError(err.Error())
	}
	if err := uc.requestRepo.Update(ctx, request); err != nil {
		uc.logger.Errorw("failed to patch admin payload", "rid", rid, "error", err)
		return nil, fmt.Errorf("failed to patch request: %w", err)
	}

	uc.recorder.Record(ctx, audit.Record{
		ActorID:    &actorID,
		Action:     audit.ActionRequestPatch,
		EntityType: "onboarding_request",
		EntityID:   rid,
	})

	return toRequestResponse(request), nil
}
