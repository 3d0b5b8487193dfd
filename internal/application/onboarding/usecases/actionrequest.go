package usecases

import (
	"context"
	"fmt"
	"time"

	"instra/internal/application/onboarding/dto"
	"instra/internal/domain/audit"
	"instra/internal/domain/onboarding"
	"instra/internal/shared/errors"
	"instra/internal/shared/logger"
)

const (
	ActionSendBack = "send_back"
	ActionDrop     = "drop"
)

// ActionRequestUseCase handles the two non-approval decisions. Send-back
// reopens the invite window with a rotated nonce, so the correction email
// carries a fresh link and every previously issued one stops working.
type ActionRequestUseCase struct {
	requestRepo  onboarding.RequestRepository
	tokens       TokenIssuer
	emailService Mailer
	recorder     audit.Recorder
	expiryHours  int
	logger       logger.Interface
}

func NewActionRequestUseCase(
	requestRepo onboarding.RequestRepository,
	tokens TokenIssuer,
	emailService Mailer,
	recorder audit.Recorder,
	expiryHours int,
	logger logger.Interface,
) *ActionRequestUseCase {
	return &ActionRequestUseCase{
		requestRepo:  requestRepo,
		tokens:       tokens,
		emailService: emailService,
		recorder:     recorder,
		expiryHours:  expiryHours,
		logger:       logger,
	}
}

func (uc *ActionRequestUseCase) Execute(ctx context.Context, actorID uint, rid string, action dto.ActionRequest) (*dto.RequestResponse, error) {
	request, err := uc.requestRepo.GetByRID(ctx, rid)
	if err != nil {
		return nil, fmt.Errorf("failed to get request: %w", err)
	}
	if request == nil {
		return nil, errors.NewNotFoundError("onboarding request not found")
	}

	switch action.Action {
	case ActionSendBack:
		return uc.sendBack(ctx, actorID, request, action.Reason)
	case ActionDrop:
		return uc.drop(ctx, actorID, request, action.Reason)
	default:
		return nil, errors.NewValidationError(fmt.Sprintf("unknown action: %s", action.Action))
	}
}

func (uc *ActionRequestUseCase) sendBack(ctx context.Context, actorID uint, request *onboarding.Request, reason string) (*dto.RequestResponse, error) {
	newExpiry := time.Now().Add(time.Duration(uc.expiryHours) * time.Hour)
	if err := request.SendBack(actorID, reason, newExpiry); err != nil {
		return nil, errors.NewStateConflictError(err.Error())
	}
	if err := uc.requestRepo.Update(ctx, request); err != nil {
		uc.logger.Errorw("failed to send back request", "rid", request.RID(), "error", err)
		return nil, fmt.Errorf("failed to update request: %w", err)
	}

	uc.sendCorrectionEmail(request, reason)

	uc.recorder.Record(ctx, audit.Record{
		ActorID:    &actorID,
		Action:     audit.ActionRequestSendBack,
		EntityType: "onboarding_request",
		EntityID:   request.RID(),
		Detail:     map[string]any{"reason": reason},
	})
	return toRequestResponse(request), nil
}

func (uc *ActionRequestUseCase) drop(ctx context.Context, actorID uint, request *onboarding.Request, reason string) (*dto.RequestResponse, error) {
	if err := request.Drop(&actorID, reason); err != nil {
		return nil, errors.NewStateConflictError(err.Error())
	}
	if err := uc.requestRepo.Update(ctx, request); err != nil {
		uc.logger.Errorw("failed to drop request", "rid", request.RID(), "error", err)
		return nil, fmt.Errorf("failed to update request: %w", err)
	}

	uc.recorder.Record(ctx, audit.Record{
		ActorID:    &actorID,
		Action:     audit.ActionRequestDrop,
		EntityType: "onboarding_request",
		EntityID:   request.RID(),
		Detail:     map[string]any{"reason": reason},
	})
	return toRequestResponse(request), nil
}

func (uc *ActionRequestUseCase) sendCorrectionEmail(request *onboarding.Request, reason string) {
	token, err := uc.tokens.Generate(request.RID(), request.Nonce())
	if err != nil {
		uc.logger.Errorw("failed to generate registration token", "rid", request.RID(), "error", err)
		return
	}
	if err := uc.emailService.SendSendBackEmail(request.Email(), request.Name(), reason, token); err != nil {
		uc.logger.Errorw("failed to send correction email", "rid", request.RID(), "error", err)
	}
}
