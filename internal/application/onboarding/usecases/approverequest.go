package usecases

import (
	"context"
	"fmt"

	"instra/internal/application/onboarding/dto"
	"instra/internal/application/onboarding/services"
	"instra/internal/application/provisioning"
	"instra/internal/domain/audit"
	"instra/internal/domain/onboarding"
	"instra/internal/shared/db"
	"instra/internal/shared/errors"
	"instra/internal/shared/logger"
)

// ApproveRequestUseCase turns a reviewed request into a provisioned
// identity. The merge runs first so validation errors never open a
// transaction; the status re-check happens on a locked row so two
// concurrent approvals cannot both provision.
type ApproveRequestUseCase struct {
	requestRepo  onboarding.RequestRepository
	merge        *services.MergeService
	provisioner  *provisioning.Service
	emailService Mailer
	txManager    *db.TransactionManager
	recorder     audit.Recorder
	logger       logger.Interface
}

func NewApproveRequestUseCase(
	requestRepo onboarding.RequestRepository,
	merge *services.MergeService,
	provisioner *provisioning.Service,
	emailService Mailer,
	txManager *db.TransactionManager,
	recorder audit.Recorder,
	logger logger.Interface,
) *ApproveRequestUseCase {
	return &ApproveRequestUseCase{
		requestRepo:  requestRepo,
		merge:        merge,
		provisioner:  provisioner,
		emailService: emailService,
		txManager:    txManager,
		recorder:     recorder,
		logger:       logger,
	}
}

func (uc *ApproveRequestUseCase) Execute(ctx context.Context, actorID uint, rid string, sendWelcome bool) (*dto.ApproveResponse, error) {
	request, err := uc.requestRepo.GetByRID(ctx, rid)
	if err != nil {
		return nil, fmt.Errorf("failed to get request: %w", err)
	}
	if request == nil {
		return nil, errors.NewNotFoundError("onboarding request not found")
	}
	if request.Status() != onboarding.StatusPendingApproval {
		return nil, errors.NewStateConflictError(fmt.Sprintf("cannot approve request in status %s", request.Status()))
	}

	merged, err := uc.merge.Merge(ctx, request.RoleCode(), request.Email(), request.UserPayload(), request.AdminPayload())
	if err != nil {
		return nil, err
	}
	identityFields, profileFields := services.SplitProfile(merged)

	var result *provisioning.Result
	var provisionErr error
	err = uc.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		locked, err := uc.requestRepo.GetByRIDForUpdate(txCtx, rid)
		if err != nil {
			return fmt.Errorf("failed to lock request: %w", err)
		}
		if locked == nil {
			return errors.NewNotFoundError("onboarding request not found")
		}
		if locked.Status() != onboarding.StatusPendingApproval {
			return errors.NewStateConflictError(fmt.Sprintf("cannot approve request in status %s", locked.Status()))
		}

		result, provisionErr = uc.provisioner.Provision(txCtx, provisioning.Input{
			InitiatorID: &actorID,
			RoleCode:    locked.RoleCode(),
			Email:       locked.Email(),
			Identity:    identityFields,
			Profile:     profileFields,
		})
		if provisionErr != nil {
			return provisionErr
		}

		if err := locked.Approve(actorID, result.User.ID()); err != nil {
			return errors.NewStateConflictError(err.Error())
		}
		if err := uc.requestRepo.Update(txCtx, locked); err != nil {
			return fmt.Errorf("failed to update request: %w", err)
		}
		request = locked
		return nil
	})
	if err != nil {
		if provisionErr != nil {
			uc.markProvisioningFailed(ctx, rid, provisionErr)
		}
		return nil, err
	}

	if sendWelcome {
		uc.sendWelcome(request, result)
	}

	uc.recorder.Record(ctx, audit.Record{
		ActorID:    &actorID,
		Action:     audit.ActionRequestApprove,
		EntityType: "onboarding_request",
		EntityID:   rid,
		Detail: map[string]any{
			"user_id":    result.User.ID(),
			"display_id": result.DisplayID,
		},
	})

	return &dto.ApproveResponse{
		Request:   toRequestResponse(request),
		UserID:    result.User.ID(),
		DisplayID: result.DisplayID,
	}, nil
}

// markProvisioningFailed records the failure on the request after the
// provisioning transaction rolled back, so the admin queue shows what went
// wrong. Runs on the root connection; a failure here is only logged.
func (uc *ApproveRequestUseCase) markProvisioningFailed(ctx context.Context, rid string, cause error) {
	request, err := uc.requestRepo.GetByRID(ctx, rid)
	if err != nil || request == nil {
		uc.logger.Errorw("failed to reload request after provisioning failure", "rid", rid, "error", err)
		return
	}
	request.MarkProvisioningFailed(cause.Error())
	if err := uc.requestRepo.Update(ctx, request); err != nil {
		uc.logger.Errorw("failed to record provisioning failure", "rid", rid, "error", err)
	}
}

func (uc *ApproveRequestUseCase) sendWelcome(request *onboarding.Request, result *provisioning.Result) {
	displayID := result.DisplayID
	if displayID == "" {
		displayID = request.Code()
	}
	if err := uc.emailService.SendWelcomeEmail(request.Email(), request.Name(), displayID, result.TempPassword); err != nil {
		uc.logger.Errorw("failed to send welcome email", "rid", request.RID(), "error", err)
	}
}
