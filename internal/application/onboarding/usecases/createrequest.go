package usecases

import (
	"context"
	"fmt"
	"strings"
	"time"

	"instra/internal/application/onboarding/dto"
	"instra/internal/domain/access"
	"instra/internal/domain/audit"
	"instra/internal/domain/identity"
	"instra/internal/domain/onboarding"
	"instra/internal/shared/db"
	"instra/internal/shared/errors"
	"instra/internal/shared/id"
	"instra/internal/shared/logger"
)

// CreateRequestUseCase issues an onboarding invite: a new request row, a
// signed registration link, and the invite email. The email goes out after
// commit and is best-effort; a failed send never rolls the invite back.
type CreateRequestUseCase struct {
	requestRepo  onboarding.RequestRepository
	roleRepo     access.RoleRepository
	userRepo     identity.UserRepository
	tokens       TokenIssuer
	emailService Mailer
	txManager    *db.TransactionManager
	recorder     audit.Recorder
	expiryHours  int
	logger       logger.Interface
}

func NewCreateRequestUseCase(
	requestRepo onboarding.RequestRepository,
	roleRepo access.RoleRepository,
	userRepo identity.UserRepository,
	tokens TokenIssuer,
	emailService Mailer,
	txManager *db.TransactionManager,
	recorder audit.Recorder,
	expiryHours int,
	logger logger.Interface,
) *CreateRequestUseCase {
	return &CreateRequestUseCase{
		requestRepo:  requestRepo,
		roleRepo:     roleRepo,
		userRepo:     userRepo,
		tokens:       tokens,
		emailService: emailService,
		txManager:    txManager,
		recorder:     recorder,
		expiryHours:  expiryHours,
		logger:       logger,
	}
}

func (uc *CreateRequestUseCase) Execute(ctx context.Context, actorID uint, request dto.CreateRequestRequest) (*dto.CreateRequestResult, error) {
	roleCode := strings.ToUpper(strings.TrimSpace(request.RoleCode))
	role, err := uc.roleRepo.GetByCode(ctx, roleCode)
	if err != nil {
		return nil, fmt.Errorf("failed to get role: %w", err)
	}
	if role == nil {
		return nil, errors.NewNotFoundError(fmt.Sprintf("role %s not found", roleCode))
	}
	if !role.IsActive() {
		return nil, errors.NewStateConflictError(fmt.Sprintf("role %s is deactivated", roleCode))
	}

	emailAddr := strings.ToLower(strings.TrimSpace(request.Email))

	// Duplicates succeed without a new row. The same benign outcome covers
	// an existing account and an active invite, so the endpoint does not
	// reveal which stage an email address is at, and retrying an invite
	// stays harmless.
	userExists, err := uc.userRepo.ExistsByEmail(ctx, emailAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	hasActive, err := uc.requestRepo.HasActiveForEmail(ctx, emailAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to check pending invites: %w", err)
	}
	if userExists || hasActive {
		uc.logger.Infow("invite skipped, email already known", "email", emailAddr)
		return &dto.CreateRequestResult{AlreadyExists: true}, nil
	}

	expiresAt := time.Now().Add(time.Duration(uc.expiryHours) * time.Hour)
	req, err := onboarding.NewRequest(emailAddr, request.Name, roleCode, &actorID, expiresAt)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	err = uc.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		if err := uc.requestRepo.Create(txCtx, req); err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		// The display code derives from the primary key, so it is stamped
		// right after the first save.
		if err := req.AssignCode(id.FormatDisplayCode("ONB", req.ID())); err != nil {
			return err
		}
		return uc.requestRepo.Update(txCtx, req)
	})
	if err != nil {
		uc.logger.Errorw("failed to create onboarding request", "email", emailAddr, "error", err)
		return nil, err
	}

	uc.sendInvite(req)

	uc.recorder.Record(ctx, audit.Record{
		ActorID:    &actorID,
		Action:     audit.ActionInviteCreate,
		EntityType: "onboarding_request",
		EntityID:   req.RID(),
		Detail:     map[string]any{"email": req.Email(), "role": req.RoleCode()},
	})

	return &dto.CreateRequestResult{Request: toRequestResponse(req)}, nil
}

func (uc *CreateRequestUseCase) sendInvite(req *onboarding.Request) {
	token, err := uc.tokens.Generate(req.RID(), req.Nonce())
	if err != nil {
		uc.logger.Errorw("failed to generate registration token", "rid", req.RID(), "error", err)
		return
	}
	if err := uc.emailService.SendInviteEmail(req.Email(), req.Name(), req.RoleCode(), token, req.ExpiresAt()); err != nil {
		uc.logger.Errorw("failed to send invite email", "rid", req.RID(), "error", err)
	}
}
