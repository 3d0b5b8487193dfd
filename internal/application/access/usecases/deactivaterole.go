package usecases

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"instra/internal/application/access/dto"
	"instra/internal/application/access/services"
	"instra/internal/domain/access"
	"instra/internal/domain/audit"
	"instra/internal/shared/db"
	"instra/internal/shared/errors"
	"instra/internal/shared/logger"
)

const (
	StrategyReassign = "reassign"
	StrategyFallback = "fallback"
)

// DeactivateRoleUseCase retires a role without orphaning its holders.
// Every binding is moved to a target role (or dropped when the user
// already holds the target) in the same transaction that marks the role
// inactive, with the binding rows locked for the duration.
type DeactivateRoleUseCase struct {
	roleRepo         access.RoleRepository
	userRoleRepo     access.UserRoleRepository
	txManager        *db.TransactionManager
	invalidator      *services.CacheInvalidator
	recorder         audit.Recorder
	fallbackRoleCode string
	logger           logger.Interface
}

func NewDeactivateRoleUseCase(
	roleRepo access.RoleRepository,
	userRoleRepo access.UserRoleRepository,
	txManager *db.TransactionManager,
	invalidator *services.CacheInvalidator,
	recorder audit.Recorder,
	fallbackRoleCode string,
	logger logger.Interface,
) *DeactivateRoleUseCase {
	return &DeactivateRoleUseCase{
		roleRepo:         roleRepo,
		userRoleRepo:     userRoleRepo,
		txManager:        txManager,
		invalidator:      invalidator,
		recorder:         recorder,
		fallbackRoleCode: strings.ToUpper(fallbackRoleCode),
		logger:           logger,
	}
}

func (uc *DeactivateRoleUseCase) Execute(ctx context.Context, actorID uint, roleCode string, request dto.DeactivateRoleRequest) (*dto.DeactivateRoleResponse, error) {
	roleCode = strings.ToUpper(strings.TrimSpace(roleCode))

	targetCode, err := uc.resolveTargetCode(roleCode, request)
	if err != nil {
		return nil, err
	}

	// Preconditions are validated outside the transaction first so an
	// obviously bad request never opens one; everything is re-checked on
	// locked rows inside.
	if err := uc.validate(ctx, roleCode, targetCode); err != nil {
		return nil, err
	}

	response := &dto.DeactivateRoleResponse{
		RoleCode:       roleCode,
		TargetRoleCode: targetCode,
	}

	err = uc.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		role, err := uc.roleRepo.GetByCodeForUpdate(txCtx, roleCode)
		if err != nil {
			return fmt.Errorf("failed to lock role: %w", err)
		}
		if role == nil {
			return errors.NewNotFoundError("role not found")
		}

		target, err := uc.roleRepo.GetByCode(txCtx, targetCode)
		if err != nil {
			return fmt.Errorf("failed to load target role: %w", err)
		}
		if target == nil || !target.IsActive() {
			return errors.NewStateConflictError("target role is not active")
		}

		bindings, err := uc.userRoleRepo.ListBindingsForRole(txCtx, role.ID())
		if err != nil {
			return fmt.Errorf("failed to lock role bindings: %w", err)
		}

		for _, binding := range bindings {
			holdsTarget, err := uc.userRoleRepo.Holds(txCtx, binding.UserID(), target.ID())
			if err != nil {
				return fmt.Errorf("failed to check target binding: %w", err)
			}
			if holdsTarget {
				if err := uc.userRoleRepo.DeleteBinding(txCtx, binding.ID()); err != nil {
					return fmt.Errorf("failed to remove duplicate binding: %w", err)
				}
				response.RemovedDuplicateCount++
				continue
			}
			if err := uc.userRoleRepo.RebindToRole(txCtx, binding.ID(), target.ID()); err != nil {
				return fmt.Errorf("failed to reassign binding: %w", err)
			}
			response.ReassignedCount++
		}

		if err := role.Deactivate(actorID, request.Reason); err != nil {
			return errors.NewStateConflictError(err.Error())
		}
		if err := uc.roleRepo.Update(txCtx, role); err != nil {
			return fmt.Errorf("failed to persist role deactivation: %w", err)
		}
		return nil
	})
	if err != nil {
		uc.logger.Errorw("role deactivation failed",
			"role", roleCode, "target", targetCode, "error", err)
		return nil, err
	}

	// The cache must never serve perms for the retired role, and the
	// target role's holders changed, so both codes are dropped as the
	// final step.
	uc.invalidator.RoleChanged(ctx, roleCode, targetCode)

	uc.logger.Infow("role deactivated",
		"role", roleCode,
		"target", targetCode,
		"reassigned", response.ReassignedCount,
		"duplicates_removed", response.RemovedDuplicateCount)

	uc.recorder.Record(ctx, audit.Record{
		ActorID:    &actorID,
		Action:     audit.ActionRoleDeactivate,
		EntityType: "role",
		EntityID:   roleCode,
		Detail: map[string]any{
			"target":             targetCode,
			"reason":             request.Reason,
			"reassigned":         strconv.Itoa(response.ReassignedCount),
			"duplicates_removed": strconv.Itoa(response.RemovedDuplicateCount),
		},
	})

	return response, nil
}

func (uc *DeactivateRoleUseCase) resolveTargetCode(roleCode string, request dto.DeactivateRoleRequest) (string, error) {
	switch request.Strategy {
	case StrategyReassign:
		target := strings.ToUpper(strings.TrimSpace(request.TargetRole))
		if target == "" {
			return "", errors.NewValidationError("reassign strategy requires a target role")
		}
		if target == roleCode {
			return "", errors.NewValidationError("target role must differ from the role being deactivated")
		}
		return target, nil
	case StrategyFallback:
		if uc.fallbackRoleCode == "" {
			return "", errors.NewValidationError("no fallback role configured")
		}
		if uc.fallbackRoleCode == roleCode {
			return "", errors.NewValidationError("cannot deactivate the configured fallback role with the fallback strategy")
		}
		return uc.fallbackRoleCode, nil
	default:
		return "", errors.NewValidationError(fmt.Sprintf("unknown deactivation strategy: %s", request.Strategy))
	}
}

func (uc *DeactivateRoleUseCase) validate(ctx context.Context, roleCode, targetCode string) error {
	role, err := uc.roleRepo.GetByCode(ctx, roleCode)
	if err != nil {
		return fmt.Errorf("failed to load role: %w", err)
	}
	if role == nil {
		return errors.NewNotFoundError("role not found")
	}
	if role.IsSystem() {
		return errors.NewStateConflictError("system roles cannot be deactivated")
	}
	if !role.IsActive() {
		return errors.NewStateConflictError("role is already inactive")
	}

	target, err := uc.roleRepo.GetByCode(ctx, targetCode)
	if err != nil {
		return fmt.Errorf("failed to load target role: %w", err)
	}
	if target == nil {
		return errors.NewValidationError(fmt.Sprintf("target role %s does not exist", targetCode))
	}
	if !target.IsActive() {
		return errors.NewValidationError(fmt.Sprintf("target role %s is not active", targetCode))
	}
	return nil
}
