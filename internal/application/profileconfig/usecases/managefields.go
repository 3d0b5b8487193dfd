package usecases

import (
	"context"
	"fmt"
	"strings"

	"instra/internal/application/profileconfig/dto"
	"instra/internal/domain/audit"
	"instra/internal/domain/profile"
	"instra/internal/shared/errors"
	"instra/internal/shared/logger"
)

// CreateFieldUseCase attaches a dynamic form field to a role's profile
// config. The field appears at the end of the registration schema; keys
// are unique per config.
type CreateFieldUseCase struct {
	configRepo profile.ConfigRepository
	fieldRepo  profile.FieldDefinitionRepository
	recorder   audit.Recorder
	logger     logger.Interface
}

func NewCreateFieldUseCase(
	configRepo profile.ConfigRepository,
	fieldRepo profile.FieldDefinitionRepository,
	recorder audit.Recorder,
	logger logger.Interface,
) *CreateFieldUseCase {
	return &CreateFieldUseCase{
		configRepo: configRepo,
		fieldRepo:  fieldRepo,
		recorder:   recorder,
		logger:     logger,
	}
}

func (uc *CreateFieldUseCase) Execute(ctx context.Context, actorID uint, roleCode string, request dto.CreateFieldRequest) (*dto.FieldDefinitionResponse, error) {
	roleCode = strings.ToUpper(strings.TrimSpace(roleCode))

	config, err := uc.configRepo.GetByRoleCode(ctx, roleCode)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile config: %w", err)
	}
	if config == nil {
		return nil, errors.NewNotFoundError(fmt.Sprintf("no profile config for role %s", roleCode))
	}

	existing, err := uc.fieldRepo.ListForConfig(ctx, config.ID())
	if err != nil {
		return nil, fmt.Errorf("failed to list field definitions: %w", err)
	}
	for _, def := range existing {
		if def.Key() == strings.TrimSpace(request.Key) {
			return nil, errors.NewConflictError(fmt.Sprintf("field %s already defined for role %s", request.Key, roleCode))
		}
	}

	def, err := profile.NewFieldDefinition(config.ID(), request.Key, request.Label,
		profile.FieldType(request.Type), request.Required, request.Options, request.Stage)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	if err := uc.fieldRepo.Create(ctx, def); err != nil {
		uc.logger.Errorw("failed to create field definition", "role_code", roleCode, "key", request.Key, "error", err)
		return nil, fmt.Errorf("failed to create field definition: %w", err)
	}

	uc.recorder.Record(ctx, audit.Record{
		ActorID:    &actorID,
		Action:     audit.ActionProfileFieldCreate,
		EntityType: "profile_field",
		EntityID:   fieldEntityID(def.ID()),
		Detail:     map[string]any{"role_code": roleCode, "key": def.Key()},
	})

	resp := toFieldResponse(def)
	return &resp, nil
}

// UpdateFieldUseCase edits a field's descriptive parts. Key and type are
// immutable.
type UpdateFieldUseCase struct {
	fieldRepo profile.FieldDefinitionRepository
	recorder  audit.Recorder
	logger    logger.Interface
}

func NewUpdateFieldUseCase(
	fieldRepo profile.FieldDefinitionRepository,
	recorder audit.Recorder,
	logger logger.Interface,
) *UpdateFieldUseCase {
	return &UpdateFieldUseCase{fieldRepo: fieldRepo, recorder: recorder, logger: logger}
}

func (uc *UpdateFieldUseCase) Execute(ctx context.Context, actorID uint, fieldID uint, request dto.UpdateFieldRequest) (*dto.FieldDefinitionResponse, error) {
	def, err := uc.fieldRepo.GetByID(ctx, fieldID)
	if err != nil {
		return nil, fmt.Errorf("failed to get field definition: %w", err)
	}
	if def == nil {
		return nil, errors.NewNotFoundError("field definition not found")
	}

	if err := def.UpdateDetails(request.Label, request.Required, request.Options, request.Stage); err != nil {
		return nil, errors.NewValidationError(err.Error())
	}
	if err := uc.fieldRepo.Update(ctx, def); err != nil {
		uc.logger.Errorw("failed to update field definition", "field_id", fieldID, "error", err)
		return nil, fmt.Errorf("failed to update field definition: %w", err)
	}

	uc.recorder.Record(ctx, audit.Record{
		ActorID:    &actorID,
		Action:     audit.ActionProfileFieldUpdate,
		EntityType: "profile_field",
		EntityID:   fieldEntityID(fieldID),
	})

	resp := toFieldResponse(def)
	return &resp, nil
}

// DeleteFieldUseCase removes a dynamic field. Values already collected
// under the key stay in stored payloads; they simply stop being part of
// the schema.
type DeleteFieldUseCase struct {
	fieldRepo profile.FieldDefinitionRepository
	recorder  audit.Recorder
	logger    logger.Interface
}

func NewDeleteFieldUseCase(
	fieldRepo profile.FieldDefinitionRepository,
	recorder audit.Recorder,
	logger logger.Interface,
) *DeleteFieldUseCase {
	return &DeleteFieldUseCase{fieldRepo: fieldRepo, recorder: recorder, logger: logger}
}

func (uc *DeleteFieldUseCase) Execute(ctx context.Context, actorID uint, fieldID uint) error {
	def, err := uc.fieldRepo.GetByID(ctx, fieldID)
	if err != nil {
		return fmt.Errorf("failed to get field definition: %w", err)
	}
	if def == nil {
		return errors.NewNotFoundError("field definition not found")
	}

	if err := uc.fieldRepo.Delete(ctx, fieldID); err != nil {
		uc.logger.Errorw("failed to delete field definition", "field_id", fieldID, "error", err)
		return fmt.Errorf("failed to delete field definition: %w", err)
	}

	uc.recorder.Record(ctx, audit.Record{
		ActorID:    &actorID,
		Action:     audit.ActionProfileFieldDelete,
		EntityType: "profile_field",
		EntityID:   fieldEntityID(fieldID),
		Detail:     map[string]any{"key": def.Key()},
	})

	return nil
}
