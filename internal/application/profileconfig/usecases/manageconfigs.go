package usecases

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"instra/internal/application/profileconfig/dto"
	"instra/internal/domain/access"
	"instra/internal/domain/audit"
	"instra/internal/domain/profile"
	"instra/internal/shared/errors"
	"instra/internal/shared/logger"
)

// ListConfigsUseCase returns every role's profile configuration without
// the per-field detail.
type ListConfigsUseCase struct {
	configRepo profile.ConfigRepository
	logger     logger.Interface
}

func NewListConfigsUseCase(configRepo profile.ConfigRepository, logger logger.Interface) *ListConfigsUseCase {
	return &ListConfigsUseCase{configRepo: configRepo, logger: logger}
}

func (uc *ListConfigsUseCase) Execute(ctx context.Context) ([]*dto.ConfigResponse, error) {
	configs, err := uc.configRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list profile configs: %w", err)
	}

	responses := make([]*dto.ConfigResponse, 0, len(configs))
	for _, config := range configs {
		responses = append(responses, toConfigResponse(config, nil))
	}
	return responses, nil
}

// GetConfigUseCase returns one role's configuration with its dynamic
// field definitions in schema order.
type GetConfigUseCase struct {
	configRepo profile.ConfigRepository
	fieldRepo  profile.FieldDefinitionRepository
	logger     logger.Interface
}

func NewGetConfigUseCase(
	configRepo profile.ConfigRepository,
	fieldRepo profile.FieldDefinitionRepository,
	logger logger.Interface,
) *GetConfigUseCase {
	return &GetConfigUseCase{configRepo: configRepo, fieldRepo: fieldRepo, logger: logger}
}

func (uc *GetConfigUseCase) Execute(ctx context.Context, roleCode string) (*dto.ConfigResponse, error) {
	roleCode = strings.ToUpper(strings.TrimSpace(roleCode))

	config, err := uc.configRepo.GetByRoleCode(ctx, roleCode)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile config: %w", err)
	}
	if config == nil {
		return nil, errors.NewNotFoundError(fmt.Sprintf("no profile config for role %s", roleCode))
	}

	defs, err := uc.fieldRepo.ListForConfig(ctx, config.ID())
	if err != nil {
		return nil, fmt.Errorf("failed to list field definitions: %w", err)
	}

	return toConfigResponse(config, defs), nil
}

// CreateConfigUseCase registers a profile configuration for a role that
// does not have one yet.
type CreateConfigUseCase struct {
	configRepo profile.ConfigRepository
	roleRepo   access.RoleRepository
	recorder   audit.Recorder
	logger     logger.Interface
}

func NewCreateConfigUseCase(
	configRepo profile.ConfigRepository,
	roleRepo access.RoleRepository,
	recorder audit.Recorder,
	logger logger.Interface,
) *CreateConfigUseCase {
	return &CreateConfigUseCase{
		configRepo: configRepo,
		roleRepo:   roleRepo,
		recorder:   recorder,
		logger:     logger,
	}
}

func (uc *CreateConfigUseCase) Execute(ctx context.Context, actorID uint, request dto.CreateConfigRequest) (*dto.ConfigResponse, error) {
	config, err := profile.NewRoleProfileConfig(request.RoleCode, request.IsRequired, profile.StorageKind(request.Storage))
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	role, err := uc.roleRepo.GetByCode(ctx, config.RoleCode())
	if err != nil {
		return nil, fmt.Errorf("failed to get role: %w", err)
	}
	if role == nil {
		return nil, errors.NewNotFoundError(fmt.Sprintf("role %s not found", config.RoleCode()))
	}

	existing, err := uc.configRepo.GetByRoleCode(ctx, config.RoleCode())
	if err != nil {
		return nil, fmt.Errorf("failed to check existing config: %w", err)
	}
	if existing != nil {
		return nil, errors.NewConflictError(fmt.Sprintf("role %s already has a profile config", config.RoleCode()))
	}

	if err := uc.configRepo.Create(ctx, config); err != nil {
		uc.logger.Errorw("failed to create profile config", "role_code", config.RoleCode(), "error", err)
		return nil, fmt.Errorf("failed to create profile config: %w", err)
	}

	uc.recorder.Record(ctx, audit.Record{
		ActorID:    &actorID,
		Action:     audit.ActionProfileConfigCreate,
		EntityType: "profile_config",
		EntityID:   config.RoleCode(),
	})

	return toConfigResponse(config, nil), nil
}

// UpdateConfigUseCase toggles whether the role's profile is mandatory at
// provisioning time. The storage kind is fixed at creation; moving rows
// between sinks is a data migration, not a config edit.
type UpdateConfigUseCase struct {
	configRepo profile.ConfigRepository
	recorder   audit.Recorder
	logger     logger.Interface
}

func NewUpdateConfigUseCase(
	configRepo profile.ConfigRepository,
	recorder audit.Recorder,
	logger logger.Interface,
) *UpdateConfigUseCase {
	return &UpdateConfigUseCase{configRepo: configRepo, recorder: recorder, logger: logger}
}

func (uc *UpdateConfigUseCase) Execute(ctx context.Context, actorID uint, roleCode string, request dto.UpdateConfigRequest) (*dto.ConfigResponse, error) {
	roleCode = strings.ToUpper(strings.TrimSpace(roleCode))

	config, err := uc.configRepo.GetByRoleCode(ctx, roleCode)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile config: %w", err)
	}
	if config == nil {
		return nil, errors.NewNotFoundError(fmt.Sprintf("no profile config for role %s", roleCode))
	}

	config.SetRequired(request.IsRequired)
	if err := uc.configRepo.Update(ctx, config); err != nil {
		uc.logger.Errorw("failed to update profile config", "role_code", roleCode, "error", err)
		return nil, fmt.Errorf("failed to update profile config: %w", err)
	}

	uc.recorder.Record(ctx, audit.Record{
		ActorID:    &actorID,
		Action:     audit.ActionProfileConfigUpdate,
		EntityType: "profile_config",
		EntityID:   roleCode,
		Detail:     map[string]any{"is_required": request.IsRequired},
	})

	return toConfigResponse(config, nil), nil
}

func toConfigResponse(config *profile.RoleProfileConfig, defs []*profile.FieldDefinition) *dto.ConfigResponse {
	resp := &dto.ConfigResponse{
		ID:         config.ID(),
		RoleCode:   config.RoleCode(),
		IsRequired: config.IsRequired(),
		Storage:    string(config.Storage()),
		CreatedAt:  config.CreatedAt(),
		UpdatedAt:  config.UpdatedAt(),
	}
	for _, def := range defs {
		resp.Fields = append(resp.Fields, toFieldResponse(def))
	}
	return resp
}

func toFieldResponse(def *profile.FieldDefinition) dto.FieldDefinitionResponse {
	return dto.FieldDefinitionResponse{
		ID:       def.ID(),
		ConfigID: def.ConfigID(),
		Key:      def.Key(),
		Label:    def.Label(),
		Type:     string(def.Type()),
		Required: def.Required(),
		Options:  def.Options(),
		Stage:    def.Stage(),
	}
}

func fieldEntityID(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
