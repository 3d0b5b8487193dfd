package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"instra/internal/domain/onboarding"
	"instra/internal/infrastructure/persistence/models"
	"instra/internal/shared/constants"
	"instra/internal/shared/db"
)

type OnboardRequestRepositoryImpl struct {
	db *gorm.DB
}

func NewOnboardRequestRepository(database *gorm.DB) onboarding.RequestRepository {
	return &OnboardRequestRepositoryImpl{db: database}
}

func (r *OnboardRequestRepositoryImpl) Create(ctx context.Context, request *onboarding.Request) error {
	model, err := requestToModel(request)
	if err != nil {
		return err
	}

	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.Create(model).Error; err != nil {
		return fmt.Errorf("failed to create onboard request: %w", err)
	}

	return request.SetID(model.ID)
}

func (r *OnboardRequestRepositoryImpl) GetByID(ctx context.Context, id uint) (*onboarding.Request, error) {
	var model models.OnboardRequestModel
	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.First(&model, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get onboard request: %w", err)
	}
	return reconstructRequest(&model)
}

func (r *OnboardRequestRepositoryImpl) GetByRID(ctx context.Context, rid string) (*onboarding.Request, error) {
	var model models.OnboardRequestModel
	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.Where("rid = ?", rid).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get onboard request by rid: %w", err)
	}
	return reconstructRequest(&model)
}

func (r *OnboardRequestRepositoryImpl) GetByRIDForUpdate(ctx context.Context, rid string) (*onboarding.Request, error) {
	var model models.OnboardRequestModel
	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("rid = ?", rid).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to lock onboard request: %w", err)
	}
	return reconstructRequest(&model)
}

func (r *OnboardRequestRepositoryImpl) HasActiveForEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.Model(&models.OnboardRequestModel{}).
		Where("email = ? AND status IN ?", email, []string{
			onboarding.StatusInvited.String(),
			onboarding.StatusPendingApproval.String(),
		}).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check active requests: %w", err)
	}
	return count > 0, nil
}

func (r *OnboardRequestRepositoryImpl) List(ctx context.Context, filter onboarding.RequestFilter) ([]*onboarding.Request, int64, error) {
	tx := db.GetTxFromContext(ctx, r.db)
	query := tx.Model(&models.OnboardRequestModel{})

	if filter.Email != "" {
		query = query.Where("email = ?", filter.Email)
	}
	if filter.RoleCode != "" {
		query = query.Where("role_code = ?", filter.RoleCode)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status.String())
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count onboard requests: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = constants.DefaultPage
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = constants.DefaultPageSize
	}
	if pageSize > constants.MaxPageSize {
		pageSize = constants.MaxPageSize
	}

	offset := (page - 1) * pageSize
	query = query.Offset(offset).Limit(pageSize).Order("created_at DESC")

	var requestModels []*models.OnboardRequestModel
	if err := query.Find(&requestModels).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list onboard requests: %w", err)
	}

	requests := make([]*onboarding.Request, 0, len(requestModels))
	for _, model := range requestModels {
		request, err := reconstructRequest(model)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to reconstruct onboard request: %w", err)
		}
		requests = append(requests, request)
	}

	return requests, total, nil
}

func (r *OnboardRequestRepositoryImpl) Update(ctx context.Context, request *onboarding.Request) error {
	model, err := requestToModel(request)
	if err != nil {
		return err
	}

	tx := db.GetTxFromContext(ctx, r.db)
	result := tx.Model(&models.OnboardRequestModel{}).
		Where("id = ?", request.ID()).
		Updates(map[string]interface{}{
			"code":                request.Code(),
			"status":              request.Status().String(),
			"nonce":               request.Nonce(),
			"user_payload":        model.UserPayload,
			"admin_payload":       model.AdminPayload,
			"expires_at":          request.ExpiresAt(),
			"submitted_at":        request.SubmittedAt(),
			"token_used_at":       request.TokenUsedAt(),
			"decided_by":          request.DecidedBy(),
			"decided_at":          request.DecidedAt(),
			"decision_reason":     request.DecisionReason(),
			"provisioned_user_id": request.ProvisionedUserID(),
			"last_error":          request.LastError(),
			"updated_at":          request.UpdatedAt(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update onboard request: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("onboard request not found: %d", request.ID())
	}
	return nil
}

func requestToModel(request *onboarding.Request) (*models.OnboardRequestModel, error) {
	userPayload, err := marshalPayload(request.UserPayload())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal user payload: %w", err)
	}
	adminPayload, err := marshalPayload(request.AdminPayload())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal admin payload: %w", err)
	}

	return &models.OnboardRequestModel{
		ID:                request.ID(),
		RID:               request.RID(),
		Code:              request.Code(),
		Email:             request.Email(),
		Name:              request.Name(),
		RoleCode:          request.RoleCode(),
		Status:            request.Status().String(),
		Nonce:             request.Nonce(),
		UserPayload:       userPayload,
		AdminPayload:      adminPayload,
		InvitedBy:         request.InvitedBy(),
		ExpiresAt:         request.ExpiresAt(),
		SubmittedAt:       request.SubmittedAt(),
		TokenUsedAt:       request.TokenUsedAt(),
		DecidedBy:         request.DecidedBy(),
		DecidedAt:         request.DecidedAt(),
		DecisionReason:    request.DecisionReason(),
		ProvisionedUserID: request.ProvisionedUserID(),
		LastError:         request.LastError(),
	}, nil
}

func reconstructRequest(model *models.OnboardRequestModel) (*onboarding.Request, error) {
	userPayload, err := unmarshalPayload(model.UserPayload)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal user payload: %w", err)
	}
	adminPayload, err := unmarshalPayload(model.AdminPayload)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal admin payload: %w", err)
	}

	return onboarding.ReconstructRequest(onboarding.RequestState{
		ID:                model.ID,
		RID:               model.RID,
		Code:              model.Code,
		Email:             model.Email,
		Name:              model.Name,
		RoleCode:          model.RoleCode,
		Status:            onboarding.Status(model.Status),
		Nonce:             model.Nonce,
		UserPayload:       userPayload,
		AdminPayload:      adminPayload,
		InvitedBy:         model.InvitedBy,
		ExpiresAt:         model.ExpiresAt,
		SubmittedAt:       model.SubmittedAt,
		TokenUsedAt:       model.TokenUsedAt,
		DecidedBy:         model.DecidedBy,
		DecidedAt:         model.DecidedAt,
		DecisionReason:    model.DecisionReason,
		ProvisionedUserID: model.ProvisionedUserID,
		LastError:         model.LastError,
		CreatedAt:         model.CreatedAt,
		UpdatedAt:         model.UpdatedAt,
	})
}

func marshalPayload(payload map[string]any) (datatypes.JSON, error) {
	if payload == nil {
		return nil, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

func unmarshalPayload(raw datatypes.JSON) (map[string]any, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}
