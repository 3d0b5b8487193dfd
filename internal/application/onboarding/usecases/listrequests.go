package usecases

import (
	"context"
	"fmt"

	"instra/internal/application/onboarding/dto"
	"instra/internal/domain/onboarding"
	"instra/internal/shared/errors"
	"instra/internal/shared/logger"
)

type ListRequestsUseCase struct {
	requestRepo onboarding.RequestRepository
	logger      logger.Interface
}

func NewListRequestsUseCase(requestRepo onboarding.RequestRepository, logger logger.Interface) *ListRequestsUseCase {
	return &ListRequestsUseCase{requestRepo: requestRepo, logger: logger}
}

func (uc *ListRequestsUseCase) Execute(ctx context.Context, query dto.ListRequestsQuery) ([]*dto.RequestResponse, int64, error) {
	filter := onboarding.RequestFilter{
		Email:    query.Email,
		RoleCode: query.RoleCode,
		Page:     query.Page,
		PageSize: query.PageSize,
	}
	if query.Status != "" {
		status, err := onboarding.ParseStatus(query.Status)
		if err != nil {
			return nil, 0, errors.NewValidationError(err.Error())
		}
		filter.Status = status
	}

	requests, total, err := uc.requestRepo.List(ctx, filter)
	if err != nil {
		uc.logger.Errorw("failed to list onboarding requests", "error", err)
		return nil, 0, fmt.Errorf("failed to list requests: %w", err)
	}

	responses := make([]*dto.RequestResponse, 0, len(requests))
	for _, request := range requests {
		responses = append(responses, toRequestResponse(request))
	}
	return responses, total, nil
}

type GetRequestUseCase struct {
	requestRepo onboarding.RequestRepository
	logger      logger.Interface
}

func NewGetRequestUseCase(requestRepo onboarding.RequestRepository, logger logger.Interface) *GetRequestUseCase {
	return &GetRequestUseCase{requestRepo: requestRepo, logger: logger}
}

func (uc *GetRequestUseCase) Execute(ctx context.Context, rid string) (*dto.RequestResponse, error) {
	request, err := uc.requestRepo.GetByRID(ctx, rid)
	if err != nil {
		return nil, fmt.Errorf("failed to get request: %w", err)
	}
	if request == nil {
		return nil, errors.NewNotFoundError("onboarding request not found")
	}
	return toRequestResponse(request), nil
}
