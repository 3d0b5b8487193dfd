package usecases

import (
	"instra/internal/application/onboarding/dto"
	"instra/internal/domain/onboarding"
	"instra/internal/domain/profile"
)

func toRequestResponse(request *onboarding.Request) *dto.RequestResponse {
	return &dto.RequestResponse{
		RID:               request.RID(),
		Code:              request.Code(),
		Email:             request.Email(),
		Name:              request.Name(),
		RoleCode:          request.RoleCode(),
		Status:            string(request.Status()),
		UserPayload:       request.UserPayload(),
		AdminPayload:      request.AdminPayload(),
		ExpiresAt:         request.ExpiresAt(),
		SubmittedAt:       request.SubmittedAt(),
		DecidedAt:         request.DecidedAt(),
		DecisionReason:    request.DecisionReason(),
		ProvisionedUserID: request.ProvisionedUserID(),
		LastError:         request.LastError(),
		CreatedAt:         request.CreatedAt(),
		UpdatedAt:         request.UpdatedAt(),
	}
}

func toFieldSpecResponses(specs []profile.FieldSpec) []dto.FieldSpecResponse {
	responses := make([]dto.FieldSpecResponse, 0, len(specs))
	for _, spec := range specs {
		responses = append(responses, dto.FieldSpecResponse{
			Key:      spec.Key,
			Label:    spec.Label,
			Type:     string(spec.Type),
			Required: spec.Required,
			Section:  spec.Section,
			Options:  spec.Options,
		})
	}
	return responses
}
