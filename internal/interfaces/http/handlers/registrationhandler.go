package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"instra/internal/application/onboarding/dto"
	"instra/internal/application/onboarding/usecases"
	"instra/internal/shared/logger"
	"instra/internal/shared/utils"
)

// RegistrationHandler serves the two public, token-gated endpoints an
// invitee touches. Neither requires authentication; the signed token in
// the link is the whole credential.
type RegistrationHandler struct {
	getSchemaUC *usecases.GetRegistrationSchemaUseCase
	submitUC    *usecases.SubmitRegistrationUseCase
	logger      logger.Interface
}

func NewRegistrationHandler(
	getSchemaUC *usecases.GetRegistrationSchemaUseCase,
	submitUC *usecases.SubmitRegistrationUseCase,
	logger logger.Interface,
) *RegistrationHandler {
	return &RegistrationHandler{
		getSchemaUC: getSchemaUC,
		submitUC:    submitUC,
		logger:      logger,
	}
}

// GetSchema returns the registration form definition for the token in the
// query string.
func (h *RegistrationHandler) GetSchema(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		utils.ErrorResponse(c, http.StatusBadRequest, "token is required")
		return
	}

	resp, err := h.getSchemaUC.Execute(c.Request.Context(), token)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", resp)
}

func (h *RegistrationHandler) Submit(c *gin.Context) {
	var req dto.SubmitRegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}
	// The link in the invite email carries the token as a query parameter;
	// clients may also put it in the body.
	if req.Token == "" {
		req.Token = c.Query("token")
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	resp, err := h.submitUC.Execute(c.Request.Context(), req)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "registration submitted", resp)
}
