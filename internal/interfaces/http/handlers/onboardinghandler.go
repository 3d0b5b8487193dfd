package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"instra/internal/application/onboarding/dto"
	"instra/internal/application/onboarding/usecases"
	"instra/internal/shared/logger"
	"instra/internal/shared/utils"
)

// OnboardingHandler covers the admin review queue. The public registration
// endpoints live in RegistrationHandler.
type OnboardingHandler struct {
	createRequestUC *usecases.CreateRequestUseCase
	listRequestsUC  *usecases.ListRequestsUseCase
	getRequestUC    *usecases.GetRequestUseCase
	patchPayloadUC  *usecases.PatchAdminPayloadUseCase
	approveUC       *usecases.ApproveRequestUseCase
	actionUC        *usecases.ActionRequestUseCase
	logger          logger.Interface
}

func NewOnboardingHandler(
	createRequestUC *usecases.CreateRequestUseCase,
	listRequestsUC *usecases.ListRequestsUseCase,
	getRequestUC *usecases.GetRequestUseCase,
	patchPayloadUC *usecases.PatchAdminPayloadUseCase,
	approveUC *usecases.ApproveRequestUseCase,
	actionUC *usecases.ActionRequestUseCase,
	logger logger.Interface,
) *OnboardingHandler {
	return &OnboardingHandler{
		createRequestUC: createRequestUC,
		listRequestsUC:  listRequestsUC,
		getRequestUC:    getRequestUC,
		patchPayloadUC:  patchPayloadUC,
		approveUC:       approveUC,
		actionUC:        actionUC,
		logger:          logger,
	}
}

func (h *OnboardingHandler) CreateRequest(c *gin.Context) {
	var req dto.CreateRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	resp, err := h.createRequestUC.Execute(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	if resp.AlreadyExists {
		utils.SuccessResponse(c, http.StatusOK, "an invitation or account for this email already exists", resp)
		return
	}
	utils.CreatedResponse(c, resp, "invitation sent")
}

func (h *OnboardingHandler) ListRequests(c *gin.Context) {
	page, pageSize := parsePagination(c)
	query := dto.ListRequestsQuery{
		Email:    c.Query("email"),
		RoleCode: c.Query("role_code"),
		Status:   c.Query("status"),
		Page:     page,
		PageSize: pageSize,
	}

	requests, total, err := h.listRequestsUC.Execute(c.Request.Context(), query)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.ListSuccessResponse(c, requests, total, page, pageSize)
}

func (h *OnboardingHandler) GetRequest(c *gin.Context) {
	resp, err := h.getRequestUC.Execute(c.Request.Context(), c.Param("rid"))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", resp)
}

func (h *OnboardingHandler) PatchAdminPayload(c *gin.Context) {
	var req dto.PatchAdminPayloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	resp, err := h.patchPayloadUC.Execute(c.Request.Context(), currentUserID(c), c.Param("rid"), req)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", resp)
}

func (h *OnboardingHandler) ApproveRequest(c *gin.Context) {
	// The body is optional; the welcome email goes out unless the caller
	// explicitly turns it off.
	body := dto.ApproveRequestBody{SendWelcomeEmail: true}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			utils.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	resp, err := h.approveUC.Execute(c.Request.Context(), currentUserID(c), c.Param("rid"), body.SendWelcomeEmail)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "request approved", resp)
}

// ActionRequest handles the send_back and drop decisions.
func (h *OnboardingHandler) ActionRequest(c *gin.Context) {
	var req dto.ActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	resp, err := h.actionUC.Execute(c.Request.Context(), currentUserID(c), c.Param("rid"), req)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", resp)
}
