package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	identitydto "instra/internal/application/identity/dto"
	identityusecases "instra/internal/application/identity/usecases"
	accessusecases "instra/internal/application/access/usecases"
	"instra/internal/shared/logger"
	"instra/internal/shared/utils"
)

type AuthHandler struct {
	loginUC          *identityusecases.LoginUseCase
	changePasswordUC *identityusecases.ChangePasswordUseCase
	resolvePermsUC   *accessusecases.ResolvePermissionsUseCase
	logger           logger.Interface
}

func NewAuthHandler(
	loginUC *identityusecases.LoginUseCase,
	changePasswordUC *identityusecases.ChangePasswordUseCase,
	resolvePermsUC *accessusecases.ResolvePermissionsUseCase,
	logger logger.Interface,
) *AuthHandler {
	return &AuthHandler{
		loginUC:          loginUC,
		changePasswordUC: changePasswordUC,
		resolvePermsUC:   resolvePermsUC,
		logger:           logger,
	}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req identitydto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid login request body", "error", err)
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	resp, err := h.loginUC.Execute(c.Request.Context(), req)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", resp)
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req identitydto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	if err := h.changePasswordUC.Execute(c.Request.Context(), currentUserID(c), req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "password changed", nil)
}

// GetPermissions returns the caller's effective permission codes under the
// active role from the X-Active-Role header.
func (h *AuthHandler) GetPermissions(c *gin.Context) {
	resp, err := h.resolvePermsUC.Execute(c.Request.Context(), currentUserID(c), activeRole(c))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", resp)
}
