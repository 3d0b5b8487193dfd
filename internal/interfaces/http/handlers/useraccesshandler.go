package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"instra/internal/application/access/dto"
	"instra/internal/application/access/usecases"
	"instra/internal/shared/logger"
	"instra/internal/shared/utils"
)

// UserAccessHandler covers the per-user authorization surface: role
// bindings and permission overrides.
type UserAccessHandler struct {
	assignRoleUC     *usecases.AssignUserRoleUseCase
	removeRoleUC     *usecases.RemoveUserRoleUseCase
	listUserRolesUC  *usecases.ListUserRolesUseCase
	setOverrideUC    *usecases.SetOverrideUseCase
	removeOverrideUC *usecases.RemoveOverrideUseCase
	listOverridesUC  *usecases.ListOverridesUseCase
	logger           logger.Interface
}

func NewUserAccessHandler(
	assignRoleUC *usecases.AssignUserRoleUseCase,
	removeRoleUC *usecases.RemoveUserRoleUseCase,
	listUserRolesUC *usecases.ListUserRolesUseCase,
	setOverrideUC *usecases.SetOverrideUseCase,
	removeOverrideUC *usecases.RemoveOverrideUseCase,
	listOverridesUC *usecases.ListOverridesUseCase,
	logger logger.Interface,
) *UserAccessHandler {
	return &UserAccessHandler{
		assignRoleUC:     assignRoleUC,
		removeRoleUC:     removeRoleUC,
		listUserRolesUC:  listUserRolesUC,
		setOverrideUC:    setOverrideUC,
		removeOverrideUC: removeOverrideUC,
		listOverridesUC:  listOverridesUC,
		logger:           logger,
	}
}

func (h *UserAccessHandler) AssignRole(c *gin.Context) {
	var req dto.AssignUserRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	if err := h.assignRoleUC.Execute(c.Request.Context(), currentUserID(c), req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "role assigned", nil)
}

func (h *UserAccessHandler) RemoveRole(c *gin.Context) {
	userID, err := parseUintParam(c, "user_id")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	roleID, err := parseUintParam(c, "role_id")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	if err := h.removeRoleUC.Execute(c.Request.Context(), currentUserID(c), userID, roleID); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.NoContentResponse(c)
}

func (h *UserAccessHandler) ListRoles(c *gin.Context) {
	userID, err := parseUintParam(c, "user_id")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	roles, err := h.listUserRolesUC.Execute(c.Request.Context(), userID)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", roles)
}

func (h *UserAccessHandler) SetOverride(c *gin.Context) {
	var req dto.SetOverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	resp, err := h.setOverrideUC.Execute(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "override set", resp)
}

func (h *UserAccessHandler) RemoveOverride(c *gin.Context) {
	userID, err := parseUintParam(c, "user_id")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	permID, err := parseUintParam(c, "permission_id")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	if err := h.removeOverrideUC.Execute(c.Request.Context(), currentUserID(c), userID, permID); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.NoContentResponse(c)
}

func (h *UserAccessHandler) ListOverrides(c *gin.Context) {
	userID, err := parseUintParam(c, "user_id")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	overrides, err := h.listOverridesUC.Execute(c.Request.Context(), userID)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", overrides)
}
