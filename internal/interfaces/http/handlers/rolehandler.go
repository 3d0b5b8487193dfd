package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"instra/internal/application/access/dto"
	"instra/internal/application/access/usecases"
	"instra/internal/domain/access"
	"instra/internal/shared/logger"
	"instra/internal/shared/utils"
)

type RoleHandler struct {
	createRoleUC    *usecases.CreateRoleUseCase
	updateRoleUC    *usecases.UpdateRoleUseCase
	listRolesUC     *usecases.ListRolesUseCase
	deactivateUC    *usecases.DeactivateRoleUseCase
	setRolePermsUC  *usecases.SetRolePermissionsUseCase
	listRolePermsUC *usecases.ListRolePermissionsUseCase
	logger          logger.Interface
}

func NewRoleHandler(
	createRoleUC *usecases.CreateRoleUseCase,
	updateRoleUC *usecases.UpdateRoleUseCase,
	listRolesUC *usecases.ListRolesUseCase,
	deactivateUC *usecases.DeactivateRoleUseCase,
	setRolePermsUC *usecases.SetRolePermissionsUseCase,
	listRolePermsUC *usecases.ListRolePermissionsUseCase,
	logger logger.Interface,
) *RoleHandler {
	return &RoleHandler{
		createRoleUC:    createRoleUC,
		updateRoleUC:    updateRoleUC,
		listRolesUC:     listRolesUC,
		deactivateUC:    deactivateUC,
		setRolePermsUC:  setRolePermsUC,
		listRolePermsUC: listRolePermsUC,
		logger:          logger,
	}
}

func (h *RoleHandler) CreateRole(c *gin.Context) {
	var req dto.CreateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	resp, err := h.createRoleUC.Execute(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.CreatedResponse(c, resp, "role created")
}

func (h *RoleHandler) UpdateRole(c *gin.Context) {
	roleID, err := parseUintParam(c, "id")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req dto.UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	resp, err := h.updateRoleUC.Execute(c.Request.Context(), currentUserID(c), roleID, req)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", resp)
}

func (h *RoleHandler) ListRoles(c *gin.Context) {
	page, pageSize := parsePagination(c)
	filter := access.RoleFilter{
		Name:     c.Query("name"),
		Code:     c.Query("code"),
		Page:     page,
		PageSize: pageSize,
	}
	if raw := c.Query("is_active"); raw != "" {
		isActive := raw == "true"
		filter.IsActive = &isActive
	}

	roles, total, err := h.listRolesUC.Execute(c.Request.Context(), filter)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.ListSuccessResponse(c, roles, total, page, pageSize)
}

// DeactivateRole retires a role by code, migrating or removing its
// bindings according to the requested strategy.
func (h *RoleHandler) DeactivateRole(c *gin.Context) {
	roleCode := strings.TrimSpace(c.Param("code"))

	var req dto.DeactivateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	resp, err := h.deactivateUC.Execute(c.Request.Context(), currentUserID(c), roleCode, req)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "role deactivated", resp)
}

func (h *RoleHandler) SetRolePermissions(c *gin.Context) {
	roleID, err := parseUintParam(c, "id")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req dto.SetRolePermissionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	perms, err := h.setRolePermsUC.Execute(c.Request.Context(), currentUserID(c), roleID, req)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "role permissions updated", perms)
}

func (h *RoleHandler) ListRolePermissions(c *gin.Context) {
	roleID, err := parseUintParam(c, "id")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	perms, err := h.listRolePermsUC.Execute(c.Request.Context(), roleID)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", perms)
}
