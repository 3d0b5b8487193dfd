package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"instra/internal/application/access/dto"
	"instra/internal/application/access/usecases"
	"instra/internal/domain/access"
	"instra/internal/shared/logger"
	"instra/internal/shared/utils"
)

type PermissionHandler struct {
	createPermUC *usecases.CreatePermissionUseCase
	updatePermUC *usecases.UpdatePermissionUseCase
	deletePermUC *usecases.DeletePermissionUseCase
	listPermsUC  *usecases.ListPermissionsUseCase
	logger       logger.Interface
}

func NewPermissionHandler(
	createPermUC *usecases.CreatePermissionUseCase,
	updatePermUC *usecases.UpdatePermissionUseCase,
	deletePermUC *usecases.DeletePermissionUseCase,
	listPermsUC *usecases.ListPermissionsUseCase,
	logger logger.Interface,
) *PermissionHandler {
	return &PermissionHandler{
		createPermUC: createPermUC,
		updatePermUC: updatePermUC,
		deletePermUC: deletePermUC,
		listPermsUC:  listPermsUC,
		logger:       logger,
	}
}

func (h *PermissionHandler) CreatePermission(c *gin.Context) {
	var req dto.CreatePermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	resp, err := h.createPermUC.Execute(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.CreatedResponse(c, resp, "permission created")
}

func (h *PermissionHandler) UpdatePermission(c *gin.Context) {
	permID, err := parseUintParam(c, "id")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req dto.UpdatePermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	resp, err := h.updatePermUC.Execute(c.Request.Context(), currentUserID(c), permID, req)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", resp)
}

func (h *PermissionHandler) DeletePermission(c *gin.Context) {
	permID, err := parseUintParam(c, "id")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	if err := h.deletePermUC.Execute(c.Request.Context(), currentUserID(c), permID); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.NoContentResponse(c)
}

func (h *PermissionHandler) ListPermissions(c *gin.Context) {
	page, pageSize := parsePagination(c)
	filter := access.PermissionFilter{
		Module:   c.Query("module"),
		Code:     c.Query("code"),
		Page:     page,
		PageSize: pageSize,
	}

	perms, total, err := h.listPermsUC.Execute(c.Request.Context(), filter)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.ListSuccessResponse(c, perms, total, page, pageSize)
}
