package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"instra/internal/application/profileconfig/dto"
	"instra/internal/application/profileconfig/usecases"
	"instra/internal/shared/logger"
	"instra/internal/shared/utils"
)

// ProfileConfigHandler exposes the per-role profile configuration and its
// dynamic registration fields.
type ProfileConfigHandler struct {
	listConfigsUC  *usecases.ListConfigsUseCase
	getConfigUC    *usecases.GetConfigUseCase
	createConfigUC *usecases.CreateConfigUseCase
	updateConfigUC *usecases.UpdateConfigUseCase
	createFieldUC  *usecases.CreateFieldUseCase
	updateFieldUC  *usecases.UpdateFieldUseCase
	deleteFieldUC  *usecases.DeleteFieldUseCase
	logger         logger.Interface
}

func NewProfileConfigHandler(
	listConfigsUC *usecases.ListConfigsUseCase,
	getConfigUC *usecases.GetConfigUseCase,
	createConfigUC *usecases.CreateConfigUseCase,
	updateConfigUC *usecases.UpdateConfigUseCase,
	createFieldUC *usecases.CreateFieldUseCase,
	updateFieldUC *usecases.UpdateFieldUseCase,
	deleteFieldUC *usecases.DeleteFieldUseCase,
	logger logger.Interface,
) *ProfileConfigHandler {
	return &ProfileConfigHandler{
		listConfigsUC:  listConfigsUC,
		getConfigUC:    getConfigUC,
		createConfigUC: createConfigUC,
		updateConfigUC: updateConfigUC,
		createFieldUC:  createFieldUC,
		updateFieldUC:  updateFieldUC,
		deleteFieldUC:  deleteFieldUC,
		logger:         logger,
	}
}

func (h *ProfileConfigHandler) ListConfigs(c *gin.Context) {
	resp, err := h.listConfigsUC.Execute(c.Request.Context())
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", resp)
}

func (h *ProfileConfigHandler) GetConfig(c *gin.Context) {
	resp, err := h.getConfigUC.Execute(c.Request.Context(), c.Param("role_code"))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", resp)
}

func (h *ProfileConfigHandler) CreateConfig(c *gin.Context) {
	var req dto.CreateConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	resp, err := h.createConfigUC.Execute(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.CreatedResponse(c, resp, "profile config created")
}

func (h *ProfileConfigHandler) UpdateConfig(c *gin.Context) {
	var req dto.UpdateConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	resp, err := h.updateConfigUC.Execute(c.Request.Context(), currentUserID(c), c.Param("role_code"), req)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", resp)
}

func (h *ProfileConfigHandler) CreateField(c *gin.Context) {
	var req dto.CreateFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	resp, err := h.createFieldUC.Execute(c.Request.Context(), currentUserID(c), c.Param("role_code"), req)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.CreatedResponse(c, resp, "field created")
}

func (h *ProfileConfigHandler) UpdateField(c *gin.Context) {
	fieldID, err := parseUintParam(c, "field_id")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req dto.UpdateFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	resp, err := h.updateFieldUC.Execute(c.Request.Context(), currentUserID(c), fieldID, req)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", resp)
}

func (h *ProfileConfigHandler) DeleteField(c *gin.Context) {
	fieldID, err := parseUintParam(c, "field_id")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	if err := h.deleteFieldUC.Execute(c.Request.Context(), currentUserID(c), fieldID); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.NoContentResponse(c)
}
