package handlers

import (
	"saasadmin/internal/middleware"
	"saasadmin/internal/services"
	"saasadmin/pkg/response"

	"github.com/gin-gonic/gin"
)

// upsertSettingBody 兼容旧前端提交的 tenantId 字段
type upsertSettingBody struct {
	services.UpsertSettingRequest
	LegacyTenantID *uint `json:"tenantId"`
}

type SettingHandler struct {
	service *services.SettingService
}

func NewSettingHandler(service *services.SettingService) *SettingHandler {
	return &SettingHandler{service: service}
}

// List 配置列表，?tenant_id=0 仅返回全局配置，也接受 ?tenantId=
func (h *SettingHandler) List(c *gin.Context) {
	tenantID, err := parseOptionalUint(c, "tenant_id")
	if err == nil && tenantID == nil {
		tenantID, err = parseOptionalUint(c, "tenantId")
	}
	if err != nil {
		response.Fail(c, err)
		return
	}

	settings, err := h.service.List(c.Request.Context(), tenantID)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, settings)
}

func (h *SettingHandler) GetByID(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Fail(c, err)
		return
	}

	setting, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, setting)
}

// Upsert 新建返回201，覆盖已有键返回200
func (h *SettingHandler) Upsert(c *gin.Context) {
	var body upsertSettingBody
	if err := bindJSON(c, &body); err != nil {
		response.Fail(c, err)
		return
	}
	req := body.UpsertSettingRequest
	if req.TenantID == nil {
		req.TenantID = body.LegacyTenantID
	}

	setting, created, err := h.service.Upsert(c.Request.Context(), middleware.GetPrincipal(c), req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	if created {
		response.Created(c, setting)
		return
	}
	response.Success(c, setting)
}

func (h *SettingHandler) Update(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Fail(c, err)
		return
	}

	var req services.UpdateSettingRequest
	if err := bindJSON(c, &req); err != nil {
		response.Fail(c, err)
		return
	}

	setting, err := h.service.Update(c.Request.Context(), middleware.GetPrincipal(c), id, req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, setting)
}

func (h *SettingHandler) Delete(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Fail(c, err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), middleware.GetPrincipal(c), id); err != nil {
		response.Fail(c, err)
		return
	}
	response.NoContent(c)
}
