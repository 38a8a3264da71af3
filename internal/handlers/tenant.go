package handlers

import (
	"saasadmin/internal/middleware"
	"saasadmin/internal/services"
	"saasadmin/pkg/response"

	"github.com/gin-gonic/gin"
)

type TenantHandler struct {
	service *services.TenantService
}

func NewTenantHandler(service *services.TenantService) *TenantHandler {
	return &TenantHandler{
		service: service,
	}
}

// List 租户列表，可按状态筛选
func (h *TenantHandler) List(c *gin.Context) {
	tenants, err := h.service.List(c.Request.Context(), c.Query("status"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, tenants)
}

// GetByID 获取租户
func (h *TenantHandler) GetByID(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Fail(c, err)
		return
	}

	tenant, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, tenant)
}

// Create 创建租户
func (h *TenantHandler) Create(c *gin.Context) {
	var req services.CreateTenantRequest
	if err := bindJSON(c, &req); err != nil {
		response.Fail(c, err)
		return
	}

	tenant, err := h.service.Create(c.Request.Context(), middleware.GetPrincipal(c), req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Created(c, tenant)
}

// Update 更新租户
func (h *TenantHandler) Update(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Fail(c, err)
		return
	}

	var req services.UpdateTenantRequest
	if err := bindJSON(c, &req); err != nil {
		response.Fail(c, err)
		return
	}

	tenant, err := h.service.Update(c.Request.Context(), middleware.GetPrincipal(c), id, req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, tenant)
}

// Delete 删除租户（租户下存在用户时拒绝）
func (h *TenantHandler) Delete(c *gin.Context) {
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
