package handlers

import (
	"saasadmin/internal/middleware"
	"saasadmin/internal/services"
	"saasadmin/pkg/response"

	"github.com/gin-gonic/gin"
)

// RoleHandler 角色权限矩阵
type RoleHandler struct {
	service *services.RoleService
}

func NewRoleHandler(service *services.RoleService) *RoleHandler {
	return &RoleHandler{service: service}
}

func (h *RoleHandler) List(c *gin.Context) {
	roles, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, roles)
}

func (h *RoleHandler) GetByID(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Fail(c, err)
		return
	}

	role, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, role)
}

func (h *RoleHandler) Create(c *gin.Context) {
	var req services.CreateRoleRequest
	if err := bindJSON(c, &req); err != nil {
		response.Fail(c, err)
		return
	}

	role, err := h.service.Create(c.Request.Context(), middleware.GetPrincipal(c), req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Created(c, role)
}

func (h *RoleHandler) Update(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Fail(c, err)
		return
	}

	var req services.UpdateRoleRequest
	if err := bindJSON(c, &req); err != nil {
		response.Fail(c, err)
		return
	}

	role, err := h.service.Update(c.Request.Context(), middleware.GetPrincipal(c), id, req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, role)
}

func (h *RoleHandler) Delete(c *gin.Context) {
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
