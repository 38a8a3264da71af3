package handlers

import (
	"saasadmin/internal/middleware"
	"saasadmin/internal/services"
	"saasadmin/pkg/response"

	"github.com/gin-gonic/gin"
)

// PermissionHandler 权限目录
type PermissionHandler struct {
	service *services.PermissionService
}

func NewPermissionHandler(service *services.PermissionService) *PermissionHandler {
	return &PermissionHandler{service: service}
}

func (h *PermissionHandler) List(c *gin.Context) {
	permissions, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, permissions)
}

func (h *PermissionHandler) GetByID(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Fail(c, err)
		return
	}

	permission, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, permission)
}

func (h *PermissionHandler) Create(c *gin.Context) {
	var req services.CreatePermissionRequest
	if err := bindJSON(c, &req); err != nil {
		response.Fail(c, err)
		return
	}

	permission, err := h.service.Create(c.Request.Context(), middleware.GetPrincipal(c), req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Created(c, permission)
}

func (h *PermissionHandler) Update(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Fail(c, err)
		return
	}

	var req services.UpdatePermissionRequest
	if err := bindJSON(c, &req); err != nil {
		response.Fail(c, err)
		return
	}

	permission, err := h.service.Update(c.Request.Context(), middleware.GetPrincipal(c), id, req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, permission)
}

func (h *PermissionHandler) Delete(c *gin.Context) {
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
