package handlers

import (
	"saasadmin/internal/middleware"
	"saasadmin/internal/services"
	"saasadmin/pkg/response"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	service *services.UserService
}

func NewUserHandler(service *services.UserService) *UserHandler {
	return &UserHandler{
		service: service,
	}
}

// List 用户列表，支持 tenant_id / role / status 过滤
func (h *UserHandler) List(c *gin.Context) {
	tenantID, err := parseOptionalUint(c, "tenant_id")
	if err != nil {
		response.Fail(c, err)
		return
	}

	users, err := h.service.List(c.Request.Context(), services.UserFilter{
		TenantID: tenantID,
		Role:     c.Query("role"),
		Status:   c.Query("status"),
	})
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, users)
}

// GetByID 获取用户
func (h *UserHandler) GetByID(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Fail(c, err)
		return
	}

	user, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, user)
}

// Create 创建用户
func (h *UserHandler) Create(c *gin.Context) {
	var req services.CreateUserRequest
	if err := bindJSON(c, &req); err != nil {
		response.Fail(c, err)
		return
	}

	user, err := h.service.Create(c.Request.Context(), middleware.GetPrincipal(c), req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Created(c, user)
}

// Update 修改用户（本人或管理员）
func (h *UserHandler) Update(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Fail(c, err)
		return
	}

	var req services.UpdateUserRequest
	if err := bindJSON(c, &req); err != nil {
		response.Fail(c, err)
		return
	}

	user, err := h.service.Update(c.Request.Context(), middleware.GetPrincipal(c), id, req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, user)
}

// Delete 删除用户
func (h *UserHandler) Delete(c *gin.Context) {
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
