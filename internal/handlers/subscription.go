package handlers

import (
	"saasadmin/internal/middleware"
	"saasadmin/internal/services"
	"saasadmin/pkg/response"

	"github.com/gin-gonic/gin"
)

type SubscriptionHandler struct {
	service *services.SubscriptionService
}

func NewSubscriptionHandler(service *services.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{service: service}
}

// List 订阅列表，支持 tenant_id / status 过滤
func (h *SubscriptionHandler) List(c *gin.Context) {
	tenantID, err := parseOptionalUint(c, "tenant_id")
	if err != nil {
		response.Fail(c, err)
		return
	}

	subscriptions, err := h.service.List(c.Request.Context(), services.SubscriptionFilter{
		TenantID: tenantID,
		Status:   c.Query("status"),
	})
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, subscriptions)
}

func (h *SubscriptionHandler) GetByID(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Fail(c, err)
		return
	}

	subscription, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, subscription)
}

func (h *SubscriptionHandler) Create(c *gin.Context) {
	var req services.CreateSubscriptionRequest
	if err := bindJSON(c, &req); err != nil {
		response.Fail(c, err)
		return
	}

	subscription, err := h.service.Create(c.Request.Context(), middleware.GetPrincipal(c), req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Created(c, subscription)
}

func (h *SubscriptionHandler) Update(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Fail(c, err)
		return
	}

	var req services.UpdateSubscriptionRequest
	if err := bindJSON(c, &req); err != nil {
		response.Fail(c, err)
		return
	}

	subscription, err := h.service.Update(c.Request.Context(), middleware.GetPrincipal(c), id, req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, subscription)
}

func (h *SubscriptionHandler) Delete(c *gin.Context) {
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
