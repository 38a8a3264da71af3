package handlers

import (
	"saasadmin/internal/middleware"
	"saasadmin/internal/services"
	"saasadmin/pkg/response"

	"github.com/gin-gonic/gin"
)

type PlanHandler struct {
	service *services.PlanService
}

func NewPlanHandler(service *services.PlanService) *PlanHandler {
	return &PlanHandler{service: service}
}

func (h *PlanHandler) List(c *gin.Context) {
	plans, err := h.service.List(c.Request.Context(), c.Query("status"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, plans)
}

func (h *PlanHandler) GetByID(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Fail(c, err)
		return
	}

	plan, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, plan)
}

func (h *PlanHandler) Create(c *gin.Context) {
	var req services.CreatePlanRequest
	if err := bindJSON(c, &req); err != nil {
		response.Fail(c, err)
		return
	}

	plan, err := h.service.Create(c.Request.Context(), middleware.GetPrincipal(c), req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Created(c, plan)
}

func (h *PlanHandler) Update(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Fail(c, err)
		return
	}

	var req services.UpdatePlanRequest
	if err := bindJSON(c, &req); err != nil {
		response.Fail(c, err)
		return
	}

	plan, err := h.service.Update(c.Request.Context(), middleware.GetPrincipal(c), id, req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, plan)
}

func (h *PlanHandler) Delete(c *gin.Context) {
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
