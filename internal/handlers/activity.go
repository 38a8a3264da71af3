package handlers

import (
	"saasadmin/internal/services"
	"saasadmin/pkg/pagination"
	"saasadmin/pkg/response"

	"github.com/gin-gonic/gin"
)

type ActivityHandler struct {
	service *services.ActivityService
}

func NewActivityHandler(service *services.ActivityService) *ActivityHandler {
	return &ActivityHandler{service: service}
}

// List 最新的审计记录，?limit=N（默认50，最多200）
func (h *ActivityHandler) List(c *gin.Context) {
	activities, err := h.service.List(c.Request.Context(), pagination.ParseLimit(c))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, activities)
}
