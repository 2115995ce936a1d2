package handlers

import (
	"github.com/gin-gonic/gin"

	"posledger/internal/domain/closing"
)

// ClosingHandler handles period close endpoints.
type ClosingHandler struct {
	*BaseHandler
	service *closing.Service
}

// NewClosingHandler creates a new closing handler.
func NewClosingHandler(base *BaseHandler, service *closing.Service) *ClosingHandler {
	return &ClosingHandler{BaseHandler: base, service: service}
}

// Close handles POST /closing.
func (h *ClosingHandler) Close(c *gin.Context) {
	result, err := h.service.ClosePeriod(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, result)
}

// RegisterRoutes registers closing routes.
func (h *ClosingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Close)
}
