package handlers

import (
	"github.com/gin-gonic/gin"

	"posledger/internal/core/apperror"
	"posledger/internal/core/id"
	"posledger/internal/domain/returns"
	"posledger/internal/domain/wallet"
	"posledger/internal/infrastructure/http/v1/dto"
	"posledger/internal/infrastructure/metrics"
)

// ReturnHandler handles return/refund endpoints.
type ReturnHandler struct {
	*BaseHandler
	service *returns.Service
}

// NewReturnHandler creates a new return handler.
func NewReturnHandler(base *BaseHandler, service *returns.Service) *ReturnHandler {
	return &ReturnHandler{BaseHandler: base, service: service}
}

// Create handles POST /returns.
func (h *ReturnHandler) Create(c *gin.Context) {
	var req dto.CreateReturnRequest
	if !h.BindJSON(c, &req) {
		return
	}

	saleID, err := id.Parse(req.OriginalSaleID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid original sale id"))
		return
	}

	record, err := h.service.ProcessReturn(
		c.Request.Context(),
		saleID,
		req.LineInputs(),
		wallet.Method(req.RefundMethod),
		h.Actor(c),
	)
	if err != nil {
		h.Error(c, err)
		return
	}

	metrics.ReturnsProcessed.Inc()
	h.Created(c, record)
}

// Get handles GET /returns/:id.
func (h *ReturnHandler) Get(c *gin.Context) {
	returnID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	record, err := h.service.GetReturn(c.Request.Context(), returnID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, record)
}

// Delete handles DELETE /returns/:id.
func (h *ReturnHandler) Delete(c *gin.Context) {
	returnID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteReturn(c.Request.Context(), returnID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// RegisterRoutes registers return routes.
func (h *ReturnHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("/:id", h.Get)
	rg.DELETE("/:id", h.Delete)
}
