package handlers

import (
	"github.com/gin-gonic/gin"

	"posledger/internal/domain/item"
	"posledger/internal/infrastructure/http/v1/dto"
)

// ItemHandler handles item ledger endpoints.
type ItemHandler struct {
	*BaseHandler
	service *item.Service
}

// NewItemHandler creates a new item handler.
func NewItemHandler(base *BaseHandler, service *item.Service) *ItemHandler {
	return &ItemHandler{BaseHandler: base, service: service}
}

// Create handles POST /items.
func (h *ItemHandler) Create(c *gin.Context) {
	var req dto.CreateItemRequest
	if !h.BindJSON(c, &req) {
		return
	}

	it := req.ToEntity()
	if err := h.service.Create(c.Request.Context(), it); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, it)
}

// Get handles GET /items/:id.
func (h *ItemHandler) Get(c *gin.Context) {
	itemID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	it, err := h.service.GetByID(c.Request.Context(), itemID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, it)
}

// SetCostingMode handles PATCH /items/:id/costing-mode.
func (h *ItemHandler) SetCostingMode(c *gin.Context) {
	itemID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.SetCostingModeRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.service.SetCostingMode(c.Request.Context(), itemID, item.CostingMode(req.Mode)); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, "costing mode updated")
}

// SetManualCost handles PATCH /items/:id/cost.
func (h *ItemHandler) SetManualCost(c *gin.Context) {
	itemID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.SetManualCostRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.service.SetManualCost(c.Request.Context(), itemID, req.Cost); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, "cost updated")
}

// RegisterRoutes registers item routes.
func (h *ItemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("/:id", h.Get)
	rg.PATCH("/:id/costing-mode", h.SetCostingMode)
	rg.PATCH("/:id/cost", h.SetManualCost)
}
