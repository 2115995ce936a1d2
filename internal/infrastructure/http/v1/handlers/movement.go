package handlers

import (
	"github.com/gin-gonic/gin"

	"posledger/internal/domain/movement"
	"posledger/internal/infrastructure/http/v1/dto"
	"posledger/internal/infrastructure/metrics"
)

// MovementHandler handles stock movement endpoints.
type MovementHandler struct {
	*BaseHandler
	service *movement.Service
}

// NewMovementHandler creates a new movement handler.
func NewMovementHandler(base *BaseHandler, service *movement.Service) *MovementHandler {
	return &MovementHandler{BaseHandler: base, service: service}
}

// CreateStockIn handles POST /movements/stock-in.
func (h *MovementHandler) CreateStockIn(c *gin.Context) {
	var req dto.CreateStockInRequest
	if !h.BindJSON(c, &req) {
		return
	}

	m := req.ToEntity(h.Actor(c))
	if err := h.service.RecordStockIn(c.Request.Context(), m); err != nil {
		h.Error(c, err)
		return
	}

	metrics.MovementsRecorded.WithLabelValues("in").Inc()
	h.Created(c, m)
}

// GetStockIn handles GET /movements/stock-in/:id.
func (h *MovementHandler) GetStockIn(c *gin.Context) {
	movementID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	m, err := h.service.GetStockIn(c.Request.Context(), movementID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, m)
}

// DeleteStockIn handles DELETE /movements/stock-in/:id.
func (h *MovementHandler) DeleteStockIn(c *gin.Context) {
	movementID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteStockIn(c.Request.Context(), movementID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// ListStockIns handles GET /movements/stock-in.
func (h *MovementHandler) ListStockIns(c *gin.Context) {
	limit := h.ParseIntQuery(c, "limit", 50)
	offset := h.ParseIntQuery(c, "offset", 0)

	ms, err := h.service.ListStockIns(c.Request.Context(), limit, offset)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.ListResponse[*movement.StockIn]{Items: ms, Count: len(ms), Limit: limit, Offset: offset})
}

// CreateStockOut handles POST /movements/stock-out.
func (h *MovementHandler) CreateStockOut(c *gin.Context) {
	var req dto.CreateStockOutRequest
	if !h.BindJSON(c, &req) {
		return
	}

	m := req.ToEntity(h.Actor(c))
	if err := h.service.RecordStockOut(c.Request.Context(), m); err != nil {
		h.Error(c, err)
		return
	}

	metrics.MovementsRecorded.WithLabelValues("out").Inc()
	h.Created(c, m)
}

// GetStockOut handles GET /movements/stock-out/:id.
func (h *MovementHandler) GetStockOut(c *gin.Context) {
	movementID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	m, err := h.service.GetStockOut(c.Request.Context(), movementID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, m)
}

// ListStockOuts handles GET /movements/stock-out.
func (h *MovementHandler) ListStockOuts(c *gin.Context) {
	limit := h.ParseIntQuery(c, "limit", 50)
	offset := h.ParseIntQuery(c, "offset", 0)

	ms, err := h.service.ListStockOuts(c.Request.Context(), limit, offset)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.ListResponse[*movement.StockOut]{Items: ms, Count: len(ms), Limit: limit, Offset: offset})
}

// RegisterRoutes registers movement routes.
func (h *MovementHandler) RegisterRoutes(rg *gin.RouterGroup) {
	stockIn := rg.Group("/stock-in")
	stockIn.POST("", h.CreateStockIn)
	stockIn.GET("", h.ListStockIns)
	stockIn.GET("/:id", h.GetStockIn)
	stockIn.DELETE("/:id", h.DeleteStockIn)

	stockOut := rg.Group("/stock-out")
	stockOut.POST("", h.CreateStockOut)
	stockOut.GET("", h.ListStockOuts)
	stockOut.GET("/:id", h.GetStockOut)
}
