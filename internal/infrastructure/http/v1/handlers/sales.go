package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"posledger/internal/core/apperror"
	"posledger/internal/core/tx"
	"posledger/internal/domain/sales"
	"posledger/internal/infrastructure/http/v1/dto"
)

// SalesHandler installs and reads the POS sales read model. The selling
// flow itself lives outside this service; these endpoints exist for the
// POS integration and for seeding.
type SalesHandler struct {
	*BaseHandler
	repo      sales.Repository
	txManager tx.Manager
}

// NewSalesHandler creates a new sales handler.
func NewSalesHandler(base *BaseHandler, repo sales.Repository, txManager tx.Manager) *SalesHandler {
	return &SalesHandler{BaseHandler: base, repo: repo, txManager: txManager}
}

// Create handles POST /sales.
func (h *SalesHandler) Create(c *gin.Context) {
	var req dto.CreateSaleRequest
	if !h.BindJSON(c, &req) {
		return
	}

	s := req.ToEntity()
	if !s.PaymentMethod.Valid() {
		h.Error(c, apperror.NewValidation("unknown payment method").WithDetail("field", "paymentMethod"))
		return
	}
	if len(s.Lines) == 0 {
		h.Error(c, apperror.NewValidation("at least one line is required").WithDetail("field", "lines"))
		return
	}

	err := h.txManager.RunInTransaction(c.Request.Context(), func(ctx context.Context) error {
		return h.repo.Create(ctx, s)
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, s)
}

// Get handles GET /sales/:id.
func (h *SalesHandler) Get(c *gin.Context) {
	saleID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	s, err := h.repo.GetByID(c.Request.Context(), saleID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, s)
}

// RegisterRoutes registers sales routes.
func (h *SalesHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("/:id", h.Get)
}
