package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"posledger/internal/core/apperror"
	"posledger/internal/core/id"
	"posledger/internal/domain/reconciliation"
	"posledger/internal/infrastructure/http/v1/dto"
	"posledger/internal/infrastructure/metrics"
)

const dateLayout = "2006-01-02"

// ReconciliationHandler handles daily balance report endpoints.
type ReconciliationHandler struct {
	*BaseHandler
	service *reconciliation.Service
}

// NewReconciliationHandler creates a new reconciliation handler.
func NewReconciliationHandler(base *BaseHandler, service *reconciliation.Service) *ReconciliationHandler {
	return &ReconciliationHandler{BaseHandler: base, service: service}
}

// GenerateReport handles POST /reconciliation/report.
func (h *ReconciliationHandler) GenerateReport(c *gin.Context) {
	var req dto.GenerateReportRequest
	if !h.BindJSON(c, &req) {
		return
	}

	date, ok := h.parseDate(c, req.Date)
	if !ok {
		return
	}

	rows, err := h.service.GenerateReport(c.Request.Context(), date, req.Shift)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.ListResponse[*reconciliation.DailyBalance]{Items: rows, Count: len(rows)})
}

// GetReport handles GET /reconciliation/report?date=&shift=.
func (h *ReconciliationHandler) GetReport(c *gin.Context) {
	date, ok := h.parseDate(c, c.Query("date"))
	if !ok {
		return
	}
	shift := c.Query("shift")
	if shift == "" {
		h.Error(c, apperror.NewValidation("shift is required").WithDetail("field", "shift"))
		return
	}

	rows, err := h.service.ListReport(c.Request.Context(), date, shift)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.ListResponse[*reconciliation.DailyBalance]{Items: rows, Count: len(rows)})
}

// SaveBalance handles POST /reconciliation/balances.
func (h *ReconciliationHandler) SaveBalance(c *gin.Context) {
	var req dto.SaveBalanceRequest
	if !h.BindJSON(c, &req) {
		return
	}

	itemID, err := id.Parse(req.ItemID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid item id"))
		return
	}
	date, ok := h.parseDate(c, req.Date)
	if !ok {
		return
	}

	b, err := h.service.SaveActualBalance(c.Request.Context(), itemID, date, req.Shift, req.Actual, h.Actor(c))
	if err != nil {
		h.Error(c, err)
		return
	}

	metrics.BalancesSaved.Inc()
	h.OK(c, b)
}

// ListEntries handles GET /reconciliation/entries?date=&shift=.
func (h *ReconciliationHandler) ListEntries(c *gin.Context) {
	date, ok := h.parseDate(c, c.Query("date"))
	if !ok {
		return
	}
	shift := c.Query("shift")
	if shift == "" {
		h.Error(c, apperror.NewValidation("shift is required").WithDetail("field", "shift"))
		return
	}

	entries, err := h.service.ListEntries(c.Request.Context(), date, shift)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.ListResponse[*reconciliation.ReportEntry]{Items: entries, Count: len(entries)})
}

// DeleteEntry handles DELETE /reconciliation/entries/:id.
func (h *ReconciliationHandler) DeleteEntry(c *gin.Context) {
	entryID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteReportEntry(c.Request.Context(), entryID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

func (h *ReconciliationHandler) parseDate(c *gin.Context, raw string) (time.Time, bool) {
	date, err := time.Parse(dateLayout, raw)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid date, expected YYYY-MM-DD").WithDetail("date", raw))
		return time.Time{}, false
	}
	return date, true
}

// RegisterRoutes registers reconciliation routes.
func (h *ReconciliationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/report", h.GenerateReport)
	rg.GET("/report", h.GetReport)
	rg.POST("/balances", h.SaveBalance)
	rg.GET("/entries", h.ListEntries)
	rg.DELETE("/entries/:id", h.DeleteEntry)
}
