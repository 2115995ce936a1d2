package handlers

import (
	"github.com/gin-gonic/gin"

	"posledger/internal/domain/wallet"
	"posledger/internal/infrastructure/http/v1/dto"
)

// WalletHandler handles wallet account endpoints.
type WalletHandler struct {
	*BaseHandler
	repo wallet.Repository
}

// NewWalletHandler creates a new wallet handler.
func NewWalletHandler(base *BaseHandler, repo wallet.Repository) *WalletHandler {
	return &WalletHandler{BaseHandler: base, repo: repo}
}

// List handles GET /wallets.
func (h *WalletHandler) List(c *gin.Context) {
	accounts, err := h.repo.List(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.ListResponse[*wallet.Account]{Items: accounts, Count: len(accounts)})
}

// RegisterRoutes registers wallet routes.
func (h *WalletHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
}
