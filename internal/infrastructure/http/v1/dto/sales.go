package dto

import (
	"time"

	"posledger/internal/core/id"
	"posledger/internal/core/types"
	"posledger/internal/domain/sales"
	"posledger/internal/domain/wallet"

	"github.com/shopspring/decimal"
)

// SaleLineRequest is one sold line.
type SaleLineRequest struct {
	ItemID    string         `json:"itemId" binding:"required"`
	Qty       types.Quantity `json:"qty" binding:"required"`
	UnitPrice types.Money    `json:"unitPrice" binding:"required"`
}

// CreateSaleRequest installs a committed POS sale into the read model.
type CreateSaleRequest struct {
	Number        string            `json:"number"`
	Date          time.Time         `json:"date" binding:"required"`
	Shift         string            `json:"shift" binding:"required"`
	PaymentMethod string            `json:"paymentMethod" binding:"required"`
	Lines         []SaleLineRequest `json:"lines" binding:"required"`
}

// ToEntity converts the request to a domain sale, deriving the total
// from its lines.
func (r CreateSaleRequest) ToEntity() *sales.Sale {
	s := &sales.Sale{
		ID:            id.New(),
		Number:        r.Number,
		Date:          r.Date,
		Shift:         r.Shift,
		PaymentMethod: wallet.Method(r.PaymentMethod),
		Total:         decimal.Zero,
		CreatedAt:     time.Now().UTC(),
		Lines:         make([]sales.SaleLine, 0, len(r.Lines)),
	}
	for i, line := range r.Lines {
		itemID, _ := id.Parse(line.ItemID)
		s.Lines = append(s.Lines, sales.SaleLine{
			LineID:    id.New(),
			LineNo:    i + 1,
			ItemID:    itemID,
			Qty:       line.Qty,
			UnitPrice: line.UnitPrice,
		})
		s.Total = s.Total.Add(line.Qty.Decimal().Mul(line.UnitPrice))
	}
	return s
}
