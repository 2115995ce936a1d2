package memory

import (
	"time"

	"posledger/internal/core/types"
	"posledger/internal/domain/item"
	"posledger/internal/domain/movement"
	"posledger/internal/domain/reconciliation"
	"posledger/internal/domain/returns"
	"posledger/internal/domain/sales"
	"posledger/internal/domain/wallet"
)

// Entities are copied on every read and write so callers never share
// memory with the stored state, matching database semantics.

func cloneItem(v *item.Item) *item.Item {
	c := *v
	if v.ClosedAt != nil {
		t := *v.ClosedAt
		c.ClosedAt = &t
	}
	return &c
}

func cloneStockIn(v *movement.StockIn) *movement.StockIn {
	c := *v
	c.Lines = append([]movement.StockInLine(nil), v.Lines...)
	return &c
}

func cloneStockOut(v *movement.StockOut) *movement.StockOut {
	c := *v
	return &c
}

func cloneReturn(v *returns.ReturnRecord) *returns.ReturnRecord {
	c := *v
	c.Lines = append([]returns.ReturnLine(nil), v.Lines...)
	return &c
}

func cloneExpense(v *returns.ExpenseRecord) *returns.ExpenseRecord {
	c := *v
	return &c
}

func cloneAccount(v *wallet.Account) *wallet.Account {
	c := *v
	return &c
}

func cloneSale(v *sales.Sale) *sales.Sale {
	c := *v
	c.Lines = append([]sales.SaleLine(nil), v.Lines...)
	return &c
}

func cloneBalance(v *reconciliation.DailyBalance) *reconciliation.DailyBalance {
	c := *v
	c.ActualBalance = cloneQty(v.ActualBalance)
	c.Shortage = cloneQty(v.Shortage)
	return &c
}

func cloneEntry(v *reconciliation.ReportEntry) *reconciliation.ReportEntry {
	c := *v
	return &c
}

func cloneQty(v *types.Quantity) *types.Quantity {
	if v == nil {
		return nil
	}
	q := *v
	return &q
}

// balanceKey builds the composite key for a daily balance row.
func balanceKey(date time.Time, shift string, itemID string) string {
	return reconciliation.NormalizeDate(date).Format("2006-01-02") + "|" + shift + "|" + itemID
}
