// Package sheets defines the spreadsheet mirror of the ledger. Each
// transaction occupies one row keyed by its id in the first column.
package sheets

import (
	"context"
	"strconv"

	"incometracker/internal/core"
)

// Header is the first row of a mirror sheet.
var Header = []string{"ID", "User", "Date", "Type", "Category", "Amount", "Description", "Updated At"}

type Row struct {
	TransactionID int64
	UserID        int64
	Date          string
	Type          string
	Category      string
	Amount        string
	Description   string
	UpdatedAt     string
}

func RowFromTransaction(t core.Transaction) Row {
	r := Row{
		TransactionID: t.ID,
		UserID:        t.UserID,
		Date:          t.Date.String(),
		Type:          string(t.Type),
		Amount:        t.Amount.String(),
		Description:   t.Description,
		UpdatedAt:     t.UpdatedAt.UTC().Format("2006-01-02 15:04:05"),
	}
	if t.Category != nil {
		r.Category = t.Category.Name
	}
	return r
}

// Values returns the cells in Header order.
func (r Row) Values() []any {
	return []any{
		strconv.FormatInt(r.TransactionID, 10),
		strconv.FormatInt(r.UserID, 10),
		r.Date,
		r.Type,
		r.Category,
		r.Amount,
		r.Description,
		r.UpdatedAt,
	}
}

// LedgerMirror keeps an external copy of the ledger in sync.
type LedgerMirror interface {
	// UpsertRow replaces the row with the same transaction id or appends it.
	UpsertRow(ctx context.Context, r Row) error
	// DeleteRow removes the row for the id; unknown ids are not an error.
	DeleteRow(ctx context.Context, transactionID int64) error
}
