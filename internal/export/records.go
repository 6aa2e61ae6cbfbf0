package export

import (
	"time"

	"incometracker/internal/core"
	"incometracker/internal/period"
)

// CategoryRecord is the JSON shape of a category.
type CategoryRecord struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	Color     string `json:"color"`
	CreatedAt string `json:"created_at"`
}

// TransactionRecord is the JSON shape of a transaction, shared by the API
// responses and the JSON export.
type TransactionRecord struct {
	ID          int64           `json:"id"`
	Amount      float64         `json:"amount"`
	Description string          `json:"description"`
	Date        string          `json:"date"`
	Type        string          `json:"type"`
	Category    *CategoryRecord `json:"category"`
	CreatedAt   string          `json:"created_at"`
	UpdatedAt   string          `json:"updated_at"`
}

type PeriodRecord struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type Info struct {
	UserID     int64        `json:"user_id"`
	Username   string       `json:"username"`
	ExportDate string       `json:"export_date"`
	Period     PeriodRecord `json:"period"`
}

// Envelope is the JSON export document.
type Envelope struct {
	ExportInfo   Info                `json:"export_info"`
	Transactions []TransactionRecord `json:"transactions"`
}

func NewCategoryRecord(c core.Category) CategoryRecord {
	return CategoryRecord{
		ID:        c.ID,
		Name:      c.Name,
		Type:      c.Type.String(),
		Color:     c.Color,
		CreatedAt: FormatTimestamp(c.CreatedAt),
	}
}

func NewTransactionRecord(tx core.Transaction) TransactionRecord {
	rec := TransactionRecord{
		ID:          tx.ID,
		Amount:      tx.Amount.Float(),
		Description: tx.Description,
		Date:        tx.Date.String(),
		Type:        tx.Type.String(),
		CreatedAt:   FormatTimestamp(tx.CreatedAt),
		UpdatedAt:   FormatTimestamp(tx.UpdatedAt),
	}
	if tx.Category != nil {
		c := NewCategoryRecord(*tx.Category)
		rec.Category = &c
	}
	return rec
}

func NewTransactionRecords(txs []core.Transaction) []TransactionRecord {
	out := make([]TransactionRecord, 0, len(txs))
	for _, tx := range txs {
		out = append(out, NewTransactionRecord(tx))
	}
	return out
}

func NewPeriodRecord(iv period.Interval) PeriodRecord {
	return PeriodRecord{StartDate: iv.Start.String(), EndDate: iv.End.String()}
}

// NewEnvelope builds the JSON export for user over iv. txs keep their order.
func NewEnvelope(user core.User, iv period.Interval, txs []core.Transaction, exportedAt time.Time) Envelope {
	return Envelope{
		ExportInfo: Info{
			UserID:     user.ID,
			Username:   user.Username,
			ExportDate: FormatTimestamp(exportedAt),
			Period:     NewPeriodRecord(iv),
		},
		Transactions: NewTransactionRecords(txs),
	}
}
