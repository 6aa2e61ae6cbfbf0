// Package analytics computes income and expense reports over date intervals:
// overview with period-over-period change, trend series, category breakdown
// and a trailing monthly comparison.
package analytics

import (
	"context"

	"incometracker/internal/core"
	"incometracker/internal/period"
)

// Aggregate is a sum and count over matching transactions. A query matching
// nothing yields the zero Aggregate, never an error.
type Aggregate struct {
	Total core.Money
	Count int64
}

type DailyTotal struct {
	Date  core.Date
	Total core.Money
}

type CategoryTotal struct {
	CategoryID int64
	Name       string
	Color      string
	Count      int64
	Total      core.Money
}

// Ledger is the read side of transaction storage the engine depends on. Every
// call is scoped to one user and one transaction type over a closed interval.
type Ledger interface {
	SumAndCount(ctx context.Context, userID int64, t core.TxType, iv period.Interval) (Aggregate, error)
	// DailyTotals returns one row per day with at least one transaction, ascending.
	DailyTotals(ctx context.Context, userID int64, t core.TxType, iv period.Interval) ([]DailyTotal, error)
	// CategoryTotals returns one row per category with at least one transaction.
	CategoryTotals(ctx context.Context, userID int64, t core.TxType, iv period.Interval) ([]CategoryTotal, error)
}
