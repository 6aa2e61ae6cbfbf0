package analytics

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"incometracker/internal/core"
	"incometracker/internal/period"
)

type Granularity string

const (
	ByDay   Granularity = "day"
	ByWeek  Granularity = "week"
	ByMonth Granularity = "month"
)

var hundred = decimal.NewFromInt(100)

// ParseGranularity maps a group_by value; anything unrecognised groups by day.
func ParseGranularity(s string) Granularity {
	switch g := Granularity(strings.ToLower(strings.TrimSpace(s))); g {
	case ByWeek, ByMonth:
		return g
	default:
		return ByDay
	}
}

// BucketOf returns the key date of the bucket containing d: the day itself,
// the Monday of its week, or the first of its month.
func (g Granularity) BucketOf(d core.Date) core.Date {
	switch g {
	case ByWeek:
		offset := (int(d.Weekday()) + 6) % 7
		return d.AddDays(-offset)
	case ByMonth:
		return core.NewDate(d.Year(), int(d.Month()), 1)
	default:
		return d
	}
}

type Overview struct {
	Interval      period.Interval
	Previous      period.Interval
	Income        Aggregate
	Expense       Aggregate
	Net           core.Money
	IncomeChange  decimal.Decimal
	ExpenseChange decimal.Decimal
}

func (o Overview) TotalTransactions() int64 {
	return o.Income.Count + o.Expense.Count
}

type TrendPoint struct {
	Date   core.Date
	Amount core.Money
}

type Trends struct {
	Interval period.Interval
	GroupBy  Granularity
	Income   []TrendPoint
	Expense  []TrendPoint
}

type CategoryShare struct {
	CategoryID int64
	Name       string
	Color      string
	Amount     core.Money
	Percentage decimal.Decimal
	Count      int64
}

type Breakdown struct {
	Interval   period.Interval
	Type       core.TxType
	Total      core.Money
	Categories []CategoryShare
}

type MonthSummary struct {
	Interval period.Interval
	Income   core.Money
	Expense  core.Money
	Net      core.Money
}

// Label is the YYYY-MM key of the month.
func (m MonthSummary) Label() string {
	return fmt.Sprintf("%d-%02d", m.Interval.Start.Year(), int(m.Interval.Start.Month()))
}

// Engine runs report computations against a Ledger. It holds no mutable state;
// each report is a handful of independent ledger reads.
type Engine struct {
	ledger   Ledger
	resolver *period.Resolver
}

func NewEngine(ledger Ledger, resolver *period.Resolver) *Engine {
	if resolver == nil {
		resolver = period.NewResolver()
	}
	return &Engine{ledger: ledger, resolver: resolver}
}

func (e *Engine) SumAndCount(ctx context.Context, userID int64, t core.TxType, iv period.Interval) (Aggregate, error) {
	agg, err := e.ledger.SumAndCount(ctx, userID, t, iv)
	if err != nil {
		return Aggregate{}, fmt.Errorf("sum %s: %w", t, err)
	}
	return agg, nil
}

func (e *Engine) Overview(ctx context.Context, userID int64, iv period.Interval) (Overview, error) {
	out := Overview{Interval: iv, Previous: iv.Previous()}

	var err error
	if out.Income, err = e.SumAndCount(ctx, userID, core.Income, iv); err != nil {
		return Overview{}, err
	}
	if out.Expense, err = e.SumAndCount(ctx, userID, core.Expense, iv); err != nil {
		return Overview{}, err
	}
	prevIncome, err := e.SumAndCount(ctx, userID, core.Income, out.Previous)
	if err != nil {
		return Overview{}, err
	}
	prevExpense, err := e.SumAndCount(ctx, userID, core.Expense, out.Previous)
	if err != nil {
		return Overview{}, err
	}

	out.Net = out.Income.Total.Sub(out.Expense.Total)
	out.IncomeChange = PercentChange(out.Income.Total, prevIncome.Total)
	out.ExpenseChange = PercentChange(out.Expense.Total, prevExpense.Total)
	return out, nil
}

func (e *Engine) Trends(ctx context.Context, userID int64, iv period.Interval, g Granularity) (Trends, error) {
	out := Trends{Interval: iv, GroupBy: g}
	var err error
	if out.Income, err = e.series(ctx, userID, core.Income, iv, g); err != nil {
		return Trends{}, err
	}
	if out.Expense, err = e.series(ctx, userID, core.Expense, iv, g); err != nil {
		return Trends{}, err
	}
	return out, nil
}

// series folds daily totals into buckets. Days without transactions never
// reach here, so empty buckets are simply absent.
func (e *Engine) series(ctx context.Context, userID int64, t core.TxType, iv period.Interval, g Granularity) ([]TrendPoint, error) {
	days, err := e.ledger.DailyTotals(ctx, userID, t, iv)
	if err != nil {
		return nil, fmt.Errorf("daily totals %s: %w", t, err)
	}
	points := make([]TrendPoint, 0, len(days))
	index := make(map[string]int, len(days))
	for _, d := range days {
		key := g.BucketOf(d.Date)
		if i, ok := index[key.String()]; ok {
			points[i].Amount = points[i].Amount.Add(d.Total)
			continue
		}
		index[key.String()] = len(points)
		points = append(points, TrendPoint{Date: key, Amount: d.Total})
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
	return points, nil
}

func (e *Engine) Categories(ctx context.Context, userID int64, t core.TxType, iv period.Interval) (Breakdown, error) {
	rows, err := e.ledger.CategoryTotals(ctx, userID, t, iv)
	if err != nil {
		return Breakdown{}, fmt.Errorf("category totals %s: %w", t, err)
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Total.Cents > rows[j].Total.Cents })

	out := Breakdown{Interval: iv, Type: t, Categories: make([]CategoryShare, 0, len(rows))}
	for _, r := range rows {
		out.Total = out.Total.Add(r.Total)
	}
	for _, r := range rows {
		out.Categories = append(out.Categories, CategoryShare{
			CategoryID: r.CategoryID,
			Name:       r.Name,
			Color:      r.Color,
			Amount:     r.Total,
			Percentage: Share(r.Total, out.Total),
			Count:      r.Count,
		})
	}
	return out, nil
}

// MonthlyComparison reports income, expense and net for each of the last
// months calendar months up to and including today's, oldest first.
func (e *Engine) MonthlyComparison(ctx context.Context, userID int64, months int, today time.Time) ([]MonthSummary, error) {
	intervals, err := e.resolver.TrailingMonths(months, today)
	if err != nil {
		return nil, err
	}
	out := make([]MonthSummary, 0, len(intervals))
	for _, iv := range intervals {
		income, err := e.SumAndCount(ctx, userID, core.Income, iv)
		if err != nil {
			return nil, err
		}
		expense, err := e.SumAndCount(ctx, userID, core.Expense, iv)
		if err != nil {
			return nil, err
		}
		out = append(out, MonthSummary{
			Interval: iv,
			Income:   income.Total,
			Expense:  expense.Total,
			Net:      income.Total.Sub(expense.Total),
		})
	}
	return out, nil
}

// PercentChange is (cur-prev)/prev*100 rounded half away from zero to two
// places. A previous total of zero or less yields 0, so a rise from nothing
// reads as no change.
func PercentChange(cur, prev core.Money) decimal.Decimal {
	if prev.Cents <= 0 {
		return decimal.Zero
	}
	diff := cur.Sub(prev).Decimal()
	return diff.Mul(hundred).Div(prev.Decimal()).Round(2)
}

// Share is part/total*100 rounded to two places, 0 when total is not positive.
func Share(part, total core.Money) decimal.Decimal {
	if total.Cents <= 0 {
		return decimal.Zero
	}
	return part.Decimal().Mul(hundred).Div(total.Decimal()).Round(2)
}
