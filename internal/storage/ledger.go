package storage

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"incometracker/internal/analytics"
	"incometracker/internal/core"
	"incometracker/internal/period"
)

var _ analytics.Ledger = (*Store)(nil)

func ledgerWhere(prefix string, userID int64, t core.TxType, iv period.Interval) sq.And {
	return sq.And{
		sq.Eq{prefix + "user_id": userID, prefix + "type": string(t)},
		sq.GtOrEq{prefix + "date": iv.Start.String()},
		sq.LtOrEq{prefix + "date": iv.End.String()},
	}
}

func (s *Store) SumAndCount(ctx context.Context, userID int64, t core.TxType, iv period.Interval) (analytics.Aggregate, error) {
	var agg analytics.Aggregate
	err := s.sb.Select("COALESCE(SUM(amount_cents), 0)", "COUNT(*)").
		From("transactions").
		Where(ledgerWhere("", userID, t, iv)).
		RunWith(s.db).QueryRowContext(ctx).
		Scan(&agg.Total.Cents, &agg.Count)
	if err != nil {
		return analytics.Aggregate{}, fmt.Errorf("sum %s: %w", t, err)
	}
	return agg, nil
}

func (s *Store) DailyTotals(ctx context.Context, userID int64, t core.TxType, iv period.Interval) ([]analytics.DailyTotal, error) {
	rows, err := s.sb.Select("date", "SUM(amount_cents)").
		From("transactions").
		Where(ledgerWhere("", userID, t, iv)).
		GroupBy("date").
		OrderBy("date").
		RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("daily %s totals: %w", t, err)
	}
	defer rows.Close()

	var out []analytics.DailyTotal
	for rows.Next() {
		var (
			day string
			dt  analytics.DailyTotal
		)
		if err := rows.Scan(&day, &dt.Total.Cents); err != nil {
			return nil, fmt.Errorf("scan daily total: %w", err)
		}
		if dt.Date, err = core.ParseDate(day); err != nil {
			return nil, fmt.Errorf("parse date %q: %w", day, err)
		}
		out = append(out, dt)
	}
	return out, rows.Err()
}

func (s *Store) CategoryTotals(ctx context.Context, userID int64, t core.TxType, iv period.Interval) ([]analytics.CategoryTotal, error) {
	rows, err := s.sb.Select("c.id", "c.name", "c.color", "COUNT(t.id)", "SUM(t.amount_cents)").
		From("transactions t").
		Join("categories c ON c.id = t.category_id").
		Where(ledgerWhere("t.", userID, t, iv)).
		GroupBy("c.id", "c.name", "c.color").
		OrderBy("c.id").
		RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s category totals: %w", t, err)
	}
	defer rows.Close()

	var out []analytics.CategoryTotal
	for rows.Next() {
		var ct analytics.CategoryTotal
		if err := rows.Scan(&ct.CategoryID, &ct.Name, &ct.Color, &ct.Count, &ct.Total.Cents); err != nil {
			return nil, fmt.Errorf("scan category total: %w", err)
		}
		out = append(out, ct)
	}
	return out, rows.Err()
}
