package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"incometracker/internal/core"
	"incometracker/internal/period"
)

var transactionColumns = []string{
	"t.id", "t.user_id", "t.category_id", "t.type", "t.amount_cents", "t.description",
	"t.date", "t.created_at", "t.updated_at",
	"c.id", "c.user_id", "c.name", "c.type", "c.color", "c.created_at",
}

var sortColumns = map[string]string{
	"date":       "t.date",
	"amount":     "t.amount_cents",
	"created_at": "t.created_at",
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		tx                          core.Transaction
		cat                         core.Category
		txType, catType             string
		date, created, updated, cAt string
	)
	if err := row.Scan(&tx.ID, &tx.UserID, &tx.CategoryID, &txType, &tx.Amount.Cents, &tx.Description,
		&date, &created, &updated,
		&cat.ID, &cat.UserID, &cat.Name, &catType, &cat.Color, &cAt); err != nil {
		return core.Transaction{}, err
	}
	tx.Type = core.TxType(txType)
	cat.Type = core.TxType(catType)

	var err error
	if tx.Date, err = core.ParseDate(date); err != nil {
		return core.Transaction{}, fmt.Errorf("parse date %q: %w", date, err)
	}
	if tx.CreatedAt, err = parseTimestamp(created); err != nil {
		return core.Transaction{}, err
	}
	if tx.UpdatedAt, err = parseTimestamp(updated); err != nil {
		return core.Transaction{}, err
	}
	if cat.CreatedAt, err = parseTimestamp(cAt); err != nil {
		return core.Transaction{}, err
	}
	tx.Category = &cat
	return tx, nil
}

func (s *Store) selectTransactions() sq.SelectBuilder {
	return s.sb.Select(transactionColumns...).
		From("transactions t").
		Join("categories c ON c.id = t.category_id")
}

func (s *Store) filterWhere(userID int64, f core.TransactionFilter) sq.And {
	where := sq.And{sq.Eq{"t.user_id": userID}}
	if f.Type != "" {
		where = append(where, sq.Eq{"t.type": string(f.Type)})
	}
	if f.CategoryID != 0 {
		where = append(where, sq.Eq{"t.category_id": f.CategoryID})
	}
	if !f.From.IsZero() {
		where = append(where, sq.GtOrEq{"t.date": f.From.String()})
	}
	if !f.To.IsZero() {
		where = append(where, sq.LtOrEq{"t.date": f.To.String()})
	}
	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		if s.dialect == Postgres {
			where = append(where, sq.ILike{"t.description": pattern})
		} else {
			where = append(where, sq.Like{"t.description": pattern})
		}
	}
	return where
}

// Transactions returns one page of the user's transactions matching f.
func (s *Store) Transactions(ctx context.Context, userID int64, f core.TransactionFilter) (core.Page[core.Transaction], error) {
	f = f.Normalize(core.DefaultPerPage, core.MaxPerPage)
	where := s.filterWhere(userID, f)
	page := core.Page[core.Transaction]{Page: f.Page, PerPage: f.PerPage}

	err := s.sb.Select("COUNT(*)").
		From("transactions t").
		Where(where).
		RunWith(s.db).QueryRowContext(ctx).Scan(&page.Total)
	if err != nil {
		return page, fmt.Errorf("count transactions: %w", err)
	}

	dir := " DESC"
	if f.Ascending {
		dir = " ASC"
	}
	rows, err := s.selectTransactions().
		Where(where).
		OrderBy(sortColumns[f.SortBy]+dir, "t.id"+dir).
		Limit(uint64(f.PerPage)).
		Offset(uint64(f.Offset())).
		RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return page, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	page.Items = []core.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return page, fmt.Errorf("scan transaction: %w", err)
		}
		page.Items = append(page.Items, t)
	}
	return page, rows.Err()
}

// TransactionsBetween returns every transaction of the user inside iv, newest
// first. Used by export.
func (s *Store) TransactionsBetween(ctx context.Context, userID int64, iv period.Interval) ([]core.Transaction, error) {
	rows, err := s.selectTransactions().
		Where(sq.Eq{"t.user_id": userID}).
		Where(sq.GtOrEq{"t.date": iv.Start.String()}).
		Where(sq.LtOrEq{"t.date": iv.End.String()}).
		OrderBy("t.date DESC", "t.id DESC").
		RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions between: %w", err)
	}
	defer rows.Close()

	out := []core.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) Transaction(ctx context.Context, userID, id int64) (core.Transaction, error) {
	query := s.selectTransactions().Where(sq.Eq{"t.user_id": userID, "t.id": id})
	t, err := scanTransaction(query.RunWith(s.db).QueryRowContext(ctx))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, core.NotFound("transactions.not_found")
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction %d: %w", id, err)
	}
	return t, nil
}

func (s *Store) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	now := s.timestamp()
	var id int64
	err := s.sb.Insert("transactions").
		Columns("user_id", "category_id", "type", "amount_cents", "description", "date", "created_at", "updated_at").
		Values(t.UserID, t.CategoryID, string(t.Type), t.Amount.Cents, t.Description, t.Date.String(), now, now).
		Suffix("RETURNING id").
		RunWith(s.db).QueryRowContext(ctx).Scan(&id)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}
	return s.Transaction(ctx, t.UserID, id)
}

func (s *Store) UpdateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	res, err := s.sb.Update("transactions").
		Set("category_id", t.CategoryID).
		Set("type", string(t.Type)).
		Set("amount_cents", t.Amount.Cents).
		Set("description", t.Description).
		Set("date", t.Date.String()).
		Set("updated_at", s.timestamp()).
		Where(sq.Eq{"id": t.ID, "user_id": t.UserID}).
		RunWith(s.db).ExecContext(ctx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.Transaction{}, core.NotFound("transactions.not_found")
	}
	return s.Transaction(ctx, t.UserID, t.ID)
}

func (s *Store) DeleteTransaction(ctx context.Context, userID, id int64) error {
	res, err := s.sb.Delete("transactions").
		Where(sq.Eq{"id": id, "user_id": userID}).
		RunWith(s.db).ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.NotFound("transactions.not_found")
	}
	return nil
}

// DeleteTransactions removes all ids in one transaction. If any id is unknown
// or owned by another user nothing is deleted.
func (s *Store) DeleteTransactions(ctx context.Context, userID int64, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, core.Invalid("transactions.ids_required")
	}
	unique := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		unique[id] = struct{}{}
	}

	var deleted int64
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var owned int64
		err := s.sb.Select("COUNT(*)").
			From("transactions").
			Where(sq.Eq{"user_id": userID, "id": ids}).
			RunWith(tx).QueryRowContext(ctx).Scan(&owned)
		if err != nil {
			return fmt.Errorf("count owned transactions: %w", err)
		}
		if owned != int64(len(unique)) {
			return core.Invalid("transactions.ids_invalid")
		}

		res, err := s.sb.Delete("transactions").
			Where(sq.Eq{"user_id": userID, "id": ids}).
			RunWith(tx).ExecContext(ctx)
		if err != nil {
			return fmt.Errorf("bulk delete transactions: %w", err)
		}
		deleted, _ = res.RowsAffected()
		return nil
	})
	return deleted, err
}
