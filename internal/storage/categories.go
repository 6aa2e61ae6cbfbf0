package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"incometracker/internal/core"
)

var categoryColumns = []string{"id", "user_id", "name", "type", "color", "created_at"}

func scanCategory(row rowScanner) (core.Category, error) {
	var (
		c       core.Category
		typ     string
		created string
	)
	if err := row.Scan(&c.ID, &c.UserID, &c.Name, &typ, &c.Color, &created); err != nil {
		return core.Category{}, err
	}
	c.Type = core.TxType(typ)
	t, err := parseTimestamp(created)
	if err != nil {
		return core.Category{}, err
	}
	c.CreatedAt = t
	return c, nil
}

// Categories lists the user's categories ordered by type then name. An empty
// typ returns both kinds.
func (s *Store) Categories(ctx context.Context, userID int64, typ core.TxType) ([]core.Category, error) {
	where := sq.Eq{"user_id": userID}
	if typ != "" {
		where["type"] = string(typ)
	}
	rows, err := s.sb.Select(categoryColumns...).
		From("categories").
		Where(where).
		OrderBy("type", "name").
		RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) Category(ctx context.Context, userID, id int64) (core.Category, error) {
	return s.categoryWhere(ctx, sq.Eq{"user_id": userID, "id": id})
}

func (s *Store) CategoryByName(ctx context.Context, userID int64, typ core.TxType, name string) (core.Category, error) {
	return s.categoryWhere(ctx, sq.Eq{"user_id": userID, "type": string(typ), "name": name})
}

func (s *Store) categoryWhere(ctx context.Context, where sq.Eq) (core.Category, error) {
	query := s.sb.Select(categoryColumns...).From("categories").Where(where)
	c, err := scanCategory(query.RunWith(s.db).QueryRowContext(ctx))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, core.NotFound("categories.not_found")
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

func (s *Store) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	if c.Color == "" {
		c.Color = core.DefaultColor
	}
	query := s.sb.Insert("categories").
		Columns("user_id", "name", "type", "color", "created_at").
		Values(c.UserID, c.Name, string(c.Type), c.Color, s.timestamp()).
		Suffix("RETURNING " + joinColumns(categoryColumns))
	created, err := scanCategory(query.RunWith(s.db).QueryRowContext(ctx))
	if err != nil {
		if isUniqueViolation(err) {
			return core.Category{}, core.Conflict("categories.name_exists")
		}
		return core.Category{}, fmt.Errorf("insert category: %w", err)
	}
	return created, nil
}

// UpdateCategory changes name and color. The type of a category is fixed once
// created because existing transactions depend on it.
func (s *Store) UpdateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	if c.Color == "" {
		c.Color = core.DefaultColor
	}
	res, err := s.sb.Update("categories").
		Set("name", c.Name).
		Set("color", c.Color).
		Where(sq.Eq{"id": c.ID, "user_id": c.UserID}).
		RunWith(s.db).ExecContext(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return core.Category{}, core.Conflict("categories.name_exists")
		}
		return core.Category{}, fmt.Errorf("update category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.Category{}, core.NotFound("categories.not_found")
	}
	return s.Category(ctx, c.UserID, c.ID)
}

// DeleteCategory refuses to remove a category that transactions still use.
func (s *Store) DeleteCategory(ctx context.Context, userID, id int64) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		found, err := s.exists(ctx, tx, "categories", sq.Eq{"id": id, "user_id": userID})
		if err != nil {
			return err
		}
		if !found {
			return core.NotFound("categories.not_found")
		}
		inUse, err := s.exists(ctx, tx, "transactions", sq.Eq{"category_id": id})
		if err != nil {
			return err
		}
		if inUse {
			return core.Conflict("categories.has_transactions")
		}
		if _, err := s.sb.Delete("categories").
			Where(sq.Eq{"id": id, "user_id": userID}).
			RunWith(tx).ExecContext(ctx); err != nil {
			return fmt.Errorf("delete category: %w", err)
		}
		return nil
	})
}

// CategoryStats returns every category of the user with its transaction count
// and all-time total, including unused categories.
func (s *Store) CategoryStats(ctx context.Context, userID int64, typ core.TxType) ([]core.CategoryStat, error) {
	where := sq.Eq{"c.user_id": userID}
	if typ != "" {
		where["c.type"] = string(typ)
	}
	rows, err := s.sb.Select(
		"c.id", "c.user_id", "c.name", "c.type", "c.color", "c.created_at",
		"COUNT(t.id)", "COALESCE(SUM(t.amount_cents), 0)",
	).
		From("categories c").
		LeftJoin("transactions t ON t.category_id = c.id").
		Where(where).
		GroupBy("c.id", "c.user_id", "c.name", "c.type", "c.color", "c.created_at").
		OrderBy("c.type", "c.name").
		RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("category stats: %w", err)
	}
	defer rows.Close()

	var out []core.CategoryStat
	for rows.Next() {
		var (
			st      core.CategoryStat
			typ     string
			created string
		)
		if err := rows.Scan(&st.Category.ID, &st.Category.UserID, &st.Category.Name, &typ,
			&st.Category.Color, &created, &st.Count, &st.Total.Cents); err != nil {
			return nil, fmt.Errorf("scan category stat: %w", err)
		}
		st.Category.Type = core.TxType(typ)
		if st.Category.CreatedAt, err = parseTimestamp(created); err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}
