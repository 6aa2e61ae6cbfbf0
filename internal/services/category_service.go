package services

import (
	"context"
	"strings"

	"incometracker/internal/core"
)

type CategoryStore interface {
	Categories(ctx context.Context, userID int64, typ core.TxType) ([]core.Category, error)
	Category(ctx context.Context, userID, id int64) (core.Category, error)
	CreateCategory(ctx context.Context, c core.Category) (core.Category, error)
	UpdateCategory(ctx context.Context, c core.Category) (core.Category, error)
	DeleteCategory(ctx context.Context, userID, id int64) error
	CategoryStats(ctx context.Context, userID int64, typ core.TxType) ([]core.CategoryStat, error)
	Transactions(ctx context.Context, userID int64, f core.TransactionFilter) (core.Page[core.Transaction], error)
}

type CategoryService struct {
	store CategoryStore
}

func NewCategoryService(store CategoryStore) *CategoryService {
	return &CategoryService{store: store}
}

func (s *CategoryService) List(ctx context.Context, userID int64, typ core.TxType) ([]core.Category, error) {
	return s.store.Categories(ctx, userID, typ)
}

func (s *CategoryService) Get(ctx context.Context, userID, id int64) (core.Category, error) {
	return s.store.Category(ctx, userID, id)
}

func (s *CategoryService) Create(ctx context.Context, userID int64, c core.Category) (core.Category, error) {
	c.UserID = userID
	c.Name = strings.TrimSpace(c.Name)
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	if c.Color == "" {
		c.Color = core.DefaultColor
	}
	return s.store.CreateCategory(ctx, c)
}

// CategoryPatch holds the mutable fields; nil means unchanged.
type CategoryPatch struct {
	Name  *string
	Color *string
}

func (s *CategoryService) Update(ctx context.Context, userID, id int64, p CategoryPatch) (core.Category, error) {
	c, err := s.store.Category(ctx, userID, id)
	if err != nil {
		return core.Category{}, err
	}
	if p.Name != nil {
		c.Name = strings.TrimSpace(*p.Name)
	}
	if p.Color != nil {
		c.Color = *p.Color
	}
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	return s.store.UpdateCategory(ctx, c)
}

func (s *CategoryService) Delete(ctx context.Context, userID, id int64) error {
	return s.store.DeleteCategory(ctx, userID, id)
}

func (s *CategoryService) Stats(ctx context.Context, userID int64, typ core.TxType) ([]core.CategoryStat, error) {
	return s.store.CategoryStats(ctx, userID, typ)
}

// Transactions pages through the transactions filed under one category.
func (s *CategoryService) Transactions(ctx context.Context, userID, id int64, f core.TransactionFilter) (core.Category, core.Page[core.Transaction], error) {
	c, err := s.store.Category(ctx, userID, id)
	if err != nil {
		return core.Category{}, core.Page[core.Transaction]{}, err
	}
	f.CategoryID = c.ID
	page, err := s.store.Transactions(ctx, userID, f)
	if err != nil {
		return core.Category{}, core.Page[core.Transaction]{}, err
	}
	return c, page, nil
}
