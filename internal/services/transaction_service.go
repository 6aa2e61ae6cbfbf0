package services

import (
	"context"
	"errors"
	"strings"

	"incometracker/internal/amqp"
	"incometracker/internal/core"
	"incometracker/internal/period"
)

type TransactionStore interface {
	Transactions(ctx context.Context, userID int64, f core.TransactionFilter) (core.Page[core.Transaction], error)
	Transaction(ctx context.Context, userID, id int64) (core.Transaction, error)
	TransactionsBetween(ctx context.Context, userID int64, iv period.Interval) ([]core.Transaction, error)
	CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
	UpdateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
	DeleteTransaction(ctx context.Context, userID, id int64) error
	DeleteTransactions(ctx context.Context, userID int64, ids []int64) (int64, error)
	Category(ctx context.Context, userID, id int64) (core.Category, error)
	CategoryByName(ctx context.Context, userID int64, typ core.TxType, name string) (core.Category, error)
}

// TransactionService writes ledger entries and announces each change.
type TransactionService struct {
	store     TransactionStore
	publisher EventPublisher
}

// NewTransactionService accepts a nil publisher when messaging is disabled.
func NewTransactionService(store TransactionStore, publisher EventPublisher) *TransactionService {
	return &TransactionService{store: store, publisher: publisher}
}

func (s *TransactionService) List(ctx context.Context, userID int64, f core.TransactionFilter) (core.Page[core.Transaction], error) {
	return s.store.Transactions(ctx, userID, f)
}

func (s *TransactionService) Get(ctx context.Context, userID, id int64) (core.Transaction, error) {
	return s.store.Transaction(ctx, userID, id)
}

// Between returns every transaction dated within iv, newest first.
func (s *TransactionService) Between(ctx context.Context, userID int64, iv period.Interval) ([]core.Transaction, error) {
	return s.store.TransactionsBetween(ctx, userID, iv)
}

func (s *TransactionService) Create(ctx context.Context, userID int64, t core.Transaction) (core.Transaction, error) {
	t.UserID = userID
	t.Description = strings.TrimSpace(t.Description)
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if err := s.checkCategory(ctx, t); err != nil {
		return core.Transaction{}, err
	}

	created, err := s.store.CreateTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, err
	}
	publish(ctx, s.publisher, amqp.TransactionCreated, userID, created.ID)
	return created, nil
}

// CreateIncome records an income entry. Without a category it is filed under
// the user's "Other Income" category.
func (s *TransactionService) CreateIncome(ctx context.Context, userID int64, t core.Transaction) (core.Transaction, error) {
	t.Type = core.Income
	if t.CategoryID == 0 {
		c, err := s.store.CategoryByName(ctx, userID, core.Income, core.OtherIncomeCategory)
		if errors.Is(err, core.ErrNotFound) {
			return core.Transaction{}, core.Invalid("transactions.category_required")
		}
		if err != nil {
			return core.Transaction{}, err
		}
		t.CategoryID = c.ID
	}
	return s.Create(ctx, userID, t)
}

// TransactionPatch holds the fields to change; nil means unchanged. Type is
// accepted only when it equals the stored type.
type TransactionPatch struct {
	Amount      *core.Money
	Type        *core.TxType
	CategoryID  *int64
	Description *string
	Date        *core.Date
}

// Update applies p and re-checks the category. The type is fixed at creation;
// a patch may only repeat it.
func (s *TransactionService) Update(ctx context.Context, userID, id int64, p TransactionPatch) (core.Transaction, error) {
	t, err := s.store.Transaction(ctx, userID, id)
	if err != nil {
		return core.Transaction{}, err
	}
	if p.Amount != nil {
		t.Amount = *p.Amount
	}
	if p.Type != nil && *p.Type != t.Type {
		return core.Transaction{}, core.Invalid("transactions.type_immutable")
	}
	if p.CategoryID != nil {
		t.CategoryID = *p.CategoryID
	}
	if p.Description != nil {
		t.Description = strings.TrimSpace(*p.Description)
	}
	if p.Date != nil {
		t.Date = *p.Date
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if err := s.checkCategory(ctx, t); err != nil {
		return core.Transaction{}, err
	}

	updated, err := s.store.UpdateTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, err
	}
	publish(ctx, s.publisher, amqp.TransactionUpdated, userID, id)
	return updated, nil
}

func (s *TransactionService) Delete(ctx context.Context, userID, id int64) error {
	if err := s.store.DeleteTransaction(ctx, userID, id); err != nil {
		return err
	}
	publish(ctx, s.publisher, amqp.TransactionDeleted, userID, id)
	return nil
}

// BulkDelete removes every id or none of them.
func (s *TransactionService) BulkDelete(ctx context.Context, userID int64, ids []int64) (int64, error) {
	n, err := s.store.DeleteTransactions(ctx, userID, ids)
	if err != nil {
		return 0, err
	}
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		publish(ctx, s.publisher, amqp.TransactionDeleted, userID, id)
	}
	return n, nil
}

// checkCategory requires the category to belong to the user and to have the
// transaction's type.
func (s *TransactionService) checkCategory(ctx context.Context, t core.Transaction) error {
	c, err := s.store.Category(ctx, t.UserID, t.CategoryID)
	if errors.Is(err, core.ErrNotFound) {
		return core.Invalid("transactions.category_not_found")
	}
	if err != nil {
		return err
	}
	if c.Type != t.Type {
		return core.Invalid("transactions.category_type_mismatch")
	}
	return nil
}
