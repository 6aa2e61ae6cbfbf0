// Package memory is an in-process LedgerMirror used when no spreadsheet is
// configured and in tests.
package memory

import (
	"context"
	"sync"

	"incometracker/internal/sheets"
)

type Store struct {
	mu   sync.Mutex
	rows []sheets.Row
}

var _ sheets.LedgerMirror = (*Store)(nil)

func New() *Store {
	return &Store{}
}

func (s *Store) UpsertRow(_ context.Context, r sheets.Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(r.TransactionID); i >= 0 {
		s.rows[i] = r
		return nil
	}
	s.rows = append(s.rows, r)
	return nil
}

func (s *Store) DeleteRow(_ context.Context, transactionID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(transactionID); i >= 0 {
		s.rows = append(s.rows[:i], s.rows[i+1:]...)
	}
	return nil
}

// Rows returns a copy of the mirrored rows in insertion order.
func (s *Store) Rows() []sheets.Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sheets.Row(nil), s.rows...)
}

func (s *Store) indexOf(id int64) int {
	for i, r := range s.rows {
		if r.TransactionID == id {
			return i
		}
	}
	return -1
}
