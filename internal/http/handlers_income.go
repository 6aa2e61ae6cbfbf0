package http

import (
	"net/http"
	"strings"

	"incometracker/internal/core"
)

// incomeRequest is the body of the legacy POST /api/income. The date
// defaults to today and the category to "Other Income".
type incomeRequest struct {
	Amount      amountInput `json:"amount"`
	CategoryID  int64       `json:"category_id"`
	Description string      `json:"description"`
	Date        string      `json:"date"`
}

func (s *Server) handleCreateIncome(w http.ResponseWriter, r *http.Request) {
	var req incomeRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err, "")
		return
	}

	var keys []string
	amount, err := req.Amount.money()
	if err != nil {
		keys = append(keys, core.Keys(err)...)
	}
	date := core.DateOf(s.now())
	if strings.TrimSpace(req.Date) != "" {
		if date, err = parseDateField(req.Date); err != nil {
			keys = append(keys, core.Keys(err)...)
		}
	}
	if len(keys) > 0 {
		s.writeError(w, r, core.Invalid(keys...), "")
		return
	}

	created, err := s.txs.CreateIncome(r.Context(), userIDFrom(r.Context()), core.Transaction{
		Amount:      amount,
		CategoryID:  req.CategoryID,
		Description: req.Description,
		Date:        date,
	})
	if err != nil {
		s.writeError(w, r, err, "common.error")
		return
	}
	s.writeTransaction(w, r, http.StatusCreated, "transactions.created", created)
}
