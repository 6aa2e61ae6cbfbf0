package http

import (
	"net/http"

	"incometracker/internal/core"
	"incometracker/internal/export"
	"incometracker/internal/services"
)

type transactionResponse struct {
	Message     string                   `json:"message,omitempty"`
	Transaction export.TransactionRecord `json:"transaction"`
}

type bulkDeleteResponse struct {
	Message string `json:"message"`
	Deleted int64  `json:"deleted"`
}

type createTransactionRequest struct {
	Amount      amountInput `json:"amount"`
	Type        string      `json:"type"`
	CategoryID  int64       `json:"category_id"`
	Description string      `json:"description"`
	Date        string      `json:"date"`
}

// transaction converts the body, reporting every field that fails to parse.
func (req createTransactionRequest) transaction() (core.Transaction, error) {
	var keys []string
	t := core.Transaction{CategoryID: req.CategoryID, Description: req.Description}

	amount, err := req.Amount.money()
	if err != nil {
		keys = append(keys, core.Keys(err)...)
	}
	t.Amount = amount
	if typ, err := core.ParseTxType(req.Type); err != nil {
		keys = append(keys, "transactions.type_invalid")
	} else {
		t.Type = typ
	}
	date, err := parseDateField(req.Date)
	if err != nil {
		keys = append(keys, core.Keys(err)...)
	}
	t.Date = date

	if len(keys) > 0 {
		return core.Transaction{}, core.Invalid(keys...)
	}
	return t, nil
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	f, err := parseTransactionFilter(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	f = f.Normalize(s.opts.PerPage, s.opts.MaxPerPage)

	page, err := s.txs.List(r.Context(), userIDFrom(r.Context()), f)
	if err != nil {
		s.writeError(w, r, err, "common.error")
		return
	}
	writeJSON(w, http.StatusOK, newTransactionPage(page))
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err, "")
		return
	}
	t, err := req.transaction()
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	created, err := s.txs.Create(r.Context(), userIDFrom(r.Context()), t)
	if err != nil {
		s.writeError(w, r, err, "common.error")
		return
	}
	s.writeTransaction(w, r, http.StatusCreated, "transactions.created", created)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	t, err := s.txs.Get(r.Context(), userIDFrom(r.Context()), id)
	if err != nil {
		s.writeError(w, r, err, "common.error")
		return
	}
	s.writeTransaction(w, r, http.StatusOK, "", t)
}

type updateTransactionRequest struct {
	Amount      amountInput `json:"amount"`
	Type        *string     `json:"type"`
	CategoryID  *int64      `json:"category_id"`
	Description *string     `json:"description"`
	Date        *string     `json:"date"`
}

func (req updateTransactionRequest) patch() (services.TransactionPatch, error) {
	var (
		p    services.TransactionPatch
		keys []string
	)
	if req.Amount.set {
		m, err := req.Amount.money()
		if err != nil {
			keys = append(keys, core.Keys(err)...)
		}
		p.Amount = &m
	}
	if req.Type != nil {
		typ, err := core.ParseTxType(*req.Type)
		if err != nil {
			keys = append(keys, "transactions.type_invalid")
		}
		p.Type = &typ
	}
	if req.Date != nil {
		d, err := parseDateField(*req.Date)
		if err != nil {
			keys = append(keys, core.Keys(err)...)
		}
		p.Date = &d
	}
	p.CategoryID = req.CategoryID
	p.Description = req.Description

	if len(keys) > 0 {
		return services.TransactionPatch{}, core.Invalid(keys...)
	}
	return p, nil
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	var req updateTransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err, "")
		return
	}
	p, err := req.patch()
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	updated, err := s.txs.Update(r.Context(), userIDFrom(r.Context()), id, p)
	if err != nil {
		s.writeError(w, r, err, "common.error")
		return
	}
	s.writeTransaction(w, r, http.StatusOK, "transactions.updated", updated)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	if err := s.txs.Delete(r.Context(), userIDFrom(r.Context()), id); err != nil {
		s.writeError(w, r, err, "common.error")
		return
	}
	s.writeMessage(w, r, http.StatusOK, "transactions.deleted")
}

type bulkDeleteRequest struct {
	IDs []int64 `json:"ids"`
}

func (s *Server) handleBulkDelete(w http.ResponseWriter, r *http.Request) {
	var req bulkDeleteRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, core.Invalid("transactions.ids_required"), "")
		return
	}
	if len(req.IDs) == 0 {
		s.writeError(w, r, core.Invalid("transactions.ids_required"), "")
		return
	}
	n, err := s.txs.BulkDelete(r.Context(), userIDFrom(r.Context()), req.IDs)
	if err != nil {
		s.writeError(w, r, err, "common.error")
		return
	}
	writeJSON(w, http.StatusOK, bulkDeleteResponse{Message: s.message(r, "transactions.bulk_deleted"), Deleted: n})
}

func (s *Server) writeTransaction(w http.ResponseWriter, r *http.Request, status int, key string, t core.Transaction) {
	resp := transactionResponse{Transaction: export.NewTransactionRecord(t)}
	if key != "" {
		resp.Message = s.message(r, key)
	}
	writeJSON(w, status, resp)
}
