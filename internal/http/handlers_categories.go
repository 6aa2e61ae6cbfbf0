package http

import (
	"net/http"

	"incometracker/internal/core"
	"incometracker/internal/export"
	"incometracker/internal/services"
)

type categoryListResponse struct {
	Categories []export.CategoryRecord `json:"categories"`
}

type categoryResponse struct {
	Message  string                `json:"message,omitempty"`
	Category export.CategoryRecord `json:"category"`
}

type categoryStatRecord struct {
	ID               int64   `json:"id"`
	Name             string  `json:"name"`
	Type             string  `json:"type"`
	Color            string  `json:"color"`
	TransactionCount int64   `json:"transaction_count"`
	TotalAmount      float64 `json:"total_amount"`
}

type categoryStatsResponse struct {
	Categories []categoryStatRecord `json:"categories"`
}

type categoryTransactionsResponse struct {
	Category     export.CategoryRecord      `json:"category"`
	Transactions []export.TransactionRecord `json:"transactions"`
	Pagination   paginationResponse         `json:"pagination"`
}

// typeFilter reads ?type; anything but income or expense lists both.
func typeFilter(r *http.Request) core.TxType {
	t, err := core.ParseTxType(r.URL.Query().Get("type"))
	if err != nil {
		return ""
	}
	return t
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.cats.List(r.Context(), userIDFrom(r.Context()), typeFilter(r))
	if err != nil {
		s.writeError(w, r, err, "common.error")
		return
	}
	out := make([]export.CategoryRecord, 0, len(cats))
	for _, c := range cats {
		out = append(out, export.NewCategoryRecord(c))
	}
	writeJSON(w, http.StatusOK, categoryListResponse{Categories: out})
}

type createCategoryRequest struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Color string `json:"color"`
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err, "")
		return
	}
	typ, err := core.ParseTxType(req.Type)
	if err != nil {
		s.writeError(w, r, core.Invalid("categories.type_invalid"), "")
		return
	}
	c, err := s.cats.Create(r.Context(), userIDFrom(r.Context()), core.Category{
		Name:  req.Name,
		Type:  typ,
		Color: req.Color,
	})
	if err != nil {
		s.writeError(w, r, err, "common.error")
		return
	}
	writeJSON(w, http.StatusCreated, categoryResponse{
		Message:  s.message(r, "categories.created"),
		Category: export.NewCategoryRecord(c),
	})
}

func (s *Server) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	c, err := s.cats.Get(r.Context(), userIDFrom(r.Context()), id)
	if err != nil {
		s.writeError(w, r, err, "common.error")
		return
	}
	writeJSON(w, http.StatusOK, categoryResponse{Category: export.NewCategoryRecord(c)})
}

type updateCategoryRequest struct {
	Name  *string `json:"name"`
	Color *string `json:"color"`
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	var req updateCategoryRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err, "")
		return
	}
	c, err := s.cats.Update(r.Context(), userIDFrom(r.Context()), id, services.CategoryPatch{
		Name:  req.Name,
		Color: req.Color,
	})
	if err != nil {
		s.writeError(w, r, err, "common.error")
		return
	}
	writeJSON(w, http.StatusOK, categoryResponse{
		Message:  s.message(r, "categories.updated"),
		Category: export.NewCategoryRecord(c),
	})
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	if err := s.cats.Delete(r.Context(), userIDFrom(r.Context()), id); err != nil {
		s.writeError(w, r, err, "common.error")
		return
	}
	s.writeMessage(w, r, http.StatusOK, "categories.deleted")
}

func (s *Server) handleCategoryStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.cats.Stats(r.Context(), userIDFrom(r.Context()), typeFilter(r))
	if err != nil {
		s.writeError(w, r, err, "common.error")
		return
	}
	out := make([]categoryStatRecord, 0, len(stats))
	for _, st := range stats {
		out = append(out, categoryStatRecord{
			ID:               st.Category.ID,
			Name:             st.Category.Name,
			Type:             st.Category.Type.String(),
			Color:            st.Category.Color,
			TransactionCount: st.Count,
			TotalAmount:      st.Total.Float(),
		})
	}
	writeJSON(w, http.StatusOK, categoryStatsResponse{Categories: out})
}

func (s *Server) handleCategoryTransactions(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	f, err := parseTransactionFilter(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	f = f.Normalize(s.opts.PerPage, s.opts.MaxPerPage)

	c, page, err := s.cats.Transactions(r.Context(), userIDFrom(r.Context()), id, f)
	if err != nil {
		s.writeError(w, r, err, "common.error")
		return
	}
	writeJSON(w, http.StatusOK, categoryTransactionsResponse{
		Category:     export.NewCategoryRecord(c),
		Transactions: export.NewTransactionRecords(page.Items),
		Pagination:   newPagination(page),
	})
}
