// Package http provides the JSON API server and its handlers.
//
// This file builds JSON responses and maps service errors onto status codes
// and localized messages.

package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"incometracker/internal/core"
	"incometracker/internal/export"
	applog "incometracker/internal/log"
)

// Error codes returned alongside the message.
const (
	CodeBadRequest   = "BAD_REQUEST"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeNotFound     = "NOT_FOUND"
	CodeConflict     = "CONFLICT"
	CodeTooMany      = "TOO_MANY_REQUESTS"
	CodeInternal     = "INTERNAL_ERROR"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type paginationResponse struct {
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
	Total   int64 `json:"total"`
	Pages   int   `json:"pages"`
	HasNext bool  `json:"has_next"`
	HasPrev bool  `json:"has_prev"`
}

func newPagination[T any](p core.Page[T]) paginationResponse {
	return paginationResponse{
		Page:    p.Page,
		PerPage: p.PerPage,
		Total:   p.Total,
		Pages:   p.Pages(),
		HasNext: p.HasNext(),
		HasPrev: p.HasPrev(),
	}
}

type transactionPageResponse struct {
	Transactions []export.TransactionRecord `json:"transactions"`
	Pagination   paginationResponse         `json:"pagination"`
}

func newTransactionPage(p core.Page[core.Transaction]) transactionPageResponse {
	return transactionPageResponse{
		Transactions: export.NewTransactionRecords(p.Items),
		Pagination:   newPagination(p),
	}
}

// writeJSON sends v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode JSON response", "error", err)
	}
}

// writeMessage sends {"message": ...} localized from key.
func (s *Server) writeMessage(w http.ResponseWriter, r *http.Request, status int, key string) {
	writeJSON(w, status, messageResponse{Message: s.message(r, key)})
}

// writeFailure sends a client error that did not come from a service.
func (s *Server) writeFailure(w http.ResponseWriter, r *http.Request, status int, code string, keys ...string) {
	writeJSON(w, status, errorResponse{Error: s.catalog.Messages(languageFrom(r.Context()), keys), Code: code})
}

// writeError maps err onto a response. Errors outside the core kinds are
// logged and reported as 500 with failKey as the message prefix.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, failKey string) {
	keys := core.Keys(err)
	switch {
	case errors.Is(err, core.ErrValidation):
		s.writeFailure(w, r, http.StatusBadRequest, CodeBadRequest, orDefault(keys, "common.invalid_request")...)
	case errors.Is(err, core.ErrUnauthorized):
		s.writeFailure(w, r, http.StatusUnauthorized, CodeUnauthorized, orDefault(keys, "common.unauthorized")...)
	case errors.Is(err, core.ErrNotFound):
		s.writeFailure(w, r, http.StatusNotFound, CodeNotFound, orDefault(keys, "common.not_found")...)
	case errors.Is(err, core.ErrConflict):
		s.writeFailure(w, r, http.StatusConflict, CodeConflict, orDefault(keys, "common.error")...)
	default:
		if failKey == "" {
			failKey = "common.server_error"
		}
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			applog.FieldPath, r.URL.Path,
			applog.FieldUserID, userIDFrom(r.Context()),
			applog.FieldError, err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error: s.message(r, failKey) + ": " + err.Error(),
			Code:  CodeInternal,
		})
	}
}

func orDefault(keys []string, fallback string) []string {
	if len(keys) == 0 {
		return []string{fallback}
	}
	return keys
}
