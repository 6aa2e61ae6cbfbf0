package http

import (
	"net/http"

	applog "incometracker/internal/log"
)

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		if err := s.ready(r.Context()); err != nil {
			applog.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", applog.FieldError, err)
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

type healthResponse struct {
	Status             string   `json:"status"`
	Version            string   `json:"version"`
	Language           string   `json:"language"`
	SupportedLanguages []string `json:"supported_languages"`
}

func (s *Server) handleAPIHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:             "healthy",
		Version:            Version,
		Language:           languageFrom(r.Context()),
		SupportedLanguages: s.catalog.Languages(),
	})
}

type configResponse struct {
	AppName            string          `json:"app_name"`
	Version            string          `json:"version"`
	SupportedLanguages []string        `json:"supported_languages"`
	Features           map[string]bool `json:"features"`
}

func (s *Server) handleAPIConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, configResponse{
		AppName:            AppName,
		Version:            Version,
		SupportedLanguages: s.catalog.Languages(),
		Features: map[string]bool{
			"user_authentication": true,
			"multi_language":      true,
			"data_analytics":      true,
			"data_export":         true,
			"custom_categories":   true,
			"transaction_search":  true,
			"bulk_operations":     true,
		},
	})
}
