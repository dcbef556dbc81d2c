package server

import (
	"encoding/json"
	"net/http"
)

func (s *Service) respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.WithError(err).Error("failed to encode response body")
	}
}

func (s *Service) respondMessage(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"message": message})
}

// respondErrors is the validation failure shape: every collected field
// violation in one 400.
func (s *Service) respondErrors(w http.ResponseWriter, errs []string) {
	s.respondJSON(w, http.StatusBadRequest, map[string][]string{"errors": errs})
}

func (s *Service) respondNotFound(w http.ResponseWriter, message string) {
	s.respondMessage(w, http.StatusNotFound, message)
}

func (s *Service) internalServerError(w http.ResponseWriter) {
	s.respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
}
