package api

import (
	"encoding/json"
	"net/http"
)

// writeJSON sends a JSON response.
func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode response", "status", status, "error", err)
	}
}

// writeError sends a JSON error response with a string detail.
func (s *Server) writeError(w http.ResponseWriter, status int, detail string) {
	s.writeJSON(w, status, ErrorResponse{Detail: detail})
}

// writeValidationError sends a 422 with field-level detail.
func (s *Server) writeValidationError(w http.ResponseWriter, verr *ValidationError) {
	s.writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Detail: verr.Fields})
}
