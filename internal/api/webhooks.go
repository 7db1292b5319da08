package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// Every handler here is a stub: nothing is stored, and the request log write
// is the only side effect. Auth and validation failures return before it.

// handleCreate handles POST /api/webhooks/.
func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readSignedBody(w, r)
	if !ok {
		return
	}

	payload, err := s.decodePayload(body)
	if err != nil {
		s.respondDecodeError(w, err)
		return
	}

	s.logRequest(r, payload)
	s.logger.Info("webhook received",
		"event_type", payload.EventType,
		"entity_id", payload.EntityID,
	)

	s.writeJSON(w, http.StatusAccepted, AcceptedResponse{
		Status:  "accepted",
		Message: fmt.Sprintf("Webhook %s received", payload.EventType),
	})
}

// handleList handles GET /api/webhooks/.
func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	s.logRequest(r, nil)
	s.writeJSON(w, http.StatusOK, mockSummaries())
}

// handleGet handles GET /api/webhooks/{webhook_id}. The result depends only
// on the id, never on earlier writes.
func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "webhook_id")
	s.logRequest(r, nil)
	s.writeJSON(w, http.StatusOK, mockRecord(id))
}

// handleUpdate handles PUT /api/webhooks/{webhook_id}.
func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "webhook_id")

	body, ok := s.readSignedBody(w, r)
	if !ok {
		return
	}

	payload, err := s.decodePayload(body)
	if err != nil {
		s.respondDecodeError(w, err)
		return
	}

	s.logRequest(r, payload)

	s.writeJSON(w, http.StatusOK, WebhookRecord{
		ID:        id,
		EventType: payload.EventType,
		EntityID:  payload.EntityID,
		Timestamp: s.timestamp(),
		Data:      payload.Data,
		Status:    "updated",
	})
}

// handlePatch handles PATCH /api/webhooks/{webhook_id}. Missing fields get
// fixed defaults; there is no prior record to merge with.
func (s *Server) handlePatch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "webhook_id")

	body, ok := s.readSignedBody(w, r)
	if !ok {
		return
	}

	update, err := s.decodeUpdate(body)
	if err != nil {
		s.respondDecodeError(w, err)
		return
	}

	s.logRequest(r, update)

	eventType := mockEventType
	if update.EventType != nil {
		eventType = *update.EventType
	}
	data := update.Data
	if data == nil {
		data = map[string]any{"status": defaultPatchStatus}
	}

	s.writeJSON(w, http.StatusOK, WebhookRecord{
		ID:        id,
		EventType: eventType,
		EntityID:  mockEntityID,
		Timestamp: s.timestamp(),
		Data:      data,
		Status:    "partially_updated",
	})
}

// handleDelete handles DELETE /api/webhooks/{webhook_id}.
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	s.logRequest(r, nil)
	w.WriteHeader(http.StatusNoContent)
}

// readSignedBody enforces the body limit and, when enabled, the HMAC
// signature. It writes the error response itself and reports ok=false.
func (s *Server) readSignedBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := readBody(r.Body, s.config.MaxBodySize)
	if errors.Is(err, errBodyTooLarge) {
		s.writeError(w, http.StatusRequestEntityTooLarge, "payload too large")
		return nil, false
	}
	if err != nil {
		s.logger.Error("failed to read request body", "path", r.URL.Path, "error", err)
		s.writeError(w, http.StatusBadRequest, "failed to read request body")
		return nil, false
	}

	if s.signer.Enabled() {
		if err := s.signer.Verify(body, r.Header.Get(s.signer.Header())); err != nil {
			s.logger.Warn("webhook signature rejected",
				"path", r.URL.Path,
				"header", s.signer.Header(),
			)
			s.writeError(w, http.StatusForbidden, "forbidden")
			return nil, false
		}
	}
	return body, true
}

func (s *Server) respondDecodeError(w http.ResponseWriter, err error) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		s.writeValidationError(w, verr)
		return
	}
	s.logger.Error("failed to decode request", "error", err)
	s.writeError(w, http.StatusInternalServerError, fmt.Sprintf("Internal server error: %v", err))
}

// logRequest writes method, path, query params and (for writes) the parsed
// body to the request log.
func (s *Server) logRequest(r *http.Request, body any) {
	query := make(map[string]string, len(r.URL.Query()))
	for k, vs := range r.URL.Query() {
		if len(vs) > 0 {
			query[k] = vs[len(vs)-1]
		}
	}
	s.requests.Log(r.Context(), r.Method, r.URL.Path, query, body)
}

func (s *Server) timestamp() string {
	return s.now().UTC().Format(time.RFC3339)
}
