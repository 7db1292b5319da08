package api

// WebhookPayload is the body of create and full-update requests.
type WebhookPayload struct {
	EventType string         `json:"event_type"`
	EntityID  string         `json:"entity_id"`
	Data      map[string]any `json:"data"`
}

// WebhookUpdate is the body of partial-update requests. Absent fields are
// nil and are replaced by fixed defaults, never merged with prior state.
type WebhookUpdate struct {
	EventType *string        `json:"event_type,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
}

// WebhookRecord is the response shape for a single webhook. It is built per
// request and never stored.
type WebhookRecord struct {
	ID        string         `json:"id"`
	EventType string         `json:"event_type"`
	EntityID  string         `json:"entity_id"`
	Timestamp string         `json:"timestamp"`
	Data      map[string]any `json:"data"`
	Status    string         `json:"status,omitempty"`
}

// WebhookSummary is one entry of the list response.
type WebhookSummary struct {
	ID        string `json:"id"`
	EventType string `json:"event_type"`
	EntityID  string `json:"entity_id"`
	Timestamp string `json:"timestamp"`
}

// AcceptedResponse acknowledges a received webhook.
type AcceptedResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ErrorResponse is returned on errors. Detail is a string, or a list of
// FieldError for validation failures.
type ErrorResponse struct {
	Detail any `json:"detail"`
}

// FieldError locates a single validation failure, e.g. loc ["body","event_type"].
type FieldError struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

// WelcomeResponse is returned by GET /.
type WelcomeResponse struct {
	Message string `json:"message"`
	DocsURL string `json:"docs_url"`
}

// HealthzResponse is returned by GET /healthz.
type HealthzResponse struct {
	Status        string `json:"status"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	AuthEnabled   bool   `json:"auth_enabled"`
}
