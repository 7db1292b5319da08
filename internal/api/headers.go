package api

import "net/http"

// responseHeader is a fixed name/value pair added to webhook responses.
type responseHeader struct {
	Name  string
	Value string
}

// webhookResponseHeaders are set on every response under /api/webhooks.
var webhookResponseHeaders = []responseHeader{
	{Name: "po", Value: "4500002481"},
}

// augmentHeaders sets webhookResponseHeaders just before the status line is
// written, on success and error paths alike.
func augmentHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(&augmentedWriter{ResponseWriter: w, headers: webhookResponseHeaders}, r)
	})
}

type augmentedWriter struct {
	http.ResponseWriter
	headers []responseHeader
	applied bool
}

func (w *augmentedWriter) apply() {
	if w.applied {
		return
	}
	w.applied = true
	for _, h := range w.headers {
		w.ResponseWriter.Header().Set(h.Name, h.Value)
	}
}

func (w *augmentedWriter) WriteHeader(status int) {
	w.apply()
	w.ResponseWriter.WriteHeader(status)
}

func (w *augmentedWriter) Write(b []byte) (int, error) {
	w.apply()
	return w.ResponseWriter.Write(b)
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (w *augmentedWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
