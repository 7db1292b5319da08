package log

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/go-chi/chi/v5/middleware"
)

// RequestLog records inbound webhook requests as JSON lines.
// Writes are serialized so concurrent requests never interleave within a line
// or race a file rotation. Sink failures never reach the caller.
type RequestLog struct {
	mu     sync.Mutex
	logger *slog.Logger
	closer io.Closer
}

// NewRequestLog returns a RequestLog writing to w at the given level.
// Write failures on w are reported once per failure burst on fallback.
func NewRequestLog(w io.Writer, level slog.Level, fallback *slog.Logger) *RequestLog {
	handler := slog.NewJSONHandler(newBestEffortWriter(w, fallback), &slog.HandlerOptions{Level: level})
	rl := &RequestLog{logger: slog.New(handler)}
	if c, ok := w.(io.Closer); ok {
		rl.closer = c
	}
	return rl
}

// OpenRequestLog opens the rotating sink described by cfg and wraps it.
func OpenRequestLog(cfg SinkConfig, level slog.Level, fallback *slog.Logger) (*RequestLog, error) {
	sink, err := OpenRotatingSink(cfg)
	if err != nil {
		return nil, err
	}
	return NewRequestLog(sink, level, fallback), nil
}

// Log records one request. body is omitted from the record when nil.
func (l *RequestLog) Log(ctx context.Context, method, path string, query map[string]string, body any) {
	attrs := []slog.Attr{
		slog.String("method", method),
		slog.String("path", path),
		slog.Any("query_params", query),
	}
	if body != nil {
		attrs = append(attrs, slog.Any("body", body))
	}
	if id := middleware.GetReqID(ctx); id != "" {
		attrs = append(attrs, slog.String("request_id", id))
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.logger.LogAttrs(ctx, slog.LevelInfo, "webhook request", attrs...)
}

// Close closes the underlying sink if it is closable.
func (l *RequestLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closer == nil {
		return nil
	}
	err := l.closer.Close()
	l.closer = nil
	return err
}
