package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"sync"
	"testing"
)

func TestSetup(t *testing.T) {
	// Reset logger for testing
	logger = nil
	once = *new(sync.Once)

	var buf bytes.Buffer
	Setup("debug", &buf)
	if logger == nil {
		t.Fatal("Logger should not be nil")
	}

	Get().Debug("visible at debug")
	if buf.Len() == 0 {
		t.Fatal("expected debug record to be written")
	}

	// Second call is a no-op.
	var other bytes.Buffer
	Setup("error", &other)
	Info("still first writer")
	if other.Len() != 0 {
		t.Errorf("second Setup should not replace the writer")
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"trace":    slog.LevelDebug,
		"debug":    slog.LevelDebug,
		"info":     slog.LevelInfo,
		"warning":  slog.LevelWarn,
		"WARN":     slog.LevelWarn,
		"error":    slog.LevelError,
		"critical": slog.LevelError,
		"bogus":    slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	logger = slog.New(slog.NewJSONHandler(&buf, nil))

	WithComponent("api").Info("hello")

	var out map[string]any
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("Failed to decode JSON: %v", err)
	}
	if out["component"] != "api" {
		t.Errorf("Expected component 'api', got %v", out["component"])
	}
	if out["msg"] != "hello" {
		t.Errorf("Expected msg 'hello', got %v", out["msg"])
	}
}

func TestWithRequest(t *testing.T) {
	var buf bytes.Buffer
	logger = slog.New(slog.NewJSONHandler(&buf, nil))

	WithRequest("req-1").Info("request msg")

	var out map[string]any
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("Failed to decode JSON: %v", err)
	}
	if out["request_id"] != "req-1" {
		t.Errorf("Expected request_id 'req-1', got %v", out["request_id"])
	}
}
