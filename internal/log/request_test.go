package log

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, data []byte) []map[string]any {
	t.Helper()
	var out []map[string]any
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		var rec map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &rec), "line: %s", sc.Text())
		out = append(out, rec)
	}
	require.NoError(t, sc.Err())
	return out
}

func TestRequestLogRecordsFields(t *testing.T) {
	var buf bytes.Buffer
	rl := NewRequestLog(&buf, slog.LevelInfo, nil)

	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-42")
	rl.Log(ctx, "POST", "/api/webhooks/", map[string]string{"source": "sap"}, map[string]any{"event_type": "order.created"})
	rl.Log(context.Background(), "GET", "/api/webhooks/abc", map[string]string{}, nil)

	recs := decodeLines(t, buf.Bytes())
	require.Len(t, recs, 2)

	assert.Equal(t, "webhook request", recs[0]["msg"])
	assert.Equal(t, "POST", recs[0]["method"])
	assert.Equal(t, "/api/webhooks/", recs[0]["path"])
	assert.Equal(t, map[string]any{"source": "sap"}, recs[0]["query_params"])
	assert.Equal(t, map[string]any{"event_type": "order.created"}, recs[0]["body"])
	assert.Equal(t, "req-42", recs[0]["request_id"])

	assert.Equal(t, "GET", recs[1]["method"])
	assert.NotContains(t, recs[1], "body")
	assert.NotContains(t, recs[1], "request_id")
}

func TestRequestLogConcurrentWritesStayWholeLines(t *testing.T) {
	var buf bytes.Buffer
	rl := NewRequestLog(&buf, slog.LevelInfo, nil)

	const workers, perWorker = 16, 50
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				rl.Log(context.Background(), "PUT", fmt.Sprintf("/api/webhooks/w%d-%d", w, i),
					map[string]string{}, map[string]any{"data": strings.Repeat("x", 256)})
			}
		}(w)
	}
	wg.Wait()

	assert.Len(t, decodeLines(t, buf.Bytes()), workers*perWorker)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestRequestLogSwallowsSinkFailures(t *testing.T) {
	var fallback bytes.Buffer
	rl := NewRequestLog(failingWriter{}, slog.LevelInfo, slog.New(slog.NewJSONHandler(&fallback, nil)))

	assert.NotPanics(t, func() {
		rl.Log(context.Background(), "POST", "/api/webhooks/", map[string]string{}, nil)
		rl.Log(context.Background(), "POST", "/api/webhooks/", map[string]string{}, nil)
	})

	recs := decodeLines(t, fallback.Bytes())
	require.Len(t, recs, 1, "a failure burst is reported once")
	assert.Equal(t, "disk full", recs[0]["error"])
}

func TestRequestLogRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	rl := NewRequestLog(&buf, slog.LevelError, nil)

	rl.Log(context.Background(), "GET", "/api/webhooks/", map[string]string{}, nil)
	assert.Zero(t, buf.Len())
}

func TestOpenRequestLogRotates(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	rl, err := OpenRequestLog(SinkConfig{Dir: dir, File: "webhooks.log", MaxSizeMB: 1, MaxBackups: 5}, slog.LevelInfo, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rl.Close() })

	payload := map[string]any{"blob": strings.Repeat("a", 64*1024)}
	for i := 0; i < 24; i++ { // ~1.5 MiB
		rl.Log(context.Background(), "POST", "/api/webhooks/", map[string]string{}, payload)
	}
	require.NoError(t, rl.Close())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var logs int
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "webhooks") {
			logs++
		}
	}
	assert.GreaterOrEqual(t, logs, 2, "expected active file plus at least one backup")

	info, err := os.Stat(filepath.Join(dir, "webhooks.log"))
	require.NoError(t, err)
	assert.LessOrEqual(t, info.Size(), int64(1024*1024))
}

func TestOpenRotatingSinkRequiresPath(t *testing.T) {
	_, err := OpenRotatingSink(SinkConfig{})
	assert.Error(t, err)
}
