package middleware_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/clamcard/internal/middleware"
)

func decodeLogLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

// TestSlogLogger_logsRequestFields verifies that the middleware writes a
// structured JSON log line with the request fields and the request ID placed
// in context by chi's RequestID middleware.
func TestSlogLogger_logsRequestFields(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	h := middleware.NewSlogLogger(logger)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("ok"))
		}),
	)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	ctx := context.WithValue(req.Context(), chimiddleware.RequestIDKey, "test-req-id")
	req = req.WithContext(ctx)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	entry := decodeLogLine(t, &buf)
	require.Equal(t, "INFO", entry["level"])
	require.Equal(t, "GET", entry["method"])
	require.Equal(t, "/healthz", entry["path"])
	require.EqualValues(t, http.StatusOK, entry["status"])
	require.EqualValues(t, 2, entry["bytes"])
	require.Equal(t, "test-req-id", entry["request_id"])
	require.NotNil(t, entry["duration_ms"])
}

// TestSlogLogger_routePattern verifies that the logged route is chi's pattern
// rather than the concrete path.
func TestSlogLogger_routePattern(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	r := chi.NewRouter()
	r.Use(middleware.NewSlogLogger(logger))
	r.Get("/cards/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/cards/abc", nil))

	entry := decodeLogLine(t, &buf)
	require.Equal(t, "/cards/abc", entry["path"])
	require.Equal(t, "/cards/{id}", entry["route"])
}

func TestSlogLogger_levelByStatus(t *testing.T) {
	tests := []struct {
		status int
		level  string
	}{
		{http.StatusCreated, "INFO"},
		{http.StatusConflict, "WARN"},
		{http.StatusInternalServerError, "ERROR"},
	}
	for _, tc := range tests {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewJSONHandler(&buf, nil))
			h := middleware.NewSlogLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
			}))

			h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/cards/x/tap-in", nil))

			require.Equal(t, tc.level, decodeLogLine(t, &buf)["level"])
		})
	}
}
