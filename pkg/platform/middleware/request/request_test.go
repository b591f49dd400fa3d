package request

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devkichauhan/reliaquest/pkg/requestcontext"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequestID(t *testing.T) {
	capture := func(t *testing.T, header string) (string, *httptest.ResponseRecorder) {
		t.Helper()
		var captured string
		handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			captured = requestcontext.RequestID(r.Context())
		}))
		req := httptest.NewRequest(http.MethodGet, "/api/v1/employee", nil)
		if header != "" {
			req.Header.Set(HeaderRequestID, header)
		}
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return captured, w
	}

	t.Run("generates a UUID when absent", func(t *testing.T) {
		id, w := capture(t, "")
		assert.Len(t, id, 36)
		assert.Equal(t, id, w.Header().Get(HeaderRequestID))
	})

	t.Run("keeps a valid client ID", func(t *testing.T) {
		id, w := capture(t, "trace.span_1234-x")
		assert.Equal(t, "trace.span_1234-x", id)
		assert.Equal(t, "trace.span_1234-x", w.Header().Get(HeaderRequestID))
	})

	t.Run("replaces an oversized ID", func(t *testing.T) {
		id, _ := capture(t, strings.Repeat("a", MaxRequestIDLength+1))
		assert.Len(t, id, 36)
	})

	t.Run("replaces an ID with unsafe characters", func(t *testing.T) {
		id, _ := capture(t, "abc\ninjected")
		assert.NotContains(t, id, "injected")
	})

	t.Run("stores the remote address", func(t *testing.T) {
		var ip string
		handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip = requestcontext.ClientIP(r.Context())
		}))
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.0.2.10:5555"
		handler.ServeHTTP(httptest.NewRecorder(), req)
		assert.Equal(t, "192.0.2.10:5555", ip)
	})
}

func TestRecovery(t *testing.T) {
	handler := Recovery(slog.New(slog.NewTextHandler(io.Discard, nil)))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "internal_error")
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	handler := RequestID(Logger(logger)(okHandler()))

	t.Run("logs regular requests with anonymized address", func(t *testing.T) {
		buf.Reset()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/employee", nil)
		req.RemoteAddr = "203.0.113.77:1234"
		handler.ServeHTTP(httptest.NewRecorder(), req)

		out := buf.String()
		assert.Contains(t, out, `"path":"/api/v1/employee"`)
		assert.Contains(t, out, `"remote_addr_prefix":"203.0.113.0"`)
		assert.NotContains(t, out, "203.0.113.77")
	})

	t.Run("skips healthy probes", func(t *testing.T) {
		buf.Reset()
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health/live", nil))
		assert.Empty(t, buf.String())
	})
}

func TestContentTypeJSON(t *testing.T) {
	tests := []struct {
		name        string
		method      string
		contentType string
		wantStatus  int
	}{
		{"json post", http.MethodPost, "application/json", http.StatusOK},
		{"json with charset", http.MethodPost, "application/json; charset=utf-8", http.StatusOK},
		{"no content type", http.MethodPost, "", http.StatusOK},
		{"form post", http.MethodPost, "application/x-www-form-urlencoded", http.StatusUnsupportedMediaType},
		{"get ignores content type", http.MethodGet, "text/plain", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/", nil)
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			w := httptest.NewRecorder()
			ContentTypeJSON(okHandler()).ServeHTTP(w, req)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestTimeout(t *testing.T) {
	slow := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
			w.WriteHeader(http.StatusOK)
		}
	})

	w := httptest.NewRecorder()
	Timeout(10*time.Millisecond)(slow).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"timeout","error_description":"request timed out"}`, w.Body.String())
}

func TestTimeout_PassesHandlerResponseThrough(t *testing.T) {
	t.Run("no content keeps empty content type", func(t *testing.T) {
		w := httptest.NewRecorder()
		Timeout(time.Second)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Header().Get("Content-Type"))
	})

	t.Run("handler 503 keeps its own body", func(t *testing.T) {
		w := httptest.NewRecorder()
		Timeout(time.Second)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"error":"upstream_unavailable"}`))
		})).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
		assert.Contains(t, w.Body.String(), "upstream_unavailable")
	})
}

func TestBodyLimit(t *testing.T) {
	var readErr error
	handler := BodyLimit(8)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, readErr = io.ReadAll(r.Body)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", strings.NewReader("0123456789")))
	require.Error(t, readErr)

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", strings.NewReader("0123")))
	assert.NoError(t, readErr)
}

func TestLatencyMiddleware(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	r := chi.NewRouter()
	r.Use(LatencyMiddleware(m))
	r.Get("/api/v1/employee/{id}", okHandler().ServeHTTP)

	for _, id := range []string{"a", "b", "c"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/employee/"+id, nil))
	}

	// one series for the pattern, not one per id
	assert.Equal(t, 1, testutil.CollectAndCount(m.EndpointLatency))
}
