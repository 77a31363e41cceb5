package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestIDKeepsValidHeader(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", " batch-42 ")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "batch-42", seen)
	assert.Equal(t, "batch-42", rec.Header().Get("X-Request-ID"))
}

func TestRequestIDReplacesMalformedHeader(t *testing.T) {
	for _, raw := range []string{"", "has space", strings.Repeat("x", maxRequestIDLen+1), "tab\tid"} {
		var seen string
		h := RequestID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			seen = RequestIDFromContext(r.Context())
		}))
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", raw)
		h.ServeHTTP(httptest.NewRecorder(), req)

		_, err := uuid.Parse(seen)
		assert.NoError(t, err, "input %q", raw)
	}
}

func TestLoggerWritesAccessLine(t *testing.T) {
	var buf bytes.Buffer
	l := zerolog.New(&buf)
	var ctxLogger *zerolog.Logger
	h := RequestID(Logger(l)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctxLogger = zerolog.Ctx(r.Context())
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("missing"))
	})))
	req := httptest.NewRequest(http.MethodGet, "/v1/products/X", nil)
	req.Header.Set("X-Request-ID", "rid-1")
	h.ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, ctxLogger)
	assert.NotEqual(t, zerolog.Disabled, ctxLogger.GetLevel())

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "warn", line["level"])
	assert.Equal(t, "rid-1", line["request_id"])
	assert.Equal(t, float64(http.StatusNotFound), line["status"])
	assert.Equal(t, float64(len("missing")), line["bytes"])
	assert.Equal(t, "/v1/products/X", line["path"])
}

func TestCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	h := CORS([]string{"https://studio.example.com/"})(next)

	t.Run("preflight from allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/v1/fields", nil)
		req.Header.Set("Origin", "https://Studio.example.com")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "https://Studio.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodDelete)
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "X-Content-Language")
	})

	t.Run("other origin gets no grant", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/fields", nil)
		req.Header.Set("Origin", "https://evil.example.net")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "Origin", rec.Header().Get("Vary"))
	})

	t.Run("wildcard echoes origin", func(t *testing.T) {
		h := CORS([]string{"*"})(next)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	})
}
