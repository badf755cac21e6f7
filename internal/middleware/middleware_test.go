// internal/middleware/middleware_test.go
package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestIDAttached(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/healthz", nil))

	require.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get("X-Request-ID"))
}

// No panic may escape a handler; it becomes a 502-class envelope instead.
func TestRecoverTurnsPanicIntoEnvelope(t *testing.T) {
	h := Recover(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("handler exploded")
	}))

	rec := httptest.NewRecorder()
	require.NotPanics(t, func() {
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/categories", nil))
	})

	require.Equal(t, http.StatusBadGateway, rec.Code)
	assert.JSONEq(t, `{"ok":false,"error":"internal_error"}`, rec.Body.String())
}

func TestCORSPreflight(t *testing.T) {
	h := CORS("https://shop.example")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("preflight must not reach the handler")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/order", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://shop.example", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestWriteErrorEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, http.StatusBadGateway, "fetch_failed")

	require.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"ok":false,"error":"fetch_failed"}`, rec.Body.String())
}

func TestParseJSONBodyToleratesUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/order",
		strings.NewReader(`{"userId":"U1","total":1,"mystery":true}`))
	req.Header.Set("Content-Type", "application/json")

	var v struct {
		UserID string `json:"userId"`
	}
	require.NoError(t, ParseJSONBody(req, &v))
	assert.Equal(t, "U1", v.UserID)
}

func TestParseJSONBodyRejectsWrongContentType(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/order", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "text/plain")

	var v struct{}
	require.Error(t, ParseJSONBody(req, &v))
}
