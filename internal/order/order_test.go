// internal/order/order_test.go
package order

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orderrelay/internal/signer"
	"orderrelay/internal/upstream"
)

func newTestGuard(t *testing.T, handler http.HandlerFunc) (*Guard, *int64) {
	t.Helper()
	var calls int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	client := upstream.New(srv.URL, signer.New("test-secret"), 2*time.Second)
	return NewGuard(client, nil), &calls
}

func TestTotalIsSumOfLines(t *testing.T) {
	total := Total([]Line{
		{ID: "a", Name: "Ramen", Price: 500, Qty: 2},
		{ID: "b", Name: "Gyoza", Price: 300, Qty: 1},
	})
	assert.Equal(t, 1300.0, total)
}

func TestSubmitRecomputesTotal(t *testing.T) {
	var forwarded map[string]interface{}
	guard, _ := newTestGuard(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&forwarded)
		w.Write([]byte(`{"ok":true,"orderId":"ORD-7"}`))
	})

	result, err := guard.Submit(context.Background(), Submission{
		UserID: "U1",
		Items: []Line{
			{ID: "a", Name: "Ramen", Price: 500, Qty: 2},
			{ID: "b", Name: "Gyoza", Price: 300, Qty: 1},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "ORD-7", result.OrderID)
	assert.Equal(t, 1300.0, result.Total)
	assert.Equal(t, 1300.0, forwarded["total"])
}

// The server's computed total wins even when the backend echoes a different
// amount: one source of truth for what the client displays.
func TestSubmitIgnoresBackendEchoedTotal(t *testing.T) {
	guard, _ := newTestGuard(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok":true,"orderId":"ORD-9","total":999999}`))
	})

	result, err := guard.Submit(context.Background(), Submission{
		Items: []Line{{ID: "a", Name: "Ramen", Price: 800, Qty: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, 800.0, result.Total)
}

func TestSubmitEmptyCartRejectedLocally(t *testing.T) {
	guard, calls := newTestGuard(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok":true}`))
	})

	_, err := guard.Submit(context.Background(), Submission{UserID: "U1", Items: []Line{}})

	var invalid *InvalidOrderError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, int64(0), atomic.LoadInt64(calls), "no upstream call may be made for an invalid order")
}

func TestSubmitRequiresExplicitOK(t *testing.T) {
	guard, _ := newTestGuard(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"orderId":"ORD-1"}`))
	})

	_, err := guard.Submit(context.Background(), Submission{
		Items: []Line{{ID: "a", Price: 100, Qty: 1}},
	})

	var rejected *upstream.RejectedError
	require.ErrorAs(t, err, &rejected)
}

// A client-declared total field in the raw payload is dropped by the
// decoder; the response carries the recomputed amount.
func TestSubmitHandlerIgnoresClientTotal(t *testing.T) {
	guard, _ := newTestGuard(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok":true,"orderId":"ORD-2"}`))
	})
	handler := NewHandler(guard)

	payload := `{
		"liffUserId": "U1",
		"items": [
			{"id":"a","name":"Ramen","price":500,"qty":2},
			{"id":"b","name":"Gyoza","price":300,"qty":1}
		],
		"note": "",
		"total": 1
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/order", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.Submit(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true,"orderId":"ORD-2","total":1300}`, rec.Body.String())
}

func TestSubmitHandlerEmptyCart(t *testing.T) {
	guard, calls := newTestGuard(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok":true}`))
	})
	handler := NewHandler(guard)

	req := httptest.NewRequest(http.MethodPost, "/api/order",
		strings.NewReader(`{"liffUserId":"U1","items":[],"note":""}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.Submit(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"ok":false,"error":"invalid_order"}`, rec.Body.String())
	assert.Equal(t, int64(0), atomic.LoadInt64(calls))
}

func TestSubmitHandlerUpstreamRejection(t *testing.T) {
	guard, _ := newTestGuard(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok":false,"error":"sheet is locked"}`))
	})
	handler := NewHandler(guard)

	req := httptest.NewRequest(http.MethodPost, "/api/order",
		strings.NewReader(`{"liffUserId":"U1","items":[{"id":"a","price":100,"qty":1}]}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.Submit(rec, req)

	require.Equal(t, http.StatusBadGateway, rec.Code)
	// the backend's own error text is never forwarded
	assert.JSONEq(t, `{"ok":false,"error":"upstream_rejected"}`, rec.Body.String())
}
