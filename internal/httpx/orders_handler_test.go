package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vannda-dev/khqr-checkout.git/internal/khqr"
	"github.com/vannda-dev/khqr-checkout.git/internal/orders"
)

// scriptedChecker lets a test flip the settlement answer between polls.
type scriptedChecker struct {
	mu    sync.Mutex
	rec   *orders.SettlementRecord
	calls int
}

func (c *scriptedChecker) CheckByFingerprint(ctx context.Context, fingerprint string) (*orders.SettlementRecord, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.rec == nil {
		return nil, false, nil
	}
	return c.rec, true, nil
}

func (c *scriptedChecker) settle(amount float64, currency string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rec = &orders.SettlementRecord{Amount: amount, Currency: currency}
}

func (c *scriptedChecker) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func newTestRouter(checker orders.SettlementChecker) *chi.Mux {
	factory := &orders.Factory{
		Merchant: orders.MerchantIdentity{
			AccountID: "demo_cafe@devb",
			Name:      "Demo Cafe",
			City:      "Phnom Penh",
		},
		DefaultCurrency: orders.CurrencyUSD,
		IDPrefix:        "CAFE",
		Codec:           khqr.Codec{},
		Rasterizer:      khqr.QRRasterizer{Size: 128},
	}
	r := NewRouter()
	h := &OrdersHandler{Factory: factory, Ledger: orders.NewLedger(checker, nil)}
	h.Register(r)
	return r
}

func postJSON(t *testing.T, r http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func get(t *testing.T, r http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestCreateOrderEndpoint(t *testing.T) {
	r := newTestRouter(nil)

	w := postJSON(t, r, "/create-order", `{"amount": 1.5, "currency": "USD"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var resp CreateOrderResp
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.True(t, strings.HasPrefix(resp.OrderID, "CAFE-"))
	assert.Equal(t, 1.5, resp.Amount)
	assert.Equal(t, "USD", resp.Currency)
	assert.Len(t, resp.Fingerprint, 32)
	assert.True(t, strings.HasPrefix(resp.QRImage, "data:image/png;base64,"))
	assert.NotEmpty(t, resp.ExpiresAt)
}

func TestCreateOrderValidation(t *testing.T) {
	r := newTestRouter(nil)

	cases := []struct {
		name string
		body string
	}{
		{"invalid json", `{"amount":`},
		{"missing amount", `{}`},
		{"zero amount", `{"amount": 0}`},
		{"negative amount", `{"amount": -3}`},
		{"unknown currency", `{"amount": 5, "currency": "EUR"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := postJSON(t, r, "/create-order", tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)

			var resp map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, false, resp["ok"])
			assert.NotEmpty(t, resp["error"])
		})
	}
}

func TestCreateOrderMisconfiguredMerchant(t *testing.T) {
	factory := &orders.Factory{
		Merchant:        orders.MerchantIdentity{AccountID: "no-separator"},
		DefaultCurrency: orders.CurrencyUSD,
		Codec:           khqr.Codec{},
		Rasterizer:      khqr.QRRasterizer{Size: 128},
	}
	r := NewRouter()
	h := &OrdersHandler{Factory: factory, Ledger: orders.NewLedger(nil, nil)}
	h.Register(r)

	w := postJSON(t, r, "/create-order", `{"amount": 5}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStatusUnknownOrder(t *testing.T) {
	r := newTestRouter(nil)

	w := get(t, r, "/order/CAFE-00000000000000-000/status")
	assert.Equal(t, http.StatusNotFound, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, false, resp["ok"])
}

func TestStatusDegradedModeNote(t *testing.T) {
	r := newTestRouter(nil)

	w := postJSON(t, r, "/create-order", `{"amount": 1.5}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var created CreateOrderResp
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = get(t, r, "/order/"+created.OrderID+"/status")
	require.Equal(t, http.StatusOK, w.Code)

	var status StatusResp
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, "PENDING", status.Status)
	assert.NotEmpty(t, status.Note)
}

func TestCheckoutScenario(t *testing.T) {
	checker := &scriptedChecker{}
	r := newTestRouter(checker)

	// mint the order
	w := postJSON(t, r, "/create-order", `{"amount": 1.5, "currency": "USD"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var created CreateOrderResp
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	// nothing settled yet
	w = get(t, r, "/order/"+created.OrderID+"/status")
	require.Equal(t, http.StatusOK, w.Code)
	var status StatusResp
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, "PENDING", status.Status)

	// the customer pays
	checker.settle(1.5, "USD")
	w = get(t, r, "/order/"+created.OrderID+"/status")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, "PAID", status.Status)
	assert.Equal(t, 1.5, status.Amount)
	assert.Equal(t, "USD", status.Currency)

	// re-poll is idempotent and skips the settlement network
	calls := checker.callCount()
	w = get(t, r, "/order/"+created.OrderID+"/status")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, "PAID", status.Status)
	assert.Equal(t, calls, checker.callCount())
}
