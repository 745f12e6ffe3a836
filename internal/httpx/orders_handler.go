package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/vannda-dev/khqr-checkout.git/internal/orders"
	"github.com/vannda-dev/khqr-checkout.git/internal/redisx"
)

type OrdersHandler struct {
	Factory *orders.Factory
	Ledger  *orders.Ledger
	Redis   *redis.Client // nil disables the settled-status cache
}

type CreateOrderReq struct {
	Amount   json.Number `json:"amount"`
	Currency string      `json:"currency"`
}

type CreateOrderResp struct {
	OK          bool    `json:"ok"`
	OrderID     string  `json:"order_id"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	Fingerprint string  `json:"fingerprint"`
	QRImage     string  `json:"qr_image"`
	ExpiresAt   string  `json:"expires_at"`
}

type StatusResp struct {
	Status   string  `json:"status"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	Note     string  `json:"note,omitempty"`
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Post("/create-order", h.createOrder)
	r.Get("/order/{id}/status", h.getStatus)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"ok": false, "error": msg})
}

func (h *OrdersHandler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	amount, err := req.Amount.Float64()
	if err != nil || req.Amount == "" {
		writeError(w, http.StatusBadRequest, orders.ErrInvalidAmount.Error())
		return
	}

	order, img, err := h.Factory.CreateOrder(amount, req.Currency)
	if err != nil {
		h.writeOrderError(w, err)
		return
	}
	if err := h.Ledger.Register(r.Context(), order); err != nil {
		h.writeOrderError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, CreateOrderResp{
		OK:          true,
		OrderID:     order.ID,
		Amount:      order.Amount,
		Currency:    string(order.Currency),
		Fingerprint: order.Fingerprint,
		QRImage:     img,
		ExpiresAt:   order.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

func (h *OrdersHandler) getStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")
	if orderID == "" {
		writeError(w, http.StatusBadRequest, "missing order id")
		return
	}

	ctx := r.Context()

	// Settled snapshots are immutable, so a cache hit can be served without
	// touching the ledger at all.
	key := fmt.Sprintf(redisx.KeyOrderSettled, orderID)
	if h.Redis != nil {
		if s, err := h.Redis.Get(ctx, key).Result(); err == nil && s != "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(s))
			return
		}
	}

	res, err := h.Ledger.Resolve(ctx, orderID)
	if err != nil {
		h.writeOrderError(w, err)
		return
	}

	resp := StatusResp{
		Status:   string(res.Status),
		Amount:   res.Amount,
		Currency: string(res.Currency),
		Note:     res.Note,
	}
	if res.Status == orders.StatusPaid && h.Redis != nil {
		h.cacheSettled(ctx, key, resp)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *OrdersHandler) cacheSettled(ctx context.Context, key string, resp StatusResp) {
	b, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if err := h.Redis.Set(ctx, key, b, redisx.TTLSettled).Err(); err != nil {
		log.Printf("cache settled order: %v", err)
	}
}

// writeOrderError maps the error taxonomy to HTTP. Collaborator failures are
// already logged with detail upstream; the client sees an opaque message.
func (h *OrdersHandler) writeOrderError(w http.ResponseWriter, err error) {
	var encErr *orders.EncodingError
	switch {
	case errors.Is(err, orders.ErrInvalidAmount),
		errors.Is(err, orders.ErrInvalidCurrency),
		errors.Is(err, orders.ErrMisconfiguredMerchant):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, orders.ErrOrderNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, orders.ErrDuplicateOrder):
		writeError(w, http.StatusConflict, err.Error())
	case errors.As(err, &encErr):
		log.Printf("order encoding failed: %s", encErr.Detail)
		writeError(w, http.StatusBadGateway, "payment encoding failed")
	case errors.Is(err, orders.ErrReconciliation):
		writeError(w, http.StatusBadGateway, "settlement check failed")
	default:
		log.Printf("unexpected order error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
