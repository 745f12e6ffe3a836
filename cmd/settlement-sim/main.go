// settlement-sim is a stand-in for the external settlement authority so the
// checkout flow can be exercised end to end without network credentials.
// Mark a fingerprint as paid via POST /simulate/pay, then the regular check
// endpoint starts reporting it settled.
package main

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
)

type record struct {
	Hash     string  `json:"hash"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

type store struct {
	mu    sync.RWMutex
	byMD5 map[string]record
}

func (s *store) pay(md5 string, rec record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byMD5[md5] = rec
}

func (s *store) lookup(md5 string) (record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.byMD5[md5]
	return rec, ok
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func main() {
	_ = godotenv.Load()
	addr := os.Getenv("SIM_ADDR")
	if addr == "" {
		addr = ":9090"
	}

	st := &store{byMD5: make(map[string]record)}

	r := chi.NewRouter()
	r.Use(middleware.Logger, middleware.Recoverer)

	r.Post("/v1/check_transaction_by_md5", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			MD5 string `json:"md5"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil || body.MD5 == "" {
			writeJSON(w, http.StatusBadRequest, map[string]any{"responseCode": 2, "responseMessage": "md5 is required"})
			return
		}
		rec, ok := st.lookup(body.MD5)
		if !ok {
			writeJSON(w, http.StatusOK, map[string]any{"responseCode": 1, "responseMessage": "transaction not found"})
			return
		}
		rec.Hash = body.MD5
		writeJSON(w, http.StatusOK, map[string]any{"responseCode": 0, "responseMessage": "success", "data": rec})
	})

	r.Post("/simulate/pay", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			MD5      string  `json:"md5"`
			Amount   float64 `json:"amount"`
			Currency string  `json:"currency"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil || body.MD5 == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "md5 is required"})
			return
		}
		st.pay(body.MD5, record{Amount: body.Amount, Currency: body.Currency})
		log.Printf("simulated settlement: md5=%s amount=%.2f %s", body.MD5, body.Amount, body.Currency)
		writeJSON(w, http.StatusOK, map[string]string{"status": "settled"})
	})

	log.Printf("settlement simulator listening at %s", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatalf("listen: %v", err)
	}
}
