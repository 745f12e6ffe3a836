package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/vannda-dev/khqr-checkout.git/internal/audit"
	"github.com/vannda-dev/khqr-checkout.git/internal/config"
	"github.com/vannda-dev/khqr-checkout.git/internal/httpx"
	kafkax "github.com/vannda-dev/khqr-checkout.git/internal/kafka"
	"github.com/vannda-dev/khqr-checkout.git/internal/khqr"
	"github.com/vannda-dev/khqr-checkout.git/internal/orders"
	"github.com/vannda-dev/khqr-checkout.git/internal/redisx"
	"github.com/vannda-dev/khqr-checkout.git/internal/settlement"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Redis (optional settled-status cache)
	rdb := redisx.New(cfg.RedisAddr)
	if rdb != nil {
		defer rdb.Close()
	}

	// Kafka audit stream (optional)
	var sink orders.EventSink
	var prodCreated, prodPaid *kafkax.Producer
	if len(cfg.KafkaBrokers) > 0 {
		prodCreated = kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderCreated, 1024)
		prodCreated.Start(ctx)
		prodPaid = kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderPaid, 1024)
		prodPaid.Start(ctx)
		sink = &audit.Publisher{Created: prodCreated, Paid: prodPaid, ServiceName: cfg.ServiceName}
	}

	// Settlement authority; without a token the ledger runs degraded and
	// every status check answers PENDING.
	var checker orders.SettlementChecker
	if cfg.SettlementToken != "" {
		checker = settlement.NewClient(cfg.SettlementBaseURL, cfg.SettlementToken)
	} else {
		log.Println("no settlement token configured, running in degraded mode")
	}

	factory := &orders.Factory{
		Merchant: orders.MerchantIdentity{
			AccountID: cfg.MerchantAccount,
			Name:      cfg.MerchantName,
			City:      cfg.MerchantCity,
		},
		DefaultCurrency: orders.Currency(cfg.DefaultCurrency),
		IDPrefix:        cfg.OrderPrefix,
		Codec:           khqr.Codec{},
		Rasterizer:      khqr.QRRasterizer{},
	}
	ledger := orders.NewLedger(checker, sink)

	janitor := &orders.Janitor{Ledger: ledger, Interval: cfg.SweepInterval, Grace: cfg.RetentionGrace}
	go janitor.Run(ctx)

	router := httpx.NewRouter()
	oh := &httpx.OrdersHandler{Factory: factory, Ledger: ledger, Redis: rdb}
	oh.Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	if prodCreated != nil {
		prodCreated.Close()
		prodPaid.Close()
		prodCreated.WaitClosed()
		prodPaid.WaitClosed()
	}
	cancel()
}
