package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/vannda-dev/khqr-checkout.git/internal/audit"
	"github.com/vannda-dev/khqr-checkout.git/internal/config"
	kafkax "github.com/vannda-dev/khqr-checkout.git/internal/kafka"
	"github.com/vannda-dev/khqr-checkout.git/internal/orders"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	if len(cfg.KafkaBrokers) == 0 {
		log.Fatal("KAFKA_BROKERS is required for the audit tail")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	group := getenv("AUDIT_GROUP", "qr-audit")
	workers := mustAtoi(os.Getenv("AUDIT_WORKERS"), 4)

	for _, topic := range []string{orders.TopicOrderCreated, orders.TopicOrderPaid} {
		cons := kafkax.NewConsumer(cfg.KafkaBrokers, group, topic, workers)
		go func(topic string) {
			log.Printf("audit consumer started: group=%s topic=%s workers=%d", group, topic, workers)
			if err := cons.Start(ctx, audit.LogEvent); err != nil {
				log.Printf("consumer exit: topic=%s err=%v", topic, err)
				cancel()
			}
		}(topic)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
		log.Println("shutting down audit tail...")
	case <-ctx.Done():
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func mustAtoi(s string, def int) int {
	if s == "" {
		return def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}
