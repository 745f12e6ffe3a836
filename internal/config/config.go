package config

import (
	"os"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr    string
	ServiceName string

	// Settlement authority. An empty token runs the service in degraded
	// mode: orders are minted but never reconciled.
	SettlementBaseURL string
	SettlementToken   string

	// Merchant identity baked into every payload. The account id is the one
	// setting with no usable default; creation fails without it.
	MerchantAccount string
	MerchantName    string
	MerchantCity    string

	DefaultCurrency string
	OrderPrefix     string

	RedisAddr    string   // optional settled-status cache
	KafkaBrokers []string // optional audit event stream

	SweepInterval  time.Duration
	RetentionGrace time.Duration
}

func Load() Config {
	return Config{
		HTTPAddr:          getenv("HTTP_ADDR", ":8080"),
		ServiceName:       getenv("SERVICE_NAME", "qr-checkout-api"),
		SettlementBaseURL: getenv("SETTLEMENT_BASE_URL", "https://api-bakong.nbc.gov.kh"),
		SettlementToken:   getenv("SETTLEMENT_TOKEN", ""),
		MerchantAccount:   getenv("MERCHANT_ACCOUNT", ""),
		MerchantName:      getenv("MERCHANT_NAME", "Demo Cafe"),
		MerchantCity:      getenv("MERCHANT_CITY", "Phnom Penh"),
		DefaultCurrency:   getenv("DEFAULT_CURRENCY", "USD"),
		OrderPrefix:       getenv("ORDER_PREFIX", "CAFE"),
		RedisAddr:         getenv("REDIS_ADDR", ""),
		KafkaBrokers:      splitCSV(getenv("KAFKA_BROKERS", "")),
		SweepInterval:     getdur("SWEEP_INTERVAL", 10*time.Minute),
		RetentionGrace:    getdur("RETENTION_GRACE", time.Hour),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
