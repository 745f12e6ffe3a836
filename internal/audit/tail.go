package audit

import (
	"context"
	"encoding/json"
	"log"

	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/vannda-dev/khqr-checkout.git/internal/kafka"
	"github.com/vannda-dev/khqr-checkout.git/internal/orders"
)

// LogEvent is the consumer handler for cmd/audit: it decodes an envelope and
// writes one log line per order event.
func LogEvent(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}

	switch env.EventType {
	case orders.EventOrderCreated:
		p, err := kafkax.UnwrapPayload[orders.OrderCreatedPayload](env.Payload)
		if err != nil {
			return err
		}
		log.Printf("[%s] order=%s amount=%.2f %s fingerprint=%s expires=%s producer=%s",
			env.EventType, p.OrderID, p.Amount, p.Currency, p.Fingerprint, p.ExpiresAt.Format("15:04:05"), env.Producer)
	case orders.EventOrderPaid:
		p, err := kafkax.UnwrapPayload[orders.OrderPaidPayload](env.Payload)
		if err != nil {
			return err
		}
		log.Printf("[%s] order=%s amount=%.2f %s fingerprint=%s producer=%s",
			env.EventType, p.OrderID, p.Amount, p.Currency, p.Fingerprint, env.Producer)
	default:
		log.Printf("[%s] order=%s (unhandled event type)", env.EventType, env.CorrelationID)
	}
	return nil
}
