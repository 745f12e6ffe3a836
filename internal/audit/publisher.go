// Package audit streams order lifecycle events to back-office consumers.
// Clients still learn about payment by polling; this stream exists for
// bookkeeping, not notification.
package audit

import (
	"context"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/vannda-dev/khqr-checkout.git/internal/kafka"
	"github.com/vannda-dev/khqr-checkout.git/internal/orders"
)

// Publisher implements orders.EventSink on top of two topic producers.
// OrderPaid is invoked at most once per order by the ledger's transition
// guard, so the paid stream carries no duplicates from this process.
type Publisher struct {
	Created     *kafkax.Producer
	Paid        *kafkax.Producer
	ServiceName string
}

func (p *Publisher) OrderCreated(ctx context.Context, o *orders.Order) {
	payload := kafkax.MustMarshal(orders.OrderCreatedPayload{
		OrderID:     o.ID,
		Fingerprint: o.Fingerprint,
		Amount:      o.Amount,
		Currency:    string(o.Currency),
		ExpiresAt:   o.ExpiresAt,
	})
	p.publish(ctx, p.Created, orders.EventOrderCreated, o.ID, payload)
}

func (p *Publisher) OrderPaid(ctx context.Context, o *orders.Order) {
	payload := kafkax.MustMarshal(orders.OrderPaidPayload{
		OrderID:     o.ID,
		Fingerprint: o.Fingerprint,
		Amount:      o.Amount,
		Currency:    string(o.Currency),
	})
	p.publish(ctx, p.Paid, orders.EventOrderPaid, o.ID, payload)
}

func (p *Publisher) publish(ctx context.Context, prod *kafkax.Producer, eventType, orderID string, payload []byte) {
	ev := newEnvelope(ctx, p.ServiceName, eventType, orderID, payload)
	prod.Publish(orders.PartitionKey(orderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

// newEnvelope stamps the envelope with the triggering request's id so an
// order event can be tied back to its API call.
func newEnvelope(ctx context.Context, producer, eventType, orderID string, payload []byte) orders.Envelope {
	return orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      producer,
		TraceID:       middleware.GetReqID(ctx),
		CorrelationID: orderID,
		Payload:       payload,
	}
}
