package audit

import (
	"context"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vannda-dev/khqr-checkout.git/internal/orders"
)

func TestEnvelopeCarriesRequestID(t *testing.T) {
	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "api/req-42")

	env := newEnvelope(ctx, "qr-checkout-api", orders.EventOrderPaid, "CAFE-20260830103000-007", []byte(`{}`))
	require.NotEmpty(t, env.EventID)
	assert.Equal(t, orders.EventOrderPaid, env.EventType)
	assert.Equal(t, 1, env.EventVersion)
	assert.Equal(t, "qr-checkout-api", env.Producer)
	assert.Equal(t, "api/req-42", env.TraceID)
	assert.Equal(t, "CAFE-20260830103000-007", env.CorrelationID)
}

func TestEnvelopeWithoutRequestID(t *testing.T) {
	env := newEnvelope(context.Background(), "qr-checkout-api", orders.EventOrderCreated, "CAFE-1", nil)
	assert.Empty(t, env.TraceID)
}
