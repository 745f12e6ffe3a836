package orders

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidAmount         = errors.New("amount must be a number greater than zero")
	ErrInvalidCurrency       = errors.New("unsupported currency")
	ErrMisconfiguredMerchant = errors.New("merchant account id is missing or malformed")
	ErrDuplicateOrder        = errors.New("order id already registered")
	ErrOrderNotFound         = errors.New("order not found")
	ErrReconciliation        = errors.New("settlement check failed")
)

// EncodingError carries the codec's diagnostic. The detail is for server-side
// logs only; handlers return an opaque message to the client.
type EncodingError struct {
	Detail string
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("payload encoding failed: %s", e.Detail)
}
