package orders

import "time"

type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyKHR Currency = "KHR"
)

// WholeUnitsOnly reports whether the currency has no minor unit.
// Riel amounts are rounded to whole units before encoding.
func (c Currency) WholeUnitsOnly() bool { return c == CurrencyKHR }

func supportedCurrency(c Currency) bool {
	return c == CurrencyUSD || c == CurrencyKHR
}

type Order struct {
	ID             string
	Amount         float64
	Currency       Currency
	Fingerprint    string // MD5 of EncodedPayload, correlation key with the settlement network
	EncodedPayload string
	Status         Status
	CreatedAt      time.Time
	ExpiresAt      time.Time
}
