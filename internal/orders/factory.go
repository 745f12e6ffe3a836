package orders

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"
)

// Codec turns payload-construction parameters into the encoded payment string
// and its fingerprint. Implemented by internal/khqr.
type Codec interface {
	Encode(req EncodeRequest) (Encoding, error)
}

type EncodeRequest struct {
	AccountID    string // <holder>@<participant>
	MerchantName string
	MerchantCity string
	Amount       float64
	Currency     Currency
	CategoryCode string
	BillNumber   string // order id, echoed back by the settlement network
	Purpose      string
	CreatedAt    time.Time
	ExpiresAt    time.Time
}

type Encoding struct {
	Payload     string
	Fingerprint string
}

// Rasterizer renders an encoded payload as a displayable image.
type Rasterizer interface {
	RenderDataURI(payload string) (string, error)
}

type MerchantIdentity struct {
	AccountID string
	Name      string
	City      string
}

// DefaultValidity bounds how long a minted QR stays payable. The window is
// embedded in the payload itself and enforced by the scanning app, not by us.
const DefaultValidity = 10 * time.Minute

// Factory mints orders: id, normalized amount/currency, encoded payload,
// fingerprint. It never touches the ledger; registering is the caller's step.
type Factory struct {
	Merchant        MerchantIdentity
	DefaultCurrency Currency
	IDPrefix        string
	Validity        time.Duration
	Codec           Codec
	Rasterizer      Rasterizer

	now  func() time.Time // test hook
	intN func(n int) int  // test hook
}

// CreateOrder validates the request and mints a PENDING order plus its QR
// image. The returned order is not yet registered anywhere.
func (f *Factory) CreateOrder(amount float64, currency string) (*Order, string, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return nil, "", ErrInvalidAmount
	}

	cur := f.DefaultCurrency
	if currency != "" {
		cur = Currency(strings.ToUpper(strings.TrimSpace(currency)))
		if !supportedCurrency(cur) {
			return nil, "", ErrInvalidCurrency
		}
	}

	holder, participant, ok := strings.Cut(f.Merchant.AccountID, "@")
	if !ok || holder == "" || participant == "" {
		return nil, "", ErrMisconfiguredMerchant
	}

	if cur.WholeUnitsOnly() {
		amount = math.Round(amount)
		if amount <= 0 {
			return nil, "", ErrInvalidAmount
		}
	}

	now := f.clock()
	validity := f.Validity
	if validity <= 0 {
		validity = DefaultValidity
	}
	expiresAt := now.Add(validity)
	id := f.newID(now)

	enc, err := f.Codec.Encode(EncodeRequest{
		AccountID:    f.Merchant.AccountID,
		MerchantName: f.Merchant.Name,
		MerchantCity: f.Merchant.City,
		Amount:       amount,
		Currency:     cur,
		BillNumber:   id,
		Purpose:      "payment for order " + id,
		CreatedAt:    now,
		ExpiresAt:    expiresAt,
	})
	if err != nil {
		return nil, "", &EncodingError{Detail: err.Error()}
	}

	img, err := f.Rasterizer.RenderDataURI(enc.Payload)
	if err != nil {
		return nil, "", &EncodingError{Detail: err.Error()}
	}

	return &Order{
		ID:             id,
		Amount:         amount,
		Currency:       cur,
		Fingerprint:    enc.Fingerprint,
		EncodedPayload: enc.Payload,
		Status:         StatusPending,
		CreatedAt:      now,
		ExpiresAt:      expiresAt,
	}, img, nil
}

// newID builds <prefix>-<yyyymmddhhmmss>-<nnn>. Uniqueness is best-effort:
// within one second it relies on the 3-digit suffix.
func (f *Factory) newID(now time.Time) string {
	prefix := f.IDPrefix
	if prefix == "" {
		prefix = "ORD"
	}
	intN := f.intN
	if intN == nil {
		intN = rand.Intn
	}
	return fmt.Sprintf("%s-%s-%03d", prefix, now.Format("20060102150405"), intN(1000))
}

func (f *Factory) clock() time.Time {
	if f.now != nil {
		return f.now()
	}
	return time.Now()
}
