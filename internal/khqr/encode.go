// Package khqr encodes merchant-presented payment payloads in the EMVCo MPM
// tag-length-value format used by the national settlement network, and
// renders them as scannable QR images.
package khqr

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/vannda-dev/khqr-checkout.git/internal/orders"
)

const (
	tagPayloadFormat   = "00"
	tagInitiation      = "01"
	tagMerchantAccount = "29"
	tagCategoryCode    = "52"
	tagCurrency        = "53"
	tagAmount          = "54"
	tagCountryCode     = "58"
	tagMerchantName    = "59"
	tagMerchantCity    = "60"
	tagAdditionalData  = "62"
	tagTimestamps      = "99"
	tagCRC             = "63"
)

const (
	subAccountID  = "00"
	subBillNumber = "01"
	subPurpose    = "08" // purpose of transaction
	subCreatedMS  = "00"
	subExpiresMS  = "01"
)

const (
	payloadFormatV1     = "01"
	initiationDynamic   = "12" // one amount, one scan
	countryCode         = "KH"
	defaultCategoryCode = "5999"
)

// ISO 4217 numeric codes for the supported settlement currencies.
var currencyNumeric = map[orders.Currency]string{
	orders.CurrencyUSD: "840",
	orders.CurrencyKHR: "116",
}

const (
	maxNameLen    = 25
	maxCityLen    = 15
	maxAmountLen  = 13
	maxPurposeLen = 25
)

// Codec implements orders.Codec. The zero value is ready to use.
type Codec struct{}

func (Codec) Encode(req orders.EncodeRequest) (orders.Encoding, error) {
	if req.AccountID == "" {
		return orders.Encoding{}, errors.New("merchant account id is required")
	}
	if req.MerchantName == "" {
		return orders.Encoding{}, errors.New("merchant name is required")
	}
	if req.MerchantCity == "" {
		return orders.Encoding{}, errors.New("merchant city is required")
	}
	numeric, ok := currencyNumeric[req.Currency]
	if !ok {
		return orders.Encoding{}, fmt.Errorf("no numeric code for currency %q", req.Currency)
	}
	amount := formatAmount(req.Amount, req.Currency)
	if len(amount) > maxAmountLen {
		return orders.Encoding{}, fmt.Errorf("amount %s exceeds %d characters", amount, maxAmountLen)
	}

	created := req.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	category := req.CategoryCode
	if category == "" {
		category = defaultCategoryCode
	}

	var b builder
	b.field(tagPayloadFormat, payloadFormatV1)
	b.field(tagInitiation, initiationDynamic)
	b.template(tagMerchantAccount,
		sub{subAccountID, req.AccountID},
	)
	b.field(tagCategoryCode, category)
	b.field(tagCurrency, numeric)
	b.field(tagAmount, amount)
	b.field(tagCountryCode, countryCode)
	b.field(tagMerchantName, clip(req.MerchantName, maxNameLen))
	b.field(tagMerchantCity, clip(req.MerchantCity, maxCityLen))
	b.template(tagAdditionalData,
		sub{subBillNumber, req.BillNumber},
		sub{subPurpose, clip(req.Purpose, maxPurposeLen)},
	)
	if !req.ExpiresAt.IsZero() {
		b.template(tagTimestamps,
			sub{subCreatedMS, strconv.FormatInt(created.UnixMilli(), 10)},
			sub{subExpiresMS, strconv.FormatInt(req.ExpiresAt.UnixMilli(), 10)},
		)
	}
	if b.err != nil {
		return orders.Encoding{}, b.err
	}

	payload := b.sb.String() + tagCRC + "04"
	payload += fmt.Sprintf("%04X", crc16([]byte(payload)))

	return orders.Encoding{Payload: payload, Fingerprint: Fingerprint(payload)}, nil
}

// Fingerprint is the canonical correlation key for a payload: its MD5 hex
// digest, matching what the settlement network indexes transactions by.
func Fingerprint(payload string) string {
	sum := md5.Sum([]byte(payload))
	return hex.EncodeToString(sum[:])
}

type builder struct {
	sb  strings.Builder
	err error
}

// field appends one tag-length-value triple. Empty values are skipped.
func (b *builder) field(id, value string) {
	if b.err != nil || value == "" {
		return
	}
	if len(value) > 99 {
		b.err = fmt.Errorf("field %s value exceeds 99 characters", id)
		return
	}
	fmt.Fprintf(&b.sb, "%s%02d%s", id, len(value), value)
}

type sub struct {
	id    string
	value string
}

// template nests sub-fields under one tag. A sub-field error fails the whole
// encode; it must never fall through as a dropped tag.
func (b *builder) template(id string, subs ...sub) {
	var inner builder
	for _, s := range subs {
		inner.field(s.id, s.value)
	}
	if inner.err != nil {
		if b.err == nil {
			b.err = fmt.Errorf("template %s: %w", id, inner.err)
		}
		return
	}
	b.field(id, inner.sb.String())
}

func formatAmount(amount float64, cur orders.Currency) string {
	if cur.WholeUnitsOnly() {
		return strconv.FormatFloat(amount, 'f', 0, 64)
	}
	return strconv.FormatFloat(amount, 'f', 2, 64)
}

func clip(s string, max int) string {
	if len(s) > max {
		return s[:max]
	}
	return s
}
