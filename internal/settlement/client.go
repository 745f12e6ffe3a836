// Package settlement talks to the external settlement authority that knows
// whether a minted payment request was actually paid.
package settlement

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/vannda-dev/khqr-checkout.git/internal/orders"
)

const (
	checkPath = "/v1/check_transaction_by_md5"

	// One slow upstream call must not hang a poll forever.
	defaultTimeout = 10 * time.Second
)

// Response codes defined by the authority's API.
const (
	codeFound    = 0
	codeNotFound = 1
)

type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		BaseURL: baseURL,
		Token:   token,
		HTTP:    &http.Client{Timeout: defaultTimeout},
	}
}

type checkRequest struct {
	MD5 string `json:"md5"`
}

type checkResponse struct {
	ResponseCode    int    `json:"responseCode"`
	ResponseMessage string `json:"responseMessage"`
	Data            *struct {
		Hash          string  `json:"hash"`
		Amount        float64 `json:"amount"`
		Currency      string  `json:"currency"`
		FromAccountID string  `json:"fromAccountId"`
		ToAccountID   string  `json:"toAccountId"`
	} `json:"data"`
}

// CheckByFingerprint implements orders.SettlementChecker. found=false means
// the network has no settled transaction for the fingerprint yet.
func (c *Client) CheckByFingerprint(ctx context.Context, fingerprint string) (*orders.SettlementRecord, bool, error) {
	body, err := json.Marshal(checkRequest{MD5: fingerprint})
	if err != nil {
		return nil, false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+checkPath, bytes.NewReader(body))
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.Token)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("settlement request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("settlement: unexpected status %d", resp.StatusCode)
	}

	var cr checkResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return nil, false, fmt.Errorf("settlement: decode response: %w", err)
	}

	if cr.ResponseCode != codeFound {
		return nil, false, nil
	}
	if cr.Data == nil {
		return nil, false, fmt.Errorf("settlement: match response without data (%s)", cr.ResponseMessage)
	}

	return &orders.SettlementRecord{
		Hash:     cr.Data.Hash,
		Amount:   cr.Data.Amount,
		Currency: cr.Data.Currency,
	}, true, nil
}
