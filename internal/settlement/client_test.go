package settlement

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckByFingerprintMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/check_transaction_by_md5", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		var body struct {
			MD5 string `json:"md5"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "d41d8cd98f00b204e9800998ecf8427e", body.MD5)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"responseCode":    0,
			"responseMessage": "success",
			"data": map[string]any{
				"hash":     body.MD5,
				"amount":   1.5,
				"currency": "USD",
			},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-token")
	rec, found, err := c.CheckByFingerprint(context.Background(), "d41d8cd98f00b204e9800998ecf8427e")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 1.5, rec.Amount)
	assert.Equal(t, "USD", rec.Currency)
	assert.Equal(t, "d41d8cd98f00b204e9800998ecf8427e", rec.Hash)
}

func TestCheckByFingerprintNoMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"responseCode":    1,
			"responseMessage": "transaction not found",
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-token")
	rec, found, err := c.CheckByFingerprint(context.Background(), "abc")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, rec)
}

func TestCheckByFingerprintUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-token")
	_, found, err := c.CheckByFingerprint(context.Background(), "abc")
	assert.Error(t, err)
	assert.False(t, found)
}

func TestCheckByFingerprintMatchWithoutData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"responseCode": 0, "responseMessage": "success"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-token")
	_, _, err := c.CheckByFingerprint(context.Background(), "abc")
	assert.Error(t, err)
}

func TestCheckByFingerprintTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-token")
	c.HTTP.Timeout = 50 * time.Millisecond

	_, _, err := c.CheckByFingerprint(context.Background(), "abc")
	assert.Error(t, err)
}
