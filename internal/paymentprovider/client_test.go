package paymentprovider

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

func TestClient_CreateOrder(t *testing.T) {
	var got OrderRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/orders", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "rzp_test_key", user)
		assert.Equal(t, "rzp_secret", pass)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(Order{
			ID:       "order_ABC123",
			Entity:   "order",
			Amount:   got.Amount,
			Currency: got.Currency,
			Receipt:  got.Receipt,
			Status:   "created",
		})
	}))
	defer srv.Close()

	c := NewClient("rzp_test_key", "rzp_secret", srv.URL+"/", time.Second)
	order, err := c.CreateOrder(context.Background(), OrderRequest{
		Amount:   79900,
		Currency: "INR",
		Receipt:  "rcpt_abcdef_12345678",
		Notes:    map[string]string{"packageType": "Growth"},
	})
	require.NoError(t, err)

	assert.Equal(t, "order_ABC123", order.ID)
	assert.Equal(t, int64(79900), order.Amount)
	assert.Equal(t, int64(79900), got.Amount)
	assert.Equal(t, "INR", got.Currency)
	assert.Equal(t, "Growth", got.Notes["packageType"])
	assert.Equal(t, "rzp_test_key", c.KeyID())
}

func TestClient_CreateOrder_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantMsg string
	}{
		{
			name: "gateway error with description",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"error":{"code":"BAD_REQUEST_ERROR","description":"amount exceeds maximum"}}`))
			},
			wantMsg: "amount exceeds maximum",
		},
		{
			name: "bad gateway",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			},
			wantMsg: "502",
		},
		{
			name: "invalid json",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`not-json`))
			},
			wantMsg: "decode response",
		},
		{
			name: "empty order id",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"amount":100}`))
			},
			wantMsg: "empty order id",
		},
		{
			name: "timeout",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				time.Sleep(200 * time.Millisecond)
				w.WriteHeader(http.StatusOK)
			},
			wantMsg: "Client.Timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			c := NewClient("key", "secret", srv.URL, 50*time.Millisecond)
			order, err := c.CreateOrder(context.Background(), OrderRequest{Amount: 100, Currency: "INR"})
			require.Error(t, err)
			assert.Nil(t, order)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestClient_CreateOrder_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient("key", "secret", url, time.Second)
	_, err := c.CreateOrder(context.Background(), OrderRequest{Amount: 100, Currency: "INR"})
	assert.Error(t, err)
}

func TestVerifySignature(t *testing.T) {
	c := NewClient("key", "rzp_secret", "", 0)
	valid := Signature("rzp_secret", "order_1", "pay_1")
	assert.Equal(t, "15e54fc994958b03e5d550900551f2224e4bc3f71ed65272552271e2d4c1b713", valid)

	tests := []struct {
		name      string
		orderID   string
		paymentID string
		signature string
		want      bool
	}{
		{name: "valid", orderID: "order_1", paymentID: "pay_1", signature: valid, want: true},
		{name: "swapped ids", orderID: "pay_1", paymentID: "order_1", signature: valid},
		{name: "other payment", orderID: "order_1", paymentID: "pay_2", signature: valid},
		{name: "uppercase hex", orderID: "order_1", paymentID: "pay_1", signature: upper(valid)},
		{name: "empty signature", orderID: "order_1", paymentID: "pay_1", signature: ""},
		{name: "other secret", orderID: "order_1", paymentID: "pay_1", signature: Signature("other", "order_1", "pay_1")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.VerifySignature(tt.orderID, tt.paymentID, tt.signature))
		})
	}
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient("key", "secret", "", 0)
	assert.Equal(t, DefaultAPIURL, c.apiURL)
	assert.Equal(t, 10*time.Second, c.httpClient.Timeout)
}

func upper(s string) string {
	b := []byte(s)
	for i, ch := range b {
		if ch >= 'a' && ch <= 'f' {
			b[i] = ch - 'a' + 'A'
		}
	}
	return string(b)
}
