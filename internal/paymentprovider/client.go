// Package paymentprovider содержит HTTP-клиент платёжного шлюза Razorpay:
// создание заказов и проверка подписи подтверждения оплаты.
package paymentprovider

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultAPIURL адрес API Razorpay.
const DefaultAPIURL = "https://api.razorpay.com"

// Client клиент Razorpay с Basic-аутентификацией keyID:keySecret.
type Client struct {
	keyID      string
	keySecret  string
	apiURL     string
	httpClient *http.Client
}

// NewClient создаёт клиент. Пустой apiURL заменяется на DefaultAPIURL,
// timeout <= 0 на 10 секунд.
func NewClient(keyID, keySecret, apiURL string, timeout time.Duration) *Client {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		keyID:      keyID,
		keySecret:  keySecret,
		apiURL:     strings.TrimRight(apiURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// KeyID публичный идентификатор ключа, который отдаётся клиенту для checkout.
func (c *Client) KeyID() string {
	return c.keyID
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, c.apiURL+path, &buf)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.keyID, c.keySecret)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// CreateOrder создаёт заказ. Ошибки транспорта и ответы не из диапазона 2xx
// возвращаются как есть, без повторных попыток.
func (c *Client) CreateOrder(ctx context.Context, reqParams OrderRequest) (*Order, error) {
	const op = "paymentprovider.CreateOrder"
	req, err := c.newRequest(ctx, http.MethodPost, "/v1/orders", reqParams)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%s: %w", op, statusError(resp))
	}

	var order Order
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, fmt.Errorf("%s: decode response: %w", op, err)
	}
	if order.ID == "" {
		return nil, fmt.Errorf("%s: empty order id in response", op)
	}
	return &order, nil
}

func statusError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var er errorResponse
	if json.Unmarshal(raw, &er) == nil && er.Error.Description != "" {
		return fmt.Errorf("unexpected status %s: %s (%s)", resp.Status, er.Error.Description, er.Error.Code)
	}
	return fmt.Errorf("unexpected status %s", resp.Status)
}

// Signature возвращает hex(HMAC-SHA256(secret, orderID + "|" + paymentID)).
func Signature(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature сравнивает подпись подтверждения оплаты за постоянное время.
func (c *Client) VerifySignature(orderID, paymentID, signature string) bool {
	expected := Signature(c.keySecret, orderID, paymentID)
	return hmac.Equal([]byte(expected), []byte(signature))
}
