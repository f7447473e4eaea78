package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Webpay transaction statuses as returned by the gateway.
const (
	WebpayAuthorized = "AUTHORIZED"
	WebpayFailed     = "FAILED"
)

// WebpayCrearRequest creates a transaction in the gateway. The amount is an
// integer because CLP has no minor unit.
type WebpayCrearRequest struct {
	BuyOrder  string `json:"buy_order"`
	SessionID string `json:"session_id"`
	Amount    int64  `json:"amount"`
	ReturnURL string `json:"return_url"`
}

// WebpayCrearResponse carries the token the shopper is redirected with.
type WebpayCrearResponse struct {
	Token string `json:"token"`
	URL   string `json:"url"`
}

// WebpayConfirmarResponse is returned by PUT /transactions/{token} when the
// shopper comes back from the payment form.
type WebpayConfirmarResponse struct {
	Status            string `json:"status"` // "AUTHORIZED" | "FAILED"
	BuyOrder          string `json:"buy_order"`
	Amount            int64  `json:"amount"`
	AuthorizationCode string `json:"authorization_code"`
	PaymentTypeCode   string `json:"payment_type_code"`
	TransactionDate   string `json:"transaction_date"`
	ResponseCode      int    `json:"response_code"`
}

// WebpayClient talks to the Transbank Webpay Plus REST API. All calls go out
// through the caller-supplied context so checkout requests can bail on their
// own deadline.
type WebpayClient struct {
	baseURL      string
	commerceCode string
	apiKey       string
	httpClient   *http.Client
}

func NewWebpayClient(baseURL, commerceCode, apiKey string) *WebpayClient {
	return &WebpayClient{
		baseURL:      baseURL,
		commerceCode: commerceCode,
		apiKey:       apiKey,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Crear registers the transaction and returns the token + redirect URL.
func (c *WebpayClient) Crear(ctx context.Context, payload WebpayCrearRequest) (*WebpayCrearResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("webpay: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/rswebpaytransaction/api/webpay/v1.2/transactions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("webpay: create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("webpay: gateway unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("webpay: gateway returned %d", resp.StatusCode)
	}

	var result WebpayCrearResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("webpay: decode response: %w", err)
	}
	return &result, nil
}

// Confirmar commits the transaction identified by token and returns its
// final status. A FAILED status is not an error: the caller decides what a
// rejected payment means for the order.
func (c *WebpayClient) Confirmar(ctx context.Context, token string) (*WebpayConfirmarResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+"/rswebpaytransaction/api/webpay/v1.2/transactions/"+token, nil)
	if err != nil {
		return nil, fmt.Errorf("webpay: create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("webpay: gateway unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("webpay: gateway returned %d", resp.StatusCode)
	}

	var result WebpayConfirmarResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("webpay: decode response: %w", err)
	}
	return &result, nil
}

func (c *WebpayClient) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Tbk-Api-Key-Id", c.commerceCode)
	req.Header.Set("Tbk-Api-Key-Secret", c.apiKey)
}
