package paystack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"engracedsmile/internal/shared/apperrors"
	"engracedsmile/internal/shared/config"
)

const (
	defaultBaseURL  = "https://api.paystack.co"
	defaultCurrency = "NGN"
	defaultTimeout  = 10 * time.Second
	maxResponseBody = 1 << 20
)

// Client talks to the Paystack transaction API. It never touches booking
// or inventory state.
type Client struct {
	secretKey  string
	publicKey  string
	baseURL    string
	currency   string
	timeout    time.Duration
	httpClient *http.Client
}

// NewClient builds a client from the gateway config, filling defaults for
// any missing base URL, currency or timeout
func NewClient(cfg config.PaystackConfig) *Client {
	c := &Client{
		secretKey:  cfg.SecretKey,
		publicKey:  cfg.PublicKey,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		currency:   cfg.Currency,
		timeout:    cfg.VerifyTimeout,
		httpClient: &http.Client{},
	}
	if c.baseURL == "" {
		c.baseURL = defaultBaseURL
	}
	if c.currency == "" {
		c.currency = defaultCurrency
	}
	if c.timeout <= 0 {
		c.timeout = defaultTimeout
	}
	return c
}

// VerifyResult is the outcome of a transaction lookup
type VerifyResult struct {
	Succeeded bool
	Amount    int64 // kobo; zero when the gateway omitted it
	Status    string
	Raw       json.RawMessage
}

type verifyResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    *struct {
		Status    string `json:"status"`
		Amount    int64  `json:"amount"`
		Reference string `json:"reference"`
		Currency  string `json:"currency"`
	} `json:"data"`
}

// VerifyTransaction looks a transaction up by reference. Transport errors,
// timeouts, non-2xx replies and undecodable bodies all come back as
// ErrGatewayUnavailable. Only status=true with data.status "success"
// counts as a successful charge.
func (c *Client) VerifyTransaction(ctx context.Context, reference string) (*VerifyResult, error) {
	if strings.TrimSpace(reference) == "" {
		return nil, apperrors.NewValidation("reference", "is required")
	}

	raw, err := c.do(ctx, http.MethodGet, "/transaction/verify/"+url.PathEscape(reference), nil)
	if err != nil {
		return nil, err
	}

	var resp verifyResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode verify response: %v: %w", err, apperrors.ErrGatewayUnavailable)
	}

	result := &VerifyResult{Raw: raw}
	if resp.Data != nil {
		result.Status = resp.Data.Status
		result.Amount = resp.Data.Amount
	}
	result.Succeeded = resp.Status && result.Status == "success"
	return result, nil
}

// InitiateRefund asks the gateway to refund a transaction in full
func (c *Client) InitiateRefund(ctx context.Context, reference string) error {
	body, err := json.Marshal(map[string]string{"transaction": reference})
	if err != nil {
		return fmt.Errorf("failed to encode refund request: %w", err)
	}

	raw, err := c.do(ctx, http.MethodPost, "/refund", body)
	if err != nil {
		return err
	}

	var resp struct {
		Status  bool   `json:"status"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return fmt.Errorf("decode refund response: %v: %w", err, apperrors.ErrGatewayUnavailable)
	}
	if !resp.Status {
		return fmt.Errorf("refund rejected: %s: %w", resp.Message, apperrors.ErrGatewayUnavailable)
	}
	return nil
}

// do performs one authenticated request bounded by the client timeout
func (c *Client) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %v: %w", method, path, err, apperrors.ErrGatewayUnavailable)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %v: %w", method, path, err, apperrors.ErrGatewayUnavailable)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("read %s %s: %v: %w", method, path, err, apperrors.ErrGatewayUnavailable)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%s %s returned %d: %w", method, path, resp.StatusCode, apperrors.ErrGatewayUnavailable)
	}
	return raw, nil
}
