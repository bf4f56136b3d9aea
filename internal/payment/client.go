// client.go

package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dukalabs/duka-server/internal/config"
)

var ErrGatewayUnavailable = errors.New("payment gateway unavailable")

const defaultTimeout = 10 * time.Second

// Gateway charges a customer through the configured mobile-money
// provider. The body of a gateway error is never surfaced to clients.
type Gateway interface {
	Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
}

type ChargeRequest struct {
	AmountCents int64  `json:"amount"`
	Currency    string `json:"currency"`
	Phone       string `json:"phone"`
	Reference   string `json:"reference"`
}

type ChargeResult struct {
	GatewayRef string `json:"gatewayRef"`
	Status     string `json:"status"`
}

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(cfg config.PaymentConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: cfg.GatewayURL,
		apiKey:  cfg.GatewayKey,
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) Charge(
	ctx context.Context,
	req ChargeRequest,
) (*ChargeResult, error) {
	if c.baseURL == "" {
		return nil, ErrGatewayUnavailable
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode charge request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+"/charges",
		bytes.NewReader(body),
	)
	if err != nil {
		return nil, fmt.Errorf("build charge request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Drain so the connection can be reused, discard the body.
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf(
			"%w: gateway returned %d", ErrGatewayUnavailable, resp.StatusCode,
		)
	}

	var result ChargeResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode charge response: %w", err)
	}

	return &result, nil
}
