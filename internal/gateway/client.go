package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// ErrGatewayUnreachable means the charge call failed before a definitive
// gateway answer: the true outcome is unknown. The caller may retry, but
// only with a fresh reference; the gateway may have half-processed this one.
var ErrGatewayUnreachable = errors.New("payment gateway unreachable")

// RejectedError is a definitive gateway-level refusal. Retrying with the
// same charge data will not help.
type RejectedError struct {
	Message string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("payment rejected: %s", e.Message)
}

// ChargeRequest is one checkout attempt's outbound charge. Reference is
// generated per attempt and never reused.
type ChargeRequest struct {
	Reference       string                 `json:"reference"`
	AmountInCents   int64                  `json:"amount_in_cents"`
	Currency        string                 `json:"currency"`
	CustomerEmail   string                 `json:"customer_email"`
	PaymentMethod   map[string]interface{} `json:"payment_method"`
	AcceptanceToken string                 `json:"acceptance_token"`
	Signature       string                 `json:"signature"`
	SessionID       string                 `json:"session_id,omitempty"`
}

// ChargeResult is the gateway's immediate answer. Status here is usually
// PENDING or APPROVED and is never treated as final; the webhook settles it.
type ChargeResult struct {
	TransactionID string
	Status        string
}

type chargeResponse struct {
	Data struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	} `json:"data"`
	Error *struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	} `json:"error"`
}

type Config struct {
	BaseURL    string
	PrivateKey string
	Timeout    time.Duration
}

type Client struct {
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[*ChargeResult]
	baseURL    string
	privateKey string
	timeout    time.Duration
}

func NewClient(cfg Config) *Client {
	settings := gobreaker.Settings{
		Name:    "payment-gateway",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// a rejected charge is a gateway answer, not a gateway outage
		IsSuccessful: func(err error) bool {
			return err == nil || !errors.Is(err, ErrGatewayUnreachable)
		},
	}

	return &Client{
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		breaker:    gobreaker.NewCircuitBreaker[*ChargeResult](settings),
		baseURL:    cfg.BaseURL,
		privateKey: cfg.PrivateKey,
		timeout:    cfg.Timeout,
	}
}

// Charge performs the single outbound call for one checkout attempt and
// classifies the outcome: transport failure, gateway rejection, or accepted.
func (c *Client) Charge(ctx context.Context, req *ChargeRequest) (*ChargeResult, error) {
	result, err := c.breaker.Execute(func() (*ChargeResult, error) {
		return c.doCharge(ctx, req)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: circuit breaker open", ErrGatewayUnreachable)
	}
	return result, err
}

func (c *Client) doCharge(ctx context.Context, req *ChargeRequest) (*ChargeResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal charge request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/transactions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build charge request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.privateKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		// includes timeouts: the outcome is unknown, never record a decline
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnreachable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrGatewayUnreachable, err)
	}

	var parsed chargeResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		if resp.StatusCode >= 400 {
			return nil, &RejectedError{Message: fmt.Sprintf("gateway returned HTTP %d", resp.StatusCode)}
		}
		return nil, fmt.Errorf("%w: malformed response: %v", ErrGatewayUnreachable, err)
	}

	if parsed.Error != nil {
		return nil, &RejectedError{Message: parsed.Error.Reason}
	}
	if resp.StatusCode >= 400 {
		return nil, &RejectedError{Message: fmt.Sprintf("gateway returned HTTP %d", resp.StatusCode)}
	}
	if parsed.Data.ID == "" {
		return nil, &RejectedError{Message: "gateway returned no transaction id"}
	}

	return &ChargeResult{
		TransactionID: parsed.Data.ID,
		Status:        parsed.Data.Status,
	}, nil
}
