package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"travel/internal/domain"
)

const (
	statusSuccess = "success"

	// maxResponseBytes caps how much of a gateway response is read.
	maxResponseBytes = 1 << 20
)

// Config holds the gateway endpoint and credentials.
type Config struct {
	BaseURL   string
	SecretKey string
	Timeout   time.Duration
}

// Client talks to the payment gateway REST API. It performs no retries and
// never mutates domain records.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *zap.Logger
}

// NewClient creates a gateway client. Outgoing calls are traced as New Relic
// external segments when the request context carries a transaction.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	return &Client{
		cfg: cfg,
		http: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: newrelic.NewRoundTripper(http.DefaultTransport),
		},
		logger: logger.Named("gateway"),
	}
}

// InitializeResult is the gateway acknowledgment of a registered transaction.
type InitializeResult struct {
	TransactionID string
	CheckoutURL   string
	Raw           json.RawMessage
}

// VerifyResult is the gateway confirmation of a completed transaction.
type VerifyResult struct {
	Status string
	Raw    json.RawMessage
}

type envelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
}

type initializeData struct {
	TransactionID string `json:"transaction_id"`
	CheckoutURL   string `json:"checkout_url"`
}

// Initialize registers a payment with the gateway.
func (c *Client) Initialize(ctx context.Context, in InitiateInput, baseURL string) (*InitializeResult, error) {
	req := c.BuildInitiateRequest(in, baseURL)

	env, raw, err := c.send(ctx, "initialize", req)
	if err != nil {
		c.logger.Warn("initialize failed",
			zap.String("payment_id", in.Payment.ID),
			zap.String("tx_ref", in.Payment.Reference),
			zap.Error(err))
		return nil, err
	}

	var data initializeData
	if len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, &data); err != nil {
			return nil, fmt.Errorf("%w: malformed initialize data: %v", ErrUnavailable, err)
		}
	}

	c.logger.Info("transaction initialized",
		zap.String("payment_id", in.Payment.ID),
		zap.String("transaction_id", data.TransactionID))

	return &InitializeResult{
		TransactionID: data.TransactionID,
		CheckoutURL:   data.CheckoutURL,
		Raw:           raw,
	}, nil
}

// Verify asks the gateway whether an initiated payment was completed.
func (c *Client) Verify(ctx context.Context, payment *domain.Payment) (*VerifyResult, error) {
	req := c.BuildVerifyRequest(payment)

	env, raw, err := c.send(ctx, "verify", req)
	if err != nil {
		c.logger.Warn("verify failed",
			zap.String("payment_id", payment.ID),
			zap.String("transaction_id", payment.TransactionID),
			zap.Error(err))
		return nil, err
	}

	return &VerifyResult{Status: env.Status, Raw: raw}, nil
}

// send performs one HTTP exchange and classifies the outcome.
func (c *Client) send(ctx context.Context, operation string, req *Request) (*envelope, json.RawMessage, error) {
	timer := prometheus.NewTimer(gatewayLatency.WithLabelValues(operation))
	defer timer.ObserveDuration()

	var body io.Reader
	if req.Payload != nil {
		encoded, err := json.Marshal(req.Payload)
		if err != nil {
			return nil, nil, fmt.Errorf("encode %s payload: %w", operation, err)
		}
		body = bytes.NewReader(encoded)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, nil, fmt.Errorf("build %s request: %w", operation, err)
	}
	httpReq.Header = req.Headers.Clone()

	resp, err := c.http.Do(httpReq)
	if err != nil {
		gatewayRequestsTotal.WithLabelValues(operation, outcomeUnavailable).Inc()
		return nil, nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		gatewayRequestsTotal.WithLabelValues(operation, outcomeUnavailable).Inc()
		return nil, nil, fmt.Errorf("%w: read response: %v", ErrUnavailable, err)
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		gatewayRequestsTotal.WithLabelValues(operation, outcomeUnavailable).Inc()
		return nil, nil, fmt.Errorf("%w: http %d", ErrUnavailable, resp.StatusCode)
	}

	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		gatewayRequestsTotal.WithLabelValues(operation, outcomeUnavailable).Inc()
		return nil, nil, fmt.Errorf("%w: unreadable response (http %d)", ErrUnavailable, resp.StatusCode)
	}

	if resp.StatusCode != http.StatusOK || env.Status != statusSuccess {
		gatewayRequestsTotal.WithLabelValues(operation, outcomeRejected).Inc()
		return nil, nil, &BusinessError{
			StatusCode: resp.StatusCode,
			Status:     env.Status,
			Details:    json.RawMessage(respBody),
		}
	}

	gatewayRequestsTotal.WithLabelValues(operation, outcomeSuccess).Inc()
	return &env, json.RawMessage(respBody), nil
}
