// Package chapa is an HTTP client for the Chapa payment gateway.
package chapa

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v3"
	"github.com/goccy/go-json"
	circuit "github.com/rubyist/circuitbreaker"
	"go.uber.org/zap"
)

const maxResponseBytes = 1 << 20

var (
	// ErrMalformedResponse is returned when the gateway body cannot be decoded.
	ErrMalformedResponse = errors.New("malformed gateway response")

	// ErrCircuitOpen is returned while the breaker rejects calls.
	ErrCircuitOpen = circuit.ErrBreakerOpen
)

// APIError is a non-success response from the gateway.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("chapa: status %d: %s", e.StatusCode, e.Message)
}

// Temporary reports whether retrying the same request may succeed.
func (e *APIError) Temporary() bool {
	return e.StatusCode >= http.StatusInternalServerError
}

// Config holds gateway connection settings.
type Config struct {
	BaseURL          string
	SecretKey        string
	Timeout          time.Duration // per attempt
	MaxAttempts      int
	RetryInterval    time.Duration
	BreakerThreshold int64
}

// Client calls the Chapa REST API with retry and a circuit breaker.
type Client struct {
	cfg    Config
	http   *circuit.HTTPClient
	logger *zap.Logger
}

// NewClient creates a new Client. transport may be nil to use the default.
func NewClient(cfg Config, transport http.RoundTripper, logger *zap.Logger) *Client {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.BreakerThreshold < 1 {
		cfg.BreakerThreshold = 5
	}
	if transport == nil {
		transport = http.DefaultTransport
	}

	// Each attempt is bounded by its request context in do.
	breaker := circuit.NewConsecutiveBreaker(cfg.BreakerThreshold)
	httpClient := circuit.NewHTTPClientWithBreaker(breaker, 0, &http.Client{Transport: transport})

	return &Client{
		cfg:    cfg,
		http:   httpClient,
		logger: logger,
	}
}

// Initialize creates a hosted checkout session.
func (c *Client) Initialize(ctx context.Context, req InitializeRequest) (*InitializeResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	env, err := c.call(ctx, http.MethodPost, "/transaction/initialize", body)
	if err != nil {
		return nil, err
	}

	var data checkoutData
	if err := json.Unmarshal(env.Data, &data); err != nil || data.CheckoutURL == "" {
		return nil, fmt.Errorf("%w: missing checkout_url", ErrMalformedResponse)
	}

	return &InitializeResponse{CheckoutURL: data.CheckoutURL, Raw: env.Data}, nil
}

// Verify fetches the gateway status of a transaction.
func (c *Client) Verify(ctx context.Context, txRef string) (*VerifyResponse, error) {
	env, err := c.call(ctx, http.MethodGet, "/transaction/verify/"+txRef, nil)
	if err != nil {
		return nil, err
	}

	var tx Transaction
	if err := json.Unmarshal(env.Data, &tx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	return &VerifyResponse{Transaction: tx, Raw: env.Data}, nil
}

// call performs one logical request, retrying transient failures.
func (c *Client) call(ctx context.Context, method, path string, body []byte) (*envelope, error) {
	var (
		env     *envelope
		attempt int
	)

	op := func() error {
		attempt++
		var err error
		env, err = c.do(ctx, method, path, body)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil || !retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(c.cfg.RetryInterval), uint64(c.cfg.MaxAttempts-1)),
		ctx,
	)

	notify := func(err error, wait time.Duration) {
		c.logger.Warn("chapa request failed, retrying",
			zap.String("path", path),
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
	}

	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		return nil, err
	}

	return env, nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) (*envelope, error) {
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(c.cfg.BaseURL, "/")+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.SecretKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, err
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode != http.StatusOK || decodeErr != nil || env.Status != StatusSuccess {
		if resp.StatusCode == http.StatusOK && decodeErr != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, decodeErr)
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: messageText(env.Message, resp.Status)}
	}

	return &env, nil
}

// retryable reports whether err is a transport failure, an attempt timeout
// or a 5xx.
func retryable(err error) bool {
	if errors.Is(err, circuit.ErrBreakerOpen) || errors.Is(err, ErrMalformedResponse) {
		return false
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Temporary()
	}

	return true
}

// messageText flattens the gateway message, which is a string or an object
// of field errors.
func messageText(raw json.RawMessage, fallback string) string {
	if len(raw) == 0 {
		return fallback
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	return string(raw)
}
