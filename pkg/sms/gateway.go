// Package sms delivers text messages through the configured HTTP gateway.
package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	defaultAPIKeyHeader = "X-API-KEY"
	defaultTimeout      = 10 * time.Second
	maxResponseBytes    = 64 << 10
)

// Config describes the gateway endpoint.
type Config struct {
	URL          string
	APIKey       string
	APIKeyHeader string
	Timeout      time.Duration
}

// Client posts {mobile, msg} payloads to the gateway.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *zap.Logger
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client used for dispatch.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// NewClient constructs a gateway client. A client with no URL or key is valid
// but every send fails with a configuration error.
func NewClient(cfg Config, logger *zap.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.APIKeyHeader == "" {
		cfg.APIKeyHeader = defaultAPIKeyHeader
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	c := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type sendRequest struct {
	Mobile string `json:"mobile"`
	Msg    string `json:"msg"`
}

type sendResponse struct {
	Status  string `json:"status"`
	Error   *bool  `json:"error"`
	Message string `json:"message"`
}

// SendTextMessage dispatches one message. It never returns an error: every
// failure is logged with its reason and reported as false.
func (c *Client) SendTextMessage(ctx context.Context, phone, message string) bool {
	if err := c.send(ctx, phone, message); err != nil {
		c.logger.Warn("sms dispatch failed", zap.String("mobile", phone), zap.Error(err))
		return false
	}
	c.logger.Debug("sms dispatched", zap.String("mobile", phone))
	return true
}

func (c *Client) send(ctx context.Context, phone, message string) error {
	if c.cfg.URL == "" || c.cfg.APIKey == "" {
		return ErrNotConfigured
	}

	body, err := json.Marshal(sendRequest{Mobile: phone, Msg: message})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(c.cfg.APIKeyHeader, c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("transport: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	var parsed sendResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if parsed.Error != nil && *parsed.Error {
		return fmt.Errorf("%w: %s", ErrRejected, parsed.Message)
	}
	switch strings.ToLower(strings.TrimSpace(parsed.Status)) {
	case "error", "failed", "failure":
		return fmt.Errorf("%w: %s", ErrRejected, parsed.Message)
	}
	return nil
}
