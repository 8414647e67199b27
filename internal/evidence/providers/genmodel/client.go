// Package genmodel adapts the hosted prompt-model gateway to the evidence
// provider interfaces. Each verdict is one flow run: the request carries the
// flow input, the response carries the flow output as JSON.
package genmodel

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"surebet/internal/evidence/providers"
)

const (
	defaultTimeout  = 30 * time.Second
	maxResponseBody = 1 << 20

	finishReasonSafety = "SAFETY"
)

var tracer = otel.Tracer("surebet/genmodel")

// Config holds connection settings for the gateway.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client runs flows on the gateway and maps failures onto the provider error
// taxonomy.
type Client struct {
	baseURL  *url.URL
	apiKey   string
	timeout  time.Duration
	http     *http.Client
	validate *validator.Validate
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient overrides the transport, mainly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// NewClient creates a gateway client.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("genmodel: base url is required")
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("genmodel: parse base url: %w", err)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	c := &Client{
		baseURL:  base,
		apiKey:   cfg.APIKey,
		timeout:  timeout,
		http:     &http.Client{},
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type runRequest struct {
	Flow  string `json:"flow"`
	Input any    `json:"input"`
}

type runResponse struct {
	Output       json.RawMessage `json:"output"`
	FinishReason string          `json:"finishReason,omitempty"`
}

type errorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason"`
}

// Run executes flow with input and decodes the flow output into out. Output
// is decoded strictly and then checked against the validate tags of out.
// providerID is used to attribute errors.
func (c *Client) Run(ctx context.Context, providerID, flow string, input, out any) error {
	ctx, span := tracer.Start(ctx, "genmodel.Run", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("genmodel.flow", flow),
		attribute.String("provider.id", providerID),
	)

	err := c.run(ctx, providerID, flow, input, out)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(providers.GetCategory(err)))
	}
	return err
}

func (c *Client) run(ctx context.Context, providerID, flow string, input, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(runRequest{Flow: flow, Input: input})
	if err != nil {
		return providers.NewProviderError(providers.ErrorBadInput, providerID, "encode flow input", err)
	}

	endpoint := c.baseURL.JoinPath("v1", "flows", flow+":run")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return providers.NewProviderError(providers.ErrorInternal, providerID, "build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return transportError(ctx, providerID, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return transportError(ctx, providerID, err)
	}

	if resp.StatusCode != http.StatusOK {
		return statusError(providerID, resp.StatusCode, raw)
	}

	var envelope runResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return providers.NewProviderError(providers.ErrorMalformedOutput, providerID, "decode response envelope", err)
	}
	if strings.EqualFold(envelope.FinishReason, finishReasonSafety) {
		return providers.NewProviderError(providers.ErrorContentPolicy, providerID, "model refused input", nil)
	}
	if len(envelope.Output) == 0 || string(envelope.Output) == "null" {
		return providers.NewProviderError(providers.ErrorMalformedOutput, providerID, "empty flow output", nil)
	}

	dec := json.NewDecoder(bytes.NewReader(envelope.Output))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return providers.NewProviderError(providers.ErrorMalformedOutput, providerID, "decode flow output", err)
	}
	if err := c.validate.Struct(out); err != nil {
		return providers.NewProviderError(providers.ErrorMalformedOutput, providerID, "flow output failed validation", err)
	}
	return nil
}

func transportError(ctx context.Context, providerID string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return providers.NewProviderError(providers.ErrorTimeout, providerID, "flow run timed out", err)
	}
	if errors.Is(err, context.Canceled) {
		return providers.NewProviderError(providers.ErrorInternal, providerID, "flow run canceled", err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return providers.NewProviderError(providers.ErrorTimeout, providerID, "flow run timed out", err)
	}
	return providers.NewProviderError(providers.ErrorProviderOutage, providerID, "gateway unreachable", err)
}

func statusError(providerID string, status int, body []byte) error {
	var payload errorResponse
	_ = json.Unmarshal(body, &payload)
	underlying := fmt.Errorf("status %d", status)
	if payload.Error != "" {
		underlying = fmt.Errorf("status %d: %s", status, payload.Error)
	}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return providers.NewProviderError(providers.ErrorAuthentication, providerID, "gateway rejected credentials", underlying)
	case status == http.StatusTooManyRequests:
		return providers.NewProviderError(providers.ErrorRateLimited, providerID, "gateway rate limit", underlying)
	case status == http.StatusUnprocessableEntity && payload.Reason == "content_policy":
		return providers.NewProviderError(providers.ErrorContentPolicy, providerID, "model refused input", underlying)
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return providers.NewProviderError(providers.ErrorTimeout, providerID, "gateway timed out", underlying)
	case status >= 500:
		return providers.NewProviderError(providers.ErrorProviderOutage, providerID, "gateway error", underlying)
	case status >= 400:
		return providers.NewProviderError(providers.ErrorBadInput, providerID, "gateway rejected request", underlying)
	default:
		return providers.NewProviderError(providers.ErrorMalformedOutput, providerID, "unexpected status", underlying)
	}
}
