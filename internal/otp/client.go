// Package otp is the GraphQL client for the OpenTripPlanner routing backend.
package otp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/klauspost/compress/gzhttp"
	"golang.org/x/time/rate"
	"otpviewer.org/internal/logging"
)

const (
	graphQLPath     = "/gtfs/v1"
	maxResponseSize = 25 * 1024 * 1024
)

// ErrNotFound is returned when OTP answers with a null entity.
var ErrNotFound = errors.New("otp: entity not found")

// GraphQLError carries the "errors" member of a GraphQL response.
type GraphQLError struct {
	Messages []string
}

// Error joins the GraphQL messages.
func (e *GraphQLError) Error() string {
	return "otp graphql error: " + strings.Join(e.Messages, "; ")
}

// Config holds the OTP backend settings.
type Config struct {
	BaseURL         string
	AuthHeaderKey   string
	AuthHeaderValue string
	// ThrottleInterval spaces out throttled queries. Zero disables throttling.
	ThrottleInterval time.Duration
	Timeout          time.Duration
}

// Observer receives one call per GraphQL round trip.
type Observer interface {
	ObserveOTPRequest(operation, outcome string, duration time.Duration)
}

// QueryOptions tune a single query.
type QueryOptions struct {
	Operation  string
	NoThrottle bool
}

// Client queries a single OTP instance. It is safe for concurrent use.
type Client struct {
	endpoint   string
	httpClient *http.Client
	headers    map[string]string
	limiter    *rate.Limiter
	observer   Observer
}

func newHTTPClient(timeout time.Duration) *http.Client {
	var transport *http.Transport
	if t, ok := http.DefaultTransport.(*http.Transport); ok {
		transport = t.Clone()
	} else {
		transport = &http.Transport{}
	}
	transport.MaxIdleConns = 50
	transport.MaxIdleConnsPerHost = 10
	transport.IdleConnTimeout = 90 * time.Second
	transport.TLSHandshakeTimeout = 10 * time.Second

	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: gzhttp.Transport(transport),
	}
}

// NewClient creates a client for the OTP instance at config.BaseURL.
func NewClient(config Config, observer Observer) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(config.BaseURL), "/")
	if base == "" {
		return nil, errors.New("otp base URL is required")
	}

	headers := map[string]string{}
	if config.AuthHeaderKey != "" && config.AuthHeaderValue != "" {
		headers[config.AuthHeaderKey] = config.AuthHeaderValue
	}

	var limiter *rate.Limiter
	if config.ThrottleInterval > 0 {
		limiter = rate.NewLimiter(rate.Every(config.ThrottleInterval), 1)
	}

	return &Client{
		endpoint:   base + graphQLPath,
		httpClient: newHTTPClient(config.Timeout),
		headers:    headers,
		limiter:    limiter,
		observer:   observer,
	}, nil
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// Query posts query to OTP and decodes the "data" member into out.
func (c *Client) Query(ctx context.Context, query string, variables map[string]any, out any, opts QueryOptions) (err error) {
	start := time.Now()
	defer func() {
		if c.observer != nil {
			c.observer.ObserveOTPRequest(opts.Operation, outcome(err), time.Since(start))
		}
	}()

	if !opts.NoThrottle && c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("otp throttle wait: %w", err)
		}
	}

	if variables == nil {
		variables = map[string]any{}
	}
	body, err := json.Marshal(graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("error encoding graphql request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("error creating otp request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute otp request: %w", err)
	}
	defer logging.SafeCloseWithLogging(resp.Body,
		logging.FromContext(ctx).With(slog.String("component", "otp_client")),
		"http_response_body")

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("otp request failed: %s returned %s", c.endpoint, resp.Status)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize+1))
	if err != nil {
		return fmt.Errorf("failed to read otp response body: %w", err)
	}
	if len(raw) > maxResponseSize {
		return fmt.Errorf("otp response exceeds size limit of %d bytes", maxResponseSize)
	}

	var payload graphQLResponse
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("error decoding otp response: %w", err)
	}
	if len(payload.Errors) > 0 {
		gqlErr := &GraphQLError{}
		for _, e := range payload.Errors {
			gqlErr.Messages = append(gqlErr.Messages, e.Message)
		}
		return gqlErr
	}
	if out == nil || len(payload.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload.Data, out); err != nil {
		return fmt.Errorf("error decoding otp data: %w", err)
	}
	return nil
}

func outcome(err error) string {
	var gqlErr *GraphQLError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &gqlErr):
		return "graphql_error"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "error"
	}
}
