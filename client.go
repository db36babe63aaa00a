package motoadmin

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
)

// maxResponseSize caps how much of an API response body is read.
const maxResponseSize = 8 << 20

// Client talks to the motorcycle rental REST API on behalf of an admin.
// The bearer token is taken from the request context (see WithToken), so
// one Client is shared by every session.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	config  *ClientConfig
	breaker *gobreaker.CircuitBreaker
}

// NewClient creates a new API client.
func NewClient(config *ClientConfig, opts ...Option) (*Client, error) {
	if config == nil {
		config = DefaultClientConfig()
	}
	cfg := *config
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("%w: BaseURL: %v", ErrInvalidConfig, err)
	}

	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}

	c := &Client{
		baseURL: base,
		http:    hc,
		config:  &cfg,
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "rental-api",
		Timeout: cfg.BreakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerMaxFailures
		},
		IsSuccessful: func(err error) bool {
			// A caller giving up is not a sign the API is unhealthy.
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logWarn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
			if cfg.OnBreakerStateChange != nil {
				cfg.OnBreakerStateChange(from.String(), to.String())
			}
		},
	})
	return c, nil
}

// PageLimit returns the page size requested from paginated endpoints.
func (c *Client) PageLimit() int {
	return c.config.PageLimit
}

// BreakerState returns the circuit breaker state ("closed", "half-open", "open").
func (c *Client) BreakerState() string {
	return c.breaker.State().String()
}

// request describes one API call.
type request struct {
	op          string
	method      string
	path        string
	query       url.Values
	body        []byte
	contentType string
	failMsg     string
}

// response is what came back from a completed round trip.
type response struct {
	status int
	body   []byte
}

// serverError marks a 5xx response so the breaker counts it as a failure.
type serverError struct {
	resp *response
}

func (e *serverError) Error() string {
	return fmt.Sprintf("server error: status %d", e.resp.status)
}

// doJSON sends payload (if any) as JSON and decodes the response into out.
func (c *Client) doJSON(ctx context.Context, req request, payload, out any) error {
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return NewAPIError(req.op, 0, req.failMsg, fmt.Errorf("encode request: %w", err))
		}
		req.body = b
		req.contentType = "application/json"
	}
	return c.do(ctx, req, out)
}

// do performs req through the circuit breaker and decodes a successful body
// into out when out is non-nil.
func (c *Client) do(ctx context.Context, req request, out any) error {
	start := time.Now()
	resp, err := c.roundTrip(ctx, req)

	status := 0
	if resp != nil {
		status = resp.status
	}
	if c.config.OnRequest != nil {
		c.config.OnRequest(req.op, status, time.Since(start))
	}

	if err != nil {
		var srvErr *serverError
		switch {
		case errors.As(err, &srvErr):
			resp = srvErr.resp
		case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
			c.logWarn("rental API call rejected by circuit breaker", "op", req.op)
			return NewAPIError(req.op, 0, req.failMsg, errors.Join(ErrUnavailable, err))
		case ctx.Err() != nil:
			return NewAPIError(req.op, 0, req.failMsg, ctx.Err())
		default:
			c.logError("rental API call failed", "op", req.op, "error", err)
			return NewAPIError(req.op, 0, req.failMsg, errors.Join(ErrUnavailable, err))
		}
	}

	if resp.status >= http.StatusBadRequest {
		msg := errorMessage(resp.body, req.failMsg)
		c.logDebug("rental API returned error", "op", req.op, "status", resp.status, "message", msg)
		return NewAPIError(req.op, resp.status, msg, nil)
	}

	if out == nil || len(bytes.TrimSpace(resp.body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.body, out); err != nil {
		return NewAPIError(req.op, resp.status, req.failMsg, fmt.Errorf("%w: %v", ErrInvalidResponse, err))
	}
	return nil
}

// roundTrip executes the HTTP exchange under the breaker.
func (c *Client) roundTrip(ctx context.Context, req request) (*response, error) {
	result, err := c.breaker.Execute(func() (any, error) {
		httpReq, err := c.newRequest(ctx, req)
		if err != nil {
			return nil, err
		}
		httpResp, err := c.http.Do(httpReq)
		if err != nil {
			return nil, err
		}
		defer httpResp.Body.Close()

		body, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseSize))
		if err != nil {
			return nil, fmt.Errorf("read response: %w", err)
		}
		resp := &response{status: httpResp.StatusCode, body: body}
		if resp.status >= http.StatusInternalServerError {
			return nil, &serverError{resp: resp}
		}
		return resp, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*response), nil
}

func (c *Client) newRequest(ctx context.Context, req request) (*http.Request, error) {
	u := c.baseURL.JoinPath(req.path)
	if len(req.query) > 0 {
		u.RawQuery = req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		body = bytes.NewReader(req.body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.method, u.String(), body)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", "motoadmin/"+Version)
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}
	if token := TokenFromContext(ctx); token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}
	return httpReq, nil
}

// errorMessage extracts the API's {"message": ...} text, falling back to def.
func errorMessage(body []byte, def string) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if m := strings.TrimSpace(payload.Message); m != "" {
			return m
		}
		if m := strings.TrimSpace(payload.Error); m != "" {
			return m
		}
	}
	return def
}

func (c *Client) logDebug(msg string, args ...any) {
	if c.config.Logger != nil {
		c.config.Logger.Debug(msg, args...)
	}
}

func (c *Client) logWarn(msg string, args ...any) {
	if c.config.Logger != nil {
		c.config.Logger.Warn(msg, args...)
	}
}

func (c *Client) logError(msg string, args ...any) {
	if c.config.Logger != nil {
		c.config.Logger.Error(msg, args...)
	}
}
