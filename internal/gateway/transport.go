// Package gateway speaks HTTP to the QOS bridge and translates its responses
// into the payment error taxonomy.
package gateway

//go:generate mockgen -source=transport.go -destination=mocks/mocks.go -package=mocks Transport,Observer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	dErrors "qosic/pkg/domain-errors"
)

// Response is the raw gateway outcome handed to the classifier.
type Response struct {
	StatusCode int
	Body       []byte
}

// Transport posts a JSON body to a gateway path. Implementations carry the
// base URL and credentials; a transport-level failure returns a
// request_failed error, HTTP-level outcomes return a Response.
type Transport interface {
	Post(ctx context.Context, path string, body any) (*Response, error)
}

// Observer receives request lifecycle callbacks, replacing process-wide
// logging hooks with an injected dependency.
type Observer interface {
	RequestSent(ctx context.Context, method, path string)
	ResponseReceived(ctx context.Context, method, path string, status int, elapsed time.Duration)
}

// Client is the production Transport. It holds basic-auth credentials, a
// JSON content type, and a circuit breaker so a broken gateway fails fast
// instead of tying up callers for the full transport timeout.
type Client struct {
	baseURL  string
	login    string
	password string
	http     *http.Client
	breaker  *gobreaker.CircuitBreaker
	observer Observer
	logger   *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient swaps the underlying http.Client, mainly for tests.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithObserver installs request lifecycle callbacks.
func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

// WithLogger overrides the default logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient builds a gateway transport for the given base URL and server
// credentials.
func NewClient(baseURL, login, password string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "gateway base url is required")
	}
	c := &Client{
		baseURL:  baseURL,
		login:    login,
		password: password,
		// The gateway can hold a payment request open for a long time.
		http:   &http.Client{Timeout: 80 * time.Second},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name: "qos-gateway",
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Warn("gateway breaker state change",
				"breaker", name, "from", from.String(), "to", to.String())
		},
	})
	return c, nil
}

// Post sends body as JSON to baseURL+path. Network failures, including a
// tripped breaker, come back as request_failed; any HTTP response, whatever
// its status, is a successful Post.
func (c *Client) Post(ctx context.Context, path string, body any) (*Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "request body is not serializable")
	}

	res, err := c.breaker.Execute(func() (any, error) {
		return c.post(ctx, path, payload)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, dErrors.Wrap(err, dErrors.CodeRequestFailed, "gateway circuit open")
		}
		return nil, err
	}
	return res.(*Response), nil
}

func (c *Client) post(ctx context.Context, path string, payload []byte) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeRequestFailed, "building gateway request failed")
	}
	req.SetBasicAuth(c.login, c.password)
	req.Header.Set("Content-Type", "application/json")

	if c.observer != nil {
		c.observer.RequestSent(ctx, http.MethodPost, path)
	}
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeRequestFailed, "gateway request failed")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeRequestFailed, "reading gateway response failed")
	}

	if c.observer != nil {
		c.observer.ResponseReceived(ctx, http.MethodPost, path, resp.StatusCode, time.Since(start))
	}
	return &Response{StatusCode: resp.StatusCode, Body: raw}, nil
}
