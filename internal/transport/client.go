// Package transport is the JSON-over-HTTP client shared by the Evernote,
// Moves and Mappiness collaborators.
//
// Every client gets its own circuit breaker and rate limiter. There is no
// retry: a failed call fails the run.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ErrCircuitOpen is returned while the breaker rejects calls to a failing service.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// ErrUnexpectedStatus is returned for any non-2xx response.
var ErrUnexpectedStatus = errors.New("unexpected status")

// StatusError carries the status code and start of the body of a non-2xx
// response. It matches ErrUnexpectedStatus.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%v %d: %s", ErrUnexpectedStatus, e.Code, e.Body)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrUnexpectedStatus
}

// abortedError marks a call that ended because the caller's context did.
type abortedError struct {
	err error
}

func (e *abortedError) Error() string { return e.err.Error() }
func (e *abortedError) Unwrap() error { return e.err }

// Options configures a Client.
type Options struct {
	Name              string // service name, used in logs and breaker state
	Timeout           time.Duration
	RequestsPerSecond float64
	MaxFailures       uint32
	BreakerTimeout    time.Duration
	Header            http.Header // sent with every request
	HTTPClient        *http.Client
	Logger            *zap.Logger
}

// Client sends JSON requests to one service.
type Client struct {
	name       string
	httpClient *http.Client
	header     http.Header
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
	logger     *zap.Logger
}

// New creates a client. Zero options fall back to a 30s timeout, 2 req/s,
// and a breaker that opens after 3 consecutive failures for 30s.
func New(opts Options) *Client {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = 2
	}
	if opts.MaxFailures == 0 {
		opts.MaxFailures = 3
	}
	if opts.BreakerTimeout == 0 {
		opts.BreakerTimeout = 30 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	logger := opts.Logger.With(zap.String("service", opts.Name))
	maxFailures := opts.MaxFailures

	return &Client{
		name:       opts.Name,
		httpClient: httpClient,
		header:     opts.Header,
		limiter:    rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1),
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        opts.Name,
			MaxRequests: 1,
			Timeout:     opts.BreakerTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= maxFailures
			},
			IsSuccessful: healthy,
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Warn("circuit breaker state change",
					zap.String("from", from.String()),
					zap.String("to", to.String()))
			},
		}),
		logger: logger,
	}
}

// healthy reports whether err leaves the service in good standing: the
// caller gave up, or the service answered with a client error other than 429.
func healthy(err error) bool {
	if err == nil {
		return true
	}
	var aborted *abortedError
	if errors.As(err, &aborted) {
		return true
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code >= 400 && se.Code < 500 && se.Code != http.StatusTooManyRequests
	}
	return false
}

// GetJSON fetches url and decodes the response body into out.
func (c *Client) GetJSON(ctx context.Context, target string, out any) error {
	return c.Do(ctx, http.MethodGet, target, nil, out)
}

// PostJSON sends in as JSON to url and decodes the response body into out.
// out may be nil.
func (c *Client) PostJSON(ctx context.Context, target string, in, out any) error {
	return c.Do(ctx, http.MethodPost, target, in, out)
}

// Do performs one request through the limiter and breaker. Credentials in
// the query string never appear in the returned error.
func (c *Client) Do(ctx context.Context, method, target string, in, out any) error {
	var body []byte
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		body = b
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%s: waiting for rate limiter: %w", c.name, err)
	}

	start := time.Now()
	_, err := c.breaker.Execute(func() (interface{}, error) {
		err := c.do(ctx, method, target, body, out)
		if err != nil && ctx.Err() != nil {
			err = &abortedError{err: err}
		}
		return nil, err
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		err = ErrCircuitOpen
	}

	fields := []zap.Field{
		zap.String("method", method),
		zap.String("url", redact(target)),
		zap.Duration("duration", time.Since(start)),
	}
	if err != nil {
		c.logger.Debug("request failed", append(fields, zap.Error(err))...)
		return fmt.Errorf("%s: %w", c.name, err)
	}
	c.logger.Debug("request ok", fields...)
	return nil
}

func (c *Client) do(ctx context.Context, method, target string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", redactURLError(err))
	}
	for k, vs := range c.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", redactURLError(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{Code: resp.StatusCode, Body: string(bytes.TrimSpace(bodyBytes))}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
