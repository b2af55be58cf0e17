// Package client provides the HTTP transport used to talk to the openFDA API.
//
// The client performs plain GET requests and hands back the status code and
// the raw body. It does not retry, cache or authenticate; a transport failure
// is reported as ErrRemoteUnavailable and the caller decides what to do with
// the body.
package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for openFDA client operations.
var (
	fdaRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fda_requests_total",
		Help: "Total openFDA requests by status",
	}, []string{"status"})

	fdaRequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "fda_request_duration_seconds",
		Help:    "openFDA request duration in seconds",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	})

	fdaErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fda_errors_total",
		Help: "Total openFDA errors by class",
	}, []string{"class"})
)

// ErrorClass represents a classification of request failures.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx client errors.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassNetwork represents network/timeout errors.
	ErrorClassNetwork ErrorClass = "network"
)

// Response is the status and body of a completed request.
type Response struct {
	StatusCode int
	Body       []byte
}

// Client is the openFDA HTTP client.
type Client struct {
	httpClient *http.Client
	config     Config
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// User-Agent header sent with every request
	UserAgent string

	// Timeout for a single request (0 keeps the http.Client default of none)
	Timeout time.Duration
}

// DefaultConfig returns the default client configuration.
func DefaultConfig(userAgent string) Config {
	return Config{
		UserAgent: userAgent,
		Timeout:   30 * time.Second,
	}
}

// New creates a new openFDA client.
func New(cfg Config) (*Client, error) {
	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}

	if cfg.Timeout < 0 {
		return nil, fmt.Errorf("timeout must be >= 0 (got %s)", cfg.Timeout)
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		config: cfg,
		logger: log.With().Str("component", "fda-client").Logger(),
	}, nil
}

// Get performs a GET request against rawURL and reads the whole body.
// HTTP error statuses are logged and counted but still returned as a Response;
// only transport failures produce an error.
func (c *Client) Get(ctx context.Context, rawURL string) (*Response, error) {
	startTime := time.Now()
	defer func() {
		fdaRequestDuration.Observe(time.Since(startTime).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().
		Str("url", rawURL).
		Msg("Executing openFDA request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("url", rawURL).Msg("HTTP request failed")
		fdaErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		fdaRequestsTotal.WithLabelValues("network_error").Inc()
		return nil, networkError(rawURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Error().Err(err).Str("url", rawURL).Msg("Reading response body failed")
		fdaErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		fdaRequestsTotal.WithLabelValues("network_error").Inc()
		return nil, networkError(rawURL, err)
	}

	fdaRequestsTotal.WithLabelValues(fmt.Sprintf("%d", resp.StatusCode)).Inc()

	if resp.StatusCode >= 400 {
		errClass := classifyStatus(resp.StatusCode)
		fdaErrorsTotal.WithLabelValues(string(errClass)).Inc()
		c.logger.Warn().
			Str("url", rawURL).
			Int("status", resp.StatusCode).
			Str("error_class", string(errClass)).
			Msg("openFDA request error")
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       body,
	}, nil
}

// classifyStatus categorizes an HTTP error status for observability.
func classifyStatus(status int) ErrorClass {
	switch {
	case status >= 400 && status < 500:
		return ErrorClassClient
	case status >= 500:
		return ErrorClassServer
	default:
		return ""
	}
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}
