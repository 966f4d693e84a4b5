package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	commonshttp "github.com/flanksource/commons/http"
	"github.com/flanksource/commons/logger"
)

// ClientOption configures the HTTP client
type ClientOption func(*clientConfig)

type clientConfig struct {
	timeout      time.Duration
	headerLevel  logger.LogLevel
	bodyLevel    logger.LogLevel
	enableLogger bool
}

// WithTimeout sets the request timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *clientConfig) {
		c.timeout = timeout
	}
}

// WithHttpLogging enables HTTP logging with specified levels
func WithHttpLogging(headerLevel, bodyLevel logger.LogLevel) ClientOption {
	return func(c *clientConfig) {
		c.headerLevel = headerLevel
		c.bodyLevel = bodyLevel
		c.enableLogger = true
	}
}

// GetHttpClient returns a configured HTTP client suitable for general use.
// It uses flanksource/commons/http for consistent logging and middleware support.
// By default, logging is enabled at Debug level for headers and Trace level for bodies.
func GetHttpClient(opts ...ClientOption) *http.Client {
	cfg := &clientConfig{
		timeout:      30 * time.Second,
		headerLevel:  logger.Trace1,
		bodyLevel:    logger.Trace2,
		enableLogger: logger.IsTraceEnabled(),
	}

	for _, opt := range opts {
		opt(cfg)
	}

	client := commonshttp.NewClient().
		Timeout(cfg.timeout)

	if cfg.enableLogger {
		client = client.WithHttpLogging(cfg.headerLevel, cfg.bodyLevel)
	}

	// Convert to standard http.Client by using the RoundTripper
	return &http.Client{
		Transport: client,
		Timeout:   cfg.timeout,
	}
}

// StatusError reports a non-2xx response. Callers distinguish a missing
// resource from a transport failure with errors.As.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("failed to fetch %s: HTTP %d", e.URL, e.StatusCode)
}

// IsNotFound reports whether err is a StatusError for a 404 response.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}

// FetchBody GETs a URL and returns the response body. Non-2xx statuses are
// reported as a StatusError carrying the URL and status code.
func FetchBody(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", url, err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response from %s: %w", url, err)
	}
	return body, nil
}

// Exists probes a URL with a HEAD request. Transport errors and non-2xx
// statuses both report false: availability is not guaranteed and the
// caller treats absence as a normal outcome.
func Exists(ctx context.Context, client *http.Client, url string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return false
	}

	resp, err := client.Do(req)
	if err != nil {
		logger.V(4).Infof("HEAD %s failed: %v", url, err)
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode >= 200 && resp.StatusCode < 300
}
