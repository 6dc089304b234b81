// Package lyrics talks to the third-party lyrics API on behalf of the proxy.
package lyrics

import (
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

	"github.com/sirupsen/logrus"
)

const (
	// DefaultTimeout bounds a single upstream call.
	DefaultTimeout = 10 * time.Second

	// maxQueryLength mirrors the server's search query limit.
	maxQueryLength = 1000

	// maxBodySize caps how much of an upstream response is buffered.
	maxBodySize = 5 << 20
)

// Client issues lyrics lookups against a fixed upstream endpoint. It keeps no
// per-call state and is safe for concurrent use.
type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	logger     *logrus.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithTimeout overrides the upstream budget.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHTTPClient replaces the transport used for outbound calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewClient creates an upstream client for baseURL.
func NewClient(baseURL string, logger *logrus.Logger, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid upstream url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("upstream url must use http or https: %s", baseURL)
	}
	if logger == nil {
		logger = logrus.New()
	}

	c := &Client{
		baseURL:    baseURL,
		timeout:    DefaultTimeout,
		httpClient: &http.Client{},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Timeout returns the upstream budget.
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// Fetch looks up song and returns the upstream JSON body untouched. Every
// failure is a *ProxyError. No call is made when song is blank.
func (c *Client) Fetch(ctx context.Context, song string) (json.RawMessage, error) {
	song = strings.TrimSpace(song)
	if song == "" {
		return nil, newMissingParameter(`Required "song" parameter`)
	}
	if len(song) > maxQueryLength {
		return nil, newMissingParameter(fmt.Sprintf(`"song" parameter too long (max %d characters)`, maxQueryLength))
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.requestURL(song), nil)
	if err != nil {
		return nil, newInternalError(err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.classify(err)
	}
	defer resp.Body.Close()

	entry := c.logger.WithFields(logrus.Fields{
		"song":        song,
		"status_code": resp.StatusCode,
		"duration":    time.Since(start).Round(time.Millisecond),
	})

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused; the body is never relayed.
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
		entry.Warn("Upstream returned an error status")
		return nil, newUpstreamError(resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, c.classify(err)
	}
	if !json.Valid(body) {
		return nil, newInternalError(errors.New("upstream returned a non-JSON body"))
	}

	entry.Debug("Upstream lookup succeeded")
	return json.RawMessage(body), nil
}

func (c *Client) requestURL(song string) string {
	sep := "?"
	if strings.Contains(c.baseURL, "?") {
		sep = "&"
	}
	return c.baseURL + sep + "song=" + url.QueryEscape(song)
}

// classify maps transport errors onto the timeout or internal kinds.
func (c *Client) classify(err error) *ProxyError {
	if errors.Is(err, context.DeadlineExceeded) {
		return newUpstreamTimeout(err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return newUpstreamTimeout(err)
	}
	return newInternalError(err)
}
