package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"lyrify/pkg/models"
)

// StatusError is a non-2xx answer from the lyrics proxy.
type StatusError struct {
	StatusCode int
	StatusText string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("Error %d: %s", e.StatusCode, e.StatusText)
}

// ProxyClient calls the lyrics proxy's /api/lyrics route.
type ProxyClient struct {
	endpoint   string
	httpClient *http.Client
}

// NewProxyClient creates a client for the proxy at serverURL.
func NewProxyClient(serverURL string, httpClient *http.Client) (*ProxyClient, error) {
	u, err := url.Parse(strings.TrimSpace(serverURL))
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid server URL %q: scheme must be http or https", serverURL)
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	return &ProxyClient{
		endpoint:   strings.TrimSuffix(u.String(), "/") + "/api/lyrics",
		httpClient: httpClient,
	}, nil
}

// Lookup asks the proxy for query. A non-2xx response is a *StatusError; a
// 2xx payload is returned as-is for the caller to inspect.
func (p *ProxyClient) Lookup(ctx context.Context, query string) (*models.LyricsPayload, error) {
	reqURL := p.endpoint + "?song=" + url.QueryEscape(query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, StatusText: statusText(resp)}
	}

	var payload models.LyricsPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("invalid response from lyrics service: %w", err)
	}
	return &payload, nil
}

// statusText is the reason phrase of resp, e.g. "Request Timeout".
func statusText(resp *http.Response) string {
	if text := strings.TrimSpace(strings.TrimPrefix(resp.Status, fmt.Sprint(resp.StatusCode))); text != "" {
		return text
	}
	return http.StatusText(resp.StatusCode)
}
