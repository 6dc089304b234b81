// Package imageload resolves album art: the direct URL first, then the same
// image through a resizing proxy, then a placeholder.
package imageload

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	_ "golang.org/x/image/webp"
)

const (
	DefaultProxyURL = "https://images.weserv.nl/"
	DefaultSize     = 200
	DefaultFit      = "cover"
	DefaultTimeout  = 5 * time.Second

	// maxImageBytes bounds how much is read while checking an image.
	maxImageBytes = 10 << 20
)

// Resolution is the outcome of resolving one album image. Exactly one of
// Source and Placeholder is set.
type Resolution struct {
	Source      string
	Proxied     bool
	Placeholder bool
}

// Options configures a Resolver. Zero values fall back to the defaults.
type Options struct {
	ProxyURL string
	Width    int
	Height   int
	Fit      string
	Timeout  time.Duration
	Client   *http.Client
}

// Resolver loads album art with a single fallback.
type Resolver struct {
	proxyURL   string
	width      int
	height     int
	fit        string
	timeout    time.Duration
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewResolver creates a Resolver.
func NewResolver(opts Options, logger *logrus.Logger) *Resolver {
	r := &Resolver{
		proxyURL:   opts.ProxyURL,
		width:      opts.Width,
		height:     opts.Height,
		fit:        opts.Fit,
		timeout:    opts.Timeout,
		httpClient: opts.Client,
		logger:     logger,
	}
	if r.proxyURL == "" {
		r.proxyURL = DefaultProxyURL
	}
	if r.width <= 0 {
		r.width = DefaultSize
	}
	if r.height <= 0 {
		r.height = DefaultSize
	}
	if r.fit == "" {
		r.fit = DefaultFit
	}
	if r.timeout <= 0 {
		r.timeout = DefaultTimeout
	}
	if r.httpClient == nil {
		r.httpClient = &http.Client{}
	}
	if r.logger == nil {
		r.logger = logrus.New()
	}
	return r
}

// ProxyURL builds the resizing-proxy address for original, which is passed
// without its http(s) scheme.
func (r *Resolver) ProxyURL(original string) string {
	stripped := original
	if strings.HasPrefix(stripped, "https://") {
		stripped = strings.TrimPrefix(stripped, "https://")
	} else if strings.HasPrefix(stripped, "http://") {
		stripped = strings.TrimPrefix(stripped, "http://")
	}

	query := fmt.Sprintf("url=%s&w=%d&h=%d&fit=%s", url.QueryEscape(stripped), r.width, r.height, url.QueryEscape(r.fit))

	base := r.proxyURL
	if strings.Contains(base, "?") {
		return base + "&" + query
	}
	return base + "?" + query
}

// Resolve tries the direct URL, then the proxied one. Failures are logged
// and end in a placeholder; they are never returned.
func (r *Resolver) Resolve(ctx context.Context, imageURL string) Resolution {
	if strings.TrimSpace(imageURL) == "" {
		return Resolution{Placeholder: true}
	}

	err := r.load(ctx, imageURL)
	if err == nil {
		return Resolution{Source: imageURL}
	}
	r.logger.WithError(err).WithField("image_url", imageURL).Debug("Direct album art failed, trying proxy")

	proxied := r.ProxyURL(imageURL)
	if err := r.load(ctx, proxied); err != nil {
		r.logger.WithError(err).WithField("proxy_url", proxied).Debug("Proxied album art failed")
		return Resolution{Placeholder: true}
	}
	return Resolution{Source: proxied, Proxied: true}
}

// load fetches rawURL within the per-attempt budget and checks that the body
// decodes as an image.
func (r *Resolver) load(ctx context.Context, rawURL string) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "image/*")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("fetch image: status %d", resp.StatusCode)
	}

	_, format, err := image.DecodeConfig(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return fmt.Errorf("decode image: %w", err)
	}
	r.logger.WithField("format", format).Debug("Album art loaded")
	return nil
}
