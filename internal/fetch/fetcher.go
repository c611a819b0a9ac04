// Package fetch implements the single-page fetcher using the Colly library.
// The fetcher never raises past its boundary: any network failure, timeout,
// non-2xx status, or non-HTML payload is logged and reported as "no content",
// so the crawl can keep making progress past individually bad pages. The one
// exception to fire-and-forget is HTTP 403, which gets a single retry with a
// browser-like identity before degrading to the transient path.
package fetch

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"
)

// Defaults applied when the config leaves a knob unset.
const (
	DefaultUserAgent        = "runscout-bot/1.0 (+https://runcalcs.com)"
	DefaultBrowserUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
	defaultTimeout          = 20 * time.Second
)

// Config controls fetcher behavior.
type Config struct {
	UserAgent        string
	BrowserUserAgent string
	Timeout          time.Duration
}

// Fetcher fetches single pages.
type Fetcher struct {
	cfg    Config
	logger *zap.Logger
	base   *colly.Collector
}

// New builds a Fetcher.
func New(cfg Config, logger *zap.Logger) *Fetcher {
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.BrowserUserAgent == "" {
		cfg.BrowserUserAgent = DefaultBrowserUserAgent
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}

	c := colly.NewCollector(colly.Async(false))
	c.IgnoreRobotsTxt = true
	c.WithTransport(newHTTPTransport())

	return &Fetcher{cfg: cfg, logger: logger, base: c}
}

// Page fetches one URL and returns its body text. The boolean is false when
// no usable HTML was obtained, for whatever reason.
func (f *Fetcher) Page(ctx context.Context, pageURL string) (string, bool) {
	body, status, contentType, err := f.attempt(ctx, pageURL, f.cfg.UserAgent)

	if status == http.StatusForbidden {
		f.logger.Info("Access denied, retrying with browser identity", zap.String("url", pageURL))
		body, status, contentType, err = f.attempt(ctx, pageURL, f.cfg.BrowserUserAgent)
	}

	if err != nil {
		f.logger.Warn("Fetch failed", zap.String("url", pageURL), zap.Int("status_code", status), zap.Error(err))
		return "", false
	}
	if status < 200 || status > 299 {
		f.logger.Warn("Skipping response", zap.String("url", pageURL), zap.Int("status_code", status))
		return "", false
	}
	if !htmlLike(contentType) {
		f.logger.Debug("Skipping non-HTML content", zap.String("url", pageURL), zap.String("content_type", contentType))
		return "", false
	}
	return body, true
}

// attempt executes a single HTTP GET through a cloned collector.
func (f *Fetcher) attempt(ctx context.Context, pageURL, userAgent string) (body string, status int, contentType string, err error) {
	collector := f.base.Clone()
	collector.UserAgent = userAgent
	collector.IgnoreRobotsTxt = true
	// The clone shares the base collector's visited-URL store. Revisits must
	// stay allowed: the 403 retry re-attempts the same URL, and the visited
	// set belongs to the crawl invocation, not to this long-lived fetcher.
	collector.AllowURLRevisit = true
	collector.SetRequestTimeout(f.cfg.Timeout)

	var fetchErr error
	collector.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		contentType = r.Headers.Get("Content-Type")
		body = string(r.Body)
	})
	collector.OnError(func(r *colly.Response, cbErr error) {
		if r != nil {
			status = r.StatusCode
		}
		fetchErr = cbErr
	})

	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(pageURL)
	}()

	select {
	case <-ctx.Done():
		return "", status, "", fmt.Errorf("fetch canceled: %w", ctx.Err())
	case visitErr := <-done:
		if fetchErr != nil {
			// Forbidden is reported through the error callback; the caller
			// decides whether to retry, so hand back the status without error.
			if status == http.StatusForbidden {
				return "", status, "", nil
			}
			return "", status, "", fmt.Errorf("fetch %s: %w", pageURL, fetchErr)
		}
		if visitErr != nil {
			return "", status, "", fmt.Errorf("visit %s: %w", pageURL, visitErr)
		}
		return body, status, contentType, nil
	}
}

func htmlLike(contentType string) bool {
	ct := strings.ToLower(contentType)
	return strings.Contains(ct, "text/html") || strings.Contains(ct, "application/xhtml")
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}
