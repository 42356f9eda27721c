// Package fetch retrieves raw VMGD page content over HTTP using colly and
// classifies transport/HTTP failures.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/vmgdwatch/scraper/internal/vmgd"
)

// Config controls fetcher behavior.
type Config struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration

	// Debug enables the read-through/write-through page cache. The cache is
	// a development convenience only; disabling it must not change outputs.
	Debug    bool
	CacheDir string
}

// Fetcher implements vmgd.Fetcher using a Colly collector.
type Fetcher struct {
	cfg           Config
	baseCollector *colly.Collector
	cache         *pageCache
	logger        *zap.Logger
}

// New builds a Fetcher.
func New(cfg Config, logger *zap.Logger) *Fetcher {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	// Synchronous collection is the colly default; passing colly.Async(false)
	// would enable async mode on colly v2.1.0, where the option ignores its
	// argument.
	c := colly.NewCollector()
	c.IgnoreRobotsTxt = true
	c.WithTransport(newHTTPTransport())

	var cache *pageCache
	if cfg.Debug && cfg.CacheDir != "" {
		cache = newPageCache(cfg.CacheDir, logger)
	}
	return &Fetcher{
		cfg:           cfg,
		baseCollector: c,
		cache:         cache,
		logger:        logger,
	}
}

// FetchPage retrieves the content of a mapped page, consulting the
// development cache first when enabled.
func (f *Fetcher) FetchPage(ctx context.Context, page vmgd.PageMapping) (string, error) {
	if f.cache != nil {
		if html, ok := f.cache.read(page.Slug()); ok {
			return html, nil
		}
	}

	url := page.URL(f.cfg.BaseURL)
	html, err := f.fetch(ctx, url)
	if err != nil {
		return "", err
	}

	if f.cache != nil {
		f.cache.write(page.Slug(), html)
	}
	return html, nil
}

func (f *Fetcher) fetch(ctx context.Context, url string) (string, error) {
	f.logger.Info("fetching page", zap.String("url", url))

	var (
		body     []byte
		status   int
		fetchErr error
	)
	collector := f.baseCollector.Clone()
	collector.UserAgent = f.cfg.UserAgent
	collector.IgnoreRobotsTxt = true
	collector.SetRequestTimeout(f.cfg.Timeout)

	collector.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		body = append([]byte(nil), r.Body...)
	})
	collector.OnError(func(r *colly.Response, err error) {
		fetchErr = err
		if r != nil {
			status = r.StatusCode
			body = append([]byte(nil), r.Body...)
		}
	})

	if err := f.runCollector(ctx, collector, url); err != nil && fetchErr == nil {
		fetchErr = err
	}
	if fetchErr != nil {
		return "", classify(url, status, body, fetchErr)
	}
	return string(body), nil
}

func (f *Fetcher) runCollector(ctx context.Context, collector *colly.Collector, url string) error {
	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(url)
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("fetch canceled: %w", ctx.Err())
	case err := <-done:
		return err
	}
}

// classify maps an HTTP status or transport failure onto the fetch error
// taxonomy, keeping the response body for later hashing.
func classify(url string, status int, body []byte, err error) *vmgd.FetchError {
	kind := vmgd.ErrKindFetch
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		kind = vmgd.ErrKindUnauthorized
	case status == http.StatusNotFound:
		kind = vmgd.ErrKindNotFound
	case isTimeout(err):
		kind = vmgd.ErrKindTimeout
		body = nil
	}
	return &vmgd.FetchError{
		URL:        url,
		Kind:       kind,
		StatusCode: status,
		Body:       body,
		Err:        err,
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
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
