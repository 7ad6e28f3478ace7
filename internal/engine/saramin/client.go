// Package saramin integrates the job aggregator: company resolution,
// paginated listing acquisition, external-site detection and posting
// detail pages. All markup access is heuristic and scoped to this package
// so selector churn on the aggregator side stays contained.
package saramin

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/daylab/jobscout/internal/engine/fetch"
)

// DefaultBaseURL is the production aggregator origin.
const DefaultBaseURL = "https://www.saramin.co.kr"

// ErrCompanyNotFound is returned when no company-search anchor matches the
// normalized query.
var ErrCompanyNotFound = errors.New("saramin: company not found")

// PageGetter fetches one URL with browser-like headers. The production
// implementation is *fetch.BrowserClient.
type PageGetter interface {
	Get(url string, headers map[string]string) ([]byte, int, error)
}

// Client issues aggregator requests through a browser-fingerprint HTTP
// client. The aggregator rejects non-browser TLS fingerprints outright.
type Client struct {
	BaseURL    string
	Browser    PageGetter
	Limiter    *rate.Limiter // optional politeness limiter
	Timeout    time.Duration // per-request budget, default 10s
	StubFilter StubFilter    // nil = DefaultStubFilter
}

// NewClient returns a Client with production defaults.
func NewClient(browser *fetch.BrowserClient) *Client {
	return &Client{
		BaseURL: DefaultBaseURL,
		Browser: browser,
		Limiter: rate.NewLimiter(rate.Every(300*time.Millisecond), 2),
		Timeout: 10 * time.Second,
	}
}

// get fetches an aggregator URL with rate limiting and bounded retries.
func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	body, err := fetch.RetryDo(ctx, fetch.DefaultRetryConfig, func() ([]byte, error) {
		data, status, err := c.Browser.Get(url, nil)
		if err != nil {
			return nil, err
		}
		if fetch.IsRetryableStatus(status) {
			return nil, fetch.StatusErr(status)
		}
		if status != 200 {
			return nil, fmt.Errorf("status %d", status)
		}
		return data, nil
	})
	if err != nil {
		return nil, fmt.Errorf("saramin: GET %s: %w", url, err)
	}
	return body, nil
}
