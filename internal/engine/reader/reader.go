// Package reader wraps a Jina-style reader service: prefix the target URL,
// get back the rendered page as markdown. Used for career sites that only
// produce content after client-side script execution.
package reader

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/daylab/jobscout/internal/engine/fetch"
)

// Options controls a single render request.
type Options struct {
	WaitForIdle bool                 // ask the reader to wait for network idle before snapshotting
	Timeout     time.Duration        // per-attempt budget (default 30s)
	MaxAttempts int                  // total attempts (default 3)
	Progress    func(message string) // optional; receives rotating wait messages
}

// waitMessages rotate on a fixed interval while a render is outstanding so a
// caller can show non-stale feedback. Purely observational.
var waitMessages = []string{
	"채용 페이지를 렌더링하는 중입니다...",
	"외부 사이트에서 공고 내용을 가져오는 중입니다...",
	"거의 다 됐습니다. 조금만 기다려 주세요...",
}

const waitMessageInterval = 5 * time.Second

// Client calls the reader service.
type Client struct {
	BaseURL    string // e.g. "https://r.jina.ai"
	APIKey     string // optional bearer token
	HTTPClient *http.Client
}

// Render fetches targetURL through the reader and returns markdown. Attempts
// are bounded with a fixed 2s pause between them; each attempt carries its
// own timeout.
func (c *Client) Render(ctx context.Context, targetURL string, opts Options) (string, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}

	stop := startWaitTicker(ctx, opts.Progress)
	defer stop()

	rc := fetch.RetryConfig{MaxRetries: opts.MaxAttempts - 1, Wait: 2 * time.Second}
	md, err := fetch.RetryDo(ctx, rc, func() (string, error) {
		return c.renderOnce(ctx, targetURL, opts)
	})
	if err != nil {
		slog.Debug("reader: render failed", slog.String("url", targetURL), slog.Any("error", err))
		return "", fmt.Errorf("reader: render %s: %w", targetURL, err)
	}
	return md, nil
}

func (c *Client) renderOnce(ctx context.Context, targetURL string, opts Options) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	readerURL := strings.TrimRight(c.BaseURL, "/") + "/" + targetURL
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, readerURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("X-Return-Format", "markdown")
	req.Header.Set("X-Timeout", strconv.Itoa(int(opts.Timeout.Seconds())))
	if opts.WaitForIdle {
		req.Header.Set("X-Wait-For-Selector", "body")
	}
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// the reader fronts a headless browser pool; any failure is worth
		// one more attempt within the budget
		return "", fetch.StatusErr(resp.StatusCode)
	}

	body, err := fetch.ReadBody(resp)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(body)), nil
}

// startWaitTicker emits rotating wait messages until the returned stop
// function is called. No-op when no Progress callback is set.
func startWaitTicker(ctx context.Context, progress func(string)) func() {
	if progress == nil {
		return func() {}
	}
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(waitMessageInterval)
		defer ticker.Stop()
		i := 0
		for {
			select {
			case <-ticker.C:
				progress(waitMessages[i%len(waitMessages)])
				i++
			case <-done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
	var once bool
	return func() {
		if !once {
			once = true
			close(done)
		}
	}
}
