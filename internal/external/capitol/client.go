// Package capitol fetches congressional trade disclosures from the
// Capitol Trades listing pages. This is the acquisition boundary only:
// it produces raw signals; deduplication against already-ingested
// disclosures happens at the persistence layer.
package capitol

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/hadoku/trader/internal/contracts"
	"github.com/hadoku/trader/pkg/config"
	"github.com/hadoku/trader/pkg/httputil"
	"github.com/hadoku/trader/pkg/logger"
)

// maxPages bounds one fetch run; the listing is newest-first so later
// pages are disclosures an earlier run already saw.
const maxPages = 20

// Client scrapes the disclosure listing. Requests are rate limited:
// this is someone else's website, not an API.
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	cfg        config.CapitolConfig
}

// NewClient creates a disclosure client.
func NewClient(cfg config.CapitolConfig, log *logger.Logger) *Client {
	return &Client{
		httpClient: httputil.New(log).WithRateLimit(float64(cfg.RequestsPerSec)),
		logger:     log,
		cfg:        cfg,
	}
}

// FetchRecent walks the paginated trades table and returns every parsed
// disclosure, newest first. Pagination stops at the first empty page.
func (c *Client) FetchRecent(ctx context.Context) ([]contracts.Signal, error) {
	var all []contracts.Signal

	for page := 1; page <= maxPages; page++ {
		select {
		case <-ctx.Done():
			return all, ctx.Err()
		default:
		}

		url := fmt.Sprintf("%s/trades?page=%d", c.cfg.BaseURL, page)

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return all, fmt.Errorf("create request failed: %w", err)
		}
		req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return all, fmt.Errorf("HTTP request failed: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return all, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return all, fmt.Errorf("read response body failed: %w", err)
		}

		signals, err := ParseTradesHTML(string(body))
		if err != nil {
			return all, fmt.Errorf("parse page %d: %w", page, err)
		}
		if len(signals) == 0 {
			break
		}
		all = append(all, signals...)
	}

	c.logger.WithFields(map[string]interface{}{
		"count": len(all),
	}).Info("fetched disclosures")
	return all, nil
}
