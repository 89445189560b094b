// Package scholar scrapes academic search results over plain HTTP.
package scholar

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/crestline-labs/paperdesk/internal/domain"
	"github.com/crestline-labs/paperdesk/internal/httputil"
	"github.com/crestline-labs/paperdesk/internal/metrics"
	"github.com/crestline-labs/paperdesk/internal/textutil"
)

const (
	resultsPerPage    = 10
	defaultMaxResults = 50
	maxPageBytes      = 4 << 20
)

// blockBackoff is the base wait after a bot challenge before retrying the
// same page. Tests override this to avoid real sleeps.
var blockBackoff = 30 * time.Second

// userAgents is a small rotation of common browser identities.
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:125.0) Gecko/20100101 Firefox/125.0",
}

// Config holds scraper settings.
type Config struct {
	BaseURL       string
	MaxRetries    int
	MinDelay      time.Duration
	MaxDelay      time.Duration
	Timeout       time.Duration
	MaxResultsCap int
	Logger        *zap.Logger
}

// Client fetches and parses scholar result pages with polite delays and
// bot-challenge backoff.
type Client struct {
	http          *http.Client
	baseURL       string
	maxRetries    int
	minDelay      time.Duration
	maxDelay      time.Duration
	maxResultsCap int
	logger        *zap.Logger

	mu  sync.Mutex
	rng *rand.Rand

	now func() time.Time
}

// NewClient creates a scraping client.
func NewClient(cfg *Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		http:          &http.Client{Timeout: timeout},
		baseURL:       cfg.BaseURL,
		maxRetries:    cfg.MaxRetries,
		minDelay:      cfg.MinDelay,
		maxDelay:      cfg.MaxDelay,
		maxResultsCap: cfg.MaxResultsCap,
		logger:        logger,
		rng:           rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec // jitter, not crypto
		now:           time.Now,
	}
}

// Search scrapes result pages until maxResults papers are collected or the
// results run out. maxResults is clamped to the configured cap. If a bot
// challenge persists through all retries before anything was collected,
// domain.ErrScrapeBlocked is returned; mid-pagination the partial result
// is returned instead.
func (c *Client) Search(ctx context.Context, query string, maxResults int, years domain.YearRange) ([]domain.Paper, error) {
	query = textutil.CollapseWhitespace(query)
	if query == "" {
		return nil, domain.ErrEmptyQuery
	}
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}
	if c.maxResultsCap > 0 && maxResults > c.maxResultsCap {
		maxResults = c.maxResultsCap
	}

	var papers []domain.Paper
	for start := 0; len(papers) < maxResults; start += resultsPerPage {
		if start > 0 {
			if err := c.politeDelay(ctx); err != nil {
				return nil, err
			}
		}

		page, err := c.fetchPage(ctx, query, start, years)
		if err != nil {
			if len(papers) > 0 {
				c.logger.Warn("scrape aborted mid-pagination, returning partial results",
					zap.String("query", query),
					zap.Int("collected", len(papers)),
					zap.Error(err))
				break
			}
			return nil, err
		}
		if len(page) == 0 {
			break
		}

		for _, p := range page {
			if len(papers) == maxResults {
				break
			}
			papers = append(papers, p)
		}
	}

	c.logger.Info("scholar search finished",
		zap.String("query", query),
		zap.Int("papers", len(papers)))
	return papers, nil
}

// fetchPage fetches and parses one result page, backing off and retrying
// when a bot challenge is served.
func (c *Client) fetchPage(ctx context.Context, query string, start int, years domain.YearRange) ([]domain.Paper, error) {
	pageURL := c.searchURL(query, start, years)

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		body, status, err := c.get(ctx, pageURL, "text/html,application/xhtml+xml")
		if err != nil {
			metrics.ScrapePagesTotal.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("fetch result page: %w", err)
		}

		blocked := status == http.StatusForbidden ||
			status == http.StatusTooManyRequests ||
			isBlockedPage(body)
		if !blocked && status != http.StatusOK {
			metrics.ScrapePagesTotal.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("scholar returned status %d", status)
		}

		if blocked {
			metrics.ScrapePagesTotal.WithLabelValues("blocked").Inc()
			if attempt == c.maxRetries {
				break
			}
			metrics.ScrapeRetriesTotal.Inc()
			wait := blockBackoff * time.Duration(attempt+1)
			c.logger.Warn("bot challenge detected, backing off",
				zap.Int("attempt", attempt+1),
				zap.Duration("wait", wait))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
			continue
		}

		metrics.ScrapePagesTotal.WithLabelValues("ok").Inc()
		return parseResults(body, c.now().UTC())
	}

	return nil, fmt.Errorf("bot challenge persisted after %d retries: %w", c.maxRetries, domain.ErrScrapeBlocked)
}

// ExtractAbstract follows a paper landing page and pulls the abstract from
// the markup conventions common across publishers. Returns
// domain.ErrNotFound when no abstract section is present.
func (c *Client) ExtractAbstract(ctx context.Context, pageURL string) (string, error) {
	body, status, err := c.get(ctx, pageURL, "text/html,application/xhtml+xml")
	if err != nil {
		return "", fmt.Errorf("fetch paper page: %w", err)
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("paper page returned status %d", status)
	}

	abstract, err := extractAbstract(body)
	if err != nil {
		return "", err
	}
	return textutil.CleanAcademicText(abstract), nil
}

func (c *Client) searchURL(query string, start int, years domain.YearRange) string {
	q := url.Values{}
	q.Set("q", query)
	q.Set("hl", "en")
	if start > 0 {
		q.Set("start", strconv.Itoa(start))
	}
	if years.From > 0 {
		q.Set("as_ylo", strconv.Itoa(years.From))
	}
	if years.To > 0 {
		q.Set("as_yhi", strconv.Itoa(years.To))
	}
	return c.baseURL + "/scholar?" + q.Encode()
}

// get performs one GET with browser-like headers and 429-aware retries,
// returning the limited body and status code.
func (c *Client) get(ctx context.Context, rawURL, accept string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("User-Agent", c.userAgent())
	req.Header.Set("Accept", accept)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := httputil.DoWithRetry(ctx, c.http, req, c.maxRetries)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return body, resp.StatusCode, nil
}

func (c *Client) userAgent() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return userAgents[c.rng.Intn(len(userAgents))]
}

// politeDelay sleeps a random duration between the configured bounds.
func (c *Client) politeDelay(ctx context.Context) error {
	d := c.minDelay
	if span := c.maxDelay - c.minDelay; span > 0 {
		c.mu.Lock()
		d += time.Duration(c.rng.Int63n(int64(span)))
		c.mu.Unlock()
	}
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
