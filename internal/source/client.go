// Package source fetches survey records from the upstream survey API.
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/tablewise/bistro-cli/internal/model"
)

// Options configures the survey API client.
type Options struct {
	BaseURL    string
	AdminKey   string
	PageSize   int
	Timeout    time.Duration
	MaxRetries int
	RatePerSec int
}

// Client pulls survey records from the admin API with rate limiting and
// retry on transient failures.
type Client struct {
	client  *http.Client
	opts    Options
	limiter *rate.Limiter
}

// page is the wire envelope for one page of survey records.
type page struct {
	Records []model.SurveyRecord `json:"records"`
	Page    int                  `json:"page"`
	Total   int                  `json:"total"`
}

// NewClient creates a survey API client with the given options.
func NewClient(opts Options) *Client {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = 3
	}
	if opts.PageSize == 0 {
		opts.PageSize = 100
	}
	if opts.RatePerSec == 0 {
		opts.RatePerSec = 5
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	return &Client{
		client:  &http.Client{Timeout: opts.Timeout},
		opts:    opts,
		limiter: rate.NewLimiter(rate.Limit(opts.RatePerSec), opts.RatePerSec),
	}
}

// FetchPage retrieves one page of survey records. Pages are 1-based.
func (c *Client) FetchPage(ctx context.Context, pageNum int) ([]model.SurveyRecord, int, error) {
	url := fmt.Sprintf("%s/api/v1/surveys?page=%d&page_size=%d", c.opts.BaseURL, pageNum, c.opts.PageSize)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, eris.Wrap(err, "source: create request")
	}
	req.Header.Set("X-Admin-Key", c.opts.AdminKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.doWithRetry(ctx, req)
	if err != nil {
		return nil, 0, eris.Wrapf(err, "source: fetch page %d", pageNum)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, 0, eris.Errorf("source: unexpected status %d from %s", resp.StatusCode, url)
	}

	var p page
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, 0, eris.Wrap(err, "source: decode page")
	}
	return p.Records, p.Total, nil
}

// FetchAll walks every page of the survey API and returns the combined
// record set.
func (c *Client) FetchAll(ctx context.Context) ([]model.SurveyRecord, error) {
	var all []model.SurveyRecord
	for pageNum := 1; ; pageNum++ {
		records, total, err := c.FetchPage(ctx, pageNum)
		if err != nil {
			return nil, err
		}
		all = append(all, records...)

		zap.L().Debug("source: fetched page",
			zap.Int("page", pageNum),
			zap.Int("records", len(records)),
			zap.Int("total", total),
		)

		if len(records) < c.opts.PageSize || (total > 0 && len(all) >= total) {
			break
		}
	}

	zap.L().Info("source: fetch complete", zap.Int("records", len(all)))
	return all, nil
}

func (c *Client) doWithRetry(ctx context.Context, req *http.Request) (*http.Response, error) {
	var lastErr error
	for attempt := range c.opts.MaxRetries {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "rate limiter wait")
		}

		cloned := req.Clone(ctx)
		resp, err := c.client.Do(cloned)
		if err != nil {
			lastErr = err
			zap.L().Warn("source: request failed, retrying",
				zap.String("url", req.URL.String()),
				zap.Int("attempt", attempt+1),
				zap.Error(err),
			)
			c.backoff(ctx, attempt)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			_ = resp.Body.Close()
			lastErr = eris.Errorf("http %d from %s", resp.StatusCode, req.URL.String())
			zap.L().Warn("source: transient status, retrying",
				zap.String("url", req.URL.String()),
				zap.Int("status", resp.StatusCode),
				zap.Int("attempt", attempt+1),
			)
			c.backoff(ctx, attempt)
			continue
		}

		return resp, nil
	}

	return nil, eris.Wrap(lastErr, "all retries exhausted")
}

func (c *Client) backoff(ctx context.Context, attempt int) {
	base := 500 * time.Millisecond
	maxBackoff := 15 * time.Second
	d := time.Duration(float64(base) * math.Pow(2, float64(attempt)))
	if d > maxBackoff {
		d = maxBackoff
	}
	jitter := time.Duration(rand.Int64N(int64(d) / 2))
	d = d + jitter

	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
