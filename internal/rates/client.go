// Package rates resolves day-keyed USD→ARS quotes from the public
// currency CDN.
package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"despensa/internal/config"
)

const quoteDateLayout = "2006-01-02"

type Client struct {
	cfg        config.Config
	httpClient *http.Client
	limiter    *RateLimiter
}

type quotePayload struct {
	Date string             `json:"date"`
	USD  map[string]float64 `json:"usd"`
}

func NewClient(cfg config.Config) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: time.Duration(cfg.RatesTimeoutMs) * time.Millisecond},
		limiter:    NewRateLimiter(cfg.RatesRateLimitRPS),
	}
}

// USDToARS returns how many pesos one dollar bought on the given day
// (YYYY-MM-DD).
func (c *Client) USDToARS(ctx context.Context, date string) (float64, error) {
	if _, err := time.Parse(quoteDateLayout, date); err != nil {
		return 0, fmt.Errorf("invalid quote date %q: want YYYY-MM-DD", date)
	}

	body, err := c.fetchJSON(ctx, strings.Replace(c.cfg.RatesAPIURL, "{date}", date, 1))
	if err != nil {
		return 0, err
	}

	var payload quotePayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return 0, fmt.Errorf("decode quote for %s: %w", date, err)
	}
	rate, ok := payload.USD["ars"]
	if !ok || rate <= 0 {
		return 0, fmt.Errorf("quote for %s carries no ars rate", date)
	}
	return rate, nil
}

func (c *Client) fetchJSON(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= 5; attempt++ {
		c.limiter.WaitTurn()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			lastErr = readErr
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			if isRetryableStatus(resp.StatusCode) && attempt < 5 {
				backoff := time.Duration(250*(1<<(attempt-1))+rand.Intn(100)) * time.Millisecond
				time.Sleep(backoff)
				lastErr = fmt.Errorf("rates status %d", resp.StatusCode)
				continue
			}
			return nil, fmt.Errorf("rates api error: status=%d body=%s", resp.StatusCode, string(body))
		}
		return body, nil
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("rates request failed: %s", url)
	}
	return nil, lastErr
}

func isRetryableStatus(status int) bool {
	switch status {
	case 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}
