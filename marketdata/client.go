package marketdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/optionometer/config"
	"github.com/rustyeddy/optionometer/market"
	"github.com/rustyeddy/optionometer/metrics"
)

const (
	// DefaultURL is the production market data endpoint
	DefaultURL = "https://api.marketdata.app"

	optionChainPath    = "/v1/options/chain"
	rateLimitRemaining = "X-Api-Ratelimit-Remaining"
	dateLayout         = "2006-01-02"
)

// Importer supplies option chains for a ticker whose expirations fall
// between minDTE and maxDTE days from now.
type Importer interface {
	FetchOptionChains(ctx context.Context, ticker string, minDTE, maxDTE int) ([]market.OptionChain, error)
}

// APIError is returned for any HTTP status of 400 or above.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Body)
}

// Client represents a market data API client
type Client struct {
	baseURL    string
	token      string
	maxStrikes int
	httpClient *http.Client
	cache      Cache
	cacheTTL   time.Duration
	log        zerolog.Logger
	now        func() time.Time
}

var _ Importer = (*Client)(nil)

// NewClient creates a client from the marketdata config section
func NewClient(cfg config.MarketDataConfig, log zerolog.Logger) (*Client, error) {
	timeout, err := cfg.ParseTimeout()
	if err != nil {
		return nil, fmt.Errorf("parse timeout: %w", err)
	}
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	baseURL := strings.TrimRight(cfg.RootEndpoint, "/")
	if baseURL == "" {
		baseURL = DefaultURL
	}
	maxStrikes := cfg.MaxStrikes
	if maxStrikes <= 0 {
		maxStrikes = 10
	}

	return &Client{
		baseURL:    baseURL,
		token:      cfg.Token,
		maxStrikes: maxStrikes,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
		now:        time.Now,
	}, nil
}

// WithCache serves repeated requests from c for ttl.
func (c *Client) WithCache(cache Cache, ttl time.Duration) *Client {
	c.cache = cache
	c.cacheTTL = ttl
	return c
}

// ChainRequest describes one option chain query
type ChainRequest struct {
	Ticker      string
	From        time.Time // earliest expiration
	To          time.Time // latest expiration
	StrikeLimit int
}

// NewChainRequest builds the request for expirations minDTE to maxDTE days
// out. Dates are whole UTC days so identical requests on one day share a
// cache entry.
func (c *Client) NewChainRequest(ticker string, minDTE, maxDTE int) ChainRequest {
	today := c.now().UTC()
	return ChainRequest{
		Ticker:      ticker,
		From:        today.AddDate(0, 0, minDTE),
		To:          today.AddDate(0, 0, maxDTE),
		StrikeLimit: c.maxStrikes,
	}
}

func (r ChainRequest) url(baseURL string) string {
	params := url.Values{}
	params.Set("from", r.From.Format(dateLayout))
	params.Set("to", r.To.Format(dateLayout))
	params.Set("strikeLimit", strconv.Itoa(r.StrikeLimit))

	return fmt.Sprintf("%s%s/%s/?%s", baseURL, optionChainPath, url.PathEscape(r.Ticker), params.Encode())
}

func (r ChainRequest) cacheKey() string {
	return fmt.Sprintf("optionometer:chain:%s:%s:%s:%d",
		r.Ticker, r.From.Format(dateLayout), r.To.Format(dateLayout), r.StrikeLimit)
}

// FetchOptionChains fetches and converts the option chains for ticker
func (c *Client) FetchOptionChains(ctx context.Context, ticker string, minDTE, maxDTE int) ([]market.OptionChain, error) {
	body, err := c.FetchRaw(ctx, c.NewChainRequest(ticker, minDTE, maxDTE))
	if err != nil {
		return nil, err
	}

	r, err := decodeResponse(body)
	if err != nil {
		return nil, err
	}

	s := r.summarize()
	c.log.Info().
		Str("ticker", ticker).
		Int("options", s.count).
		Float64("min_strike", s.minStrike).
		Float64("max_strike", s.maxStrike).
		Time("nearest", time.Unix(s.nearest, 0).UTC()).
		Time("farthest", time.Unix(s.farthest, 0).UTC()).
		Msg("options found")

	chains, err := r.chains(ticker)
	if err != nil {
		return nil, err
	}
	metrics.ChainsFetchedTotal.WithLabelValues(ticker).Add(float64(len(chains)))
	return chains, nil
}

// FetchRaw returns the unparsed response body for req, from the cache when
// one is configured and holds it.
func (c *Client) FetchRaw(ctx context.Context, req ChainRequest) ([]byte, error) {
	if req.Ticker == "" {
		return nil, fmt.Errorf("ticker is required")
	}
	key := req.cacheKey()

	if c.cache != nil {
		body, ok, err := c.cache.Get(ctx, key)
		switch {
		case err != nil:
			c.log.Warn().Err(err).Str("key", key).Msg("cache lookup failed")
		case ok:
			metrics.CacheLookupsTotal.WithLabelValues("hit").Inc()
			c.log.Debug().Str("key", key).Msg("option chain served from cache")
			return body, nil
		default:
			metrics.CacheLookupsTotal.WithLabelValues("miss").Inc()
		}
	}

	apiURL := req.url(c.baseURL)
	c.log.Info().Str("url", apiURL).Str("ticker", req.Ticker).Msg("requesting option chain")

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	metrics.APIRequestsTotal.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()
	if v := resp.Header.Get(rateLimitRemaining); v != "" {
		c.log.Info().Str("remaining", v).Msg("daily rate limit")
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			metrics.RateLimitRemaining.Set(n)
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		if isNoData(body) {
			return nil, ErrNoData
		}
		c.log.Error().Int("status", resp.StatusCode).Str("body", string(body)).Msg("option chain request failed")
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, key, body, c.cacheTTL); err != nil {
			c.log.Warn().Err(err).Str("key", key).Msg("cache store failed")
		}
	}
	return body, nil
}

// isNoData reports whether an error body is the vendor's empty result.
func isNoData(body []byte) bool {
	var r struct {
		S string `json:"s"`
	}
	return json.Unmarshal(body, &r) == nil && r.S == "no_data"
}

// IsNotFound reports whether err means the request matched nothing.
func IsNotFound(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusNotFound
	}
	return errors.Is(err, ErrNoData)
}
