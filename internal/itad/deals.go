package itad

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

	"github.com/gamedealer/gamedealer/internal/metrics"
	domain "github.com/gamedealer/gamedealer/pkg/types"
)

const (
	defaultBaseURL = "https://api.isthereanydeal.com"
	defaultCountry = "US"
	defaultSort    = "-cut"
)

// HTTPClient implements Client against the live ITAD REST API.
type HTTPClient struct {
	apiKey      string
	baseURL     string
	country     string
	client      *http.Client
	rateLimiter *RateLimiter
}

// ClientOption configures the HTTPClient.
type ClientOption func(*HTTPClient)

// WithBaseURL overrides the default API endpoint.
func WithBaseURL(u string) ClientOption {
	return func(c *HTTPClient) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithCountry overrides the default price country.
func WithCountry(country string) ClientOption {
	return func(c *HTTPClient) {
		c.country = country
	}
}

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *HTTPClient) {
		c.client = hc
	}
}

// WithRateLimiter injects a rate limiter that controls per-second and daily
// API call limits. When set, every API call goes through Wait() first.
func WithRateLimiter(r *RateLimiter) ClientOption {
	return func(c *HTTPClient) {
		c.rateLimiter = r
	}
}

// NewHTTPClient creates a new ITAD API client.
func NewHTTPClient(apiKey string, opts ...ClientOption) *HTTPClient {
	c := &HTTPClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		country: defaultCountry,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type dealsAPIResponse struct {
	List    []DealItem `json:"list"`
	HasMore bool       `json:"hasMore"`
	Offset  int        `json:"offset"`
	Limit   int        `json:"limit"`
}

// Deals implements Client.Deals by querying /deals/v2.
func (c *HTTPClient) Deals(ctx context.Context, req DealsRequest) (*DealsResponse, error) {
	body, err := c.get(ctx, "/deals/v2", c.dealsParams(req))
	if err != nil {
		return nil, err
	}

	var apiResp dealsAPIResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("parsing deals response: %w", err)
	}

	return &DealsResponse{
		Items:   apiResp.List,
		Offset:  apiResp.Offset,
		Limit:   apiResp.Limit,
		HasMore: apiResp.HasMore,
	}, nil
}

// Stats implements Client.Stats by querying the popularity list matching
// the given source kind.
func (c *HTTPClient) Stats(
	ctx context.Context,
	kind domain.PopularitySourceKind,
	limit int,
) ([]StatsItem, error) {
	path, err := statsPath(kind)
	if err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = 500
	}
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", "0")

	body, err := c.get(ctx, path, params)
	if err != nil {
		return nil, err
	}

	var items []StatsItem
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("parsing stats response: %w", err)
	}
	return items, nil
}

func statsPath(kind domain.PopularitySourceKind) (string, error) {
	switch kind {
	case domain.SourceMostPopular:
		return "/stats/most-popular/v1", nil
	case domain.SourceMostWaitlisted:
		return "/stats/most-waitlisted/v1", nil
	case domain.SourceMostCollected:
		return "/stats/most-collected/v1", nil
	default:
		return "", fmt.Errorf("unknown popularity source kind: %q", kind)
	}
}

// get executes one authenticated GET against the API, honoring the rate
// limiter when one is configured.
func (c *HTTPClient) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	if c.rateLimiter != nil {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			if errors.Is(err, ErrDailyBudgetExhausted) {
				metrics.ITADDailyLimitHits.Inc()
			}
			return nil, fmt.Errorf("rate limit: %w", err)
		}
		metrics.ITADAPICallsTotal.Inc()
		metrics.ITADDailyUsage.Set(float64(c.rateLimiter.Used()))
	}

	params.Set("key", c.apiKey)
	u := c.baseURL + path + "?" + params.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating HTTP request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf(
			"ITAD API error (status %d): %s",
			resp.StatusCode,
			string(body),
		)
	}

	return body, nil
}

func (c *HTTPClient) dealsParams(req DealsRequest) url.Values {
	params := url.Values{}

	limit := req.Limit
	if limit <= 0 {
		limit = 200
	}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(req.Offset))

	sort := req.Sort
	if sort == "" {
		sort = defaultSort
	}
	params.Set("sort", sort)

	country := req.Country
	if country == "" {
		country = c.country
	}
	params.Set("country", country)

	params.Set("nondeals", "false")
	params.Set("mature", "false")

	if len(req.ShopIDs) > 0 {
		ids := make([]string, 0, len(req.ShopIDs))
		for _, id := range req.ShopIDs {
			ids = append(ids, strconv.Itoa(id))
		}
		params.Set("shops", strings.Join(ids, ","))
	}

	return params
}
