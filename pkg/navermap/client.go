// Package navermap is the map provider client: local place search around a
// coordinate, visitor reviews, and forward geocoding.
package navermap

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/nearbite/nearbite/internal/resilience"
)

const defaultBaseURL = "https://openapi.naver.com"

// Place is one place returned by local search.
type Place struct {
	ID       string
	Name     string
	Category string
	Address  string
	Lat      float64
	Lon      float64
}

// Review is one visitor review.
type Review struct {
	Author  string
	Rating  *float64
	Content string
}

// Point is a WGS84 coordinate.
type Point struct {
	Lat float64
	Lon float64
}

// Client is the provider surface consumed by discovery and geocoding.
type Client interface {
	PlacesAround(ctx context.Context, lat, lon float64, radiusMeters, offset, pageSize int, categoryFilter string) ([]Place, error)
	ReviewsFor(ctx context.Context, placeID string, maxCount int) ([]Review, error)
	PlaceSearch(ctx context.Context, text string, limit int) ([]Place, error)
	ForwardGeocode(ctx context.Context, text string) (*Point, error)
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) { c.baseURL = u }
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) { c.http = hc }
}

// WithRateLimit caps outgoing requests per second.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) { c.limiter = rate.NewLimiter(rate.Limit(rps), 1) }
}

// WithRetryPolicy overrides the default retry policy.
func WithRetryPolicy(p resilience.Policy) Option {
	return func(c *httpClient) { c.retry = p }
}

type httpClient struct {
	clientID     string
	clientSecret string
	baseURL      string
	http         *http.Client
	limiter      *rate.Limiter
	retry        resilience.Policy
}

// NewClient creates a map provider client authenticated with the given
// application credentials.
func NewClient(clientID, clientSecret string, opts ...Option) Client {
	c := &httpClient{
		clientID:     clientID,
		clientSecret: clientSecret,
		baseURL:      defaultBaseURL,
		http: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: rate.NewLimiter(rate.Limit(10), 1),
		retry:   resilience.DefaultPolicy(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// get issues one rate-limited, retried GET and decodes the JSON body into out.
func (c *httpClient) get(ctx context.Context, op, path string, params url.Values, out any) error {
	_, err := resilience.Retry(ctx, c.retry, op, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, c.getOnce(ctx, path, params, out)
	})
	return err
}

func (c *httpClient) getOnce(ctx context.Context, path string, params url.Values, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return eris.Wrap(err, "navermap: rate limit wait")
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return eris.Wrap(err, "navermap: build request")
	}
	req.Header.Set("X-Naver-Client-Id", c.clientID)
	req.Header.Set("X-Naver-Client-Secret", c.clientSecret)

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "navermap: send request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "navermap: read response")
	}

	if resp.StatusCode != http.StatusOK {
		err := eris.Errorf("navermap: unexpected status %d: %s", resp.StatusCode, string(body))
		if resilience.RetryableStatus(resp.StatusCode) {
			return resilience.MarkTransient(err, resp.StatusCode)
		}
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return eris.Wrap(err, "navermap: decode response")
	}
	return nil
}
