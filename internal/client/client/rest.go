package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/wpkeeper/internal/client/notify"
	"github.com/dmitrijs2005/wpkeeper/internal/common"
	"github.com/dmitrijs2005/wpkeeper/internal/logging"
	"golang.org/x/time/rate"
)

const (
	DefaultTimeout = 30 * time.Second

	// APIErrorTitle is the notification title for failed requests.
	APIErrorTitle = "WordPress API Error"
)

// Target is anything a request can be addressed to: a stored Site or
// candidate Credentials.
type Target interface {
	BaseURL() string
	Authorization() string
}

// RestClient performs authenticated JSON requests against WordPress sites.
// It never retries.
type RestClient struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	notifier   notify.Notifier
	log        logging.Logger
}

type Option func(*RestClient)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *RestClient) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *RestClient) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithRateLimit caps outgoing requests per second; 0 means unlimited.
func WithRateLimit(requestsPerSecond float64) Option {
	return func(c *RestClient) {
		if requestsPerSecond <= 0 {
			c.limiter = nil
			return
		}
		burst := int(requestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
	}
}

func WithNotifier(n notify.Notifier) Option {
	return func(c *RestClient) {
		if n != nil {
			c.notifier = n
		}
	}
}

func WithLogger(l logging.Logger) Option {
	return func(c *RestClient) {
		if l != nil {
			c.log = l
		}
	}
}

func NewRestClient(opts ...Option) *RestClient {
	c := &RestClient{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		notifier:   notify.Discard,
		log:        logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// EndpointURL joins the site base with the REST namespace and endpoint.
func EndpointURL(t Target, endpoint string) string {
	return t.BaseURL() + common.RESTNamespace + strings.TrimPrefix(endpoint, "/")
}

// Request sends one request to endpoint and decodes the JSON response into
// out when out is non-nil. Failures are notified, logged and returned.
func (c *RestClient) Request(ctx context.Context, t Target, method, endpoint string, body, out any) error {
	_, err := c.do(ctx, t, method, endpoint, body, out)
	if err != nil {
		c.log.Error(ctx, "error fetching endpoint", "endpoint", endpoint, "method", method, "error", err)
		c.notifier.Notify(ctx, notify.Notification{
			Title:       APIErrorTitle,
			Description: err.Error(),
			Severity:    notify.SeverityDestructive,
		})
		return err
	}
	return nil
}

// Get is Request with GET.
func (c *RestClient) Get(ctx context.Context, t Target, endpoint string, out any) error {
	return c.Request(ctx, t, http.MethodGet, endpoint, nil, out)
}

// Total returns the X-WP-Total collection size of endpoint. Failures are
// returned without a notification.
func (c *RestClient) Total(ctx context.Context, t Target, endpoint string) (int, error) {
	sep := "?"
	if strings.Contains(endpoint, "?") {
		sep = "&"
	}
	h, err := c.do(ctx, t, http.MethodGet, endpoint+sep+"per_page=1", nil, nil)
	if err != nil {
		c.log.Debug(ctx, "collection total unavailable", "endpoint", endpoint, "error", err)
		return 0, err
	}

	raw := h.Get("X-WP-Total")
	if raw == "" {
		return 0, fmt.Errorf("%s: missing X-WP-Total header", endpoint)
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: bad X-WP-Total %q: %w", endpoint, raw, err)
	}
	return n, nil
}

func (c *RestClient) do(ctx context.Context, t Target, method, endpoint string, body, out any) (http.Header, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	u := EndpointURL(t, endpoint)
	if _, err := url.Parse(u); err != nil {
		return nil, fmt.Errorf("invalid site url: %w", err)
	}

	var bodyReader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if auth := t.Authorization(); auth != "" {
		req.Header.Set("Authorization", auth)
	}

	c.log.Debug(ctx, "REST API request", "method", method, "endpoint", endpoint)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response body: %w", ErrUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(respBody), Endpoint: endpoint}
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", endpoint, err)
		}
	}
	return resp.Header, nil
}
