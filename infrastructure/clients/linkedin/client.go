package linkedin

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"post-manager/domain/model"
	"post-manager/infrastructure/logger"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

// Options configures the upstream client.
type Options struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerMinute int
	Burst             int
}

// Client executes authenticated requests against the LinkedIn REST API or a proxy in front of it.
type Client struct {
	client  *resty.Client
	limiter *rate.Limiter
}

func NewClient(opts Options) *Client {
	limit := rate.Inf
	if opts.RequestsPerMinute > 0 {
		limit = rate.Limit(float64(opts.RequestsPerMinute) / 60.0)
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = 1
	}
	c := &Client{limiter: rate.NewLimiter(limit, burst)}

	c.client = resty.New().
		SetBaseURL(strings.TrimRight(opts.BaseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetHeader("X-Restli-Protocol-Version", "2.0.0").
		OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
			return c.limiter.Wait(r.Context())
		})
	if opts.Timeout > 0 {
		c.client.SetTimeout(opts.Timeout)
	}
	return c
}

// Get issues an authenticated GET and returns the raw body of a 2xx answer.
func (c *Client) Get(ctx context.Context, path, token string) ([]byte, error) {
	return c.Send(ctx, http.MethodGet, path, token, nil)
}

// Send issues an authenticated request with an optional JSON body.
func (c *Client) Send(ctx context.Context, method, path, token string, body interface{}) ([]byte, error) {
	req := c.client.R().
		SetContext(ctx).
		SetAuthToken(token)
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	if !resp.IsSuccess() {
		logger.GetLogger().WithFields(map[string]interface{}{
			"method": method,
			"path":   path,
			"status": resp.StatusCode(),
		}).Debug("LinkedIn API answered with an error status")
		return nil, &model.UpstreamError{StatusCode: resp.StatusCode(), Body: resp.String()}
	}
	return resp.Body(), nil
}
