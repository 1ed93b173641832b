package httpclient

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// Response is the subset of an HTTP response the pipeline reads.
type Response interface {
	Body() []byte
	StatusCode() int
}

// Client issues GET requests with per-call headers. Implementations carry
// their own timeout; callers decide how to react to non-2xx statuses.
type Client interface {
	Get(ctx context.Context, url string, headers map[string]string) (Response, error)
}

// FetchError reports a non-2xx response for a specific URL. Snippet holds a
// truncated piece of the body for diagnostics.
type FetchError struct {
	URL     string
	Status  int
	Snippet string
}

func (e *FetchError) Error() string {
	if e.Snippet == "" {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("fetch %s: status %d body: %s", e.URL, e.Status, e.Snippet)
}

type restyClient struct {
	rc *resty.Client
}

// NewRestyClient returns a resty-backed Client with the given request timeout.
func NewRestyClient(timeout time.Duration) Client {
	rc := resty.New().
		SetTimeout(timeout).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(5))
	return &restyClient{rc: rc}
}

func (c *restyClient) Get(ctx context.Context, url string, headers map[string]string) (Response, error) {
	resp, err := c.rc.R().
		SetContext(ctx).
		SetHeaders(headers).
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", url, err)
	}
	return resp, nil
}
