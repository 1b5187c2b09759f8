package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"time"

	"golang.org/x/oauth2"

	"github.com/tbouvier/repolang/pkg/errs"
	"github.com/tbouvier/repolang/pkg/httputil"
)

const (
	defaultBaseURL     = "https://api.github.com"
	defaultHourlyLimit = 5000
	httpTimeout        = 30 * time.Second
)

// Config configures a Client.
type Config struct {
	// Token is the API token. When empty, requests are unauthenticated
	// (GitHub then applies much lower rate limits).
	Token string

	// BaseURL overrides the API base URL. Defaults to the public API.
	BaseURL string

	// HourlyLimit is the self-imposed request budget per hour.
	// Defaults to 5000, the authenticated GitHub limit.
	HourlyLimit int
}

// Client is a rate-limited GitHub REST client.
//
// Every request first waits out the pacing interval (3600s / hourly limit)
// since the previous successful call, so a long-running collection stays
// under the budget without bursting. Failed responses are propagated, never
// retried: the collection driver treats a failed pass as abandoning the
// current repository or query.
//
// A Client owns a single mutable pacing state and a single-entry response
// cache; the design assumes exactly one Client per process and no concurrent
// callers.
type Client struct {
	http    *http.Client
	baseURL string
	pacer   *httputil.Pacer

	cached *cacheEntry
}

// cacheEntry is the most recent cached parsed body and its resolved URL.
type cacheEntry struct {
	url  string
	body []byte
}

// RawResponse is the transport-level view of a response, exposed so callers
// can read pagination metadata from the headers.
type RawResponse struct {
	StatusCode int
	Header     http.Header
	Body       json.RawMessage
	URL        string
}

// LastPage returns the page number of the rel="last" pagination link, or -1
// if the response carries none.
func (r *RawResponse) LastPage() int {
	return httputil.LastPage(r.Header.Get("Link"))
}

// NewClient creates a Client from cfg, applying defaults for unset fields.
// When a token is configured, the underlying HTTP client authenticates every
// request with a bearer header via oauth2.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.HourlyLimit <= 0 {
		cfg.HourlyLimit = defaultHourlyLimit
	}

	httpc := &http.Client{Timeout: httpTimeout}
	if cfg.Token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
		httpc = oauth2.NewClient(context.Background(), ts)
		httpc.Timeout = httpTimeout
	}

	return &Client{
		http:    httpc,
		baseURL: cfg.BaseURL,
		pacer:   httputil.NewPacer(cfg.HourlyLimit),
	}
}

// CachedResponse returns the most recently cached response body and its
// resolved URL. The returned body is an independent copy; mutating it cannot
// affect the cache. ok is false until a request has been made with caching
// enabled.
func (c *Client) CachedResponse() (resolvedURL string, body json.RawMessage, ok bool) {
	if c.cached == nil {
		return "", nil, false
	}
	return c.cached.url, slices.Clone(c.cached.body), true
}

// get performs a paced GET against path and returns the parsed JSON body.
// When cache is true, an independent copy of the body and the resolved URL
// are stored as the most recent cache entry.
func (c *Client) get(ctx context.Context, path string, params url.Values, cache bool) (json.RawMessage, error) {
	raw, err := c.getRaw(ctx, path, params)
	if err != nil {
		return nil, err
	}
	if cache {
		c.cached = &cacheEntry{url: raw.URL, body: slices.Clone(raw.Body)}
	}
	return raw.Body, nil
}

// getRaw performs a paced GET against path and returns the transport-level
// response. Raw responses are never cached, regardless of the caller.
func (c *Client) getRaw(ctx context.Context, path string, params url.Values) (*RawResponse, error) {
	if err := c.pacer.Wait(ctx); err != nil {
		return nil, err
	}

	fullURL := c.baseURL + path
	if len(params) > 0 {
		fullURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "build request for %s", path)
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeNetwork, err, "request %s", path)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeNetwork, err, "read response from %s", path)
	}

	if err := c.checkStatus(resp, path); err != nil {
		return nil, err
	}
	c.pacer.Mark()

	return &RawResponse{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
		URL:        resp.Request.URL.String(),
	}, nil
}

// checkStatus maps a non-2xx response to the error taxonomy. An exhausted
// rate budget (403 with X-RateLimit-Remaining: 0) is distinguished from
// other failures so the driver can report how long the budget takes to
// reset; it is still propagated, not retried.
func (c *Client) checkStatus(resp *http.Response, path string) error {
	code := resp.StatusCode
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return errs.New(errs.ErrCodeNotFound, "resource not found: %s", path)
	case code == http.StatusForbidden && resp.Header.Get("X-RateLimit-Remaining") == "0":
		return errs.Wrap(errs.ErrCodeRateLimited, rateLimitedError(resp.Header), "request %s", path)
	default:
		return errs.New(errs.ErrCodeHTTPStatus, "unexpected status %d for %s", code, path)
	}
}

func rateLimitedError(h http.Header) *errs.RateLimitedError {
	e := &errs.RateLimitedError{Message: "api rate limit exceeded"}
	if reset, err := strconv.ParseInt(h.Get("X-RateLimit-Reset"), 10, 64); err == nil {
		if after := time.Until(time.Unix(reset, 0)); after > 0 {
			e.RetryAfter = int(after.Seconds())
		}
	}
	return e
}

// decodeInto unmarshals body into v, mapping failures to DECODE_ERROR.
func decodeInto(body json.RawMessage, v any, what string) error {
	if err := json.Unmarshal(body, v); err != nil {
		return errs.Wrap(errs.ErrCodeDecode, err, "decode %s", what)
	}
	return nil
}

func repoPath(owner, name string) string {
	return fmt.Sprintf("/repos/%s/%s", owner, name)
}
