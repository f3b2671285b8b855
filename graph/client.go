// Package graph is a minimal Microsoft Graph API client covering the
// endpoints ring promotion needs: policy lookup across the known policy
// categories, group lookup, per-device deployment status reports and
// assignment reads and writes.
package graph

import (
	"bytes"
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

	"github.com/ringshift/ringshift/pkg/retry"
	"github.com/ringshift/ringshift/pkg/ringhttp"
	"golang.org/x/oauth2"
)

const (
	defaultBaseURL = "https://graph.microsoft.com/v1.0"
	userAgent      = "ringshift"
)

// Client performs authenticated calls against the Graph API. Construct
// it once per run with NewClient; it is safe for concurrent use.
type Client struct {
	http    *http.Client
	baseURL string
	tokens  oauth2.TokenSource

	// retryInterval seeds the backoff between retries of throttled or
	// server-failed requests. Tests shrink it.
	retryInterval time.Duration
}

type ClientOption func(*Client)

// WithBaseURL points the client at a different Graph root. Used by tests
// and by sovereign-cloud tenants whose endpoint is not the public one.
func WithBaseURL(rawURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(rawURL, "/")
	}
}

// WithTimeout overrides the default per-request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// NewClient returns a Graph client authenticating with tokens.
func NewClient(tokens oauth2.TokenSource, opts ...ClientOption) *Client {
	c := &Client{
		http: ringhttp.NewClient(
			ringhttp.WithTimeout(30*time.Second),
			ringhttp.WithUserAgent(userAgent),
		),
		baseURL:       defaultBaseURL,
		tokens:        tokens,
		retryInterval: 2 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// url joins a resource path and optional query onto the Graph root.
func (c *Client) url(path string, query url.Values) string {
	u := c.baseURL + "/" + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// Error is a Graph API failure, decoded from the service's error
// envelope when one is present.
type Error struct {
	StatusCode int
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("Graph API returned %d %s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("Graph API returned status %d", e.StatusCode)
}

// NotFound reports whether the resource does not exist, which policy
// detection treats as "try the next category" rather than a failure.
func (e *Error) NotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// transient reports whether the request is worth retrying: throttling
// and server-side failures are, everything else is not.
func (e *Error) transient() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}

type errorEnvelope struct {
	Err Error `json:"error"`
}

// page is Graph's collection response shape: one page of items plus a
// link to the next page, absent on the last one.
type page[T any] struct {
	Value    []T    `json:"value"`
	NextLink string `json:"@odata.nextLink"`
}

// do performs one authenticated request, decoding the JSON response into
// dest. The request is rebuilt per attempt so a retried POST resends its
// body. Throttled and server-failed requests honor a numeric Retry-After
// before retrying with backoff.
func do[T any](ctx context.Context, c *Client, method, rawURL string, body any, dest *T) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
	}

	attempt := func() error {
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
		if err != nil {
			return fmt.Errorf("creating request to Graph endpoint: %w", err)
		}
		tok, err := c.tokens.Token()
		if err != nil {
			return fmt.Errorf("acquiring Graph access token: %w", err)
		}
		tok.SetAuthHeader(req)
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return fmt.Errorf("making request to Graph endpoint: %w", err)
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("reading response body from Graph endpoint: %w", err)
		}

		if resp.StatusCode >= http.StatusBadRequest {
			gerr := &Error{StatusCode: resp.StatusCode}
			var envelope errorEnvelope
			if err := json.Unmarshal(raw, &envelope); err == nil {
				gerr.Code = envelope.Err.Code
				gerr.Message = envelope.Err.Message
			}
			// When throttling, Graph says exactly how long to wait;
			// honoring that beats guessing with backoff.
			if gerr.transient() {
				if seconds, err := strconv.ParseInt(resp.Header.Get("Retry-After"), 10, 0); err == nil && seconds > 0 {
					ticker := time.NewTicker(time.Duration(seconds) * time.Second)
					defer ticker.Stop()
					select {
					case <-ticker.C:
					case <-ctx.Done():
						return ctx.Err()
					}
				}
			}
			return gerr
		}

		if dest != nil && len(raw) > 0 {
			if err := json.Unmarshal(raw, dest); err != nil {
				return fmt.Errorf("decoding response data from Graph endpoint: %w", err)
			}
		}
		return nil
	}

	err := attempt()
	var gerr *Error
	if errors.As(err, &gerr) && gerr.transient() {
		err = retry.Do(attempt,
			retry.WithBackoffMultiplier(2),
			retry.WithInterval(c.retryInterval),
			retry.WithMaxAttempts(3),
		)
	}
	return err
}

// getPaged follows a collection's @odata.nextLink chain and returns the
// items of every page.
func getPaged[T any](ctx context.Context, c *Client, rawURL string) ([]T, error) {
	var out []T
	for rawURL != "" {
		var p page[T]
		if err := do(ctx, c, http.MethodGet, rawURL, nil, &p); err != nil {
			return nil, err
		}
		out = append(out, p.Value...)
		rawURL = p.NextLink
	}
	return out, nil
}
