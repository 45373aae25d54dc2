// Package naturvard contains REST clients for the upstream
// protected-area registries served from Naturvårdsverket's geodata
// platform. All geometry leaves this package in the national grid
// (EPSG:3006), exactly as upstream sends it.
package naturvard

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
)

// ErrUpstream marks network/HTTP failures from a registry call.
// Callers test for it with errors.Is.
var ErrUpstream = errors.New("naturvard: upstream request failed")

// ErrNotFound marks an upstream 404: the area id does not exist in
// the registry. Wraps ErrUpstream.
var ErrNotFound = fmt.Errorf("%w: not found", ErrUpstream)

// Client is the shared HTTP layer under all three registry clients.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates the shared upstream HTTP client. timeout bounds
// every individual request; a timed-out fetch is an upstream failure.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// getJSON issues a GET and decodes a JSON body into out.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	body, err := c.get(ctx, path, query, "application/json")
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrUpstream, path, err)
	}
	return nil
}

// getText issues a GET and returns the raw body as a string.
func (c *Client) getText(ctx context.Context, path string, query url.Values) (string, error) {
	body, err := c.get(ctx, path, query, "text/plain")
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, accept string) ([]byte, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrUpstream, err)
	}
	req.Header.Set("Accept", accept)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if resp.StatusCode != http.StatusOK {
		// Read a little of the body for the log line; registries
		// return plain-text error descriptions.
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, fmt.Errorf("%w: %s returned %d: %s",
			ErrUpstream, path, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrUpstream, err)
	}
	return body, nil
}

func intQuery(q url.Values, key string, v int) {
	if v > 0 {
		q.Set(key, strconv.Itoa(v))
	}
}
