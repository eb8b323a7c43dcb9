package neighbors

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"graph-crawler/internal/models"
)

// DefaultUserAgent identifies the crawler to the neighbor service.
const DefaultUserAgent = "GraphCrawler/1.0"

// DefaultBaseURL is the public Hollywood graph neighbor endpoint.
const DefaultBaseURL = "http://hollywood-graph-crawler.bridgesuncc.org/neighbors/"

const (
	connectTimeout = 5 * time.Second
	maxBodyBytes   = 8 << 20
)

var ErrUnexpectedStatus = errors.New("neighbors: unexpected status")

// Client fetches neighbor lists over HTTP: GET {baseURL}/{escaped node id}.
type Client struct {
	baseURL   string
	userAgent string
	client    *http.Client
	debug     bool
}

// NewClient returns a Client for baseURL. The returned client's total request timeout
// is timeout; callers may also pass a context deadline.
func NewClient(baseURL, userAgent string, timeout time.Duration, debug bool) *Client {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: connectTimeout}).DialContext,
		ResponseHeaderTimeout: timeout,
		MaxIdleConnsPerHost:   64,
	}
	return NewClientWithHTTP(baseURL, userAgent, &http.Client{Transport: transport, Timeout: timeout}, debug)
}

// NewClientWithHTTP builds a Client around an existing http.Client (tests).
func NewClientWithHTTP(baseURL, userAgent string, httpClient *http.Client, debug bool) *Client {
	return &Client{
		baseURL:   baseURL,
		userAgent: userAgent,
		client:    httpClient,
		debug:     debug,
	}
}

// NodeURL joins baseURL and the path-escaped node id.
func NodeURL(baseURL string, id models.NodeID) string {
	return strings.TrimRight(baseURL, "/") + "/" + url.PathEscape(string(id))
}

// Fetch implements crawler.NeighborService. Transport failures, non-2xx responses and
// bodies that are not {"neighbors": [strings]} all return an error.
func (c *Client) Fetch(ctx context.Context, id models.NodeID) ([]models.NodeID, error) {
	target := NodeURL(c.baseURL, id)
	if c.debug {
		log.Printf("neighbors request url=%s", target)
	}
	body, err := c.get(ctx, target)
	if err != nil {
		return nil, err
	}
	if c.debug {
		log.Printf("neighbors response url=%s body=%s", target, body)
	}
	return ParseNeighbors(body)
}

func (c *Client) get(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w %d for %s", ErrUnexpectedStatus, resp.StatusCode, target)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", target, err)
	}
	return body, nil
}
