// Package probe provides the bounded HTTP client probes share and the
// parameterized probe constructors registered with the checker runtime
package probe

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"vigil/internal/core/checker"
	perr "vigil/internal/platform/errors"
	"vigil/internal/platform/logger"
)

const (
	defaultUA           = "vigil/1"
	defaultMaxBodyBytes = 1 << 20
)

// Options configures the Client
type Options struct {
	// UserAgent is sent on every request unless the check sets its own
	UserAgent string

	// MaxBodyBytes caps how much of a response body gets buffered
	MaxBodyBytes int64

	// MaxJSONBodyBytes caps JSON bodies separately, zero means MaxBodyBytes
	MaxJSONBodyBytes int64

	// Proxy resolves opaque per-check proxy settings, nil means Passthrough
	Proxy ProxyResolver
}

// Client is the shared probe transport with bounded response buffering.
// Deadlines come from the request context; the execute envelope owns them
type Client struct {
	http *http.Client
	opts Options
	log  logger.Logger
	now  func() time.Time

	mu      sync.Mutex
	proxied map[string]*http.Client
}

// New creates a Client with sane defaults
func New(o Options) *Client {
	if o.UserAgent == "" {
		o.UserAgent = defaultUA
	}
	if o.MaxBodyBytes <= 0 {
		o.MaxBodyBytes = defaultMaxBodyBytes
	}
	if o.MaxJSONBodyBytes <= 0 {
		o.MaxJSONBodyBytes = o.MaxBodyBytes
	}
	if o.Proxy == nil {
		o.Proxy = Passthrough{}
	}
	return &Client{
		http:    &http.Client{},
		opts:    o,
		log:     *logger.Named("probe"),
		now:     time.Now,
		proxied: make(map[string]*http.Client),
	}
}

// Do sends one probe request and buffers the response body up to the
// configured limit, picking the JSON limit when Content-Type says json.
// Redirects are followed. Stream requests get the raw body back instead
// and the caller owns closing it
func (c *Client) Do(ctx context.Context, req checker.Request) (*checker.Response, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	hreq, err := http.NewRequestWithContext(ctx, method, req.URL, nil)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "probe new request failed")
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			hreq.Header.Add(k, v)
		}
	}
	if hreq.Header.Get("User-Agent") == "" {
		hreq.Header.Set("User-Agent", c.opts.UserAgent)
	}

	hc, err := c.clientFor(req.Proxy)
	if err != nil {
		return nil, err
	}

	start := c.now()
	resp, err := hc.Do(hreq)
	lat := c.now().Sub(start)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "probe request failed")
	}

	if req.Stream {
		return &checker.Response{
			StatusCode: resp.StatusCode,
			Header:     resp.Header,
			Latency:    lat,
			RawBody:    resp.Body,
		}, nil
	}

	limit := c.opts.MaxBodyBytes
	if strings.Contains(strings.ToLower(resp.Header.Get("Content-Type")), "json") {
		limit = c.opts.MaxJSONBodyBytes
	}
	body, truncated, err := BoundedBody(resp.Body, limit)
	if err != nil {
		_ = resp.Body.Close()
		return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "probe body read failed")
	}
	// close without draining so a capped body gives up the connection
	_ = resp.Body.Close()

	var meta map[string]any
	if truncated {
		meta = map[string]any{
			checker.MetaBodyTruncated: true,
			checker.MetaBodyLimit:     limit,
			checker.MetaBodySize:      int64(len(body)),
		}
	}

	c.log.Debug().
		Str("method", method).
		Str("url", req.URL).
		Int("status", resp.StatusCode).
		Dur("latency", lat).
		Bool("truncated", truncated).
		Msg("probe http response")

	return &checker.Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
		Meta:       meta,
		Latency:    lat,
	}, nil
}

// clientFor returns the shared client, or a per-proxy client when the check
// carries a proxy setting. Proxied clients are cached for the process lifetime
func (c *Client) clientFor(setting string) (*http.Client, error) {
	if setting == "" {
		return c.http, nil
	}
	resolved, err := c.opts.Proxy.Resolve(setting)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "probe proxy resolve failed")
	}
	if resolved == "" {
		return c.http, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if hc, ok := c.proxied[resolved]; ok {
		return hc, nil
	}
	u, err := url.Parse(resolved)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "probe proxy url invalid")
	}
	hc := &http.Client{Transport: &http.Transport{Proxy: http.ProxyURL(u)}}
	c.proxied[resolved] = hc
	return hc, nil
}
