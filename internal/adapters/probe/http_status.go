package probe

import (
	"context"
	"net/http"
	"slices"

	"vigil/internal/core/checker"
	perr "vigil/internal/platform/errors"
)

// httpStatusCheck is the plain endpoint probe: hit a URL and map the response
// code onto the default status bands
type httpStatusCheck struct {
	key      string
	method   string
	url      string
	header   http.Header
	proxy    string
	expected []int
}

// NewHTTPStatus builds the probe registered as "probe/http_status".
// Config keys: url (required), method, headers, proxy, and
// expected_http_statuses, a list of codes treated as up regardless of band.
// Checks that use the override surface it under metadata.expected_http_statuses
func NewHTTPStatus(sp checker.Spec) (checker.Check, error) {
	u := cfgString(sp.Config, "url", "")
	if u == "" {
		return nil, perr.Validationf("probe %s: url is required", sp.CheckKey)
	}
	return &httpStatusCheck{
		key:      sp.CheckKey,
		method:   cfgString(sp.Config, "method", http.MethodGet),
		url:      u,
		header:   cfgHeader(sp.Config, "headers"),
		proxy:    cfgString(sp.Config, "proxy", ""),
		expected: cfgInts(sp.Config, "expected_http_statuses"),
	}, nil
}

func (c *httpStatusCheck) Key() string { return c.key }

func (c *httpStatusCheck) Run(ctx context.Context, client checker.Client) (checker.Result, error) {
	resp, err := client.Do(ctx, checker.Request{Method: c.method, URL: c.url, Header: c.header, Proxy: c.proxy})
	if err != nil {
		return checker.Result{}, err
	}
	res := resultFor(c.key, resp)
	if len(c.expected) > 0 {
		if slices.Contains(c.expected, resp.StatusCode) {
			res.Status = checker.StatusUp
		}
		setMeta(&res, "expected_http_statuses", c.expected)
	}
	return res, nil
}
