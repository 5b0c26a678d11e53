package probe

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"vigil/internal/core/checker"
	perr "vigil/internal/platform/errors"
)

// htmlMarkerCheck requires a marker substring in a 2xx body. A page that
// answers but lost the marker reads as degraded, not down
type htmlMarkerCheck struct {
	key    string
	method string
	url    string
	header http.Header
	proxy  string
	marker string
}

// NewHTMLMarker builds the probe registered as "probe/html_marker".
// Config keys: url and marker (both required), method, headers, proxy
func NewHTMLMarker(sp checker.Spec) (checker.Check, error) {
	u := cfgString(sp.Config, "url", "")
	if u == "" {
		return nil, perr.Validationf("probe %s: url is required", sp.CheckKey)
	}
	marker := cfgString(sp.Config, "marker", "")
	if marker == "" {
		return nil, perr.Validationf("probe %s: marker is required", sp.CheckKey)
	}
	return &htmlMarkerCheck{
		key:    sp.CheckKey,
		method: cfgString(sp.Config, "method", http.MethodGet),
		url:    u,
		header: cfgHeader(sp.Config, "headers"),
		proxy:  cfgString(sp.Config, "proxy", ""),
		marker: marker,
	}, nil
}

func (c *htmlMarkerCheck) Key() string { return c.key }

func (c *htmlMarkerCheck) Run(ctx context.Context, client checker.Client) (checker.Result, error) {
	resp, err := client.Do(ctx, checker.Request{Method: c.method, URL: c.url, Header: c.header, Proxy: c.proxy})
	if err != nil {
		return checker.Result{}, err
	}
	res := resultFor(c.key, resp)
	if res.Status != checker.StatusUp {
		return res, nil
	}
	found := strings.Contains(string(resp.Body), c.marker)
	setMeta(&res, "marker_found", found)
	if !found {
		res.Status = checker.StatusDegraded
		res.ErrorMessage = fmt.Sprintf("marker %q not found in response body", c.marker)
	}
	return res, nil
}
