package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"vigil/internal/core/checker"
	perr "vigil/internal/platform/errors"
)

// Defaults follow the common hosted status-page document shape:
// {"status": {"indicator": "none" | "minor" | "major" | "critical"}}
var (
	defaultIndicatorField = "status.indicator"
	defaultUpValues       = []string{"none", "operational"}
	defaultDegradedValues = []string{"minor", "degraded_performance", "partial_outage"}
)

// statusPageCheck reads a vendor status page and maps its indicator field to
// a status. Indicators outside the configured up and degraded sets read as down
type statusPageCheck struct {
	key      string
	url      string
	header   http.Header
	proxy    string
	field    string
	up       []string
	degraded []string
}

// NewStatusPage builds the probe registered as "probe/status_page".
// Config keys: url (required), headers, proxy, field (dot path into the JSON
// document), up_values, degraded_values
func NewStatusPage(sp checker.Spec) (checker.Check, error) {
	u := cfgString(sp.Config, "url", "")
	if u == "" {
		return nil, perr.Validationf("probe %s: url is required", sp.CheckKey)
	}
	up := cfgStrings(sp.Config, "up_values")
	if up == nil {
		up = defaultUpValues
	}
	degraded := cfgStrings(sp.Config, "degraded_values")
	if degraded == nil {
		degraded = defaultDegradedValues
	}
	return &statusPageCheck{
		key:      sp.CheckKey,
		url:      u,
		header:   cfgHeader(sp.Config, "headers"),
		proxy:    cfgString(sp.Config, "proxy", ""),
		field:    cfgString(sp.Config, "field", defaultIndicatorField),
		up:       up,
		degraded: degraded,
	}, nil
}

func (c *statusPageCheck) Key() string { return c.key }

func (c *statusPageCheck) Run(ctx context.Context, client checker.Client) (checker.Result, error) {
	resp, err := client.Do(ctx, checker.Request{URL: c.url, Header: c.header, Proxy: c.proxy})
	if err != nil {
		return checker.Result{}, err
	}
	res := resultFor(c.key, resp)
	if res.Status != checker.StatusUp {
		// the status page itself is unwell; band mapping already said so
		return res, nil
	}

	var doc any
	if err := json.Unmarshal(resp.Body, &doc); err != nil {
		return checker.Result{}, perr.Wrapf(err, perr.ErrorCodeJSON, "status page parse failed for %s", c.key)
	}
	raw, ok := lookupPath(doc, c.field)
	if !ok {
		return checker.Result{}, perr.Validationf("status page field %s missing for %s", c.field, c.key)
	}
	indicator := strings.ToLower(fmt.Sprint(raw))
	setMeta(&res, "indicator", indicator)

	switch {
	case slices.Contains(c.up, indicator):
		res.Status = checker.StatusUp
	case slices.Contains(c.degraded, indicator):
		res.Status = checker.StatusDegraded
		res.ErrorMessage = fmt.Sprintf("status page reports %s", indicator)
	default:
		res.Status = checker.StatusDown
		res.ErrorMessage = fmt.Sprintf("status page reports %s", indicator)
	}
	return res, nil
}

// lookupPath walks a dot-separated path through nested JSON objects
func lookupPath(doc any, path string) (any, bool) {
	cur := doc
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}
