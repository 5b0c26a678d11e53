// Package builtin declares the stock third-party checker fleet the binaries
// register at boot. Deployments extend or replace this set with their own
// declarations before the catalog sync runs
package builtin

import (
	"vigil/internal/adapters/probe"
	"vigil/internal/core/checker"
)

func fptr(f float64) *float64 { return &f }

// Register installs the probe constructors and the stock checker fleet.
// Call once per process, before the catalog sync
func Register() {
	probe.RegisterChecks()

	checker.RegisterChecker(&checker.ServiceChecker{
		ServiceKey:             "github",
		Name:                   "GitHub",
		OfficialUptime:         "https://www.githubstatus.com",
		DefaultIntervalSeconds: 60,
		Checks: []checker.Spec{
			{
				CheckKey:       "api",
				ClassPath:      probe.KeyHTTPStatus,
				Config:         map[string]any{"url": "https://api.github.com/"},
				TimeoutSeconds: 5,
			},
			{
				CheckKey:        "status-page",
				ClassPath:       probe.KeyStatusPage,
				Config:          map[string]any{"url": "https://www.githubstatus.com/api/v2/status.json"},
				IntervalSeconds: 120,
			},
		},
	})

	checker.RegisterChecker(&checker.ServiceChecker{
		ServiceKey:     "stripe",
		Name:           "Stripe",
		OfficialUptime: "https://status.stripe.com",
		Checks: []checker.Spec{
			{
				CheckKey:  "api",
				ClassPath: probe.KeyHTTPStatus,
				// unauthenticated requests answer 401, which still proves the
				// API edge is reachable
				Config: map[string]any{
					"url":                    "https://api.stripe.com/v1/charges",
					"expected_http_statuses": []int{401},
				},
				Weight: fptr(0.7),
			},
			{
				CheckKey:        "status-page",
				ClassPath:       probe.KeyStatusPage,
				Config:          map[string]any{"url": "https://www.stripestatus.com/api/v2/status.json"},
				IntervalSeconds: 120,
				Weight:          fptr(0.3),
			},
		},
	})

	checker.RegisterChecker(&checker.ServiceChecker{
		ServiceKey:     "sendgrid",
		Name:           "SendGrid",
		OfficialUptime: "https://status.sendgrid.com",
		Checks: []checker.Spec{
			{
				CheckKey:  "status-page",
				ClassPath: probe.KeyHTMLMarker,
				Config: map[string]any{
					"url":    "https://status.sendgrid.com",
					"marker": "All Systems Operational",
				},
				IntervalSeconds: 120,
			},
		},
	})

	checker.RegisterChecker(&checker.ServiceChecker{
		ServiceKey:     "circleci",
		Name:           "CircleCI",
		OfficialUptime: "https://status.circleci.com",
		Checks: []checker.Spec{
			{
				CheckKey:  "status-page",
				ClassPath: probe.KeyStatusPage,
				Config:    map[string]any{"url": "https://status.circleci.com/api/v2/status.json"},
			},
		},
		Dependencies: []checker.Dependency{
			{ServiceKey: "github", Type: checker.DependencyHard, Weight: 1},
			{ServiceKey: "sendgrid", Type: checker.DependencySoft, Weight: 0.5},
		},
	})
}
