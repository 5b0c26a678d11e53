package checker

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	perr "vigil/internal/platform/errors"
)

// DependencyType classifies a dependency edge
type DependencyType string

const (
	// DependencyHard marks an upstream the service cannot work without
	DependencyHard DependencyType = "hard"
	// DependencySoft marks an upstream that degrades the service but does not break it
	DependencySoft DependencyType = "soft"
)

// Dependency is one declared edge to an upstream service
type Dependency struct {
	ServiceKey string
	// Type defaults to hard when empty
	Type DependencyType
	// Weight defaults to 1 when zero; must not be negative
	Weight float64
}

// ServiceChecker is a named service's ordered check set plus its declared
// upstream edges. Declarations are catalog data; RunAll turns them into live
// probes through the registry
type ServiceChecker struct {
	ServiceKey string
	// Name is the display name; empty derives one from ServiceKey
	Name string
	// OfficialUptime optionally points at the provider's own status page
	OfficialUptime string
	// DefaultIntervalSeconds applies to checks that declare no interval; zero means 60
	DefaultIntervalSeconds int
	Checks                 []Spec
	Dependencies           []Dependency
}

// Validate rejects declarations that could not be registered or synced
func (sc *ServiceChecker) Validate() error {
	if sc.ServiceKey == "" {
		return perr.Validationf("service checker needs a service key")
	}
	if len(sc.Checks) == 0 {
		return perr.Validationf("service checker %q declares no checks", sc.ServiceKey)
	}
	seen := make(map[string]struct{}, len(sc.Checks))
	for _, c := range sc.Checks {
		if c.CheckKey == "" {
			return perr.Validationf("service checker %q has a check without a key", sc.ServiceKey)
		}
		if _, dup := seen[c.CheckKey]; dup {
			return perr.Validationf("service checker %q declares check %q twice", sc.ServiceKey, c.CheckKey)
		}
		seen[c.CheckKey] = struct{}{}
		if c.ClassPath == "" {
			return perr.Validationf("check %q on %q names no probe constructor", c.CheckKey, sc.ServiceKey)
		}
		if c.IntervalSeconds < 0 || c.TimeoutSeconds < 0 {
			return perr.Validationf("check %q on %q has a negative interval or timeout", c.CheckKey, sc.ServiceKey)
		}
	}
	for _, d := range sc.Dependencies {
		if d.ServiceKey == "" {
			return perr.Validationf("service checker %q has a dependency without a service key", sc.ServiceKey)
		}
		if d.ServiceKey == sc.ServiceKey {
			return perr.Validationf("service checker %q depends on itself", sc.ServiceKey)
		}
		switch d.Type {
		case "", DependencyHard, DependencySoft:
		default:
			return perr.Validationf("dependency %s -> %s has unknown type %q", sc.ServiceKey, d.ServiceKey, d.Type)
		}
		if d.Weight < 0 {
			return perr.Validationf("dependency %s -> %s has negative weight", sc.ServiceKey, d.ServiceKey)
		}
	}
	return nil
}

// RunOptions bounds one RunAll fan-out
type RunOptions struct {
	// Concurrency caps in-flight checks; zero or less means no cap
	Concurrency int
	// DefaultTimeout applies to checks that declare no timeout
	DefaultTimeout time.Duration
}

// RunAll resolves weights, builds every declared check through the registry,
// and executes them concurrently against the shared client. Results come back
// in declaration order with one entry per check; individual failures become
// down results and never abort peers
func (sc *ServiceChecker) RunAll(ctx context.Context, client Client, opts RunOptions) ([]Result, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	specs, err := ResolveWeights(sc.Checks)
	if err != nil {
		return nil, err
	}

	results := make([]Result, len(specs))
	var g errgroup.Group
	if opts.Concurrency > 0 {
		g.SetLimit(opts.Concurrency)
	}
	for i, sp := range specs {
		i, sp := i, sp
		g.Go(func() error {
			results[i] = runOne(ctx, client, sp, opts.DefaultTimeout)
			return nil
		})
	}
	_ = g.Wait()
	return results, nil
}

func runOne(ctx context.Context, client Client, sp Spec, defTimeout time.Duration) Result {
	factory, ok := ResolveCheck(sp.ClassPath)
	if !ok {
		return Result{
			CheckKey:     sp.CheckKey,
			Status:       StatusDown,
			ErrorCode:    ErrCodeExecution,
			ErrorMessage: fmt.Sprintf("no probe constructor registered for %q", sp.ClassPath),
			ObservedAt:   time.Now().UTC(),
		}
	}
	chk, err := factory(sp)
	if err != nil {
		return Result{
			CheckKey:     sp.CheckKey,
			Status:       StatusDown,
			ErrorCode:    ErrCodeExecution,
			ErrorMessage: err.Error(),
			ObservedAt:   time.Now().UTC(),
		}
	}
	timeout := time.Duration(sp.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = defTimeout
	}
	res := Execute(ctx, client, chk, timeout)
	// results are keyed by the declaring spec, whatever the probe reports
	res.CheckKey = sp.CheckKey
	return res
}
