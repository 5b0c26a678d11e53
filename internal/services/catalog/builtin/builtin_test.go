package builtin

import (
	"math"
	"testing"

	"vigil/internal/core/checker"
)

func TestRegister_DeclaresAValidFleet(t *testing.T) {
	checker.ResetRegistry()
	t.Cleanup(checker.ResetRegistry)

	Register()

	fleet := checker.Checkers()
	if len(fleet) != 4 {
		t.Fatalf("expected four stock checkers got %d", len(fleet))
	}

	for _, sc := range fleet {
		resolved, err := checker.ResolveWeights(sc.Checks)
		if err != nil {
			t.Fatalf("%s: weights do not resolve: %v", sc.ServiceKey, err)
		}
		var sum float64
		for _, sp := range resolved {
			if _, ok := checker.ResolveCheck(sp.ClassPath); !ok {
				t.Fatalf("%s/%s names unregistered constructor %q", sc.ServiceKey, sp.CheckKey, sp.ClassPath)
			}
			sum += *sp.Weight
		}
		if math.Abs(sum-1) > checker.WeightTolerance {
			t.Fatalf("%s: resolved weights sum to %v", sc.ServiceKey, sum)
		}
		for _, dep := range sc.Dependencies {
			if _, ok := checker.ResolveChecker(dep.ServiceKey); !ok {
				t.Fatalf("%s depends on unregistered service %q", sc.ServiceKey, dep.ServiceKey)
			}
		}
	}
}

func TestRegister_StripeTreatsAuthRejectionAsUp(t *testing.T) {
	checker.ResetRegistry()
	t.Cleanup(checker.ResetRegistry)

	Register()

	sc, ok := checker.ResolveChecker("stripe")
	if !ok {
		t.Fatalf("stripe checker not registered")
	}
	var api *checker.Spec
	for i := range sc.Checks {
		if sc.Checks[i].CheckKey == "api" {
			api = &sc.Checks[i]
		}
	}
	if api == nil {
		t.Fatalf("stripe declares no api check")
	}
	codes, ok := api.Config["expected_http_statuses"].([]int)
	if !ok || len(codes) != 1 || codes[0] != 401 {
		t.Fatalf("unexpected expected_http_statuses %v", api.Config["expected_http_statuses"])
	}
}
