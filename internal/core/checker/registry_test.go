package checker

import (
	"context"
	"testing"

	"vigil/internal/platform/testkit"
)

func TestRegistry_CheckRoundTrip(t *testing.T) {
	t.Cleanup(ResetRegistry)

	RegisterCheck("probe/http_status", func(sp Spec) (Check, error) {
		return stubCheck{key: sp.CheckKey, run: func(context.Context, Client) (Result, error) {
			return Result{Status: StatusUp}, nil
		}}, nil
	})

	f, ok := ResolveCheck("probe/http_status")
	if !ok || f == nil {
		t.Fatalf("registered factory not resolvable")
	}
	if _, ok := ResolveCheck("probe/nope"); ok {
		t.Fatalf("resolved a factory that was never registered")
	}
}

func TestRegistry_DuplicateCheckPanics(t *testing.T) {
	t.Cleanup(ResetRegistry)

	f := func(sp Spec) (Check, error) { return stubCheck{key: sp.CheckKey}, nil }
	RegisterCheck("probe/http_status", f)
	testkit.MustPanic(t, func() { RegisterCheck("probe/http_status", f) })
	testkit.MustPanic(t, func() { RegisterCheck("", f) })
	testkit.MustPanic(t, func() { RegisterCheck("probe/other", nil) })
}

func TestRegisterChecker_ValidatesDeclarations(t *testing.T) {
	t.Cleanup(ResetRegistry)

	ok := &ServiceChecker{
		ServiceKey: "stripe",
		Checks:     []Spec{{CheckKey: "api", ClassPath: "probe/http_status"}},
	}
	RegisterChecker(ok)

	got, found := ResolveChecker("stripe")
	if !found || got.ServiceKey != "stripe" {
		t.Fatalf("registered checker not resolvable")
	}

	testkit.MustPanic(t, func() { RegisterChecker(ok) }) // duplicate key
	testkit.MustPanic(t, func() {
		RegisterChecker(&ServiceChecker{
			ServiceKey: "twilio",
			Checks:     []Spec{{CheckKey: "api", ClassPath: "probe/http_status", Weight: fptr(1.5)}},
		})
	})
	testkit.MustPanic(t, func() { RegisterChecker(nil) })
}

func TestCheckers_OrderedByServiceKey(t *testing.T) {
	t.Cleanup(ResetRegistry)

	for _, key := range []string{"stripe", "fastly", "twilio"} {
		RegisterChecker(&ServiceChecker{
			ServiceKey: key,
			Checks:     []Spec{{CheckKey: "api", ClassPath: "probe/http_status"}},
		})
	}

	all := Checkers()
	want := []string{"fastly", "stripe", "twilio"}
	if len(all) != len(want) {
		t.Fatalf("got %d checkers, want %d", len(all), len(want))
	}
	for i, sc := range all {
		if sc.ServiceKey != want[i] {
			t.Fatalf("checker %d = %q, want %q", i, sc.ServiceKey, want[i])
		}
	}
}
