package checker

import (
	"math"
	"testing"

	perr "vigil/internal/platform/errors"
)

func fptr(f float64) *float64 { return &f }

func weightSum(t *testing.T, specs []Spec) float64 {
	t.Helper()
	var sum float64
	for _, sp := range specs {
		if sp.Weight == nil {
			t.Fatalf("check %q still has no weight after resolve", sp.CheckKey)
		}
		sum += *sp.Weight
	}
	return sum
}

func TestResolveWeights_DistributesRemainder(t *testing.T) {
	in := []Spec{
		{CheckKey: "api", Weight: fptr(0.5)},
		{CheckKey: "dashboard"},
		{CheckKey: "webhooks"},
	}
	out, err := ResolveWeights(in)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got := *out[1].Weight; math.Abs(got-0.25) > WeightTolerance {
		t.Fatalf("dashboard weight = %v, want 0.25", got)
	}
	if got := *out[2].Weight; math.Abs(got-0.25) > WeightTolerance {
		t.Fatalf("webhooks weight = %v, want 0.25", got)
	}
	if sum := weightSum(t, out); math.Abs(sum-1) > WeightTolerance {
		t.Fatalf("weights sum to %v, want 1", sum)
	}
	// the input is left alone
	if in[1].Weight != nil || in[2].Weight != nil {
		t.Fatalf("ResolveWeights mutated its input")
	}
}

func TestResolveWeights_SumsToOneAcrossShapes(t *testing.T) {
	cases := [][]Spec{
		{{CheckKey: "a", Weight: fptr(1.0)}},
		{{CheckKey: "a", Weight: fptr(0.5)}, {CheckKey: "b", Weight: fptr(0.5)}},
		{{CheckKey: "a"}, {CheckKey: "b"}, {CheckKey: "c"}},
		{{CheckKey: "a", Weight: fptr(0.2)}, {CheckKey: "b"}, {CheckKey: "c"}, {CheckKey: "d"}},
		{{CheckKey: "a", Weight: fptr(1.0 / 3)}, {CheckKey: "b", Weight: fptr(1.0 / 3)}, {CheckKey: "c", Weight: fptr(1.0 / 3)}},
		{{CheckKey: "a", Weight: fptr(0.1)}, {CheckKey: "b", Weight: fptr(0.7)}, {CheckKey: "c"}},
	}
	for i, specs := range cases {
		out, err := ResolveWeights(specs)
		if err != nil {
			t.Fatalf("case %d: resolve: %v", i, err)
		}
		if sum := weightSum(t, out); math.Abs(sum-1) > WeightTolerance {
			t.Fatalf("case %d: weights sum to %v, want 1", i, sum)
		}
	}
}

func TestResolveWeights_RejectsOutOfRange(t *testing.T) {
	for _, w := range []float64{0, -0.1, 1.0000001, 2} {
		_, err := ResolveWeights([]Spec{{CheckKey: "a", Weight: fptr(w)}, {CheckKey: "b"}})
		if err == nil {
			t.Fatalf("weight %v accepted, want error", w)
		}
		if !perr.IsCode(err, perr.ErrorCodeValidation) {
			t.Fatalf("weight %v: code = %v, want validation", w, perr.CodeOf(err))
		}
	}
}

func TestResolveWeights_RejectsExplicitSumOverOne(t *testing.T) {
	_, err := ResolveWeights([]Spec{
		{CheckKey: "a", Weight: fptr(0.6)},
		{CheckKey: "b", Weight: fptr(0.5)},
	})
	if err == nil {
		t.Fatalf("sum 1.1 accepted, want error")
	}
}

func TestResolveWeights_RejectsExplicitSumBelowOne(t *testing.T) {
	_, err := ResolveWeights([]Spec{
		{CheckKey: "a", Weight: fptr(0.3)},
		{CheckKey: "b", Weight: fptr(0.3)},
	})
	if err == nil {
		t.Fatalf("sum 0.6 with no unweighted checks accepted, want error")
	}
}

func TestResolveWeights_RejectsExhaustedRemainder(t *testing.T) {
	_, err := ResolveWeights([]Spec{
		{CheckKey: "a", Weight: fptr(0.5)},
		{CheckKey: "b", Weight: fptr(0.5)},
		{CheckKey: "c"},
	})
	if err == nil {
		t.Fatalf("zero remainder for unweighted check accepted, want error")
	}
}

func TestResolveWeights_EmptyListErrors(t *testing.T) {
	if _, err := ResolveWeights(nil); err == nil {
		t.Fatalf("empty spec list accepted, want error")
	}
}

func TestResolveWeights_ToleratesFloatDrift(t *testing.T) {
	// three explicit thirds do not sum to exactly 1 in binary
	third := 1.0 / 3
	out, err := ResolveWeights([]Spec{
		{CheckKey: "a", Weight: fptr(third)},
		{CheckKey: "b", Weight: fptr(third)},
		{CheckKey: "c", Weight: fptr(third)},
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if sum := weightSum(t, out); math.Abs(sum-1) > WeightTolerance {
		t.Fatalf("weights sum to %v, want 1", sum)
	}
}
