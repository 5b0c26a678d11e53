package checker

import (
	"math"

	perr "vigil/internal/platform/errors"
)

// WeightTolerance bounds float drift when validating that check weights sum to 1
const WeightTolerance = 1e-9

// Spec is one check declaration: the key, the registered constructor that
// builds the probe, and its catalog settings
type Spec struct {
	CheckKey        string
	ClassPath       string
	Config          map[string]any
	IntervalSeconds int
	TimeoutSeconds  int
	// Weight in (0, 1]; nil means an equal share of whatever mass the
	// explicit weights leave unclaimed
	Weight *float64
}

// ResolveWeights validates explicit check weights and distributes the
// remaining mass equally over checks that omit one. The returned specs always
// carry weights that sum to 1 within WeightTolerance
func ResolveWeights(specs []Spec) ([]Spec, error) {
	out := make([]Spec, len(specs))
	copy(out, specs)

	var sum float64
	var open []int
	for i := range out {
		w := out[i].Weight
		if w == nil {
			open = append(open, i)
			continue
		}
		if *w <= 0 || *w > 1 {
			return nil, perr.Validationf("check %q weight %v must be in (0, 1]", out[i].CheckKey, *w)
		}
		sum += *w
	}
	if sum > 1+WeightTolerance {
		return nil, perr.Validationf("explicit check weights sum to %v which exceeds 1", sum)
	}

	if len(open) > 0 {
		rem := 1 - sum
		if rem <= WeightTolerance {
			return nil, perr.Validationf("no weight mass left to distribute over %d unweighted checks", len(open))
		}
		share := rem / float64(len(open))
		for _, i := range open {
			w := share
			out[i].Weight = &w
		}
		return out, nil
	}

	if math.Abs(sum-1) > WeightTolerance {
		return nil, perr.Validationf("explicit check weights sum to %v, want 1", sum)
	}
	return out, nil
}
