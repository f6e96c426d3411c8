package hypothesis

import (
	"math"

	"abstats/internal/errors"
)

// RequireSample checks that a sample has at least min observations and that
// every observation is finite.
func RequireSample(name string, xs []float64, min int) error {
	if len(xs) < min {
		return errors.InvalidInputf("sample %s has %d observations, need at least %d", name, len(xs), min)
	}
	for i, v := range xs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.InvalidInputf("sample %s has non-finite value %v at index %d", name, v, i)
		}
	}
	return nil
}

// RequireCounts checks a successes/trials pair: n >= 1 and 0 <= x <= n.
func RequireCounts(name string, x, n int) error {
	if n < 1 {
		return errors.InvalidInputf("%s: trial count n=%d must be at least 1", name, n)
	}
	if x < 0 || x > n {
		return errors.InvalidInputf("%s: successes x=%d must lie in [0, %d]", name, x, n)
	}
	return nil
}

// RequireProbability checks 0 < p < 1.
func RequireProbability(name string, p float64) error {
	if math.IsNaN(p) || p <= 0 || p >= 1 {
		return errors.InvalidInputf("%s=%v must lie strictly between 0 and 1", name, p)
	}
	return nil
}
