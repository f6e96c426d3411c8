// Package binomial implements the exact binomial test of H0: p = p0.
//
// PValue follows the reference exact-test algorithm: tails from the
// regularized incomplete beta function and a binary search over the log mass
// function for the opposite tail. PValueManual sums probability masses
// directly. The two are kept separate so each can check the other.
package binomial

import (
	"math"
	"sort"

	"abstats/domain/hypothesis"
	"abstats/internal/distributions"
	"abstats/internal/errors"

	"gonum.org/v1/gonum/mathext"
	"gonum.org/v1/gonum/stat/distuv"
)

func validate(k, n int, p0 float64, alt hypothesis.Alternative) error {
	if err := hypothesis.RequireCounts("binomial test", k, n); err != nil {
		return err
	}
	if err := hypothesis.RequireProbability("p0", p0); err != nil {
		return err
	}
	return alt.Validate()
}

func result(p float64, k, n int, p0 float64, alt hypothesis.Alternative) hypothesis.BinomialResult {
	return hypothesis.BinomialResult{
		PValue:          p,
		Successes:       k,
		Trials:          n,
		NullProbability: p0,
		Alternative:     alt,
	}
}

// PValueManual computes the exact p-value from the Binomial(n, p0) mass
// function: the two-sided value is the total mass of outcomes no more likely
// than k, "less" is P(X <= k) and "greater" is P(X >= k).
func PValueManual(k, n int, p0 float64, alt hypothesis.Alternative) (hypothesis.BinomialResult, error) {
	if err := validate(k, n, p0, alt); err != nil {
		return hypothesis.BinomialResult{}, err
	}

	p, err := distributions.PValue(float64(k), distributions.NewBinomial(n, p0), alt)
	if err != nil {
		return hypothesis.BinomialResult{}, errors.Wrapf(err, "binomial test k=%d n=%d p0=%v", k, n, p0)
	}
	return result(p, k, n, p0, alt), nil
}

// PValue computes the exact p-value the way reference exact-binomial-test
// routines do: the observed tail comes from the CDF and the opposite tail is
// located by binary search on the monotone side of the mass function.
func PValue(k, n int, p0 float64, alt hypothesis.Alternative) (hypothesis.BinomialResult, error) {
	if err := validate(k, n, p0, alt); err != nil {
		return hypothesis.BinomialResult{}, err
	}

	ref := reference{n: n, p: p0, dist: distuv.Binomial{N: float64(n), P: p0}}

	var p float64
	switch alt {
	case hypothesis.Less:
		p = ref.cdf(k)
	case hypothesis.Greater:
		p = ref.sf(k - 1)
	default:
		p = ref.twoSided(k)
	}

	if math.IsNaN(p) {
		return hypothesis.BinomialResult{}, errors.NumericDegeneratef("binomial test k=%d n=%d p0=%v: p-value is NaN", k, n, p0)
	}
	return result(math.Max(0, math.Min(1, p)), k, n, p0, alt), nil
}

type reference struct {
	n    int
	p    float64
	dist distuv.Binomial
}

// cdf returns P(X <= k) = I_{1-p}(n-k, k+1).
func (r reference) cdf(k int) float64 {
	if k < 0 {
		return 0
	}
	if k >= r.n {
		return 1
	}
	return mathext.RegIncBeta(float64(r.n-k), float64(k+1), 1-r.p)
}

// sf returns P(X > k) = I_p(k+1, n-k).
func (r reference) sf(k int) float64 {
	if k < 0 {
		return 1
	}
	if k >= r.n {
		return 0
	}
	return mathext.RegIncBeta(float64(k+1), float64(r.n-k), r.p)
}

// logPMF stays finite across the whole support for large n, where the mass
// function itself underflows or its binomial coefficient overflows.
func (r reference) logPMF(k int) float64 {
	return r.dist.LogProb(float64(k))
}

func (r reference) twoSided(k int) float64 {
	n := r.n
	mean := r.p * float64(n)
	threshold := r.logPMF(k) + math.Log(distributions.TieTolerance)

	switch {
	case float64(k) == mean:
		return 1
	case float64(k) < mean:
		// The mass function is non-increasing on [ceil(mean), n]; find the
		// first outcome there that is no more likely than k.
		lo := int(math.Ceil(mean))
		i := sort.Search(n-lo+1, func(i int) bool {
			return r.logPMF(lo+i) <= threshold
		})
		return r.cdf(k) + r.sf(lo+i-1)
	default:
		// The mass function is non-decreasing on [0, floor(mean)]; find the
		// last outcome there that is no more likely than k.
		hi := int(math.Floor(mean))
		i := sort.Search(hi+1, func(i int) bool {
			return r.logPMF(i) > threshold
		})
		return r.cdf(i-1) + r.sf(k-1)
	}
}
