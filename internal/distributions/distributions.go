// Package distributions provides the reference distributions used by every
// test in abstats and the one place where an alternative hypothesis is turned
// into a tail probability.
package distributions

import (
	"math"

	"abstats/domain/hypothesis"
	"abstats/internal/errors"

	"gonum.org/v1/gonum/stat/distuv"
)

// TieTolerance is the relative slack used when comparing probability masses of
// a discrete distribution, so outcomes whose mass equals the observed mass up
// to rounding are counted as "no more likely".
const TieTolerance = 1 + 1e-7

// Reference is the null distribution of a test statistic seen through its tails.
type Reference interface {
	// LowerTail returns P(S <= s).
	LowerTail(s float64) float64
	// UpperTail returns P(S >= s).
	UpperTail(s float64) float64
	// TwoSided returns the probability of an outcome at least as extreme as s.
	TwoSided(s float64) float64
}

// PValue selects the tail(s) of ref named by alt. The result is clamped to
// [0, 1]; a NaN probability is reported as numeric degeneracy.
func PValue(statistic float64, ref Reference, alt hypothesis.Alternative) (float64, error) {
	if math.IsNaN(statistic) {
		return 0, errors.NumericDegenerate("test statistic is NaN")
	}

	var p float64
	switch alt {
	case hypothesis.TwoSided:
		p = ref.TwoSided(statistic)
	case hypothesis.Greater:
		p = ref.UpperTail(statistic)
	case hypothesis.Less:
		p = ref.LowerTail(statistic)
	default:
		return 0, alt.Validate()
	}

	if math.IsNaN(p) {
		return 0, errors.NumericDegeneratef("p-value is NaN for statistic %v", statistic)
	}
	return math.Max(0, math.Min(1, p)), nil
}

// Symmetric is a continuous distribution symmetric about zero.
type Symmetric struct {
	cdf func(float64) float64
}

// NewSymmetric wraps a CDF of a distribution symmetric about zero.
func NewSymmetric(cdf func(float64) float64) Symmetric {
	return Symmetric{cdf: cdf}
}

// UnitNormal is the standard normal distribution.
func UnitNormal() Symmetric {
	return NewSymmetric(distuv.UnitNormal.CDF)
}

// StudentsT is the standard Student's t distribution with df degrees of
// freedom; df need not be an integer.
func StudentsT(df float64) Symmetric {
	t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	return NewSymmetric(t.CDF)
}

func (d Symmetric) CDF(s float64) float64       { return d.cdf(s) }
func (d Symmetric) LowerTail(s float64) float64 { return d.cdf(s) }
func (d Symmetric) UpperTail(s float64) float64 { return 1 - d.cdf(s) }

func (d Symmetric) TwoSided(s float64) float64 {
	return 2 * (1 - d.cdf(math.Abs(s)))
}

// Binomial is Binomial(n, p) over the support {0, ..., n}.
type Binomial struct {
	n    int
	dist distuv.Binomial
}

// NewBinomial returns Binomial(n, p). Callers validate n and p.
func NewBinomial(n int, p float64) Binomial {
	return Binomial{n: n, dist: distuv.Binomial{N: float64(n), P: p}}
}

// PMF returns P(X = k).
func (b Binomial) PMF(k int) float64 {
	return b.dist.Prob(float64(k))
}

// CDF returns P(X <= k).
func (b Binomial) CDF(k int) float64 {
	if k < 0 {
		return 0
	}
	if k >= b.n {
		return 1
	}
	return b.dist.CDF(float64(k))
}

// SF returns P(X > k).
func (b Binomial) SF(k int) float64 {
	if k < 0 {
		return 1
	}
	if k >= b.n {
		return 0
	}
	return b.dist.Survival(float64(k))
}

func (b Binomial) LowerTail(s float64) float64 { return b.CDF(int(s)) }
func (b Binomial) UpperTail(s float64) float64 { return b.SF(int(s) - 1) }

// TwoSided sums the mass of every outcome in {0, ..., n} that is no more
// likely than the observed one. Unlike doubling one tail this stays correct
// for skewed distributions.
func (b Binomial) TwoSided(s float64) float64 {
	threshold := b.PMF(int(s)) * TieTolerance
	total := 0.0
	for i := 0; i <= b.n; i++ {
		if pmf := b.PMF(i); pmf <= threshold {
			total += pmf
		}
	}
	return total
}
