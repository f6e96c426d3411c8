// Package ztest implements the two-sample z-test for proportions of
// H0: p1 = p2, from summary counts and from raw conversion indicators.
package ztest

import (
	"math"

	"abstats/domain/hypothesis"
	"abstats/internal/distributions"
	"abstats/internal/errors"

	"gonum.org/v1/gonum/stat"
)

// PropStat holds the z statistic together with the proportions it was built from.
type PropStat struct {
	Z                float64
	P1               float64
	P2               float64
	PooledProportion float64
	StdErr           float64
}

// PropZStat computes z = (p1 - p2) / SE with the pooled standard error
// SE = sqrt(p(1-p)(1/n1 + 1/n2)), p = (x1 + x2) / (n1 + n2).
func PropZStat(x1, n1, x2, n2 int) (PropStat, error) {
	if err := hypothesis.RequireCounts("group 1", x1, n1); err != nil {
		return PropStat{}, err
	}
	if err := hypothesis.RequireCounts("group 2", x2, n2); err != nil {
		return PropStat{}, err
	}

	p1 := float64(x1) / float64(n1)
	p2 := float64(x2) / float64(n2)
	pool := float64(x1+x2) / float64(n1+n2)
	if pool == 0 || pool == 1 {
		return PropStat{}, errors.NumericDegeneratef("pooled proportion is %v, standard error is zero", pool)
	}

	se := math.Sqrt(pool * (1 - pool) * (1/float64(n1) + 1/float64(n2)))

	return PropStat{
		Z:                (p1 - p2) / se,
		P1:               p1,
		P2:               p2,
		PooledProportion: pool,
		StdErr:           se,
	}, nil
}

// PropPValueManual derives the p-value of PropZStat from the standard normal.
func PropPValueManual(x1, n1, x2, n2 int, alt hypothesis.Alternative) (hypothesis.ZTestResult, error) {
	if err := alt.Validate(); err != nil {
		return hypothesis.ZTestResult{}, err
	}
	st, err := PropZStat(x1, n1, x2, n2)
	if err != nil {
		return hypothesis.ZTestResult{}, err
	}

	p, err := distributions.PValue(st.Z, distributions.UnitNormal(), alt)
	if err != nil {
		return hypothesis.ZTestResult{}, errors.Wrap(err, "z-test for proportions")
	}

	return hypothesis.ZTestResult{
		PValue:           p,
		Z:                st.Z,
		P1:               st.P1,
		P2:               st.P2,
		PooledProportion: st.PooledProportion,
		StdErr:           st.StdErr,
		N1:               n1,
		N2:               n2,
		Alternative:      alt,
	}, nil
}

// PropPValue runs the pooled-variance two-sample z-test on per-unit
// conversion indicators (each value 0 or 1), reproducing the statsmodels
// ztest with usevar="pooled" and ddof=0: the variance is the size-weighted
// mean of the two population variances, scaled by 1/n1 + 1/n2.
func PropPValue(conv1, conv2 []float64, alt hypothesis.Alternative) (hypothesis.ZTestResult, error) {
	if err := alt.Validate(); err != nil {
		return hypothesis.ZTestResult{}, err
	}
	if err := requireIndicators("group 1", conv1); err != nil {
		return hypothesis.ZTestResult{}, err
	}
	if err := requireIndicators("group 2", conv2); err != nil {
		return hypothesis.ZTestResult{}, err
	}

	n1, n2 := float64(len(conv1)), float64(len(conv2))
	m1, v1 := stat.PopMeanVariance(conv1, nil)
	m2, v2 := stat.PopMeanVariance(conv2, nil)

	pooledVar := (n1*v1 + n2*v2) / (n1 + n2) * (1/n1 + 1/n2)
	if pooledVar == 0 {
		return hypothesis.ZTestResult{}, errors.NumericDegenerate("both groups are constant, pooled variance is zero")
	}
	se := math.Sqrt(pooledVar)
	z := (m1 - m2) / se

	p, err := distributions.PValue(z, distributions.UnitNormal(), alt)
	if err != nil {
		return hypothesis.ZTestResult{}, errors.Wrap(err, "z-test for proportions")
	}

	return hypothesis.ZTestResult{
		PValue:           p,
		Z:                z,
		P1:               m1,
		P2:               m2,
		PooledProportion: (n1*m1 + n2*m2) / (n1 + n2),
		StdErr:           se,
		N1:               len(conv1),
		N2:               len(conv2),
		Alternative:      alt,
	}, nil
}

func requireIndicators(name string, xs []float64) error {
	if len(xs) == 0 {
		return errors.InvalidInputf("%s has no observations", name)
	}
	for i, v := range xs {
		if v != 0 && v != 1 {
			return errors.InvalidInputf("%s has value %v at index %d, conversion indicators must be 0 or 1", name, v, i)
		}
	}
	return nil
}

// CountSuccesses validates conversion indicators and returns the number of
// ones and the number of units.
func CountSuccesses(name string, conv []float64) (x, n int, err error) {
	if err := requireIndicators(name, conv); err != nil {
		return 0, 0, err
	}
	for _, v := range conv {
		if v == 1 {
			x++
		}
	}
	return x, len(conv), nil
}

// Indicators expands a successes/trials pair into n indicators, the first x
// of them ones.
func Indicators(name string, x, n int) ([]float64, error) {
	if err := hypothesis.RequireCounts(name, x, n); err != nil {
		return nil, err
	}
	conv := make([]float64, n)
	for i := 0; i < x; i++ {
		conv[i] = 1
	}
	return conv, nil
}
