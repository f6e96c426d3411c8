package ttest

import (
	"math"

	"abstats/domain/hypothesis"
	"abstats/internal/distributions"
	"abstats/internal/errors"

	moremath "github.com/aclements/go-moremath/stats"
)

// WelchStat is Welch's t statistic for H0: mean(x) = mean(y) with the
// Welch-Satterthwaite degrees of freedom and the unpooled standard error.
type WelchStat struct {
	T      float64
	DoF    float64
	StdErr float64
}

// WelchTStat computes Welch's t statistic. Variances use n-1 denominators and
// the degrees of freedom are generally not an integer.
func WelchTStat(x, y []float64) (WelchStat, error) {
	sx, err := summarize("x", x)
	if err != nil {
		return WelchStat{}, err
	}
	sy, err := summarize("y", y)
	if err != nil {
		return WelchStat{}, err
	}

	vx := sx.variance / sx.n
	vy := sy.variance / sy.n
	se := math.Sqrt(vx + vy)
	if se == 0 {
		return WelchStat{}, errors.NumericDegenerate("both samples have zero variance, t statistic is undefined")
	}

	dof := (vx + vy) * (vx + vy) / (vx*vx/(sx.n-1) + vy*vy/(sy.n-1))

	stat := WelchStat{
		T:      (sx.mean - sy.mean) / se,
		DoF:    dof,
		StdErr: se,
	}
	if err := requireFinite("Welch t-test", map[string]float64{"t": stat.T, "dof": stat.DoF, "stderr": stat.StdErr}); err != nil {
		return WelchStat{}, err
	}
	return stat, nil
}

// WelchPValueManual derives the p-value of WelchTStat from Student's t
// distribution with the fractional Welch degrees of freedom.
func WelchPValueManual(x, y []float64, alt hypothesis.Alternative) (hypothesis.TTestResult, error) {
	if err := alt.Validate(); err != nil {
		return hypothesis.TTestResult{}, err
	}
	stat, err := WelchTStat(x, y)
	if err != nil {
		return hypothesis.TTestResult{}, err
	}

	p, err := distributions.PValue(stat.T, distributions.StudentsT(stat.DoF), alt)
	if err != nil {
		return hypothesis.TTestResult{}, errors.Wrap(err, "Welch t-test")
	}

	return hypothesis.TTestResult{
		PValue:      p,
		T:           stat.T,
		DoF:         stat.DoF,
		StdErr:      stat.StdErr,
		N1:          len(x),
		N2:          len(y),
		Alternative: alt,
	}, nil
}

// WelchPValue runs go-moremath's two-sample Welch t-test.
func WelchPValue(x, y []float64, alt hypothesis.Alternative) (hypothesis.TTestResult, error) {
	if err := alt.Validate(); err != nil {
		return hypothesis.TTestResult{}, err
	}
	stat, err := WelchTStat(x, y)
	if err != nil {
		return hypothesis.TTestResult{}, err
	}

	res, err := moremath.TwoSampleWelchTTest(moremath.Sample{Xs: x}, moremath.Sample{Xs: y}, location(alt))
	if err != nil {
		return hypothesis.TTestResult{}, errors.ReferenceFailure("TwoSampleWelchTTest", err)
	}
	if err := requireFinite("Welch t-test", map[string]float64{"t": res.T, "dof": res.DoF, "p": res.P}); err != nil {
		return hypothesis.TTestResult{}, err
	}

	return hypothesis.TTestResult{
		PValue:      res.P,
		T:           res.T,
		DoF:         res.DoF,
		StdErr:      stat.StdErr,
		N1:          res.N1,
		N2:          res.N2,
		Alternative: alt,
	}, nil
}
