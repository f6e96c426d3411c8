package ttest

import (
	"math"

	"abstats/domain/hypothesis"
	"abstats/internal/distributions"
	"abstats/internal/errors"

	moremath "github.com/aclements/go-moremath/stats"
)

// OneSampleStat is the t statistic of H0: mean = mu0 with its degrees of
// freedom and the standard error of the mean.
type OneSampleStat struct {
	T      float64
	DoF    float64
	StdErr float64
}

// OneSampleTStat computes t = (mean(x) - mu0) / (s / sqrt(n)) with n - 1
// degrees of freedom.
func OneSampleTStat(x []float64, mu0 float64) (OneSampleStat, error) {
	if math.IsNaN(mu0) || math.IsInf(mu0, 0) {
		return OneSampleStat{}, errors.InvalidInputf("hypothesized mean mu0=%v must be finite", mu0)
	}
	s, err := summarize("x", x)
	if err != nil {
		return OneSampleStat{}, err
	}

	se := math.Sqrt(s.variance) / math.Sqrt(s.n)
	if se == 0 {
		return OneSampleStat{}, errors.NumericDegenerate("sample x has zero variance, t statistic is undefined")
	}

	stat := OneSampleStat{
		T:      (s.mean - mu0) / se,
		DoF:    s.n - 1,
		StdErr: se,
	}
	if err := requireFinite("one-sample t-test", map[string]float64{"t": stat.T, "stderr": stat.StdErr}); err != nil {
		return OneSampleStat{}, err
	}
	return stat, nil
}

// OneSamplePValueManual derives the p-value of OneSampleTStat from Student's t
// distribution.
func OneSamplePValueManual(x []float64, mu0 float64, alt hypothesis.Alternative) (hypothesis.TTestResult, error) {
	if err := alt.Validate(); err != nil {
		return hypothesis.TTestResult{}, err
	}
	stat, err := OneSampleTStat(x, mu0)
	if err != nil {
		return hypothesis.TTestResult{}, err
	}

	p, err := distributions.PValue(stat.T, distributions.StudentsT(stat.DoF), alt)
	if err != nil {
		return hypothesis.TTestResult{}, errors.Wrap(err, "one-sample t-test")
	}

	return hypothesis.TTestResult{
		PValue:      p,
		T:           stat.T,
		DoF:         stat.DoF,
		StdErr:      stat.StdErr,
		N1:          len(x),
		Alternative: alt,
	}, nil
}

// OneSamplePValue runs go-moremath's one-sample t-test.
func OneSamplePValue(x []float64, mu0 float64, alt hypothesis.Alternative) (hypothesis.TTestResult, error) {
	if err := alt.Validate(); err != nil {
		return hypothesis.TTestResult{}, err
	}
	stat, err := OneSampleTStat(x, mu0)
	if err != nil {
		return hypothesis.TTestResult{}, err
	}

	res, err := moremath.OneSampleTTest(moremath.Sample{Xs: x}, mu0, location(alt))
	if err != nil {
		return hypothesis.TTestResult{}, errors.ReferenceFailure("OneSampleTTest", err)
	}
	if err := requireFinite("one-sample t-test", map[string]float64{"t": res.T, "dof": res.DoF, "p": res.P}); err != nil {
		return hypothesis.TTestResult{}, err
	}

	return hypothesis.TTestResult{
		PValue:      res.P,
		T:           res.T,
		DoF:         res.DoF,
		StdErr:      stat.StdErr,
		N1:          res.N1,
		Alternative: alt,
	}, nil
}
