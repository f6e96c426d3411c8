// Package ttest implements the one-sample and Welch two-sample t-tests, each
// as a manual formula path and a go-moremath reference path.
package ttest

import (
	"math"

	"abstats/domain/hypothesis"
	"abstats/internal/errors"

	moremath "github.com/aclements/go-moremath/stats"
	"github.com/montanaflynn/stats"
)

// summary holds the moments every t statistic is built from.
type summary struct {
	n        float64
	mean     float64
	variance float64 // n-1 denominator
}

func summarize(name string, x []float64) (summary, error) {
	if err := hypothesis.RequireSample(name, x, 2); err != nil {
		return summary{}, err
	}
	mean, err := stats.Mean(x)
	if err != nil {
		return summary{}, errors.Wrapf(errors.InvalidInput(err.Error()), "mean of sample %s", name)
	}
	variance, err := stats.SampleVariance(x)
	if err != nil {
		return summary{}, errors.Wrapf(errors.InvalidInput(err.Error()), "variance of sample %s", name)
	}
	if !finite(mean) || !finite(variance) {
		return summary{}, errors.NumericDegeneratef("sample %s overflows: mean=%v variance=%v", name, mean, variance)
	}
	return summary{n: float64(len(x)), mean: mean, variance: variance}, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// requireFinite rejects a statistic that overflowed or came out undefined.
func requireFinite(test string, values map[string]float64) error {
	for _, name := range []string{"t", "dof", "stderr", "p"} {
		if v, ok := values[name]; ok && !finite(v) {
			return errors.NumericDegeneratef("%s: %s=%v is not finite", test, name, v)
		}
	}
	return nil
}

// location translates an alternative into go-moremath's naming.
func location(alt hypothesis.Alternative) moremath.LocationHypothesis {
	switch alt {
	case hypothesis.Greater:
		return moremath.LocationGreater
	case hypothesis.Less:
		return moremath.LocationLess
	}
	return moremath.LocationDiffers
}
