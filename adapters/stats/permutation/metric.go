package permutation

import (
	"abstats/domain/hypothesis"
	"abstats/internal/errors"

	"github.com/montanaflynn/stats"
)

// Metric summarizes one group of observations. The test statistic is
// Metric(x) - Metric(y).
type Metric func(xs []float64) (float64, error)

// Mean is the arithmetic mean, the default metric.
func Mean(xs []float64) (float64, error) {
	return stats.Mean(xs)
}

// Median is the sample median.
func Median(xs []float64) (float64, error) {
	return stats.Median(xs)
}

// MetricByName resolves "mean" and "median"; the empty name selects Mean.
func MetricByName(name string) (Metric, bool) {
	switch name {
	case "", "mean":
		return Mean, true
	case "median":
		return Median, true
	}
	return nil, false
}

// SummarizeTrace describes the null distribution of resampled statistics
func SummarizeTrace(trace []float64) (hypothesis.NullDistributionSummary, error) {
	var (
		summary hypothesis.NullDistributionSummary
		err     error
	)
	if summary.Mean, err = stats.Mean(trace); err != nil {
		return hypothesis.NullDistributionSummary{}, errors.Wrap(err, "null distribution mean")
	}
	if summary.StdDev, err = stats.StandardDeviationPopulation(trace); err != nil {
		return hypothesis.NullDistributionSummary{}, errors.Wrap(err, "null distribution spread")
	}
	if summary.Min, err = stats.Min(trace); err != nil {
		return hypothesis.NullDistributionSummary{}, errors.Wrap(err, "null distribution minimum")
	}
	if summary.Max, err = stats.Max(trace); err != nil {
		return hypothesis.NullDistributionSummary{}, errors.Wrap(err, "null distribution maximum")
	}
	if summary.Percentile95, err = stats.PercentileNearestRank(trace, 95); err != nil {
		return hypothesis.NullDistributionSummary{}, errors.Wrap(err, "null distribution 95th percentile")
	}
	if summary.Percentile99, err = stats.PercentileNearestRank(trace, 99); err != nil {
		return hypothesis.NullDistributionSummary{}, errors.Wrap(err, "null distribution 99th percentile")
	}
	return summary, nil
}
