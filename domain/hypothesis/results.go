package hypothesis

// BinomialResult is the outcome of an exact binomial test of H0: p = NullProbability.
type BinomialResult struct {
	PValue          float64     `json:"p_value"`
	Successes       int         `json:"successes"`
	Trials          int         `json:"trials"`
	NullProbability float64     `json:"null_probability"`
	Alternative     Alternative `json:"alternative"`
}

// TTestResult is the outcome of a one-sample or Welch two-sample t-test.
// N2 is zero for the one-sample test.
type TTestResult struct {
	PValue      float64     `json:"p_value"`
	T           float64     `json:"t"`
	DoF         float64     `json:"dof"`
	StdErr      float64     `json:"std_err"`
	N1          int         `json:"n1"`
	N2          int         `json:"n2,omitempty"`
	Alternative Alternative `json:"alternative"`
}

// ZTestResult is the outcome of a two-sample z-test for proportions.
type ZTestResult struct {
	PValue           float64     `json:"p_value"`
	Z                float64     `json:"z"`
	P1               float64     `json:"p1"`
	P2               float64     `json:"p2"`
	PooledProportion float64     `json:"pooled_proportion"`
	StdErr           float64     `json:"std_err"`
	N1               int         `json:"n1"`
	N2               int         `json:"n2"`
	Alternative      Alternative `json:"alternative"`
}

// PermutationResult is the outcome of a permutation test. Trace holds every
// resampled statistic in iteration order.
type PermutationResult struct {
	PValue      float64                 `json:"p_value"`
	Observed    float64                 `json:"observed"`
	Trace       []float64               `json:"trace,omitempty"`
	Null        NullDistributionSummary `json:"null"`
	Reps        int                     `json:"reps"`
	Seed        int64                   `json:"seed"`
	Alternative Alternative             `json:"alternative"`
}

// NullDistributionSummary describes the resampled statistics of a
// permutation test. StdDev is the population standard deviation and the
// percentiles use the nearest-rank definition.
type NullDistributionSummary struct {
	Mean         float64 `json:"mean"`
	StdDev       float64 `json:"std_dev"`
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`
	Percentile95 float64 `json:"percentile_95"`
	Percentile99 float64 `json:"percentile_99"`
}
