package main

import (
	"abstats/app"
	"abstats/domain/hypothesis"
	"abstats/internal/errors"

	"github.com/spf13/cobra"
)

// testFlags are shared by every single-test command
type testFlags struct {
	alternative string
	method      string
}

func (f *testFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.alternative, "alternative", "", "Alternative hypothesis: two-sided|greater|less (default from ABSTATS_DEFAULT_ALTERNATIVE)")
	cmd.Flags().StringVar(&f.method, "method", "both", "Implementation to run: manual|reference|both")
}

func (f *testFlags) apply(req *app.Request) error {
	method, err := app.ParseMethod(f.method)
	if err != nil {
		return err
	}
	req.Method = method

	if f.alternative != "" {
		alt, err := hypothesis.ParseAlternative(f.alternative)
		if err != nil {
			return err
		}
		req.Alternative = &alt
	}
	return nil
}

// run evaluates one request and prints its outcome. A failed test is still
// printed and then reported as the command's error.
func (c *cli) run(cmd *cobra.Command, flags *testFlags, req app.Request) error {
	if err := flags.apply(&req); err != nil {
		return err
	}

	outcome := c.service.Evaluate(cmd.Context(), req)
	if err := writeJSON(cmd.OutOrStdout(), outcome); err != nil {
		return errors.Wrap(err, "failed to write outcome")
	}
	if outcome.Failed() {
		return errors.New(outcome.ErrorCode, outcome.Error)
	}
	return nil
}

func (c *cli) newBinomialCmd() *cobra.Command {
	var flags testFlags
	var k, n int
	var p0 float64

	cmd := &cobra.Command{
		Use:   "binomial",
		Short: "Exact binomial test of H0: p = p0",
		Long: `Exact binomial test of k successes in n trials against success probability p0.

Example: abstats binomial --k 8 --n 20 --p0 0.5 --alternative less`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, &flags, app.Request{Kind: app.KindBinomial, K: k, N: n, P0: p0})
		},
	}

	cmd.Flags().IntVar(&k, "k", 0, "Number of successes")
	cmd.Flags().IntVar(&n, "n", 0, "Number of trials")
	cmd.Flags().Float64Var(&p0, "p0", 0.5, "Success probability under H0")
	_ = cmd.MarkFlagRequired("k")
	_ = cmd.MarkFlagRequired("n")
	flags.register(cmd)
	return cmd
}

func (c *cli) newOneSampleCmd() *cobra.Command {
	var flags testFlags
	var x []float64
	var mu0 float64

	cmd := &cobra.Command{
		Use:   "onesample",
		Short: "One-sample t-test of H0: mean = mu0",
		Long: `One-sample Student's t-test.

Example: abstats onesample --x 1,2,3,4,5 --mu0 0`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, &flags, app.Request{Kind: app.KindOneSample, X: x, Mu0: mu0})
		},
	}

	cmd.Flags().Float64SliceVar(&x, "x", nil, "Sample values")
	cmd.Flags().Float64Var(&mu0, "mu0", 0, "Hypothesized mean")
	_ = cmd.MarkFlagRequired("x")
	flags.register(cmd)
	return cmd
}

func (c *cli) newWelchCmd() *cobra.Command {
	var flags testFlags
	var x, y []float64

	cmd := &cobra.Command{
		Use:   "welch",
		Short: "Welch two-sample t-test of H0: mean(x) = mean(y)",
		Long: `Two-sample t-test without the equal-variance assumption.

Example: abstats welch --x 2,1,3,4 --y 6,5,7,9`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, &flags, app.Request{Kind: app.KindWelch, X: x, Y: y})
		},
	}

	cmd.Flags().Float64SliceVar(&x, "x", nil, "First sample")
	cmd.Flags().Float64SliceVar(&y, "y", nil, "Second sample")
	_ = cmd.MarkFlagRequired("x")
	_ = cmd.MarkFlagRequired("y")
	flags.register(cmd)
	return cmd
}

func (c *cli) newZPropCmd() *cobra.Command {
	var flags testFlags
	var x1, n1, x2, n2 int

	cmd := &cobra.Command{
		Use:   "zprop",
		Short: "Two-sample z-test for proportions from counts",
		Long: `Pooled two-sample z-test of H0: p1 = p2 from successes and trials.

The reference method expands the counts into 0/1 indicators and runs the
pooled-variance array z-test.

Example: abstats zprop --x1 50 --n1 500 --x2 70 --n2 500`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, &flags, app.Request{Kind: app.KindZProp, X1: x1, N1: n1, X2: x2, N2: n2})
		},
	}

	cmd.Flags().IntVar(&x1, "x1", 0, "Successes in group 1")
	cmd.Flags().IntVar(&n1, "n1", 0, "Trials in group 1")
	cmd.Flags().IntVar(&x2, "x2", 0, "Successes in group 2")
	cmd.Flags().IntVar(&n2, "n2", 0, "Trials in group 2")
	for _, name := range []string{"x1", "n1", "x2", "n2"} {
		_ = cmd.MarkFlagRequired(name)
	}
	flags.register(cmd)
	return cmd
}

func (c *cli) newZPropArraysCmd() *cobra.Command {
	var flags testFlags
	var a, b []float64

	cmd := &cobra.Command{
		Use:   "zprop-arrays",
		Short: "Two-sample z-test for proportions from 0/1 conversion indicators",
		Long: `Pooled-variance two-sample z-test on per-unit conversion indicators.

Example: abstats zprop-arrays --a 1,0,0,1,0 --b 1,1,0,1,1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, &flags, app.Request{Kind: app.KindZPropArrays, A: a, B: b})
		},
	}

	cmd.Flags().Float64SliceVar(&a, "a", nil, "Conversion indicators of group 1")
	cmd.Flags().Float64SliceVar(&b, "b", nil, "Conversion indicators of group 2")
	_ = cmd.MarkFlagRequired("a")
	_ = cmd.MarkFlagRequired("b")
	flags.register(cmd)
	return cmd
}

func (c *cli) newPermutationCmd() *cobra.Command {
	var flags testFlags
	var x, y []float64
	var reps int
	var seed int64
	var metric string
	var trace bool

	cmd := &cobra.Command{
		Use:   "permutation",
		Short: "Permutation test for a difference in mean or median",
		Long: `Randomization test of H0: both samples come from the same distribution.

The statistic is metric(x) - metric(y). Reps and seed default to
ABSTATS_PERMUTATION_REPS and ABSTATS_PERMUTATION_SEED.

Example: abstats permutation --x 1,2,3,4,5 --y 1,2,3,4,5 --reps 1000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, &flags, app.Request{
				Kind:      app.KindPermutation,
				X:         x,
				Y:         y,
				Reps:      reps,
				Seed:      seed,
				Metric:    metric,
				KeepTrace: trace,
			})
		},
	}

	cmd.Flags().Float64SliceVar(&x, "x", nil, "First sample")
	cmd.Flags().Float64SliceVar(&y, "y", nil, "Second sample")
	cmd.Flags().IntVar(&reps, "reps", 0, "Number of resamples")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Random seed for the resampling stream")
	cmd.Flags().StringVar(&metric, "metric", "mean", "Group metric: mean|median")
	cmd.Flags().BoolVar(&trace, "trace", false, "Include every resampled statistic in the output")
	_ = cmd.MarkFlagRequired("x")
	_ = cmd.MarkFlagRequired("y")
	flags.register(cmd)
	return cmd
}
