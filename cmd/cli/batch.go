package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"

	"abstats/app"
	"abstats/domain/hypothesis"
	"abstats/internal/errors"
	"abstats/internal/testkit"

	"github.com/spf13/cobra"
)

// batchDocument is the request file format. A bare JSON array of requests
// is accepted as well.
type batchDocument struct {
	Requests []app.Request `json:"requests"`
}

func decodeRequests(data []byte) ([]app.Request, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, errors.InvalidInput("request document is empty")
	}

	if data[0] == '[' {
		var requests []app.Request
		if err := json.Unmarshal(data, &requests); err != nil {
			return nil, errors.WithCode(errors.CodeInvalidInput, errors.Wrap(err, "failed to parse request array"))
		}
		return requests, nil
	}

	var doc batchDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, errors.Wrap(err, "failed to parse request document"))
	}
	return doc.Requests, nil
}

func (c *cli) newBatchCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Run a JSON document of test requests concurrently",
		Long: `Run every request in a JSON document and cross-check manual against
reference results. The document is {"requests": [...]} or a bare array;
each request names its "kind" and the inputs of that test.

Example: abstats batch --file requests.json
         cat requests.json | abstats batch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if file != "" && file != "-" {
				f, err := os.Open(file)
				if err != nil {
					return errors.WithCode(errors.CodeInvalidInput, errors.Wrap(err, "failed to open request file"))
				}
				defer f.Close()
				r = f
			}

			data, err := io.ReadAll(r)
			if err != nil {
				return errors.Wrap(err, "failed to read requests")
			}
			requests, err := decodeRequests(data)
			if err != nil {
				return err
			}

			result, err := c.service.Run(cmd.Context(), requests)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Request document path (default: stdin)")
	return cmd
}

// demoReport pairs the generated arms with the batch run over them
type demoReport struct {
	Control   testkit.ArmSummary `json:"control"`
	Treatment testkit.ArmSummary `json:"treatment"`
	Batch     *app.BatchResult   `json:"batch"`
}

func demoRequests(exp testkit.Experiment, config testkit.ExperimentConfig) []app.Request {
	greater := hypothesis.Greater
	return []app.Request{
		{
			ID: "treatment-conversion-vs-control-rate", Kind: app.KindBinomial,
			K: exp.Treatment.Successes, N: exp.Treatment.Size(), P0: config.ControlRate,
			Alternative: &greater,
		},
		{
			ID: "treatment-revenue-vs-control-mean", Kind: app.KindOneSample,
			X: exp.Treatment.Revenue, Mu0: config.ControlMean,
		},
		{
			ID: "revenue-welch", Kind: app.KindWelch,
			X: exp.Treatment.Revenue, Y: exp.Control.Revenue,
		},
		{
			ID: "conversion-z-counts", Kind: app.KindZProp,
			X1: exp.Treatment.Successes, N1: exp.Treatment.Size(),
			X2: exp.Control.Successes, N2: exp.Control.Size(),
		},
		{
			ID: "conversion-z-arrays", Kind: app.KindZPropArrays,
			A: exp.Treatment.Conversions, B: exp.Control.Conversions,
		},
		{
			ID: "revenue-permutation", Kind: app.KindPermutation,
			X: exp.Treatment.Revenue, Y: exp.Control.Revenue,
		},
	}
}

func (c *cli) newDemoCmd() *cobra.Command {
	config := testkit.DefaultExperimentConfig()

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Generate a seeded synthetic experiment and run every test on it",
		Long: `Generate control and treatment arms with known conversion rates and
revenue means, then run each test family on them.

Example: abstats demo --seed 7 --control-size 1000 --treatment-size 1000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			gen, err := testkit.NewExperimentGenerator(config)
			if err != nil {
				return err
			}
			exp := gen.Generate()

			control, err := testkit.Summarize(exp.Control)
			if err != nil {
				return err
			}
			treatment, err := testkit.Summarize(exp.Treatment)
			if err != nil {
				return err
			}

			c.logger.WithField("seed", config.Seed).Info("generated synthetic experiment")
			result, err := c.service.Run(cmd.Context(), demoRequests(exp, config))
			if err != nil {
				return err
			}

			return writeJSON(cmd.OutOrStdout(), demoReport{
				Control:   control,
				Treatment: treatment,
				Batch:     result,
			})
		},
	}

	cmd.Flags().Int64Var(&config.Seed, "seed", config.Seed, "Random seed for the synthetic data")
	cmd.Flags().IntVar(&config.ControlSize, "control-size", config.ControlSize, "Units in the control arm")
	cmd.Flags().IntVar(&config.TreatmentSize, "treatment-size", config.TreatmentSize, "Units in the treatment arm")
	cmd.Flags().Float64Var(&config.ControlRate, "control-rate", config.ControlRate, "Control conversion probability")
	cmd.Flags().Float64Var(&config.TreatmentRate, "treatment-rate", config.TreatmentRate, "Treatment conversion probability")
	cmd.Flags().Float64Var(&config.ControlMean, "control-mean", config.ControlMean, "Control revenue mean")
	cmd.Flags().Float64Var(&config.TreatmentMean, "treatment-mean", config.TreatmentMean, "Treatment revenue mean")
	cmd.Flags().Float64Var(&config.StdDev, "std-dev", config.StdDev, "Revenue standard deviation")
	return cmd
}
