package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"abstats/adapters/stats/permutation"
	"abstats/app"
	"abstats/internal"
	"abstats/internal/config"
	"abstats/internal/errors"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// cli holds what every subcommand needs once configuration is loaded
type cli struct {
	config  *config.Config
	logger  *logrus.Logger
	service *app.AnalysisService
}

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		internal.NewDefaultLogger().WithError(err).Warn("could not load .env file")
	}

	if err := newRootCmd(os.Stderr).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorLine(err))
		os.Exit(1)
	}
}

// errorLine prefixes application errors with their code; cobra's own
// usage errors are printed as they are.
func errorLine(err error) string {
	if errors.IsAppError(err) {
		return fmt.Sprintf("%s: %v", errors.GetCode(err), err)
	}
	return err.Error()
}

func newRootCmd(logOutput io.Writer) *cobra.Command {
	c := &cli{}

	rootCmd := &cobra.Command{
		Use:   "abstats",
		Short: "Hypothesis tests for A/B experiments",
		Long: `Run exact binomial, t, z and permutation tests from the command line.

Every test runs a manual implementation and a library reference implementation
and reports how far their p-values are apart. Results are printed as JSON.

Configuration is read from the environment (and a .env file):
- ABSTATS_PERMUTATION_REPS (default: 10000)
- ABSTATS_PERMUTATION_SEED (default: 42)
- ABSTATS_PROGRESS_EVERY (default: reps/100)
- ABSTATS_WORKERS (default: 4)
- ABSTATS_DEFAULT_ALTERNATIVE (default: two-sided)
- ABSTATS_CROSSCHECK_TOLERANCE (default: 1e-6)
- ABSTATS_LOG_LEVEL (default: info)
- ABSTATS_LOG_FORMAT text|json (default: text)`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger, err := internal.NewLogger(logOutput, cfg.Logging.Level, cfg.Logging.Format)
			if err != nil {
				return err
			}
			c.config = cfg
			c.logger = logger
			c.service = app.NewAnalysisService(cfg, permutation.NewDefaultEngine(), logger)
			return nil
		},
	}

	rootCmd.AddCommand(
		c.newBinomialCmd(),
		c.newOneSampleCmd(),
		c.newWelchCmd(),
		c.newZPropCmd(),
		c.newZPropArraysCmd(),
		c.newPermutationCmd(),
		c.newBatchCmd(),
		c.newDemoCmd(),
	)

	return rootCmd
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
