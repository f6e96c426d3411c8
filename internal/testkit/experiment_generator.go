// Package testkit generates seeded synthetic A/B experiment data for tests
// and demonstrations.
package testkit

import (
	"math/rand"

	"abstats/internal/errors"

	"github.com/montanaflynn/stats"
)

// ExperimentConfig configures the synthetic experiment generator
type ExperimentConfig struct {
	ControlSize   int     `json:"control_size"`
	TreatmentSize int     `json:"treatment_size"`
	ControlRate   float64 `json:"control_rate"`   // conversion probability
	TreatmentRate float64 `json:"treatment_rate"` // conversion probability
	ControlMean   float64 `json:"control_mean"`   // revenue per unit
	TreatmentMean float64 `json:"treatment_mean"` // revenue per unit
	StdDev        float64 `json:"std_dev"`
	Seed          int64   `json:"seed"`
}

// DefaultExperimentConfig returns a modest two-arm experiment with a lift
// in both conversion and revenue.
func DefaultExperimentConfig() ExperimentConfig {
	return ExperimentConfig{
		ControlSize:   500,
		TreatmentSize: 500,
		ControlRate:   0.10,
		TreatmentRate: 0.14,
		ControlMean:   20,
		TreatmentMean: 21.5,
		StdDev:        5,
		Seed:          42,
	}
}

// Arm holds the per-unit observations of one experiment group
type Arm struct {
	Conversions []float64 `json:"conversions"` // 0 or 1 per unit
	Revenue     []float64 `json:"revenue"`
	Successes   int       `json:"successes"`
}

// Size returns the number of units in the arm
func (a Arm) Size() int {
	return len(a.Conversions)
}

// Experiment is a generated control/treatment pair
type Experiment struct {
	Control   Arm `json:"control"`
	Treatment Arm `json:"treatment"`
}

// ArmSummary describes an arm's revenue distribution
type ArmSummary struct {
	Units          int     `json:"units"`
	ConversionRate float64 `json:"conversion_rate"`
	RevenueMean    float64 `json:"revenue_mean"`
	RevenueMedian  float64 `json:"revenue_median"`
	RevenueStdDev  float64 `json:"revenue_std_dev"`
}

// ExperimentGenerator produces deterministic synthetic experiments
type ExperimentGenerator struct {
	config ExperimentConfig
	rng    *rand.Rand
}

// NewExperimentGenerator validates the configuration and creates a generator
func NewExperimentGenerator(config ExperimentConfig) (*ExperimentGenerator, error) {
	if config.ControlSize < 2 || config.TreatmentSize < 2 {
		return nil, errors.InvalidInputf("arm sizes %d and %d must be at least 2", config.ControlSize, config.TreatmentSize)
	}
	for _, rate := range []float64{config.ControlRate, config.TreatmentRate} {
		if !(rate >= 0 && rate <= 1) {
			return nil, errors.InvalidInputf("conversion rate %v must lie in [0, 1]", rate)
		}
	}
	if !(config.StdDev > 0) {
		return nil, errors.InvalidInputf("standard deviation %v must be positive", config.StdDev)
	}

	return &ExperimentGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}, nil
}

// Generate draws both arms. Successive calls continue the same stream.
func (g *ExperimentGenerator) Generate() Experiment {
	return Experiment{
		Control:   g.arm(g.config.ControlSize, g.config.ControlRate, g.config.ControlMean),
		Treatment: g.arm(g.config.TreatmentSize, g.config.TreatmentRate, g.config.TreatmentMean),
	}
}

func (g *ExperimentGenerator) arm(n int, rate, mean float64) Arm {
	arm := Arm{
		Conversions: make([]float64, n),
		Revenue:     make([]float64, n),
	}
	for i := 0; i < n; i++ {
		if g.rng.Float64() < rate {
			arm.Conversions[i] = 1
			arm.Successes++
		}
		arm.Revenue[i] = mean + g.config.StdDev*g.rng.NormFloat64()
	}
	return arm
}

// Summarize computes descriptive statistics for an arm
func Summarize(a Arm) (ArmSummary, error) {
	if a.Size() == 0 {
		return ArmSummary{}, errors.InvalidInput("arm has no units")
	}
	mean, err := stats.Mean(a.Revenue)
	if err != nil {
		return ArmSummary{}, errors.Wrap(err, "revenue mean")
	}
	median, err := stats.Median(a.Revenue)
	if err != nil {
		return ArmSummary{}, errors.Wrap(err, "revenue median")
	}
	sd, err := stats.StandardDeviationSample(a.Revenue)
	if err != nil {
		return ArmSummary{}, errors.Wrap(err, "revenue standard deviation")
	}

	return ArmSummary{
		Units:          a.Size(),
		ConversionRate: float64(a.Successes) / float64(a.Size()),
		RevenueMean:    mean,
		RevenueMedian:  median,
		RevenueStdDev:  sd,
	}, nil
}
