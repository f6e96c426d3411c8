// Package permutation implements the two-sample permutation (randomization)
// test for a difference in a location metric.
package permutation

import (
	"context"
	"math"
	"sort"

	"abstats/adapters/rng"
	"abstats/domain/hypothesis"
	"abstats/internal/errors"
	"abstats/ports"
)

// DefaultSeed seeds the resampling stream when Config.Seed is zero.
const DefaultSeed int64 = 42

const streamName = "permutation"

// ProgressFunc is called with the number of completed resamples.
type ProgressFunc func(done, total int)

// Config controls one permutation run. Zero values resolve to defaults:
// Mean for Metric, DefaultSeed for Seed and reps/100 for ProgressEvery.
type Config struct {
	Metric        Metric
	Reps          int
	Alternative   hypothesis.Alternative
	Seed          int64
	Progress      ProgressFunc
	ProgressEvery int
}

func (c Config) resolved() Config {
	if c.Metric == nil {
		c.Metric = Mean
	}
	if c.Seed == 0 {
		c.Seed = DefaultSeed
	}
	if c.ProgressEvery <= 0 {
		c.ProgressEvery = c.Reps / 100
		if c.ProgressEvery < 1 {
			c.ProgressEvery = 1
		}
	}
	return c
}

// Engine runs permutation tests with random streams drawn from an RNGPort.
type Engine struct {
	rng ports.RNGPort
}

// NewEngine creates an engine backed by the given random source
func NewEngine(source ports.RNGPort) *Engine {
	return &Engine{rng: source}
}

// NewDefaultEngine creates an engine backed by math/rand seeded streams
func NewDefaultEngine() *Engine {
	return NewEngine(rng.NewSeededRNG())
}

// PValue runs a permutation test with the default engine and seed.
func PValue(x, y []float64, metric Metric, reps int, alt hypothesis.Alternative) (hypothesis.PermutationResult, error) {
	return NewDefaultEngine().Run(context.Background(), x, y, Config{
		Metric:      metric,
		Reps:        reps,
		Alternative: alt,
	})
}

// Run computes T_obs = metric(x) - metric(y) and compares it against reps
// statistics recomputed after randomly reassigning the pooled observations
// to groups of the original sizes.
//
// The pooled observations are sorted before resampling, so the result
// depends only on the two multisets, the group sizes, Reps and Seed.
func (e *Engine) Run(ctx context.Context, x, y []float64, cfg Config) (hypothesis.PermutationResult, error) {
	cfg = cfg.resolved()
	if err := validate(x, y, cfg); err != nil {
		return hypothesis.PermutationResult{}, err
	}

	observed, err := statistic(cfg.Metric, x, y)
	if err != nil {
		return hypothesis.PermutationResult{}, err
	}
	if math.IsNaN(observed) || math.IsInf(observed, 0) {
		return hypothesis.PermutationResult{}, errors.NumericDegeneratef("observed statistic is %v", observed)
	}

	r, err := e.rng.SeededStream(ctx, streamName, cfg.Seed)
	if err != nil {
		return hypothesis.PermutationResult{}, errors.Wrap(err, "failed to obtain random stream")
	}

	pooled := make([]float64, 0, len(x)+len(y))
	pooled = append(pooled, x...)
	pooled = append(pooled, y...)
	sort.Float64s(pooled)

	nx := len(x)
	trace := make([]float64, cfg.Reps)
	for i := range trace {
		r.Shuffle(len(pooled), func(a, b int) {
			pooled[a], pooled[b] = pooled[b], pooled[a]
		})
		t, err := statistic(cfg.Metric, pooled[:nx], pooled[nx:])
		if err != nil {
			return hypothesis.PermutationResult{}, err
		}
		trace[i] = t

		if cfg.Progress != nil && ((i+1)%cfg.ProgressEvery == 0 || i+1 == cfg.Reps) {
			cfg.Progress(i+1, cfg.Reps)
		}
	}

	null, err := SummarizeTrace(trace)
	if err != nil {
		return hypothesis.PermutationResult{}, err
	}

	return hypothesis.PermutationResult{
		PValue:      tailFraction(trace, observed, cfg.Alternative),
		Observed:    observed,
		Trace:       trace,
		Null:        null,
		Reps:        cfg.Reps,
		Seed:        cfg.Seed,
		Alternative: cfg.Alternative,
	}, nil
}

func validate(x, y []float64, cfg Config) error {
	if err := hypothesis.RequireSample("x", x, 1); err != nil {
		return err
	}
	if err := hypothesis.RequireSample("y", y, 1); err != nil {
		return err
	}
	if cfg.Reps < 1 {
		return errors.InvalidInputf("reps=%d must be at least 1", cfg.Reps)
	}
	return cfg.Alternative.Validate()
}

func statistic(metric Metric, first, second []float64) (float64, error) {
	a, err := metric(first)
	if err != nil {
		return 0, errors.WithCode(errors.CodeInvalidInput, errors.Wrap(err, "metric failed on first group"))
	}
	b, err := metric(second)
	if err != nil {
		return 0, errors.WithCode(errors.CodeInvalidInput, errors.Wrap(err, "metric failed on second group"))
	}
	return a - b, nil
}

// tailFraction is the share of resampled statistics at least as extreme as
// the observed one in the direction of alt.
func tailFraction(trace []float64, observed float64, alt hypothesis.Alternative) float64 {
	var hits int
	for _, t := range trace {
		switch alt {
		case hypothesis.Greater:
			if t >= observed {
				hits++
			}
		case hypothesis.Less:
			if t <= observed {
				hits++
			}
		default:
			if math.Abs(t) >= math.Abs(observed) {
				hits++
			}
		}
	}
	return float64(hits) / float64(len(trace))
}
