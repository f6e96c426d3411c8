package app

import (
	"context"
	"math"
	"time"

	"abstats/adapters/stats/binomial"
	"abstats/adapters/stats/permutation"
	"abstats/adapters/stats/ttest"
	"abstats/adapters/stats/ztest"
	"abstats/domain/core"
	"abstats/domain/hypothesis"
	"abstats/internal/config"
	"abstats/internal/errors"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// permutationWeight is the semaphore weight of a permutation request; every
// closed-form test weighs 1.
const permutationWeight = 4

type evaluator func(ctx context.Context, req Request, alt hypothesis.Alternative) (Evaluation, error)

// AnalysisService runs batches of hypothesis tests and cross-checks the
// manual implementation of each test against its reference implementation.
type AnalysisService struct {
	config *config.Config
	engine *permutation.Engine
	logger logrus.FieldLogger
}

// NewAnalysisService creates an analysis service
func NewAnalysisService(cfg *config.Config, engine *permutation.Engine, logger logrus.FieldLogger) *AnalysisService {
	if cfg == nil {
		cfg = config.Default()
	}
	if engine == nil {
		engine = permutation.NewDefaultEngine()
	}
	return &AnalysisService{
		config: cfg,
		engine: engine,
		logger: logger,
	}
}

// Run evaluates the requests concurrently and returns their outcomes in
// request order. A failing request is reported in its Outcome and does not
// stop the batch; cancelling ctx stops scheduling and returns ctx's error.
func (s *AnalysisService) Run(ctx context.Context, requests []Request) (*BatchResult, error) {
	startTime := time.Now()
	batchID := core.NewID()
	log := s.logger.WithField("batch_id", batchID)
	log.WithField("requests", len(requests)).Info("starting analysis batch")

	capacity := int64(s.config.Analysis.Workers)
	if capacity < 1 {
		capacity = 1
	}
	sem := semaphore.NewWeighted(capacity)
	outcomes := make([]Outcome, len(requests))

	g, gctx := errgroup.WithContext(ctx)
	for i, req := range requests {
		weight := requestWeight(req, capacity)
		if err := sem.Acquire(gctx, weight); err != nil {
			break
		}
		g.Go(func() error {
			defer sem.Release(weight)
			outcomes[i] = s.Evaluate(gctx, req)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		log.WithError(err).Warn("analysis batch cancelled")
		return nil, errors.Wrap(err, "analysis batch cancelled")
	}

	fingerprint, err := core.HashJSON(requests)
	if err != nil {
		log.WithError(err).Warn("could not fingerprint requests")
	}

	result := &BatchResult{
		BatchID:     batchID,
		Fingerprint: fingerprint,
		Outcomes:    outcomes,
		Summary:     summarize(outcomes, time.Since(startTime)),
	}
	log.WithFields(logrus.Fields{
		"fingerprint":   fingerprint.String(),
		"failed":        result.Summary.Failed,
		"disagreements": result.Summary.Disagreements,
		"runtime_ms":    result.Summary.RuntimeMs,
	}).Info("analysis batch finished")

	return result, nil
}

// Evaluate runs a single request with the methods it selects
func (s *AnalysisService) Evaluate(ctx context.Context, req Request) Outcome {
	startTime := time.Now()
	var idErr error
	if req.ID.IsEmpty() {
		req.ID = core.NewID()
	} else {
		_, idErr = core.ParseID(string(req.ID))
	}
	alt := s.config.Analysis.DefaultAlternative
	if req.Alternative != nil {
		alt = *req.Alternative
	}

	outcome := Outcome{ID: req.ID, Kind: req.Kind, Alternative: alt}
	log := s.logger.WithFields(logrus.Fields{"request_id": req.ID, "kind": req.Kind})
	if idErr != nil {
		return failed(outcome, idErr, startTime, log)
	}

	method, err := ParseMethod(string(req.Method))
	if err != nil {
		return failed(outcome, err, startTime, log)
	}
	manual, reference, err := s.evaluators(req.Kind)
	if err != nil {
		return failed(outcome, err, startTime, log)
	}
	if reference == nil {
		method = MethodManual
	}
	outcome.Method = method
	log = log.WithField("method", method)

	if method.runsManual() {
		eval, err := manual(ctx, req, alt)
		if err != nil {
			return failed(outcome, errors.Wrap(err, "manual evaluation"), startTime, log)
		}
		outcome.Manual = &eval
	}
	if method.runsReference() {
		eval, err := reference(ctx, req, alt)
		if err != nil {
			return failed(outcome, errors.Wrap(err, "reference evaluation"), startTime, log)
		}
		outcome.Reference = &eval
	}

	if outcome.Manual != nil && outcome.Reference != nil {
		diff := math.Abs(outcome.Manual.PValue - outcome.Reference.PValue)
		agrees := diff <= s.config.Analysis.CrossCheckTolerance
		outcome.Discrepancy = &diff
		outcome.Agrees = &agrees
		if !agrees {
			log.WithField("discrepancy", diff).Warn("manual and reference p-values disagree")
		}
	}

	outcome.RuntimeMs = time.Since(startTime).Milliseconds()
	log.WithField("runtime_ms", outcome.RuntimeMs).Debug("request evaluated")
	return outcome
}

func failed(outcome Outcome, err error, startTime time.Time, log logrus.FieldLogger) Outcome {
	outcome.Error = err.Error()
	outcome.ErrorCode = errors.GetCode(err)
	outcome.Manual = nil
	outcome.Reference = nil
	outcome.RuntimeMs = time.Since(startTime).Milliseconds()
	log.WithError(err).WithField("code", outcome.ErrorCode).Warn("request failed")
	return outcome
}

func requestWeight(req Request, capacity int64) int64 {
	if req.Kind != KindPermutation {
		return 1
	}
	if capacity < permutationWeight {
		return capacity
	}
	return permutationWeight
}

func summarize(outcomes []Outcome, elapsed time.Duration) Summary {
	summary := Summary{Total: len(outcomes), RuntimeMs: elapsed.Milliseconds()}
	for _, o := range outcomes {
		if o.Failed() {
			summary.Failed++
			continue
		}
		if o.Agrees != nil {
			summary.CrossChecked++
			if !*o.Agrees {
				summary.Disagreements++
			}
		}
	}
	return summary
}

// evaluators returns the manual and reference implementations of a kind.
// The permutation test has no reference implementation.
func (s *AnalysisService) evaluators(kind Kind) (evaluator, evaluator, error) {
	switch kind {
	case KindBinomial:
		return binomialEval(binomial.PValueManual), binomialEval(binomial.PValue), nil
	case KindOneSample:
		return oneSampleEval(ttest.OneSamplePValueManual), oneSampleEval(ttest.OneSamplePValue), nil
	case KindWelch:
		return welchEval(ttest.WelchPValueManual), welchEval(ttest.WelchPValue), nil
	case KindZProp:
		return zPropCountsManual, zPropCountsReference, nil
	case KindZPropArrays:
		return zPropArraysManual, zPropArraysReference, nil
	case KindPermutation:
		return s.permutationEval, nil, nil
	}
	return nil, nil, errors.InvalidInputf("unknown test kind %q", kind)
}

func binomialEval(fn func(int, int, float64, hypothesis.Alternative) (hypothesis.BinomialResult, error)) evaluator {
	return func(_ context.Context, req Request, alt hypothesis.Alternative) (Evaluation, error) {
		res, err := fn(req.K, req.N, req.P0, alt)
		if err != nil {
			return Evaluation{}, err
		}
		return Evaluation{PValue: res.PValue, Result: res}, nil
	}
}

func oneSampleEval(fn func([]float64, float64, hypothesis.Alternative) (hypothesis.TTestResult, error)) evaluator {
	return func(_ context.Context, req Request, alt hypothesis.Alternative) (Evaluation, error) {
		res, err := fn(req.X, req.Mu0, alt)
		if err != nil {
			return Evaluation{}, err
		}
		return Evaluation{PValue: res.PValue, Result: res}, nil
	}
}

func welchEval(fn func([]float64, []float64, hypothesis.Alternative) (hypothesis.TTestResult, error)) evaluator {
	return func(_ context.Context, req Request, alt hypothesis.Alternative) (Evaluation, error) {
		res, err := fn(req.X, req.Y, alt)
		if err != nil {
			return Evaluation{}, err
		}
		return Evaluation{PValue: res.PValue, Result: res}, nil
	}
}

func zEvaluation(res hypothesis.ZTestResult, err error) (Evaluation, error) {
	if err != nil {
		return Evaluation{}, err
	}
	return Evaluation{PValue: res.PValue, Result: res}, nil
}

func zPropCountsManual(_ context.Context, req Request, alt hypothesis.Alternative) (Evaluation, error) {
	return zEvaluation(ztest.PropPValueManual(req.X1, req.N1, req.X2, req.N2, alt))
}

func zPropCountsReference(_ context.Context, req Request, alt hypothesis.Alternative) (Evaluation, error) {
	a, err := ztest.Indicators("group 1", req.X1, req.N1)
	if err != nil {
		return Evaluation{}, err
	}
	b, err := ztest.Indicators("group 2", req.X2, req.N2)
	if err != nil {
		return Evaluation{}, err
	}
	return zEvaluation(ztest.PropPValue(a, b, alt))
}

func zPropArraysManual(_ context.Context, req Request, alt hypothesis.Alternative) (Evaluation, error) {
	x1, n1, err := ztest.CountSuccesses("group 1", req.A)
	if err != nil {
		return Evaluation{}, err
	}
	x2, n2, err := ztest.CountSuccesses("group 2", req.B)
	if err != nil {
		return Evaluation{}, err
	}
	return zEvaluation(ztest.PropPValueManual(x1, n1, x2, n2, alt))
}

func zPropArraysReference(_ context.Context, req Request, alt hypothesis.Alternative) (Evaluation, error) {
	return zEvaluation(ztest.PropPValue(req.A, req.B, alt))
}

func (s *AnalysisService) permutationEval(ctx context.Context, req Request, alt hypothesis.Alternative) (Evaluation, error) {
	metric, ok := permutation.MetricByName(req.Metric)
	if !ok {
		return Evaluation{}, errors.InvalidInputf("unknown permutation metric %q, expected mean or median", req.Metric)
	}
	cfg := permutation.Config{
		Metric:        metric,
		Reps:          req.Reps,
		Alternative:   alt,
		Seed:          req.Seed,
		ProgressEvery: s.config.Permutation.ProgressEvery,
	}
	if cfg.Reps == 0 {
		cfg.Reps = s.config.Permutation.Reps
	}
	if cfg.Seed == 0 {
		cfg.Seed = s.config.Permutation.Seed
	}

	log := s.logger.WithFields(logrus.Fields{"request_id": req.ID, "reps": cfg.Reps})
	cfg.Progress = func(done, total int) {
		log.WithField("done", done).Debug("permutation progress")
	}

	res, err := s.engine.Run(ctx, req.X, req.Y, cfg)
	if err != nil {
		return Evaluation{}, err
	}
	if !req.KeepTrace {
		res.Trace = nil
	}
	return Evaluation{PValue: res.PValue, Result: res}, nil
}
