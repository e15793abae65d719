// Package ensemble implements an AdaBoost-style reweighting loop around an
// external learner.
package ensemble

import (
	"time"

	"github.com/YuminosukeSato/boostcv/core/dataset"
	"github.com/YuminosukeSato/boostcv/core/model"
	"github.com/YuminosukeSato/boostcv/metrics"
	"github.com/YuminosukeSato/boostcv/pkg/errors"
	"github.com/YuminosukeSato/boostcv/pkg/log"
)

// RoundResult is the outcome of one boosting round.
type RoundResult struct {
	Round              int     `json:"round"`
	Error              float64 `json:"error"`
	ClassificationRate float64 `json:"classification_rate"`
	Alpha              float64 `json:"alpha"`
}

// RunResult is the outcome of a complete Run.
type RunResult struct {
	Rounds []RoundResult
	// Final is the weighted dataset fed to the learner in the last round.
	Final *dataset.Dataset
	// Weights is a copy of d after the last update.
	Weights *dataset.WeightMatrix
	// Confusion is a copy of the evaluator after the last round.
	Confusion *metrics.ConfusionMatrix
}

// Engine runs depth rounds of reweight, train/predict, score and weight
// update. The original dataset is never modified; every round produces a
// new Dataset.
//
// Only one Run may be in progress per Engine.
type Engine struct {
	learner   Learner
	evaluator *metrics.ConfusionMatrix
	original  *dataset.Dataset
	depth     int

	scorer  ErrorScorer
	updater WeightUpdater
	logger  log.Logger
	state   *model.StateManager
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithErrorScorer replaces the default WeightedErrorScorer.
func WithErrorScorer(s ErrorScorer) EngineOption {
	return func(e *Engine) {
		e.scorer = s
	}
}

// WithWeightUpdater replaces the default StaticWeights.
func WithWeightUpdater(u WeightUpdater) EngineOption {
	return func(e *Engine) {
		e.updater = u
	}
}

// WithLogger sets the logger.
func WithLogger(l log.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = l
	}
}

// NewEngine creates an Engine for depth rounds over original.
func NewEngine(learner Learner, evaluator *metrics.ConfusionMatrix, original *dataset.Dataset, depth int, opts ...EngineOption) (*Engine, error) {
	if original == nil || original.NumRows() == 0 {
		return nil, errors.NewEmptyDatasetError("NewEngine")
	}
	if depth < 1 {
		return nil, errors.NewValidationError("depth", "must be at least 1", depth)
	}
	if learner == nil {
		return nil, errors.NewValidationError("learner", "must not be nil", nil)
	}
	if evaluator == nil {
		return nil, errors.NewValidationError("evaluator", "must not be nil", nil)
	}

	e := &Engine{
		learner:   learner,
		evaluator: evaluator,
		original:  original,
		depth:     depth,
		scorer:    WeightedErrorScorer{},
		updater:   StaticWeights{},
		state:     model.NewStateManager(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = log.GetLoggerWithName("ensemble")
	}
	e.logger = e.logger.With(log.ModelNameKey, "BoostingEngine")
	return e, nil
}

// Depth returns the number of rounds per Run.
func (e *Engine) Depth() int {
	return e.depth
}

// State returns the lifecycle state and the current round.
func (e *Engine) State() (model.RunState, int) {
	return e.state.State()
}

// Run executes the boosting loop. Each call starts from the original data
// and a fresh uniform weight matrix.
//
// A learner error or panic aborts the run and returns the engine to Idle.
func (e *Engine) Run() (*RunResult, error) {
	if err := e.state.Start(e.depth); err != nil {
		return nil, errors.NewValueError("Engine.Run", err.Error())
	}

	result, err := e.run()
	if err != nil {
		e.state.Abort()
		e.logger.Error("Boosting failed", err,
			log.OperationKey, log.OperationBoost,
			log.ErrorCodeKey, log.ErrorLearnerFailure,
		)
		return nil, err
	}
	e.state.Finish()
	return result, nil
}

func (e *Engine) run() (*RunResult, error) {
	start := time.Now()
	n, f := e.original.Dims()
	d, err := dataset.NewUniformWeights(n, f)
	if err != nil {
		return nil, err
	}
	outcomes := metrics.NewSampleLog(n)
	recorder := e.evaluator.Recorder(outcomes)
	numClasses := e.evaluator.NumClasses()

	e.logger.Debug("Boosting started",
		log.OperationKey, log.OperationBoost,
		log.DepthKey, e.depth,
		log.SamplesKey, n,
		log.FeaturesKey, f,
		log.ClassesKey, numClasses,
	)

	result := &RunResult{Rounds: make([]RoundResult, 0, e.depth)}
	current := e.original
	for k := 1; k <= e.depth; k++ {
		e.state.Advance(k)

		next, err := current.Hadamard(d)
		if err != nil {
			return nil, errors.Wrapf(err, "round %d: reweight", k)
		}

		e.evaluator.Reset()
		outcomes.Reset()
		if err := e.trainAndPredict(next, recorder); err != nil {
			return nil, errors.Wrapf(err, "round %d", k)
		}

		roundErr, err := e.scorer.Score(outcomes, d)
		if err != nil {
			return nil, errors.Wrapf(err, "round %d: score", k)
		}
		if err := errors.CheckScalar("ErrorScorer.Score", roundErr, k); err != nil {
			return nil, err
		}
		alpha, err := e.updater.Update(d, outcomes, roundErr, numClasses)
		if err != nil {
			return nil, errors.Wrapf(err, "round %d: weight update", k)
		}
		if err := errors.CheckScalar("WeightUpdater.Update", alpha, k); err != nil {
			return nil, err
		}

		rr := RoundResult{
			Round:              k,
			Error:              roundErr,
			ClassificationRate: e.evaluator.ClassificationRate(),
			Alpha:              alpha,
		}
		result.Rounds = append(result.Rounds, rr)
		e.logger.Debug("Boosting round finished",
			log.RoundKey, k,
			log.RoundErrorKey, rr.Error,
			log.AccuracyKey, rr.ClassificationRate,
			log.AlphaKey, rr.Alpha,
		)

		current = next
	}

	result.Final = current
	result.Weights = d.Clone()
	result.Confusion = e.evaluator.Clone()

	e.logger.Info("Boosting finished",
		log.OperationKey, log.OperationBoost,
		log.DepthKey, e.depth,
		log.AccuracyKey, result.Confusion.ClassificationRate(),
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return result, nil
}

func (e *Engine) trainAndPredict(weighted *dataset.Dataset, rec metrics.SampleRecorder) error {
	return errors.SafeExecute("Learner.TrainAndPredict", func() error {
		return e.learner.TrainAndPredict(weighted, rec)
	})
}
