package ensemble

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/boostcv/core/dataset"
	"github.com/YuminosukeSato/boostcv/core/model"
	"github.com/YuminosukeSato/boostcv/metrics"
	"github.com/YuminosukeSato/boostcv/pkg/errors"
	"github.com/YuminosukeSato/boostcv/pkg/log"
)

// scriptedLearner predicts fixed classes and remembers every dataset it
// was given.
type scriptedLearner struct {
	labels    []int
	predicted []int
	seen      []*dataset.Dataset
}

func (l *scriptedLearner) TrainAndPredict(weighted *dataset.Dataset, rec metrics.SampleRecorder) error {
	l.seen = append(l.seen, weighted)
	for i := range l.labels {
		if err := rec.RecordSample(i, l.labels[i], l.predicted[i]); err != nil {
			return err
		}
	}
	return nil
}

func testData(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.NewDataset([]dataset.FeatureRow{
		{1, 2, 3},
		{4, 5, 6},
		{7, 8, 9},
		{10, 11, 12},
	})
	require.NoError(t, err)
	return ds
}

func testEvaluator(t *testing.T, numClasses int) *metrics.ConfusionMatrix {
	t.Helper()
	m, err := metrics.NewConfusionMatrix(numClasses)
	require.NoError(t, err)
	return m
}

func quietLogger() EngineOption {
	testLogger, _ := log.NewTestLogger(log.LevelError)
	return WithLogger(testLogger)
}

func TestNewEngineValidation(t *testing.T) {
	ds := testData(t)
	learner := &scriptedLearner{}
	ev := testEvaluator(t, 2)

	_, err := NewEngine(learner, ev, nil, 3)
	var emptyErr *errors.EmptyDatasetError
	assert.True(t, errors.As(err, &emptyErr))

	tests := []struct {
		name    string
		learner Learner
		ev      *metrics.ConfusionMatrix
		depth   int
		param   string
	}{
		{name: "zero depth", learner: learner, ev: ev, depth: 0, param: "depth"},
		{name: "nil learner", learner: nil, ev: ev, depth: 1, param: "learner"},
		{name: "nil evaluator", learner: learner, ev: nil, depth: 1, param: "evaluator"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEngine(tt.learner, tt.ev, ds, tt.depth)
			var valErr *errors.ValidationError
			require.True(t, errors.As(err, &valErr))
			assert.Equal(t, tt.param, valErr.ParamName)
		})
	}
}

func TestRunCallsLearnerDepthTimes(t *testing.T) {
	ds := testData(t)
	learner := &scriptedLearner{labels: []int{0, 1, 0, 1}, predicted: []int{0, 1, 1, 1}}
	const depth = 3

	engine, err := NewEngine(learner, testEvaluator(t, 2), ds, depth, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, depth, engine.Depth())

	result, err := engine.Run()
	require.NoError(t, err)

	require.Len(t, learner.seen, depth)
	require.Len(t, result.Rounds, depth)
	n := float64(ds.NumRows())
	for k, weighted := range learner.seen {
		assert.Equal(t, k+1, result.Rounds[k].Round)
		scale := math.Pow(n, float64(k+1))
		for i := 0; i < ds.NumRows(); i++ {
			for j := 0; j < ds.NumFeatures(); j++ {
				assert.InDelta(t, ds.At(i, j)/scale, weighted.At(i, j), 1e-12,
					"round %d cell (%d,%d)", k+1, i, j)
			}
		}
	}

	// Final data is the original multiplied element-wise by d, depth times.
	expected := mat.DenseCopyOf(ds)
	for k := 0; k < depth; k++ {
		expected.MulElem(expected, result.Weights)
	}
	assert.True(t, mat.EqualApprox(expected, result.Final, 1e-12))
	assert.Same(t, learner.seen[depth-1], result.Final)

	assert.Equal(t, 1.0, ds.At(0, 0), "original data must be unchanged")
	state, round := engine.State()
	assert.Equal(t, model.Done, state)
	assert.Equal(t, depth, round)
}

func TestRunScoresEachRound(t *testing.T) {
	learner := &scriptedLearner{labels: []int{0, 1, 0, 1}, predicted: []int{0, 1, 1, 1}}
	engine, err := NewEngine(learner, testEvaluator(t, 2), testData(t), 2, quietLogger())
	require.NoError(t, err)

	result, err := engine.Run()
	require.NoError(t, err)
	for _, rr := range result.Rounds {
		assert.InDelta(t, 0.25, rr.Error, 1e-12)
		assert.InDelta(t, 0.75, rr.ClassificationRate, 1e-12)
		assert.Equal(t, 1.0, rr.Alpha)
	}
	assert.Equal(t, 4, result.Confusion.TotalCount(), "evaluator is reset every round")
	assert.Equal(t, 1, result.Confusion.Count(1, 0))

	uniform, err := dataset.NewUniformWeights(4, 3)
	require.NoError(t, err)
	assert.True(t, mat.Equal(uniform, result.Weights), "static weights never change")
}

func TestRunLearnerFailure(t *testing.T) {
	ds := testData(t)

	t.Run("error", func(t *testing.T) {
		calls := 0
		learner := LearnerFunc(func(*dataset.Dataset, metrics.SampleRecorder) error {
			calls++
			if calls == 2 {
				return errors.New("out of memory")
			}
			return nil
		})
		engine, err := NewEngine(learner, testEvaluator(t, 2), ds, 5,
			quietLogger(), WithErrorScorer(ErrorScorerFunc(func(*metrics.SampleLog, *dataset.WeightMatrix) (float64, error) {
				return 0.1, nil
			})))
		require.NoError(t, err)

		_, err = engine.Run()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "round 2")
		assert.Contains(t, err.Error(), "out of memory")
		assert.Equal(t, 2, calls, "no further rounds after a failure")

		state, _ := engine.State()
		assert.Equal(t, model.Idle, state)
	})

	t.Run("panic", func(t *testing.T) {
		learner := LearnerFunc(func(*dataset.Dataset, metrics.SampleRecorder) error {
			panic("learner crashed")
		})
		engine, err := NewEngine(learner, testEvaluator(t, 2), ds, 2, quietLogger())
		require.NoError(t, err)

		_, err = engine.Run()
		var panicErr *errors.PanicError
		require.True(t, errors.As(err, &panicErr))
		assert.Equal(t, "learner crashed", panicErr.PanicValue)
	})

	t.Run("no predictions recorded", func(t *testing.T) {
		learner := LearnerFunc(func(*dataset.Dataset, metrics.SampleRecorder) error { return nil })
		engine, err := NewEngine(learner, testEvaluator(t, 2), ds, 1, quietLogger())
		require.NoError(t, err)

		_, err = engine.Run()
		var valueErr *errors.ValueError
		assert.True(t, errors.As(err, &valueErr))
	})
}

func TestRunLifecycle(t *testing.T) {
	ds := testData(t)
	var engine *Engine
	var nested error
	learner := LearnerFunc(func(_ *dataset.Dataset, rec metrics.SampleRecorder) error {
		state, _ := engine.State()
		if state == model.Running && nested == nil {
			_, nested = engine.Run()
		}
		for i := 0; i < 4; i++ {
			if err := rec.RecordSample(i, 0, 0); err != nil {
				return err
			}
		}
		return nil
	})

	var err error
	engine, err = NewEngine(learner, testEvaluator(t, 2), ds, 2, quietLogger())
	require.NoError(t, err)

	state, _ := engine.State()
	assert.Equal(t, model.Idle, state)

	first, err := engine.Run()
	require.NoError(t, err)
	var valueErr *errors.ValueError
	assert.True(t, errors.As(nested, &valueErr), "Run on a running engine must fail")

	second, err := engine.Run()
	require.NoError(t, err, "Run after Done starts over")
	assert.True(t, mat.Equal(first.Final, second.Final))
}

func TestAdaBoostM1Weights(t *testing.T) {
	provider, _ := log.NewTestLoggerProvider(log.LevelDebug)
	log.SetProvider(provider)
	t.Cleanup(func() { log.SetProvider(log.NewZerologProvider(os.Stderr, log.LevelInfo)) })

	learner := &scriptedLearner{labels: []int{0, 1, 0, 1}, predicted: []int{0, 1, 0, 0}}
	engine, err := NewEngine(learner, testEvaluator(t, 2), testData(t), 2,
		quietLogger(), WithWeightUpdater(AdaBoostM1Weights{}))
	require.NoError(t, err)

	result, err := engine.Run()
	require.NoError(t, err)

	first := result.Rounds[0]
	assert.InDelta(t, 0.25, first.Error, 1e-12)
	assert.InDelta(t, math.Log(3), first.Alpha, 1e-12)

	// Row 3 was scaled by 3 and d renormalized.
	want := []float64{1.0 / 6, 1.0 / 6, 1.0 / 6, 1.0 / 2}
	assert.InDeltaSlice(t, want, result.Weights.SampleWeights(), 1e-12)

	// With the same mistake the weighted error reaches chance level.
	second := result.Rounds[1]
	assert.InDelta(t, 0.5, second.Error, 1e-12)
	assert.Equal(t, 0.0, second.Alpha)
	assert.True(t, provider.Logger().ContainsMessage("not better than chance"))

	// Round 2 used the updated weights.
	assert.InDelta(t, testData(t).At(3, 0)*(1.0/4)*(1.0/2), learner.seen[1].At(3, 0), 1e-12)
}

func TestAdaBoostM1WeightsEdgeCases(t *testing.T) {
	d, err := dataset.NewUniformWeights(2, 1)
	require.NoError(t, err)
	outcomes := metrics.NewSampleLog(2)
	require.NoError(t, outcomes.RecordSample(0, 0, 0))
	require.NoError(t, outcomes.RecordSample(1, 1, 1))

	alpha, err := AdaBoostM1Weights{}.Update(d, outcomes, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, 0.0, alpha)
	assert.Equal(t, 0.5, d.At(0, 0))

	_, err = AdaBoostM1Weights{}.Update(d, outcomes, 0.1, 1)
	var valErr *errors.ValidationError
	assert.True(t, errors.As(err, &valErr))

	t.Run("multi-class alpha", func(t *testing.T) {
		alpha, err := AdaBoostM1Weights{}.Update(d, outcomes, 0.5, 3)
		require.NoError(t, err)
		assert.InDelta(t, math.Log(2), alpha, 1e-12)
	})
}

func TestAdaBoostM1WeightsBoundaryTolerance(t *testing.T) {
	d, err := dataset.NewUniformWeights(2, 1)
	require.NoError(t, err)
	outcomes := metrics.NewSampleLog(2)
	require.NoError(t, outcomes.RecordSample(0, 0, 0))
	require.NoError(t, outcomes.RecordSample(1, 1, 0))

	tests := []struct {
		name       string
		roundError float64
	}{
		{"rounded chance level", 0.49999999999999994},
		{"rounded zero error", 1e-17},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alpha, err := AdaBoostM1Weights{}.Update(d, outcomes, tt.roundError, 2)
			require.NoError(t, err)
			assert.Equal(t, 0.0, alpha)
			assert.Equal(t, []float64{0.5, 0.5}, d.SampleWeights())
		})
	}
}

func TestRunRejectsNaNRoundError(t *testing.T) {
	learner := &scriptedLearner{labels: []int{0, 1, 0, 1}, predicted: []int{0, 1, 0, 1}}
	scorer := ErrorScorerFunc(func(*metrics.SampleLog, *dataset.WeightMatrix) (float64, error) {
		return math.NaN(), nil
	})
	engine, err := NewEngine(learner, testEvaluator(t, 2), testData(t), 2,
		quietLogger(), WithErrorScorer(scorer))
	require.NoError(t, err)

	_, err = engine.Run()
	var numErr *errors.NumericalInstabilityError
	require.True(t, errors.As(err, &numErr))
	assert.Equal(t, 1, numErr.Iteration)
	assert.Len(t, learner.seen, 1)
}

func TestWeightedErrorScorer(t *testing.T) {
	d, err := dataset.NewUniformWeights(4, 2)
	require.NoError(t, err)
	d.ScaleRow(0, 3)

	outcomes := metrics.NewSampleLog(4)
	require.NoError(t, outcomes.RecordSample(0, 1, 0))
	require.NoError(t, outcomes.RecordSample(1, 1, 1))
	require.NoError(t, outcomes.RecordSample(2, 0, 0))

	score, err := WeightedErrorScorer{}.Score(outcomes, d)
	require.NoError(t, err)
	assert.InDelta(t, 0.75/1.25, score, 1e-12, "unrecorded row 3 is ignored")

	_, err = WeightedErrorScorer{}.Score(metrics.NewSampleLog(3), d)
	var dimErr *errors.DimensionError
	assert.True(t, errors.As(err, &dimErr))
}

type echoClassifier struct {
	fitCalls int
}

func (c *echoClassifier) Fit(X, y mat.Matrix) error {
	c.fitCalls++
	return nil
}

// Predict returns 1 for rows whose first feature is positive.
func (c *echoClassifier) Predict(X mat.Matrix) (mat.Matrix, error) {
	rows, _ := X.Dims()
	out := mat.NewDense(rows, 1, nil)
	for i := 0; i < rows; i++ {
		if X.At(i, 0) > 0 {
			out.Set(i, 0, 1)
		}
	}
	return out, nil
}

func TestClassifierLearner(t *testing.T) {
	ds, err := dataset.NewDataset([]dataset.FeatureRow{{-1}, {2}, {3}, {-4}})
	require.NoError(t, err)
	clf := &echoClassifier{}
	learner := NewClassifierLearner(clf, []int{0, 1, 0, 0})

	engine, err := NewEngine(learner, testEvaluator(t, 2), ds, 3, quietLogger())
	require.NoError(t, err)
	result, err := engine.Run()
	require.NoError(t, err)

	assert.Equal(t, 3, clf.fitCalls)
	assert.InDelta(t, 0.75, result.Confusion.ClassificationRate(), 1e-12)
	assert.Equal(t, 1, result.Confusion.FalsePositives(1))

	err = NewClassifierLearner(clf, []int{0}).TrainAndPredict(ds, metrics.NewSampleLog(4))
	var dimErr *errors.DimensionError
	assert.True(t, errors.As(err, &dimErr))
}

func TestRunLogsRounds(t *testing.T) {
	testLogger, _ := log.NewTestLogger(log.LevelDebug)
	learner := &scriptedLearner{labels: []int{0, 1, 0, 1}, predicted: []int{0, 1, 0, 1}}
	engine, err := NewEngine(learner, testEvaluator(t, 2), testData(t), 4, WithLogger(testLogger))
	require.NoError(t, err)

	_, err = engine.Run()
	require.NoError(t, err)
	assert.Equal(t, 4, testLogger.CountMessages("Boosting round finished"))
	assert.True(t, testLogger.ContainsField(log.RoundKey, float64(4)))
	assert.True(t, testLogger.ContainsField(log.ModelNameKey, "BoostingEngine"))
	assert.Equal(t, 1, testLogger.CountMessages("Boosting finished"))
}

func TestPlotErrors(t *testing.T) {
	learner := &scriptedLearner{labels: []int{0, 1, 0, 1}, predicted: []int{0, 1, 1, 1}}
	engine, err := NewEngine(learner, testEvaluator(t, 2), testData(t), 3, quietLogger())
	require.NoError(t, err)
	result, err := engine.Run()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "rounds.png")
	require.NoError(t, result.PlotErrors(path))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	err = (&RunResult{}).PlotErrors(path)
	var valueErr *errors.ValueError
	assert.True(t, errors.As(err, &valueErr))
}
