package model_selection

import (
	"math"
	"sync"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/boostcv/core/dataset"
	"github.com/YuminosukeSato/boostcv/core/model"
	"github.com/YuminosukeSato/boostcv/metrics"
	"github.com/YuminosukeSato/boostcv/pkg/errors"
	"github.com/YuminosukeSato/boostcv/pkg/log"
)

// CVResult stores cross-validation results
type CVResult struct {
	// TestScores holds the classification rate of each fold.
	TestScores []float64
	FitTimes   []float64 // seconds
	Confusions []*metrics.ConfusionMatrix
	// Pooled is the sum of every fold's confusion matrix.
	Pooled    *metrics.ConfusionMatrix
	BestFold  int
	BestScore float64
}

// MeanScore returns mean test score
func (cv *CVResult) MeanScore() float64 {
	if len(cv.TestScores) == 0 {
		return 0.0
	}
	return stat.Mean(cv.TestScores, nil)
}

// StdScore returns the sample standard deviation of test scores
func (cv *CVResult) StdScore() float64 {
	if len(cv.TestScores) <= 1 {
		return 0.0
	}
	return stat.StdDev(cv.TestScores, nil)
}

type cvConfig struct {
	logger log.Logger
}

// CVOption configures CrossValidate.
type CVOption func(*cvConfig)

// WithCVLogger sets the logger used for per-fold progress.
func WithCVLogger(l log.Logger) CVOption {
	return func(c *cvConfig) {
		c.logger = l
	}
}

// CrossValidate trains a fresh classifier from factory on every fold's
// training rows, predicts its test rows and records the outcomes into a
// per-fold confusion matrix. Folds run concurrently.
//
// A single-fold assignment, such as one read from a fold file, is a holdout
// split: the fold is the test set and all remaining rows train the model.
func CrossValidate(factory model.ClassifierFactory, ds *dataset.Dataset, labels []int,
	assignment FoldAssignment, numClasses int, opts ...CVOption) (*CVResult, error) {

	cfg := cvConfig{logger: log.GetLoggerWithName("model_selection")}
	for _, opt := range opts {
		opt(&cfg)
	}

	if factory == nil {
		return nil, errors.NewValidationError("factory", "must not be nil", nil)
	}
	if ds == nil || ds.NumRows() == 0 {
		return nil, errors.NewEmptyDatasetError("CrossValidate")
	}
	if len(labels) != ds.NumRows() {
		return nil, errors.NewDimensionError("CrossValidate", ds.NumRows(), len(labels), 0)
	}
	if assignment.Len() == 0 {
		return nil, errors.NewInvalidPartitionError(ds.NumRows(), 0,
			"cross-validation needs at least 1 fold")
	}

	nFolds := assignment.Len()
	result := &CVResult{
		TestScores: make([]float64, nFolds),
		FitTimes:   make([]float64, nFolds),
		Confusions: make([]*metrics.ConfusionMatrix, nFolds),
	}

	var wg sync.WaitGroup
	foldErrs := make([]error, nFolds)
	for foldIdx := 0; foldIdx < nFolds; foldIdx++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			defer errors.Recover(&foldErrs[idx], "CrossValidate")

			cm, fitTime, err := runFold(factory, ds, labels, assignment, idx, numClasses)
			if err != nil {
				foldErrs[idx] = errors.Wrapf(err, "fold %d", idx)
				return
			}
			result.Confusions[idx] = cm
			result.TestScores[idx] = cm.ClassificationRate()
			result.FitTimes[idx] = fitTime.Seconds()

			cfg.logger.Debug("Fold evaluated",
				log.OperationKey, log.OperationCrossValidate,
				log.FoldKey, idx,
				log.AccuracyKey, result.TestScores[idx],
			)
		}(foldIdx)
	}
	wg.Wait()

	for _, err := range foldErrs {
		if err != nil {
			return nil, err
		}
	}

	pooled, err := metrics.NewConfusionMatrix(numClasses)
	if err != nil {
		return nil, err
	}
	for i, cm := range result.Confusions {
		if err := pooled.Add(cm); err != nil {
			return nil, err
		}
		if i == 0 || result.TestScores[i] > result.BestScore {
			result.BestScore = result.TestScores[i]
			result.BestFold = i
		}
	}
	result.Pooled = pooled

	cfg.logger.Info("Cross-validation finished",
		log.OperationKey, log.OperationCrossValidate,
		log.GroupsKey, nFolds,
		log.AccuracyKey, result.MeanScore(),
		"metrics.accuracy_std", result.StdScore(),
		"report", pooled.Report(),
	)
	return result, nil
}

func runFold(factory model.ClassifierFactory, ds *dataset.Dataset, labels []int,
	assignment FoldAssignment, idx, numClasses int) (*metrics.ConfusionMatrix, time.Duration, error) {

	split := assignment.TrainTest
	if assignment.Len() == 1 {
		split = func(int) ([]int, []int, error) { return assignment.Holdout(ds.NumRows()) }
	}
	train, test, err := split(idx)
	if err != nil {
		return nil, 0, err
	}
	trainX, err := ds.Subset(train)
	if err != nil {
		return nil, 0, errors.Wrap(err, "training rows")
	}
	testX, err := ds.Subset(test)
	if err != nil {
		return nil, 0, errors.Wrap(err, "test rows")
	}

	clf := factory()
	start := time.Now()
	if err := clf.Fit(trainX, labelColumn(labels, train)); err != nil {
		return nil, 0, errors.Wrap(err, "training failed")
	}
	fitTime := time.Since(start)

	pred, err := clf.Predict(testX)
	if err != nil {
		return nil, 0, errors.Wrap(err, "prediction failed")
	}
	if r, _ := pred.Dims(); r != len(test) {
		return nil, 0, errors.NewDimensionError("Predict", len(test), r, 0)
	}

	cm, err := metrics.NewConfusionMatrix(numClasses)
	if err != nil {
		return nil, 0, err
	}
	for i, row := range test {
		predicted := int(math.Round(pred.At(i, 0)))
		if err := cm.Record(labels[row], predicted); err != nil {
			return nil, 0, errors.Wrapf(err, "row %d", row)
		}
	}
	return cm, fitTime, nil
}

// labelColumn returns the labels of rows as an n×1 column.
func labelColumn(labels, rows []int) *mat.Dense {
	col := mat.NewDense(len(rows), 1, nil)
	for i, r := range rows {
		col.Set(i, 0, float64(labels[r]))
	}
	return col
}
