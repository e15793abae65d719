package ensemble

import (
	"math"

	"github.com/YuminosukeSato/boostcv/core/dataset"
	"github.com/YuminosukeSato/boostcv/metrics"
	"github.com/YuminosukeSato/boostcv/pkg/errors"
)

// ErrorScorer computes the training error of one boosting round from the
// outcomes the learner recorded and the current weight matrix.
type ErrorScorer interface {
	Score(outcomes *metrics.SampleLog, d *dataset.WeightMatrix) (float64, error)
}

// ErrorScorerFunc adapts a function to ErrorScorer.
type ErrorScorerFunc func(outcomes *metrics.SampleLog, d *dataset.WeightMatrix) (float64, error)

// Score implements ErrorScorer.
func (f ErrorScorerFunc) Score(outcomes *metrics.SampleLog, d *dataset.WeightMatrix) (float64, error) {
	return f(outcomes, d)
}

// WeightUpdater folds the round error back into d and returns the learner
// weight (alpha) of the round.
type WeightUpdater interface {
	Update(d *dataset.WeightMatrix, outcomes *metrics.SampleLog, roundError float64, numClasses int) (alpha float64, err error)
}

// WeightedErrorScorer is the weighted proportion of misclassified samples
// among the recorded ones. The weight of sample n is the mean of row n of d.
type WeightedErrorScorer struct{}

// Score implements ErrorScorer.
func (WeightedErrorScorer) Score(outcomes *metrics.SampleLog, d *dataset.WeightMatrix) (float64, error) {
	if rows, _ := d.Dims(); rows != outcomes.Len() {
		return 0, errors.NewDimensionError("WeightedErrorScorer.Score", rows, outcomes.Len(), 0)
	}
	if outcomes.Recorded() == 0 {
		return 0, errors.NewValueError("WeightedErrorScorer.Score", "learner recorded no predictions")
	}
	var wrong, total float64
	for i, o := range outcomes.Outcomes() {
		if o == 0 {
			continue
		}
		w := d.SampleWeight(i)
		total += w
		if o < 0 {
			wrong += w
		}
	}
	return wrong / total, nil
}

// StaticWeights leaves d unchanged and reports alpha 1. Every round then
// multiplies the data by the same matrix.
type StaticWeights struct{}

// Update implements WeightUpdater.
func (StaticWeights) Update(*dataset.WeightMatrix, *metrics.SampleLog, float64, int) (float64, error) {
	return 1, nil
}

// errorTol absorbs the rounding left in a weighted error by the
// renormalization of d, so that a round exactly at chance level or with no
// weighted mistakes is treated as such.
const errorTol = 1e-12

// AdaBoostM1Weights applies the multi-class AdaBoost (SAMME) rule:
// alpha = ln((1-err)/err) + ln(C-1), every misclassified row of d is scaled
// by exp(alpha) and d is renormalized.
//
// A round with zero error or with error at or above chance level (1-1/C)
// leaves d unchanged, reports alpha 0 and emits an UndefinedMetricWarning.
type AdaBoostM1Weights struct{}

// Update implements WeightUpdater.
func (AdaBoostM1Weights) Update(d *dataset.WeightMatrix, outcomes *metrics.SampleLog, roundError float64, numClasses int) (float64, error) {
	if numClasses < 2 {
		return 0, errors.NewValidationError("numClasses", "AdaBoost needs at least 2 classes", numClasses)
	}
	chance := 1 - 1/float64(numClasses)
	if roundError <= errorTol {
		errors.Warn(errors.NewUndefinedMetricWarning("alpha", "round error is zero", 0))
		return 0, nil
	}
	if roundError >= chance-errorTol {
		errors.Warn(errors.NewUndefinedMetricWarning("alpha", "round error is not better than chance", 0))
		return 0, nil
	}

	alpha := math.Log((1-roundError)/roundError) + math.Log(float64(numClasses-1))
	factor := errors.StabilizeExp(alpha)
	for i, o := range outcomes.Outcomes() {
		if o < 0 {
			d.ScaleRow(i, factor)
		}
	}
	if err := d.Normalize(); err != nil {
		return 0, err
	}
	if err := errors.CheckMatrix("AdaBoostM1Weights.Update", d, -1); err != nil {
		return 0, err
	}
	return alpha, nil
}
