package ensemble

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/boostcv/core/dataset"
	"github.com/YuminosukeSato/boostcv/core/model"
	"github.com/YuminosukeSato/boostcv/metrics"
	"github.com/YuminosukeSato/boostcv/pkg/errors"
)

// Learner is the external model driven by the boosting loop. It trains on
// the weighted rows, predicts every row and reports each prediction to rec.
// The call is synchronous and may take arbitrarily long.
type Learner interface {
	TrainAndPredict(weighted *dataset.Dataset, rec metrics.SampleRecorder) error
}

// LearnerFunc adapts a function to Learner.
type LearnerFunc func(weighted *dataset.Dataset, rec metrics.SampleRecorder) error

// TrainAndPredict implements Learner.
func (f LearnerFunc) TrainAndPredict(weighted *dataset.Dataset, rec metrics.SampleRecorder) error {
	return f(weighted, rec)
}

// ClassifierLearner drives a model.Classifier with fixed labels: it fits
// on the weighted rows, predicts the same rows and records every outcome.
type ClassifierLearner struct {
	Classifier model.Classifier
	Labels     []int
}

// NewClassifierLearner wraps clf. labels[i] is the true class of row i.
func NewClassifierLearner(clf model.Classifier, labels []int) *ClassifierLearner {
	return &ClassifierLearner{Classifier: clf, Labels: labels}
}

// TrainAndPredict implements Learner.
func (l *ClassifierLearner) TrainAndPredict(weighted *dataset.Dataset, rec metrics.SampleRecorder) error {
	n := weighted.NumRows()
	if len(l.Labels) != n {
		return errors.NewDimensionError("ClassifierLearner.TrainAndPredict", n, len(l.Labels), 0)
	}
	y := mat.NewDense(n, 1, nil)
	for i, label := range l.Labels {
		y.Set(i, 0, float64(label))
	}

	if err := l.Classifier.Fit(weighted, y); err != nil {
		return errors.Wrap(err, "fit")
	}
	pred, err := l.Classifier.Predict(weighted)
	if err != nil {
		return errors.Wrap(err, "predict")
	}
	if r, _ := pred.Dims(); r != n {
		return errors.NewDimensionError("ClassifierLearner.Predict", n, r, 0)
	}
	for i := 0; i < n; i++ {
		if err := rec.RecordSample(i, l.Labels[i], int(math.Round(pred.At(i, 0)))); err != nil {
			return err
		}
	}
	return nil
}
