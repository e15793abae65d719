// Package linear_model provides a logistic regression classifier usable as
// the external learner of cross-validation and boosting runs.
package linear_model

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/boostcv/core/model"
	"github.com/YuminosukeSato/boostcv/pkg/errors"
	"github.com/YuminosukeSato/boostcv/preprocessing"
)

// LogisticRegression is a one-vs-rest logistic regression classifier
// trained by batch gradient descent on standardized features.
type LogisticRegression struct {
	model.BaseEstimator

	// Hyperparameters
	C            float64 // Inverse L2 regularization strength over the summed loss; 0 disables it
	learningRate float64
	maxIter      int
	tol          float64

	// Model parameters
	coef      [][]float64 // one row per fitted class (a single row for binary)
	intercept []float64
	classes   []int
	scaler    *preprocessing.StandardScaler
	nIter     []int
}

var _ model.Classifier = (*LogisticRegression)(nil)

// LogisticRegressionOption is a functional option for LogisticRegression
type LogisticRegressionOption func(*LogisticRegression)

// NewLogisticRegression creates a new LogisticRegression classifier
func NewLogisticRegression(opts ...LogisticRegressionOption) *LogisticRegression {
	lr := &LogisticRegression{
		C:            1.0,
		learningRate: 1.0,
		maxIter:      100,
		tol:          1e-4,
	}
	for _, opt := range opts {
		opt(lr)
	}
	return lr
}

// WithLRC sets the inverse regularization strength
func WithLRC(c float64) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.C = c
	}
}

// WithLRLearningRate sets the base step size
func WithLRLearningRate(rate float64) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.learningRate = rate
	}
}

// WithLRMaxIter sets the maximum number of iterations per class
func WithLRMaxIter(maxIter int) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.maxIter = maxIter
	}
}

// WithLRTol sets the gradient tolerance for stopping
func WithLRTol(tol float64) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.tol = tol
	}
}

// Factory returns a model.ClassifierFactory building classifiers with opts.
func Factory(opts ...LogisticRegressionOption) model.ClassifierFactory {
	return func() model.Classifier {
		return NewLogisticRegression(opts...)
	}
}

// Fit trains the model. y is an n×1 column of integer class labels.
func (lr *LogisticRegression) Fit(X, y mat.Matrix) error {
	nSamples, _ := X.Dims()
	yRows, yCols := y.Dims()
	if nSamples != yRows {
		return errors.NewDimensionError("LogisticRegression.Fit", nSamples, yRows, 0)
	}
	if yCols != 1 {
		return errors.NewDimensionError("LogisticRegression.Fit", 1, yCols, 1)
	}

	lr.Reset()
	lr.scaler = preprocessing.NewStandardScaler()
	Xs, err := lr.scaler.FitTransform(X)
	if err != nil {
		return err
	}
	labels := make([]int, nSamples)
	for i := range labels {
		labels[i] = int(y.At(i, 0))
	}
	lr.classes = uniqueSorted(labels)

	targets := lr.classes
	switch len(lr.classes) {
	case 1:
		targets = nil
	case 2:
		targets = lr.classes[1:]
	}
	lr.coef = make([][]float64, len(targets))
	lr.intercept = make([]float64, len(targets))
	lr.nIter = make([]int, len(targets))
	for k, class := range targets {
		lr.fitBinary(Xs, labels, class, k)
	}
	lr.SetFitted()
	return nil
}

// fitBinary fits class against the rest into coef[k] and intercept[k].
func (lr *LogisticRegression) fitBinary(X *mat.Dense, labels []int, class, k int) {
	nSamples, nFeatures := X.Dims()
	target := make([]float64, nSamples)
	for i, l := range labels {
		if l == class {
			target[i] = 1
		}
	}

	weights := make([]float64, nFeatures)
	gradWeights := make([]float64, nFeatures)
	intercept := 0.0
	for iter := 0; iter < lr.maxIter; iter++ {
		for j := range gradWeights {
			gradWeights[j] = 0
		}
		gradIntercept := 0.0
		for i := 0; i < nSamples; i++ {
			row := X.RawRowView(i)
			diff := sigmoid(intercept+floats.Dot(row, weights)) - target[i]
			gradIntercept += diff
			floats.AddScaled(gradWeights, diff, row)
		}
		floats.Scale(1/float64(nSamples), gradWeights)
		gradIntercept /= float64(nSamples)
		if lr.C > 0 {
			floats.AddScaled(gradWeights, 1/(lr.C*float64(nSamples)), weights)
		}

		// Adaptive learning rate
		step := lr.learningRate / (1.0 + 0.1*float64(iter))
		floats.AddScaled(weights, -step, gradWeights)
		intercept -= step * gradIntercept

		lr.nIter[k] = iter + 1
		if math.Max(math.Abs(gradIntercept), floats.Norm(gradWeights, math.Inf(1))) < lr.tol {
			break
		}
	}
	lr.coef[k] = weights
	lr.intercept[k] = intercept
}

// Predict returns an n×1 column of predicted class labels.
func (lr *LogisticRegression) Predict(X mat.Matrix) (mat.Matrix, error) {
	if err := lr.CheckFitted("LogisticRegression.Predict"); err != nil {
		return nil, err
	}
	Xs, err := lr.scaler.Transform(X)
	if err != nil {
		return nil, err
	}
	nSamples, _ := Xs.Dims()
	out := mat.NewDense(nSamples, 1, nil)
	for i := 0; i < nSamples; i++ {
		out.Set(i, 0, float64(lr.predictRow(Xs.RawRowView(i))))
	}
	return out, nil
}

func (lr *LogisticRegression) predictRow(row []float64) int {
	switch len(lr.classes) {
	case 1:
		return lr.classes[0]
	case 2:
		if sigmoid(lr.intercept[0]+floats.Dot(row, lr.coef[0])) >= 0.5 {
			return lr.classes[1]
		}
		return lr.classes[0]
	}
	best, bestScore := 0, math.Inf(-1)
	for k := range lr.coef {
		if s := lr.intercept[k] + floats.Dot(row, lr.coef[k]); s > bestScore {
			best, bestScore = k, s
		}
	}
	return lr.classes[best]
}

// Classes returns the sorted class labels seen during Fit.
func (lr *LogisticRegression) Classes() []int {
	return append([]int(nil), lr.classes...)
}

// NIter returns the iterations run for each fitted class.
func (lr *LogisticRegression) NIter() []int {
	return append([]int(nil), lr.nIter...)
}

func uniqueSorted(labels []int) []int {
	seen := make(map[int]struct{})
	var out []int
	for _, l := range labels {
		if _, ok := seen[l]; !ok {
			seen[l] = struct{}{}
			out = append(out, l)
		}
	}
	sort.Ints(out)
	return out
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}
