// Package metrics provides the confusion-matrix evaluator used by
// cross-validation and boosting: per-class marginal rates, micro and macro
// averages, and the overall classification rate.
package metrics

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/boostcv/pkg/errors"
)

// ConfusionMatrix accumulates classification outcomes into a C×C table of
// counts indexed [predicted][true]. Every derived metric is a pure function
// of the table.
//
// A ConfusionMatrix is not safe for concurrent use.
type ConfusionMatrix struct {
	numClasses int
	counts     []int // row-major, counts[predicted*numClasses+true]
	total      int
}

// NewConfusionMatrix creates an empty matrix for numClasses classes.
func NewConfusionMatrix(numClasses int) (*ConfusionMatrix, error) {
	if numClasses < 1 {
		return nil, errors.NewValidationError("numClasses", "must be at least 1", numClasses)
	}
	return &ConfusionMatrix{
		numClasses: numClasses,
		counts:     make([]int, numClasses*numClasses),
	}, nil
}

// NumClasses returns C.
func (m *ConfusionMatrix) NumClasses() int {
	return m.numClasses
}

// Reset zeroes every cell.
func (m *ConfusionMatrix) Reset() {
	for i := range m.counts {
		m.counts[i] = 0
	}
	m.total = 0
}

type outcomeConfig struct {
	count       int
	sampleIndex int
	recorder    SampleRecorder
}

// OutcomeOption configures RecordOutcome.
type OutcomeOption func(*outcomeConfig)

// WithCount records the outcome count times instead of once.
func WithCount(count int) OutcomeOption {
	return func(c *outcomeConfig) {
		c.count = count
	}
}

// WithSample also reports the outcome of sample index to rec. Negative
// indices and a nil recorder are ignored.
func WithSample(index int, rec SampleRecorder) OutcomeOption {
	return func(c *outcomeConfig) {
		c.sampleIndex = index
		c.recorder = rec
	}
}

// RecordOutcome increments cell [predictedClass][trueClass]. The matrix is
// left untouched when any argument is invalid.
func (m *ConfusionMatrix) RecordOutcome(trueClass, predictedClass int, opts ...OutcomeOption) error {
	cfg := outcomeConfig{count: 1, sampleIndex: -1}
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := m.checkClass("trueClass", trueClass); err != nil {
		return err
	}
	if err := m.checkClass("predictedClass", predictedClass); err != nil {
		return err
	}
	if cfg.count < 0 {
		return errors.NewValidationError("count", "must be non-negative", cfg.count)
	}
	if cfg.recorder != nil && cfg.sampleIndex >= 0 {
		if err := cfg.recorder.RecordSample(cfg.sampleIndex, trueClass, predictedClass); err != nil {
			return err
		}
	}

	m.counts[predictedClass*m.numClasses+trueClass] += cfg.count
	m.total += cfg.count
	return nil
}

// Record is RecordOutcome with a count of one.
func (m *ConfusionMatrix) Record(trueClass, predictedClass int) error {
	return m.RecordOutcome(trueClass, predictedClass)
}

func (m *ConfusionMatrix) checkClass(name string, c int) error {
	if c < 0 || c >= m.numClasses {
		return errors.NewValidationError(name, "class index out of range", c)
	}
	return nil
}

// mustClass panics with a *errors.ValidationError when c is not a class
// index of m, in the manner of gonum's index checks.
func (m *ConfusionMatrix) mustClass(name string, c int) {
	if err := m.checkClass(name, c); err != nil {
		panic(err)
	}
}

// Add merges the counts of other into m.
func (m *ConfusionMatrix) Add(other *ConfusionMatrix) error {
	if other.numClasses != m.numClasses {
		return errors.NewDimensionError("ConfusionMatrix.Add", m.numClasses, other.numClasses, 1)
	}
	for i, v := range other.counts {
		m.counts[i] += v
	}
	m.total += other.total
	return nil
}

// Clone returns an independent copy.
func (m *ConfusionMatrix) Clone() *ConfusionMatrix {
	counts := make([]int, len(m.counts))
	copy(counts, m.counts)
	return &ConfusionMatrix{numClasses: m.numClasses, counts: counts, total: m.total}
}

// Count returns cell [predicted][true]. It panics when either index is
// outside [0, C).
func (m *ConfusionMatrix) Count(predicted, trueClass int) int {
	m.mustClass("predicted", predicted)
	m.mustClass("true", trueClass)
	return m.counts[predicted*m.numClasses+trueClass]
}

// TotalCount returns the number of outcomes recorded since the last Reset.
func (m *ConfusionMatrix) TotalCount() int {
	return m.total
}

// Matrix returns the counts as a C×C gonum matrix, rows = predicted class.
func (m *ConfusionMatrix) Matrix() *mat.Dense {
	data := make([]float64, len(m.counts))
	for i, v := range m.counts {
		data[i] = float64(v)
	}
	return mat.NewDense(m.numClasses, m.numClasses, data)
}

func (m *ConfusionMatrix) rowSum(c int) int {
	m.mustClass("class", c)
	sum := 0
	for _, v := range m.counts[c*m.numClasses : (c+1)*m.numClasses] {
		sum += v
	}
	return sum
}

func (m *ConfusionMatrix) colSum(c int) int {
	m.mustClass("class", c)
	sum := 0
	for p := 0; p < m.numClasses; p++ {
		sum += m.counts[p*m.numClasses+c]
	}
	return sum
}

func (m *ConfusionMatrix) trace() int {
	sum := 0
	for c := 0; c < m.numClasses; c++ {
		sum += m.counts[c*m.numClasses+c]
	}
	return sum
}

// TruePositives returns the diagonal cell of class c. Like every per-class
// accessor below, it panics with a *errors.ValidationError when c is outside
// [0, C).
func (m *ConfusionMatrix) TruePositives(c int) int {
	m.mustClass("class", c)
	return m.counts[c*m.numClasses+c]
}

// FalsePositives returns the samples predicted as c whose true class differs.
func (m *ConfusionMatrix) FalsePositives(c int) int {
	return m.rowSum(c) - m.TruePositives(c)
}

// FalseNegatives returns the samples of true class c predicted as another class.
func (m *ConfusionMatrix) FalseNegatives(c int) int {
	return m.colSum(c) - m.TruePositives(c)
}

// TrueNegatives returns the samples neither predicted as nor belonging to c.
func (m *ConfusionMatrix) TrueNegatives(c int) int {
	return m.total - m.TruePositives(c) - m.FalsePositives(c) - m.FalseNegatives(c)
}

// Support returns the number of samples whose true class is c.
func (m *ConfusionMatrix) Support(c int) int {
	return m.colSum(c)
}

// ratio returns 0 on an empty denominator.
func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

// Sensitivity is TP/(TP+FN), or 0 when the class never occurs.
func (m *ConfusionMatrix) Sensitivity(c int) float64 {
	tp := m.TruePositives(c)
	return ratio(tp, tp+m.FalseNegatives(c))
}

// Specificity is TN/(TN+FP), or 0 when the denominator is zero.
func (m *ConfusionMatrix) Specificity(c int) float64 {
	tn := m.TrueNegatives(c)
	return ratio(tn, tn+m.FalsePositives(c))
}

// Precision is TP/(TP+FP), or 0 when the class is never predicted.
func (m *ConfusionMatrix) Precision(c int) float64 {
	tp := m.TruePositives(c)
	return ratio(tp, tp+m.FalsePositives(c))
}

// FValue is the harmonic mean of Sensitivity(c) and Precision(c).
//
// The harmonic mean divides by each component, so it is undefined when
// either one is exactly zero; that case returns an *errors.UndefinedMetricError
// and callers decide how to handle it.
func (m *ConfusionMatrix) FValue(c int) (float64, error) {
	return harmonicMean("f_value", c, m.Sensitivity(c), m.Precision(c))
}

func harmonicMean(metric string, class int, sensitivity, precision float64) (float64, error) {
	if sensitivity == 0 || precision == 0 {
		return 0, errors.NewUndefinedMetricError(metric, class, sensitivity, precision)
	}
	return 2 / (1/sensitivity + 1/precision), nil
}

// pooled returns TP, FP and FN summed over all classes.
func (m *ConfusionMatrix) pooled() (tp, fp, fn int) {
	for c := 0; c < m.numClasses; c++ {
		tp += m.TruePositives(c)
		fp += m.FalsePositives(c)
		fn += m.FalseNegatives(c)
	}
	return tp, fp, fn
}

// MicroPrecision is pooled TP / pooled (TP+FP).
func (m *ConfusionMatrix) MicroPrecision() float64 {
	tp, fp, _ := m.pooled()
	return ratio(tp, tp+fp)
}

// MicroSensitivity is pooled TP / pooled (TP+FN).
func (m *ConfusionMatrix) MicroSensitivity() float64 {
	tp, _, fn := m.pooled()
	return ratio(tp, tp+fn)
}

// MicroFValue is the harmonic mean of MicroSensitivity and MicroPrecision,
// undefined when either is zero.
func (m *ConfusionMatrix) MicroFValue() (float64, error) {
	return harmonicMean("micro_f_value", -1, m.MicroSensitivity(), m.MicroPrecision())
}

func (m *ConfusionMatrix) macro(metric func(int) float64) float64 {
	values := make([]float64, m.numClasses)
	for c := range values {
		values[c] = metric(c)
	}
	return stat.Mean(values, nil)
}

// MacroPrecision is the unweighted mean of Precision over all classes.
func (m *ConfusionMatrix) MacroPrecision() float64 {
	return m.macro(m.Precision)
}

// MacroSensitivity is the unweighted mean of Sensitivity over all classes.
func (m *ConfusionMatrix) MacroSensitivity() float64 {
	return m.macro(m.Sensitivity)
}

// MacroSpecificity is the unweighted mean of Specificity over all classes.
func (m *ConfusionMatrix) MacroSpecificity() float64 {
	return m.macro(m.Specificity)
}

// MacroFValue is the unweighted mean of FValue over all classes. The first
// class whose F-value is undefined aborts the computation with its error.
func (m *ConfusionMatrix) MacroFValue() (float64, error) {
	values := make([]float64, m.numClasses)
	for c := range values {
		f, err := m.FValue(c)
		if err != nil {
			return 0, err
		}
		values[c] = f
	}
	return stat.Mean(values, nil), nil
}

// ClassificationRate is trace / total, the overall accuracy. It is 0 for an
// empty matrix.
func (m *ConfusionMatrix) ClassificationRate() float64 {
	return ratio(m.trace(), m.total)
}
