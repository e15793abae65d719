package metrics

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/boostcv/pkg/errors"
)

func newMatrix(t *testing.T, numClasses int) *ConfusionMatrix {
	t.Helper()
	m, err := NewConfusionMatrix(numClasses)
	require.NoError(t, err)
	return m
}

type outcome struct {
	trueClass, predicted, count int
}

func record(t *testing.T, m *ConfusionMatrix, outcomes ...outcome) {
	t.Helper()
	for _, o := range outcomes {
		require.NoError(t, m.RecordOutcome(o.trueClass, o.predicted, WithCount(o.count)))
	}
}

func TestNewConfusionMatrix(t *testing.T) {
	_, err := NewConfusionMatrix(0)
	var valErr *errors.ValidationError
	require.True(t, errors.As(err, &valErr))
	assert.Equal(t, "numClasses", valErr.ParamName)

	m := newMatrix(t, 3)
	assert.Equal(t, 3, m.NumClasses())
	assert.Equal(t, 0, m.TotalCount())
	assert.Equal(t, 0.0, m.ClassificationRate())
}

func TestConfusionMatrixBinaryRoundTrip(t *testing.T) {
	m := newMatrix(t, 2)
	record(t, m,
		outcome{trueClass: 0, predicted: 0, count: 5},
		outcome{trueClass: 0, predicted: 1, count: 2},
		outcome{trueClass: 1, predicted: 1, count: 3},
	)

	assert.Equal(t, 10, m.TotalCount())
	assert.InDelta(t, 0.8, m.ClassificationRate(), 1e-12)

	// Cells are indexed [predicted][true].
	assert.Equal(t, 5, m.Count(0, 0))
	assert.Equal(t, 2, m.Count(1, 0))
	assert.Equal(t, 0, m.Count(0, 1))
	assert.Equal(t, 3, m.Count(1, 1))

	tests := []struct {
		class          int
		tp, fp, fn, tn int
	}{
		{class: 0, tp: 5, fp: 0, fn: 2, tn: 3},
		{class: 1, tp: 3, fp: 2, fn: 0, tn: 5},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.tp, m.TruePositives(tt.class), "TP(%d)", tt.class)
		assert.Equal(t, tt.fp, m.FalsePositives(tt.class), "FP(%d)", tt.class)
		assert.Equal(t, tt.fn, m.FalseNegatives(tt.class), "FN(%d)", tt.class)
		assert.Equal(t, tt.tn, m.TrueNegatives(tt.class), "TN(%d)", tt.class)
		assert.Equal(t, m.TotalCount(), tt.tp+tt.fp+tt.fn+tt.tn)
	}

	assert.InDelta(t, 5.0/7, m.Sensitivity(0), 1e-12)
	assert.InDelta(t, 1.0, m.Precision(0), 1e-12)
	assert.InDelta(t, 1.0, m.Specificity(0), 1e-12)
	assert.InDelta(t, 1.0, m.Sensitivity(1), 1e-12)
	assert.InDelta(t, 3.0/5, m.Precision(1), 1e-12)
	assert.InDelta(t, 5.0/7, m.Specificity(1), 1e-12)
	assert.Equal(t, 7, m.Support(0))
	assert.Equal(t, 3, m.Support(1))

	f0, err := m.FValue(0)
	require.NoError(t, err)
	assert.InDelta(t, 2/(7.0/5+1), f0, 1e-12)
}

func TestConfusionMatrixZeroDenominator(t *testing.T) {
	m := newMatrix(t, 3)
	record(t, m,
		outcome{trueClass: 0, predicted: 0, count: 2},
		outcome{trueClass: 1, predicted: 1, count: 1},
		outcome{trueClass: 0, predicted: 1, count: 1},
	)

	// Class 2 has an all-zero row and column.
	for _, v := range []float64{m.Sensitivity(2), m.Precision(2)} {
		assert.Equal(t, 0.0, v)
		assert.False(t, math.IsNaN(v))
	}
	assert.Equal(t, 1.0, m.Specificity(2))
	assert.Equal(t, 0, m.Support(2))

	t.Run("empty matrix", func(t *testing.T) {
		empty := newMatrix(t, 2)
		for c := 0; c < 2; c++ {
			assert.Equal(t, 0.0, empty.Sensitivity(c))
			assert.Equal(t, 0.0, empty.Specificity(c))
			assert.Equal(t, 0.0, empty.Precision(c))
		}
		assert.Equal(t, 0.0, empty.MicroPrecision())
		assert.Equal(t, 0.0, empty.MacroSensitivity())
	})
}

func TestFValueUndefined(t *testing.T) {
	m := newMatrix(t, 3)
	record(t, m,
		outcome{trueClass: 0, predicted: 0, count: 2},
		outcome{trueClass: 1, predicted: 1, count: 1},
	)

	_, err := m.FValue(2)
	var undefined *errors.UndefinedMetricError
	require.True(t, errors.As(err, &undefined))
	assert.Equal(t, 2, undefined.Class)
	assert.Equal(t, "f_value", undefined.Metric)

	_, err = m.MacroFValue()
	require.True(t, errors.As(err, &undefined))
	assert.Equal(t, 2, undefined.Class)

	micro, err := m.MicroFValue()
	require.NoError(t, err)
	assert.InDelta(t, 1.0, micro, 1e-12)

	_, err = newMatrix(t, 2).MicroFValue()
	require.True(t, errors.As(err, &undefined))
	assert.Equal(t, -1, undefined.Class)
}

func TestMicroVersusMacro(t *testing.T) {
	m := newMatrix(t, 3)
	record(t, m,
		outcome{trueClass: 0, predicted: 0, count: 8},
		outcome{trueClass: 0, predicted: 1, count: 2},
		outcome{trueClass: 1, predicted: 1, count: 1},
		outcome{trueClass: 1, predicted: 2, count: 2},
		outcome{trueClass: 2, predicted: 2, count: 1},
	)
	require.Equal(t, []int{10, 3, 1}, []int{m.Support(0), m.Support(1), m.Support(2)})

	var tp, fp int
	precisions := make([]float64, 3)
	for c := 0; c < 3; c++ {
		tp += m.TruePositives(c)
		fp += m.FalsePositives(c)
		precisions[c] = m.Precision(c)
	}
	assert.InDeltaSlice(t, []float64{1, 1.0 / 3, 1.0 / 3}, precisions, 1e-12)

	micro := m.MicroPrecision()
	macro := m.MacroPrecision()
	assert.InDelta(t, float64(tp)/float64(tp+fp), micro, 1e-12)
	assert.InDelta(t, 10.0/14, micro, 1e-12)
	assert.InDelta(t, (precisions[0]+precisions[1]+precisions[2])/3, macro, 1e-12)
	assert.InDelta(t, 5.0/9, macro, 1e-12)
	assert.Greater(t, math.Abs(micro-macro), 0.1)

	assert.InDelta(t, 10.0/14, m.MicroSensitivity(), 1e-12)
	assert.InDelta(t, (0.8+1.0/3+1)/3, m.MacroSensitivity(), 1e-12)

	macroF, err := m.MacroFValue()
	require.NoError(t, err)
	f1 := 2 / (3.0 + 3.0)
	f0 := 2 / (1/0.8 + 1.0)
	f2 := 2 / (1.0 + 3.0)
	assert.InDelta(t, (f0+f1+f2)/3, macroF, 1e-12)
}

func TestRecordOutcomeValidation(t *testing.T) {
	m := newMatrix(t, 2)

	tests := []struct {
		name      string
		trueClass int
		predicted int
		opts      []OutcomeOption
		param     string
	}{
		{name: "true class too large", trueClass: 2, predicted: 0, param: "trueClass"},
		{name: "negative predicted class", trueClass: 0, predicted: -1, param: "predictedClass"},
		{name: "negative count", trueClass: 0, predicted: 0, opts: []OutcomeOption{WithCount(-1)}, param: "count"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := m.RecordOutcome(tt.trueClass, tt.predicted, tt.opts...)
			var valErr *errors.ValidationError
			require.True(t, errors.As(err, &valErr))
			assert.Equal(t, tt.param, valErr.ParamName)
			assert.Equal(t, 0, m.TotalCount(), "matrix must be untouched")
		})
	}

	require.NoError(t, m.RecordOutcome(1, 1, WithCount(0)))
	assert.Equal(t, 0, m.TotalCount())
}

func TestRecordOutcomeWithSample(t *testing.T) {
	m := newMatrix(t, 2)
	log := NewSampleLog(3)

	require.NoError(t, m.RecordOutcome(1, 0, WithSample(2, log)))
	assert.Equal(t, 1, log.Original[2])
	assert.Equal(t, 0, log.Predicted[2])
	assert.Equal(t, 1, m.Count(0, 1))

	// Negative indices skip the recorder.
	require.NoError(t, m.RecordOutcome(0, 0, WithSample(-1, log)))
	assert.Equal(t, 1, log.Recorded())
	assert.Equal(t, 2, m.TotalCount())

	err := m.RecordOutcome(0, 0, WithSample(3, log))
	var valErr *errors.ValidationError
	require.True(t, errors.As(err, &valErr))
	assert.Equal(t, 2, m.TotalCount(), "a rejected sample must not be counted")
}

func TestConfusionMatrixResetAddClone(t *testing.T) {
	m := newMatrix(t, 2)
	record(t, m, outcome{trueClass: 0, predicted: 1, count: 4})

	clone := m.Clone()
	other := newMatrix(t, 2)
	record(t, other, outcome{trueClass: 1, predicted: 1, count: 6})
	require.NoError(t, m.Add(other))

	assert.Equal(t, 10, m.TotalCount())
	assert.Equal(t, 6, m.TruePositives(1))
	assert.Equal(t, 4, clone.TotalCount(), "clone must be independent")

	err := m.Add(newMatrix(t, 3))
	var dimErr *errors.DimensionError
	require.True(t, errors.As(err, &dimErr))

	m.Reset()
	assert.Equal(t, 0, m.TotalCount())
	assert.Equal(t, 0, m.Count(1, 0))
}

func TestConfusionMatrixMatrix(t *testing.T) {
	m := newMatrix(t, 2)
	record(t, m,
		outcome{trueClass: 0, predicted: 1, count: 2},
		outcome{trueClass: 1, predicted: 1, count: 3},
	)

	dense := m.Matrix()
	r, c := dense.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 2, c)
	assert.Equal(t, 2.0, dense.At(1, 0))
	assert.Equal(t, 3.0, dense.At(1, 1))

	dense.Set(0, 0, 99)
	assert.Equal(t, 0, m.Count(0, 0))
}

func TestReport(t *testing.T) {
	m := newMatrix(t, 3)
	record(t, m,
		outcome{trueClass: 0, predicted: 0, count: 4},
		outcome{trueClass: 1, predicted: 0, count: 1},
		outcome{trueClass: 1, predicted: 1, count: 5},
	)

	r := m.Report()
	assert.Equal(t, 10, r.Total)
	assert.InDelta(t, 0.9, r.ClassificationRate, 1e-12)
	require.Len(t, r.Classes, 3)
	assert.True(t, r.Classes[0].FDefined)
	assert.InDelta(t, 0.8, r.Classes[0].Precision, 1e-12)
	assert.False(t, r.Classes[2].FDefined)
	assert.Equal(t, 0.0, r.Classes[2].FValue)
	assert.True(t, r.MicroFDefined)
	assert.False(t, r.MacroFDefined)

	out := r.String()
	assert.Contains(t, out, "undefined")
	assert.Contains(t, out, "classification rate: 0.9000")
	assert.Equal(t, 4, strings.Count(m.String(), "\n"), "header plus one line per class")
}

func TestMatrixRecorder(t *testing.T) {
	m := newMatrix(t, 2)
	log := NewSampleLog(2)
	rec := m.Recorder(log)

	require.NoError(t, rec.RecordSample(0, 1, 1))
	require.NoError(t, rec.RecordSample(1, 1, 0))
	assert.Equal(t, 2, m.TotalCount())
	assert.Equal(t, []int{1, -1}, log.Outcomes())
}

func TestAccessorsRejectUnknownClass(t *testing.T) {
	m := newMatrix(t, 2)
	require.NoError(t, m.Record(0, 1))

	accessors := map[string]func(){
		"Count predicted": func() { m.Count(2, 0) },
		"Count true":      func() { m.Count(0, -1) },
		"TruePositives":   func() { m.TruePositives(2) },
		"FalsePositives":  func() { m.FalsePositives(-1) },
		"FalseNegatives":  func() { m.FalseNegatives(5) },
		"Support":         func() { m.Support(2) },
		"Precision":       func() { m.Precision(2) },
		"FValue":          func() { _, _ = m.FValue(2) },
	}
	for name, call := range accessors {
		t.Run(name, func(t *testing.T) {
			defer func() {
				r := recover()
				require.NotNil(t, r)
				err, ok := r.(error)
				require.True(t, ok)
				var valErr *errors.ValidationError
				assert.True(t, errors.As(err, &valErr))
			}()
			call()
		})
	}

	assert.Equal(t, 1, m.Count(1, 0))
}
