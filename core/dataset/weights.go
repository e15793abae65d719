package dataset

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/boostcv/pkg/errors"
)

// WeightMatrix is the per-row, per-feature boosting weight matrix d.
// Entries stay in (0, 1].
type WeightMatrix struct {
	d *mat.Dense
}

var _ mat.Matrix = (*WeightMatrix)(nil)

// NewUniformWeights returns a rows × features matrix filled with 1/rows.
func NewUniformWeights(rows, features int) (*WeightMatrix, error) {
	if rows <= 0 {
		return nil, errors.NewEmptyDatasetError("NewUniformWeights")
	}
	if features <= 0 {
		return nil, errors.NewDimensionError("NewUniformWeights", 1, features, 1)
	}
	data := make([]float64, rows*features)
	floats.AddConst(1/float64(rows), data)
	return &WeightMatrix{d: mat.NewDense(rows, features, data)}, nil
}

// Dims implements mat.Matrix.
func (w *WeightMatrix) Dims() (rows, features int) {
	return w.d.Dims()
}

// At implements mat.Matrix.
func (w *WeightMatrix) At(i, j int) float64 {
	return w.d.At(i, j)
}

// T implements mat.Matrix.
func (w *WeightMatrix) T() mat.Matrix {
	return mat.Transpose{Matrix: w}
}

// SampleWeight is the mean weight of row i, used as the weight of sample i
// when the scorer needs one value per row.
func (w *WeightMatrix) SampleWeight(i int) float64 {
	row := w.d.RawRowView(i)
	return floats.Sum(row) / float64(len(row))
}

// SampleWeights returns SampleWeight for every row.
func (w *WeightMatrix) SampleWeights() []float64 {
	r, _ := w.d.Dims()
	out := make([]float64, r)
	for i := range out {
		out[i] = w.SampleWeight(i)
	}
	return out
}

// ScaleRow multiplies every weight of row i by factor.
func (w *WeightMatrix) ScaleRow(i int, factor float64) {
	floats.Scale(factor, w.d.RawRowView(i))
}

// Normalize rescales all entries so that the sample weights sum to one,
// which is the state NewUniformWeights starts from.
func (w *WeightMatrix) Normalize() error {
	total := floats.Sum(w.SampleWeights())
	if total <= 0 {
		return errors.NewValueError("WeightMatrix.Normalize", "sample weights sum to zero")
	}
	w.d.Scale(1/total, w.d)
	return nil
}

// Clone returns an independent copy.
func (w *WeightMatrix) Clone() *WeightMatrix {
	return &WeightMatrix{d: mat.DenseCopyOf(w.d)}
}

// Dense returns a mutable copy of the weights.
func (w *WeightMatrix) Dense() *mat.Dense {
	return mat.DenseCopyOf(w.d)
}
