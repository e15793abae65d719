// Package dataset holds the immutable tabular values that flow through
// partitioning, evaluation and boosting: feature rows and per-cell weights.
package dataset

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/boostcv/core/parallel"
	"github.com/YuminosukeSato/boostcv/pkg/errors"
)

// 並列処理の閾値（この値以下の行数では逐次処理を使用）
const parallelThreshold = 1000

// FeatureRow is one record of numeric feature values.
type FeatureRow []float64

// Dataset is an immutable rows × features matrix. It implements mat.Matrix,
// so it can be handed to gonum-based learners directly; there is no way to
// mutate it after construction.
type Dataset struct {
	data *mat.Dense
}

var _ mat.Matrix = (*Dataset)(nil)

// NewDataset copies rows into a new Dataset. Every row must have the width
// of the first row.
func NewDataset(rows []FeatureRow) (*Dataset, error) {
	if len(rows) == 0 {
		return nil, errors.NewEmptyDatasetError("NewDataset")
	}
	nFeatures := len(rows[0])
	if nFeatures == 0 {
		return nil, errors.NewDimensionError("NewDataset", 1, 0, 1)
	}
	for _, row := range rows[1:] {
		if len(row) != nFeatures {
			return nil, errors.NewDimensionError("NewDataset", nFeatures, len(row), 1)
		}
	}

	data := mat.NewDense(len(rows), nFeatures, nil)
	parallel.ParallelizeWithThreshold(len(rows), parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			data.SetRow(i, rows[i])
		}
	})
	return &Dataset{data: data}, nil
}

// Dims implements mat.Matrix.
func (d *Dataset) Dims() (rows, features int) {
	return d.data.Dims()
}

// At implements mat.Matrix.
func (d *Dataset) At(i, j int) float64 {
	return d.data.At(i, j)
}

// T implements mat.Matrix.
func (d *Dataset) T() mat.Matrix {
	return mat.Transpose{Matrix: d}
}

// NumRows returns the number of rows.
func (d *Dataset) NumRows() int {
	r, _ := d.data.Dims()
	return r
}

// NumFeatures returns the number of features per row.
func (d *Dataset) NumFeatures() int {
	_, c := d.data.Dims()
	return c
}

// Row returns a copy of row i.
func (d *Dataset) Row(i int) FeatureRow {
	return mat.Row(nil, i, d.data)
}

// Rows returns a copy of all rows.
func (d *Dataset) Rows() []FeatureRow {
	r, _ := d.data.Dims()
	rows := make([]FeatureRow, r)
	for i := range rows {
		rows[i] = d.Row(i)
	}
	return rows
}

// Dense returns a mutable copy of the underlying matrix.
func (d *Dataset) Dense() *mat.Dense {
	return mat.DenseCopyOf(d.data)
}

// Subset returns a new Dataset holding the given rows in the given order.
func (d *Dataset) Subset(indices []int) (*Dataset, error) {
	if len(indices) == 0 {
		return nil, errors.NewEmptyDatasetError("Dataset.Subset")
	}
	r, c := d.data.Dims()
	out := mat.NewDense(len(indices), c, nil)
	for i, idx := range indices {
		if idx < 0 || idx >= r {
			return nil, errors.NewValidationError("indices", "row index out of range", idx)
		}
		out.SetRow(i, d.data.RawRowView(idx))
	}
	return &Dataset{data: out}, nil
}

// Hadamard returns a new Dataset whose cell (n, f) is d(n, f) * w(n, f).
// Neither operand is modified.
func (d *Dataset) Hadamard(w *WeightMatrix) (*Dataset, error) {
	r, c := d.data.Dims()
	wr, wc := w.Dims()
	if wr != r {
		return nil, errors.NewDimensionError("Dataset.Hadamard", r, wr, 0)
	}
	if wc != c {
		return nil, errors.NewDimensionError("Dataset.Hadamard", c, wc, 1)
	}

	out := mat.NewDense(r, c, nil)
	parallel.ParallelizeWithThreshold(r, parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			src := d.data.RawRowView(i)
			weights := w.d.RawRowView(i)
			dst := out.RawRowView(i)
			for j := range dst {
				dst[j] = src[j] * weights[j]
			}
		}
	})
	return &Dataset{data: out}, nil
}

// Equal reports whether both datasets have the same shape and values within tol.
func (d *Dataset) Equal(other *Dataset, tol float64) bool {
	return mat.EqualApprox(d.data, other.data, tol)
}
