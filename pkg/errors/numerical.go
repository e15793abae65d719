package errors

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// maxUnstableValues は1つのエラーに含めるNaN/Infの最大数です。
const maxUnstableValues = 10

// maxExpArg より大きい指数はexpがInfになるため切り詰めます。
const maxExpArg = 700.0

func unstable(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0)
}

// CheckScalar はvalueがNaNまたはInfのときNumericalInstabilityErrorを返します。
func CheckScalar(operation string, value float64, iteration int) error {
	if unstable(value) {
		return NewNumericalInstabilityError(operation, []float64{value}, iteration)
	}
	return nil
}

// CheckMatrix はmの要素を走査し、NaN/Infを含む最初の行の値をエラーとして返します。
func CheckMatrix(operation string, m mat.Matrix, iteration int) error {
	rows, cols := m.Dims()
	for i := 0; i < rows; i++ {
		var bad []float64
		for j := 0; j < cols && len(bad) < maxUnstableValues; j++ {
			if v := m.At(i, j); unstable(v) {
				bad = append(bad, v)
			}
		}
		if len(bad) > 0 {
			return NewNumericalInstabilityError(operation, bad, iteration)
		}
	}
	return nil
}

// StabilizeExp は引数を[-maxExpArg, maxExpArg]に収めてからexpを計算します。
func StabilizeExp(value float64) float64 {
	return math.Exp(math.Max(-maxExpArg, math.Min(value, maxExpArg)))
}
