package model

import "gonum.org/v1/gonum/mat"

// Transformer は学習器の前段で特徴量を変換するインターフェース
type Transformer interface {
	// Fit は変換に必要なパラメータを学習する
	Fit(X mat.Matrix) error

	// Transform は学習済みのパラメータでデータを変換する
	Transform(X mat.Matrix) (*mat.Dense, error)

	// FitTransform はFitとTransformを続けて実行する
	FitTransform(X mat.Matrix) (*mat.Dense, error)
}
