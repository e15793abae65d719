// Package boostcv partitions datasets for cross-validation, evaluates
// classifiers with confusion matrices and runs boosting loops that reweight
// the training data between rounds.
//
// # Installation
//
//	go get github.com/YuminosukeSato/boostcv
//
// # Quick Start
//
// Cross-validate a logistic regression over five randomized folds:
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/boostcv/core/dataset"
//	    "github.com/YuminosukeSato/boostcv/sklearn/linear_model"
//	    "github.com/YuminosukeSato/boostcv/sklearn/model_selection"
//	)
//
//	func main() {
//	    ds, _ := dataset.NewDataset([]dataset.FeatureRow{ /* ... */ })
//	    labels := []int{ /* one class index per row */ }
//
//	    folds, err := model_selection.NewPartitioner(model_selection.WithSeed(42)).
//	        Partition(ds.NumRows(), 5, true)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    result, err := model_selection.CrossValidate(linear_model.Factory(), ds, labels, folds, 2)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Printf("rate %.3f (±%.3f)\n", result.MeanScore(), result.StdScore())
//	    fmt.Print(result.Pooled.Report())
//	}
//
// # Packages
//
//   - core/dataset: Datasets and per-cell weight matrices
//   - core/model: Classifier contracts and run lifecycle state
//   - core/parallel: Parallel processing utilities
//   - metrics: Confusion matrix, per-sample outcome log and reports
//   - preprocessing: Feature standardization
//   - sklearn/model_selection: Fold partitioning, fold files, k-fold and cross-validation
//   - sklearn/ensemble: Boosting engine, error scorers and weight updaters
//   - sklearn/linear_model: Logistic regression learner
//   - pkg/config: YAML run configuration
//   - pkg/errors, pkg/log: Error types and structured logging
//   - cmd/boostcv: Command line front end for partitioning
package boostcv
