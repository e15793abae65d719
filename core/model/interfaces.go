// Package model defines the contracts of the external learners driven by
// cross-validation and boosting, and the lifecycle state shared by the
// components that run them.
package model

// Classifier is a trainable model producing integer class labels.
// Labels passed to Fit and returned by Predict are class indices in [0, C).
type Classifier interface {
	Fitter
	Predictor
}

// ClassifierFactory creates a fresh, unfitted classifier. Cross-validation
// calls it once per fold so that folds never share fitted state.
type ClassifierFactory func() Classifier
