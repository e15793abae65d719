// Standard attribute keys shared by every component.
//
// Keys follow a hierarchical naming convention (e.g. "data.samples",
// "boost.round") so that log analysis can filter by prefix.

package log

// Model and Operation Context
const (
	// ModelNameKey identifies the component type.
	// Examples: "BoostingEngine", "Partitioner", "ConfusionMatrix"
	ModelNameKey = "model.name"

	// OperationKey specifies the operation being performed.
	// Standard values: "partition", "boost", "cross_validate", "score"
	OperationKey = "ml.operation"

	// ComponentKey identifies which package is performing the operation.
	// Examples: "model_selection", "ensemble", "metrics"
	ComponentKey = "ml.component"

	// PhaseKey indicates the phase of the run.
	// Examples: "training", "validation"
	PhaseKey = "ml.phase"
)

// Data Shape and Characteristics
const (
	// SamplesKey indicates the number of samples (rows) in the dataset.
	SamplesKey = "data.samples"

	// FeaturesKey indicates the number of features (columns) in the dataset.
	FeaturesKey = "data.features"

	// ClassesKey indicates the number of classes of the confusion matrix.
	ClassesKey = "data.classes"

	// DroppedKey records how many rows a partition discarded as remainder.
	DroppedKey = "data.dropped"
)

// Partitioning
const (
	// GroupsKey records the number of folds requested.
	GroupsKey = "partition.groups"

	// FoldKey records the fold index currently processed.
	FoldKey = "partition.fold"

	// FoldSizeKey records the number of indices in each fold.
	FoldSizeKey = "partition.fold_size"

	// RandomizeKey records whether the index order was shuffled.
	RandomizeKey = "partition.randomize"
)

// Boosting and Performance Metrics
const (
	// RoundKey records the current boosting round (1-based).
	RoundKey = "boost.round"

	// DepthKey records the total number of boosting rounds.
	DepthKey = "boost.depth"

	// AlphaKey records the learner weight computed by the weight updater.
	AlphaKey = "boost.alpha"

	// RoundErrorKey records the training error of one boosting round.
	RoundErrorKey = "boost.error"

	// AccuracyKey records the classification rate.
	// Range [0.0, 1.0].
	AccuracyKey = "metrics.accuracy"

	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"
)

// Error and Warning Context
const (
	// ErrorCodeKey provides a structured error code for programmatic handling.
	ErrorCodeKey = "error.code"

	// ErrorTypeKey categorizes the type of error encountered.
	ErrorTypeKey = "error.type"
)

// Configuration
const (
	// RandomSeedKey records the random seed for reproducibility.
	RandomSeedKey = "config.random_seed"

	// ConfigPathKey records the configuration file that was loaded.
	ConfigPathKey = "config.path"
)

// Standard attribute value constants.
const (
	OperationPartition     = "partition"
	OperationBoost         = "boost"
	OperationCrossValidate = "cross_validate"
	OperationScore         = "score"

	PhaseTraining   = "training"
	PhaseValidation = "validation"

	ErrorDimensionMismatch = "DIMENSION_MISMATCH"
	ErrorEmptyData         = "EMPTY_DATA"
	ErrorInvalidPartition  = "INVALID_PARTITION"
	ErrorLearnerFailure    = "LEARNER_FAILURE"
)
