// Package log defines standard attribute keys for trafobench runs.
//
// The keys follow a hierarchical naming convention (e.g. "model.name",
// "data.samples") to enable structured log analysis and filtering.

package log

// Model and Operation Context
const (
	// ModelNameKey identifies the type of machine learning model.
	// Examples: "LogisticRegression", "MinMaxScaler"
	ModelNameKey = "model.name"

	// ClassifierKey names a member of the evaluation panel.
	ClassifierKey = "model.classifier"

	// OperationKey specifies the operation being performed.
	OperationKey = "ml.operation"

	// ComponentKey identifies which package is performing the operation.
	// Examples: "dataset", "preprocessing", "evaluation", "plotting"
	ComponentKey = "ml.component"

	// PhaseKey indicates the phase of model lifecycle.
	PhaseKey = "ml.phase"

	// VariantKey labels the transformation variant being evaluated.
	VariantKey = "experiment.variant"

	// RunIDKey identifies a single analysis run.
	RunIDKey = "experiment.run_id"
)

// Data Shape and Characteristics
const (
	// SamplesKey indicates the number of samples (rows) in the dataset.
	SamplesKey = "data.samples"

	// FeaturesKey indicates the number of features (columns) in the dataset.
	FeaturesKey = "data.features"

	// ColumnKey names a table column.
	ColumnKey = "data.column"

	// DroppedKey counts rows removed by a filter or transform.
	DroppedKey = "data.dropped"

	// PositivesKey and NegativesKey count rows per Outcome class.
	PositivesKey = "data.positives"
	NegativesKey = "data.negatives"

	// PathKey is a file path read or written.
	PathKey = "data.path"
)

// Performance Metrics
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// AccuracyKey records model accuracy. Range [0.0, 1.0].
	AccuracyKey = "metrics.accuracy"

	// SensitivityKey records recall on the positive class.
	SensitivityKey = "metrics.sensitivity"

	// SpecificityKey records recall on the negative class.
	SpecificityKey = "metrics.specificity"

	// PrecisionKey and F1Key are diagnostic metrics only.
	PrecisionKey = "metrics.precision"
	F1Key        = "metrics.f1"

	// IterationKey records the current iteration number during iterative processes.
	IterationKey = "training.iteration"
)

// Error and Output Context
const (
	// ErrorTypeKey categorizes the type of error encountered.
	ErrorTypeKey = "error.type"

	// ArtifactKey names a rendered chart or written report.
	ArtifactKey = "output.artifact"

	// RandomSeedKey records the random seed for reproducibility.
	RandomSeedKey = "config.random_seed"
)

// Standard attribute values.
const (
	OperationFit       = "fit"
	OperationPredict   = "predict"
	OperationTransform = "transform"
	OperationScore     = "score"
	OperationLoad      = "load"
	OperationFilter    = "filter"
	OperationRender    = "render"

	PhaseTraining      = "training"
	PhaseTesting       = "testing"
	PhasePreprocessing = "preprocessing"
	PhaseReporting     = "reporting"
)
