// Package log defines standard attribute keys for the training and
// serving paths.
//
// The keys follow a hierarchical naming convention ("model.name",
// "data.samples") so log records from the trainer and the form server can
// be filtered the same way.

package log

// Model and Operation Context
const (
	// ModelNameKey identifies the estimator type.
	// Examples: "RandomForestRegressor", "OneHotEncoder", "Pipeline"
	ModelNameKey = "model.name"

	// OperationKey specifies the operation being performed.
	// Standard values: "fit", "predict", "transform", "load", "save"
	OperationKey = "ml.operation"

	// ComponentKey identifies which component is logging.
	// Examples: "trainer", "server", "artifact"
	ComponentKey = "ml.component"

	// PhaseKey indicates the phase of the model lifecycle.
	PhaseKey = "ml.phase"
)

// Data Shape and Characteristics
const (
	SamplesKey  = "data.samples"
	FeaturesKey = "data.features"
	ColumnsKey  = "data.columns"
	PathKey     = "data.path"
)

// Performance and Metrics
const (
	DurationMsKey = "perf.duration_ms"
	R2ScoreKey    = "metrics.r2_score"
	MAEKey        = "metrics.mae"
	RMSEKey       = "metrics.rmse"
)

// Configuration
const (
	RandomSeedKey = "config.random_seed"
	EstimatorsKey = "config.n_estimators"
	TestSizeKey   = "config.test_size"
)

// Error Context
const (
	ErrorCodeKey  = "error.code"
	SuggestionKey = "error.suggestion"
)

// Standard attribute values.
const (
	OperationFit       = "fit"
	OperationPredict   = "predict"
	OperationTransform = "transform"
	OperationLoad      = "load"
	OperationSave      = "save"
	OperationScore     = "score"

	PhaseTraining  = "training"
	PhaseTesting   = "testing"
	PhaseInference = "inference"

	ErrorDatasetNotFound  = "DATASET_NOT_FOUND"
	ErrorMissingColumns   = "MISSING_COLUMNS"
	ErrorArtifactNotFound = "ARTIFACT_NOT_FOUND"
	ErrorArtifactCorrupt  = "ARTIFACT_CORRUPT"
	ErrorSchemaMismatch   = "SCHEMA_MISMATCH"
)
