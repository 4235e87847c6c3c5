// Standard attribute keys for treelab log records.
//
// Keys follow a hierarchical naming convention ("model.name", "data.samples")
// so that records from fitting, prediction and the CLI can be filtered the
// same way.

package log

// Model and Operation Context
const (
	// ModelNameKey identifies the type of model, e.g. "DecisionTreeClassifier".
	ModelNameKey = "model.name"

	// OperationKey specifies the operation being performed ("fit", "predict", ...).
	OperationKey = "ml.operation"

	// ComponentKey identifies which package is logging, e.g. "tree", "cli".
	ComponentKey = "ml.component"

	// PhaseKey indicates the phase of the model lifecycle.
	PhaseKey = "ml.phase"
)

// Data Shape and Characteristics
const (
	SamplesKey  = "data.samples"
	FeaturesKey = "data.features"
	ClassesKey  = "data.classes"
	PathKey     = "data.path"
)

// Tree Structure
// These attributes describe a grown tree or a single node during growth.
const (
	DepthKey     = "tree.depth"
	LeavesKey    = "tree.leaves"
	NodeCountKey = "tree.node_count"

	// NodeIDKey is the pre-order index of a node in its tree.
	NodeIDKey = "tree.node_id"

	// ImpurityKey records the impurity of the samples reaching a node.
	ImpurityKey = "tree.impurity"

	// GainKey records the impurity decrease of an accepted or rejected split.
	GainKey = "tree.gain"

	FeatureKey   = "tree.feature"
	ThresholdKey = "tree.threshold"

	// StopReasonKey explains why a node became a leaf.
	StopReasonKey = "tree.stop_reason"
)

// Performance Metrics
const (
	DurationMsKey = "perf.duration_ms"
	AccuracyKey   = "metrics.accuracy"
	PredsKey      = "preds.count"
)

// Error Context
const (
	ErrorCodeKey = "error.code"
	ErrorTypeKey = "error.type"
)

// Hyperparameters and Configuration
const (
	HyperParamsKey = "model.hyperparams"
	RandomSeedKey  = "config.random_seed"
)

// Standard attribute value constants for common operations.
const (
	OperationFit     = "fit"
	OperationPredict = "predict"
	OperationScore   = "score"
	OperationSplit   = "split"
	OperationRender  = "render"

	PhaseTraining  = "training"
	PhaseInference = "inference"

	ErrorNotFitted         = "NOT_FITTED"
	ErrorDimensionMismatch = "DIMENSION_MISMATCH"
	ErrorInvalidDataset    = "INVALID_DATASET"
	ErrorInvalidConfig     = "INVALID_CONFIG"
)
