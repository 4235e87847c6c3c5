package tree

import (
	"fmt"
	"math"
	"slices"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/treelab/core/model"
	"github.com/YuminosukeSato/treelab/metrics"
	"github.com/YuminosukeSato/treelab/pkg/errors"
	"github.com/YuminosukeSato/treelab/pkg/log"
)

const modelName = "DecisionTreeClassifier"

// DecisionTreeClassifier is a CART classifier over mat.Matrix inputs.
// Labels may be any integers; they are mapped to 0..K-1 internally and mapped
// back on prediction.
type DecisionTreeClassifier struct {
	state *model.StateManager

	// hyperparameters
	criterion           string
	maxDepth            int
	minSamplesSplit     int
	minSamplesLeaf      int
	minImpurityDecrease float64
	nJobs               int

	// learned
	tree      *Tree
	classes_  []int
	nClasses_ int

	logger log.Logger
}

// Option configures a DecisionTreeClassifier.
type Option func(*DecisionTreeClassifier)

// WithCriterion sets the impurity measure ("gini" or "entropy").
func WithCriterion(criterion string) Option {
	return func(dt *DecisionTreeClassifier) { dt.criterion = criterion }
}

// WithMaxDepth sets the maximum depth; Unbounded (-1) disables the limit.
func WithMaxDepth(depth int) Option {
	return func(dt *DecisionTreeClassifier) { dt.maxDepth = depth }
}

// WithMinSamplesSplit sets the fewest samples a node needs to be split.
func WithMinSamplesSplit(n int) Option {
	return func(dt *DecisionTreeClassifier) { dt.minSamplesSplit = n }
}

// WithMinSamplesLeaf sets the fewest samples each child of a split must keep.
func WithMinSamplesLeaf(n int) Option {
	return func(dt *DecisionTreeClassifier) { dt.minSamplesLeaf = n }
}

// WithMinImpurityDecrease rejects splits whose gain is not strictly above v.
func WithMinImpurityDecrease(v float64) Option {
	return func(dt *DecisionTreeClassifier) { dt.minImpurityDecrease = v }
}

// WithNJobs sets the number of goroutines used by Predict; <= 0 uses every CPU.
func WithNJobs(n int) Option {
	return func(dt *DecisionTreeClassifier) { dt.nJobs = n }
}

// WithLogger replaces the package logger.
func WithLogger(logger log.Logger) Option {
	return func(dt *DecisionTreeClassifier) { dt.logger = logger }
}

// NewDecisionTreeClassifier returns an unfitted classifier. Without options it
// grows a Gini tree until every leaf is pure.
func NewDecisionTreeClassifier(opts ...Option) *DecisionTreeClassifier {
	defaults := DefaultBuildConfig()
	dt := &DecisionTreeClassifier{
		state:               model.NewStateManager(),
		criterion:           defaults.Criterion,
		maxDepth:            defaults.MaxDepth,
		minSamplesSplit:     defaults.MinSamplesSplit,
		minSamplesLeaf:      defaults.MinSamplesLeaf,
		minImpurityDecrease: defaults.MinImpurityGain,
		nJobs:               1,
	}
	for _, opt := range opts {
		opt(dt)
	}
	if dt.logger == nil {
		dt.logger = log.GetLoggerWithName("tree").With(log.ModelNameKey, modelName)
	}
	return dt
}

// BuildConfig returns the growth configuration derived from the hyperparameters.
func (dt *DecisionTreeClassifier) BuildConfig() BuildConfig {
	return BuildConfig{
		MaxDepth:        dt.maxDepth,
		MinSamplesLeaf:  dt.minSamplesLeaf,
		MinSamplesSplit: dt.minSamplesSplit,
		MinImpurityGain: dt.minImpurityDecrease,
		Criterion:       dt.criterion,
	}
}

// Fit grows the tree on X (n_samples × n_features) and y (n_samples × 1).
func (dt *DecisionTreeClassifier) Fit(X, y mat.Matrix) (err error) {
	defer errors.Recover(&err, modelName+".Fit")

	cfg := dt.BuildConfig()
	builder, err := NewBuilder(cfg, dt.logger)
	if err != nil {
		return err
	}

	nSamples, nFeatures := X.Dims()
	if nSamples == 0 || nFeatures == 0 {
		return errors.NewInvalidDatasetError(modelName+".Fit", "empty input")
	}
	yRows, yCols := y.Dims()
	if yRows != nSamples {
		return errors.NewDimensionError(modelName+".Fit", nSamples, yRows, 0)
	}
	if yCols != 1 {
		return errors.NewDimensionError(modelName+".Fit", 1, yCols, 1)
	}

	classes, encoded, err := encodeLabels(y)
	if err != nil {
		return err
	}

	rows := make([][]float64, nSamples)
	for i := range rows {
		rows[i] = mat.Row(nil, i, X)
	}
	ds, err := NewDataset(rows, encoded, len(classes))
	if err != nil {
		return err
	}

	dt.logger.Info("Training started",
		log.OperationKey, log.OperationFit,
		log.PhaseKey, log.PhaseTraining,
		log.SamplesKey, nSamples,
		log.FeaturesKey, nFeatures,
		log.ClassesKey, len(classes),
		log.HyperParamsKey, dt.GetParams(),
	)
	start := time.Now()

	tree, err := builder.Build(ds)
	if err != nil {
		dt.logger.Error("Training failed", err, log.OperationKey, log.OperationFit)
		return err
	}

	dt.tree = tree
	dt.classes_ = classes
	dt.nClasses_ = len(classes)
	dt.state.SetFitted(nFeatures, nSamples)

	dt.logger.Info("Training completed",
		log.OperationKey, log.OperationFit,
		log.DepthKey, tree.Depth(),
		log.LeavesKey, tree.NLeaves(),
		log.NodeCountKey, tree.NodeCount(),
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return nil
}

// encodeLabels maps the distinct integral values of y to 0..K-1 in
// ascending order.
func encodeLabels(y mat.Matrix) ([]int, []int, error) {
	n, _ := y.Dims()
	raw := make([]int, n)
	for i := 0; i < n; i++ {
		v := y.At(i, 0)
		if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) {
			return nil, nil, errors.NewInvalidRowError(modelName+".Fit", i, fmt.Sprintf("label %v is not an integer", v))
		}
		raw[i] = int(v)
	}

	classes := slices.Clone(raw)
	slices.Sort(classes)
	classes = slices.Compact(classes)

	encoded := make([]int, n)
	for i, v := range raw {
		encoded[i], _ = slices.BinarySearch(classes, v)
	}
	return classes, encoded, nil
}

func (dt *DecisionTreeClassifier) rows(method string, X mat.Matrix) ([][]float64, error) {
	nSamples, nFeatures := X.Dims()
	if err := dt.state.RequireFeatures(modelName, method, nFeatures); err != nil {
		return nil, err
	}
	rows := make([][]float64, nSamples)
	for i := range rows {
		rows[i] = mat.Row(nil, i, X)
	}
	return rows, nil
}

// Predict returns an n_samples × 1 matrix of class labels.
func (dt *DecisionTreeClassifier) Predict(X mat.Matrix) (mat.Matrix, error) {
	rows, err := dt.rows("Predict", X)
	if err != nil {
		return nil, err
	}
	labels, err := dt.tree.PredictBatch(rows, dt.nJobs)
	if err != nil {
		return nil, err
	}

	out := mat.NewDense(len(rows), 1, nil)
	for i, k := range labels {
		out.Set(i, 0, float64(dt.classes_[k]))
	}
	dt.logger.Debug("Prediction completed",
		log.OperationKey, log.OperationPredict,
		log.PhaseKey, log.PhaseInference,
		log.PredsKey, len(rows),
	)
	return out, nil
}

// PredictProba returns an n_samples × n_classes matrix of leaf class
// frequencies. Columns follow Classes().
func (dt *DecisionTreeClassifier) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	rows, err := dt.rows("PredictProba", X)
	if err != nil {
		return nil, err
	}
	out := mat.NewDense(len(rows), dt.nClasses_, nil)
	for i, row := range rows {
		proba, err := dt.tree.PredictProba(row)
		if err != nil {
			return nil, err
		}
		out.SetRow(i, proba)
	}
	return out, nil
}

// Score returns the mean accuracy of Predict(X) against y, or 0 when the
// classifier is unfitted or the shapes disagree.
func (dt *DecisionTreeClassifier) Score(X, y mat.Matrix) float64 {
	pred, err := dt.Predict(X)
	if err != nil {
		dt.logger.Warn("Score could not predict", log.OperationKey, log.OperationScore, "error", err.Error())
		return 0
	}
	acc, err := metrics.AccuracyScore(y, pred)
	if err != nil {
		dt.logger.Warn("Score could not compare labels", log.OperationKey, log.OperationScore, "error", err.Error())
		return 0
	}
	return acc
}

// Classes returns the sorted distinct labels seen by Fit.
func (dt *DecisionTreeClassifier) Classes() []int {
	return slices.Clone(dt.classes_)
}

// Tree returns the fitted tree, or nil before Fit. Its leaf labels are
// indices into Classes().
func (dt *DecisionTreeClassifier) Tree() *Tree {
	return dt.tree
}

// IsFitted reports whether Fit has succeeded.
func (dt *DecisionTreeClassifier) IsFitted() bool {
	return dt.state.IsFitted()
}

// GetDepth returns the depth of the fitted tree, or 0 before Fit.
func (dt *DecisionTreeClassifier) GetDepth() int {
	if dt.tree == nil {
		return 0
	}
	return dt.tree.Depth()
}

// GetNLeaves returns the number of leaves of the fitted tree, or 0 before Fit.
func (dt *DecisionTreeClassifier) GetNLeaves() int {
	if dt.tree == nil {
		return 0
	}
	return dt.tree.NLeaves()
}

// GetFeatureImportances returns normalised impurity-decrease importances, or
// nil before Fit.
func (dt *DecisionTreeClassifier) GetFeatureImportances() []float64 {
	if dt.tree == nil {
		return nil
	}
	return dt.tree.FeatureImportances()
}

// GetParams returns the hyperparameters under their scikit-learn names.
func (dt *DecisionTreeClassifier) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"criterion":             dt.criterion,
		"max_depth":             dt.maxDepth,
		"min_samples_split":     dt.minSamplesSplit,
		"min_samples_leaf":      dt.minSamplesLeaf,
		"min_impurity_decrease": dt.minImpurityDecrease,
		"n_jobs":                dt.nJobs,
	}
}

// SetParams updates hyperparameters by name. Numeric values may be given as
// int or float64. The result is validated as a whole; on error nothing changes.
func (dt *DecisionTreeClassifier) SetParams(params map[string]interface{}) error {
	next := *dt
	for key, value := range params {
		var err error
		switch key {
		case "criterion":
			s, ok := value.(string)
			if !ok {
				err = errors.NewValidationError(key, "must be a string", value)
			}
			next.criterion = s
		case "max_depth":
			next.maxDepth, err = intParam(key, value)
		case "min_samples_split":
			next.minSamplesSplit, err = intParam(key, value)
		case "min_samples_leaf":
			next.minSamplesLeaf, err = intParam(key, value)
		case "n_jobs":
			next.nJobs, err = intParam(key, value)
		case "min_impurity_decrease":
			switch v := value.(type) {
			case float64:
				next.minImpurityDecrease = v
			case int:
				next.minImpurityDecrease = float64(v)
			default:
				err = errors.NewValidationError(key, "must be a number", value)
			}
		default:
			err = errors.NewValidationError(key, "unknown parameter", value)
		}
		if err != nil {
			return err
		}
	}
	if err := next.BuildConfig().Validate(); err != nil {
		return err
	}
	*dt = next
	return nil
}

func intParam(key string, value interface{}) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case float64:
		if v == math.Trunc(v) {
			return int(v), nil
		}
	}
	return 0, errors.NewValidationError(key, "must be an integer", value)
}

// String implements fmt.Stringer.
func (dt *DecisionTreeClassifier) String() string {
	return fmt.Sprintf("DecisionTreeClassifier(criterion=%s, max_depth=%d, min_samples_split=%d, min_samples_leaf=%d)",
		dt.criterion, dt.maxDepth, dt.minSamplesSplit, dt.minSamplesLeaf)
}

var (
	_ model.Classifier      = (*DecisionTreeClassifier)(nil)
	_ model.ParameterGetter = (*DecisionTreeClassifier)(nil)
	_ model.ParameterSetter = (*DecisionTreeClassifier)(nil)
)
