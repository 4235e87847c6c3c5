package tree

import (
	"context"
	"fmt"

	"github.com/YuminosukeSato/treelab/pkg/errors"
	"github.com/YuminosukeSato/treelab/pkg/log"
)

// Unbounded disables the depth limit when used as BuildConfig.MaxDepth.
const Unbounded = -1

// Reasons a node stopped growing, as logged under log.StopReasonKey.
const (
	StopPure            = "pure"
	StopMaxDepth        = "max_depth"
	StopMinSamplesSplit = "min_samples_split"
	StopNoSplit         = "no_split"
	StopMinImpurityGain = "min_impurity_gain"
	StopMinSamplesLeaf  = "min_samples_leaf"
)

// BuildConfig holds the stopping rules of tree growth. The zero value is not
// valid; start from DefaultBuildConfig.
type BuildConfig struct {
	// MaxDepth caps the depth of internal nodes (root = 0). Unbounded disables it.
	MaxDepth int `json:"max_depth" yaml:"max_depth"`
	// MinSamplesLeaf is the fewest samples either child of a split may keep.
	MinSamplesLeaf int `json:"min_samples_leaf" yaml:"min_samples_leaf"`
	// MinSamplesSplit is the fewest samples a node needs to be split at all.
	MinSamplesSplit int `json:"min_samples_split" yaml:"min_samples_split"`
	// MinImpurityGain rejects any split whose gain is not strictly above it.
	MinImpurityGain float64 `json:"min_impurity_gain" yaml:"min_impurity_gain"`
	// Criterion names the impurity measure: "gini" or "entropy".
	Criterion string `json:"criterion" yaml:"criterion"`
}

// DefaultBuildConfig grows a Gini tree until every leaf is pure.
func DefaultBuildConfig() BuildConfig {
	return BuildConfig{
		MaxDepth:        Unbounded,
		MinSamplesLeaf:  1,
		MinSamplesSplit: 2,
		MinImpurityGain: 0,
		Criterion:       "gini",
	}
}

// Validate checks every field and returns a ValidationError for the first
// one out of range.
func (c BuildConfig) Validate() error {
	if c.MaxDepth < Unbounded {
		return errors.NewValidationError("max_depth", "must be >= 0 or Unbounded (-1)", c.MaxDepth)
	}
	if c.MinSamplesLeaf < 1 {
		return errors.NewValidationError("min_samples_leaf", "must be >= 1", c.MinSamplesLeaf)
	}
	if c.MinSamplesSplit < 2 {
		return errors.NewValidationError("min_samples_split", "must be >= 2", c.MinSamplesSplit)
	}
	if c.MinImpurityGain < 0 || c.MinImpurityGain != c.MinImpurityGain {
		return errors.NewValidationError("min_impurity_gain", "must be a non-negative number", c.MinImpurityGain)
	}
	if _, err := CriterionByName(c.Criterion); err != nil {
		return errors.NewValidationError("criterion", "must be 'gini' or 'entropy'", c.Criterion)
	}
	return nil
}

// Bounded reports whether MaxDepth limits growth.
func (c BuildConfig) Bounded() bool { return c.MaxDepth != Unbounded }

// Builder grows trees under a fixed configuration. It is safe to reuse and to
// call concurrently; each Build owns its own state.
type Builder struct {
	config    BuildConfig
	criterion Criterion
	logger    log.Logger
}

// NewBuilder validates cfg and returns a Builder. A nil logger uses the
// package logger.
func NewBuilder(cfg BuildConfig, logger log.Logger) (*Builder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	criterion, _ := CriterionByName(cfg.Criterion)
	if logger == nil {
		logger = log.GetLoggerWithName("tree.Builder")
	}
	return &Builder{config: cfg, criterion: criterion, logger: logger}, nil
}

// Build grows a tree on ds with cfg. It is shorthand for NewBuilder(cfg, nil)
// followed by Builder.Build.
func Build(ds *Dataset, cfg BuildConfig) (*Tree, error) {
	b, err := NewBuilder(cfg, nil)
	if err != nil {
		return nil, err
	}
	return b.Build(ds)
}

type workItem struct {
	node  *Node
	idx   []int
	depth int
}

// Build grows a tree on ds. The dataset must have at least one sample and
// consistent rows; nothing from ds is retained once Build returns.
func (b *Builder) Build(ds *Dataset) (t *Tree, err error) {
	defer errors.Recover(&err, "tree.Build")

	if err := validateForBuild(ds); err != nil {
		return nil, err
	}

	debug := b.logger.Enabled(context.Background(), log.LevelDebug)

	root := &Node{}
	stack := []workItem{{node: root, idx: allIndices(ds.NSamples()), depth: 0}}
	nextID := 0

	for len(stack) > 0 {
		item := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		errors.Assert(len(item.idx) > 0, "empty partition at depth %d", item.depth)

		node := item.node
		node.ID = nextID
		nextID++
		node.Depth = item.depth
		node.Samples = len(item.idx)
		node.ClassCounts = classCounts(ds.Y, item.idx, ds.NClasses)
		node.Impurity = b.criterion.Impurity(node.ClassCounts)

		split, reason := b.chooseSplit(ds, item, node)
		if reason != "" {
			node.makeLeaf()
			if debug {
				b.logger.Debug("Leaf emitted",
					log.NodeIDKey, node.ID,
					log.DepthKey, node.Depth,
					log.SamplesKey, node.Samples,
					log.ImpurityKey, node.Impurity,
					log.StopReasonKey, reason,
				)
			}
			continue
		}

		left, right := partition(ds, item.idx, split.Feature, split.Threshold)
		errors.Assert(len(left) == split.NLeft && len(right) == split.NRight,
			"partition sizes %d/%d differ from split %d/%d", len(left), len(right), split.NLeft, split.NRight)

		node.Feature = split.Feature
		node.Threshold = split.Threshold
		node.Gain = split.Gain
		node.Left = &Node{}
		node.Right = &Node{}
		if debug {
			b.logger.Debug("Node split",
				log.NodeIDKey, node.ID,
				log.DepthKey, node.Depth,
				log.FeatureKey, split.Feature,
				log.ThresholdKey, split.Threshold,
				log.GainKey, split.Gain,
			)
		}

		// right first so the left subtree is numbered first (pre-order IDs)
		stack = append(stack,
			workItem{node: node.Right, idx: right, depth: item.depth + 1},
			workItem{node: node.Left, idx: left, depth: item.depth + 1},
		)
	}

	return &Tree{
		Root:      root,
		Config:    b.config,
		NFeatures: ds.NFeatures(),
		NClasses:  ds.NClasses,
	}, nil
}

// chooseSplit returns the accepted split for item, or the reason the node
// must stay a leaf.
func (b *Builder) chooseSplit(ds *Dataset, item workItem, node *Node) (Split, string) {
	cfg := b.config
	switch {
	case node.Impurity == 0:
		return Split{}, StopPure
	case cfg.Bounded() && item.depth >= cfg.MaxDepth:
		return Split{}, StopMaxDepth
	case node.Samples < cfg.MinSamplesSplit:
		return Split{}, StopMinSamplesSplit
	}

	split, ok := findBestSplit(ds, item.idx, node.ClassCounts, node.Impurity, b.criterion)
	switch {
	case !ok:
		return Split{}, StopNoSplit
	case split.Gain <= cfg.MinImpurityGain:
		return Split{}, StopMinImpurityGain
	case split.NLeft < cfg.MinSamplesLeaf || split.NRight < cfg.MinSamplesLeaf:
		// the winning candidate is discarded, not replaced by a runner-up
		return Split{}, StopMinSamplesLeaf
	}
	return split, ""
}

func validateForBuild(ds *Dataset) error {
	const op = "tree.Build"
	if ds == nil || ds.NSamples() == 0 {
		return errors.NewInvalidDatasetError(op, "dataset has zero samples")
	}
	if ds.NClasses < 1 {
		return errors.NewInvalidDatasetError(op, fmt.Sprintf("class count must be >= 1, got %d", ds.NClasses))
	}
	if len(ds.Y) != len(ds.X) {
		return errors.NewInvalidDatasetError(op, fmt.Sprintf("%d rows but %d labels", len(ds.X), len(ds.Y)))
	}
	nFeatures := len(ds.X[0])
	if nFeatures == 0 {
		return errors.NewInvalidRowError(op, 0, "sample has no features")
	}
	for i, row := range ds.X {
		if len(row) != nFeatures {
			return errors.NewInvalidRowError(op, i, fmt.Sprintf("expected %d features, got %d", nFeatures, len(row)))
		}
		if ds.Y[i] < 0 || ds.Y[i] >= ds.NClasses {
			return errors.NewInvalidRowError(op, i, fmt.Sprintf("label %d outside [0, %d)", ds.Y[i], ds.NClasses))
		}
	}
	return nil
}
