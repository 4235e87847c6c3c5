package tree

import (
	"encoding/json"
	"fmt"
	"io"

	"gonum.org/v1/gonum/floats"

	"github.com/YuminosukeSato/treelab/core/parallel"
	"github.com/YuminosukeSato/treelab/pkg/errors"
)

// predictParallelThreshold is the batch size below which PredictBatch stays
// on the calling goroutine.
const predictParallelThreshold = 1024

// Tree is a fitted binary classification tree. It is read-only after Build
// and safe for concurrent use.
type Tree struct {
	Root      *Node       `json:"root"`
	Config    BuildConfig `json:"config"`
	NFeatures int         `json:"n_features"`
	NClasses  int         `json:"n_classes"`
}

func (t *Tree) checkSample(op string, sample []float64) error {
	if len(sample) != t.NFeatures {
		return errors.NewDimensionError(op, t.NFeatures, len(sample), 1)
	}
	return nil
}

// Apply returns the leaf that sample falls into.
func (t *Tree) Apply(sample []float64) (*Node, error) {
	if err := t.checkSample("Tree.Apply", sample); err != nil {
		return nil, err
	}
	return t.apply(sample), nil
}

func (t *Tree) apply(sample []float64) *Node {
	n := t.Root
	for !n.Leaf {
		n = n.next(sample)
	}
	return n
}

// Predict returns the label of the leaf sample falls into. At every internal
// node, sample[Feature] <= Threshold descends left.
func (t *Tree) Predict(sample []float64) (int, error) {
	if err := t.checkSample("Tree.Predict", sample); err != nil {
		return 0, err
	}
	return t.apply(sample).Label, nil
}

// PredictProba returns the class frequencies of the leaf sample falls into.
func (t *Tree) PredictProba(sample []float64) ([]float64, error) {
	if err := t.checkSample("Tree.PredictProba", sample); err != nil {
		return nil, err
	}
	return t.apply(sample).Proba(), nil
}

// PredictBatch predicts every row. All rows are checked before any
// prediction is made; large batches are spread over nJobs goroutines
// (<= 0 means one per CPU).
func (t *Tree) PredictBatch(rows [][]float64, nJobs int) ([]int, error) {
	for i, row := range rows {
		if len(row) != t.NFeatures {
			return nil, errors.Wrapf(errors.NewDimensionError("Tree.PredictBatch", t.NFeatures, len(row), 1), "row %d", i)
		}
	}
	labels := make([]int, len(rows))
	parallel.ParallelizeWithThreshold(len(rows), predictParallelThreshold, nJobs, func(start, end int) {
		for i := start; i < end; i++ {
			labels[i] = t.apply(rows[i]).Label
		}
	})
	return labels, nil
}

// DecisionPath returns the nodes visited by sample, root first, leaf last.
func (t *Tree) DecisionPath(sample []float64) ([]*Node, error) {
	if err := t.checkSample("Tree.DecisionPath", sample); err != nil {
		return nil, err
	}
	path := []*Node{t.Root}
	n := t.Root
	for !n.Leaf {
		n = n.next(sample)
		path = append(path, n)
	}
	return path, nil
}

// Walk visits every node in pre-order (ascending ID). Returning false from
// fn skips the node's subtree.
func (t *Tree) Walk(fn func(n *Node) bool) {
	stack := []*Node{t.Root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(n) || n.Leaf {
			continue
		}
		stack = append(stack, n.Right, n.Left)
	}
}

// Depth returns the depth of the deepest leaf; a single-leaf tree has depth 0.
func (t *Tree) Depth() int {
	depth := 0
	t.Walk(func(n *Node) bool {
		if n.Depth > depth {
			depth = n.Depth
		}
		return true
	})
	return depth
}

// NLeaves returns the number of leaves.
func (t *Tree) NLeaves() int {
	leaves := 0
	t.Walk(func(n *Node) bool {
		if n.Leaf {
			leaves++
		}
		return true
	})
	return leaves
}

// NodeCount returns the number of nodes, internal and leaf.
func (t *Tree) NodeCount() int {
	count := 0
	t.Walk(func(*Node) bool {
		count++
		return true
	})
	return count
}

// Leaves returns the leaves in pre-order.
func (t *Tree) Leaves() []*Node {
	var leaves []*Node
	t.Walk(func(n *Node) bool {
		if n.Leaf {
			leaves = append(leaves, n)
		}
		return true
	})
	return leaves
}

// FeatureImportances returns the total weighted impurity decrease contributed
// by each feature, normalised to sum to 1. A tree with no split yields zeros.
func (t *Tree) FeatureImportances() []float64 {
	importances := make([]float64, t.NFeatures)
	t.Walk(func(n *Node) bool {
		if !n.Leaf {
			importances[n.Feature] += float64(n.Samples)*n.Impurity -
				float64(n.Left.Samples)*n.Left.Impurity -
				float64(n.Right.Samples)*n.Right.Impurity
		}
		return true
	})
	if sum := floats.Sum(importances); sum > 0 {
		floats.Scale(1/sum, importances)
	}
	return importances
}

// WriteJSON encodes t as indented JSON.
func (t *Tree) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(t); err != nil {
		return errors.Wrap(err, "encode tree")
	}
	return nil
}

// ReadJSON decodes a tree written by WriteJSON and checks that it is well
// formed before returning it.
func ReadJSON(r io.Reader) (*Tree, error) {
	var t Tree
	if err := json.NewDecoder(r).Decode(&t); err != nil {
		return nil, errors.Wrap(err, "decode tree")
	}
	if err := t.Check(); err != nil {
		return nil, err
	}
	return &t, nil
}

// Check verifies the structure of a tree that did not come from Build: every
// internal node has two children and a feature in range, every leaf label is
// in range, and nodes are not shared.
func (t *Tree) Check() error {
	const op = "Tree.Check"
	if t.Root == nil {
		return errors.NewValueError(op, "tree has no root")
	}
	if t.NFeatures < 1 || t.NClasses < 1 {
		return errors.NewValueError(op, fmt.Sprintf("invalid shape: %d features, %d classes", t.NFeatures, t.NClasses))
	}
	if err := t.Config.Validate(); err != nil {
		return err
	}

	seen := make(map[*Node]bool)
	var err error
	t.Walk(func(n *Node) bool {
		if err != nil {
			return false
		}
		switch {
		case seen[n]:
			err = errors.NewValueError(op, fmt.Sprintf("node %d is reachable twice", n.ID))
		case n.Leaf && (n.Label < 0 || n.Label >= t.NClasses):
			err = errors.NewValueError(op, fmt.Sprintf("leaf %d has label %d outside [0, %d)", n.ID, n.Label, t.NClasses))
		case !n.Leaf && (n.Left == nil || n.Right == nil):
			err = errors.NewValueError(op, fmt.Sprintf("internal node %d is missing a child", n.ID))
		case !n.Leaf && (n.Feature < 0 || n.Feature >= t.NFeatures):
			err = errors.NewValueError(op, fmt.Sprintf("node %d splits on feature %d outside [0, %d)", n.ID, n.Feature, t.NFeatures))
		}
		seen[n] = true
		return err == nil
	})
	return err
}
