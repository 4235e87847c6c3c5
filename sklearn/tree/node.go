package tree

// Node is one node of a fitted tree. A leaf carries Label; an internal node
// carries Feature, Threshold and exactly two children. Impurity, Samples and
// ClassCounts describe the training samples that reached the node and are
// kept for rendering and feature importances.
type Node struct {
	ID          int     `json:"id"`
	Leaf        bool    `json:"leaf"`
	Label       int     `json:"label"`
	Feature     int     `json:"feature"`
	Threshold   float64 `json:"threshold"`
	Impurity    float64 `json:"impurity"`
	Samples     int     `json:"samples"`
	ClassCounts []int   `json:"class_counts"`
	Gain        float64 `json:"gain,omitempty"`
	Depth       int     `json:"depth"`
	Left        *Node   `json:"left,omitempty"`
	Right       *Node   `json:"right,omitempty"`
}

// IsLeaf reports whether n is a leaf.
func (n *Node) IsLeaf() bool { return n.Leaf }

// next returns the child a sample descends into. Values equal to the
// threshold go left.
func (n *Node) next(sample []float64) *Node {
	if sample[n.Feature] <= n.Threshold {
		return n.Left
	}
	return n.Right
}

// Proba returns the class frequencies of the training samples at n.
func (n *Node) Proba() []float64 {
	proba := make([]float64, len(n.ClassCounts))
	if n.Samples == 0 {
		return proba
	}
	for k, c := range n.ClassCounts {
		proba[k] = float64(c) / float64(n.Samples)
	}
	return proba
}

func (n *Node) makeLeaf() {
	n.Leaf = true
	n.Label = majorityClass(n.ClassCounts)
	n.Feature = -1
	n.Threshold = 0
	n.Left, n.Right = nil, nil
}
