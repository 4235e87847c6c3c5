// Package treelab grows, inspects and draws binary classification trees in Go.
//
// A tree is grown top-down: at every node the split search tries every
// feature and every midpoint between consecutive distinct values, and keeps
// the rule "X[f] <= threshold" with the largest decrease in Gini impurity.
// Growth stops at pure nodes and at the limits set in tree.BuildConfig.
//
// # Installation
//
//	go get github.com/YuminosukeSato/treelab
//
// # Quick Start
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/treelab/sklearn/tree"
//	)
//
//	func main() {
//	    ds, err := tree.NewDataset([][]float64{{1}, {2}, {3}, {4}}, []int{0, 0, 1, 1}, 0)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    t, err := tree.Build(ds, tree.DefaultBuildConfig())
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    label, _ := t.Predict([]float64{3.5})
//	    fmt.Println("Prediction:", label) // 1
//	}
//
// # Packages
//
//   - sklearn/tree: datasets, impurity, split search, tree growth and prediction,
//     plus the scikit-learn style DecisionTreeClassifier
//   - datasets: toy data generation and .npy / CSV loading
//   - render: Graphviz tree diagrams and gonum/plot decision boundaries
//   - metrics: accuracy, confusion matrix and per-class recall
//   - core/model: shared model interfaces, fit state and gob persistence
//   - core/parallel: chunked parallel loops used by batch prediction
//   - pkg/errors, pkg/log: structured errors and zerolog-based logging
//
// The treelab command (cmd/treelab) exposes the same operations on files.
//
// # scikit-learn Compatibility
//
//	model := tree.NewDecisionTreeClassifier(
//	    tree.WithMaxDepth(3),
//	    tree.WithMinSamplesLeaf(2),
//	    tree.WithNJobs(-1), // Use all CPU cores for prediction
//	)
//
// # License
//
// treelab is released under the MIT License.
package treelab
