package tree

import (
	"math"
	"strings"

	"github.com/YuminosukeSato/treelab/pkg/errors"
)

// Criterion measures the impurity of a set of labels given its per-class
// counts. Impurity is 0 for a single-class set and for an empty set.
type Criterion interface {
	Name() string
	Impurity(counts []int) float64
}

// Gini is the Gini impurity 1 - Σ p_k². It is the default criterion.
type Gini struct{}

// Name implements Criterion.
func (Gini) Name() string { return "gini" }

// Impurity implements Criterion.
func (Gini) Impurity(counts []int) float64 {
	n := total(counts)
	if n == 0 {
		return 0
	}
	sum := 0.0
	for _, c := range counts {
		p := float64(c) / float64(n)
		sum += p * p
	}
	return 1 - sum
}

// Entropy is the Shannon entropy -Σ p_k log2 p_k.
type Entropy struct{}

// Name implements Criterion.
func (Entropy) Name() string { return "entropy" }

// Impurity implements Criterion.
func (Entropy) Impurity(counts []int) float64 {
	n := total(counts)
	if n == 0 {
		return 0
	}
	h := 0.0
	for _, c := range counts {
		if c == 0 {
			continue
		}
		p := float64(c) / float64(n)
		h -= p * math.Log2(p)
	}
	if h < 0 {
		// -0 for a pure set
		return 0
	}
	return h
}

// CriterionByName returns the criterion registered under name ("gini" or "entropy").
func CriterionByName(name string) (Criterion, error) {
	switch strings.ToLower(name) {
	case "gini", "":
		return Gini{}, nil
	case "entropy", "log_loss":
		return Entropy{}, nil
	default:
		return nil, errors.Wrapf(errors.ErrUnknownCriterion, "criterion %q", name)
	}
}

// Impurity returns the Gini impurity of labels drawn from nClasses classes.
// Labels outside [0, nClasses) are ignored.
func Impurity(labels []int, nClasses int) float64 {
	return Gini{}.Impurity(countLabels(labels, nClasses))
}

// WeightedImpurity returns the sample-weighted Gini impurity of a two-way
// partition, or 0 when both sides are empty. Labels outside [0, nClasses)
// are ignored.
func WeightedImpurity(left, right []int, nClasses int) float64 {
	return weightedImpurity(Gini{}, countLabels(left, nClasses), countLabels(right, nClasses))
}

// countLabels counts the labels in [0, nClasses) and drops the rest.
func countLabels(labels []int, nClasses int) []int {
	counts := make([]int, max(nClasses, 0))
	for _, y := range labels {
		if y >= 0 && y < len(counts) {
			counts[y]++
		}
	}
	return counts
}

func weightedImpurity(c Criterion, left, right []int) float64 {
	nl, nr := total(left), total(right)
	n := nl + nr
	if n == 0 {
		return 0
	}
	return float64(nl)/float64(n)*c.Impurity(left) + float64(nr)/float64(n)*c.Impurity(right)
}

func total(counts []int) int {
	n := 0
	for _, c := range counts {
		n += c
	}
	return n
}
