package tree

import (
	"fmt"
	"slices"

	"github.com/YuminosukeSato/treelab/pkg/errors"
)

// gainEpsilon absorbs rounding noise in impurity differences; a split must
// beat it to count as a strictly positive gain.
const gainEpsilon = 1e-12

// Split is a winning split candidate. Samples with X[Feature] <= Threshold go
// left, the rest go right; both sides are non-empty.
type Split struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Gain      float64 `json:"gain"`
	NLeft     int     `json:"n_left"`
	NRight    int     `json:"n_right"`
}

// FindBestSplit searches every feature of ds for the threshold with the
// largest impurity decrease under criterion (Gini when nil). It reports false
// when ds has at most one sample, is already pure, or no candidate yields a
// strictly positive gain.
//
// Candidates are visited by feature ascending, then threshold ascending, and
// only a strictly larger gain replaces the incumbent, so the first maximum wins.
func FindBestSplit(ds *Dataset, criterion Criterion) (Split, bool) {
	if criterion == nil {
		criterion = Gini{}
	}
	idx := allIndices(ds.NSamples())
	counts := classCounts(ds.Y, idx, ds.NClasses)
	return findBestSplit(ds, idx, counts, criterion.Impurity(counts), criterion)
}

type valueLabel struct {
	value float64
	label int
}

func findBestSplit(ds *Dataset, idx []int, counts []int, impurity float64, criterion Criterion) (Split, bool) {
	n := len(idx)
	if n <= 1 || impurity == 0 {
		return Split{}, false
	}

	best := Split{Feature: -1}
	column := make([]valueLabel, n)
	left := make([]int, ds.NClasses)
	right := make([]int, ds.NClasses)

	for f := 0; f < ds.NFeatures(); f++ {
		for i, s := range idx {
			column[i] = valueLabel{value: ds.X[s][f], label: ds.Y[s]}
		}
		slices.SortStableFunc(column, func(a, b valueLabel) int {
			switch {
			case a.value < b.value:
				return -1
			case a.value > b.value:
				return 1
			}
			return 0
		})

		clear(left)
		copy(right, counts)

		// column[:i+1] holds every sample with value <= column[i].value once
		// the run of equal values ends at i.
		for i := 0; i < n-1; i++ {
			left[column[i].label]++
			right[column[i].label]--

			lo, hi := column[i].value, column[i+1].value
			if lo == hi {
				continue
			}
			// halves first: hi-lo overflows for values of opposite sign near MaxFloat64
			threshold := lo/2 + hi/2
			if threshold < lo || threshold >= hi {
				// adjacent floats: keep the partition exact
				threshold = lo
			}

			gain := impurity - weightedImpurity(criterion, left, right)
			if gain > best.Gain+gainEpsilon {
				best = Split{
					Feature:   f,
					Threshold: threshold,
					Gain:      gain,
					NLeft:     i + 1,
					NRight:    n - i - 1,
				}
			}
		}
	}

	if best.Feature < 0 {
		return Split{}, false
	}
	return best, true
}

// partition splits idx by the rule X[feature] <= threshold, preserving order.
func partition(ds *Dataset, idx []int, feature int, threshold float64) (left, right []int) {
	left = make([]int, 0, len(idx))
	right = make([]int, 0, len(idx))
	for _, s := range idx {
		if ds.X[s][feature] <= threshold {
			left = append(left, s)
		} else {
			right = append(right, s)
		}
	}
	return left, right
}

// SplitEvaluation scores an arbitrary feature/threshold rule, including
// degenerate ones that leave a side empty.
type SplitEvaluation struct {
	Feature        int     `json:"feature"`
	Threshold      float64 `json:"threshold"`
	ParentImpurity float64 `json:"parent_impurity"`
	LeftImpurity   float64 `json:"left_impurity"`
	RightImpurity  float64 `json:"right_impurity"`
	Weighted       float64 `json:"weighted_impurity"`
	Gain           float64 `json:"gain"`
	NLeft          int     `json:"n_left"`
	NRight         int     `json:"n_right"`
}

// EvaluateSplit scores the rule X[feature] <= threshold on ds.
func EvaluateSplit(ds *Dataset, feature int, threshold float64, criterion Criterion) (SplitEvaluation, error) {
	if ds.NSamples() == 0 {
		return SplitEvaluation{}, errors.NewInvalidDatasetError("EvaluateSplit", "dataset has zero samples")
	}
	if feature < 0 || feature >= ds.NFeatures() {
		return SplitEvaluation{}, errors.NewValidationError("feature", fmt.Sprintf("must be in [0, %d)", ds.NFeatures()), feature)
	}
	if criterion == nil {
		criterion = Gini{}
	}

	idx := allIndices(ds.NSamples())
	left, right := partition(ds, idx, feature, threshold)
	lc := classCounts(ds.Y, left, ds.NClasses)
	rc := classCounts(ds.Y, right, ds.NClasses)
	parent := criterion.Impurity(classCounts(ds.Y, idx, ds.NClasses))
	weighted := weightedImpurity(criterion, lc, rc)

	return SplitEvaluation{
		Feature:        feature,
		Threshold:      threshold,
		ParentImpurity: parent,
		LeftImpurity:   criterion.Impurity(lc),
		RightImpurity:  criterion.Impurity(rc),
		Weighted:       weighted,
		Gain:           parent - weighted,
		NLeft:          len(left),
		NRight:         len(right),
	}, nil
}
