package tree

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/treelab/pkg/errors"
)

// Dataset is a set of N samples with F real-valued features and one label in
// [0, NClasses) each. X and Y are views of the caller's slices; Build reads
// them but keeps no reference once it returns.
type Dataset struct {
	X        [][]float64
	Y        []int
	NClasses int
}

// NewDataset validates X and y and wraps them as a Dataset. nClasses is the
// label cardinality K; pass 0 to use max(y)+1. A dataset with zero samples is
// valid here but rejected by Build.
func NewDataset(X [][]float64, y []int, nClasses int) (*Dataset, error) {
	const op = "NewDataset"

	if len(X) != len(y) {
		return nil, errors.NewDimensionError(op, len(X), len(y), 0)
	}

	if nClasses <= 0 {
		for _, label := range y {
			if label+1 > nClasses {
				nClasses = label + 1
			}
		}
		if nClasses == 0 {
			nClasses = 1
		}
	}

	nFeatures := 0
	if len(X) > 0 {
		nFeatures = len(X[0])
		if nFeatures == 0 {
			return nil, errors.NewInvalidRowError(op, 0, "sample has no features")
		}
	}

	for i, row := range X {
		if len(row) != nFeatures {
			return nil, errors.NewInvalidRowError(op, i, fmt.Sprintf("expected %d features, got %d", nFeatures, len(row)))
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, errors.NewInvalidRowError(op, i, fmt.Sprintf("feature %d is not finite (%v)", j, v))
			}
		}
		if y[i] < 0 || y[i] >= nClasses {
			return nil, errors.NewInvalidRowError(op, i, fmt.Sprintf("label %d outside [0, %d)", y[i], nClasses))
		}
	}

	return &Dataset{X: X, Y: y, NClasses: nClasses}, nil
}

// DatasetFromMatrix copies a feature matrix and a label column vector into a
// Dataset. Labels must be non-negative integers stored as float64.
func DatasetFromMatrix(X, y mat.Matrix, nClasses int) (*Dataset, error) {
	const op = "DatasetFromMatrix"

	rows, _ := X.Dims()
	yRows, yCols := y.Dims()
	if rows != yRows {
		return nil, errors.NewDimensionError(op, rows, yRows, 0)
	}
	if yCols != 1 {
		return nil, errors.NewDimensionError(op, 1, yCols, 1)
	}

	xs := make([][]float64, rows)
	labels := make([]int, rows)
	for i := 0; i < rows; i++ {
		xs[i] = mat.Row(nil, i, X)
		v := y.At(i, 0)
		if v != math.Trunc(v) || v < 0 {
			return nil, errors.NewInvalidRowError(op, i, fmt.Sprintf("label %v is not a non-negative integer", v))
		}
		labels[i] = int(v)
	}

	return NewDataset(xs, labels, nClasses)
}

// NSamples returns N.
func (d *Dataset) NSamples() int { return len(d.X) }

// NFeatures returns F, or 0 for an empty dataset.
func (d *Dataset) NFeatures() int {
	if len(d.X) == 0 {
		return 0
	}
	return len(d.X[0])
}

// ClassCounts returns the number of samples of each class.
func (d *Dataset) ClassCounts() []int {
	return classCounts(d.Y, allIndices(len(d.Y)), d.NClasses)
}

func allIndices(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}

func classCounts(y []int, idx []int, nClasses int) []int {
	counts := make([]int, nClasses)
	for _, i := range idx {
		counts[y[i]]++
	}
	return counts
}

// majorityClass returns the most frequent class; ties go to the lowest label.
func majorityClass(counts []int) int {
	best := 0
	for k, c := range counts {
		if c > counts[best] {
			best = k
		}
	}
	return best
}
