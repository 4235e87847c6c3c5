// Package datasets loads, saves and generates the feature/label matrices
// consumed by the tree package.
//
// Features are returned as an n×f *mat.Dense and labels as an n×1 *mat.Dense
// holding integral values, which is what DecisionTreeClassifier.Fit and
// tree.DatasetFromMatrix expect.
package datasets

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/YuminosukeSato/treelab/pkg/errors"
)

// Bounds of the features drawn by MakeThresholdSplit.
const (
	FeatureMin = 0.0
	FeatureMax = 5.0
)

// MakeThresholdSplit draws n points uniformly from [0, 5)², labels each 1 if
// its first feature exceeds threshold and 0 otherwise, then flips the labels
// of nFlip distinct points. The same seed always yields the same data.
func MakeThresholdSplit(n int, threshold float64, nFlip int, seed uint64) (*mat.Dense, *mat.Dense, error) {
	if n < 1 {
		return nil, nil, errors.NewValidationError("n", "must be >= 1", n)
	}
	if nFlip < 0 || nFlip > n {
		return nil, nil, errors.NewValidationError("n_flip", "must be in [0, n]", nFlip)
	}

	src := rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
	uniform := distuv.Uniform{Min: FeatureMin, Max: FeatureMax, Src: src}

	X := mat.NewDense(n, 2, nil)
	y := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		X.Set(i, 0, uniform.Rand())
		X.Set(i, 1, uniform.Rand())
		if X.At(i, 0) > threshold {
			y.Set(i, 0, 1)
		}
	}

	rng := rand.New(src)
	for _, i := range rng.Perm(n)[:nFlip] {
		y.Set(i, 0, 1-y.At(i, 0))
	}
	return X, y, nil
}
