package datasets

import (
	"bytes"
	_ "embed"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/treelab/pkg/errors"
)

//go:embed data/iris.csv
var irisCSV []byte

// IrisClassNames names the labels 0, 1 and 2 of LoadIris.
var IrisClassNames = []string{"setosa", "versicolor", "virginica"}

// LoadIris returns Fisher's Iris data: 150 flowers, 50 per species, with
// sepal length, sepal width, petal length and petal width in cm.
func LoadIris() (*Table, error) {
	return LoadCSV(bytes.NewReader(irisCSV), CSVOptions{Header: true, LabelColumn: -1})
}

// SelectColumns copies the given columns of X, in the given order.
func SelectColumns(X mat.Matrix, cols []int) (*mat.Dense, error) {
	r, c := X.Dims()
	if len(cols) == 0 {
		return nil, errors.NewValidationError("features", "at least one column must be selected", cols)
	}
	seen := make(map[int]bool, len(cols))
	for _, j := range cols {
		if j < 0 || j >= c {
			return nil, errors.NewValidationError("features", fmt.Sprintf("column %d is out of range [0, %d)", j, c), cols)
		}
		if seen[j] {
			return nil, errors.NewValidationError("features", fmt.Sprintf("column %d is selected twice", j), cols)
		}
		seen[j] = true
	}

	out := mat.NewDense(r, len(cols), nil)
	for k, j := range cols {
		out.SetCol(k, mat.Col(nil, j, X))
	}
	return out, nil
}

// Select narrows t to the given feature columns. Feature names follow the
// selection when t has them.
func (t *Table) Select(cols []int) (*Table, error) {
	X, err := SelectColumns(t.X, cols)
	if err != nil {
		return nil, err
	}
	out := &Table{X: X, Y: t.Y}
	if len(t.FeatureNames) > 0 {
		out.FeatureNames = make([]string, len(cols))
		for k, j := range cols {
			out.FeatureNames[k] = t.FeatureNames[j]
		}
	}
	return out, nil
}
