package datasets

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/treelab/pkg/errors"
)

// CSVOptions describes the layout of a CSV file.
type CSVOptions struct {
	// Header skips the first record and returns it as the feature names.
	Header bool
	// LabelColumn is the index of the label column; negative values count
	// from the end, so -1 is the last column.
	LabelColumn int
	// Comma is the field delimiter; zero means ','.
	Comma rune
}

// Table is a dataset read from CSV.
type Table struct {
	X            *mat.Dense
	Y            *mat.Dense
	FeatureNames []string
}

// LoadCSVFile opens path and reads it with LoadCSV.
func LoadCSVFile(path string, opts CSVOptions) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()
	return LoadCSV(f, opts)
}

// LoadCSV reads numeric records from r. Every column other than the label
// column becomes a feature.
func LoadCSV(r io.Reader, opts CSVOptions) (*Table, error) {
	const op = "LoadCSV"

	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1
	if opts.Comma != 0 {
		cr.Comma = opts.Comma
	}

	records, err := cr.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "parse csv")
	}

	var header []string
	if opts.Header && len(records) > 0 {
		header, records = records[0], records[1:]
	}
	if len(records) == 0 {
		return nil, errors.NewInvalidDatasetError(op, "no data rows")
	}

	width := len(records[0])
	if width < 2 {
		return nil, errors.NewInvalidDatasetError(op, "need at least one feature column and a label column")
	}
	labelCol := opts.LabelColumn
	if labelCol < 0 {
		labelCol += width
	}
	if labelCol < 0 || labelCol >= width {
		return nil, errors.NewValidationError("label_column", fmt.Sprintf("must address one of %d columns", width), opts.LabelColumn)
	}

	X := mat.NewDense(len(records), width-1, nil)
	y := mat.NewDense(len(records), 1, nil)
	for i, rec := range records {
		if len(rec) != width {
			return nil, errors.NewInvalidRowError(op, i, fmt.Sprintf("expected %d fields, got %d", width, len(rec)))
		}
		j := 0
		for c, field := range rec {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, errors.NewInvalidRowError(op, i, fmt.Sprintf("column %d: %q is not a number", c, field))
			}
			if c == labelCol {
				y.Set(i, 0, v)
				continue
			}
			X.Set(i, j, v)
			j++
		}
	}

	t := &Table{X: X, Y: y}
	if header != nil {
		for c, name := range header {
			if c != labelCol {
				t.FeatureNames = append(t.FeatureNames, name)
			}
		}
	}
	return t, nil
}
