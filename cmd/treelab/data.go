package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/treelab/datasets"
)

// dataInput is the set of flags shared by commands that read a dataset,
// either as a pair of .npy files, a single CSV file or the bundled Iris data.
type dataInput struct {
	xPath       string
	yPath       string
	csvPath     string
	header      bool
	labelColumn int
	iris        bool
	features    []int
	noLabels    bool
}

func (d *dataInput) addFlags(cmd *cobra.Command, labelsRequired bool) {
	cmd.Flags().StringVar(&d.xPath, "x", "", "path to a .npy file with the feature matrix")
	cmd.Flags().StringVar(&d.yPath, "y", "", "path to a .npy file with the label vector")
	cmd.Flags().StringVar(&d.csvPath, "csv", "", "path to a CSV file with features and a label column")
	cmd.Flags().BoolVar(&d.header, "header", false, "the CSV file starts with a header row")
	cmd.Flags().IntVar(&d.labelColumn, "label-column", -1, "index of the CSV label column, negative values count from the end")
	cmd.Flags().BoolVar(&d.iris, "iris", false, "use the bundled Iris dataset (4 features, 3 classes)")
	cmd.Flags().IntSliceVar(&d.features, "features", nil, "feature columns to keep, in order, e.g. 2,3")
	d.noLabels = !labelsRequired
}

// given reports whether any data source flag was set.
func (d *dataInput) given() bool {
	return d.csvPath != "" || d.xPath != "" || d.iris
}

func (d *dataInput) Validate() error {
	if d.iris {
		if d.csvPath != "" || d.xPath != "" || d.yPath != "" {
			return fmt.Errorf("the iris flag cannot be combined with the csv, x and y flags")
		}
		return nil
	}
	switch {
	case d.csvPath != "" && (d.xPath != "" || d.yPath != ""):
		return fmt.Errorf("the csv flag cannot be combined with the x and y flags")
	case d.csvPath == "" && d.xPath == "":
		return fmt.Errorf("one of the csv, x or iris flags must be set")
	case d.csvPath == "" && d.yPath == "" && !d.noLabels:
		return fmt.Errorf("required y flag was not set")
	}
	return nil
}

// load returns the features, the labels (nil when none were given) and the
// feature names found in a CSV header, narrowed to the features flag.
func (d *dataInput) load() (*mat.Dense, *mat.Dense, []string, error) {
	table, err := d.table()
	if err != nil {
		return nil, nil, nil, err
	}
	if len(d.features) > 0 {
		if table, err = table.Select(d.features); err != nil {
			return nil, nil, nil, err
		}
	}
	return table.X, table.Y, table.FeatureNames, nil
}

func (d *dataInput) table() (*datasets.Table, error) {
	switch {
	case d.iris:
		return datasets.LoadIris()
	case d.csvPath != "":
		return datasets.LoadCSVFile(d.csvPath, datasets.CSVOptions{Header: d.header, LabelColumn: d.labelColumn})
	}

	X, err := datasets.LoadNpy(d.xPath)
	if err != nil {
		return nil, err
	}
	if d.yPath == "" {
		return &datasets.Table{X: X}, nil
	}
	y, err := datasets.LoadNpy(d.yPath)
	if err != nil {
		return nil, err
	}
	return &datasets.Table{X: X, Y: y}, nil
}

func splitNames(s string) []string {
	if s == "" {
		return nil
	}
	names := strings.Split(s, ",")
	for i := range names {
		names[i] = strings.TrimSpace(names[i])
	}
	return names
}

// nClassesOf returns max(y)+1.
func nClassesOf(y mat.Matrix) int {
	n, _ := y.Dims()
	k := 0
	for i := 0; i < n; i++ {
		if v := int(y.At(i, 0)); v+1 > k {
			k = v + 1
		}
	}
	return k
}
