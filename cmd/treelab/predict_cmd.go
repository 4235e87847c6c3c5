package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/treelab/datasets"
	"github.com/YuminosukeSato/treelab/metrics"
	"github.com/YuminosukeSato/treelab/pkg/log"
	"github.com/YuminosukeSato/treelab/sklearn/tree"
)

type predictCmdConfig struct {
	*rootCmdConfig
	treeInput string
	data      dataInput
	points    []string
	output    string
	showPath  bool
}

func predictCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &predictCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict labels with a tree",
		Long: `Predict the label of each row of a dataset, or of points given as
comma separated values, with a tree written by fit. When labels are available
the accuracy is reported too.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Validate(); err != nil {
				return err
			}
			t, err := loadTree(config.treeInput)
			if err != nil {
				return err
			}
			rows, y, err := config.rows()
			if err != nil {
				return err
			}

			pred, err := t.PredictBatch(rows, 0)
			if err != nil {
				return err
			}
			config.logger().Info("Prediction completed",
				log.OperationKey, log.OperationPredict,
				log.PredsKey, len(pred),
			)

			out := cmd.OutOrStdout()
			for i, row := range rows {
				fmt.Fprintf(out, "%v -> %d\n", row, pred[i])
				if config.showPath {
					if err := printPath(cmd, t, row); err != nil {
						return err
					}
				}
			}

			col := mat.NewDense(len(pred), 1, nil)
			for i, k := range pred {
				col.Set(i, 0, float64(k))
			}
			if y != nil {
				acc, err := metrics.AccuracyScore(y, col)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "accuracy: %.4f\n", acc)
			}

			if config.output == "" {
				return nil
			}
			return datasets.SaveNpy(config.output, col)
		},
	}
	cmd.Flags().StringVarP(&config.treeInput, "tree", "t", "", "path to a tree file written by fit (required)")
	config.data.addFlags(cmd, false)
	cmd.Flags().StringArrayVarP(&config.points, "point", "p", nil, "a point to classify as comma separated feature values (repeatable)")
	cmd.Flags().StringVarP(&config.output, "output", "o", "", "path of a .npy file receiving the predicted labels")
	cmd.Flags().BoolVar(&config.showPath, "path", false, "explain each prediction with its decision path")
	return cmd
}

func (pcc *predictCmdConfig) Validate() error {
	if pcc.treeInput == "" {
		return fmt.Errorf("required tree flag was not set")
	}
	if len(pcc.points) > 0 {
		if pcc.data.given() {
			return fmt.Errorf("the point flag cannot be combined with a dataset")
		}
		return nil
	}
	return pcc.data.Validate()
}

func (pcc *predictCmdConfig) rows() ([][]float64, mat.Matrix, error) {
	if len(pcc.points) > 0 {
		rows := make([][]float64, len(pcc.points))
		for i, p := range pcc.points {
			row, err := parsePoint(p)
			if err != nil {
				return nil, nil, err
			}
			rows[i] = row
		}
		return rows, nil, nil
	}

	X, y, _, err := pcc.data.load()
	if err != nil {
		return nil, nil, err
	}
	n, _ := X.Dims()
	rows := make([][]float64, n)
	for i := range rows {
		rows[i] = mat.Row(nil, i, X)
	}
	if y == nil {
		return rows, nil, nil
	}
	return rows, y, nil
}

func parsePoint(s string) ([]float64, error) {
	fields := strings.Split(s, ",")
	row := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, fmt.Errorf("point %q: %q is not a number", s, f)
		}
		row[i] = v
	}
	return row, nil
}

// printPath lists the questions asked on the way to the leaf of row.
func printPath(cmd *cobra.Command, t *tree.Tree, row []float64) error {
	path, err := t.DecisionPath(row)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for step, n := range path {
		if n.Leaf {
			fmt.Fprintf(out, "  %d. leaf %d: predict %d (samples = %d, value = %v)\n", step+1, n.ID, n.Label, n.Samples, n.ClassCounts)
			continue
		}
		answer := "True"
		if row[n.Feature] > n.Threshold {
			answer = "False"
		}
		fmt.Fprintf(out, "  %d. X%d (%.2f) <= %.2f ? %s\n", step+1, n.Feature+1, row[n.Feature], n.Threshold, answer)
	}
	return nil
}
