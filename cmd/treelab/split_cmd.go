package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/treelab/pkg/log"
	"github.com/YuminosukeSato/treelab/render"
	"github.com/YuminosukeSato/treelab/sklearn/tree"
)

type splitCmdConfig struct {
	*rootCmdConfig
	data      dataInput
	criterion string
	feature   int
	threshold float64
	plotPath  string
}

func splitCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &splitCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "split",
		Short: "Find or score a split of a dataset",
		Long: `Without --feature, search every feature for the threshold with the largest
impurity decrease. With --feature and --threshold, score that rule instead.
The result is printed as JSON.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Validate(); err != nil {
				return err
			}
			X, y, _, err := config.data.load()
			if err != nil {
				return err
			}
			ds, err := tree.DatasetFromMatrix(X, y, 0)
			if err != nil {
				return err
			}
			criterion, err := tree.CriterionByName(config.criterion)
			if err != nil {
				return err
			}

			var result interface{}
			feature, threshold := config.feature, config.threshold
			if cmd.Flags().Changed("feature") {
				ev, err := tree.EvaluateSplit(ds, feature, threshold, criterion)
				if err != nil {
					return err
				}
				result = ev
			} else {
				best, ok := tree.FindBestSplit(ds, criterion)
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "no split improves impurity")
					return nil
				}
				feature, threshold = best.Feature, best.Threshold
				result = best
			}
			config.logger().Info("Split evaluated",
				log.OperationKey, log.OperationSplit,
				log.FeatureKey, feature,
				log.ThresholdKey, threshold,
			)

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(result); err != nil {
				return err
			}

			if config.plotPath == "" {
				return nil
			}
			p, err := render.Scatter(X, y, render.PlotOptions{Title: "split"})
			if err != nil {
				return err
			}
			if err := render.AddSplitLine(p, feature, threshold); err != nil {
				return err
			}
			return render.Save(p, config.plotPath)
		},
	}
	config.data.addFlags(cmd, true)
	cmd.Flags().StringVar(&config.criterion, "criterion", "gini", "impurity criterion: gini or entropy")
	cmd.Flags().IntVar(&config.feature, "feature", 0, "feature index of the rule to score")
	cmd.Flags().Float64Var(&config.threshold, "threshold", 0, "threshold of the rule to score")
	cmd.Flags().StringVar(&config.plotPath, "plot", "", "path of an image showing the points and the split line (two-feature data only)")
	return cmd
}

func (scc *splitCmdConfig) Validate() error {
	return scc.data.Validate()
}
