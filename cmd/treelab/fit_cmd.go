package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/treelab/metrics"
	"github.com/YuminosukeSato/treelab/pkg/log"
	"github.com/YuminosukeSato/treelab/sklearn/tree"
)

type fitCmdConfig struct {
	*rootCmdConfig
	data         dataInput
	build        buildFlags
	output       string
	featureNames string
	showText     bool
}

func fitCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &fitCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "fit",
		Short: "Grow a tree from a dataset",
		Long: `Grow a classification tree from a dataset, report its training accuracy and
write it to a JSON file (or gob when the output ends in .gob).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Validate(); err != nil {
				return err
			}
			cfg, err := config.build.resolve(cmd)
			if err != nil {
				return err
			}
			X, y, names, err := config.data.load()
			if err != nil {
				return err
			}
			if config.featureNames != "" {
				names = splitNames(config.featureNames)
			}
			ds, err := tree.DatasetFromMatrix(X, y, 0)
			if err != nil {
				return err
			}

			logger := config.logger()
			builder, err := tree.NewBuilder(cfg, logger)
			if err != nil {
				return err
			}
			start := time.Now()
			t, err := builder.Build(ds)
			if err != nil {
				return err
			}
			logger.Info("Tree grown",
				log.OperationKey, log.OperationFit,
				log.SamplesKey, ds.NSamples(),
				log.DepthKey, t.Depth(),
				log.LeavesKey, t.NLeaves(),
				log.DurationMsKey, time.Since(start).Milliseconds(),
			)

			if err := saveTree(t, config.output); err != nil {
				return err
			}
			return report(cmd, logger, t, ds, names, config.showText)
		},
	}
	config.data.addFlags(cmd, true)
	config.build.addFlags(cmd)
	cmd.Flags().StringVarP(&config.output, "output", "o", "", "path of the tree file to write (required)")
	cmd.Flags().StringVar(&config.featureNames, "feature-names", "", "comma separated feature names used in the text listing")
	cmd.Flags().BoolVar(&config.showText, "text", false, "print the tree as an indented rule listing")
	return cmd
}

func (fcc *fitCmdConfig) Validate() error {
	if fcc.output == "" {
		return fmt.Errorf("required output flag was not set")
	}
	return fcc.data.Validate()
}

// report prints the shape of t and its accuracy on the training set.
func report(cmd *cobra.Command, logger log.Logger, t *tree.Tree, ds *tree.Dataset, names []string, showText bool) error {
	out := cmd.OutOrStdout()

	pred, err := t.PredictBatch(ds.X, 0)
	if err != nil {
		return err
	}
	cm, err := metrics.ConfusionMatrix(ds.Y, pred, ds.NClasses)
	if err != nil {
		return err
	}
	acc := mat.Trace(cm) / float64(ds.NSamples())
	logger.Info("Training set scored",
		log.OperationKey, log.OperationScore,
		log.AccuracyKey, acc,
	)

	fmt.Fprintf(out, "depth: %d, leaves: %d, nodes: %d\n", t.Depth(), t.NLeaves(), t.NodeCount())
	fmt.Fprintf(out, "training accuracy: %.4f\n", acc)
	fmt.Fprintf(out, "confusion matrix:\n%v\n", mat.Formatted(cm))
	for k, r := range metrics.RecallPerClass(cm) {
		fmt.Fprintf(out, "recall class %d: %.4f\n", k, r)
	}
	fmt.Fprintf(out, "feature importances: %v\n", t.FeatureImportances())

	if !showText {
		return nil
	}
	if names != nil && len(names) != t.NFeatures {
		names = nil
	}
	text, err := tree.ExportText(t, names)
	if err != nil {
		return err
	}
	fmt.Fprint(out, text)
	return nil
}
