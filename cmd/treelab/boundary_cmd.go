package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/treelab/datasets"
	"github.com/YuminosukeSato/treelab/pkg/log"
	"github.com/YuminosukeSato/treelab/render"
)

type boundaryCmdConfig struct {
	*rootCmdConfig
	treeInput    string
	data         dataInput
	output       string
	title        string
	featureNames string
	classNames   string
	step         float64
	margin       float64
	nJobs        int
}

func boundaryCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &boundaryCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "boundary",
		Short: "Plot the decision regions of a two-feature tree",
		Long: `Shade the region each class occupies under a two-feature tree and overlay
the labelled points of a dataset. The image format follows the extension of
the output file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Validate(); err != nil {
				return err
			}
			t, err := loadTree(config.treeInput)
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
			classNames := splitNames(config.classNames)
			if classNames == nil && config.data.iris {
				classNames = datasets.IrisClassNames
			}
			p, err := render.DecisionBoundary(t, X, y, render.PlotOptions{
				Title:        config.title,
				FeatureNames: names,
				ClassNames:   classNames,
				Step:         config.step,
				Margin:       config.margin,
				NJobs:        config.nJobs,
			})
			if err != nil {
				return err
			}
			if err := render.Save(p, config.output); err != nil {
				return err
			}
			config.logger().Info("Decision boundary plotted",
				log.OperationKey, log.OperationRender,
				log.PathKey, config.output,
			)
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", config.output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&config.treeInput, "tree", "t", "", "path to a tree file written by fit (required)")
	config.data.addFlags(cmd, true)
	cmd.Flags().StringVarP(&config.output, "output", "o", "", "path of the image to write (required)")
	cmd.Flags().StringVar(&config.title, "title", "decision boundary", "plot title")
	cmd.Flags().StringVar(&config.featureNames, "feature-names", "", "comma separated axis labels")
	cmd.Flags().StringVar(&config.classNames, "class-names", "", "comma separated legend entries")
	cmd.Flags().Float64Var(&config.step, "step", render.DefaultStep, "mesh step")
	cmd.Flags().Float64Var(&config.margin, "margin", render.DefaultMargin, "padding around the data")
	cmd.Flags().IntVar(&config.nJobs, "n-jobs", 0, "goroutines used to predict the mesh, 0 for one per CPU")
	return cmd
}

func (bcc *boundaryCmdConfig) Validate() error {
	if bcc.treeInput == "" {
		return fmt.Errorf("required tree flag was not set")
	}
	if bcc.output == "" {
		return fmt.Errorf("required output flag was not set")
	}
	if bcc.step <= 0 {
		return fmt.Errorf("step must be > 0")
	}
	return bcc.data.Validate()
}
