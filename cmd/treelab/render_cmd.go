package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/treelab/pkg/log"
	"github.com/YuminosukeSato/treelab/render"
)

type renderCmdConfig struct {
	*rootCmdConfig
	treeInput    string
	output       string
	featureNames string
	classNames   string
	precision    int
}

func renderCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &renderCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Draw a tree with Graphviz",
		Long: `Draw a tree written by fit. The image format follows the extension of the
output file: png, svg, jpg or dot.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Validate(); err != nil {
				return err
			}
			t, err := loadTree(config.treeInput)
			if err != nil {
				return err
			}
			opts := render.GraphOptions{
				FeatureNames: splitNames(config.featureNames),
				ClassNames:   splitNames(config.classNames),
				Precision:    config.precision,
			}
			if err := render.RenderTreeFile(t, opts, config.output); err != nil {
				return err
			}
			config.logger().Info("Tree rendered",
				log.OperationKey, log.OperationRender,
				log.PathKey, config.output,
				log.NodeCountKey, t.NodeCount(),
			)
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", config.output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&config.treeInput, "tree", "t", "", "path to a tree file written by fit (required)")
	cmd.Flags().StringVarP(&config.output, "output", "o", "", "path of the image to write (required)")
	cmd.Flags().StringVar(&config.featureNames, "feature-names", "", "comma separated feature names")
	cmd.Flags().StringVar(&config.classNames, "class-names", "", "comma separated class names")
	cmd.Flags().IntVar(&config.precision, "precision", 2, "decimals printed for thresholds and impurities")
	return cmd
}

func (rcc *renderCmdConfig) Validate() error {
	if rcc.treeInput == "" {
		return fmt.Errorf("required tree flag was not set")
	}
	if rcc.output == "" {
		return fmt.Errorf("required output flag was not set")
	}
	if rcc.precision < 0 {
		return fmt.Errorf("precision must be >= 0")
	}
	return nil
}
