package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/treelab/datasets"
	"github.com/YuminosukeSato/treelab/pkg/log"
)

type generateCmdConfig struct {
	*rootCmdConfig
	n         int
	threshold float64
	flips     int
	seed      uint64
	xOutput   string
	yOutput   string
}

func generateCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &generateCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a two-feature toy dataset",
		Long: `Draw points uniformly from [0, 5)x[0, 5), label them 1 when the first
feature exceeds the threshold, flip a few labels and write the result as .npy files.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Validate(); err != nil {
				return err
			}
			X, y, err := datasets.MakeThresholdSplit(config.n, config.threshold, config.flips, config.seed)
			if err != nil {
				return err
			}
			if err := datasets.SaveNpy(config.xOutput, X); err != nil {
				return err
			}
			if err := datasets.SaveNpy(config.yOutput, y); err != nil {
				return err
			}
			config.logger().Info("Dataset generated",
				log.SamplesKey, config.n,
				log.RandomSeedKey, config.seed,
				log.PathKey, config.xOutput,
			)
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d samples to %s and %s\n", config.n, config.xOutput, config.yOutput)
			return nil
		},
	}
	cmd.Flags().IntVarP(&config.n, "samples", "n", 50, "number of samples")
	cmd.Flags().Float64Var(&config.threshold, "threshold", 2.5, "first-feature value above which points are labelled 1")
	cmd.Flags().IntVar(&config.flips, "flip", 5, "number of labels flipped as noise")
	cmd.Flags().Uint64Var(&config.seed, "seed", 42, "random seed")
	cmd.Flags().StringVar(&config.xOutput, "x-out", "", "path of the feature .npy file to write (required)")
	cmd.Flags().StringVar(&config.yOutput, "y-out", "", "path of the label .npy file to write (required)")
	return cmd
}

func (gcc *generateCmdConfig) Validate() error {
	if gcc.xOutput == "" {
		return fmt.Errorf("required x-out flag was not set")
	}
	if gcc.yOutput == "" {
		return fmt.Errorf("required y-out flag was not set")
	}
	return nil
}
