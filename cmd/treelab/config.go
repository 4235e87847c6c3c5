package main

import (
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"

	"github.com/YuminosukeSato/treelab/pkg/errors"
	"github.com/YuminosukeSato/treelab/sklearn/tree"
)

// buildFlags holds the growth flags of the fit command. Values from a YAML
// config file are applied first; flags set on the command line win.
type buildFlags struct {
	configPath string
	values     tree.BuildConfig
}

func (b *buildFlags) addFlags(cmd *cobra.Command) {
	defaults := tree.DefaultBuildConfig()
	cmd.Flags().StringVarP(&b.configPath, "config", "c", "", "path to a YAML file with max_depth, min_samples_leaf, min_samples_split, min_impurity_gain and criterion")
	cmd.Flags().IntVar(&b.values.MaxDepth, "max-depth", defaults.MaxDepth, "maximum depth of the tree, -1 for unbounded")
	cmd.Flags().IntVar(&b.values.MinSamplesLeaf, "min-samples-leaf", defaults.MinSamplesLeaf, "minimum number of samples each side of a split must keep")
	cmd.Flags().IntVar(&b.values.MinSamplesSplit, "min-samples-split", defaults.MinSamplesSplit, "minimum number of samples a node needs to be split")
	cmd.Flags().Float64Var(&b.values.MinImpurityGain, "min-impurity-gain", defaults.MinImpurityGain, "a split is kept only if its gain is strictly greater than this")
	cmd.Flags().StringVar(&b.values.Criterion, "criterion", defaults.Criterion, "impurity criterion: gini or entropy")
}

// resolve merges the config file and the changed flags and validates the result.
func (b *buildFlags) resolve(cmd *cobra.Command) (tree.BuildConfig, error) {
	cfg := tree.DefaultBuildConfig()
	if b.configPath != "" {
		fileCfg, err := readBuildConfig(b.configPath)
		if err != nil {
			return cfg, err
		}
		cfg = fileCfg
	}

	flags := cmd.Flags()
	if flags.Changed("max-depth") {
		cfg.MaxDepth = b.values.MaxDepth
	}
	if flags.Changed("min-samples-leaf") {
		cfg.MinSamplesLeaf = b.values.MinSamplesLeaf
	}
	if flags.Changed("min-samples-split") {
		cfg.MinSamplesSplit = b.values.MinSamplesSplit
	}
	if flags.Changed("min-impurity-gain") {
		cfg.MinImpurityGain = b.values.MinImpurityGain
	}
	if flags.Changed("criterion") {
		cfg.Criterion = b.values.Criterion
	}
	return cfg, cfg.Validate()
}

// readBuildConfig parses a YAML build config. Keys left out keep their
// default values; unknown keys are rejected.
func readBuildConfig(path string) (tree.BuildConfig, error) {
	cfg := tree.DefaultBuildConfig()
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "read config %s", path)
	}
	if err := yaml.UnmarshalStrict(raw, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parse config %s", path)
	}
	return cfg, nil
}
