package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/treelab/pkg/errors"
	"github.com/YuminosukeSato/treelab/pkg/log"
)

type rootCmdConfig struct {
	logLevel string
	verbose  bool

	// loggers is set by setupLogging when left nil.
	loggers log.LoggerProvider
}

func main() {
	if err := errors.SafeExecute("treelab", cliParser().Execute); err != nil {
		log.GetLoggerWithName("cli").Debug("Command failed",
			log.ErrorCodeKey, errorCode(err),
			log.ErrorTypeKey, fmt.Sprintf("%T", errors.UnwrapAll(err)),
		)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func cliParser() *cobra.Command {
	return newRootCmd(nil)
}

// newRootCmd builds the command tree. Loggers come from loggers, or from the
// process-wide zerolog logger when loggers is nil.
func newRootCmd(loggers log.LoggerProvider) *cobra.Command {
	config := &rootCmdConfig{loggers: loggers}
	rootCmd := &cobra.Command{
		Use:   "treelab",
		Short: "treelab grows and inspects Gini decision trees",
		Long: `A tool to generate toy datasets, find the best split of a dataset, grow
classification trees, use them to predict labels and draw them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.setupLogging(cmd)
		},
	}
	rootCmd.PersistentFlags().StringVar(&config.logLevel, "log-level", "warn", "log level written to STDERR: debug, info, warn or error")
	rootCmd.PersistentFlags().BoolVarP(&config.verbose, "verbose", "v", false, "shorthand for --log-level=info")
	rootCmd.AddCommand(
		versionCmd(),
		generateCmd(config),
		splitCmd(config),
		fitCmd(config),
		predictCmd(config),
		renderCmd(config),
		boundaryCmd(config),
	)
	return rootCmd
}

func (rc *rootCmdConfig) setupLogging(cmd *cobra.Command) error {
	level := rc.logLevel
	if rc.verbose && !cmd.Flags().Changed("log-level") {
		level = "info"
	}
	if rc.loggers != nil {
		lvl, err := log.ParseLevel(level)
		if err != nil {
			return err
		}
		rc.loggers.SetLevel(lvl)
		return nil
	}
	if err := log.SetupLogger(cmd.ErrOrStderr(), level); err != nil {
		return err
	}
	rc.loggers = log.GlobalProvider()
	return nil
}

func (rc *rootCmdConfig) logger() log.Logger {
	if rc.loggers == nil {
		return log.GetLoggerWithName("cli")
	}
	return rc.loggers.GetLoggerWithName("cli")
}

// errorCode classifies err for the failure log record.
func errorCode(err error) string {
	var (
		notFitted  *errors.NotFittedError
		dimension  *errors.DimensionError
		dataset    *errors.InvalidDatasetError
		validation *errors.ValidationError
	)
	switch {
	case errors.As(err, &notFitted):
		return log.ErrorNotFitted
	case errors.As(err, &dimension):
		return log.ErrorDimensionMismatch
	case errors.As(err, &dataset):
		return log.ErrorInvalidDataset
	case errors.As(err, &validation):
		return log.ErrorInvalidConfig
	}
	return ""
}
