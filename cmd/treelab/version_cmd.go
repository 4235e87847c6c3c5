package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

const (
	// VersionMajor is the major number in treelab's version
	VersionMajor = 0
	// VersionMinor is the minor number in treelab's version
	VersionMinor = 3
	// VersionPatch is the patch number in treelab's version
	VersionPatch = 0
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of treelab",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "treelab v%d.%d.%d\n", VersionMajor, VersionMinor, VersionPatch)
		},
	}
}
