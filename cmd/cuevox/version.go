package main

import (
	"fmt"
	"strings"

	"github.com/JanMattner/cuevox"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of cuevox",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "cuevox version %s\n", strings.TrimSpace(cuevox.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
