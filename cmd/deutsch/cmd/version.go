package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

const version = "0.3.0"

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of deutsch",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "deutsch v%s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
