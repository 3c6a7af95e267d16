package cmd

import (
	"github.com/spf13/cobra"

	"github.com/NasaHari/bitsilicon-dd-assignments/driver"
)

var scriptCmd = &cobra.Command{
	Use:   "script",
	Short: "Print the reference run as a YAML script that run --script accepts.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return driver.ReferenceScript().WriteYAML(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(scriptCmd)
}
