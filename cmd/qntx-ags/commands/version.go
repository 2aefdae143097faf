package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teranos/qntx-ags/display"
	"github.com/teranos/qntx-ags/version"
)

// VersionCmd represents the version command
var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show qntx-ags version information",
	Long:  `Display version, build time, commit hash, and platform information for the qntx-ags binary.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		info := version.Get()

		if format := display.OutputFormat(cmd); format != display.FormatText {
			return display.Write(cmd.OutOrStdout(), info, format)
		}
		fmt.Fprintln(cmd.OutOrStdout(), info.String())
		fmt.Fprintf(cmd.OutOrStdout(), "AGS edition: %s\n", info.AGSEdition)
		fmt.Fprintf(cmd.OutOrStdout(), "Platform: %s\n", info.Platform)
		fmt.Fprintf(cmd.OutOrStdout(), "Go: %s\n", info.GoVersion)
		return nil
	},
}
