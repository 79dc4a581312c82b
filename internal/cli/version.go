package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/soochak/internal/version"
)

// NewVersionCommand creates the version command.
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  "Print the version, commit, and build date of soochak.",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "soochak %s (commit: %s, built: %s)\n",
				version.Version, version.Commit, version.Date)
		},
	}
}
