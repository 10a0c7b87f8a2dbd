package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "jsongraph %s\n", version)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "commit: %s\n", commit)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "built: %s\n", date)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "go: %s (%s/%s)\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
		},
	}

	return cmd
}
