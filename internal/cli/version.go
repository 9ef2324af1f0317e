package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"doccheck/internal/platform/buildinfo"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show doccheck version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "doccheck %s\n", buildinfo.Resolve())
			return nil
		},
	}
}
