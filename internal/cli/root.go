// Package cli implements the doccheck command line: validating a document
// against a shipment file, inspecting extracted fields and minting service
// tokens for the HTTP API.
package cli

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"doccheck/internal/platform/logger"
)

func newRootCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:           "doccheck",
		Short:         "Check trade documents against shipment data",
		Long:          "doccheck extracts shipment facts from invoices, packing lists and certificates and reports where they disagree with the declared shipment.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log pipeline details to stderr")

	logFor := func(c *cobra.Command) *slog.Logger {
		if !verbose {
			return slog.New(slog.DiscardHandler)
		}
		return logger.NewWithWriter(c.ErrOrStderr(), "debug", "text")
	}

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newValidateCmd(logFor))
	cmd.AddCommand(newExtractCmd(logFor))
	cmd.AddCommand(newTokenCmd())
	return cmd
}

// NewRootCmdForTest returns the root command for testing.
func NewRootCmdForTest() *cobra.Command {
	return newRootCmd()
}

func Execute() error {
	return newRootCmd().Execute()
}

func writeString(w io.Writer, s string) error {
	_, err := io.WriteString(w, s)
	return err
}
