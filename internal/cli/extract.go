package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"doccheck/internal/extraction"
	"doccheck/internal/platform/config"
	"doccheck/internal/textextract"
)

func newExtractCmd(logFor func(*cobra.Command) *slog.Logger) *cobra.Command {
	var (
		documentPath string
		jsonOut      bool
		showText     bool
	)

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Show the shipment fields found in a document",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			extractor := textextract.New(
				textextract.WithTesseract(cfg.TesseractPath),
				textextract.WithLogger(logFor(cmd)),
			)
			text, err := extractor.Extract(cmd.Context(), documentPath)
			if err != nil {
				return fmt.Errorf("reading document: %w", err)
			}
			fields := extraction.Extract(text)

			if jsonOut {
				out := map[string]any{"fields": fields.Map()}
				if showText {
					out["text"] = text
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}
			if err := writeString(cmd.OutOrStdout(), RenderFields(fields)); err != nil {
				return err
			}
			if showText {
				return writeString(cmd.OutOrStdout(), "\n"+text+"\n")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&documentPath, "document", "d", "", "Document to read (.pdf, .txt or an image)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print fields as JSON")
	cmd.Flags().BoolVar(&showText, "text", false, "Also print the normalized document text")
	_ = cmd.MarkFlagRequired("document")

	return cmd
}
