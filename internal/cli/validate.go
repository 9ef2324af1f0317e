package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"doccheck/internal/app"
	"doccheck/internal/consistency"
	"doccheck/internal/platform/config"
	"doccheck/internal/textextract"
)

// ErrValidationFailed is returned when the verdict should fail the process.
var ErrValidationFailed = errors.New("validation failed")

func newValidateCmd(logFor func(*cobra.Command) *slog.Logger) *cobra.Command {
	var (
		shipmentPath string
		documentPath string
		name         string
		policyPath   string
		jsonOut      bool
		strict       bool
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a document against a shipment file",
		Long: "Extract text from the document, compare it with the shipment described in a YAML file and print the verdict.\n" +
			"Exits non-zero on FAIL, or on WARNING with --strict.",
		Example: "  doccheck validate --shipment shipment.yaml --document invoice.pdf",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logFor(cmd)

			shipment, err := loadShipment(shipmentPath)
			if err != nil {
				return err
			}

			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			if policyPath != "" {
				cfg.PolicyFile = policyPath
			}
			// One-shot runs have no callers to throttle.
			cfg.RateLimit = config.RateLimitConfig{}

			pipeline, err := app.Build(ctx, cfg, log, nil)
			if err != nil {
				return fmt.Errorf("build validation pipeline: %w", err)
			}
			defer pipeline.Close()

			extractor := textextract.New(
				textextract.WithTesseract(cfg.TesseractPath),
				textextract.WithLogger(log),
			)
			text, err := extractor.Extract(ctx, documentPath)
			if err != nil {
				return fmt.Errorf("reading document: %w", err)
			}

			if name == "" {
				name = filepath.Base(documentPath)
			}
			result := pipeline.Evaluator.Validate(ctx, shipment, text, name)

			if jsonOut {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(result); err != nil {
					return err
				}
			} else if err := writeString(cmd.OutOrStdout(), RenderResult(result)); err != nil {
				return err
			}

			switch result.Status {
			case consistency.StatusFail:
				return fmt.Errorf("%w: %d issue(s)", ErrValidationFailed, len(result.Issues))
			case consistency.StatusWarning:
				if strict {
					return fmt.Errorf("%w (strict): %d warning(s)", ErrValidationFailed, len(result.Issues))
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&shipmentPath, "shipment", "s", "", "YAML file describing the declared shipment")
	cmd.Flags().StringVarP(&documentPath, "document", "d", "", "Document to check (.pdf, .txt or an image)")
	cmd.Flags().StringVar(&name, "name", "", "Document name reported in the result (defaults to the file name)")
	cmd.Flags().StringVar(&policyPath, "policy", "", "YAML file overriding comparison thresholds")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the result as JSON")
	cmd.Flags().BoolVar(&strict, "strict", false, "Fail on warnings")
	_ = cmd.MarkFlagRequired("shipment")
	_ = cmd.MarkFlagRequired("document")

	return cmd
}

// loadShipment reads a ShipmentRecord from YAML. Unknown keys are rejected.
func loadShipment(path string) (consistency.ShipmentRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return consistency.ShipmentRecord{}, fmt.Errorf("reading shipment file: %w", err)
	}
	var shipment consistency.ShipmentRecord
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&shipment); err != nil && !errors.Is(err, io.EOF) {
		return consistency.ShipmentRecord{}, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	return shipment, nil
}
