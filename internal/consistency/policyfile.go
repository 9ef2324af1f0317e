package consistency

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	dErrors "doccheck/pkg/domain-errors"
)

// LoadThresholds reads threshold overrides from a YAML file. Keys left out of
// the file keep their default value. An empty path returns the defaults.
func LoadThresholds(path string) (Thresholds, error) {
	t := DefaultThresholds()
	if path == "" {
		return t, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Thresholds{}, fmt.Errorf("reading policy file: %w", err)
	}
	return ParseThresholds(data)
}

// ParseThresholds decodes YAML threshold overrides on top of the defaults.
// Unknown keys are rejected so a misspelt threshold cannot silently fall back.
func ParseThresholds(data []byte) (Thresholds, error) {
	t := DefaultThresholds()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&t); err != nil && !errors.Is(err, io.EOF) {
		return Thresholds{}, dErrors.Wrap(err, dErrors.CodeValidation, "invalid policy file")
	}
	if err := validateThresholds(t); err != nil {
		return Thresholds{}, err
	}
	return t, nil
}
