package cli_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doccheck/internal/cli"
	"doccheck/internal/consistency"
	jwttoken "doccheck/internal/jwt_token"
)

const invoice = `COMMERCIAL INVOICE
Invoice Number: INV-2024-002
Product Description: Widget Manufacturing Equipment
HS Code: 847130
Quantity: 50
Gross Weight: 25 kg
Country of Origin: China
Country of Destination: USA
Package Type: Carton
Total Value: $75,000 USD
This is a detailed commercial invoice with all required information included.
`

const shipmentYAML = `hs_code: "847130"
product_description: Widget Manufacturing Equipment
quantity: "50"
weight: "25"
origin_country: China
destination_country: USA
package_type: Carton
`

// isolate keeps the developer's environment out of the pipeline.
func isolate(t *testing.T) string {
	t.Helper()
	t.Setenv("EMBEDDING_PROVIDER", "none")
	t.Setenv("REDIS_URL", "")
	t.Setenv("DOCCHECK_POLICY_FILE", "")
	t.Setenv("SERVICE_JWT_KEY", "")
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "invoice.txt"), []byte(invoice), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "shipment.yaml"), []byte(shipmentYAML), 0o600))
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := cli.NewRootCmdForTest()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func writeShipment(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "override.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "doccheck "))
}

func TestValidateCommand_PassJSON(t *testing.T) {
	dir := isolate(t)

	out, err := run(t, "validate",
		"--shipment", filepath.Join(dir, "shipment.yaml"),
		"--document", filepath.Join(dir, "invoice.txt"),
		"--json")
	require.NoError(t, err)

	var result consistency.ValidationResult
	require.NoError(t, json.Unmarshal([]byte(out), &result), "output should be valid JSON")
	assert.Equal(t, consistency.StatusPass, result.Status)
	assert.Equal(t, "invoice.txt", result.DocumentName)
	assert.Empty(t, result.Issues)
}

func TestValidateCommand_FailExitsNonZero(t *testing.T) {
	dir := isolate(t)
	path := writeShipment(t, dir, strings.Replace(shipmentYAML, `"847130"`, `"851712"`, 1))

	out, err := run(t, "validate", "--shipment", path, "--document", filepath.Join(dir, "invoice.txt"), "--name", "INV-2024-002")
	require.ErrorIs(t, err, cli.ErrValidationFailed)
	assert.Contains(t, out, "INV-2024-002")
	assert.Contains(t, out, "FAIL")
	assert.Contains(t, out, "HS Code")
	assert.Contains(t, out, "HS code mismatch: document has '847130', shipment form has '851712'")
}

func TestValidateCommand_WarningOnlyFailsWhenStrict(t *testing.T) {
	dir := isolate(t)
	path := writeShipment(t, dir, strings.Replace(shipmentYAML, `weight: "25"`, `weight: "28"`, 1))
	doc := filepath.Join(dir, "invoice.txt")

	out, err := run(t, "validate", "--shipment", path, "--document", doc)
	require.NoError(t, err)
	assert.Contains(t, out, "WARNING")
	assert.Contains(t, out, "Weight slightly differs: difference is 3 kg")

	_, err = run(t, "validate", "--shipment", path, "--document", doc, "--strict")
	assert.ErrorIs(t, err, cli.ErrValidationFailed)
}

func TestValidateCommand_PolicyFlagOverridesThresholds(t *testing.T) {
	dir := isolate(t)
	path := writeShipment(t, dir, strings.Replace(shipmentYAML, `weight: "25"`, `weight: "28"`, 1))
	policy := filepath.Join(dir, "policy.yaml")
	require.NoError(t, os.WriteFile(policy, []byte("weight_warn_kg: 1\nweight_fail_kg: 2\n"), 0o600))

	_, err := run(t, "validate", "--shipment", path, "--document", filepath.Join(dir, "invoice.txt"), "--policy", policy)
	assert.ErrorIs(t, err, cli.ErrValidationFailed)
}

func TestValidateCommand_Errors(t *testing.T) {
	dir := isolate(t)
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("hs: 847130\n"), 0o600))

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing flags", []string{"validate"}, "required flag"},
		{"unknown shipment key", []string{"validate", "--shipment", bad, "--document", filepath.Join(dir, "invoice.txt")}, "bad.yaml"},
		{"missing document", []string{"validate", "--shipment", filepath.Join(dir, "shipment.yaml"), "--document", filepath.Join(dir, "nope.pdf")}, "not found"},
		{"unsupported document", []string{"validate", "--shipment", filepath.Join(dir, "shipment.yaml"), "--document", filepath.Join(dir, "shipment.yaml")}, "unsupported document type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestExtractCommand_JSON(t *testing.T) {
	dir := isolate(t)

	out, err := run(t, "extract", "--document", filepath.Join(dir, "invoice.txt"), "--json")
	require.NoError(t, err)

	var got struct {
		Fields map[string]string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "847130", got.Fields["hs_code"])
	assert.Equal(t, "50", got.Fields["quantity"])
	assert.Equal(t, "25", got.Fields["weight"])
	assert.NotContains(t, got.Fields, "mode_of_transport")
}

func TestExtractCommand_Table(t *testing.T) {
	dir := isolate(t)

	out, err := run(t, "extract", "--document", filepath.Join(dir, "invoice.txt"))
	require.NoError(t, err)
	assert.Contains(t, out, "7 of 8 found")
	assert.Contains(t, out, consistency.NotFound)
}

func TestTokenCommand(t *testing.T) {
	isolate(t)

	_, err := run(t, "token", "--service", "shipment-intake")
	require.ErrorContains(t, err, "SERVICE_JWT_KEY")

	t.Setenv("SERVICE_JWT_KEY", "cli-test-key")
	out, err := run(t, "token", "--service", "shipment-intake", "--ttl", "1h")
	require.NoError(t, err)

	tokens := jwttoken.NewJWTService("cli-test-key", "doccheck", "document-validator")
	claims, err := tokens.ValidateToken(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "shipment-intake", claims.Subject)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
}
