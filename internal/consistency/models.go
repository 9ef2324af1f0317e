package consistency

import (
	"strings"

	"doccheck/internal/extraction"
)

// NotFound is reported as the document value when a field could not be
// extracted.
const NotFound = "NOT FOUND"

// Severity classifies a single field discrepancy.
type Severity string

const (
	SeverityFail    Severity = "FAIL"
	SeverityWarning Severity = "WARNING"
)

// Status is the aggregate verdict for one document.
type Status string

const (
	StatusPass    Status = "PASS"
	StatusWarning Status = "WARNING"
	StatusFail    Status = "FAIL"
)

// ShipmentRecord holds the facts declared for a shipment. Empty attributes
// impose no constraint on the document.
type ShipmentRecord struct {
	OriginCountry      string `json:"origin_country,omitempty" yaml:"origin_country"`
	DestinationCountry string `json:"destination_country,omitempty" yaml:"destination_country"`
	HSCode             string `json:"hs_code,omitempty" yaml:"hs_code"`
	ProductDescription string `json:"product_description,omitempty" yaml:"product_description"`
	Quantity           string `json:"quantity,omitempty" yaml:"quantity"`
	Weight             string `json:"weight,omitempty" yaml:"weight"`
	PackageType        string `json:"package_type,omitempty" yaml:"package_type"`
	ModeOfTransport    string `json:"mode_of_transport,omitempty" yaml:"mode_of_transport"`
}

// Value returns the declared value for an extraction field, trimmed.
func (r ShipmentRecord) Value(f extraction.Field) string {
	var v string
	switch f {
	case extraction.FieldHSCode:
		v = r.HSCode
	case extraction.FieldProductDescription:
		v = r.ProductDescription
	case extraction.FieldQuantity:
		v = r.Quantity
	case extraction.FieldWeight:
		v = r.Weight
	case extraction.FieldPackageType:
		v = r.PackageType
	case extraction.FieldOriginCountry:
		v = r.OriginCountry
	case extraction.FieldDestinationCountry:
		v = r.DestinationCountry
	case extraction.FieldModeOfTransport:
		v = r.ModeOfTransport
	}
	return strings.TrimSpace(v)
}

// ValidationIssue describes one field that disagrees with the shipment.
type ValidationIssue struct {
	Field         string   `json:"field"`
	DocumentValue string   `json:"document_value"`
	ShipmentValue string   `json:"shipment_value"`
	Severity      Severity `json:"severity"`
	Message       string   `json:"message"`
}

// ValidationResult is the verdict for one document.
type ValidationResult struct {
	DocumentName string            `json:"documentName"`
	Status       Status            `json:"status"`
	Issues       []ValidationIssue `json:"issues"`
}
