package consistency

import (
	"github.com/shopspring/decimal"

	"doccheck/internal/extraction"
)

// Comparison selects how a rule compares the document value against the
// declared shipment value.
type Comparison int

const (
	// CompareExact requires string equality after stripping characters from
	// the shipment side.
	CompareExact Comparison = iota
	// CompareNumeric parses both sides as decimals and grades the absolute
	// difference against the rule's bands.
	CompareNumeric
	// CompareNormalized requires equality after lowercasing and trimming.
	CompareNormalized
	// CompareContains requires the shipment value to appear within the
	// document value, case-insensitively.
	CompareContains
	// CompareSemantic grades embedding similarity, falling back to
	// containment when no encoder is available or encoding fails.
	CompareSemantic
)

func (c Comparison) String() string {
	switch c {
	case CompareExact:
		return "exact"
	case CompareNumeric:
		return "numeric"
	case CompareNormalized:
		return "normalized"
	case CompareContains:
		return "contains"
	case CompareSemantic:
		return "semantic"
	default:
		return "unknown"
	}
}

// Band grades a numeric difference. A difference strictly greater than Above
// produces an issue with the band's severity.
//
// Message verbs are indexed: %[1]s document value, %[2]s shipment value,
// %[3]s difference, %[4]s threshold, %[5]s unit.
type Band struct {
	Above    decimal.Decimal
	Severity Severity
	Message  string
}

// Rule is one row of the comparison policy.
type Rule struct {
	Field      extraction.Field
	Label      string
	Noun       string
	Comparison Comparison
	// Strip lists characters removed from the shipment value before use.
	Strip string
	Unit  string
	// Missing is the severity raised when the document lacks the field. An
	// empty severity means absence is not reported.
	Missing Severity
	// Mismatch is the severity raised by non-numeric comparisons.
	Mismatch Severity
	// Message is the mismatch message for non-numeric comparisons, using
	// %[1]s for the document value and %[2]s for the shipment value.
	Message string
	// Bands are checked in order; the first band exceeded wins.
	Bands []Band
}

// Thresholds holds the tunable limits of the default policy.
type Thresholds struct {
	ContentFloor      int     `json:"content_floor" yaml:"content_floor"`
	QuantityTolerance float64 `json:"quantity_tolerance" yaml:"quantity_tolerance"`
	WeightWarn        float64 `json:"weight_warn_kg" yaml:"weight_warn_kg"`
	WeightFail        float64 `json:"weight_fail_kg" yaml:"weight_fail_kg"`
	SimilarityFail    float64 `json:"similarity_fail_below" yaml:"similarity_fail_below"`
	SimilarityPass    float64 `json:"similarity_pass_at" yaml:"similarity_pass_at"`
}

// DefaultThresholds returns the production limits.
func DefaultThresholds() Thresholds {
	return Thresholds{
		ContentFloor:      200,
		QuantityTolerance: 0.01,
		WeightWarn:        2,
		WeightFail:        5,
		SimilarityFail:    0.75,
		SimilarityPass:    0.90,
	}
}

// DefaultRules builds the comparison policy in presentation order.
func DefaultRules(t Thresholds) []Rule {
	return []Rule{
		{
			Field:      extraction.FieldHSCode,
			Label:      "HS Code",
			Noun:       "HS code",
			Comparison: CompareExact,
			Strip:      ". ",
			Missing:    SeverityFail,
			Mismatch:   SeverityFail,
			Message:    "HS code mismatch: document has '%[1]s', shipment form has '%[2]s'",
		},
		{
			Field:      extraction.FieldQuantity,
			Label:      "Quantity",
			Noun:       "Quantity",
			Comparison: CompareNumeric,
			Strip:      ",",
			Missing:    SeverityFail,
			Bands: []Band{
				{
					Above:    decimal.NewFromFloat(t.QuantityTolerance),
					Severity: SeverityFail,
					Message:  "Quantity mismatch: document has %[1]s, shipment form has %[2]s",
				},
			},
		},
		{
			Field:      extraction.FieldWeight,
			Label:      "Weight",
			Noun:       "Weight",
			Comparison: CompareNumeric,
			Strip:      ",",
			Unit:       "kg",
			Missing:    SeverityFail,
			Bands: []Band{
				{
					Above:    decimal.NewFromFloat(t.WeightFail),
					Severity: SeverityFail,
					Message:  "Weight mismatch exceeds %[4]s%[5]s threshold: difference is %[3]s %[5]s",
				},
				{
					Above:    decimal.NewFromFloat(t.WeightWarn),
					Severity: SeverityWarning,
					Message:  "Weight slightly differs: difference is %[3]s %[5]s",
				},
			},
		},
		{
			Field:      extraction.FieldProductDescription,
			Label:      "Product Description",
			Noun:       "Product description",
			Comparison: CompareSemantic,
			Missing:    SeverityFail,
			Mismatch:   SeverityFail,
			Message:    "Product description not found in document",
		},
		{
			Field:      extraction.FieldPackageType,
			Label:      "Package Type",
			Noun:       "Package type",
			Comparison: CompareNormalized,
			Missing:    SeverityFail,
			Mismatch:   SeverityFail,
			Message:    "Package type mismatch: document has '%[1]s', shipment form has '%[2]s'",
		},
		{
			Field:      extraction.FieldOriginCountry,
			Label:      "Origin Country",
			Noun:       "Origin country",
			Comparison: CompareContains,
			Missing:    SeverityFail,
			Mismatch:   SeverityFail,
			Message:    "Origin country mismatch: document has '%[1]s', shipment form has '%[2]s'",
		},
		{
			Field:      extraction.FieldDestinationCountry,
			Label:      "Destination Country",
			Noun:       "Destination country",
			Comparison: CompareContains,
			Missing:    SeverityFail,
			Mismatch:   SeverityFail,
			Message:    "Destination country mismatch: document has '%[1]s', shipment form has '%[2]s'",
		},
		{
			Field:      extraction.FieldModeOfTransport,
			Label:      "Mode of Transport",
			Noun:       "Mode of transport",
			Comparison: CompareContains,
			Mismatch:   SeverityWarning,
			Message:    "Mode of transport mismatch: document has '%[1]s', shipment form has '%[2]s'",
		},
	}
}
