package consistency

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// compareField applies every comparison except the semantic band check. It
// returns nil when the rule raises no issue. shipment must be non-empty.
func compareField(r Rule, doc string, found bool, shipment string) *ValidationIssue {
	if r.Comparison == CompareNumeric {
		return compareNumeric(r, doc, found, shipment)
	}

	shipment = stripChars(shipment, r.Strip)
	if shipment == "" {
		return nil
	}
	if !found {
		return missingIssue(r, shipment)
	}

	var match bool
	switch r.Comparison {
	case CompareExact:
		match = doc == shipment
	case CompareNormalized:
		match = normalizeText(doc) == normalizeText(shipment)
	case CompareContains, CompareSemantic:
		match = containsFold(doc, shipment)
	}
	if match {
		return nil
	}

	return &ValidationIssue{
		Field:         r.Label,
		DocumentValue: doc,
		ShipmentValue: shipment,
		Severity:      r.Mismatch,
		Message:       formatMessage(r.Message, doc, shipment),
	}
}

// compareNumeric grades the absolute difference between both sides. A
// shipment or document value that does not parse as a number yields no issue.
func compareNumeric(r Rule, doc string, found bool, shipment string) *ValidationIssue {
	want, err := decimal.NewFromString(stripChars(shipment, r.Strip))
	if err != nil {
		return nil
	}
	if !found {
		return missingIssue(r, withUnit(want.String(), r.Unit))
	}
	got, err := decimal.NewFromString(stripChars(doc, r.Strip))
	if err != nil {
		return nil
	}

	diff := got.Sub(want).Abs()
	for _, band := range r.Bands {
		if !diff.GreaterThan(band.Above) {
			continue
		}
		docValue := withUnit(got.String(), r.Unit)
		shipValue := withUnit(want.String(), r.Unit)
		return &ValidationIssue{
			Field:         r.Label,
			DocumentValue: docValue,
			ShipmentValue: shipValue,
			Severity:      band.Severity,
			Message:       formatMessage(band.Message, got.String(), want.String(), diff.String(), band.Above.String(), r.Unit),
		}
	}
	return nil
}

func missingIssue(r Rule, shipment string) *ValidationIssue {
	if r.Missing == "" {
		return nil
	}
	return &ValidationIssue{
		Field:         r.Label,
		DocumentValue: NotFound,
		ShipmentValue: shipment,
		Severity:      r.Missing,
		Message:       r.Noun + " not found in document",
	}
}

func formatMessage(format string, args ...any) string {
	if !strings.Contains(format, "%") {
		return format
	}
	return fmt.Sprintf(format, args...)
}

func stripChars(s, chars string) string {
	if chars == "" {
		return s
	}
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(chars, r) {
			return -1
		}
		return r
	}, s)
}

func normalizeText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func withUnit(v, unit string) string {
	if unit == "" {
		return v
	}
	return v + " " + unit
}
