package extraction

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

// =============================================================================
// Extractor Test Suite
// =============================================================================
// Justification for unit tests: extraction is a pure function over text. The
// anchor table, the HS code fallback and the free-text cut rules each have
// boundaries that handler tests only observe indirectly through verdicts.

type ExtractorSuite struct {
	suite.Suite
}

func TestExtractorSuite(t *testing.T) {
	suite.Run(t, new(ExtractorSuite))
}

const matchingInvoice = `commercial invoice
invoice number: inv-2024-001
date: 2024-01-15

seller: acme manufacturing co.
buyer: global imports inc.

product description: widget manufacturing equipment
hs code: 847130
quantity: 50 units
unit price: $1,000.00
total value: $50,000.00

gross weight: 25 kg
net weight: 23 kg
package type: carton
country of origin: china
country of destination: usa
mode of transport: sea
`

// =============================================================================
// Anchored Extraction
// =============================================================================

func (s *ExtractorSuite) TestAnchoredFields() {
	fields := Extract(matchingInvoice)

	want := map[Field]string{
		FieldHSCode:             "847130",
		FieldProductDescription: "widget manufacturing equipment",
		FieldQuantity:           "50",
		FieldWeight:             "25",
		FieldPackageType:        "carton",
		FieldOriginCountry:      "china",
		FieldDestinationCountry: "usa",
		FieldModeOfTransport:    "sea",
	}
	for field, value := range want {
		got, ok := fields.Get(field)
		s.True(ok, "expected %s to be extracted", field)
		s.Equal(value, got, "field %s", field)
	}
	s.Equal(len(Fields), fields.Found())
}

func (s *ExtractorSuite) TestAnchorsAreCaseInsensitive() {
	fields := Extract("HS Code: 851712\nCountry of Origin: Germany\n")

	hs, ok := fields.Get(FieldHSCode)
	s.Require().True(ok)
	s.Equal("851712", hs)

	origin, ok := fields.Get(FieldOriginCountry)
	s.Require().True(ok)
	s.Equal("germany", origin)
}

func (s *ExtractorSuite) TestDecimalNumbers() {
	fields := Extract("total weight: 12.75 kg\ntotal quantity: 3.5\n")

	weight, _ := fields.Get(FieldWeight)
	s.Equal("12.75", weight)
	qty, _ := fields.Get(FieldQuantity)
	s.Equal("3.5", qty)
}

func (s *ExtractorSuite) TestAlternateAnchors() {
	s.Run("made in resolves origin", func() {
		v, ok := Extract("made in vietnam\n").Get(FieldOriginCountry)
		s.True(ok)
		s.Equal("vietnam", v)
	})

	s.Run("ship to resolves destination", func() {
		v, ok := Extract("ship to: rotterdam, netherlands\n").Get(FieldDestinationCountry)
		s.True(ok)
		s.Equal("rotterdam, netherlands", v)
	})

	s.Run("product code resolves hs code", func() {
		v, ok := Extract("product code: 12345678\n").Get(FieldHSCode)
		s.True(ok)
		s.Equal("12345678", v)
	})
}

// =============================================================================
// HS Code Fallback
// =============================================================================
// Justification: HS code is the only field with a bare-token fallback. Every
// other field must stay absent without its anchor.

func (s *ExtractorSuite) TestHSCodeBareFallback() {
	s.Run("bare token found without anchor", func() {
		v, ok := Extract("tariff line 940360 applies to this shipment").Get(FieldHSCode)
		s.True(ok)
		s.Equal("940360", v)
	})

	s.Run("short digit runs are ignored", func() {
		_, ok := Extract("order 12345 shipped").Get(FieldHSCode)
		s.False(ok)
	})

	s.Run("runs longer than eight digits are ignored", func() {
		_, ok := Extract("reference 1234567890").Get(FieldHSCode)
		s.False(ok)
	})

	s.Run("anchored value wins over earlier bare token", func() {
		v, ok := Extract("ref 111111\nhs code: 222222\n").Get(FieldHSCode)
		s.True(ok)
		s.Equal("222222", v)
	})
}

func (s *ExtractorSuite) TestOtherFieldsHaveNoFallback() {
	fields := Extract("50 cartons of widgets weighing 25 kg from china to usa by sea")

	for _, f := range []Field{
		FieldQuantity, FieldWeight, FieldPackageType,
		FieldOriginCountry, FieldDestinationCountry, FieldModeOfTransport,
		FieldProductDescription,
	} {
		_, ok := fields.Get(f)
		s.False(ok, "field %s should be absent", f)
	}
}

// =============================================================================
// Free Text Boundaries
// =============================================================================

func (s *ExtractorSuite) TestFreeTextStopsAtLineBreak() {
	v, ok := Extract("package type: pallet\nwrapped in film\n").Get(FieldPackageType)
	s.True(ok)
	s.Equal("pallet", v)
}

func (s *ExtractorSuite) TestFreeTextStopsAtNextLabelInCollapsedText() {
	collapsed := "product description: widget manufacturing equipment hs code: 847130 " +
		"quantity: 50 country of origin: china country of destination: usa mode of transport: sea"

	fields := Extract(collapsed)

	desc, _ := fields.Get(FieldProductDescription)
	s.Equal("widget manufacturing equipment", desc)
	origin, _ := fields.Get(FieldOriginCountry)
	s.Equal("china", origin)
	dest, _ := fields.Get(FieldDestinationCountry)
	s.Equal("usa", dest)
	mode, _ := fields.Get(FieldModeOfTransport)
	s.Equal("sea", mode)
}

func (s *ExtractorSuite) TestDescriptionBelowMinimumLengthIsAbsent() {
	_, ok := Extract("product description: bolts\n").Get(FieldProductDescription)
	s.False(ok)
}

func (s *ExtractorSuite) TestMissingDestination() {
	text := "product description: widget manufacturing equipment\n" +
		"hs code: 847130\ncountry of origin: china\n"

	_, ok := Extract(text).Get(FieldDestinationCountry)
	s.False(ok)
}

func (s *ExtractorSuite) TestEmptyText() {
	fields := Extract("")
	s.Zero(fields.Found())
	s.Empty(fields.Map())
}

// =============================================================================
// Constructor
// =============================================================================

func (s *ExtractorSuite) TestNewExtractorRejectsInvalidTables() {
	s.Run("empty table", func() {
		_, err := NewExtractor(nil, nil)
		s.Error(err)
	})

	s.Run("pattern without anchors", func() {
		_, err := NewExtractor([]Pattern{{Field: FieldWeight, Shape: ShapeNumber}}, nil)
		s.ErrorContains(err, "no anchors")
	})

	s.Run("free text without bounds", func() {
		_, err := NewExtractor([]Pattern{{Field: FieldPackageType, Anchors: []string{"pkg"}, Shape: ShapeFreeText}}, nil)
		s.ErrorContains(err, "invalid length bounds")
	})
}

func (s *ExtractorSuite) TestCustomTable() {
	e, err := NewExtractor([]Pattern{
		{Field: FieldWeight, Anchors: []string{"kgs"}, Shape: ShapeNumber},
	}, nil)
	s.Require().NoError(err)

	fields := e.Extract("kgs 40\nweight: 10")
	v, ok := fields.Get(FieldWeight)
	s.True(ok)
	s.Equal("40", v)
	s.Equal(map[string]string{"weight": "40"}, fields.Map())
}
