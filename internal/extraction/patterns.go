package extraction

// Strategy decides what happens when no anchor phrase is present.
type Strategy int

const (
	// AnchoredOnly reports the field as absent without an anchor match.
	AnchoredOnly Strategy = iota
	// AnchoredWithBareFallback takes the first bare token of the value shape
	// anywhere in the original text.
	AnchoredWithBareFallback
)

func (s Strategy) String() string {
	if s == AnchoredWithBareFallback {
		return "anchored_with_bare_fallback"
	}
	return "anchored_only"
}

// Shape is the expected form of the value following an anchor.
type Shape int

const (
	ShapeDigits Shape = iota
	ShapeNumber
	ShapeFreeText
)

// Pattern is one row of the extraction table.
type Pattern struct {
	Field    Field
	Anchors  []string
	Shape    Shape
	MinLen   int
	MaxLen   int
	Strategy Strategy
}

// DefaultPatterns is the extraction table for commercial invoices, packing
// lists and certificates. Longer anchors come first where one is a prefix of
// another.
var DefaultPatterns = []Pattern{
	{
		Field:    FieldHSCode,
		Anchors:  []string{"hs code", "product code"},
		Shape:    ShapeDigits,
		MinLen:   6,
		MaxLen:   8,
		Strategy: AnchoredWithBareFallback,
	},
	{
		Field:   FieldProductDescription,
		Anchors: []string{"product description", "product name", "item description"},
		Shape:   ShapeFreeText,
		MinLen:  10,
		MaxLen:  200,
	},
	{
		Field:   FieldQuantity,
		Anchors: []string{"quantity", "total quantity", "number of items", "number of item"},
		Shape:   ShapeNumber,
	},
	{
		Field:   FieldWeight,
		Anchors: []string{"gross weight", "net weight", "total weight", "weight"},
		Shape:   ShapeNumber,
	},
	{
		Field:   FieldPackageType,
		Anchors: []string{"package type", "packaging", "container type"},
		Shape:   ShapeFreeText,
		MinLen:  3,
		MaxLen:  50,
	},
	{
		Field:   FieldOriginCountry,
		Anchors: []string{"country of origin", "origin country", "made in", "manufactured in"},
		Shape:   ShapeFreeText,
		MinLen:  2,
		MaxLen:  50,
	},
	{
		Field:   FieldDestinationCountry,
		Anchors: []string{"destination country", "country of destination", "ship to", "consignee country"},
		Shape:   ShapeFreeText,
		MinLen:  2,
		MaxLen:  50,
	},
	{
		Field:   FieldModeOfTransport,
		Anchors: []string{"mode of transport", "transportation mode", "method of transport", "shipment mode"},
		Shape:   ShapeFreeText,
		MinLen:  3,
		MaxLen:  30,
	},
}

// StopLabels end a free-text capture when followed by a colon. They cover the
// labels that sit next to extracted fields on typical invoices once line
// breaks have been collapsed.
var StopLabels = []string{
	"invoice number", "invoice no", "invoice date", "date",
	"seller", "buyer", "exporter", "importer", "consignee", "shipper",
	"product", "shipping method", "incoterms", "terms", "total value",
	"unit price", "currency", "port of loading", "port of discharge",
}
