package extraction

// Field is a canonical shipment attribute recoverable from document text.
type Field string

const (
	FieldHSCode             Field = "hs_code"
	FieldProductDescription Field = "product_description"
	FieldQuantity           Field = "quantity"
	FieldWeight             Field = "weight"
	FieldPackageType        Field = "package_type"
	FieldOriginCountry      Field = "origin_country"
	FieldDestinationCountry Field = "destination_country"
	FieldModeOfTransport    Field = "mode_of_transport"
)

// Fields lists the canonical fields in extraction order.
var Fields = []Field{
	FieldHSCode,
	FieldProductDescription,
	FieldQuantity,
	FieldWeight,
	FieldPackageType,
	FieldOriginCountry,
	FieldDestinationCountry,
	FieldModeOfTransport,
}

// FieldSet holds the values recovered from one document. It is built once by
// Extract and exposes read-only accessors.
type FieldSet struct {
	values map[Field]string
}

func newFieldSet(values map[Field]string) FieldSet {
	return FieldSet{values: values}
}

// Get returns the extracted value and whether the field was found.
func (s FieldSet) Get(f Field) (string, bool) {
	v, ok := s.values[f]
	return v, ok
}

// Found reports how many fields were recovered.
func (s FieldSet) Found() int {
	return len(s.values)
}

// Map returns a copy of the recovered values keyed by field name.
func (s FieldSet) Map() map[string]string {
	out := make(map[string]string, len(s.values))
	for f, v := range s.values {
		out[string(f)] = v
	}
	return out
}
