package storage

import (
	"summarycube/cubeerr"
	"summarycube/frame"
)

type Dimension struct {
	Name string
}

type Attribute struct {
	Name    string
	Numeric bool
}

// Schema describes one cube. Dimension order is fixed and defines the order
// of Query.DimSlices.
type Schema struct {
	Name       string
	Dimensions []Dimension
	Attributes []Attribute
}

func NewSchema(name string, dims []string, attrs ...Attribute) *Schema {
	schema := &Schema{Name: name, Dimensions: make([]Dimension, len(dims))}
	for i, d := range dims {
		schema.Dimensions[i] = Dimension{Name: d}
	}
	schema.Attributes = append(schema.Attributes, attrs...)
	return schema
}

func Categorical(name string) Attribute {
	return Attribute{Name: name}
}

func Numeric(name string) Attribute {
	return Attribute{Name: name, Numeric: true}
}

func (schema *Schema) DimensionNames() []string {
	names := make([]string, len(schema.Dimensions))
	for i, d := range schema.Dimensions {
		names[i] = d.Name
	}
	return names
}

func (schema *Schema) AttributeNames() []string {
	names := make([]string, len(schema.Attributes))
	for i, a := range schema.Attributes {
		names[i] = a.Name
	}
	return names
}

func (schema *Schema) NumericAttributeNames() []string {
	names := make([]string, 0, len(schema.Attributes))
	for _, a := range schema.Attributes {
		if a.Numeric {
			names = append(names, a.Name)
		}
	}
	return names
}

func (schema *Schema) DimensionIndex(name string) int {
	for i, d := range schema.Dimensions {
		if d.Name == name {
			return i
		}
	}
	return -1
}

func (schema *Schema) HasDimension(name string) bool {
	return schema.DimensionIndex(name) >= 0
}

func (schema *Schema) AttributeIndex(name string) int {
	for i, a := range schema.Attributes {
		if a.Name == name {
			return i
		}
	}
	return -1
}

func (schema *Schema) HasAttribute(name string) bool {
	return schema.AttributeIndex(name) >= 0
}

func (schema *Schema) validate() error {
	if schema.Name == "" {
		return cubeerr.Storef("cube schema has no name")
	}
	if len(schema.Dimensions) == 0 {
		return cubeerr.Storef("cube %s has no dimensions", schema.Name)
	}
	seen := make(map[string]bool)
	for _, name := range append(schema.DimensionNames(), schema.AttributeNames()...) {
		if name == "" || seen[name] {
			return cubeerr.Storef("cube %s has an empty or repeated column name %q", schema.Name, name)
		}
		seen[name] = true
	}
	return nil
}

// Row is one cube cell: dimension coordinates and attribute values, both
// in schema order.
type Row struct {
	Dims  []string
	Attrs []frame.Value
}

func (schema *Schema) checkRow(row Row) error {
	if len(row.Dims) != len(schema.Dimensions) || len(row.Attrs) != len(schema.Attributes) {
		return cubeerr.Storef("cube %s: row has %d dims and %d attrs, schema has %d and %d",
			schema.Name, len(row.Dims), len(row.Attrs), len(schema.Dimensions), len(schema.Attributes))
	}
	for i, attr := range schema.Attributes {
		v := row.Attrs[i]
		if v.IsNull() {
			continue
		}
		if attr.Numeric != (v.Kind() == frame.FloatKind) {
			return cubeerr.Storef("cube %s: attribute %s has value %s of the wrong kind",
				schema.Name, attr.Name, v)
		}
	}
	return nil
}
