package core

import (
	"summarycube/storage"
)

// CubeQueryParams restricts which columns a cube query returns. Numeric
// attributes are always returned.
type CubeQueryParams struct {
	ValidAttrs []string
	ValidDims  []string
}

func NewCubeQueryParams(validAttrs, validDims []string) *CubeQueryParams {
	return &CubeQueryParams{ValidAttrs: validAttrs, ValidDims: validDims}
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

// attrsFor lists the allowed attributes of schema in schema order.
func (params *CubeQueryParams) attrsFor(schema *storage.Schema) []string {
	attrs := []string{}
	for _, name := range schema.AttributeNames() {
		if contains(params.ValidAttrs, name) {
			attrs = append(attrs, name)
		}
	}
	return attrs
}

func (params *CubeQueryParams) dimsFor(schema *storage.Schema) []string {
	dims := []string{}
	for _, name := range schema.DimensionNames() {
		if contains(params.ValidDims, name) {
			dims = append(dims, name)
		}
	}
	return dims
}
