// Package criteria holds the validated filter requests accepted by the cube
// query layer.
package criteria

import (
	"summarycube/cubeerr"
)

// Values is the raw input for New, keyed by query-facing field name. Scalar
// fields carry a single element.
type Values map[string][]string

// Field is one named entry of a Criteria in declaration order.
type Field struct {
	Name   string
	Scalar bool
	Values []string
}

// Criteria is an immutable, validated filter request.
type Criteria struct {
	variant  *Variant
	values   map[string][]string
	excluded map[string]bool
}

func New(variant *Variant, values Values) (*Criteria, error) {
	if variant == nil {
		return nil, cubeerr.Validationf("criteria variant is required")
	}
	for name := range values {
		if !variant.HasField(name) {
			return nil, cubeerr.Validationf("%s: unknown field %q", variant.Name, name)
		}
	}

	stored := make(map[string][]string, len(variant.Fields))
	for _, spec := range variant.Fields {
		vals := values[spec.Name]
		if err := validateField(variant, spec, vals); err != nil {
			return nil, err
		}
		copied := make([]string, len(vals))
		copy(copied, vals)
		stored[spec.Name] = copied
	}

	return &Criteria{
		variant:  variant,
		values:   stored,
		excluded: map[string]bool{},
	}, nil
}

// MustNew is New for statically known criteria; it panics on invalid input.
func MustNew(variant *Variant, values Values) *Criteria {
	c, err := New(variant, values)
	if err != nil {
		panic(err)
	}
	return c
}

func validateField(variant *Variant, spec FieldSpec, vals []string) error {
	if spec.Scalar {
		if len(vals) == 0 || vals[0] == "" {
			return cubeerr.Validationf("%s: field %s is required", variant.Name, spec.Name)
		}
		if len(vals) > 1 {
			return cubeerr.Validationf("%s: field %s takes a single value, got %d",
				variant.Name, spec.Name, len(vals))
		}
		return nil
	}

	if len(vals) < spec.MinItems {
		return cubeerr.Validationf("%s: field %s requires at least %d value(s), got %d",
			variant.Name, spec.Name, spec.MinItems, len(vals))
	}
	seen := make(map[string]struct{}, len(vals))
	for _, v := range vals {
		if _, dup := seen[v]; dup {
			return cubeerr.Validationf("%s: field %s has duplicate value %q", variant.Name, spec.Name, v)
		}
		seen[v] = struct{}{}
	}
	return nil
}

func (c *Criteria) Variant() *Variant {
	return c.variant
}

// Values returns the values of a field. ok is false when the variant has no
// such field or the field was excluded.
func (c *Criteria) Values(name string) (values []string, ok bool) {
	if c.excluded[name] {
		return nil, false
	}
	vals, ok := c.values[name]
	if !ok {
		return nil, false
	}
	out := make([]string, len(vals))
	copy(out, vals)
	return out, true
}

func (c *Criteria) Has(name string) bool {
	_, ok := c.Values(name)
	return ok
}

// Scalar returns the single value of a scalar field, or "" when absent.
func (c *Criteria) Scalar(name string) string {
	vals, ok := c.Values(name)
	if !ok || len(vals) == 0 {
		return ""
	}
	return vals[0]
}

// Fields lists the remaining fields in declaration order.
func (c *Criteria) Fields() []Field {
	fields := make([]Field, 0, len(c.variant.Fields))
	for _, spec := range c.variant.Fields {
		if c.excluded[spec.Name] {
			continue
		}
		vals, _ := c.Values(spec.Name)
		fields = append(fields, Field{Name: spec.Name, Scalar: spec.Scalar, Values: vals})
	}
	return fields
}

// Without returns a copy of c with the named fields removed. Validation is
// not re-run, so required fields may be excluded.
func (c *Criteria) Without(names ...string) *Criteria {
	excluded := make(map[string]bool, len(c.excluded)+len(names))
	for name := range c.excluded {
		excluded[name] = true
	}
	for _, name := range names {
		excluded[name] = true
	}
	return &Criteria{
		variant:  c.variant,
		values:   c.values,
		excluded: excluded,
	}
}
