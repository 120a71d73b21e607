// Package validate converts untyped request input (JSON bodies, query
// strings) into typed, constrained values. Schemas are composed from field
// builders; a failed parse reports every failing field in one aggregated
// VALIDATION_ERROR, never just the first.
package validate

import (
	"encoding/json"
	"net/url"

	"github.com/campuskit/campuskit/internal/apierror"
)

// ParseFunc coerces and validates a single raw value. The returned error
// message is the client-visible constraint for that field.
type ParseFunc func(raw any) (any, error)

// CheckFunc is a cross-field check run after all fields parsed cleanly.
type CheckFunc func(vals map[string]any) *apierror.Detail

// FieldSpec declares one schema field.
type FieldSpec struct {
	name     string
	required bool
	def      any
	hasDef   bool
	parse    ParseFunc
}

// Field declares an optional field with the given parser.
func Field(name string, parse ParseFunc) FieldSpec {
	return FieldSpec{name: name, parse: parse}
}

// Require marks the field as mandatory.
func (f FieldSpec) Require() FieldSpec {
	f.required = true
	return f
}

// Default sets the value used when the field is absent. The default is not
// re-validated; it is trusted as already well-formed.
func (f FieldSpec) Default(v any) FieldSpec {
	f.def = v
	f.hasDef = true
	return f
}

// Name returns the declared field name.
func (f FieldSpec) Name() string { return f.name }

// Schema is an ordered set of field specs plus cross-field checks.
type Schema struct {
	fields []FieldSpec
	checks []CheckFunc
}

// New builds a schema from field specs.
func New(fields ...FieldSpec) *Schema {
	return &Schema{fields: fields}
}

// Extend returns a new schema with extra fields appended; the receiver is
// not modified.
func (s *Schema) Extend(extra ...FieldSpec) *Schema {
	out := &Schema{
		fields: append(append([]FieldSpec{}, s.fields...), extra...),
		checks: append([]CheckFunc{}, s.checks...),
	}
	return out
}

// Check appends a cross-field check, returning the schema for chaining.
func (s *Schema) Check(fn CheckFunc) *Schema {
	s.checks = append(s.checks, fn)
	return s
}

// Parse validates raw input against the schema. On success it returns the
// normalized values with defaults applied; on failure a single aggregated
// *apierror.Error listing every failing field.
func (s *Schema) Parse(raw map[string]any) (map[string]any, error) {
	vals := make(map[string]any, len(s.fields))
	var details []apierror.Detail

	for _, f := range s.fields {
		rv, present := raw[f.name]
		if !present || rv == nil {
			if f.hasDef {
				vals[f.name] = f.def
				continue
			}
			if f.required {
				details = append(details, apierror.Detail{Field: f.name, Constraint: "is required"})
			}
			continue
		}
		v, err := f.parse(rv)
		if err != nil {
			details = append(details, apierror.Detail{Field: f.name, Constraint: err.Error()})
			continue
		}
		vals[f.name] = v
	}

	if len(details) == 0 {
		for _, check := range s.checks {
			if d := check(vals); d != nil {
				details = append(details, *d)
			}
		}
	}

	if len(details) > 0 {
		return nil, apierror.Validation(details)
	}
	return vals, nil
}

// Body parses a JSON request body against the schema into T. Defaults are
// applied before decoding, so T sees the fully-normalized object.
func Body[T any](s *Schema, data []byte) (T, error) {
	var zero T

	var raw map[string]any
	if len(data) == 0 {
		raw = map[string]any{}
	} else if err := json.Unmarshal(data, &raw); err != nil {
		return zero, apierror.Validation([]apierror.Detail{
			{Field: "body", Constraint: "must be a JSON object"},
		})
	}

	vals, err := s.Parse(raw)
	if err != nil {
		return zero, err
	}
	return decode[T](vals)
}

// Query parses URL query parameters against the schema into T. Only the
// first value of each parameter is considered.
func Query[T any](s *Schema, params url.Values) (T, error) {
	raw := make(map[string]any, len(params))
	for k, vs := range params {
		if len(vs) > 0 {
			raw[k] = vs[0]
		}
	}
	vals, err := s.Parse(raw)
	if err != nil {
		var zero T
		return zero, err
	}
	return decode[T](vals)
}

// decode maps normalized values onto T through a JSON round trip, reusing
// the struct tags T already declares.
func decode[T any](vals map[string]any) (T, error) {
	var out T
	buf, err := json.Marshal(vals)
	if err != nil {
		return out, apierror.Internal("encode validated input", err)
	}
	if err := json.Unmarshal(buf, &out); err != nil {
		return out, apierror.Internal("decode validated input", err)
	}
	return out, nil
}
