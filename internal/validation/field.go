// Package validation checks individual fields of a decoded JSON body.
//
// Every validator appends its problems to a shared *apierr.ValidationErrors and
// never stops early, so one pass over a body reports every bad field.
package validation

import "github.com/sumire/hess/internal/apierr"

// Field is the lookup result of one body key. The zero Field is a missing key.
type Field struct {
	value   any
	present bool
}

// Lookup returns the field stored under key.
func Lookup(body map[string]any, key string) Field {
	v, ok := body[key]
	return Field{value: v, present: ok}
}

// Of wraps a present value.
func Of(v any) Field { return Field{value: v, present: true} }

// IsMissing reports whether the key was absent from the body.
func (f Field) IsMissing() bool { return !f.present }

// IsNull reports whether the key was present with a JSON null.
func (f Field) IsNull() bool { return f.present && f.value == nil }

func missing(name string, errs *apierr.ValidationErrors, optional bool) {
	if !optional {
		errs.Add(apierr.RequiredFieldMissing(name))
	}
}
