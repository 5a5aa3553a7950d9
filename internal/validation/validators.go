package validation

import (
	"regexp"

	"github.com/sumire/hess/internal/apierr"
	"github.com/sumire/hess/internal/patch"
)

var (
	emailPattern     = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	telephonePattern = regexp.MustCompile(`^[\+]?[(]?[0-9]{3}[)]?[-\s\.]?[0-9]{3}[-\s\.]?[0-9]{4,6}$`)
)

// String accepts a string whose UTF-8 byte length lies within length.
// The minimum is checked first; a value violating both bounds reports only the minimum.
func String(f Field, name string, length apierr.FieldLength, errs *apierr.ValidationErrors, optional bool) (string, bool) {
	if f.IsMissing() {
		missing(name, errs, optional)
		return "", false
	}
	s, ok := f.value.(string)
	if !ok {
		errs.Add(apierr.InvalidFieldDataType(name, apierr.FieldTypeString))
		return "", false
	}

	n := len(s)
	if length.Min != nil && n < *length.Min {
		errs.Add(apierr.InvalidFieldContentLength(name, n, length))
		return "", false
	}
	if length.Max != nil && n > *length.Max {
		errs.Add(apierr.InvalidFieldContentLength(name, n, length))
		return "", false
	}
	return s, true
}

// Email is String plus an address format check.
func Email(f Field, name string, length apierr.FieldLength, errs *apierr.ValidationErrors, optional bool) (string, bool) {
	return formatted(f, name, length, errs, optional, emailPattern, apierr.InvalidEmailFormat)
}

// Telephone is String plus a phone number format check.
func Telephone(f Field, name string, length apierr.FieldLength, errs *apierr.ValidationErrors, optional bool) (string, bool) {
	return formatted(f, name, length, errs, optional, telephonePattern, apierr.InvalidTelephoneFormat)
}

// formatted checks the pattern on any string value, even one that failed its
// length bound, so both problems are reported together.
func formatted(
	f Field,
	name string,
	length apierr.FieldLength,
	errs *apierr.ValidationErrors,
	optional bool,
	pattern *regexp.Regexp,
	mismatch func(string) apierr.ValidationError,
) (string, bool) {
	s, ok := String(f, name, length, errs, optional)
	raw, isString := f.value.(string)
	if f.IsMissing() || !isString {
		return s, ok
	}
	if !pattern.MatchString(raw) {
		errs.Add(mismatch(raw))
		return "", false
	}
	return s, ok
}

// Bool accepts a JSON boolean.
func Bool(f Field, name string, errs *apierr.ValidationErrors, optional bool) (bool, bool) {
	if f.IsMissing() {
		missing(name, errs, optional)
		return false, false
	}
	b, ok := f.value.(bool)
	if !ok {
		errs.Add(apierr.InvalidFieldDataType(name, apierr.FieldTypeBool))
		return false, false
	}
	return b, true
}

// Enum accepts a string equal to one of allowed. Matching is case-sensitive.
func Enum[E ~string](f Field, name string, allowed []E, errs *apierr.ValidationErrors, optional bool) (E, bool) {
	var zero E
	if f.IsMissing() {
		missing(name, errs, optional)
		return zero, false
	}
	s, ok := f.value.(string)
	if !ok {
		errs.Add(apierr.InvalidFieldDataType(name, apierr.FieldTypeString))
		return zero, false
	}
	for _, v := range allowed {
		if string(v) == s {
			return v, true
		}
	}
	errs.Add(apierr.IncorrectEnumValue(name, s, tokens(allowed)))
	return zero, false
}

func tokens[E ~string](allowed []E) []string {
	out := make([]string, len(allowed))
	for i, v := range allowed {
		out[i] = string(v)
	}
	return out
}

// Array accepts a JSON array. A null is accepted only when nullable.
func Array(f Field, name string, errs *apierr.ValidationErrors, optional, nullable bool) patch.Field[[]any] {
	if f.IsMissing() {
		missing(name, errs, optional)
		return patch.Absent[[]any]()
	}
	if f.value == nil && nullable {
		return patch.Null[[]any]()
	}
	items, ok := f.value.([]any)
	if !ok {
		errs.Add(apierr.InvalidFieldDataType(name, apierr.FieldTypeArray))
		return patch.Absent[[]any]()
	}
	return patch.Set(items)
}

// EnumArray validates every element of an array against allowed. One bad
// element makes the whole field absent; each bad element is reported.
func EnumArray[E ~string](f Field, name string, allowed []E, errs *apierr.ValidationErrors, optional, nullable bool) patch.Field[[]E] {
	arr := Array(f, name, errs, optional, nullable)
	items, ok := arr.Get()
	if !ok {
		if arr.IsNull() {
			return patch.Null[[]E]()
		}
		return patch.Absent[[]E]()
	}

	out := make([]E, 0, len(items))
	valid := true
	for _, item := range items {
		v, ok := Enum(Of(item), name, allowed, errs, false)
		if !ok {
			valid = false
			continue
		}
		out = append(out, v)
	}
	if !valid {
		return patch.Absent[[]E]()
	}
	return patch.Set(out)
}

// Nullable turns a JSON null into patch.Null and otherwise defers to check.
func Nullable[T any](f Field, check func(Field) (T, bool)) patch.Field[T] {
	if f.IsNull() {
		return patch.Null[T]()
	}
	return patch.FromOK(check(f))
}
