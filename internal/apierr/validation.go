package apierr

import (
	"encoding/json"
)

// FieldType names the JSON shape a field was expected to have.
type FieldType string

const (
	FieldTypeArray  FieldType = "ARRAY"
	FieldTypeBool   FieldType = "BOOL"
	FieldTypeNull   FieldType = "NULL"
	FieldTypeNumber FieldType = "NUMBER"
	FieldTypeObject FieldType = "OBJECT"
	FieldTypeString FieldType = "STRING"
)

// FieldLength holds inclusive character bounds. A nil bound is not checked.
type FieldLength struct {
	Min *int `json:"min"`
	Max *int `json:"max"`
}

func bound(n int) *int { return &n }

// MaxLength bounds a string from above only.
func MaxLength(max int) FieldLength { return FieldLength{Max: bound(max)} }

// LengthBetween bounds a string from both sides.
func LengthBetween(min, max int) FieldLength { return FieldLength{Min: bound(min), Max: bound(max)} }

// ValidationErrorType tags a ValidationError variant.
type ValidationErrorType string

const (
	TypeInvalidJSONBody           ValidationErrorType = "INVALID_JSON_BODY"
	TypeRequiredFieldMissing      ValidationErrorType = "REQUIRED_FIELD_MISSING"
	TypeInvalidFieldDataType      ValidationErrorType = "INVALID_FIELD_DATA_TYPE"
	TypeInvalidFieldContentLength ValidationErrorType = "INVALID_FIELD_CONTENT_LENGTH"
	TypeIncorrectEnumValue        ValidationErrorType = "INCORRECT_ENUM_VALUE"
	TypeInvalidEmailFormat        ValidationErrorType = "INVALID_EMAIL_FORMAT"
	TypeInvalidTelephoneFormat    ValidationErrorType = "INVALID_TELEPHONE_FORMAT"
)

// ValidationError describes one problem found in a request body. Only the
// fields belonging to its Type are meaningful; use the constructors below.
type ValidationError struct {
	Type           ValidationErrorType
	FieldName      string
	ExpectedType   FieldType
	PassedLength   int
	ExpectedLength FieldLength
	PassedValue    string
	ExpectedValues []string
}

func InvalidJSONBody() ValidationError {
	return ValidationError{Type: TypeInvalidJSONBody}
}

func RequiredFieldMissing(field string) ValidationError {
	return ValidationError{Type: TypeRequiredFieldMissing, FieldName: field}
}

func InvalidFieldDataType(field string, expected FieldType) ValidationError {
	return ValidationError{Type: TypeInvalidFieldDataType, FieldName: field, ExpectedType: expected}
}

func InvalidFieldContentLength(field string, passed int, expected FieldLength) ValidationError {
	return ValidationError{
		Type:           TypeInvalidFieldContentLength,
		FieldName:      field,
		PassedLength:   passed,
		ExpectedLength: expected,
	}
}

func IncorrectEnumValue(field, passed string, expected []string) ValidationError {
	return ValidationError{
		Type:           TypeIncorrectEnumValue,
		FieldName:      field,
		PassedValue:    passed,
		ExpectedValues: expected,
	}
}

func InvalidEmailFormat(passed string) ValidationError {
	return ValidationError{Type: TypeInvalidEmailFormat, PassedValue: passed}
}

func InvalidTelephoneFormat(passed string) ValidationError {
	return ValidationError{Type: TypeInvalidTelephoneFormat, PassedValue: passed}
}

// MarshalJSON emits the type tag plus the fields of that variant only.
func (v ValidationError) MarshalJSON() ([]byte, error) {
	out := map[string]any{"type": v.Type}
	switch v.Type {
	case TypeInvalidJSONBody:
	case TypeRequiredFieldMissing:
		out["field_name"] = v.FieldName
	case TypeInvalidFieldDataType:
		out["field_name"] = v.FieldName
		out["expected_type"] = v.ExpectedType
	case TypeInvalidFieldContentLength:
		out["field_name"] = v.FieldName
		out["passed_length"] = v.PassedLength
		out["expected_length"] = v.ExpectedLength
	case TypeIncorrectEnumValue:
		out["field_name"] = v.FieldName
		out["passed_value"] = v.PassedValue
		out["expected_values"] = v.ExpectedValues
	case TypeInvalidEmailFormat, TypeInvalidTelephoneFormat:
		out["passed_value"] = v.PassedValue
	}
	return json.Marshal(out)
}

// ValidationErrors accumulates problems across every field of a body.
type ValidationErrors []ValidationError

// Add appends one error.
func (e *ValidationErrors) Add(err ValidationError) {
	*e = append(*e, err)
}

// HasErrors reports whether anything was recorded.
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}
