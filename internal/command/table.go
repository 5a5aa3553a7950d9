// Package command turns decoded request bodies into typed commands.
package command

import (
	"github.com/sumire/hess/internal/apierr"
	"github.com/sumire/hess/internal/domain"
	"github.com/sumire/hess/internal/patch"
	"github.com/sumire/hess/internal/validation"
)

// Kind selects the validator applied to a field.
type Kind int

const (
	KindString Kind = iota
	KindEmail
	KindTelephone
	KindBool
	KindGender
	KindUserRole
	KindWhoCanArray
)

// Rule declares one body field and how it is validated.
type Rule struct {
	Key      string
	Kind     Kind
	Optional bool
	Nullable bool
	Length   apierr.FieldLength
}

// Table is the ordered field list of one command. Errors are reported in table order.
type Table []Rule

// Values holds the validated fields of a body, keyed by Rule.Key.
type Values struct {
	fields map[string]any
}

// Run validates every field of body, never stopping at the first failure.
func (t Table) Run(body map[string]any) (Values, error) {
	var errs apierr.ValidationErrors
	values := Values{fields: make(map[string]any, len(t))}
	for _, rule := range t {
		values.fields[rule.Key] = rule.validate(validation.Lookup(body, rule.Key), &errs)
	}
	if errs.HasErrors() {
		return Values{}, apierr.BodyValidationErrors(errs)
	}
	return values, nil
}

func (s Rule) validate(f validation.Field, errs *apierr.ValidationErrors) any {
	switch s.Kind {
	case KindString:
		return s.text(f, errs, validation.String)
	case KindEmail:
		return s.text(f, errs, validation.Email)
	case KindTelephone:
		return s.text(f, errs, validation.Telephone)
	case KindBool:
		return patch.FromOK(validation.Bool(f, s.Key, errs, s.Optional))
	case KindGender:
		return patch.FromOK(validation.Gender(f, s.Key, errs, s.Optional))
	case KindUserRole:
		return patch.FromOK(validation.UserRole(f, s.Key, errs, s.Optional))
	case KindWhoCanArray:
		return validation.WhoCanArray(f, s.Key, errs, s.Optional, s.Nullable)
	}
	return patch.Absent[any]()
}

type textValidator func(validation.Field, string, apierr.FieldLength, *apierr.ValidationErrors, bool) (string, bool)

func (s Rule) text(f validation.Field, errs *apierr.ValidationErrors, check textValidator) patch.Field[string] {
	run := func(f validation.Field) (string, bool) {
		return check(f, s.Key, s.Length, errs, s.Optional)
	}
	if s.Nullable {
		return validation.Nullable(f, run)
	}
	return patch.FromOK(run(f))
}

func get[T any](v Values, key string) patch.Field[T] {
	f, _ := v.fields[key].(patch.Field[T])
	return f
}

// String returns a string, email or telephone field.
func (v Values) String(key string) patch.Field[string] { return get[string](v, key) }

// Bool returns a bool field.
func (v Values) Bool(key string) patch.Field[bool] { return get[bool](v, key) }

// Gender returns a gender field.
func (v Values) Gender(key string) patch.Field[domain.Gender] { return get[domain.Gender](v, key) }

// UserRole returns a role field.
func (v Values) UserRole(key string) patch.Field[domain.UserRole] { return get[domain.UserRole](v, key) }

// WhoCan returns an audience list field.
func (v Values) WhoCan(key string) patch.Field[[]domain.WhoCan] { return get[[]domain.WhoCan](v, key) }
