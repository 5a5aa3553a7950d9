// Package patch models update fields that distinguish "not sent" from "sent as null".
package patch

// State is the presence of a Field.
type State uint8

const (
	StateAbsent State = iota
	StateNull
	StateSet
)

func (s State) String() string {
	switch s {
	case StateAbsent:
		return "absent"
	case StateNull:
		return "null"
	case StateSet:
		return "set"
	}
	return "unknown"
}

// Field is a tri-state value: absent (leave unchanged), null (clear) or set.
// The zero value is absent.
type Field[T any] struct {
	state State
	value T
}

// Absent returns a field that was not provided.
func Absent[T any]() Field[T] { return Field[T]{} }

// Null returns a field explicitly set to null.
func Null[T any]() Field[T] { return Field[T]{state: StateNull} }

// Set returns a field holding v.
func Set[T any](v T) Field[T] { return Field[T]{state: StateSet, value: v} }

// FromOK converts a (value, ok) validator result into Set or Absent.
func FromOK[T any](v T, ok bool) Field[T] {
	if !ok {
		return Absent[T]()
	}
	return Set(v)
}

func (f Field[T]) State() State   { return f.state }
func (f Field[T]) IsAbsent() bool { return f.state == StateAbsent }
func (f Field[T]) IsNull() bool   { return f.state == StateNull }
func (f Field[T]) IsSet() bool    { return f.state == StateSet }

// Get returns the value and whether the field is set.
func (f Field[T]) Get() (T, bool) {
	return f.value, f.state == StateSet
}

// Value returns the held value, or the zero value unless set.
func (f Field[T]) Value() T {
	if f.state != StateSet {
		var zero T
		return zero
	}
	return f.value
}

// Ptr returns a pointer to the value when set, nil otherwise.
func (f Field[T]) Ptr() *T {
	if f.state != StateSet {
		return nil
	}
	v := f.value
	return &v
}

// Map converts the value of a set field, preserving absent and null.
func Map[T, U any](f Field[T], fn func(T) U) Field[U] {
	switch f.state {
	case StateSet:
		return Set(fn(f.value))
	case StateNull:
		return Null[U]()
	}
	return Absent[U]()
}
