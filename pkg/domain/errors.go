package domain

import "fmt"

// ErrNotFound is returned when an operation references a missing entity.
type ErrNotFound struct {
	Entity EntityType
	ID     int64
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// ErrAlreadyExists is returned when a unique name is taken.
type ErrAlreadyExists struct {
	Entity EntityType
	Name   string
}

func (e ErrAlreadyExists) Error() string {
	return fmt.Sprintf("%s with name %q already exists", e.Entity, e.Name)
}

// ErrInUse is returned when deletion is blocked by existing references.
type ErrInUse struct {
	Entity EntityType
	ID     int64
	Reason string
}

func (e ErrInUse) Error() string {
	return fmt.Sprintf("%s %d is in use: %s", e.Entity, e.ID, e.Reason)
}

// ErrValidation is returned for malformed or out-of-range input caught before
// any store mutation takes effect.
type ErrValidation struct {
	Message string
}

func (e ErrValidation) Error() string { return e.Message }

// Validationf builds an ErrValidation from a format string.
func Validationf(format string, args ...any) ErrValidation {
	return ErrValidation{Message: fmt.Sprintf(format, args...)}
}
