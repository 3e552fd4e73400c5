package domain

import "errors"

var (
	// ErrUnknownField is returned when a field name is not part of the form.
	ErrUnknownField = errors.New("unknown field")
	// ErrInvalidOption is returned when a tone or focus value is not supported.
	ErrInvalidOption = errors.New("invalid option")
)
