// Package server holds the engine services: membership resolution,
// entry lifecycle, week approval, payroll aggregation, and org
// administration. Services take an explicit actor on every call and
// check authorization before touching storage.
package server

import (
	"errors"
	"fmt"
)

// ErrValidation marks input errors the caller can fix locally. No
// state changes when it is returned.
var ErrValidation = errors.New("validation failed")

// ErrNothingToSubmit is returned when a week submit finds no editable
// entries in the target week.
var ErrNothingToSubmit = fmt.Errorf("%w: no draft or rejected entries in week", ErrValidation)

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
