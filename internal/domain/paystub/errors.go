package paystub

import (
	"errors"

	"paystub/internal/domain/paycalc"
)

var (
	ErrStubNotFound = errors.New("pay stub not found")
	ErrSuperseded   = errors.New("calculation superseded by a newer request")
)

// ValidationError blocks the pipeline before any computation or external
// call happens. Fields holds one issue per offending input field.
type ValidationError struct {
	Fields []paycalc.FieldError
}

func (e *ValidationError) Error() string {
	return "input validation failed"
}
