package billing

import (
	"errors"
	"fmt"
)

// ErrZeroBillableHours is returned when there are no billable hours to spread
// the yearly cost over. Callers should ask the user to increase billable time
// rather than display a rate.
var ErrZeroBillableHours = errors.New("no billable hours: cannot compute an hourly rate")

// DivisionByZeroError carries the yearly cost that could not be divided.
type DivisionByZeroError struct {
	TotalYearlyCost      float64
	BillableHoursPerYear float64
}

func (e *DivisionByZeroError) Error() string {
	return fmt.Sprintf("break-even: yearly cost %.2f over %v billable hours",
		e.TotalYearlyCost, e.BillableHoursPerYear)
}

func (e *DivisionByZeroError) Unwrap() error {
	return ErrZeroBillableHours
}

// IsZeroBillableHours reports whether err is the zero-hours domain error.
func IsZeroBillableHours(err error) bool {
	return errors.Is(err, ErrZeroBillableHours)
}

// ErrNonFiniteResult is returned when the inputs are so large that a rate no
// longer fits in a float64.
var ErrNonFiniteResult = errors.New("break-even: result is not a finite number")

// IsNonFiniteResult reports whether err is the overflow domain error.
func IsNonFiniteResult(err error) bool {
	return errors.Is(err, ErrNonFiniteResult)
}
