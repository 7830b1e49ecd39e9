package service

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds surfaced by the booking engine.  Every error returned from
// this package matches exactly one of them with errors.Is.
var (
	ErrValidation      = errors.New("validation error")
	ErrSeatUnavailable = errors.New("seat unavailable")
	ErrPolicyViolation = errors.New("policy violation")
	ErrTokenInvalid    = errors.New("token invalid")
	ErrStorage         = errors.New("storage error")
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("forbidden")
)

var kinds = []error{
	ErrValidation, ErrSeatUnavailable, ErrPolicyViolation, ErrTokenInvalid,
	ErrNotFound, ErrForbidden, ErrStorage,
}

// KindOf returns the kind err belongs to, or nil when err carries none.
func KindOf(err error) error {
	for _, k := range kinds {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}

// SeatUnavailableError lists the seats that blocked a lock or finalize.
type SeatUnavailableError struct {
	Codes []string
}

func (e *SeatUnavailableError) Error() string {
	return fmt.Sprintf("%s: %s", ErrSeatUnavailable, strings.Join(e.Codes, ","))
}

func (e *SeatUnavailableError) Is(target error) bool { return target == ErrSeatUnavailable }

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// storage wraps a persistence failure with the step that failed.  Errors
// that already carry a kind pass through untouched.
func storage(step string, err error) error {
	if err == nil || KindOf(err) != nil {
		return err
	}
	return fmt.Errorf("%w: %s: %v", ErrStorage, step, err)
}
