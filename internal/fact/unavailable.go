package fact

import (
	"errors"
	"fmt"
)

// ErrUnavailable marks facts that cannot be produced because the trace lacks
// the required raw input. It is not a failure of the analysis itself.
var ErrUnavailable = errors.New("fact unavailable")

// UnavailableError carries the reason a fact could not be produced.
type UnavailableError struct {
	Reason string
}

func (e *UnavailableError) Error() string {
	if e.Reason == "" {
		return ErrUnavailable.Error()
	}
	return ErrUnavailable.Error() + ": " + e.Reason
}

// Is reports whether target is ErrUnavailable.
func (e *UnavailableError) Is(target error) bool {
	return target == ErrUnavailable
}

// Unavailable returns an UnavailableError with a formatted reason.
func Unavailable(format string, args ...any) error {
	return &UnavailableError{Reason: fmt.Sprintf(format, args...)}
}

// IsUnavailable reports whether err marks an unavailable fact.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
