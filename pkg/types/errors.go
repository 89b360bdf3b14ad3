package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument indicates a malformed call-level argument, such as a
// non-positive page size. It is surfaced to the caller and never retried.
// Per-record data-quality problems do not produce errors; offending records
// are skipped and the rest of the batch is processed.
var ErrInvalidArgument = errors.New("invalid argument")

// InvalidArgumentf wraps ErrInvalidArgument with a formatted detail message.
func InvalidArgumentf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidArgument}, args...)...)
}
