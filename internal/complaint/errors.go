package complaint

import (
	"errors"
	"fmt"
)

// Sentinel errors for the lifecycle engine. Handlers map these onto stable
// HTTP status codes; anything else is treated as an internal failure and
// logged with context server-side.
var (
	ErrNotFound        = errors.New("complaint not found")
	ErrForbidden       = errors.New("forbidden")
	ErrUnknownCategory = errors.New("unknown complaint category")
)

// ValidationError reports a rejected submission or update with the offending
// field so clients can point at the exact input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func validationf(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// AsValidation unwraps a ValidationError if err carries one.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
