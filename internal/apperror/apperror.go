// Package apperror defines the three failure kinds a booking step can end
// in.  None of them is fatal to the process: each aborts only the step that
// raised it and leaves the session draft as it was, so the user can retry.
//
// ValidationError is raised before any network call.  ServiceCallError wraps
// a non-success status or unreadable body from the Rooms, Guest or Booking
// services.  PaymentError covers the processor rejecting intent creation or
// confirmation.
package apperror

import "fmt"

// ValidationError reports a missing or malformed field.
type ValidationError struct {
    Field   string
    Message string
}

func (e *ValidationError) Error() string {
    if e.Field == "" {
        return e.Message
    }
    return e.Field + ": " + e.Message
}

// Invalid is shorthand for constructing a ValidationError.
func Invalid(field, format string, args ...any) error {
    return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// ServiceCallError reports a failed call to a backend service.  Status is
// zero when no HTTP response was received (transport error or timeout).
type ServiceCallError struct {
    Service string
    Op      string
    Status  int
    Message string
    Err     error
}

func (e *ServiceCallError) Error() string {
    msg := fmt.Sprintf("%s %s", e.Service, e.Op)
    if e.Status != 0 {
        msg += fmt.Sprintf(": status %d", e.Status)
    }
    if e.Message != "" {
        msg += ": " + e.Message
    }
    if e.Err != nil {
        msg += ": " + e.Err.Error()
    }
    return msg
}

func (e *ServiceCallError) Unwrap() error { return e.Err }

// Payment stages.
const (
    StageCreateIntent = "create_intent"
    StageConfirm      = "confirm"
)

// PaymentError reports a rejected payment attempt.  Detail is what the user
// sees: the processor's first error entry or its raw response text.
type PaymentError struct {
    Stage  string
    Status int
    Detail string
    Err    error
}

func (e *PaymentError) Error() string {
    msg := "payment " + e.Stage
    if e.Status != 0 {
        msg += fmt.Sprintf(": status %d", e.Status)
    }
    if e.Detail != "" {
        msg += ": " + e.Detail
    }
    if e.Err != nil {
        msg += ": " + e.Err.Error()
    }
    return msg
}

func (e *PaymentError) Unwrap() error { return e.Err }
