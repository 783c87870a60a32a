package application

import "errors"

var (
	// ErrUnauthorized is returned when the acting principal lacks permission for an operation.
	ErrUnauthorized = errors.New("application: unauthorized")
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrInvalidCredentials is returned when a session token cannot be verified.
	ErrInvalidCredentials = errors.New("application: invalid credentials")
	// ErrSlotUnavailable is returned when the requested slot is already booked.
	ErrSlotUnavailable = errors.New("application: slot unavailable")
	// ErrBookingIncomplete is returned when a booking request lacks a slot, professional, or user.
	ErrBookingIncomplete = errors.New("application: booking incomplete")
	// ErrOperationTimeout is returned when a simulated round trip exceeds its deadline.
	ErrOperationTimeout = errors.New("application: operation timed out")
)

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}

// merge copies entries from another validation error into the receiver.
func (v *ValidationError) merge(other *ValidationError) {
	if other == nil || len(other.FieldErrors) == 0 {
		return
	}
	for field, msg := range other.FieldErrors {
		v.add(field, msg)
	}
}
