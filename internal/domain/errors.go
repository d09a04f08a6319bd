package domain

import (
	"errors"
	"fmt"
)

// Validation error codes, one per user-facing input failure
const (
	ErrCodeFieldsRequired    = "FIELDS_REQUIRED"
	ErrCodeNameInvalid       = "NAME_INVALID"
	ErrCodeSymptomsTooShort  = "SYMPTOMS_TOO_SHORT"
	ErrCodeInvalidSex        = "INVALID_SEX"
	ErrCodeDiscomfortRange   = "DISCOMFORT_OUT_OF_RANGE"
	ErrCodeInvalidDateFormat = "INVALID_DATE_FORMAT"
	ErrCodeDOBInFuture       = "DOB_IN_FUTURE"
	ErrCodeDOBTooOld         = "DOB_TOO_OLD"
)

var validationMessages = map[string]string{
	ErrCodeFieldsRequired:    "All fields are required",
	ErrCodeNameInvalid:       "Name is required and must be valid",
	ErrCodeSymptomsTooShort:  "Symptoms description must be at least 3 characters",
	ErrCodeInvalidSex:        "Invalid sex value",
	ErrCodeDiscomfortRange:   "Discomfort level must be a number between 0 and 10",
	ErrCodeInvalidDateFormat: "Invalid date format",
	ErrCodeDOBInFuture:       "Date of birth cannot be in the future",
	ErrCodeDOBTooOld:         "Date of birth is invalid",
}

// ErrMalformedReply is returned when the diagnosis service reply cannot be decoded
var ErrMalformedReply = errors.New("malformed diagnosis reply")

// ValidationError represents input validation errors. Message is safe to show to the caller.
type ValidationError struct {
	Code    string      `json:"code"`
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"-"`
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// NewValidationError creates a new ValidationError for one of the known codes
func NewValidationError(code, field string, value interface{}) *ValidationError {
	return &ValidationError{
		Code:    code,
		Field:   field,
		Message: validationMessages[code],
		Value:   value,
	}
}

// ConfigurationError reports a required setting that is missing at call time
type ConfigurationError struct {
	Key string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s is not set", e.Key)
}

// NewConfigurationError creates a new ConfigurationError
func NewConfigurationError(key string) *ConfigurationError {
	return &ConfigurationError{Key: key}
}

// UpstreamError wraps any failure of the diagnosis service. The wrapped error is
// for server logs only.
type UpstreamError struct {
	Service string
	Err     error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s unavailable: %v", e.Service, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// NewUpstreamError creates a new UpstreamError
func NewUpstreamError(service string, err error) *UpstreamError {
	return &UpstreamError{Service: service, Err: err}
}

// NotificationError wraps a failure delivering to the messaging webhook
type NotificationError struct {
	StatusCode int
	Err        error
}

func (e *NotificationError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("notification delivery failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("notification delivery failed: %v", e.Err)
}

func (e *NotificationError) Unwrap() error {
	return e.Err
}

// IsValidationError reports whether err carries a ValidationError and returns it
func IsValidationError(err error) (*ValidationError, bool) {
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return vErr, true
	}
	return nil, false
}
