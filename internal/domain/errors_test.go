package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestValidationError(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		field    string
		value    interface{}
		expected string
	}{
		{
			name:     "Missing fields",
			code:     ErrCodeFieldsRequired,
			field:    FieldName,
			value:    nil,
			expected: "All fields are required",
		},
		{
			name:     "Invalid sex",
			code:     ErrCodeInvalidSex,
			field:    FieldSex,
			value:    "robot",
			expected: "Invalid sex value",
		},
		{
			name:     "Discomfort out of range",
			code:     ErrCodeDiscomfortRange,
			field:    FieldDiscomfort,
			value:    11,
			expected: "Discomfort level must be a number between 0 and 10",
		},
		{
			name:     "DOB too old",
			code:     ErrCodeDOBTooOld,
			field:    FieldDOB,
			value:    "1899-12-31",
			expected: "Date of birth is invalid",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewValidationError(tt.code, tt.field, tt.value)

			if err.Code != tt.code {
				t.Errorf("Expected code %s, got %s", tt.code, err.Code)
			}

			if err.Field != tt.field {
				t.Errorf("Expected field %s, got %s", tt.field, err.Field)
			}

			if err.Message != tt.expected {
				t.Errorf("Expected message %s, got %s", tt.expected, err.Message)
			}

			expectedError := "validation error for field '" + tt.field + "': " + tt.expected
			if err.Error() != expectedError {
				t.Errorf("Expected error string %s, got %s", expectedError, err.Error())
			}
		})
	}
}

func TestEveryValidationCodeHasMessage(t *testing.T) {
	codes := []string{
		ErrCodeFieldsRequired,
		ErrCodeNameInvalid,
		ErrCodeSymptomsTooShort,
		ErrCodeInvalidSex,
		ErrCodeDiscomfortRange,
		ErrCodeInvalidDateFormat,
		ErrCodeDOBInFuture,
		ErrCodeDOBTooOld,
	}

	seen := make(map[string]bool)
	for _, code := range codes {
		msg := validationMessages[code]
		if msg == "" {
			t.Errorf("Code %s has no message", code)
		}
		if seen[msg] {
			t.Errorf("Message %q is shared by more than one code", msg)
		}
		seen[msg] = true
	}
}

func TestIsValidationError(t *testing.T) {
	wrapped := fmt.Errorf("validating submission: %w", NewValidationError(ErrCodeNameInvalid, FieldName, ""))

	vErr, ok := IsValidationError(wrapped)
	if !ok {
		t.Fatal("Expected wrapped validation error to be detected")
	}
	if vErr.Code != ErrCodeNameInvalid {
		t.Errorf("Expected code %s, got %s", ErrCodeNameInvalid, vErr.Code)
	}

	if _, ok := IsValidationError(errors.New("boom")); ok {
		t.Error("Plain error must not be reported as a validation error")
	}
}

func TestUpstreamErrorUnwrap(t *testing.T) {
	err := NewUpstreamError("diagnosis", ErrMalformedReply)

	if !errors.Is(err, ErrMalformedReply) {
		t.Error("Expected UpstreamError to unwrap to the cause")
	}

	var upstream *UpstreamError
	if !errors.As(fmt.Errorf("outer: %w", err), &upstream) {
		t.Error("Expected errors.As to find UpstreamError")
	}
}

func TestNotificationErrorMessage(t *testing.T) {
	withStatus := &NotificationError{StatusCode: 404}
	if withStatus.Error() != "notification delivery failed with status 404" {
		t.Errorf("Unexpected message: %s", withStatus.Error())
	}

	cause := errors.New("connection refused")
	withCause := &NotificationError{Err: cause}
	if !errors.Is(withCause, cause) {
		t.Error("Expected NotificationError to unwrap to the cause")
	}
}

func TestConfigurationError(t *testing.T) {
	err := NewConfigurationError("diagnosis.api_key")
	if err.Error() != "configuration error: diagnosis.api_key is not set" {
		t.Errorf("Unexpected message: %s", err.Error())
	}
}
