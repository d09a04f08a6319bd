package service

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/triage-intake-server/internal/domain"
)

// Accepted date of birth layouts. Date-only is what the intake form sends.
var dobLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

var minDateOfBirth = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)

// IntakeValidatorService implements the domain.IntakeValidator interface
type IntakeValidatorService struct {
	validate *validator.Validate
	sexRule  string
	now      func() time.Time
}

// NewIntakeValidatorService creates a new intake validator using the wall clock
func NewIntakeValidatorService() *IntakeValidatorService {
	return NewIntakeValidatorServiceWithClock(time.Now)
}

// NewIntakeValidatorServiceWithClock creates a new intake validator with an injected clock
func NewIntakeValidatorServiceWithClock(now func() time.Time) *IntakeValidatorService {
	sexes := make([]string, len(domain.ValidSexes))
	for i, s := range domain.ValidSexes {
		sexes[i] = string(s)
	}

	return &IntakeValidatorService{
		validate: validator.New(),
		sexRule:  "oneof=" + strings.Join(sexes, " "),
		now:      now,
	}
}

// Validate checks every field in a fixed order and returns the first failure
func (v *IntakeValidatorService) Validate(raw domain.RawSubmission) (*domain.PatientSubmission, error) {
	for _, field := range domain.RequiredFields {
		if value, ok := raw[field]; !ok || value == nil {
			return nil, domain.NewValidationError(domain.ErrCodeFieldsRequired, field, nil)
		}
	}

	name := Sanitize(asString(raw[domain.FieldName]), MaxNameLength)
	if name == "" {
		return nil, domain.NewValidationError(domain.ErrCodeNameInvalid, domain.FieldName, raw[domain.FieldName])
	}

	symptoms := Sanitize(asString(raw[domain.FieldSymptoms]), MaxSymptomsLength)
	if len([]rune(symptoms)) < MinSymptomsLength {
		return nil, domain.NewValidationError(domain.ErrCodeSymptomsTooShort, domain.FieldSymptoms, nil)
	}

	sex, ok := raw[domain.FieldSex].(string)
	if !ok || v.validate.Var(sex, v.sexRule) != nil {
		return nil, domain.NewValidationError(domain.ErrCodeInvalidSex, domain.FieldSex, raw[domain.FieldSex])
	}

	discomfort, ok := asNumber(raw[domain.FieldDiscomfort])
	if !ok || math.IsNaN(discomfort) || v.validate.Var(discomfort, "gte=0,lte=10") != nil {
		return nil, domain.NewValidationError(domain.ErrCodeDiscomfortRange, domain.FieldDiscomfort, raw[domain.FieldDiscomfort])
	}

	dob, err := v.validateDateOfBirth(raw[domain.FieldDOB])
	if err != nil {
		return nil, err
	}

	return &domain.PatientSubmission{
		Name:        name,
		DateOfBirth: dob,
		Symptoms:    symptoms,
		Sex:         domain.Sex(sex),
		Discomfort:  discomfort,
	}, nil
}

// validateDateOfBirth parses the date and checks it against today and 1900-01-01.
// Only the calendar date is compared so a birth date of today is accepted.
func (v *IntakeValidatorService) validateDateOfBirth(value interface{}) (time.Time, error) {
	raw, ok := value.(string)
	if !ok {
		return time.Time{}, domain.NewValidationError(domain.ErrCodeInvalidDateFormat, domain.FieldDOB, value)
	}

	dob, ok := parseDate(strings.TrimSpace(raw))
	if !ok {
		return time.Time{}, domain.NewValidationError(domain.ErrCodeInvalidDateFormat, domain.FieldDOB, raw)
	}

	if dob.After(calendarDate(v.now())) {
		return time.Time{}, domain.NewValidationError(domain.ErrCodeDOBInFuture, domain.FieldDOB, raw)
	}

	if dob.Before(minDateOfBirth) {
		return time.Time{}, domain.NewValidationError(domain.ErrCodeDOBTooOld, domain.FieldDOB, raw)
	}

	return dob, nil
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dobLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return calendarDate(t), true
		}
	}
	return time.Time{}, false
}

// calendarDate drops the clock part, keeping the date as seen in t's own location
func calendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func asString(value interface{}) string {
	s, _ := value.(string)
	return s
}

// asNumber accepts JSON numbers and numeric strings
func asNumber(value interface{}) (float64, bool) {
	switch n := value.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
