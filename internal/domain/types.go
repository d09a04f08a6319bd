package domain

import (
	"time"
)

// Sex represents the patient-reported sex on the intake form
type Sex string

const (
	SexMale              Sex = "male"
	SexFemale            Sex = "female"
	SexNonBinary         Sex = "non-binary"
	SexTransgenderMale   Sex = "transgender-male"
	SexTransgenderFemale Sex = "transgender-female"
	SexPreferNotToSay    Sex = "prefer-not-to-say"
)

// ValidSexes is the closed set of accepted sex values, in form order
var ValidSexes = []Sex{
	SexMale,
	SexFemale,
	SexNonBinary,
	SexTransgenderMale,
	SexTransgenderFemale,
	SexPreferNotToSay,
}

// TriageLevel represents the coarse urgency assigned to a submission
type TriageLevel string

const (
	TriageEmergency TriageLevel = "emergency"
	TriageUrgent    TriageLevel = "urgent"
	TriageNonUrgent TriageLevel = "non-urgent"
)

// Likelihood is the qualitative confidence label returned for a candidate condition
type Likelihood string

const (
	LikelihoodHigh   Likelihood = "High"
	LikelihoodMedium Likelihood = "Medium"
	LikelihoodLow    Likelihood = "Low"
)

// Probability maps a likelihood label to its fixed numeric probability.
// Unrecognized labels map to the Low value.
func (l Likelihood) Probability() float64 {
	switch l {
	case LikelihoodHigh:
		return 0.8
	case LikelihoodMedium:
		return 0.6
	default:
		return 0.4
	}
}

// RawSubmission is the untyped request body as decoded from JSON
type RawSubmission map[string]interface{}

// Field names of the intake form
const (
	FieldName       = "name"
	FieldDOB        = "dob"
	FieldSymptoms   = "symptoms"
	FieldSex        = "sex"
	FieldDiscomfort = "discomfort"
)

// RequiredFields lists every field that must be present in a submission
var RequiredFields = []string{FieldName, FieldDOB, FieldSymptoms, FieldSex, FieldDiscomfort}

// PatientSubmission is a fully validated intake form. It lives only for one request.
type PatientSubmission struct {
	Name        string
	DateOfBirth time.Time
	Symptoms    string
	Sex         Sex
	Discomfort  float64
}

// Condition is a single candidate condition from the diagnosis service
type Condition struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Probability float64 `json:"probability"`
	DisplayName string  `json:"common_name"`
}

// DiagnosisResult is the normalized diagnosis for one submission
type DiagnosisResult struct {
	TriageLevel       TriageLevel `json:"triage_level"`
	Conditions        []Condition `json:"conditions"`
	RecommendedAction string      `json:"recommended_action"`
}

// SubmissionMeta carries the synthetic identifier and timestamp shared by the
// response and the staff notification
type SubmissionMeta struct {
	PatientID   string
	SubmittedAt time.Time
}

// TriageResponse is the success body of the intake endpoint
type TriageResponse struct {
	Success           bool        `json:"success"`
	Message           string      `json:"message"`
	PatientID         string      `json:"patientId"`
	SubmittedAt       time.Time   `json:"submittedAt"`
	TriageLevel       TriageLevel `json:"triageLevel"`
	Conditions        []Condition `json:"conditions"`
	RecommendedAction string      `json:"recommendedAction"`
}

// ErrorResponse is the body of every non-200 response
type ErrorResponse struct {
	Error string `json:"error"`
}

// Fixed user-facing texts
const (
	SubmissionAcceptedMessage = "Your information has been sent to our medical team. You will be contacted shortly."
	DefaultRecommendedAction  = "Please consult with a healthcare provider"
	GenericFailureMessage     = "Failed to process request. Please try again later."
)
