package service

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/triage-intake-server/internal/domain"
)

// MaxNotifiedConditions bounds the number of conditions rendered in a notification
const MaxNotifiedConditions = 3

const submittedTimeLayout = "Jan 2, 2006 3:04 PM MST"

var triageLabels = map[domain.TriageLevel]string{
	domain.TriageEmergency: "🚨 Emergency",
	domain.TriageUrgent:    "⚠️ Urgent",
	domain.TriageNonUrgent: "✅ Non-Urgent",
}

const unknownTriageLabel = "❓ Unknown"

var markupEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// SlackNotificationFormatter renders staff notifications in Block Kit layout
type SlackNotificationFormatter struct {
	location *time.Location
}

// NewSlackNotificationFormatter creates a formatter that prints timestamps in loc.
// A nil loc means UTC.
func NewSlackNotificationFormatter(loc *time.Location) *SlackNotificationFormatter {
	if loc == nil {
		loc = time.UTC
	}
	return &SlackNotificationFormatter{location: loc}
}

// Format builds the notification payload. It performs no I/O.
func (f *SlackNotificationFormatter) Format(patient *domain.PatientSubmission, diagnosis *domain.DiagnosisResult, meta domain.SubmissionMeta) *domain.NotificationPayload {
	recommended := diagnosis.RecommendedAction
	if recommended == "" {
		recommended = domain.DefaultRecommendedAction
	}

	return &domain.NotificationPayload{
		Blocks: []domain.Block{
			{
				Type: domain.BlockTypeHeader,
				Text: &domain.TextObject{Type: domain.TextTypePlain, Text: "🏥 New Patient Triage Alert"},
			},
			{
				Type: domain.BlockTypeSection,
				Fields: []domain.TextObject{
					markdown("*Patient Name:*\n" + EscapeMarkup(patient.Name)),
					// Rendered from the parsed date, so any submitted clock part is dropped
					markdown("*Date of Birth:*\n" + patient.DateOfBirth.Format("2006-01-02")),
					markdown("*Sex:*\n" + EscapeMarkup(HumanizeSex(patient.Sex))),
					markdown("*Discomfort Level:*\n" + FormatDiscomfort(patient.Discomfort) + "/10"),
					markdown("*Triage Level:*\n" + TriageLabel(diagnosis.TriageLevel)),
					markdown("*Submitted:*\n" + meta.SubmittedAt.In(f.location).Format(submittedTimeLayout)),
				},
			},
			{
				Type: domain.BlockTypeSection,
				Text: textPtr(markdown("*Symptoms Description:*\n" + EscapeMarkup(patient.Symptoms))),
			},
			{
				Type: domain.BlockTypeSection,
				Text: textPtr(markdown("*Top Possible Conditions:*\n" + formatTopConditions(diagnosis.Conditions))),
			},
			{
				Type: domain.BlockTypeSection,
				Text: textPtr(markdown("*Recommended Action:*\n" + EscapeMarkup(recommended))),
			},
			{
				Type: domain.BlockTypeDivider,
			},
			{
				Type: domain.BlockTypeContext,
				Elements: []domain.TextObject{
					markdown("Powered by DeepSeek AI • Patient ID: " + meta.PatientID),
				},
			},
		},
	}
}

func formatTopConditions(conditions []domain.Condition) string {
	if len(conditions) > MaxNotifiedConditions {
		conditions = conditions[:MaxNotifiedConditions]
	}

	lines := make([]string, 0, len(conditions))
	for i, c := range conditions {
		name := c.Name
		if name == "" {
			name = "Unknown"
		}
		percent := int(math.Round(c.Probability * 100))
		lines = append(lines, fmt.Sprintf("%d. *%s* (%d%% probability)", i+1, EscapeMarkup(name), percent))
	}

	return strings.Join(lines, "\n")
}

// EscapeMarkup escapes the characters the messaging sink treats as markup
func EscapeMarkup(s string) string {
	return markupEscaper.Replace(s)
}

// HumanizeSex capitalizes the first letter and turns hyphens into spaces,
// e.g. "transgender-male" becomes "Transgender male"
func HumanizeSex(sex domain.Sex) string {
	s := strings.ReplaceAll(string(sex), "-", " ")
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}

// TriageLabel returns the decorated display label for a triage level
func TriageLabel(level domain.TriageLevel) string {
	if label, ok := triageLabels[level]; ok {
		return label
	}
	return unknownTriageLabel
}

// FormatDiscomfort prints whole numbers without a decimal part
func FormatDiscomfort(d float64) string {
	return strconv.FormatFloat(d, 'f', -1, 64)
}

func markdown(text string) domain.TextObject {
	return domain.TextObject{Type: domain.TextTypeMarkdown, Text: text}
}

func textPtr(t domain.TextObject) *domain.TextObject {
	return &t
}
