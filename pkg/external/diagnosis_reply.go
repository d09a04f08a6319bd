package external

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	"github.com/triage-intake-server/internal/domain"
)

// diagnosisReply is the JSON object the completion service is instructed to return
type diagnosisReply struct {
	TriageLevel        string           `json:"triage_level"`
	PossibleConditions []replyCondition `json:"possible_conditions"`
	RecommendedAction  replyText        `json:"recommended_action"`
}

type replyCondition struct {
	Condition  string    `json:"condition"`
	Likelihood replyText `json:"likelihood"`
}

// replyText is a free-text reply field. Values of any other JSON type
// decode as empty so the field falls back to its default.
type replyText string

func (t *replyText) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*t = ""
		return nil
	}
	*t = replyText(s)
	return nil
}

// ParseDiagnosisReply decodes the raw reply text into a DiagnosisResult.
// Anything that is not a JSON object of the expected shape yields
// domain.ErrMalformedReply. Absent fields fall back to their defaults.
func ParseDiagnosisReply(content string) (*domain.DiagnosisResult, error) {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "{") {
		return nil, fmt.Errorf("%w: reply is not a JSON object", domain.ErrMalformedReply)
	}

	var reply diagnosisReply
	if err := json.Unmarshal([]byte(trimmed), &reply); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedReply, err)
	}

	return reply.normalize(), nil
}

func (r diagnosisReply) normalize() *domain.DiagnosisResult {
	level := domain.TriageLevel(strings.ToLower(strings.TrimSpace(r.TriageLevel)))
	if level == "" {
		level = domain.TriageNonUrgent
	}

	conditions := make([]domain.Condition, 0, len(r.PossibleConditions))
	for i, c := range r.PossibleConditions {
		conditions = append(conditions, domain.Condition{
			ID:          fmt.Sprintf("c_%d", i+1),
			Name:        c.Condition,
			Probability: domain.Likelihood(c.Likelihood).Probability(),
			DisplayName: c.Condition,
		})
	}

	action := string(r.RecommendedAction)
	if action == "" {
		action = domain.DefaultRecommendedAction
	}

	return &domain.DiagnosisResult{
		TriageLevel:       level,
		Conditions:        conditions,
		RecommendedAction: action,
	}
}
