package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/triage-intake-server/internal/domain"
)

type diagnosisCall struct {
	symptoms   string
	age        int
	sex        domain.Sex
	discomfort float64
}

type fakeDiagnosisClient struct {
	calls  []diagnosisCall
	result *domain.DiagnosisResult
	err    error
}

func (f *fakeDiagnosisClient) Diagnose(ctx context.Context, symptoms string, age int, sex domain.Sex, discomfort float64) (*domain.DiagnosisResult, error) {
	f.calls = append(f.calls, diagnosisCall{symptoms: symptoms, age: age, sex: sex, discomfort: discomfort})
	return f.result, f.err
}

type fakeNotificationSender struct {
	payloads []*domain.NotificationPayload
	err      error
	panics   bool
}

func (f *fakeNotificationSender) Send(ctx context.Context, payload *domain.NotificationPayload) error {
	if f.panics {
		panic("sender exploded")
	}
	f.payloads = append(f.payloads, payload)
	return f.err
}

func newTestTriageService(diagnosis domain.DiagnosisClient, sender domain.NotificationSender) (*TriageService, *test.Hook) {
	logger, hook := test.NewNullLogger()
	svc := NewTriageService(
		NewIntakeValidatorServiceWithClock(fixedClock),
		diagnosis,
		NewSlackNotificationFormatter(nil),
		sender,
		logger,
	).WithClock(fixedClock)
	return svc, hook
}

func TestTriageService_Submit(t *testing.T) {
	diagnosis := &fakeDiagnosisClient{result: &domain.DiagnosisResult{
		TriageLevel: domain.TriageUrgent,
		Conditions: []domain.Condition{
			{ID: "c_1", Name: "Migraine", Probability: 0.8, DisplayName: "Migraine"},
		},
		RecommendedAction: "See a doctor within 24 hours",
	}}
	sender := &fakeNotificationSender{}
	svc, hook := newTestTriageService(diagnosis, sender)

	ctx := domain.WithCorrelationID(context.Background(), "req-1")
	response, err := svc.Submit(ctx, validRaw())
	require.NoError(t, err)

	require.Len(t, diagnosis.calls, 1)
	assert.Equal(t, diagnosisCall{
		symptoms:   "Persistent headache for three days",
		age:        35,
		sex:        domain.SexFemale,
		discomfort: 6,
	}, diagnosis.calls[0])

	assert.True(t, response.Success)
	assert.Equal(t, domain.SubmissionAcceptedMessage, response.Message)
	assert.Equal(t, "PAT-1749997800000", response.PatientID)
	assert.Equal(t, fixedNow, response.SubmittedAt)
	assert.Equal(t, domain.TriageUrgent, response.TriageLevel)
	assert.Equal(t, "See a doctor within 24 hours", response.RecommendedAction)
	require.Len(t, response.Conditions, 1)
	assert.Equal(t, "Migraine", response.Conditions[0].DisplayName)

	require.Len(t, sender.payloads, 1)
	footer := sender.payloads[0].Blocks[len(sender.payloads[0].Blocks)-1]
	assert.Contains(t, footer.Elements[0].Text, response.PatientID)

	var messages []string
	for _, entry := range hook.AllEntries() {
		messages = append(messages, entry.Message)
		assert.Equal(t, "req-1", entry.Data["correlation_id"])
		for _, value := range entry.Data {
			assert.NotEqual(t, "Jane Doe", value, "patient name must not be logged")
		}
	}
	assert.Equal(t, []string{"Processing triage request", "AI analysis complete", "Staff notification sent"}, messages)
}

func TestTriageService_SubmitNotificationFailureIsIgnored(t *testing.T) {
	result := &domain.DiagnosisResult{
		TriageLevel:       domain.TriageNonUrgent,
		Conditions:        nil,
		RecommendedAction: domain.DefaultRecommendedAction,
	}

	tests := []struct {
		name      string
		sender    *fakeNotificationSender
		wantLevel logrus.Level
	}{
		{"webhook rejects", &fakeNotificationSender{err: &domain.NotificationError{StatusCode: 500}}, logrus.WarnLevel},
		{"webhook not configured", &fakeNotificationSender{err: domain.NewConfigurationError("notification.webhook_url")}, logrus.ErrorLevel},
		{"sender panics", &fakeNotificationSender{panics: true}, logrus.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, hook := newTestTriageService(&fakeDiagnosisClient{result: result}, tt.sender)

			response, err := svc.Submit(context.Background(), validRaw())
			require.NoError(t, err)

			assert.True(t, response.Success)
			assert.Equal(t, domain.TriageNonUrgent, response.TriageLevel)
			assert.NotNil(t, response.Conditions)
			assert.Empty(t, response.Conditions)

			assert.Equal(t, tt.wantLevel, hook.LastEntry().Level)
			for _, entry := range hook.AllEntries() {
				assert.NotEqual(t, "Staff notification sent", entry.Message)
			}
		})
	}
}

func TestTriageService_SubmitValidationFailure(t *testing.T) {
	diagnosis := &fakeDiagnosisClient{}
	sender := &fakeNotificationSender{}
	svc, _ := newTestTriageService(diagnosis, sender)

	_, err := svc.Submit(context.Background(), withField("discomfort", float64(12)))

	var validationErr *domain.ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, domain.ErrCodeDiscomfortRange, validationErr.Code)
	assert.Empty(t, diagnosis.calls, "diagnosis must not run on invalid input")
	assert.Empty(t, sender.payloads)
}

func TestTriageService_SubmitDiagnosisFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"malformed reply", domain.NewUpstreamError("diagnosis", domain.ErrMalformedReply)},
		{"missing credential", domain.NewConfigurationError("diagnosis.api_key")},
		{"timeout", domain.NewUpstreamError("diagnosis", context.DeadlineExceeded)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := &fakeNotificationSender{}
			svc, _ := newTestTriageService(&fakeDiagnosisClient{err: tt.err}, sender)

			response, err := svc.Submit(context.Background(), validRaw())
			assert.Nil(t, response)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.err))
			_, isValidation := domain.IsValidationError(err)
			assert.False(t, isValidation)
			assert.Empty(t, sender.payloads, "no notification without a diagnosis")
		})
	}
}

func TestTriageService_PatientIDFollowsClock(t *testing.T) {
	later := fixedNow.Add(1500 * time.Millisecond)
	logger, _ := test.NewNullLogger()
	svc := NewTriageService(
		NewIntakeValidatorServiceWithClock(fixedClock),
		&fakeDiagnosisClient{result: &domain.DiagnosisResult{TriageLevel: domain.TriageEmergency}},
		NewSlackNotificationFormatter(nil),
		&fakeNotificationSender{},
		logger,
	).WithClock(func() time.Time { return later })

	response, err := svc.Submit(context.Background(), validRaw())
	require.NoError(t, err)
	assert.Equal(t, "PAT-1749997801500", response.PatientID)
}
