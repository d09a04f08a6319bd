package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/triage-intake-server/internal/domain"
)

// TriageService runs the intake pipeline: validate, derive age, diagnose,
// notify staff (best effort) and build the response. Stages run strictly in order.
type TriageService struct {
	validator domain.IntakeValidator
	diagnosis domain.DiagnosisClient
	formatter domain.NotificationFormatter
	sender    domain.NotificationSender
	logger    *logrus.Logger
	now       func() time.Time
}

// NewTriageService creates a new triage service using the wall clock
func NewTriageService(
	validator domain.IntakeValidator,
	diagnosis domain.DiagnosisClient,
	formatter domain.NotificationFormatter,
	sender domain.NotificationSender,
	logger *logrus.Logger,
) *TriageService {
	return &TriageService{
		validator: validator,
		diagnosis: diagnosis,
		formatter: formatter,
		sender:    sender,
		logger:    logger,
		now:       time.Now,
	}
}

// WithClock replaces the clock used for age derivation and submission timestamps
func (s *TriageService) WithClock(now func() time.Time) *TriageService {
	s.now = now
	return s
}

// Submit processes one intake submission. A *domain.ValidationError means the
// caller sent bad input; any other error is a service failure.
func (s *TriageService) Submit(ctx context.Context, raw domain.RawSubmission) (*domain.TriageResponse, error) {
	patient, err := s.validator.Validate(raw)
	if err != nil {
		return nil, err
	}

	now := s.now()
	age := AgeOn(patient.DateOfBirth, now)

	log := s.logger.WithFields(logrus.Fields{
		"correlation_id": domain.CorrelationIDFromContext(ctx),
	})
	log.WithFields(logrus.Fields{
		"age":        age,
		"discomfort": patient.Discomfort,
	}).Info("Processing triage request")

	diagnosis, err := s.diagnosis.Diagnose(ctx, patient.Symptoms, age, patient.Sex, patient.Discomfort)
	if err != nil {
		return nil, fmt.Errorf("diagnosing submission: %w", err)
	}

	log.WithField("triage_level", diagnosis.TriageLevel).Info("AI analysis complete")

	meta := domain.SubmissionMeta{
		PatientID:   fmt.Sprintf("PAT-%d", now.UnixMilli()),
		SubmittedAt: now.UTC(),
	}

	if BestEffort(log, "staff_notification", func() error {
		payload := s.formatter.Format(patient, diagnosis, meta)
		return s.sender.Send(ctx, payload)
	}) {
		log.Info("Staff notification sent")
	}

	conditions := diagnosis.Conditions
	if conditions == nil {
		conditions = []domain.Condition{}
	}

	return &domain.TriageResponse{
		Success:           true,
		Message:           domain.SubmissionAcceptedMessage,
		PatientID:         meta.PatientID,
		SubmittedAt:       meta.SubmittedAt,
		TriageLevel:       diagnosis.TriageLevel,
		Conditions:        conditions,
		RecommendedAction: diagnosis.RecommendedAction,
	}, nil
}
