package domain

import (
	"context"
)

// IntakeValidator turns a raw submission into a validated PatientSubmission
type IntakeValidator interface {
	Validate(raw RawSubmission) (*PatientSubmission, error)
}

// DiagnosisClient obtains a triage diagnosis from the AI completion service
type DiagnosisClient interface {
	Diagnose(ctx context.Context, symptoms string, age int, sex Sex, discomfort float64) (*DiagnosisResult, error)
}

// NotificationFormatter renders a submission and its diagnosis for the messaging sink
type NotificationFormatter interface {
	Format(patient *PatientSubmission, diagnosis *DiagnosisResult, meta SubmissionMeta) *NotificationPayload
}

// NotificationSender delivers a payload to the messaging sink
type NotificationSender interface {
	Send(ctx context.Context, payload *NotificationPayload) error
}

// TriageSubmitter runs the full intake pipeline for one request
type TriageSubmitter interface {
	Submit(ctx context.Context, raw RawSubmission) (*TriageResponse, error)
}

// ConfigManager defines the interface for configuration management
type ConfigManager interface {
	GetConfig() *Config
	GetServerConfig() *ServerConfig
	GetDiagnosisConfig() *DiagnosisConfig
	GetNotificationConfig() *NotificationConfig
	GetLoggingConfig() *LoggingConfig
	Validate() error
	IsProduction() bool
	IsDevelopment() bool
}
