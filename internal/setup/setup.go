// Package setup reports on the deployment configuration of the triage intake server.
package setup

import (
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"

	"github.com/triage-intake-server/internal/config"
)

// missingSecretSuffix marks issues that degrade a pipeline stage without
// preventing startup
const missingSecretSuffix = "is not set; requests depending on it will fail"

// Status represents the current setup status.
type Status struct {
	Environment            string
	ListenAddr             string
	DiagnosisEndpoint      string
	DiagnosisModel         string
	DiagnosisConfigured    bool
	NotificationConfigured bool
	LogLevel               string
	Issues                 []string
}

// GetStatus checks the current setup status.
func GetStatus(manager *config.Manager) *Status {
	cfg := manager.GetConfig()

	status := &Status{
		Environment:            cfg.Environment,
		ListenAddr:             net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		DiagnosisEndpoint:      cfg.Diagnosis.BaseURL,
		DiagnosisModel:         cfg.Diagnosis.Model,
		DiagnosisConfigured:    cfg.Diagnosis.APIKey != "",
		NotificationConfigured: cfg.Notification.WebhookURL != "",
		LogLevel:               cfg.Logging.Level,
		Issues:                 []string{},
	}

	if err := manager.Validate(); err != nil {
		status.Issues = append(status.Issues, err.Error())
	}
	for _, key := range manager.MissingSecrets() {
		status.Issues = append(status.Issues, fmt.Sprintf("%s %s", key, missingSecretSuffix))
	}

	return status
}

// Validate checks if the current setup is valid. Missing secrets are reported
// but do not make the setup invalid.
func Validate(manager *config.Manager) (bool, []string) {
	status := GetStatus(manager)
	return allWarnings(status.Issues), status.Issues
}

// allWarnings returns true if all issues are just warnings (not errors).
func allWarnings(issues []string) bool {
	for _, issue := range issues {
		if !strings.HasSuffix(issue, missingSecretSuffix) {
			return false
		}
	}
	return true
}

// PrintStatus writes a human-readable status report.
func PrintStatus(w io.Writer, status *Status) {
	fmt.Fprintln(w, "Triage Intake Server Status")
	fmt.Fprintln(w, "===========================")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Server:")
	fmt.Fprintf(w, "  Environment: %s\n", status.Environment)
	fmt.Fprintf(w, "  Listen address: %s\n", status.ListenAddr)
	fmt.Fprintf(w, "  Log level: %s\n", status.LogLevel)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Diagnosis service:")
	fmt.Fprintf(w, "  Endpoint: %s\n", status.DiagnosisEndpoint)
	fmt.Fprintf(w, "  Model: %s\n", status.DiagnosisModel)
	fmt.Fprintf(w, "  Credential: %s\n", mark(status.DiagnosisConfigured))
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Staff notifications:")
	fmt.Fprintf(w, "  Webhook: %s\n", mark(status.NotificationConfigured))

	if len(status.Issues) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Issues:")
		for _, issue := range status.Issues {
			fmt.Fprintf(w, "  - %s\n", issue)
		}
	}
}

// PrintValidation writes the result of Validate.
func PrintValidation(w io.Writer, valid bool, issues []string) {
	if valid {
		fmt.Fprintln(w, "✓ Configuration is valid!")
	} else {
		fmt.Fprintln(w, "✗ Configuration has issues:")
	}
	for _, issue := range issues {
		fmt.Fprintf(w, "  - %s\n", issue)
	}
}

func mark(ok bool) string {
	if ok {
		return "✓ Configured"
	}
	return "✗ Not configured"
}
