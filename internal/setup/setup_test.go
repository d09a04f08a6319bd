package setup

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/triage-intake-server/internal/config"
)

func newManager(t *testing.T, env map[string]string) *config.Manager {
	t.Helper()

	for _, key := range []string{"DEEPSEEK_API_KEY", "SLACK_WEBHOOK_URL", "TRIAGE_DIAGNOSIS_API_KEY", "TRIAGE_NOTIFICATION_WEBHOOK_URL", "TRIAGE_SERVER_PORT"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	for key, value := range env {
		t.Setenv(key, value)
	}

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { os.Chdir(wd) })

	manager, err := config.NewManager()
	require.NoError(t, err)
	return manager
}

func TestGetStatus(t *testing.T) {
	manager := newManager(t, map[string]string{"DEEPSEEK_API_KEY": "sk-test"})

	status := GetStatus(manager)
	assert.Equal(t, "0.0.0.0:8080", status.ListenAddr)
	assert.Equal(t, "deepseek-reasoner", status.DiagnosisModel)
	assert.True(t, status.DiagnosisConfigured)
	assert.False(t, status.NotificationConfigured)
	require.Len(t, status.Issues, 1)
	assert.Contains(t, status.Issues[0], "notification.webhook_url")

	var out bytes.Buffer
	PrintStatus(&out, status)
	assert.Contains(t, out.String(), "Credential: ✓ Configured")
	assert.Contains(t, out.String(), "Webhook: ✗ Not configured")
	assert.NotContains(t, out.String(), "sk-test")
}

func TestValidate(t *testing.T) {
	t.Run("missing secrets are warnings", func(t *testing.T) {
		manager := newManager(t, nil)

		valid, issues := Validate(manager)
		assert.True(t, valid)
		assert.Len(t, issues, 2)
	})

	t.Run("fully configured", func(t *testing.T) {
		manager := newManager(t, map[string]string{
			"DEEPSEEK_API_KEY":  "sk-test",
			"SLACK_WEBHOOK_URL": "https://hooks.example.com/services/abc",
		})

		valid, issues := Validate(manager)
		assert.True(t, valid)
		assert.Empty(t, issues)

		var out bytes.Buffer
		PrintValidation(&out, valid, issues)
		assert.Equal(t, "✓ Configuration is valid!\n", out.String())
	})

	t.Run("invalid port is an error", func(t *testing.T) {
		manager := newManager(t, map[string]string{"TRIAGE_SERVER_PORT": "0"})

		valid, issues := Validate(manager)
		assert.False(t, valid)
		assert.Contains(t, issues[0], "invalid server port")
	})
}
