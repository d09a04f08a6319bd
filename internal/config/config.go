package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/triage-intake-server/internal/domain"
)

// Manager implements the ConfigManager interface using Viper
type Manager struct {
	v      *viper.Viper
	config *domain.Config
}

// NewManager creates a new configuration manager
func NewManager() (*Manager, error) {
	m := &Manager{}
	if err := m.loadConfig(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return m, nil
}

// loadConfig loads configuration from defaults, an optional file and the environment
func (m *Manager) loadConfig() error {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/triage-intake/")

	v.SetEnvPrefix("TRIAGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Conventional names used by deployment platforms
	if err := v.BindEnv("diagnosis.api_key", "TRIAGE_DIAGNOSIS_API_KEY", "DEEPSEEK_API_KEY"); err != nil {
		return fmt.Errorf("error binding diagnosis credential: %w", err)
	}
	if err := v.BindEnv("notification.webhook_url", "TRIAGE_NOTIFICATION_WEBHOOK_URL", "SLACK_WEBHOOK_URL"); err != nil {
		return fmt.Errorf("error binding webhook URL: %w", err)
	}

	setDefaults(v)

	// Config file is optional
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &domain.Config{}
	if err := v.Unmarshal(config); err != nil {
		return fmt.Errorf("error unmarshaling config: %w", err)
	}

	m.v = v
	m.config = config
	return nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "120s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.max_body_bytes", 64*1024)

	// Diagnosis service defaults
	v.SetDefault("diagnosis.base_url", "https://api.deepseek.com/v1")
	v.SetDefault("diagnosis.api_key", "")
	v.SetDefault("diagnosis.model", "deepseek-reasoner")
	v.SetDefault("diagnosis.temperature", 0.1)
	v.SetDefault("diagnosis.timeout", "90s")

	// Notification defaults
	v.SetDefault("notification.webhook_url", "")
	v.SetDefault("notification.timeout", "10s")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
}

// GetConfig returns the complete configuration
func (m *Manager) GetConfig() *domain.Config {
	return m.config
}

// GetServerConfig returns server configuration
func (m *Manager) GetServerConfig() *domain.ServerConfig {
	return &m.config.Server
}

// GetDiagnosisConfig returns the diagnosis service configuration
func (m *Manager) GetDiagnosisConfig() *domain.DiagnosisConfig {
	return &m.config.Diagnosis
}

// GetNotificationConfig returns the notification webhook configuration
func (m *Manager) GetNotificationConfig() *domain.NotificationConfig {
	return &m.config.Notification
}

// GetLoggingConfig returns logging configuration
func (m *Manager) GetLoggingConfig() *domain.LoggingConfig {
	return &m.config.Logging
}

// Validate validates the configuration. A missing credential or webhook URL is
// not a validation failure: see MissingSecrets.
func (m *Manager) Validate() error {
	config := m.config

	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}
	if config.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("invalid max body size: %d", config.Server.MaxBodyBytes)
	}

	if config.Diagnosis.BaseURL == "" {
		return fmt.Errorf("diagnosis base URL is required")
	}
	if config.Diagnosis.Model == "" {
		return fmt.Errorf("diagnosis model is required")
	}
	if config.Diagnosis.Temperature < 0 || config.Diagnosis.Temperature > 2 {
		return fmt.Errorf("invalid diagnosis temperature: %v", config.Diagnosis.Temperature)
	}
	if config.Diagnosis.Timeout <= 0 {
		return fmt.Errorf("diagnosis timeout must be positive")
	}
	if config.Notification.Timeout <= 0 {
		return fmt.Errorf("notification timeout must be positive")
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[strings.ToLower(config.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", config.Logging.Level)
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[strings.ToLower(config.Logging.Format)] {
		return fmt.Errorf("invalid log format: %s", config.Logging.Format)
	}

	return nil
}

// MissingSecrets lists the settings whose absence makes a pipeline stage fail at request time
func (m *Manager) MissingSecrets() []string {
	var missing []string
	if m.config.Diagnosis.APIKey == "" {
		missing = append(missing, "diagnosis.api_key")
	}
	if m.config.Notification.WebhookURL == "" {
		missing = append(missing, "notification.webhook_url")
	}
	return missing
}

// IsProduction returns true if running in production mode
func (m *Manager) IsProduction() bool {
	return strings.ToLower(m.config.Environment) == "production"
}

// IsDevelopment returns true if running in development mode
func (m *Manager) IsDevelopment() bool {
	env := strings.ToLower(m.config.Environment)
	return env == "development" || env == "dev" || env == ""
}
