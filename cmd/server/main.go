package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/triage-intake-server/internal/api"
	"github.com/triage-intake-server/internal/config"
	"github.com/triage-intake-server/internal/health"
	"github.com/triage-intake-server/internal/logging"
	"github.com/triage-intake-server/internal/service"
	"github.com/triage-intake-server/internal/setup"
	"github.com/triage-intake-server/pkg/external"
)

func main() {
	// A local .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "triage-server",
		Short: "Patient triage intake server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(configCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the triage intake HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the server configuration",
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := config.NewManager()
			if err != nil {
				return err
			}
			setup.PrintStatus(cmd.OutOrStdout(), setup.GetStatus(manager))
			return nil
		},
	}

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := config.NewManager()
			if err != nil {
				return err
			}
			valid, issues := setup.Validate(manager)
			setup.PrintValidation(cmd.OutOrStdout(), valid, issues)
			if !valid {
				return fmt.Errorf("configuration is invalid")
			}
			return nil
		},
	}

	cmd.AddCommand(statusCmd, validateCmd)
	return cmd
}

func runServer() error {
	// Load configuration
	configManager, err := config.NewManager()
	if err != nil {
		return err
	}

	logger := logging.NewLogger(*configManager.GetLoggingConfig())

	// Validate configuration
	if err := configManager.Validate(); err != nil {
		logger.WithError(err).Error("Configuration validation failed")
		return err
	}

	for _, key := range configManager.MissingSecrets() {
		logger.WithField("config_key", key).Warn("Setting is not configured; dependent requests will fail")
	}

	cfg := configManager.GetConfig()

	diagnosis := external.NewResilientDiagnosisClient(
		external.NewDeepSeekClient(cfg.Diagnosis, logger),
		external.DefaultDiagnosisBreakerConfig(),
		logger,
	)

	triageService := service.NewTriageService(
		service.NewIntakeValidatorService(),
		diagnosis,
		service.NewSlackNotificationFormatter(nil),
		external.NewSlackWebhookSender(cfg.Notification),
		logger,
	)

	checker := health.NewHealthChecker()
	checker.RegisterCheck(health.NewDiagnosisHealthCheck(configManager.GetDiagnosisConfig(), diagnosis))
	checker.RegisterCheck(health.NewNotificationHealthCheck(configManager.GetNotificationConfig()))

	server := api.NewServer(configManager, triageService, checker, logger)

	// Setup graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.WithFields(logrus.Fields{
		"host":        cfg.Server.Host,
		"port":        cfg.Server.Port,
		"environment": cfg.Environment,
	}).Info("Starting triage intake server")

	if err := server.Start(ctx); err != nil {
		logger.WithError(err).Error("Server stopped with error")
		return err
	}

	logger.Info("Server stopped")
	return nil
}
