package service

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/triage-intake-server/internal/domain"
)

// BestEffort runs a side effect whose failure must never reach the caller.
// Errors and panics are logged and discarded. It reports whether fn succeeded.
func BestEffort(logger *logrus.Entry, operation string, fn func() error) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			logger.WithFields(logrus.Fields{
				"operation": operation,
				"panic":     fmt.Sprint(r),
			}).Error("Best-effort operation panicked")
			ok = false
		}
	}()

	err := fn()
	if err == nil {
		return true
	}

	entry := logger.WithField("operation", operation).WithError(err)

	var cfgErr *domain.ConfigurationError
	if errors.As(err, &cfgErr) {
		entry.WithField("config_key", cfgErr.Key).Error("Best-effort operation skipped: missing configuration")
		return false
	}

	entry.Warn("Best-effort operation failed")
	return false
}
