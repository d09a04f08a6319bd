package external

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/triage-intake-server/internal/domain"
)

// CircuitBreakerConfig represents circuit breaker configuration
type CircuitBreakerConfig struct {
	MaxRequests  uint32
	Interval     time.Duration
	Timeout      time.Duration
	MinRequests  uint32
	FailureRatio float64
}

// DefaultDiagnosisBreakerConfig returns the breaker settings for the diagnosis service
func DefaultDiagnosisBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		MaxRequests:  5,
		Interval:     30 * time.Second,
		Timeout:      60 * time.Second,
		MinRequests:  3,
		FailureRatio: 0.6,
	}
}

// ResilientDiagnosisClient wraps a diagnosis client with a circuit breaker.
// While the breaker is open calls fail fast with *domain.UpstreamError; no call is retried.
type ResilientDiagnosisClient struct {
	client  domain.DiagnosisClient
	breaker *gobreaker.CircuitBreaker
}

// NewResilientDiagnosisClient creates a new resilient diagnosis client
func NewResilientDiagnosisClient(client domain.DiagnosisClient, config CircuitBreakerConfig, logger *logrus.Logger) *ResilientDiagnosisClient {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "DeepSeek",
		MaxRequests: config.MaxRequests,
		Interval:    config.Interval,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= config.MinRequests && failureRatio >= config.FailureRatio
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Circuit breaker state changed")
		},
		// Missing configuration says nothing about upstream health
		IsSuccessful: func(err error) bool {
			var cfgErr *domain.ConfigurationError
			return err == nil || errors.As(err, &cfgErr)
		},
	})

	return &ResilientDiagnosisClient{
		client:  client,
		breaker: breaker,
	}
}

// Diagnose calls the wrapped client through the circuit breaker
func (r *ResilientDiagnosisClient) Diagnose(ctx context.Context, symptoms string, age int, sex domain.Sex, discomfort float64) (*domain.DiagnosisResult, error) {
	result, err := r.breaker.Execute(func() (interface{}, error) {
		return r.client.Diagnose(ctx, symptoms, age, sex, discomfort)
	})

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, domain.NewUpstreamError(diagnosisServiceName, err)
		}
		return nil, err
	}

	return result.(*domain.DiagnosisResult), nil
}

// State returns the current breaker state
func (r *ResilientDiagnosisClient) State() gobreaker.State {
	return r.breaker.State()
}
