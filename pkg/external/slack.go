package external

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"

	"github.com/triage-intake-server/internal/domain"
)

// SlackWebhookSender posts notification payloads to a Slack incoming webhook
type SlackWebhookSender struct {
	webhookURL string
	httpClient *resty.Client
}

// NewSlackWebhookSender creates a new webhook sender. Delivery is attempted once.
func NewSlackWebhookSender(config domain.NotificationConfig) *SlackWebhookSender {
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}

	client := resty.New().
		SetTimeout(config.Timeout).
		SetRetryCount(0).
		SetJSONMarshaler(json.Marshal).
		SetJSONUnmarshaler(json.Unmarshal).
		SetHeader("Content-Type", "application/json")

	return &SlackWebhookSender{
		webhookURL: config.WebhookURL,
		httpClient: client,
	}
}

// Send delivers the payload. A missing webhook URL is a *domain.ConfigurationError,
// any transport or status failure a *domain.NotificationError.
func (s *SlackWebhookSender) Send(ctx context.Context, payload *domain.NotificationPayload) error {
	if s.webhookURL == "" {
		return domain.NewConfigurationError("notification.webhook_url")
	}

	resp, err := s.httpClient.R().
		SetContext(ctx).
		SetBody(payload).
		Post(s.webhookURL)
	if err != nil {
		// The webhook URL is the credential; keep it out of error text
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return &domain.NotificationError{Err: err}
	}

	if !resp.IsSuccess() {
		return &domain.NotificationError{StatusCode: resp.StatusCode()}
	}

	return nil
}
