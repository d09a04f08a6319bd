package external

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"

	"github.com/triage-intake-server/internal/domain"
)

const (
	DefaultDeepSeekBaseURL = "https://api.deepseek.com/v1"
	DefaultDeepSeekModel   = "deepseek-reasoner"
	diagnosisServiceName   = "diagnosis"
	maxReplyBytes          = 1 << 20
)

const diagnosisSystemPrompt = `You are a medical diagnostic API. Your task is to analyze symptom descriptions and return a structured JSON response. Always follow this exact format:

{
  "triage_level": "string", // One of: 'Emergency', 'Urgent', 'Non-Urgent'
  "possible_conditions": [
    {
      "condition": "string",
      "likelihood": "string" // One of: 'High', 'Medium', 'Low'
    }
  ],
  "recommended_action": "string" // A brief, clear recommendation.
}

Do not include any other text, explanations, or markdown in your response. Only the JSON object.`

// DeepSeekClient handles interactions with the DeepSeek chat completion API
type DeepSeekClient struct {
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	httpClient  *http.Client
	logger      *logrus.Logger
}

// ChatMessage is one message of a chat completion request
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatCompletionRequest is the body sent to the completion endpoint
type ChatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

// ChatCompletionResponse is the subset of the completion reply we read
type ChatCompletionResponse struct {
	Choices []struct {
		Message ChatMessage `json:"message"`
	} `json:"choices"`
}

// NewDeepSeekClient creates a new DeepSeek API client
func NewDeepSeekClient(config domain.DiagnosisConfig, logger *logrus.Logger) *DeepSeekClient {
	if config.BaseURL == "" {
		config.BaseURL = DefaultDeepSeekBaseURL
	}
	if config.Model == "" {
		config.Model = DefaultDeepSeekModel
	}
	if config.Timeout == 0 {
		config.Timeout = 90 * time.Second
	}

	return &DeepSeekClient{
		baseURL:     strings.TrimRight(config.BaseURL, "/"),
		apiKey:      config.APIKey,
		model:       config.Model,
		temperature: config.Temperature,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		logger: logger,
	}
}

// Diagnose asks the completion service for a triage diagnosis. Every failure is
// returned as *domain.UpstreamError, except a missing API key which is a
// *domain.ConfigurationError.
func (c *DeepSeekClient) Diagnose(ctx context.Context, symptoms string, age int, sex domain.Sex, discomfort float64) (*domain.DiagnosisResult, error) {
	if c.apiKey == "" {
		c.logger.Error("Diagnosis API key is not configured")
		return nil, domain.NewConfigurationError("diagnosis.api_key")
	}

	content, err := c.complete(ctx, BuildDiagnosisPrompt(symptoms, age, sex, discomfort))
	if err != nil {
		c.logger.WithError(err).Error("Diagnosis API call failed")
		return nil, domain.NewUpstreamError(diagnosisServiceName, err)
	}

	result, err := ParseDiagnosisReply(content)
	if err != nil {
		c.logger.WithError(err).Error("Failed to parse diagnosis reply")
		return nil, domain.NewUpstreamError(diagnosisServiceName, err)
	}

	return result, nil
}

// complete performs one chat completion call and returns the reply text
func (c *DeepSeekClient) complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(ChatCompletionRequest{
		Model: c.model,
		Messages: []ChatMessage{
			{Role: "system", Content: diagnosisSystemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: c.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to execute completion request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("completion API returned status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read completion response: %w", err)
	}

	var completion ChatCompletionResponse
	if err := json.Unmarshal(raw, &completion); err != nil {
		return "", fmt.Errorf("failed to parse completion response: %w", err)
	}

	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("completion response has no choices")
	}

	return completion.Choices[0].Message.Content, nil
}

// BuildDiagnosisPrompt embeds the patient details in the user message. Single
// quotes in the symptoms are doubled so they cannot close the quoted block.
func BuildDiagnosisPrompt(symptoms string, age int, sex domain.Sex, discomfort float64) string {
	return fmt.Sprintf("Analyze the following symptoms: '%s'. Patient is a %d-year-old %s with a discomfort level of %s/10.",
		strings.ReplaceAll(symptoms, "'", "''"),
		age,
		sex,
		strconv.FormatFloat(discomfort, 'f', -1, 64),
	)
}
