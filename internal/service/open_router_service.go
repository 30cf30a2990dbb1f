package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/recruvia/cv-insight/internal/config"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

const openRouterEndpoint = "https://openrouter.ai/api/v1/chat/completions"

// OpenRouterService is an alternative JSON generator for the summarizer and
// match scorer, used when LLM_PROVIDER=openrouter. OpenRouter has no native
// response-schema support, so the schema is enforced by prompt and validated
// by the caller; the agent's tool loop stays on Gemini.
type OpenRouterService struct {
	APIKey string
	Model  string
	client *resty.Client
	logger *zap.Logger
}

func NewOpenRouterService(logger *zap.Logger) *OpenRouterService {
	cfg := config.LoadOpenRouterConfig()
	return &OpenRouterService{
		APIKey: cfg.APIKey,
		Model:  cfg.Model,
		client: resty.New(),
		logger: logger,
	}
}

// GenerateJSON sends the prompts to OpenRouter and returns raw JSON text. The
// genai schema parameter is accepted for interface compatibility but not sent;
// the system prompt must already describe the expected shape.
func (s *OpenRouterService) GenerateJSON(ctx context.Context, systemPrompt, userPrompt string, _ *genai.Schema) (string, error) {
	if s.APIKey == "" {
		return "", fmt.Errorf("OPENROUTER_API_KEY not set")
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+s.APIKey).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]any{
			"model": s.Model,
			"messages": []map[string]string{
				{"role": "system", "content": systemPrompt},
				{"role": "user", "content": userPrompt},
			},
			"response_format": map[string]string{"type": "json_object"},
		}).
		Post(openRouterEndpoint)
	if err != nil {
		return "", fmt.Errorf("openrouter request: %w", err)
	}
	if resp.StatusCode() >= 400 {
		return "", fmt.Errorf("openrouter status %d: %s", resp.StatusCode(),
			gjson.Get(resp.String(), "error.message").String())
	}

	text := gjson.Get(resp.String(), "choices.0.message.content").String()
	if text == "" {
		return "", fmt.Errorf("no response from LLM")
	}

	s.logger.Debug("openrouter response", zap.Int("length", len(text)))
	return StripJSONFence(text), nil
}

// StripJSONFence removes a surrounding markdown code fence, which some models
// emit around JSON despite instructions.
func StripJSONFence(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	return strings.TrimSpace(raw)
}
