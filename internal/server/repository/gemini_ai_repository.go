package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"papertrade/internal/server/config"
	"papertrade/pkg/logger"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// ErrAdvisorNotConfigured is returned when no usable Gemini API key is set.
var ErrAdvisorNotConfigured = errors.New("gemini api key not configured")

// AIRepository generates trading advice from a free-form prompt.
type AIRepository interface {
	GenerateAdvice(ctx context.Context, prompt string) (string, error)
}

type geminiAIRepository struct {
	cfg            *config.Config
	logger         *logger.Logger
	genAiClient    *genai.Client
	requestLimiter *rate.Limiter
}

// NewGeminiAIRepository creates a rate-limited Gemini-backed advisor.
func NewGeminiAIRepository(cfg *config.Config, log *logger.Logger, genAiClient *genai.Client) (AIRepository, error) {
	if cfg.Gemini.APIKey == "" || cfg.Gemini.APIKey == "your_gemini_api_key_here" {
		return nil, ErrAdvisorNotConfigured
	}
	perMinute := cfg.Gemini.MaxRequestPerMinute
	if perMinute <= 0 {
		perMinute = 10
	}
	secondsPerRequest := time.Minute / time.Duration(perMinute)

	return &geminiAIRepository{
		cfg:            cfg,
		logger:         log,
		genAiClient:    genAiClient,
		requestLimiter: rate.NewLimiter(rate.Every(secondsPerRequest), 1),
	}, nil
}

// GenerateAdvice sends the prompt to Gemini with the Google Search tool
// enabled and returns the concatenated text parts.
func (r *geminiAIRepository) GenerateAdvice(ctx context.Context, prompt string) (string, error) {
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("failed to wait for request limit: %w", err)
	}

	contents := []*genai.Content{
		genai.NewContentFromText(prompt, "user"),
	}
	genCfg := &genai.GenerateContentConfig{
		Tools: []*genai.Tool{
			{GoogleSearch: &genai.GoogleSearch{}},
		},
	}

	resp, err := r.genAiClient.Models.GenerateContent(ctx, r.cfg.Gemini.Model, contents, genCfg)
	if err != nil {
		r.logger.ErrorContext(ctx, "Gemini request failed", logger.ErrorField(err))
		return "", fmt.Errorf("failed to generate advice: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("empty response from model")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	return sb.String(), nil
}
