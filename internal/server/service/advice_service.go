package service

import (
	"context"
	"fmt"
	"strings"

	"papertrade/internal/server/dto"
	"papertrade/internal/server/repository"
	"papertrade/pkg/logger"
)

const maxPromptLength = 2000

// AdviceService wraps the AI advisor. It is optional; when no advisor is
// configured every request fails with ErrAdvisorUnavailable.
type AdviceService interface {
	GetAdvice(ctx context.Context, userID uint, req *dto.AdviceRequest) (*dto.AdviceResponse, error)
}

// ErrAdvisorUnavailable is returned when the advisor is not configured.
var ErrAdvisorUnavailable = repository.ErrAdvisorNotConfigured

// NewAdviceService creates an advice service. The ai repository may be nil
// when no API key is configured.
func NewAdviceService(ai repository.AIRepository, portfolio PortfolioService, log *logger.Logger) AdviceService {
	return &adviceService{ai: ai, portfolio: portfolio, logger: log}
}

type adviceService struct {
	ai        repository.AIRepository
	portfolio PortfolioService
	logger    *logger.Logger
}

// GetAdvice answers a free-form question with the user's portfolio attached
// as context, so the advisor can speak to their actual positions.
func (s *adviceService) GetAdvice(ctx context.Context, userID uint, req *dto.AdviceRequest) (*dto.AdviceResponse, error) {
	if s.ai == nil {
		return nil, ErrAdvisorUnavailable
	}
	question := strings.TrimSpace(req.Prompt)
	if question == "" {
		return nil, fmt.Errorf("%w: prompt is required", ErrValidation)
	}
	if len(question) > maxPromptLength {
		return nil, fmt.Errorf("%w: prompt exceeds %d characters", ErrValidation, maxPromptLength)
	}

	prompt := s.buildPrompt(ctx, userID, question)
	advice, err := s.ai.GenerateAdvice(ctx, prompt)
	if err != nil {
		return nil, err
	}
	return &dto.AdviceResponse{Advice: advice}, nil
}

func (s *adviceService) buildPrompt(ctx context.Context, userID uint, question string) string {
	var sb strings.Builder
	sb.WriteString("You are a financial education assistant inside a paper-trading simulator. ")
	sb.WriteString("All balances and trades are virtual. Answer concisely and remind the user this is not real financial advice.\n\n")

	summary, err := s.portfolio.GetSummary(ctx, userID)
	if err != nil {
		s.logger.DebugContext(ctx, "Portfolio context unavailable for advisor", logger.ErrorField(err))
	} else {
		sb.WriteString(fmt.Sprintf("The user's virtual portfolio: cash balance $%.2f, positions value $%.2f.\n",
			summary.CashBalance, summary.PortfolioValue))
		for _, h := range summary.Holdings {
			sb.WriteString(fmt.Sprintf("- %s: %s shares, average cost $%.2f, current $%.2f\n",
				h.Ticker, formatQuantity(h.Quantity), h.AveragePrice, h.CurrentPrice))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("Question: ")
	sb.WriteString(question)
	return sb.String()
}
