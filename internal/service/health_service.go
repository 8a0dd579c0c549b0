package service

import (
	"context"

	"go.uber.org/zap"

	"trading-relay/internal/domain"
	"trading-relay/internal/llm"
	"trading-relay/internal/metrics"
)

const (
	healthProbeMessage   = "test"
	healthProbeMaxTokens = 10
)

// HealthService valida la API key con una completion real mínima.
// Cada Check consume cuota del proveedor.
type HealthService struct {
	logger           *zap.Logger
	llm              llm.CompletionClient
	apiKeyConfigured bool
	metrics          *metrics.Metrics
}

func NewHealthService(logger *zap.Logger, llmClient llm.CompletionClient, apiKeyConfigured bool, m *metrics.Metrics) *HealthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HealthService{
		logger:           logger,
		llm:              llmClient,
		apiKeyConfigured: apiKeyConfigured,
		metrics:          m,
	}
}

func (s *HealthService) Check(ctx context.Context) domain.HealthStatus {
	if s.llm == nil {
		return s.unhealthy(ErrRelayNotConfigured)
	}

	_, err := s.llm.Complete(ctx, domain.CompletionRequest{
		Model:       domain.DefaultModel,
		UserMessage: healthProbeMessage,
		MaxTokens:   healthProbeMaxTokens,
		Temperature: 1.0,
	})
	if err != nil {
		if completionStatus(err) == statusAuthError {
			s.logger.Error("health probe rejected api key", zap.Error(err))
		} else {
			s.logger.Warn("health probe failed", zap.Error(err))
		}
		return s.unhealthy(err)
	}

	s.metrics.HealthChecked(domain.HealthStatusHealthy)
	return domain.HealthStatus{
		Status:           domain.HealthStatusHealthy,
		APIKeyConfigured: true,
		APIKeyValid:      true,
	}
}

func (s *HealthService) unhealthy(err error) domain.HealthStatus {
	s.metrics.HealthChecked(domain.HealthStatusUnhealthy)
	return domain.HealthStatus{
		Status:           domain.HealthStatusUnhealthy,
		APIKeyConfigured: s.apiKeyConfigured,
		APIKeyValid:      false,
		Error:            err.Error(),
	}
}
