package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"trading-relay/internal/domain"
	"trading-relay/internal/llm"
	"trading-relay/internal/metrics"
	"trading-relay/internal/repository"
)

var (
	ErrRelayNotConfigured = errors.New("relay not configured")
	ErrMessageRequired    = errors.New("message is required")
)

const (
	errorPrefix        = "Error processing message: "
	invalidFormatError = "invalid message format: "
	rateLimitedError   = "rate limit exceeded"

	exchangeLogTimeout = 3 * time.Second

	statusAuthError   = "auth_error"
	statusRateLimited = "rate_limited"
)

// RateLimiter decide si un cliente puede enviar otro frame.
type RateLimiter interface {
	Allow(ctx context.Context, key string) bool
}

// Connection identifica la conexión que originó un frame.
// ClientKey agrupa conexiones del mismo cliente (subject JWT o IP) para el rate limit.
type Connection struct {
	ID        string
	ClientKey string
}

// RelayService ejecuta el pipeline de un frame: decode, completion, envelope de salida.
// No guarda estado entre frames.
type RelayService struct {
	logger    *zap.Logger
	llm       llm.CompletionClient
	limiter   RateLimiter
	exchanges repository.ExchangeRepository
	metrics   *metrics.Metrics
	now       func() time.Time
}

// NewRelayService crea el servicio; limiter, exchanges y metrics son opcionales.
func NewRelayService(
	logger *zap.Logger,
	llmClient llm.CompletionClient,
	limiter RateLimiter,
	exchanges repository.ExchangeRepository,
	m *metrics.Metrics,
) *RelayService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RelayService{
		logger:    logger,
		llm:       llmClient,
		limiter:   limiter,
		exchanges: exchanges,
		metrics:   m,
		now:       time.Now,
	}
}

// HandleFrame procesa un frame de texto y devuelve exactamente un envelope.
// Nunca devuelve error: todo fallo por frame se expresa como envelope de error.
func (s *RelayService) HandleFrame(ctx context.Context, conn Connection, raw []byte) domain.OutboundEnvelope {
	if s == nil || s.llm == nil {
		return domain.NewErrorEnvelope(errorPrefix + ErrRelayNotConfigured.Error())
	}

	var in domain.InboundEnvelope
	if err := json.Unmarshal(raw, &in); err != nil {
		s.logger.Warn("invalid frame", zap.String("conn_id", conn.ID), zap.Error(err))
		s.metrics.FrameProcessed("invalid")
		return domain.NewErrorEnvelope(invalidFormatError + err.Error())
	}

	message := strings.TrimSpace(in.Message)
	if message == "" {
		s.metrics.FrameProcessed("invalid")
		return domain.NewErrorEnvelope(errorPrefix + ErrMessageRequired.Error())
	}
	model := strings.TrimSpace(in.Model)
	if model == "" {
		model = domain.DefaultModel
	}

	if s.limiter != nil && !s.limiter.Allow(ctx, conn.ClientKey) {
		s.logger.Info("frame rate limited", zap.String("conn_id", conn.ID), zap.String("client", conn.ClientKey))
		s.metrics.FrameProcessed("rate_limited")
		return domain.NewErrorEnvelope(rateLimitedError)
	}

	start := s.now()
	result, err := s.llm.Complete(ctx, domain.CompletionRequest{
		Model:       model,
		System:      tradingSystemPrompt,
		UserMessage: message,
		MaxTokens:   completionMaxTokens,
		Temperature: completionTemperature,
	})
	latency := s.now().Sub(start)

	exchange := domain.Exchange{
		ID:             uuid.NewString(),
		ConnectionID:   conn.ID,
		ConversationID: in.ConversationID,
		Model:          model,
		LatencyMS:      latency.Milliseconds(),
		CreatedAt:      start.UTC(),
	}

	if err != nil {
		status := completionStatus(err)
		fields := []zap.Field{
			zap.String("conn_id", conn.ID),
			zap.String("model", model),
			zap.String("status", status),
			zap.Error(err),
		}
		if status == statusAuthError {
			s.logger.Error("completion rejected by provider", fields...)
		} else {
			s.logger.Warn("completion failed", fields...)
		}
		exchange.Status = domain.ExchangeStatusError
		exchange.Error = err.Error()
		s.metrics.FrameProcessed("error")
		s.metrics.CompletionObserved(model, status, latency, 0, 0)
		s.recordExchange(exchange)
		return domain.NewErrorEnvelope(errorPrefix + err.Error())
	}

	exchange.Status = domain.ExchangeStatusSuccess
	exchange.InputTokens = result.InputTokens
	exchange.OutputTokens = result.OutputTokens
	exchange.FinishReason = result.StopReason
	s.metrics.FrameProcessed("success")
	s.metrics.CompletionObserved(model, domain.ExchangeStatusSuccess, latency, result.InputTokens, result.OutputTokens)
	s.recordExchange(exchange)

	// metadata.model refleja el modelo pedido, no el que reporta el proveedor.
	return domain.NewResponseEnvelope(result.Text, domain.ResponseMetadata{
		Model:        model,
		Tokens:       result.OutputTokens,
		FinishReason: result.StopReason,
	})
}

// completionStatus clasifica un fallo de Complete para logs y métricas.
func completionStatus(err error) string {
	var apiErr *llm.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.IsAuth():
			return statusAuthError
		case apiErr.IsRateLimit():
			return statusRateLimited
		}
	}
	return domain.ExchangeStatusError
}

// recordExchange persiste de forma asíncrona para no demorar la respuesta al cliente.
func (s *RelayService) recordExchange(exchange domain.Exchange) {
	if s.exchanges == nil {
		return
	}
	go func(e domain.Exchange) {
		ctx, cancel := context.WithTimeout(context.Background(), exchangeLogTimeout)
		defer cancel()
		if err := s.exchanges.Create(ctx, e); err != nil {
			s.logger.Warn("exchange log failed", zap.String("exchange_id", e.ID), zap.Error(err))
		}
	}(exchange)
}
