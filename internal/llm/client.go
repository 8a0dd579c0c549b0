package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"trading-relay/internal/domain"
)

const (
	DefaultBaseURL   = "https://api.anthropic.com"
	AnthropicVersion = "2023-06-01"
)

// ErrEmptyResponse se devuelve cuando el proveedor no trae ningún bloque de texto.
var ErrEmptyResponse = errors.New("llm empty response")

// CompletionClient define el contrato síncrono de completions.
type CompletionClient interface {
	Complete(ctx context.Context, req domain.CompletionRequest) (domain.CompletionResult, error)
}

// AnthropicClient implementa CompletionClient contra la Messages API de Anthropic.
// Es inmutable tras construirse y se comparte entre conexiones.
type AnthropicClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *zap.Logger
}

// NewAnthropicClient construye el cliente; timeout <= 0 usa 60s.
func NewAnthropicClient(baseURL, apiKey string, timeout time.Duration, logger *zap.Logger) *AnthropicClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnthropicClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// APIKeyConfigured indica si el cliente tiene una key no vacía.
func (c *AnthropicClient) APIKeyConfigured() bool {
	return strings.TrimSpace(c.apiKey) != ""
}

func (c *AnthropicClient) Complete(ctx context.Context, in domain.CompletionRequest) (domain.CompletionResult, error) {
	reqBody := messagesRequest{
		Model:       in.Model,
		MaxTokens:   in.MaxTokens,
		Temperature: in.Temperature,
		System:      in.System,
		Messages: []message{
			{Role: "user", Content: in.UserMessage},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return domain.CompletionResult{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(bodyBytes))
	if err != nil {
		return domain.CompletionResult{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", AnthropicVersion)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return domain.CompletionResult{}, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.CompletionResult{}, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		c.logger.Warn("llm error status",
			zap.Int("status", resp.StatusCode),
			zap.String("model", in.Model),
			zap.ByteString("body", truncate(respBody, 512)),
		)
		return domain.CompletionResult{}, newAPIError(resp.StatusCode, respBody)
	}

	var mr messagesResponse
	if err := json.Unmarshal(respBody, &mr); err != nil {
		return domain.CompletionResult{}, fmt.Errorf("unmarshal response: %w", err)
	}

	text, ok := firstText(mr.Content)
	if !ok {
		return domain.CompletionResult{}, ErrEmptyResponse
	}

	result := domain.CompletionResult{
		Text:         text,
		Model:        mr.Model,
		InputTokens:  mr.Usage.InputTokens,
		OutputTokens: mr.Usage.OutputTokens,
	}
	if mr.StopReason != "" {
		stop := mr.StopReason
		result.StopReason = &stop
	}
	return result, nil
}

func firstText(blocks []contentBlock) (string, bool) {
	for _, b := range blocks {
		if b.Type == "text" {
			return b.Text, true
		}
	}
	return "", false
}

func truncate(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[:n]
}

type messagesRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
	System      string    `json:"system,omitempty"`
	Messages    []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type messagesResponse struct {
	ID         string         `json:"id"`
	Model      string         `json:"model"`
	Content    []contentBlock `json:"content"`
	StopReason string         `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}
