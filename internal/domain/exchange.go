package domain

import "time"

const (
	ExchangeStatusSuccess = "success"
	ExchangeStatusError   = "error"
)

// Exchange es el registro de auditoría de un frame procesado.
type Exchange struct {
	ID             string    `json:"id"`
	ConnectionID   string    `json:"connection_id"`
	ConversationID string    `json:"conversation_id,omitempty"`
	Model          string    `json:"model"`
	InputTokens    int       `json:"input_tokens"`
	OutputTokens   int       `json:"output_tokens"`
	FinishReason   *string   `json:"finish_reason,omitempty"`
	Status         string    `json:"status"`
	Error          string    `json:"error,omitempty"`
	LatencyMS      int64     `json:"latency_ms"`
	CreatedAt      time.Time `json:"created_at"`
}
