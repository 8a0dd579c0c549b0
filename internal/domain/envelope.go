package domain

// DefaultModel se usa cuando el frame entrante no indica modelo.
const DefaultModel = "claude-3-sonnet-20240229"

// InboundEnvelope es el frame JSON que envía el cliente por el WebSocket.
// ConversationID se acepta y se registra, pero no se usa para armar contexto.
type InboundEnvelope struct {
	Message        string `json:"message"`
	Model          string `json:"model,omitempty"`
	ConversationID string `json:"conversation_id,omitempty"`
}

// ResponseMetadata acompaña cada respuesta exitosa.
type ResponseMetadata struct {
	Model        string  `json:"model"`
	Tokens       int     `json:"tokens"`
	FinishReason *string `json:"finish_reason"`
}

// OutboundEnvelope es el frame que devuelve el relay: o bien Response+Metadata, o bien Error.
type OutboundEnvelope struct {
	Response *string           `json:"response,omitempty"`
	Metadata *ResponseMetadata `json:"metadata,omitempty"`
	Error    string            `json:"error,omitempty"`
}

func NewResponseEnvelope(text string, meta ResponseMetadata) OutboundEnvelope {
	return OutboundEnvelope{Response: &text, Metadata: &meta}
}

func NewErrorEnvelope(msg string) OutboundEnvelope {
	return OutboundEnvelope{Error: msg}
}

// IsError indica si el envelope corresponde a la forma de error.
func (e OutboundEnvelope) IsError() bool {
	return e.Response == nil
}
