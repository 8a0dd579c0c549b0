package domain

// CompletionRequest describe una llamada al endpoint de mensajes del proveedor.
type CompletionRequest struct {
	Model       string
	System      string
	UserMessage string
	MaxTokens   int
	Temperature float64
}

// CompletionResult contiene el primer bloque de texto y el uso reportado.
type CompletionResult struct {
	Text         string
	Model        string
	InputTokens  int
	OutputTokens int
	StopReason   *string
}
