package llm

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// APIError representa una respuesta >= 400 del proveedor.
type APIError struct {
	StatusCode int
	Type       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("llm api error: status=%d type=%s: %s", e.StatusCode, e.Type, e.Message)
	}
	return fmt.Sprintf("llm api error: status=%d: %s", e.StatusCode, e.Message)
}

// IsAuth indica si el proveedor rechazó la API key.
func (e *APIError) IsAuth() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// IsRateLimit indica un 429 del proveedor.
func (e *APIError) IsRateLimit() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

func newAPIError(status int, body []byte) *APIError {
	var payload struct {
		Error struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"error"`
	}
	apiErr := &APIError{StatusCode: status}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error.Message != "" {
		apiErr.Type = payload.Error.Type
		apiErr.Message = payload.Error.Message
		return apiErr
	}
	apiErr.Message = strings.TrimSpace(string(truncate(body, 256)))
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}
	return apiErr
}
