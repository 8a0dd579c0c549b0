package domain

const (
	HealthStatusHealthy   = "healthy"
	HealthStatusUnhealthy = "unhealthy"
)

type HealthStatus struct {
	Status           string `json:"status"`
	APIKeyConfigured bool   `json:"api_key_configured"`
	APIKeyValid      bool   `json:"api_key_valid"`
	Error            string `json:"error,omitempty"`
}
